package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CodeNotifier delivers one-time codes. Delivery failures are returned so the
// request that issued the code can fail.
type CodeNotifier interface {
	SendCode(ctx context.Context, email, code string, purpose auth.Purpose) error
}

// ThrottleRecorder counts refused logins.
type ThrottleRecorder interface {
	RecordLoginThrottled()
}

// AuthService coordinates registration, login and password reset flows.
type AuthService struct {
	users         repository.UserRepository
	hasher        auth.Hasher
	sessions      *auth.TokenManager
	verifications *auth.VerificationTokens
	codes         CodeNotifier
	throttle      LoginThrottle
	recorder      ThrottleRecorder
	validate      *validator.Validate
	logger        *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates requirements for the auth service. Throttle
// and Recorder are optional.
type AuthDependencies struct {
	UserRepo      repository.UserRepository
	Hasher        auth.Hasher
	Sessions      *auth.TokenManager
	Verifications *auth.VerificationTokens
	Codes         CodeNotifier
	Throttle      LoginThrottle
	Recorder      ThrottleRecorder
	Logger        *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:         deps.UserRepo,
		hasher:        deps.Hasher,
		sessions:      deps.Sessions,
		verifications: deps.Verifications,
		codes:         deps.Codes,
		throttle:      deps.Throttle,
		recorder:      deps.Recorder,
		validate:      validator.New(),
		logger:        logger,
	}
}

// RegistrationInput carries the completion step of self-service signup.
type RegistrationInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Code     string
	Token    string
}

// PasswordResetInput carries the completion step of a password reset.
type PasswordResetInput struct {
	Email       string
	Code        string
	Token       string
	NewPassword string
}

// AccountInput describes an account created without the code flow.
type AccountInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// RequestRegistrationCode emails a one-time code and returns the token that binds it.
func (s *AuthService) RequestRegistrationCode(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if err := s.checkEmail(email); err != nil {
		return "", err
	}

	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if taken {
		return "", apperrors.NewEmailTaken()
	}
	return s.issueCode(ctx, email, auth.PurposeRegistration)
}

// CompleteRegistration verifies the code and creates a role=user account.
func (s *AuthService) CompleteRegistration(ctx context.Context, in RegistrationInput) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)

	if missing := missingFields(
		[2]string{"name", in.Name},
		[2]string{"username", in.Username},
		[2]string{"email", in.Email},
		[2]string{"password", in.Password},
		[2]string{"code", in.Code},
		[2]string{"token", in.Token},
	); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}

	if err := s.verifications.Verify(in.Token, in.Email, in.Code, auth.PurposeRegistration); err != nil {
		return nil, verificationError(err, auth.PurposeRegistration)
	}

	return s.createAccount(ctx, AccountInput{
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	}, domain.RoleUser)
}

// Login authenticates by email or username. Unknown identifiers and wrong
// passwords fail identically.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if missing := missingFields([2]string{"identifier", identifier}, [2]string{"password", password}); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	if strings.Contains(identifier, "@") {
		identifier = normalizeEmail(identifier)
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInternalError(err)
		}
		user = nil
	}

	subject := throttleSubject(user, identifier)
	if !s.allowLogin(ctx, subject) {
		return nil, apperrors.NewTooManyAttempts()
	}

	if user == nil {
		s.compareDummy(password)
		s.recordFailure(ctx, subject)
		return nil, apperrors.NewInvalidCredentials()
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.recordFailure(ctx, subject)
		return nil, apperrors.NewInvalidCredentials()
	}
	s.resetFailures(ctx, subject)

	token, exp, err := s.sessions.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// RequestPasswordReset emails a reset code to a registered address.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", apperrors.NewMissingFields("email")
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if !exists {
		return "", apperrors.NewEmailNotFound()
	}
	return s.issueCode(ctx, email, auth.PurposePasswordReset)
}

// CompletePasswordReset verifies the code and overwrites the password hash.
func (s *AuthService) CompletePasswordReset(ctx context.Context, in PasswordResetInput) error {
	in.Email = normalizeEmail(in.Email)
	if missing := missingFields(
		[2]string{"email", in.Email},
		[2]string{"code", in.Code},
		[2]string{"token", in.Token},
		[2]string{"newPassword", in.NewPassword},
	); len(missing) > 0 {
		return apperrors.NewMissingFields(missing...)
	}
	if err := checkPassword(in.NewPassword); err != nil {
		return err
	}

	if err := s.verifications.Verify(in.Token, in.Email, in.Code, auth.PurposePasswordReset); err != nil {
		return verificationError(err, auth.PurposePasswordReset)
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewEmailNotFound()
		}
		return apperrors.NewInternalError(err)
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.Email, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewEmailNotFound()
		}
		return apperrors.NewInternalError(err)
	}

	s.resetFailures(ctx, throttleSubject(user, in.Email))
	return nil
}

// RegisterTechnician lets an admin create a technician without the code flow.
func (s *AuthService) RegisterTechnician(ctx context.Context, actor domain.Actor, in AccountInput) (*domain.User, error) {
	if err := requireRole(actor, domain.RoleAdmin, "Admins only"); err != nil {
		return nil, err
	}
	return s.CreateAccount(ctx, in, domain.RoleTechnician)
}

// CreateAccount validates and inserts an account of any role. It backs
// technician registration and operator bootstrapping of admins.
func (s *AuthService) CreateAccount(ctx context.Context, in AccountInput, role domain.Role) (*domain.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)

	if missing := missingFields(
		[2]string{"name", in.Name},
		[2]string{"username", in.Username},
		[2]string{"email", in.Email},
		[2]string{"password", in.Password},
	); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}
	if err := s.checkEmail(in.Email); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role", map[string]any{"role": role})
	}
	return s.createAccount(ctx, in, role)
}

func (s *AuthService) createAccount(ctx context.Context, in AccountInput, role domain.Role) (*domain.User, error) {
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	emailTaken, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if emailTaken {
		return nil, apperrors.NewEmailTaken()
	}
	usernameTaken, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if usernameTaken {
		return nil, apperrors.NewUsernameTaken()
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, apperrors.NewEmailTaken()
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, apperrors.NewUsernameTaken()
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *AuthService) issueCode(ctx context.Context, email string, purpose auth.Purpose) (string, error) {
	token, code, _, err := s.verifications.Issue(email, purpose)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if err := s.codes.SendCode(ctx, email, code, purpose); err != nil {
		s.logger.Error("failed to deliver verification code",
			zap.String("purpose", string(purpose)),
			zap.Error(err))
		return "", apperrors.NewInternalError(err)
	}
	return token, nil
}

func (s *AuthService) checkEmail(email string) error {
	if email == "" {
		return apperrors.NewMissingFields("email")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return apperrors.NewValidationError("Please provide a valid email", map[string]any{"field": "email"})
	}
	return nil
}

// throttleSubject keys failures on the account when the identifier resolves,
// so the email and the username of one account share a single counter.
func throttleSubject(user *domain.User, identifier string) string {
	if user != nil {
		return "user:" + user.ID
	}
	return "identifier:" + identifier
}

func (s *AuthService) allowLogin(ctx context.Context, subject string) bool {
	if s.throttle == nil {
		return true
	}
	allowed, err := s.throttle.Allow(ctx, subject)
	if err != nil {
		s.logger.Warn("login throttle unavailable", zap.Error(err))
		return true
	}
	if !allowed && s.recorder != nil {
		s.recorder.RecordLoginThrottled()
	}
	return allowed
}

func (s *AuthService) recordFailure(ctx context.Context, subject string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, subject); err != nil {
		s.logger.Warn("login throttle update failed", zap.Error(err))
	}
}

func (s *AuthService) resetFailures(ctx context.Context, subject string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, subject); err != nil {
		s.logger.Warn("login throttle reset failed", zap.Error(err))
	}
}

// checkPassword enforces bcrypt's input limit, which is counted in bytes.
func checkPassword(password string) error {
	if len(password) > auth.MaxPasswordBytes {
		return apperrors.NewValidationError(
			fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes),
			map[string]any{"field": "password", "max_bytes": auth.MaxPasswordBytes})
	}
	return nil
}

// compareDummy spends the same hashing work as a real comparison.
func (s *AuthService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("helpdesk-dummy-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	if s.dummyHash != "" {
		_ = s.hasher.Compare(s.dummyHash, password)
	}
}

func verificationError(err error, purpose auth.Purpose) error {
	subject := "Verification"
	codeMessage := "Invalid verification code"
	if purpose == auth.PurposePasswordReset {
		subject = "Reset"
		codeMessage = "Invalid reset code"
	}

	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return apperrors.NewTokenExpired(subject + " token expired. Please request a new code.")
	case errors.Is(err, auth.ErrEmailMismatch):
		return apperrors.NewEmailMismatch()
	case errors.Is(err, auth.ErrCodeInvalid):
		return apperrors.NewCodeInvalid(codeMessage)
	case errors.Is(err, auth.ErrTokenInvalid):
		return apperrors.NewTokenInvalid()
	}
	return apperrors.NewInternalError(err)
}
