package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// DefaultVerificationTTL is how long a one-time code stays usable.
const DefaultVerificationTTL = 15 * time.Minute

// Purpose binds a verification token to one flow.
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password_reset"
)

var (
	ErrTokenExpired  = errors.New("verification token expired")
	ErrTokenInvalid  = errors.New("verification token invalid")
	ErrEmailMismatch = errors.New("email does not match token")
	ErrCodeInvalid   = errors.New("verification code invalid")
)

type verificationClaims struct {
	Email    string  `json:"email"`
	CodeHash string  `json:"hashedCode"`
	Purpose  Purpose `json:"purpose"`
	jwt.RegisteredClaims
}

// VerificationTokens issues and checks stateless tokens binding an email to a
// hashed one-time code. Nothing is stored server side; issuing a new token
// simply supersedes the old one from the user's point of view.
type VerificationTokens struct {
	secret []byte
	ttl    time.Duration
	hasher Hasher
	now    func() time.Time
	codes  func() (string, error)
}

// NewVerificationTokens builds the token service. secret must differ from the session secret.
func NewVerificationTokens(secret string, ttl time.Duration, hasher Hasher) *VerificationTokens {
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}
	return &VerificationTokens{
		secret: []byte(secret),
		ttl:    ttl,
		hasher: hasher,
		now:    time.Now,
		codes:  GenerateCode,
	}
}

// SetClock replaces the time source.
func (v *VerificationTokens) SetClock(now func() time.Time) {
	v.now = now
}

// SetCodeGenerator replaces the one-time code source.
func (v *VerificationTokens) SetCodeGenerator(gen func() (string, error)) {
	v.codes = gen
}

// Issue creates a code for email and returns the signed token with the plaintext code.
// The caller delivers the code out of band and hands the token back to the client.
func (v *VerificationTokens) Issue(email string, purpose Purpose) (string, string, time.Time, error) {
	code, err := v.codes()
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate code: %w", err)
	}
	hashed, err := v.hasher.Hash(code)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("hash code: %w", err)
	}

	issuedAt := v.now()
	expiresAt := issuedAt.Add(v.ttl)
	claims := &verificationClaims{
		Email:    email,
		CodeHash: hashed,
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, code, expiresAt, nil
}

// Verify checks signature, expiry, purpose, email and code, in that order.
func (v *VerificationTokens) Verify(token, email, code string, purpose Purpose) error {
	claims := &verificationClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.CodeHash == "" {
		return ErrTokenInvalid
	}
	if claims.Purpose != purpose {
		return ErrTokenInvalid
	}
	if claims.Email != email {
		return ErrEmailMismatch
	}
	if err := v.hasher.Compare(claims.CodeHash, strings.TrimSpace(code)); err != nil {
		return ErrCodeInvalid
	}
	return nil
}
