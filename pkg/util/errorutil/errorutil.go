package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Error codes surfaced to API callers.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeMissingFields      = "MISSING_FIELDS"
	CodeInvalidCategory    = "INVALID_CATEGORY"
	CodeInvalidPriority    = "INVALID_PRIORITY"
	CodeEmptyComment       = "EMPTY_COMMENT"
	CodeInvalidTechnician  = "INVALID_TECHNICIAN"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotFound      = "EMAIL_NOT_FOUND"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeEmailMismatch      = "EMAIL_MISMATCH"
	CodeCodeInvalid        = "CODE_INVALID"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotAuthorized      = "NOT_AUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

// NewMissingFields names every required field that was left empty.
func NewMissingFields(fields ...string) error {
	return NewDomainError(CodeMissingFields,
		fmt.Sprintf("Please provide %s", strings.Join(fields, ", ")),
		http.StatusBadRequest,
		map[string]any{"fields": fields})
}

func NewInvalidCategory(category string) error {
	return NewDomainError(CodeInvalidCategory, "Invalid category", http.StatusBadRequest,
		map[string]any{"category": category})
}

func NewInvalidPriority(priority string) error {
	return NewDomainError(CodeInvalidPriority, "Invalid priority", http.StatusBadRequest,
		map[string]any{"priority": priority})
}

func NewEmptyComment() error {
	return NewDomainError(CodeEmptyComment, "Comment cannot be empty", http.StatusBadRequest, nil)
}

func NewInvalidTechnician(id string) error {
	return NewDomainError(CodeInvalidTechnician, "Invalid technician ID", http.StatusBadRequest,
		map[string]any{"technician_id": id})
}

func NewInvalidTransition(message string) error {
	return NewDomainError(CodeInvalidTransition, message, http.StatusBadRequest, nil)
}

func NewEmailTaken() error {
	return NewDomainError(CodeEmailTaken, "Email already registered", http.StatusBadRequest, nil)
}

func NewUsernameTaken() error {
	return NewDomainError(CodeUsernameTaken, "Username already taken", http.StatusBadRequest, nil)
}

func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "Invalid credentials", http.StatusBadRequest, nil)
}

func NewEmailNotFound() error {
	return NewDomainError(CodeEmailNotFound, "Email not found", http.StatusBadRequest, nil)
}

// NewTokenExpired tells the caller to start the code flow again.
func NewTokenExpired(message string) error {
	return NewDomainError(CodeTokenExpired, message, http.StatusBadRequest, nil)
}

func NewTokenInvalid() error {
	return NewDomainError(CodeTokenInvalid, "Invalid or malformed token", http.StatusBadRequest, nil)
}

func NewEmailMismatch() error {
	return NewDomainError(CodeEmailMismatch, "Email does not match token", http.StatusBadRequest, nil)
}

func NewCodeInvalid(message string) error {
	return NewDomainError(CodeCodeInvalid, message, http.StatusBadRequest, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

// NewNotAuthorized is returned when the caller does not own the resource it acts on.
func NewNotAuthorized(message string) error {
	return NewDomainError(CodeNotAuthorized, message, http.StatusForbidden, nil)
}

func NewTooManyAttempts() error {
	return NewDomainError(CodeTooManyAttempts, "Too many failed attempts, try again later", http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "Server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

// MapError converts err into a DomainError while keeping the error interface.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// HasCode reports whether err maps to a DomainError carrying code.
func HasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
