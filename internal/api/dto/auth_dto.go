package dto

// VerificationCodeRequest starts self-service registration or a password reset.
type VerificationCodeRequest struct {
	Email string `json:"email" validate:"max=254"`
}

// RegisterWithCodeRequest completes registration.
type RegisterWithCodeRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Username string `json:"username" validate:"max=50"`
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=72"`
	Code     string `json:"code" validate:"max=16"`
	Token    string `json:"token" validate:"max=2048"`
}

// LoginRequest accepts an email or a username as identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"max=254"`
	Password   string `json:"password" validate:"max=72"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"max=254"`
	Code        string `json:"code" validate:"max=16"`
	Token       string `json:"token" validate:"max=2048"`
	NewPassword string `json:"newPassword" validate:"max=72"`
}

// RegisterTechnicianRequest is the admin-only technician signup.
type RegisterTechnicianRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Username string `json:"username" validate:"max=50"`
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=72"`
}

// CodeSentResponse carries the token that binds an emailed code.
type CodeSentResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Message  string `json:"message"`
	Token    string `json:"token"`
	ID       string `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// MessageResponse is the plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}
