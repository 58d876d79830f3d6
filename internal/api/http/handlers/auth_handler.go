package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AuthHandler exposes the public registration, login and reset endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// RequestVerificationCode handles POST /auth/request-verification-code.
func (h *AuthHandler) RequestVerificationCode(c *fiber.Ctx) error {
	var req dto.VerificationCodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	token, err := h.auth.RequestRegistrationCode(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.CodeSentResponse{Message: "Verification code sent", Token: token})
}

// RegisterWithCode handles POST /auth/register-with-code.
func (h *AuthHandler) RegisterWithCode(c *fiber.Ctx) error {
	var req dto.RegisterWithCodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	_, err := h.auth.CompleteRegistration(c.UserContext(), service.RegistrationInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Code:     req.Code,
		Token:    req.Token,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{Message: "Registration successful"})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Identifier, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{
		Message:  "Login successful",
		Token:    result.Token,
		ID:       result.User.ID,
		Role:     string(result.User.Role),
		Username: result.User.Username,
	})
}

// RequestResetCode handles POST /auth/request-reset-code.
func (h *AuthHandler) RequestResetCode(c *fiber.Ctx) error {
	var req dto.VerificationCodeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	token, err := h.auth.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(dto.CodeSentResponse{Message: "Reset code sent", Token: token})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	err := h.auth.CompletePasswordReset(c.UserContext(), service.PasswordResetInput{
		Email:       req.Email,
		Code:        req.Code,
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Password reset successful"})
}
