package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AdminHandler exposes account management to admins.
type AdminHandler struct {
	admin *service.AdminService
	auth  *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService, authService *service.AuthService) *AdminHandler {
	return &AdminHandler{admin: admin, auth: authService}
}

// RegisterTechnician POST /register-technician.
func (h *AdminHandler) RegisterTechnician(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.RegisterTechnicianRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	_, err = h.auth.RegisterTechnician(c.UserContext(), a, service.AccountInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{Message: "Technician registered successfully"})
}

// ListTechnicians GET /technicians and GET /admin/technicians.
func (h *AdminHandler) ListTechnicians(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	users, err := h.admin.ListTechnicians(c.UserContext(), a)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAccountList(users))
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	users, err := h.admin.ListUsers(c.UserContext(), a)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAccountList(users))
}

// DeleteUser DELETE /admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeleteUser(c.UserContext(), a, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}

// DeleteTechnician DELETE /admin/technicians/:id.
func (h *AdminHandler) DeleteTechnician(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeleteTechnician(c.UserContext(), a, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Technician deleted successfully"})
}
