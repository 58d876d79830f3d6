package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AdminService exposes account management for administrators.
type AdminService struct {
	users repository.UserRepository
}

// NewAdminService builds the service.
func NewAdminService(users repository.UserRepository) *AdminService {
	return &AdminService{users: users}
}

// ListUsers returns every role=user account.
func (s *AdminService) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	return s.list(ctx, actor, domain.RoleUser)
}

// ListTechnicians returns every technician, for assignment pickers.
func (s *AdminService) ListTechnicians(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	return s.list(ctx, actor, domain.RoleTechnician)
}

// DeleteUser removes a role=user account with its tickets.
func (s *AdminService) DeleteUser(ctx context.Context, actor domain.Actor, id string) error {
	return s.delete(ctx, actor, id, domain.RoleUser, "User")
}

// DeleteTechnician removes a technician. Tickets they held keep the assigned name
// and their comments stay on the thread without an author.
func (s *AdminService) DeleteTechnician(ctx context.Context, actor domain.Actor, id string) error {
	return s.delete(ctx, actor, id, domain.RoleTechnician, "Technician")
}

func (s *AdminService) list(ctx context.Context, actor domain.Actor, role domain.Role) ([]domain.User, error) {
	if err := requireRole(actor, domain.RoleAdmin, "Admins only"); err != nil {
		return nil, err
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

func (s *AdminService) delete(ctx context.Context, actor domain.Actor, id string, role domain.Role, resource string) error {
	if err := requireRole(actor, domain.RoleAdmin, "Admins only"); err != nil {
		return err
	}
	if !validID(id) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	if err := s.users.DeleteByRole(ctx, id, role); err != nil {
		return notFoundOr(err, resource)
	}
	return nil
}
