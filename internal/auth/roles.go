package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// RequireRole ensures the caller holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("No token provided")
		}
		if _, exists := allowedSet[actor.Role]; !exists {
			return apperrors.NewForbidden(roleMessage(allowed))
		}
		return c.Next()
	}
}

// RequireAnyRole ensures the caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ActorFromContext(c); !ok {
			return apperrors.NewUnauthorized("No token provided")
		}
		return c.Next()
	}
}

func roleMessage(allowed []domain.Role) string {
	if len(allowed) == 1 {
		switch allowed[0] {
		case domain.RoleAdmin:
			return "Admins only"
		case domain.RoleTechnician:
			return "Technicians only"
		case domain.RoleUser:
			return "Users only"
		}
	}
	return "Insufficient role"
}
