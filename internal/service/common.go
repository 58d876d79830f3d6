package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// validID reports whether id is a well-formed UUID. Malformed ids are treated
// as absent records so they never reach the store.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func requireRole(actor domain.Actor, role domain.Role, message string) error {
	if actor.ID == "" {
		return apperrors.NewUnauthorized("No token provided")
	}
	if !actor.Is(role) {
		return apperrors.NewForbidden(message)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// notFoundOr maps pgx.ErrNoRows to a NotFound for resource and wraps anything else as internal.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewInternalError(err)
}

// missingFields returns the names whose values are blank, preserving order.
func missingFields(fields ...[2]string) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	return missing
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, now func() time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now()
	}
	dispatcher.Publish(ctx, event)
}
