package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AssignTicket hands a ticket to a technician and moves it to IN_PROGRESS.
// The technician's current name is copied onto the ticket and is not kept in
// sync afterwards. Reassigning an OPEN or IN_PROGRESS ticket is allowed.
func (s *TicketService) AssignTicket(ctx context.Context, actor domain.Actor, ticketID, technicianID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleAdmin, "Admins only"); err != nil {
		return nil, err
	}
	technicianID = strings.TrimSpace(technicianID)
	if technicianID == "" {
		return nil, apperrors.NewMissingFields("technicianId")
	}

	technician, err := s.technician(ctx, technicianID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusResolved {
		return nil, apperrors.NewInvalidTransition("Resolved tickets cannot be reassigned")
	}

	if err := s.tickets.Assign(ctx, ticket.ID, technician.ID, technician.Name); err != nil {
		if errors.Is(err, repository.ErrTicketResolved) {
			return nil, apperrors.NewInvalidTransition("Resolved tickets cannot be reassigned")
		}
		return nil, apperrors.NewInternalError(err)
	}

	ticket.AssignedTo = &technician.ID
	ticket.AssignedName = &technician.Name
	ticket.Status = domain.TicketStatusInProgress

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketAssignedPayload{
			TechnicianID:   technician.ID,
			TechnicianName: technician.Name,
		},
	})
	return ticket, nil
}

func (s *TicketService) technician(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, apperrors.NewInvalidTechnician(id)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidTechnician(id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if user.Role != domain.RoleTechnician {
		return nil, apperrors.NewInvalidTechnician(id)
	}
	return user, nil
}
