package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AddComment records the assigned technician's response, resolves the ticket
// if it is still open, and notifies the owner. Commenting on a resolved
// ticket appends the comment without touching the status.
//
// The comment is stored before the resolve. If the resolve then fails the
// comment stays, the owner is still notified, and the error is returned so
// the caller can retry with ResolveTicket instead of commenting again.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Actor, ticketID, body string) (*domain.Comment, *domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleTechnician, "Technicians only"); err != nil {
		return nil, nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil, apperrors.NewEmptyComment()
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !ticket.IsAssignedTo(actor.ID) {
		return nil, nil, apperrors.NewNotAuthorized("You are not assigned to this ticket")
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		UserID:   actor.ID,
		Body:     body,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	var resolveErr error
	if ticket.Status != domain.TicketStatusResolved {
		if err := s.resolve(ctx, actor, ticket); err != nil && !apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
			resolveErr = err
		}
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCommented,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCommentedPayload{
			CommentID: comment.ID,
			OwnerID:   ticket.UserID,
			Comment:   comment.Body,
		},
	})
	if resolveErr != nil {
		return nil, nil, resolveErr
	}
	return comment, ticket, nil
}

// ResolveTicket is the explicit resolve endpoint. Only the assignee may call it.
func (s *TicketService) ResolveTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleTechnician, "Technicians only"); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsAssignedTo(actor.ID) {
		return nil, apperrors.NewNotAuthorized("You are not assigned to this ticket")
	}
	if ticket.Status == domain.TicketStatusResolved {
		return nil, apperrors.NewInvalidTransition("Ticket is already resolved")
	}
	if err := s.resolve(ctx, actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// resolve is the single place a ticket becomes RESOLVED. resolved_at never
// precedes created_at even if the store clock runs ahead of ours.
func (s *TicketService) resolve(ctx context.Context, actor domain.Actor, ticket *domain.Ticket) error {
	at := s.now().UTC()
	if at.Before(ticket.CreatedAt) {
		at = ticket.CreatedAt
	}

	if err := s.tickets.MarkResolved(ctx, ticket.ID, at); err != nil {
		if errors.Is(err, repository.ErrTicketResolved) {
			return apperrors.NewInvalidTransition("Ticket is already resolved")
		}
		return apperrors.NewInternalError(err)
	}

	ticket.Status = domain.TicketStatusResolved
	ticket.ResolvedAt = &at

	s.publish(ctx, events.Event{
		Type:     events.EventTicketResolved,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload:  events.TicketResolvedPayload{ResolvedAt: at},
	})
	return nil
}
