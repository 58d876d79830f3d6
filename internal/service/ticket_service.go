package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates the ticket lifecycle: OPEN, IN_PROGRESS, RESOLVED.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service. Clock defaults to time.Now.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Clock       func() time.Time
}

// NewTicketService builds the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    string
	Category    string
}

// CreateTicket opens a new ticket owned by the calling user and notifies the admin.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, in TicketCreateInput) (*domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleUser, "Users only"); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Priority = strings.TrimSpace(in.Priority)
	in.Category = strings.TrimSpace(in.Category)
	if missing := missingFields(
		[2]string{"title", in.Title},
		[2]string{"description", in.Description},
		[2]string{"priority", in.Priority},
		[2]string{"category", in.Category},
	); len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing...)
	}

	category := domain.TicketCategory(in.Category)
	if !category.Valid() {
		return nil, apperrors.NewInvalidCategory(in.Category)
	}
	priority := domain.TicketPriority(in.Priority)
	if !priority.Valid() {
		return nil, apperrors.NewInvalidPriority(in.Priority)
	}

	ticket := &domain.Ticket{
		UserID:      actor.ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    category,
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			Title:       ticket.Title,
			Description: ticket.Description,
			Category:    ticket.Category,
			Priority:    ticket.Priority,
		},
	})
	return ticket, nil
}

// UpdatePriority changes priority only; status is untouched.
func (s *TicketService) UpdatePriority(ctx context.Context, actor domain.Actor, ticketID, priority string) error {
	if err := requireRole(actor, domain.RoleAdmin, "Admins only"); err != nil {
		return err
	}
	priority = strings.TrimSpace(priority)
	if priority == "" {
		return apperrors.NewMissingFields("priority")
	}
	p := domain.TicketPriority(priority)
	if !p.Valid() {
		return apperrors.NewInvalidPriority(priority)
	}
	if !validID(ticketID) {
		return ticketNotFound(ticketID)
	}
	if err := s.tickets.UpdatePriority(ctx, ticketID, p); err != nil {
		return notFoundOr(err, "Ticket")
	}
	return nil
}

// DeleteTicket hard-deletes a ticket in any status. Only its creator may do so.
func (s *TicketService) DeleteTicket(ctx context.Context, actor domain.Actor, ticketID string) error {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.UserID != actor.ID {
		return apperrors.NewNotAuthorized("Not authorized to delete this ticket")
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return notFoundOr(err, "Ticket")
	}
	return nil
}

// GetTicket returns a ticket visible to the caller.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, ticket) {
		return nil, apperrors.NewNotAuthorized("Not authorized to view this ticket")
	}
	return ticket, nil
}

// ListAll returns every ticket with its creator's current name.
func (s *TicketService) ListAll(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleAdmin, "Admins only"); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// ListAssigned returns the calling technician's tickets.
func (s *TicketService) ListAssigned(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleTechnician, "Technicians only"); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByAssignee(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// ListMine returns the calling user's tickets.
func (s *TicketService) ListMine(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	if err := requireRole(actor, domain.RoleUser, "Users only"); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// GetComments lists a ticket's comments oldest first. Admins, the assignee and
// the owner may read them.
func (s *TicketService) GetComments(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.Comment, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, ticket) {
		return nil, apperrors.NewNotAuthorized("Not authorized to view this ticket")
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return comments, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if !validID(ticketID) {
		return nil, ticketNotFound(ticketID)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "Ticket")
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.now, event)
}

func canView(actor domain.Actor, ticket *domain.Ticket) bool {
	return actor.Is(domain.RoleAdmin) || ticket.UserID == actor.ID || ticket.IsAssignedTo(actor.ID)
}

func ticketNotFound(id string) error {
	return apperrors.NewNotFound("Ticket", map[string]any{"id": id})
}
