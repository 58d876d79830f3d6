package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title" validate:"max=255"`
	Description string `json:"description" validate:"max=5000"`
	Priority    string `json:"priority" validate:"max=20"`
	Category    string `json:"category" validate:"max=50"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	TechnicianID string `json:"technicianId" validate:"max=64"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority string `json:"priority" validate:"max=20"`
}

// CommentRequest payload.
type CommentRequest struct {
	Comment string `json:"comment" validate:"max=5000"`
}

// TicketResponse is the ticket row returned by every listing.
type TicketResponse struct {
	ID           string                `json:"id"`
	UserID       string                `json:"user_id"`
	UserName     string                `json:"user_name,omitempty"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     domain.TicketCategory `json:"category"`
	Status       domain.TicketStatus   `json:"status"`
	AssignedTo   *string               `json:"assigned_to"`
	AssignedName *string               `json:"assigned_name"`
	CreatedAt    time.Time             `json:"created_at"`
	ResolvedAt   *time.Time            `json:"resolvedAt"`
}

// CreateTicketResponse acknowledges a new ticket.
type CreateTicketResponse struct {
	Message string         `json:"message"`
	Ticket  TicketResponse `json:"ticket"`
}

// CommentResponse is one entry of a ticket's thread.
type CommentResponse struct {
	ID        string    `json:"id"`
	Comment   string    `json:"comment"`
	Commenter string    `json:"commenter"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTicketResponse maps a ticket for output.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		UserID:       t.UserID,
		UserName:     t.UserName,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     t.Priority,
		Category:     t.Category,
		Status:       t.Status,
		AssignedTo:   t.AssignedTo,
		AssignedName: t.AssignedName,
		CreatedAt:    t.CreatedAt,
		ResolvedAt:   t.ResolvedAt,
	}
}

// NewTicketList maps tickets, never returning nil.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// NewCommentList maps comments, never returning nil.
func NewCommentList(comments []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, CommentResponse{
			ID:        c.ID,
			Comment:   c.Body,
			Commenter: c.Commenter,
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}
