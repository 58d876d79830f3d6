package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Ticket, error)
	ListByAssignee(ctx context.Context, technicianID string) ([]domain.Ticket, error)
	Assign(ctx context.Context, id, technicianID, technicianName string) error
	MarkResolved(ctx context.Context, id string, at time.Time) error
	UpdatePriority(ctx context.Context, id string, priority domain.TicketPriority) error
	Delete(ctx context.Context, id string) error
	Snapshot(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DB) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `t.id, t.user_id, t.title, t.description, t.category, t.priority, t.status,
               t.assigned_to, t.assigned_name, t.created_at, t.resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (user_id, title, description, category, priority, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		ticket.UserID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id=$1`
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, query, id).Scan(ticketFields(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListAll returns every ticket, newest first, with the creator's current name.
func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT ` + ticketColumns + `, COALESCE(u.name, '')
        FROM tickets t LEFT JOIN users u ON u.id = t.user_id
        ORDER BY t.created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(append(ticketFields(&ticket), &ticket.UserName)...); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.user_id=$1 ORDER BY t.created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *ticketRepository) ListByAssignee(ctx context.Context, technicianID string) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.assigned_to=$1 ORDER BY t.created_at DESC`
	return r.list(ctx, query, technicianID)
}

// Assign records the technician and moves the ticket to IN_PROGRESS. Resolved
// tickets are left untouched and reported as ErrTicketResolved.
func (r *ticketRepository) Assign(ctx context.Context, id, technicianID, technicianName string) error {
	const query = `
        UPDATE tickets SET assigned_to=$2, assigned_name=$3, status='IN_PROGRESS'
        WHERE id=$1 AND status <> 'RESOLVED'`
	return resolvedGuard(r.db.Exec(ctx, query, id, technicianID, technicianName))
}

// MarkResolved sets the terminal state exactly once.
func (r *ticketRepository) MarkResolved(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE tickets SET status='RESOLVED', resolved_at=$2
        WHERE id=$1 AND status <> 'RESOLVED'`
	return resolvedGuard(r.db.Exec(ctx, query, id, at))
}

func (r *ticketRepository) UpdatePriority(ctx context.Context, id string, priority domain.TicketPriority) error {
	const query = `UPDATE tickets SET priority=$2 WHERE id=$1`
	return requireRow(r.db.Exec(ctx, query, id, priority))
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tickets WHERE id=$1`
	return requireRow(r.db.Exec(ctx, query, id))
}

// Snapshot reads the whole collection in one statement for reporting.
func (r *ticketRepository) Snapshot(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT id, title, status, created_at, resolved_at FROM tickets ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(&ticket.ID, &ticket.Title, &ticket.Status, &ticket.CreatedAt, &ticket.ResolvedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

func (r *ticketRepository) list(ctx context.Context, query string, arg any) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func ticketFields(ticket *domain.Ticket) []any {
	return []any{
		&ticket.ID,
		&ticket.UserID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.AssignedTo,
		&ticket.AssignedName,
		&ticket.CreatedAt,
		&ticket.ResolvedAt,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(ticketFields(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func resolvedGuard(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketResolved
	}
	return nil
}
