package domain

import "time"

// Comment is a technician response attached to a ticket. Comments are append-only.
type Comment struct {
	ID        string
	TicketID  string
	UserID    string
	Commenter string
	Body      string
	CreatedAt time.Time
}
