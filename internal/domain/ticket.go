package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
)

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// Valid reports whether p is one of the fixed priorities.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// TicketCategory classifies the reported problem.
type TicketCategory string

const (
	CategorySoftware TicketCategory = "Software Issue"
	CategoryHardware TicketCategory = "Hardware Issue"
	CategoryNetwork  TicketCategory = "Network Issue"
	CategoryAccess   TicketCategory = "Access Request"
	CategoryOther    TicketCategory = "Other"
)

// Categories lists the accepted categories in display order.
var Categories = []TicketCategory{
	CategorySoftware,
	CategoryHardware,
	CategoryNetwork,
	CategoryAccess,
	CategoryOther,
}

// Valid reports whether c is one of the fixed categories.
func (c TicketCategory) Valid() bool {
	for _, candidate := range Categories {
		if c == candidate {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests.
//
// AssignedName is copied from the technician at assignment time and is not
// refreshed when the technician is renamed. UserName is only populated by
// admin listings, which join the creator's current name.
type Ticket struct {
	ID           string
	UserID       string
	UserName     string
	Title        string
	Description  string
	Category     TicketCategory
	Priority     TicketPriority
	Status       TicketStatus
	AssignedTo   *string
	AssignedName *string
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}

// IsAssignedTo reports whether userID is the ticket's technician.
func (t *Ticket) IsAssignedTo(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}
