package domain

// ReportSummary counts tickets per status.
type ReportSummary struct {
	Open       int `json:"open_tickets"`
	InProgress int `json:"in_progress_tickets"`
	Resolved   int `json:"resolved_tickets"`
}

// WeekBucket counts tickets created in one ISO week.
type WeekBucket struct {
	Year        int `json:"year"`
	Week        int `json:"week"`
	TicketCount int `json:"ticket_count"`
}

// ReportTicket is the flattened ticket row of a report. Timestamps are RFC 3339 in UTC.
type ReportTicket struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Status     TicketStatus `json:"status"`
	CreatedAt  string       `json:"createdAt"`
	ResolvedAt *string      `json:"resolvedAt"`
}

// Report is the read-only aggregate served to admins.
type Report struct {
	Summary    ReportSummary  `json:"summary"`
	Weekly     []WeekBucket   `json:"weekly"`
	AllTickets []ReportTicket `json:"allTickets"`
}
