package service

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// maxWeekBuckets bounds the weekly series to the most recent weeks.
const maxWeekBuckets = 10

// ReportService derives read-only aggregates from the ticket collection.
type ReportService struct {
	tickets repository.TicketRepository
}

// NewReportService builds the service.
func NewReportService(tickets repository.TicketRepository) *ReportService {
	return &ReportService{tickets: tickets}
}

// GetReport reads one snapshot of all tickets and aggregates it.
func (s *ReportService) GetReport(ctx context.Context, actor domain.Actor) (*domain.Report, error) {
	if err := requireRole(actor, domain.RoleAdmin, "Admins only"); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.Snapshot(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	report := BuildReport(tickets)
	return &report, nil
}

type isoWeek struct {
	year int
	week int
}

// BuildReport computes status counts, the ten most recent ISO-week buckets of
// creation dates in UTC, and the flattened ticket list in input order.
func BuildReport(tickets []domain.Ticket) domain.Report {
	report := domain.Report{
		Weekly:     []domain.WeekBucket{},
		AllTickets: make([]domain.ReportTicket, 0, len(tickets)),
	}

	weeks := map[isoWeek]int{}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			report.Summary.Open++
		case domain.TicketStatusInProgress:
			report.Summary.InProgress++
		case domain.TicketStatusResolved:
			report.Summary.Resolved++
		}

		year, week := t.CreatedAt.UTC().ISOWeek()
		weeks[isoWeek{year: year, week: week}]++

		row := domain.ReportTicket{
			ID:        t.ID,
			Title:     t.Title,
			Status:    t.Status,
			CreatedAt: formatTimestamp(t.CreatedAt),
		}
		if t.ResolvedAt != nil {
			resolved := formatTimestamp(*t.ResolvedAt)
			row.ResolvedAt = &resolved
		}
		report.AllTickets = append(report.AllTickets, row)
	}

	for key, count := range weeks {
		report.Weekly = append(report.Weekly, domain.WeekBucket{Year: key.year, Week: key.week, TicketCount: count})
	}
	sort.Slice(report.Weekly, func(i, j int) bool {
		if report.Weekly[i].Year != report.Weekly[j].Year {
			return report.Weekly[i].Year > report.Weekly[j].Year
		}
		return report.Weekly[i].Week > report.Weekly[j].Week
	})
	if len(report.Weekly) > maxWeekBuckets {
		report.Weekly = report.Weekly[:maxWeekBuckets]
	}
	return report
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
