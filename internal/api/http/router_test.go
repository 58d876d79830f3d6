package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type stubTickets struct {
	tickets []domain.Ticket
}

func (s *stubTickets) Create(context.Context, *domain.Ticket) error { return errors.New("read only") }
func (s *stubTickets) GetByID(context.Context, string) (*domain.Ticket, error) {
	return nil, pgx.ErrNoRows
}
func (s *stubTickets) ListAll(context.Context) ([]domain.Ticket, error) { return s.tickets, nil }
func (s *stubTickets) ListByOwner(context.Context, string) ([]domain.Ticket, error) {
	return []domain.Ticket{}, nil
}
func (s *stubTickets) ListByAssignee(context.Context, string) ([]domain.Ticket, error) {
	return []domain.Ticket{}, nil
}
func (s *stubTickets) Assign(context.Context, string, string, string) error { return pgx.ErrNoRows }
func (s *stubTickets) MarkResolved(context.Context, string, time.Time) error {
	return pgx.ErrNoRows
}
func (s *stubTickets) UpdatePriority(context.Context, string, domain.TicketPriority) error {
	return pgx.ErrNoRows
}
func (s *stubTickets) Delete(context.Context, string) error               { return pgx.ErrNoRows }
func (s *stubTickets) Snapshot(context.Context) ([]domain.Ticket, error) { return s.tickets, nil }

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, tickets []domain.Ticket, postgres handlers.Pinger) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	tokens := auth.NewTokenManager("router-test-secret", time.Hour)

	repo := &stubTickets{tickets: tickets}
	ticketService := service.NewTicketService(service.TicketDependencies{TicketRepo: repo})
	authService := service.NewAuthService(service.AuthDependencies{Sessions: tokens})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	RegisterMiddlewares(app, logger, metrics, MiddlewareConfig{Timeout: time.Second, CORSOrigins: "*"})
	app.Get("/boom", func(*fiber.Ctx) error { panic("kaboom") })
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk-service", "test", postgres, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, service.NewReportService(repo)),
		Admin:          handlers.NewAdminHandler(service.NewAdminService(nil), authService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
	})
	return &testServer{app: app, tokens: tokens, metrics: metrics}
}

func (s *testServer) token(t *testing.T, role domain.Role) string {
	t.Helper()
	token, _, err := s.tokens.GenerateToken(&domain.User{ID: "id-" + string(role), Role: role, Username: string(role)})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeError(t *testing.T, data []byte) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestRouteGuards(t *testing.T) {
	srv := newTestServer(t, nil, stubPinger{})
	userToken := srv.token(t, domain.RoleUser)
	techToken := srv.token(t, domain.RoleTechnician)

	tests := []struct {
		name    string
		method  string
		path    string
		token   string
		status  int
		code    string
		message string
	}{
		{"no token", "GET", "/tickets", "", 401, "UNAUTHORIZED", "No token provided"},
		{"bad token", "GET", "/tickets", "not.a.jwt", 403, "FORBIDDEN", "Invalid token"},
		{"user on admin route", "GET", "/tickets", userToken, 403, "FORBIDDEN", "Admins only"},
		{"user on technician route", "GET", "/tickets/assigned", userToken, 403, "FORBIDDEN", "Technicians only"},
		{"technician creating ticket", "POST", "/tickets", techToken, 403, "FORBIDDEN", "Users only"},
		{"resolve alias guarded", "POST", "/ticket/x/resolve", userToken, 403, "FORBIDDEN", "Technicians only"},
		{"admin accounts guarded", "GET", "/admin/users", techToken, 403, "FORBIDDEN", "Admins only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := srv.do(t, tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeError(t, data)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	srv := newTestServer(t, nil, stubPinger{})
	resp, data := srv.do(t, "GET", "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, data).Code)
}

func TestCreateTicketBodyErrors(t *testing.T) {
	srv := newTestServer(t, nil, stubPinger{})
	userToken := srv.token(t, domain.RoleUser)

	resp, data := srv.do(t, "POST", "/tickets", userToken, `{"title":"Printer"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, data)
	assert.Equal(t, "MISSING_FIELDS", body.Code)
	assert.Equal(t, "Please provide description, priority, category", body.Message)

	resp, data = srv.do(t, "POST", "/tickets", userToken, `{"title":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, data).Code)

	resp, data = srv.do(t, "POST", "/tickets", userToken,
		`{"title":"`+strings.Repeat("x", 300)+`","description":"d","priority":"Low","category":"Other"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeError(t, data)
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	assert.Equal(t, "Invalid value for title", body.Message)

	resp, data = srv.do(t, "POST", "/tickets", userToken,
		`{"title":"Printer","description":"Jammed","priority":"Low","category":"Plumbing"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_CATEGORY", decodeError(t, data).Code)
}

func TestMalformedTicketIDIsNotFound(t *testing.T) {
	srv := newTestServer(t, nil, stubPinger{})
	resp, data := srv.do(t, "DELETE", "/tickets/42", srv.token(t, domain.RoleUser), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, data).Code)
}

func TestAdminTicketListing(t *testing.T) {
	created := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	resolved := created.Add(time.Hour)
	tech, techName := "tech-1", "Tess Tech"
	srv := newTestServer(t, []domain.Ticket{
		{ID: "t-2", UserID: "u-1", UserName: "Alice", Title: "VPN", Status: domain.TicketStatusResolved,
			Priority: domain.TicketPriorityHigh, Category: domain.CategoryNetwork,
			AssignedTo: &tech, AssignedName: &techName, CreatedAt: created, ResolvedAt: &resolved},
		{ID: "t-1", UserID: "u-1", UserName: "Alice", Title: "Mouse", Status: domain.TicketStatusOpen,
			Priority: domain.TicketPriorityLow, Category: domain.CategoryHardware, CreatedAt: created},
	}, stubPinger{})
	adminToken := srv.token(t, domain.RoleAdmin)

	resp, data := srv.do(t, "GET", "/tickets", adminToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0]["user_name"])
	assert.Equal(t, "Tess Tech", rows[0]["assigned_name"])
	assert.Nil(t, rows[1]["assigned_name"])
	assert.Nil(t, rows[1]["resolvedAt"])

	resp, data = srv.do(t, "GET", "/tickets/report", adminToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report domain.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, domain.ReportSummary{Open: 1, Resolved: 1}, report.Summary)
	assert.Equal(t, []domain.WeekBucket{{Year: 2024, Week: 10, TicketCount: 2}}, report.Weekly)
	require.Len(t, report.AllTickets, 2)
	assert.Equal(t, "2024-03-04T11:00:00Z", *report.AllTickets[0].ResolvedAt)
}

func TestPanicsBecomeInternalErrors(t *testing.T) {
	srv := newTestServer(t, nil, stubPinger{})
	resp, data := srv.do(t, "GET", "/boom", "", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeError(t, data)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, body.Message, "kaboom")
}

func TestHealthProbes(t *testing.T) {
	srv := newTestServer(t, nil, stubPinger{})
	resp, _ := srv.do(t, "GET", "/health/live", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := srv.do(t, "GET", "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `"redis":"disabled"`)

	down := newTestServer(t, nil, stubPinger{err: errors.New("connection refused")})
	resp, _ = down.do(t, "GET", "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, stubPinger{})
	srv.do(t, "GET", "/tickets", "", "")

	resp, data := srv.do(t, "GET", "/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "helpdesk_http_requests_total")
	assert.Contains(t, string(data), `helpdesk_domain_errors_total{code="UNAUTHORIZED"} 1`)
}
