package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/notify"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memUsers struct {
	mu    sync.Mutex
	clock *testClock
	byID  map[string]*domain.User
	order []string
}

var _ repository.UserRepository = (*memUsers)(nil)

func newMemUsers(clock *testClock) *memUsers {
	return &memUsers{clock: clock, byID: map[string]*domain.User{}}
}

func (r *memUsers) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.clock.Now()
	stored := *user
	r.byID[user.ID] = &stored
	r.order = append(r.order, user.ID)
	return nil
}

func (r *memUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if u, ok := r.byID[id]; ok && match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *memUsers) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	if u, err := r.find(func(u *domain.User) bool { return u.Email == identifier }); err == nil {
		return u, nil
	}
	return r.find(func(u *domain.User) bool { return u.Username == identifier })
}

func (r *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *memUsers) UsernameExists(_ context.Context, username string) (bool, error) {
	_, err := r.find(func(u *domain.User) bool { return u.Username == username })
	return err == nil, nil
}

func (r *memUsers) UpdatePassword(_ context.Context, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memUsers) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := []domain.User{}
	for _, id := range r.order {
		if u, ok := r.byID[id]; ok && u.Role == role {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *memUsers) FirstByRole(_ context.Context, role domain.Role) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Role == role })
}

func (r *memUsers) DeleteByRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok || u.Role != role {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *memUsers) rename(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id].Name = name
}

type memTickets struct {
	mu    sync.Mutex
	clock *testClock
	users *memUsers
	byID  map[string]*domain.Ticket

	resolveErr error
}

var _ repository.TicketRepository = (*memTickets)(nil)

func newMemTickets(clock *testClock, users *memUsers) *memTickets {
	return &memTickets{clock: clock, users: users, byID: map[string]*domain.Ticket{}}
}

func (r *memTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.clock.Now()
	stored := *ticket
	r.byID[ticket.ID] = &stored
	return nil
}

func (r *memTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (r *memTickets) list(match func(*domain.Ticket) bool) []domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []domain.Ticket{}
	for _, t := range r.byID {
		if match(t) {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (r *memTickets) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	tickets := r.list(func(*domain.Ticket) bool { return true })
	for i := range tickets {
		if owner, err := r.users.GetByID(ctx, tickets[i].UserID); err == nil {
			tickets[i].UserName = owner.Name
		}
	}
	return tickets, nil
}

func (r *memTickets) ListByOwner(_ context.Context, userID string) ([]domain.Ticket, error) {
	return r.list(func(t *domain.Ticket) bool { return t.UserID == userID }), nil
}

func (r *memTickets) ListByAssignee(_ context.Context, technicianID string) ([]domain.Ticket, error) {
	return r.list(func(t *domain.Ticket) bool { return t.IsAssignedTo(technicianID) }), nil
}

func (r *memTickets) Assign(_ context.Context, id, technicianID, technicianName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok || t.Status == domain.TicketStatusResolved {
		return repository.ErrTicketResolved
	}
	t.AssignedTo = &technicianID
	t.AssignedName = &technicianName
	t.Status = domain.TicketStatusInProgress
	return nil
}

func (r *memTickets) MarkResolved(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolveErr != nil {
		return r.resolveErr
	}
	t, ok := r.byID[id]
	if !ok || t.Status == domain.TicketStatusResolved {
		return repository.ErrTicketResolved
	}
	t.Status = domain.TicketStatusResolved
	t.ResolvedAt = &at
	return nil
}

func (r *memTickets) UpdatePriority(_ context.Context, id string, priority domain.TicketPriority) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Priority = priority
	return nil
}

func (r *memTickets) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *memTickets) Snapshot(_ context.Context) ([]domain.Ticket, error) {
	return r.list(func(*domain.Ticket) bool { return true }), nil
}

type memComments struct {
	mu       sync.Mutex
	clock    *testClock
	users    *memUsers
	comments []domain.Comment
}

func (r *memComments) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = uuid.NewString()
	comment.CreatedAt = r.clock.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *memComments) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []domain.Comment{}
	for _, c := range r.comments {
		if c.TicketID == ticketID {
			if author, err := r.users.GetByID(ctx, c.UserID); err == nil {
				c.Commenter = author.Name
			} else {
				c.UserID = ""
			}
			result = append(result, c)
		}
	}
	return result, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) to(addr string) []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []notify.Message
	for _, msg := range m.sent {
		if msg.To == addr {
			out = append(out, msg)
		}
	}
	return out
}

type capturedCode struct {
	email   string
	code    string
	purpose auth.Purpose
}

type codeInbox struct {
	mu    sync.Mutex
	codes []capturedCode
	err   error
}

func (c *codeInbox) SendCode(_ context.Context, email, code string, purpose auth.Purpose) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.codes = append(c.codes, capturedCode{email: email, code: code, purpose: purpose})
	return nil
}

func (c *codeInbox) last() capturedCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.codes) == 0 {
		return capturedCode{}
	}
	return c.codes[len(c.codes)-1]
}

var errMailDown = errors.New("dial tcp: connection refused")
