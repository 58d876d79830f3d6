package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/notify"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// NotificationRecorder counts mail outcomes.
type NotificationRecorder interface {
	RecordNotification(template, outcome string)
}

// NotificationService turns ticket events into mail and delivers one-time codes.
type NotificationService struct {
	dispatcher events.Dispatcher
	users      repository.UserRepository
	mailer     notify.Mailer
	templates  *notify.Templates
	cfg        config.NotificationConfig
	codeTTL    time.Duration
	recorder   NotificationRecorder
	logger     *zap.Logger
}

// NotificationDependencies bundles collaborators. Recorder is optional.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	UserRepo   repository.UserRepository
	Mailer     notify.Mailer
	Templates  *notify.Templates
	Config     config.NotificationConfig
	CodeTTL    time.Duration
	Recorder   NotificationRecorder
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.CodeTTL
	if ttl <= 0 {
		ttl = auth.DefaultVerificationTTL
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		users:      deps.UserRepo,
		mailer:     deps.Mailer,
		templates:  deps.Templates,
		cfg:        deps.Config,
		codeTTL:    ttl,
		recorder:   deps.Recorder,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketCommented, n.handleTicketCommented)
}

// SendCode mails a one-time code synchronously.
func (n *NotificationService) SendCode(ctx context.Context, email, code string, purpose auth.Purpose) error {
	name := notify.TemplateVerificationCode
	if purpose == auth.PurposePasswordReset {
		name = notify.TemplateResetCode
	}
	return n.send(ctx, name, email, map[string]any{
		"code":    code,
		"minutes": int(n.codeTTL / time.Minute),
	})
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}

	to, err := n.adminEmail(ctx)
	if err != nil {
		return err
	}
	if to == "" {
		n.logger.Warn("no admin recipient for new ticket notice", zap.String("ticket_id", event.TicketID))
		return nil
	}

	return n.send(ctx, notify.TemplateTicketCreated, to, map[string]any{
		"ticket_id":   event.TicketID,
		"title":       payload.Title,
		"category":    string(payload.Category),
		"priority":    string(payload.Priority),
		"description": payload.Description,
	})
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}

	technician, err := n.users.GetByID(ctx, payload.TechnicianID)
	if err != nil {
		return fmt.Errorf("load technician: %w", err)
	}

	return n.send(ctx, notify.TemplateTicketAssigned, technician.Email, map[string]any{
		"ticket_id":       event.TicketID,
		"technician_name": payload.TechnicianName,
	})
}

func (n *NotificationService) handleTicketCommented(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}

	owner, err := n.users.GetByID(ctx, payload.OwnerID)
	if err != nil {
		return fmt.Errorf("load ticket owner: %w", err)
	}

	return n.send(ctx, notify.TemplateTicketCommented, owner.Email, map[string]any{
		"ticket_id":  event.TicketID,
		"owner_name": owner.Name,
		"comment":    notify.SanitizeHTML(payload.Comment),
	})
}

// adminEmail prefers the configured address and falls back to the oldest admin account.
func (n *NotificationService) adminEmail(ctx context.Context) (string, error) {
	if addr := strings.TrimSpace(n.cfg.AdminEmail); addr != "" {
		return addr, nil
	}
	admin, err := n.users.FirstByRole(ctx, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load admin: %w", err)
	}
	return admin.Email, nil
}

func (n *NotificationService) send(ctx context.Context, template, to string, data map[string]any) error {
	msg, err := n.templates.Render(template, to, data)
	if err != nil {
		n.record(template, "failed")
		return err
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.record(template, "failed")
		return fmt.Errorf("send %s: %w", template, err)
	}
	n.record(template, "sent")
	n.logger.Debug("notification sent", zap.String("template", template), zap.String("to", to))
	return nil
}

func (n *NotificationService) record(template, outcome string) {
	if n.recorder != nil {
		n.recorder.RecordNotification(template, outcome)
	}
}
