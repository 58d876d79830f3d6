package notify

import (
	"context"

	"go.uber.org/zap"
)

// Message is a single outbound mail. Exactly one of HTML and Text is used;
// HTML wins when both are set.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers a message with at most one attempt.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer records mail in the log instead of delivering it. Bodies are not
// logged because they may carry one-time codes.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer builds a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs recipient and subject.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("mail transport disabled; message not sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
