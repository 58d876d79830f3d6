package notify

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestComposeRoundTrip(t *testing.T) {
	from := mail.Address{Name: "HelpDesk System", Address: "noreply@example.com"}
	raw, err := Compose(from, Message{
		To:      "alice@x.com",
		Subject: "Your HelpDesk Password Reset Code",
		Text:    "Your password reset code is: 123456.",
	}, time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Your HelpDesk Password Reset Code", subject)

	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "alice@x.com", to[0].Address)

	part, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Equal(t, "Your password reset code is: 123456.", string(body))
}

func TestComposeUsesHTMLContentType(t *testing.T) {
	raw, err := Compose(mail.Address{Address: "noreply@example.com"}, Message{
		To:      "admin@x.com",
		Subject: "New Ticket Submitted",
		HTML:    "<p>hi</p>",
	}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Content-Type: text/html")
}

func TestTemplatesRenderCode(t *testing.T) {
	tpl, err := NewTemplates()
	require.NoError(t, err)

	msg, err := tpl.Render(TemplateVerificationCode, "alice@x.com", map[string]any{"code": "482913", "minutes": 15})
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", msg.To)
	assert.Equal(t, "Your HelpDesk Registration Verification Code", msg.Subject)
	assert.Equal(t, "Your verification code is: 482913. It expires in 15 minutes.", msg.Text)
	assert.Empty(t, msg.HTML)
}

func TestTemplatesEscapeTicketFields(t *testing.T) {
	tpl, err := NewTemplates()
	require.NoError(t, err)

	msg, err := tpl.Render(TemplateTicketCreated, "admin@x.com", map[string]any{
		"title":       "<img src=x onerror=alert(1)>",
		"category":    "Other",
		"priority":    "High",
		"description": "a & b",
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<img")
	assert.Contains(t, msg.HTML, "&lt;img")
	assert.Contains(t, msg.HTML, "a &amp; b")
}

func TestSanitizedCommentKeepsFormatting(t *testing.T) {
	tpl, err := NewTemplates()
	require.NoError(t, err)

	msg, err := tpl.Render(TemplateTicketCommented, "alice@x.com", map[string]any{
		"owner_name": "Alice",
		"ticket_id":  "t-1",
		"comment":    SanitizeHTML(`<script>alert(1)</script><b>Replaced the cable</b>`),
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "<b>Replaced the cable</b>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	tpl, err := NewTemplates()
	require.NoError(t, err)
	_, err = tpl.Render("nope", "a@x.com", nil)
	assert.Error(t, err)
}

func TestLogMailerOmitsBody(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.Send(context.Background(), Message{To: "a@x.com", Subject: "Code", Text: "secret 123456"}))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "a@x.com", entry.ContextMap()["to"])
	for _, v := range entry.ContextMap() {
		assert.NotContains(t, v, "123456")
	}
}
