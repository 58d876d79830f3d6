package notify

import (
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// Template names.
const (
	TemplateVerificationCode = "verification_code"
	TemplateResetCode        = "reset_code"
	TemplateTicketCreated    = "ticket_created"
	TemplateTicketAssigned   = "ticket_assigned"
	TemplateTicketCommented  = "ticket_commented"
)

type templateSource struct {
	subject string
	body    string
	html    bool
}

var builtinTemplates = map[string]templateSource{
	TemplateVerificationCode: {
		subject: "Your HelpDesk Registration Verification Code",
		body:    "Your verification code is: {{ code }}. It expires in {{ minutes }} minutes.",
	},
	TemplateResetCode: {
		subject: "Your HelpDesk Password Reset Code",
		body:    "Your password reset code is: {{ code }}. It expires in {{ minutes }} minutes.",
	},
	TemplateTicketCreated: {
		subject: "New Ticket Submitted",
		html:    true,
		body: `<p>A new ticket has been submitted.<br>
<strong>Title:</strong> {{ title }}<br>
<strong>Category:</strong> {{ category }}<br>
<strong>Priority:</strong> {{ priority }}<br>
<strong>Description:</strong> {{ description }}<br>
Please log in to the admin dashboard to view and assign.</p>`,
	},
	TemplateTicketAssigned: {
		subject: "New Ticket Assigned to You",
		html:    true,
		body: `<p>Hello {{ technician_name }},<br>
Your assigned ticket ID is <strong>{{ ticket_id }}</strong>.<br>
Please log in to the dashboard to view details and respond.</p>`,
	},
	TemplateTicketCommented: {
		subject: "Your Ticket Has Been Responded",
		html:    true,
		body: `<p>Hello {{ owner_name }},<br>
Your ticket (ID: {{ ticket_id }}) has a new response:<br>
<em>{{ comment|safe }}</em><br>
Please log in to check the update.</p>`,
	},
}

type compiledTemplate struct {
	subject *pongo2.Template
	body    *pongo2.Template
	html    bool
}

// Templates renders the notification mails.
type Templates struct {
	set map[string]compiledTemplate
}

// NewTemplates compiles the built-in templates.
func NewTemplates() (*Templates, error) {
	set := make(map[string]compiledTemplate, len(builtinTemplates))
	for name, src := range builtinTemplates {
		subject, err := pongo2.FromString(src.subject)
		if err != nil {
			return nil, fmt.Errorf("compile %s subject: %w", name, err)
		}
		body, err := pongo2.FromString(src.body)
		if err != nil {
			return nil, fmt.Errorf("compile %s body: %w", name, err)
		}
		set[name] = compiledTemplate{subject: subject, body: body, html: src.html}
	}
	return &Templates{set: set}, nil
}

// Render builds the message for the named template addressed to to.
// Values in data are HTML-escaped unless the template marks them safe.
func (t *Templates) Render(name, to string, data map[string]any) (Message, error) {
	tpl, ok := t.set[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", name)
	}

	ctx := pongo2.Context{}
	for k, v := range data {
		ctx[k] = v
	}

	subject, err := tpl.subject.Execute(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", name, err)
	}
	body, err := tpl.body.Execute(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("render %s body: %w", name, err)
	}

	msg := Message{To: to, Subject: strings.TrimSpace(subject)}
	if tpl.html {
		msg.HTML = body
	} else {
		msg.Text = body
	}
	return msg, nil
}
