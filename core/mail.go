package core

import (
	"bytes"
	"context"
	htmltmpl "html/template"
	"net/mail"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"

	appfs "github.com/kepzesmindenkinek/backend/fs"
)

const emailTemplatesDir = "templates/email"

var (
	templates   map[string]*htmltmpl.Template // {name: *Template}
	templateErr error
	tmplInit    sync.Once

	ErrTemplateNotFound = errors.New("email template not found")
)

// DeliveryStatus tells what happened to an email.
type DeliveryStatus int

const (
	// DeliverySuppressed means delivery was skipped (test mode); no provider was called.
	DeliverySuppressed DeliveryStatus = iota
	// DeliveryFailed means the provider call failed; the failure has been logged.
	DeliveryFailed
	// DeliverySent means the provider accepted the email.
	DeliverySent
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliverySuppressed:
		return "suppressed"
	case DeliveryFailed:
		return "failed"
	case DeliverySent:
		return "sent"
	default:
		return "unknown"
	}
}

type (
	// Addressee is anything that can receive an email (e.g. user.User).
	Addressee interface {
		EmailAddress() mail.Address
	}

	// Recipients is an ordered list of target addresses; ordering is irrelevant for delivery.
	Recipients []mail.Address

	EmailMessage struct {
		To      Recipients
		Subject string

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		HTMLContent  string
	}

	// ContextData is what email templates are executed with.
	ContextData struct {
		AppName string
		SiteURL string
		Data    interface{}
	}

	// Envelope is the provider facing request of one email. It is built right before dispatch and never mutated.
	Envelope struct {
		from    mail.Address
		to      Recipients
		subject string
		html    string
	}

	// DeliveryOutcome is the result of one send attempt.
	// On success it carries the provider's response unchanged.
	DeliveryOutcome struct {
		Status     DeliveryStatus
		Provider   string
		MessageID  string
		StatusCode int
		Body       string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// Send renders and sends one message synchronously. It never fails: errors are logged
		// and reported as a DeliveryFailed outcome.
		Send(ctx context.Context, msg *EmailMessage) DeliveryOutcome
		// SendMessages sends messages concurrently, without waiting for them.
		SendMessages(messages ...*EmailMessage)
	}
)

// To builds Recipients from plain addresses ("a@b.c" or "Name <a@b.c>"). Blank addresses are skipped.
func To(addrs ...string) Recipients {
	rcpts := make(Recipients, 0, len(addrs))
	for _, a := range addrs {
		a = CleanString(a)
		if a == "" {
			continue
		}
		if parsed, err := mail.ParseAddress(a); err == nil {
			rcpts = append(rcpts, *parsed)
		} else {
			rcpts = append(rcpts, mail.Address{Address: a})
		}
	}
	return rcpts
}

// RecipientsOf converts each record of a homogeneous collection to its address.
func RecipientsOf[T Addressee](records []T) Recipients {
	rcpts := make(Recipients, 0, len(records))
	for _, r := range records {
		if addr := r.EmailAddress(); addr.Address != "" {
			rcpts = append(rcpts, addr)
		}
	}
	return rcpts
}

// Addresses returns the plain email addresses.
func (r Recipients) Addresses() []string {
	addrs := make([]string, 0, len(r))
	for _, a := range r {
		addrs = append(addrs, a.Address)
	}
	return addrs
}

func (r Recipients) String() string {
	return strings.Join(r.Addresses(), ", ")
}

func NewEnvelope(from mail.Address, to Recipients, subject, html string) Envelope {
	rcpts := make(Recipients, len(to))
	copy(rcpts, to)
	return Envelope{from: from, to: rcpts, subject: subject, html: html}
}

func (e Envelope) From() mail.Address { return e.from }
func (e Envelope) Subject() string    { return e.subject }
func (e Envelope) HTML() string       { return e.html }

func (e Envelope) To() Recipients {
	rcpts := make(Recipients, len(e.to))
	copy(rcpts, e.to)
	return rcpts
}

func (o DeliveryOutcome) Sent() bool { return o.Status == DeliverySent }

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.HTMLContent != "" }

// Render executes the message template, if any, into HTMLContent.
func (m *EmailMessage) Render(base ContextData) error {
	if m.TemplateName == "" {
		return nil
	}
	tmplInit.Do(parseTemplates) // only execute once during first request
	if templateErr != nil {
		return errors.Wrap(templateErr, "parsing email templates")
	}

	tmpl, ok := templates[m.TemplateName]
	if !ok {
		return errors.Wrap(ErrTemplateNotFound, m.TemplateName)
	}

	base.Data = m.TemplateData
	var buff bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buff, "base", base); err != nil {
		return errors.Wrapf(err, "executing %s template", m.TemplateName)
	}
	m.HTMLContent = buff.String()
	return nil
}

func parseTemplates() {
	templates = make(map[string]*htmltmpl.Template)

	fps, err := appfs.Glob(path.Join(emailTemplatesDir, "*.gohtml"))
	if err != nil {
		templateErr = err
		return
	}
	basePath := path.Join(emailTemplatesDir, "_base.gohtml")
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		tmpl, err := htmltmpl.New(fname).Option("missingkey=error").ParseFS(appfs.FS, basePath, fp)
		if err != nil {
			templateErr = errors.Wrap(err, fname)
			return
		}
		templates[strings.TrimSuffix(fname, ".gohtml")] = tmpl
	}
}
