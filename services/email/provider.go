// Package emailsvc delivers application emails through a configurable provider.
package emailsvc

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/kepzesmindenkinek/backend/core"
)

// provider names (config `courses_email.provider`)
const (
	ProviderSendgrid = "sendgrid"
	ProviderMailgun  = "mailgun"
	ProviderSMTP     = "smtp"
	ProviderConsole  = "console"
)

const (
	envSender = "EMAIL_SENDER"
	envAPIKey = "EMAIL_API_KEY"
)

var ErrUnknownProvider = errors.New("unknown email provider")

// Provider is the outbound boundary of the dispatcher. Implementations return
// a *DeliveryError when the provider rejects the email.
type Provider interface {
	Name() string
	Send(ctx context.Context, env core.Envelope) (core.DeliveryOutcome, error)
}

// ProviderFactory builds the provider client. A Dispatcher calls it until it succeeds once.
type ProviderFactory func() (Provider, error)

// DeliveryError is a provider-specific delivery failure.
type DeliveryError struct {
	Provider   string
	StatusCode int
	Detail     string
	Err        error
}

func (e *DeliveryError) Error() string {
	msg := e.Provider + " delivery failed"
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// resolveAPIKey gives EMAIL_API_KEY precedence over the configuration document.
func resolveAPIKey(conf *core.Config) string {
	if key := strings.TrimSpace(os.Getenv(envAPIKey)); key != "" {
		return key
	}
	return conf.Email.APIKey
}

// resolveSender gives EMAIL_SENDER precedence over the configuration document.
// An empty sender is left for the provider to reject.
func resolveSender(conf *core.Config) (name, address string) {
	address = conf.Email.Sender
	if env := strings.TrimSpace(os.Getenv(envSender)); env != "" {
		address = env
	}
	return conf.Email.SenderName, address
}

// NewProviderFactory returns the factory of the configured provider.
// The API key is resolved when the factory runs, not before.
func NewProviderFactory(conf *core.Config, logger core.Logger) (ProviderFactory, error) {
	switch name := strings.ToLower(conf.Email.Provider); name {
	case ProviderSendgrid:
		return func() (Provider, error) {
			return NewSendgridProvider(resolveAPIKey(conf), "")
		}, nil
	case ProviderMailgun:
		return func() (Provider, error) {
			return NewMailgunProvider(conf.Email.MailgunDomain, resolveAPIKey(conf), "")
		}, nil
	case ProviderSMTP:
		return func() (Provider, error) {
			return NewSMTPProvider(SMTPConfig{
				Host:      conf.Email.SMTPHost,
				Port:      conf.Email.SMTPPort,
				Username:  conf.Email.SMTPUsername,
				Password:  conf.Email.SMTPPassword,
				TLSPolicy: conf.Email.SMTPTLS,
				Timeout:   conf.Email.Timeout,
			})
		}, nil
	case ProviderConsole, "":
		return func() (Provider, error) {
			return NewConsoleProvider(logger), nil
		}, nil
	default:
		return nil, errors.Wrap(ErrUnknownProvider, name)
	}
}
