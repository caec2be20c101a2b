package emailsvc

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"

	"github.com/kepzesmindenkinek/backend/core"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLSPolicy string // ssl_tls | starttls | none
	Timeout   time.Duration
}

type smtpProvider struct {
	client *mail.Client
}

var _ Provider = (*smtpProvider)(nil)

func NewSMTPProvider(conf SMTPConfig) (Provider, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.Host, "host"),
	).Check(); err != nil {
		return nil, errors.Wrap(err, "smtp")
	}

	opts := []mail.Option{mail.WithTLSPolicy(tlsPolicy(conf.TLSPolicy))}
	if conf.TLSPolicy == "ssl_tls" {
		opts = append(opts, mail.WithSSL())
	}
	if conf.Port > 0 {
		opts = append(opts, mail.WithPort(conf.Port))
	}
	if conf.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(conf.Username),
			mail.WithPassword(conf.Password),
		)
	}
	if conf.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(conf.Timeout))
	}

	client, err := mail.NewClient(conf.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating smtp client")
	}
	return &smtpProvider{client: client}, nil
}

func tlsPolicy(policy string) mail.TLSPolicy {
	switch policy {
	case "ssl_tls", "starttls":
		return mail.TLSMandatory
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}

func (p *smtpProvider) Name() string { return ProviderSMTP }

func (p *smtpProvider) Send(ctx context.Context, env core.Envelope) (core.DeliveryOutcome, error) {
	m := mail.NewMsg()
	from := env.From()
	if err := m.FromFormat(from.Name, from.Address); err != nil {
		return core.DeliveryOutcome{}, &DeliveryError{Provider: ProviderSMTP, Detail: "invalid sender", Err: err}
	}
	for _, to := range env.To() {
		if err := m.AddToFormat(to.Name, to.Address); err != nil {
			return core.DeliveryOutcome{}, &DeliveryError{Provider: ProviderSMTP, Detail: "invalid recipient " + to.Address, Err: err}
		}
	}
	m.Subject(env.Subject())
	m.SetBodyString(mail.TypeTextHTML, env.HTML())
	m.SetMessageID()

	if err := p.client.DialAndSendWithContext(ctx, m); err != nil {
		return core.DeliveryOutcome{}, &DeliveryError{Provider: ProviderSMTP, Err: err}
	}

	var msgID string
	if ids := m.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
		msgID = ids[0]
	}
	return core.DeliveryOutcome{Status: core.DeliverySent, Provider: ProviderSMTP, MessageID: msgID}, nil
}
