package emailsvc

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/pkg/errors"

	"github.com/kepzesmindenkinek/backend/core"
)

type mailgunProvider struct {
	mg *mailgun.MailgunImpl
}

var _ Provider = (*mailgunProvider)(nil)

// NewMailgunProvider returns a Mailgun client for domain. An empty apiBase means the US region.
func NewMailgunProvider(domain, apiKey, apiBase string) (Provider, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(domain, "domain"),
		vala.StringNotEmpty(apiKey, "apiKey"),
	).Check(); err != nil {
		return nil, errors.Wrap(err, "mailgun (domain and private key are mandatory)")
	}
	mg := mailgun.NewMailgun(domain, apiKey)
	if apiBase != "" {
		mg.SetAPIBase(apiBase)
	}
	return &mailgunProvider{mg: mg}, nil
}

func (p *mailgunProvider) Name() string { return ProviderMailgun }

func (p *mailgunProvider) Send(ctx context.Context, env core.Envelope) (core.DeliveryOutcome, error) {
	from := env.From()
	message := p.mg.NewMessage(from.String(), env.Subject(), "", env.To().Addresses()...)
	message.SetHtml(env.HTML())

	resp, id, err := p.mg.Send(ctx, message)
	if err != nil {
		dErr := &DeliveryError{Provider: ProviderMailgun, Err: err}
		var unexpected *mailgun.UnexpectedResponseError
		if errors.As(err, &unexpected) {
			dErr.StatusCode = unexpected.Actual
			dErr.Detail = string(unexpected.Data)
		}
		return core.DeliveryOutcome{}, dErr
	}
	return core.DeliveryOutcome{
		Status:    core.DeliverySent,
		Provider:  ProviderMailgun,
		MessageID: id,
		Body:      resp,
	}, nil
}
