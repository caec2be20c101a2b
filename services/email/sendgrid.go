package emailsvc

import (
	"context"
	"net/http"
	"net/mail"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/kepzesmindenkinek/backend/core"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"

	// upper bound of a call made without a deadline
	sendgridClientTimeout = 30 * time.Second
)

type sendgridProvider struct {
	key    string
	host   string
	client *http.Client
}

var _ Provider = (*sendgridProvider)(nil)

// NewSendgridProvider returns a SendGrid v3 client. An empty host means the public API.
func NewSendgridProvider(apiKey, host string) (Provider, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(apiKey, "apiKey"),
	).Check(); err != nil {
		return nil, errors.Wrap(err, "sendgrid")
	}
	if host == "" {
		host = sendgridHost
	}
	return &sendgridProvider{key: apiKey, host: host, client: &http.Client{Timeout: sendgridClientTimeout}}, nil
}

func (p *sendgridProvider) Name() string { return ProviderSendgrid }

func (p *sendgridProvider) prepare(env core.Envelope) *sgmail.SGMailV3 {
	per := sgmail.NewPersonalization()
	per.Subject = env.Subject()
	for _, to := range env.To() {
		per.AddTos(p.getSGEmail(to))
	}

	from := env.From()
	m := sgmail.NewV3Mail()
	m.SetFrom(p.getSGEmail(from))
	m.AddPersonalizations(per)
	m.AddContent(sgmail.NewContent("text/html", env.HTML()))
	return m
}

func (p *sendgridProvider) getSGEmail(addr mail.Address) *sgmail.Email {
	return sgmail.NewEmail(addr.Name, addr.Address)
}

func (p *sendgridProvider) Send(ctx context.Context, env core.Envelope) (core.DeliveryOutcome, error) {
	req := sendgrid.GetRequest(p.key, sendgridEndpoint, p.host)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(p.prepare(env))

	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return core.DeliveryOutcome{}, &DeliveryError{Provider: ProviderSendgrid, Detail: "building request", Err: err}
	}
	httpRes, err := p.client.Do(httpReq.WithContext(ctx))
	if err != nil {
		return core.DeliveryOutcome{}, &DeliveryError{Provider: ProviderSendgrid, Err: err}
	}
	res, err := rest.BuildResponse(httpRes)
	if err != nil {
		return core.DeliveryOutcome{}, &DeliveryError{Provider: ProviderSendgrid, StatusCode: httpRes.StatusCode, Detail: "reading response", Err: err}
	}
	if res.StatusCode >= http.StatusBadRequest {
		return core.DeliveryOutcome{}, &DeliveryError{Provider: ProviderSendgrid, StatusCode: res.StatusCode, Detail: res.Body}
	}

	var msgID string
	if ids := res.Headers["X-Message-Id"]; len(ids) > 0 {
		msgID = ids[0]
	}
	return core.DeliveryOutcome{
		Status:     core.DeliverySent,
		Provider:   ProviderSendgrid,
		MessageID:  msgID,
		StatusCode: res.StatusCode,
		Body:       res.Body,
	}, nil
}
