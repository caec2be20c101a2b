package emailsvc

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kepzesmindenkinek/backend/core"
)

// consoleProvider writes emails to the log instead of sending them (development).
type consoleProvider struct {
	logger core.Logger
}

var _ Provider = (*consoleProvider)(nil)

func NewConsoleProvider(logger core.Logger) Provider {
	return &consoleProvider{logger: logger}
}

func (p *consoleProvider) Name() string { return ProviderConsole }

func (p *consoleProvider) Send(_ context.Context, env core.Envelope) (core.DeliveryOutcome, error) {
	id := uuid.New().String()
	body, err := formatMessage(id, env)
	if err != nil {
		return core.DeliveryOutcome{}, &DeliveryError{Provider: ProviderConsole, Err: err}
	}
	p.logger.Info(body)
	return core.DeliveryOutcome{Status: core.DeliverySent, Provider: ProviderConsole, MessageID: id}, nil
}

func formatMessage(id string, env core.Envelope) (string, error) {
	body := new(strings.Builder)
	from := env.From()

	// Write mail header
	_, _ = fmt.Fprintf(body, "Message-ID: <%s>\r\n", id)
	_, _ = fmt.Fprintf(body, "From: %s\r\n", from.String())
	_, _ = fmt.Fprint(body, "MIME-Version: 1.0\r\n")
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", env.Subject())
	_, _ = fmt.Fprintf(body, "To: %s\r\n", env.To().String())

	altW := multipart.NewWriter(body)
	_, _ = fmt.Fprintf(body, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", altW.Boundary())

	w, err := altW.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html; charset=UTF-8"}})
	if err != nil {
		return "", errors.Wrap(err, "creating text/html part")
	}
	_, _ = fmt.Fprintf(w, "%s\r\n", env.HTML())

	if err = altW.Close(); err != nil {
		return "", errors.Wrap(err, "closing multipart writer")
	}
	return body.String(), nil
}
