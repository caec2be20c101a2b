package emailsvc

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/kepzesmindenkinek/backend/core"
)

// Dispatcher renders application emails and hands them to the shared provider client.
// Delivery failures are logged and reported in the outcome, never returned.
type Dispatcher struct {
	conf       *core.Config
	logger     core.Logger
	holder     *clientHolder
	metrics    *Metrics
	subjPrefix string
	testMode   bool
}

var _ core.EmailService = (*Dispatcher)(nil)

// NewDispatcher wires a dispatcher around factory. metrics may be nil.
func NewDispatcher(conf *core.Config, logger core.Logger, factory ProviderFactory, metrics *Metrics) *Dispatcher {
	vala.BeginValidation().Validate(
		vala.IsNotNil(conf, "conf"),
		vala.IsNotNil(logger, "logger"),
		vala.IsNotNil(factory, "factory"),
	).CheckAndPanic()

	return &Dispatcher{
		conf:       conf,
		logger:     logger,
		holder:     newClientHolder(factory),
		metrics:    metrics,
		subjPrefix: "[" + conf.AppName + "] ",
		testMode:   conf.TestMode,
	}
}

// New builds the dispatcher of the configured provider.
func New(conf *core.Config, logger core.Logger, metrics *Metrics) (*Dispatcher, error) {
	factory, err := NewProviderFactory(conf, logger)
	if err != nil {
		return nil, err
	}
	return NewDispatcher(conf, logger, factory, metrics), nil
}

// SendMessages dispatches every message on its own goroutine and returns immediately.
func (d *Dispatcher) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go d.Send(context.Background(), msg)
	}
}

// Send renders msg and makes a single delivery attempt.
func (d *Dispatcher) Send(ctx context.Context, msg *core.EmailMessage) core.DeliveryOutcome {
	if msg == nil {
		return core.DeliveryOutcome{Status: core.DeliveryFailed}
	}

	if err := msg.Render(core.ContextData{AppName: d.conf.AppName, SiteURL: d.conf.SiteURL()}); err != nil {
		d.logger.Error(fmt.Sprintf("rendering email %q: %v", msg.Subject, err), err, d.fields(msg.To, msg.Subject))
		d.metrics.observe("", core.DeliveryFailed)
		return core.DeliveryOutcome{Status: core.DeliveryFailed}
	}

	senderName, senderAddr := resolveSender(d.conf)
	env := core.NewEnvelope(
		mail.Address{Name: senderName, Address: senderAddr},
		msg.To,
		d.subjPrefix+msg.Subject,
		msg.HTMLContent,
	)

	if d.testMode {
		d.metrics.observe("", core.DeliverySuppressed)
		return core.DeliveryOutcome{Status: core.DeliverySuppressed}
	}

	if len(env.To()) == 0 {
		d.logger.Warn(fmt.Sprintf("email %q has no recipients", env.Subject()), d.fields(nil, env.Subject()))
		d.metrics.observe("", core.DeliveryFailed)
		return core.DeliveryOutcome{Status: core.DeliveryFailed}
	}

	provider, err := d.holder.get()
	if err != nil {
		d.logger.Error(fmt.Sprintf("sending email %q: %v", env.Subject(), err), err, d.fields(env.To(), env.Subject()))
		d.metrics.observe("", core.DeliveryFailed)
		return core.DeliveryOutcome{Status: core.DeliveryFailed}
	}
	return d.deliver(ctx, provider, env)
}

// deliver calls the provider. Errors and panics are logged exactly once and turned into a failed outcome.
func (d *Dispatcher) deliver(ctx context.Context, provider Provider, env core.Envelope) (outcome core.DeliveryOutcome) {
	name := provider.Name()
	started := time.Now()

	defer func() {
		d.metrics.observeDuration(name, started)
		if r := recover(); r != nil {
			err := errors.Errorf("provider panic: %v", r)
			d.logger.Error(fmt.Sprintf("sending email %q: %v", env.Subject(), err), err, d.fields(env.To(), env.Subject()))
			outcome = core.DeliveryOutcome{Status: core.DeliveryFailed, Provider: name}
		}
		d.metrics.observe(name, outcome.Status)
	}()

	if d.conf.Email.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.conf.Email.Timeout)
		defer cancel()
	}

	res, err := provider.Send(ctx, env)
	if err != nil {
		fields := d.fields(env.To(), env.Subject())
		var dErr *DeliveryError
		if errors.As(err, &dErr) {
			fields["status_code"] = dErr.StatusCode
			fields["detail"] = dErr.Detail
			d.logger.Error(fmt.Sprintf("email delivery failed %q: %v", env.Subject(), err), err, fields)
			return core.DeliveryOutcome{Status: core.DeliveryFailed, Provider: name, StatusCode: dErr.StatusCode, Body: dErr.Detail}
		}
		d.logger.Error(fmt.Sprintf("sending email %q: %v", env.Subject(), err), err, fields)
		return core.DeliveryOutcome{Status: core.DeliveryFailed, Provider: name}
	}
	return res
}

func (d *Dispatcher) fields(to core.Recipients, subject string) core.Fields {
	return core.Fields{
		"recipients": to.String(),
		"subject":    subject,
	}
}
