package emailsvc

import (
	"context"
	"sync"

	"github.com/kepzesmindenkinek/backend/core"
)

// DispatcherMock sends synchronously through the console provider and records what was sent.
type DispatcherMock struct {
	*Dispatcher

	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*DispatcherMock)(nil)

func NewDispatcherMock(conf *core.Config, logger core.Logger) *DispatcherMock {
	factory := func() (Provider, error) { return NewConsoleProvider(logger), nil }
	return &DispatcherMock{Dispatcher: NewDispatcher(conf, logger, factory, nil)}
}

func (d *DispatcherMock) Send(ctx context.Context, msg *core.EmailMessage) core.DeliveryOutcome {
	outcome := d.Dispatcher.Send(ctx, msg)
	if outcome.Status != core.DeliveryFailed {
		d.mu.Lock()
		d.sent = append(d.sent, *msg)
		d.mu.Unlock()
	}
	return outcome
}

func (d *DispatcherMock) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		// run synchronously
		d.Send(context.Background(), msg)
	}
}

// SentMessages returns a copy of the recorded messages.
func (d *DispatcherMock) SentMessages() []core.EmailMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]core.EmailMessage, len(d.sent))
	copy(out, d.sent)
	return out
}

func (d *DispatcherMock) Reset() {
	d.mu.Lock()
	d.sent = nil
	d.mu.Unlock()
}
