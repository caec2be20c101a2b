package emailsvc

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

type providerRef struct {
	Provider
}

// clientHolder lazily builds the shared provider client.
// The first successful construction wins; reads after it never lock.
type clientHolder struct {
	mu      sync.Mutex
	client  atomic.Pointer[providerRef]
	factory ProviderFactory
}

func newClientHolder(factory ProviderFactory) *clientHolder {
	return &clientHolder{factory: factory}
}

func (h *clientHolder) get() (Provider, error) {
	if ref := h.client.Load(); ref != nil {
		return ref.Provider, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if ref := h.client.Load(); ref != nil {
		return ref.Provider, nil
	}
	p, err := h.factory()
	if err != nil {
		// not stored: the next call tries again
		return nil, errors.Wrap(err, "creating email provider")
	}
	if p == nil {
		return nil, errors.New("creating email provider: nil provider")
	}
	h.client.Store(&providerRef{p})
	return p, nil
}
