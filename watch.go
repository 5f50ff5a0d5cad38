package diskkit

import (
	"sync"
	"sync/atomic"
)

// ChangeToken represents a single-use change notification. Consumers
// either poll HasChanged or register a callback; once signalled a token
// stays signalled.
type ChangeToken interface {
	// HasChanged returns true once a change has occurred.
	HasChanged() bool

	// RegisterChangeCallback registers a callback invoked on the first
	// change. The returned function unregisters it.
	RegisterChangeCallback(callback func()) (unregister func())
}

// CallbackChangeToken is a ChangeToken signalled by the driver that
// created it. Used by backends with native events (local, memory).
type CallbackChangeToken struct {
	mu        sync.Mutex
	changed   atomic.Bool
	callbacks []func()
}

// NewCallbackChangeToken creates an unsignalled token.
func NewCallbackChangeToken() *CallbackChangeToken {
	return &CallbackChangeToken{}
}

func (t *CallbackChangeToken) HasChanged() bool {
	return t.changed.Load()
}

func (t *CallbackChangeToken) RegisterChangeCallback(callback func()) (unregister func()) {
	t.mu.Lock()
	t.callbacks = append(t.callbacks, callback)
	index := len(t.callbacks) - 1
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if index < len(t.callbacks) {
			// nil out instead of removing to keep indices stable
			t.callbacks[index] = nil
		}
	}
}

// SignalChange marks the token changed and invokes registered callbacks.
// Called by the driver when a change is detected; signalling twice is a
// no-op.
func (t *CallbackChangeToken) SignalChange() {
	if t.changed.Swap(true) {
		return
	}

	t.mu.Lock()
	callbacks := make([]func(), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.mu.Unlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb()
		}
	}
}
