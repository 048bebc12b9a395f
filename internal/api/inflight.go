package api

import (
	"context"
	"sync"
)

// inflight tracks the cancel funcs of running requests
type inflight struct {
	mu      sync.Mutex
	next    uint64
	cancels map[uint64]context.CancelFunc
}

func newInflight() *inflight {
	return &inflight{cancels: make(map[uint64]context.CancelFunc)}
}

// track derives a cancellable context from ctx and registers it. The
// returned func unregisters and releases it.
func (f *inflight) track(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	f.mu.Lock()
	id := f.next
	f.next++
	f.cancels[id] = cancel
	f.mu.Unlock()

	return ctx, func() {
		f.mu.Lock()
		delete(f.cancels, id)
		f.mu.Unlock()
		cancel()
	}
}

func (f *inflight) cancelAll() int {
	f.mu.Lock()
	cancels := f.cancels
	f.cancels = make(map[uint64]context.CancelFunc)
	f.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return len(cancels)
}

func (f *inflight) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cancels)
}
