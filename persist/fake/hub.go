package fake

import (
	"context"
	"sync"
)

// hub fans changes out to every watcher, in the order they are published
type hub[C any] struct {
	sync.Mutex
	watchers map[chan C]context.Context
}

func newHub[C any]() *hub[C] {
	return &hub[C]{watchers: make(map[chan C]context.Context)}
}

func (h *hub[C]) watch(ctx context.Context) <-chan C {
	ch := make(chan C, 64)

	h.Lock()
	h.watchers[ch] = ctx
	h.Unlock()

	go func() {
		<-ctx.Done()
		h.Lock()
		delete(h.watchers, ch)
		close(ch)
		h.Unlock()
	}()

	return ch
}

func (h *hub[C]) publish(change C) {
	h.Lock()
	defer h.Unlock()

	for ch, ctx := range h.watchers {
		select {
		case ch <- change:
		case <-ctx.Done():
		}
	}
}
