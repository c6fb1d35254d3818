// Package events delivers resource lifecycle notifications to listeners.
package events

import (
	"context"
	"fmt"
	"sync"

	"simplecrud/internal/domain"
)

// Listener handles one lifecycle event. A returned error aborts the request
// that emitted the event.
type Listener func(ctx context.Context, e *domain.LifecycleEvent) error

// Dispatcher is what the orchestrators emit through.
type Dispatcher interface {
	Dispatch(ctx context.Context, e *domain.LifecycleEvent) error
}

// Bus is a synchronous publish/subscribe dispatcher. Listeners run in
// registration order on the caller's goroutine.
type Bus struct {
	mu        sync.RWMutex
	listeners map[domain.EventKind][]Listener
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[domain.EventKind][]Listener)}
}

// Subscribe registers l for each of kinds. With no kinds, l receives all kinds.
func (b *Bus) Subscribe(l Listener, kinds ...domain.EventKind) {
	if len(kinds) == 0 {
		kinds = domain.EventKinds
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range kinds {
		b.listeners[k] = append(b.listeners[k], l)
	}
}

// Dispatch delivers e to the listeners of its kind until one fails or stops
// propagation.
func (b *Bus) Dispatch(ctx context.Context, e *domain.LifecycleEvent) error {
	if e == nil || !e.Kind.Valid() {
		return fmt.Errorf("dispatch: invalid event")
	}
	b.mu.RLock()
	ls := make([]Listener, len(b.listeners[e.Kind]))
	copy(ls, b.listeners[e.Kind])
	b.mu.RUnlock()

	for _, l := range ls {
		if err := l(ctx, e); err != nil {
			return fmt.Errorf("%s listener: %w", e.Kind, err)
		}
		if e.PropagationStopped() {
			break
		}
	}
	return nil
}

// Count returns how many listeners are registered for kind.
func (b *Bus) Count(kind domain.EventKind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[kind])
}
