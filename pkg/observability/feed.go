package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/introspection"
)

// FeedBuffer is the per-watcher buffer of a Feed.
const FeedBuffer = 16

// Feed fans state changes out to introspection watchers.
// The zero value is ready to use. Slow watchers miss changes instead of
// blocking the publisher.
type Feed[S any] struct {
	// Type is reported as the ComponentType of every change.
	Type string

	mu       sync.Mutex
	watchers map[chan introspection.StateChange[S]]struct{}
	now      func() time.Time
}

// Watch returns a channel of changes that is closed when ctx is done.
func (f *Feed[S]) Watch(ctx context.Context) <-chan introspection.StateChange[S] {
	ch := make(chan introspection.StateChange[S], FeedBuffer)

	f.mu.Lock()
	if f.watchers == nil {
		f.watchers = make(map[chan introspection.StateChange[S]]struct{})
	}
	f.watchers[ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.watchers, ch)
		close(ch)
		f.mu.Unlock()
	}()
	return ch
}

// Publish records a transition of component id.
func (f *Feed[S]) Publish(id string, from, to S) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.watchers) == 0 {
		return
	}

	now := time.Now
	if f.now != nil {
		now = f.now
	}
	change := introspection.StateChange[S]{
		ComponentID:   id,
		ComponentType: f.Type,
		OldState:      from,
		NewState:      to,
		Timestamp:     now(),
	}
	for ch := range f.watchers {
		select {
		case ch <- change:
		default:
		}
	}
}

// Watchers reports how many watchers are subscribed.
func (f *Feed[S]) Watchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}
