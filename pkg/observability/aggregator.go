package observability

import (
	"context"

	"github.com/aretw0/introspection"
)

// Aggregator combines state watchers into a single snapshot stream.
// Watchers must implement introspection.Component and expose a Watch method
// returning a channel of introspection.StateChange.
type Aggregator struct {
	watchers []any
}

// NewAggregator creates an empty aggregator.
func NewAggregator(watchers ...any) *Aggregator {
	return &Aggregator{watchers: watchers}
}

// AddWatcher registers a watcher.
func (a *Aggregator) AddWatcher(w any) {
	a.watchers = append(a.watchers, w)
}

// Watch returns the aggregated snapshots. The channel closes once every
// watcher's stream has ended.
func (a *Aggregator) Watch(ctx context.Context) <-chan introspection.StateSnapshot {
	return introspection.AggregateWatchers(ctx, a.watchers...)
}
