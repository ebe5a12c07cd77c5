package ports

import (
	"context"

	"github.com/aretw0/guidepost/pkg/domain"
)

// TourLoader reads tour definitions from an external source.
type TourLoader interface {
	// LoadTours returns every tour the source defines, in a stable order.
	LoadTours(ctx context.Context) ([]domain.Tour, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used to hot-reload tours while authoring them.
type Watchable interface {
	// Watch returns a channel that is signaled with the changed document ID.
	Watch(ctx context.Context) (<-chan string, error)
}
