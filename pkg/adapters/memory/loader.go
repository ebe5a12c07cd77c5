package memory

import (
	"context"
	"sync"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

var _ ports.TourLoader = (*Loader)(nil)

// Loader is a TourLoader backed by a slice, for tests and embedded catalogs.
type Loader struct {
	mu    sync.RWMutex
	tours []domain.Tour
}

// NewLoader creates a loader holding tours in the given order.
func NewLoader(tours ...domain.Tour) *Loader {
	l := &Loader{}
	for _, t := range tours {
		l.Add(t)
	}
	return l
}

// Add appends a tour, replacing an earlier one with the same id.
func (l *Loader) Add(tour domain.Tour) {
	tour.Steps = domain.CloneSteps(tour.Steps)

	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.tours {
		if existing.ID == tour.ID {
			l.tours[i] = tour
			return
		}
	}
	l.tours = append(l.tours, tour)
}

// LoadTours returns copies of the stored tours.
func (l *Loader) LoadTours(ctx context.Context) ([]domain.Tour, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Tour, len(l.tours))
	for i, t := range l.tours {
		t.Steps = domain.CloneSteps(t.Steps)
		out[i] = t
	}
	return out, nil
}
