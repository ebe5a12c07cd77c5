package tests

import (
	"context"
	"testing"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

// TourLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.TourLoader.
// expected maps tour IDs to the ordered step targets the loader must produce.
func TourLoaderContractTest(t *testing.T, loader ports.TourLoader, expected map[string][]string) {
	t.Helper()

	tours, err := loader.LoadTours(context.Background())
	if err != nil {
		t.Fatalf("unexpected error loading tours: %v", err)
	}

	byID := make(map[string]domain.Tour, len(tours))
	for _, tour := range tours {
		if _, dup := byID[tour.ID]; dup {
			t.Errorf("duplicate tour id %q", tour.ID)
		}
		byID[tour.ID] = tour
	}

	t.Run("AllToursPresent", func(t *testing.T) {
		for id := range expected {
			if _, ok := byID[id]; !ok {
				t.Errorf("expected tour %q not found", id)
			}
		}
	})

	t.Run("StepOrderPreserved", func(t *testing.T) {
		for id, targets := range expected {
			tour, ok := byID[id]
			if !ok {
				continue
			}
			if len(tour.Steps) != len(targets) {
				t.Errorf("tour %q: got %d steps, want %d", id, len(tour.Steps), len(targets))
				continue
			}
			for i, want := range targets {
				if got := tour.Steps[i].Target; got != want {
					t.Errorf("tour %q step %d: got target %q, want %q", id, i, got, want)
				}
			}
		}
	})

	t.Run("PlacementsNormalized", func(t *testing.T) {
		for _, tour := range tours {
			for i, step := range tour.Steps {
				if !step.Placement.Valid() {
					t.Errorf("tour %q step %d: invalid placement %q", tour.ID, i, step.Placement)
				}
			}
		}
	})
}
