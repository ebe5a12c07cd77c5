package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/observability"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/introspection"
)

// ComponentType identifies the registry to introspection watchers.
const ComponentType = "registry"

var (
	_ ports.StepRegistry                        = (*Registry)(nil)
	_ introspection.TypedWatcher[[]domain.Tour] = (*Registry)(nil)
	_ introspection.Component                   = (*Registry)(nil)
)

// RoleTable maps a role to the ids of the tours offered to it, in display order.
type RoleTable map[domain.Role][]string

// Registry manages the available tours.
// It is safe for concurrent use so that loaders can hot-reload it while serving.
type Registry struct {
	mu    sync.RWMutex
	tours map[string]domain.Tour
	order []string
	roles RoleTable

	feed observability.Feed[[]domain.Tour]
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	r := &Registry{
		tours: make(map[string]domain.Tour),
		roles: make(RoleTable),
	}
	r.feed.Type = ComponentType
	return r
}

// Register adds a tour to the registry.
// If a tour with the same id exists, it is overwritten in place.
// The tour's Roles are appended to the role table.
func (r *Registry) Register(tour domain.Tour) {
	tour.Steps = domain.CloneSteps(tour.Steps)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tours[tour.ID]; !exists {
		r.order = append(r.order, tour.ID)
	}
	r.tours[tour.ID] = tour

	for _, role := range tour.Roles {
		if !contains(r.roles[role], tour.ID) {
			r.roles[role] = append(r.roles[role], tour.ID)
		}
	}
}

// SetRoleTable replaces the role table wholesale.
func (r *Registry) SetRoleTable(table RoleTable) {
	cp := make(RoleTable, len(table))
	for role, ids := range table {
		cp[role] = append([]string(nil), ids...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles = cp
}

// RoleTable returns a copy of the role table.
func (r *Registry) RoleTable() RoleTable {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cp := make(RoleTable, len(r.roles))
	for role, ids := range r.roles {
		cp[role] = append([]string(nil), ids...)
	}
	return cp
}

// Replace swaps the registry contents for tours, rebuilding the role table from their Roles.
// Watchers receive the previous and the new catalog.
func (r *Registry) Replace(tours []domain.Tour) {
	next := NewRegistry()
	for _, t := range tours {
		next.Register(t)
	}

	previous := r.List()

	r.mu.Lock()
	r.tours = next.tours
	r.order = next.order
	r.roles = next.roles
	r.mu.Unlock()

	r.feed.Publish("tours", previous, next.List())
}

// GetSteps looks up a tour by id and returns a copy of its steps.
func (r *Registry) GetSteps(tourID string) ([]domain.StepDescriptor, error) {
	tour, err := r.Tour(tourID)
	if err != nil {
		return nil, err
	}
	return tour.Steps, nil
}

// Tour looks up a tour by id.
func (r *Registry) Tour(tourID string) (domain.Tour, error) {
	r.mu.RLock()
	tour, ok := r.tours[tourID]
	r.mu.RUnlock()

	if !ok {
		return domain.Tour{}, fmt.Errorf("%w: %s", domain.ErrTourNotFound, tourID)
	}
	tour.Steps = domain.CloneSteps(tour.Steps)
	return tour, nil
}

// List returns all tours in registration order.
func (r *Registry) List() []domain.Tour {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Tour, 0, len(r.order))
	for _, id := range r.order {
		t := r.tours[id]
		t.Steps = domain.CloneSteps(t.Steps)
		out = append(out, t)
	}
	return out
}

// ToursForRole resolves the role table. Unknown roles and dangling ids yield nothing.
func (r *Registry) ToursForRole(role domain.Role) []domain.Tour {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.roles[role]
	out := make([]domain.Tour, 0, len(ids))
	for _, id := range ids {
		t, ok := r.tours[id]
		if !ok {
			continue
		}
		t.Steps = domain.CloneSteps(t.Steps)
		out = append(out, t)
	}
	return out
}

// State returns the current catalog.
func (r *Registry) State() []domain.Tour {
	return r.List()
}

// Watch streams catalog replacements until ctx is done.
func (r *Registry) Watch(ctx context.Context) <-chan introspection.StateChange[[]domain.Tour] {
	return r.feed.Watch(ctx)
}

// ComponentType implements introspection.Component.
func (r *Registry) ComponentType() string {
	return ComponentType
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
