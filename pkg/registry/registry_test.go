package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetSteps(t *testing.T) {
	r := NewRegistry()
	r.Register(domain.Tour{
		ID:    "t1",
		Steps: []domain.StepDescriptor{{Target: "#a"}, {Target: "#b"}, {Target: "#c"}},
	})

	steps, err := r.GetSteps("t1")
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, []string{"#a", "#b", "#c"}, targets(steps), "order is fixed at definition time")

	steps[0].Target = "#mutated"
	again, _ := r.GetSteps("t1")
	assert.Equal(t, "#a", again[0].Target, "callers get copies")

	_, err = r.GetSteps("missing")
	assert.ErrorIs(t, err, domain.ErrTourNotFound)
}

func TestRegistry_RegisterOverwritesInPlace(t *testing.T) {
	r := NewRegistry()
	r.Register(domain.Tour{ID: "a"})
	r.Register(domain.Tour{ID: "b"})
	r.Register(domain.Tour{ID: "a", Title: "again"})

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "again", list[0].Title)
	assert.Equal(t, "b", list[1].ID)
}

func TestRegistry_ToursForRole(t *testing.T) {
	r := Builtin()

	admin := r.ToursForRole(domain.RoleAdministrator)
	dealer := r.ToursForRole(domain.RoleDealer)

	assert.Len(t, admin, 8)
	assert.Len(t, dealer, 5)
	assert.Empty(t, r.ToursForRole(domain.RoleAnonymous))
	assert.Empty(t, r.ToursForRole(domain.Role("martian")))

	assert.Equal(t, TourAdminDashboard, admin[0].ID)
	assert.Equal(t, TourDealerRegistration, dealer[0].ID)
}

func TestRegistry_SetRoleTable_SkipsDanglingIDs(t *testing.T) {
	r := Builtin()
	r.SetRoleTable(RoleTable{
		domain.RoleAnonymous: {TourDealerRegistration, "does-not-exist"},
	})

	anon := r.ToursForRole(domain.RoleAnonymous)
	require.Len(t, anon, 1)
	assert.Equal(t, TourDealerRegistration, anon[0].ID)
	assert.Empty(t, r.ToursForRole(domain.RoleAdministrator), "table was replaced wholesale")
}

func TestRegistry_Replace(t *testing.T) {
	r := Builtin()
	r.Replace([]domain.Tour{{ID: "only", Roles: []domain.Role{domain.RoleDealer}}})

	assert.Len(t, r.List(), 1)
	_, err := r.Tour(TourAdminDashboard)
	assert.ErrorIs(t, err, domain.ErrTourNotFound)
	assert.Len(t, r.ToursForRole(domain.RoleDealer), 1)
}

func TestRegistry_WatchReportsReplace(t *testing.T) {
	r := Builtin()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := r.Watch(ctx)
	r.Replace([]domain.Tour{{ID: "only"}})

	select {
	case change := <-changes:
		assert.Equal(t, ComponentType, change.ComponentType)
		assert.Len(t, change.OldState, len(BuiltinTours()))
		require.Len(t, change.NewState, 1)
		assert.Equal(t, "only", change.NewState[0].ID)
	case <-time.After(time.Second):
		t.Fatal("replace not published")
	}
	assert.Len(t, r.State(), 1)
}

func TestBuiltin_AdminDashboardHasFourSteps(t *testing.T) {
	steps, err := Builtin().GetSteps(TourAdminDashboard)
	require.NoError(t, err)
	assert.Len(t, steps, 4)
	assert.True(t, steps[0].FirstStep)
}

func TestBuiltin_FirstStepMarkers(t *testing.T) {
	for _, tour := range BuiltinTours() {
		for i, s := range tour.Steps {
			assert.Equal(t, i == 0, s.FirstStep, "tour %s step %d", tour.ID, i)
			assert.True(t, s.Placement.Valid(), "tour %s step %d", tour.ID, i)
		}
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Register(domain.Tour{ID: "t", Roles: []domain.Role{domain.RoleDealer}})
		}()
		go func() {
			defer wg.Done()
			_ = r.ToursForRole(domain.RoleDealer)
			_ = r.List()
		}()
	}
	wg.Wait()
	assert.Len(t, r.ToursForRole(domain.RoleDealer), 1)
}

func targets(steps []domain.StepDescriptor) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Target
	}
	return out
}
