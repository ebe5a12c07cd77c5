package trigger

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

// FloatingMenu is an expandable corner menu listing the tours offered to a role.
// Its open flag is local UI state; it is not safe for concurrent use.
type FloatingMenu struct {
	registry ports.StepRegistry
	role     domain.Role
	open     bool
}

// NewFloatingMenu creates a closed menu for role.
func NewFloatingMenu(reg ports.StepRegistry, role domain.Role) *FloatingMenu {
	return &FloatingMenu{registry: reg, role: role}
}

// Tours returns the tours offered to the menu's role. Empty is a valid answer.
func (m *FloatingMenu) Tours() []domain.Tour {
	return m.registry.ToursForRole(m.role)
}

// Toggle flips the open flag and returns the new value.
func (m *FloatingMenu) Toggle() bool {
	m.open = !m.open
	return m.open
}

// Open reports whether the menu is expanded.
func (m *FloatingMenu) Open() bool {
	return m.open
}

// Activate starts tourID, which must be one of the menu's tours, and closes the menu.
func (m *FloatingMenu) Activate(ctx context.Context, tourID string) error {
	offered := false
	for _, t := range m.Tours() {
		if t.ID == tourID {
			offered = true
			break
		}
	}
	if !offered {
		return fmt.Errorf("%w: %s (%s)", ErrTourNotOffered, tourID, m.role)
	}

	if err := start(ctx, m.registry, tourID, tourID); err != nil {
		return err
	}
	m.open = false
	return nil
}

// Render writes the menu. When the role has no tours it writes nothing at all.
func (m *FloatingMenu) Render(w io.Writer) error {
	tours := m.Tours()
	if len(tours) == 0 {
		return nil
	}
	return templates.ExecuteTemplate(w, "floating", floatingView{
		Role:  string(m.role),
		Open:  m.open,
		Tours: tours,
	})
}

type floatingView struct {
	Role  string
	Open  bool
	Tours []domain.Tour
}
