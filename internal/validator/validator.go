// Package validator checks tour catalogs before they are served.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/registry"
)

// Error lists every problem found in a catalog.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("found %d errors:\n- %s", len(e.Problems), strings.Join(e.Problems, "\n- "))
}

// ValidateTours checks step definitions and that every role-table entry names a known tour.
// A nil table skips the role check.
func ValidateTours(tours []domain.Tour, table registry.RoleTable) error {
	var problems []string
	known := make(map[string]bool, len(tours))

	for _, tour := range tours {
		if strings.TrimSpace(tour.ID) == "" {
			problems = append(problems, "tour with empty id")
			continue
		}
		if known[tour.ID] {
			problems = append(problems, fmt.Sprintf("tour '%s' is defined twice", tour.ID))
		}
		known[tour.ID] = true

		for i, step := range tour.Steps {
			if strings.TrimSpace(step.Target) == "" {
				problems = append(problems, fmt.Sprintf("tour '%s' step %d: empty target selector", tour.ID, i))
			}
			if !step.Placement.Valid() {
				problems = append(problems, fmt.Sprintf("tour '%s' step %d: unknown placement '%s'", tour.ID, i, step.Placement))
			}
			if step.FirstStep && i != 0 {
				problems = append(problems, fmt.Sprintf("tour '%s' step %d: first_step is only allowed on the first step", tour.ID, i))
			}
		}
	}

	roles := make([]string, 0, len(table))
	for role := range table {
		roles = append(roles, string(role))
	}
	sort.Strings(roles)
	for _, role := range roles {
		for _, id := range table[domain.Role(role)] {
			if !known[id] {
				problems = append(problems, fmt.Sprintf("role '%s' references unknown tour '%s'", role, id))
			}
		}
	}

	if len(problems) > 0 {
		return &Error{Problems: problems}
	}
	return nil
}

// ValidateRegistry validates the tours and role table held by r.
func ValidateRegistry(r *registry.Registry) error {
	return ValidateTours(r.List(), r.RoleTable())
}
