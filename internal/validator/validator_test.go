package validator

import (
	"errors"
	"testing"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegistry_Builtin(t *testing.T) {
	assert.NoError(t, ValidateRegistry(registry.Builtin()))
}

func TestValidateTours(t *testing.T) {
	ok := domain.StepDescriptor{Target: "#a", Placement: domain.PlacementTop, FirstStep: true}

	tests := []struct {
		name    string
		tours   []domain.Tour
		table   registry.RoleTable
		problem string
	}{
		{
			name:    "empty id",
			tours:   []domain.Tour{{ID: " ", Steps: []domain.StepDescriptor{ok}}},
			problem: "tour with empty id",
		},
		{
			name:    "empty target",
			tours:   []domain.Tour{{ID: "t", Steps: []domain.StepDescriptor{{Target: "", Placement: domain.PlacementTop}}}},
			problem: "tour 't' step 0: empty target selector",
		},
		{
			name:    "unknown placement",
			tours:   []domain.Tour{{ID: "t", Steps: []domain.StepDescriptor{{Target: "#a", Placement: "diagonal"}}}},
			problem: "tour 't' step 0: unknown placement 'diagonal'",
		},
		{
			name: "first step not first",
			tours: []domain.Tour{{ID: "t", Steps: []domain.StepDescriptor{
				ok,
				{Target: "#b", Placement: domain.PlacementTop, FirstStep: true},
			}}},
			problem: "tour 't' step 1: first_step is only allowed on the first step",
		},
		{
			name:    "dangling role entry",
			tours:   []domain.Tour{{ID: "t", Steps: []domain.StepDescriptor{ok}}},
			table:   registry.RoleTable{domain.RoleDealer: {"t", "ghost"}},
			problem: "role 'dealer' references unknown tour 'ghost'",
		},
		{
			name:    "duplicate id",
			tours:   []domain.Tour{{ID: "t"}, {ID: "t"}},
			problem: "tour 't' is defined twice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTours(tt.tours, tt.table)
			require.Error(t, err)

			var verr *Error
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Problems, tt.problem)
		})
	}
}

func TestValidateTours_EmptyTourIsValid(t *testing.T) {
	assert.NoError(t, ValidateTours([]domain.Tour{{ID: "empty-tour"}}, nil))
}

func TestError_Message(t *testing.T) {
	err := &Error{Problems: []string{"a", "b"}}
	assert.Equal(t, "found 2 errors:\n- a\n- b", err.Error())
}
