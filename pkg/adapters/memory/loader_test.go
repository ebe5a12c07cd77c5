package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/guidepost/pkg/adapters/memory"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader(t *testing.T) {
	l := memory.NewLoader(
		domain.Tour{ID: "a", Steps: []domain.StepDescriptor{{Target: "#a"}}},
		domain.Tour{ID: "b"},
	)
	l.Add(domain.Tour{ID: "a", Title: "Again"})

	tours, err := l.LoadTours(context.Background())
	require.NoError(t, err)
	require.Len(t, tours, 2)
	assert.Equal(t, "Again", tours[0].Title)
	assert.Equal(t, "b", tours[1].ID)
	assert.NotNil(t, tours[1].Steps)

	tours[1].ID = "mutated"
	again, _ := l.LoadTours(context.Background())
	assert.Equal(t, "b", again[1].ID)
}
