package coordinator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/guidepost/pkg/coordinator"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_Provided(t *testing.T) {
	c := coordinator.New("sess-1")
	ctx := coordinator.NewContext(context.Background(), c)

	got, ok := coordinator.FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Same(t, c, coordinator.MustFromContext(ctx))
}

func TestContext_NotProvidedFailsLoudly(t *testing.T) {
	_, ok := coordinator.FromContext(context.Background())
	assert.False(t, ok)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic outside the provision boundary")
		err, isErr := r.(error)
		require.True(t, isErr)
		assert.True(t, errors.Is(err, domain.ErrNotProvided))
	}()
	coordinator.MustFromContext(context.Background())
}

func TestContext_NilCoordinatorIsNotProvided(t *testing.T) {
	ctx := coordinator.NewContext(context.Background(), nil)
	_, ok := coordinator.FromContext(ctx)
	assert.False(t, ok)
}
