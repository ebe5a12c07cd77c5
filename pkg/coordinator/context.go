package coordinator

import (
	"context"
	"fmt"

	"github.com/aretw0/guidepost/pkg/domain"
)

type contextKey struct{}

// NewContext returns a copy of ctx that provides c to everything downstream.
func NewContext(ctx context.Context, c *Coordinator) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the coordinator provided to ctx, if any.
func FromContext(ctx context.Context) (*Coordinator, bool) {
	c, ok := ctx.Value(contextKey{}).(*Coordinator)
	return c, ok && c != nil
}

// MustFromContext returns the coordinator provided to ctx.
// It panics with domain.ErrNotProvided when called outside a provision boundary.
func MustFromContext(ctx context.Context) *Coordinator {
	c, ok := FromContext(ctx)
	if !ok {
		panic(fmt.Errorf("%w: use coordinator.NewContext before rendering trigger surfaces or presenters", domain.ErrNotProvided))
	}
	return c
}
