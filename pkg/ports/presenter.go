package ports

import (
	"context"

	"github.com/aretw0/guidepost/pkg/domain"
)

// Presenter renders a live tour session.
// Implementations must call requestClose exactly once when the user dismisses or
// completes the tour, must render nothing for an empty sequence, and must tolerate
// targets that are missing from the page.
type Presenter interface {
	Present(ctx context.Context, session *domain.TourSession, requestClose func()) error
}

// TargetResolver reports whether a step's target selector resolves on the host page.
type TargetResolver interface {
	Resolve(selector string) bool
}

// TargetResolverFunc adapts a function to TargetResolver.
type TargetResolverFunc func(selector string) bool

// Resolve calls f(selector).
func (f TargetResolverFunc) Resolve(selector string) bool {
	return f(selector)
}
