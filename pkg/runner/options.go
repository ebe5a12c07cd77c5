package runner

import (
	"log/slog"

	"github.com/aretw0/guidepost/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithResolver configures which targets count as present on the page.
func WithResolver(resolver ports.TargetResolver) Option {
	return func(r *Runner) {
		r.Resolver = resolver
	}
}
