package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/guidepost/pkg/domain"
)

// LoggingHooks logs every lifecycle event at info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTourStart: func(ctx context.Context, e *domain.TourEvent) {
			attrs := []any{"session_id", e.SessionID, "tag", e.Tag, "steps", e.Steps}
			if e.Replaced != "" {
				attrs = append(attrs, "replaced", e.Replaced)
			}
			logger.InfoContext(ctx, "tour_start", attrs...)
		},
		OnTourStop: func(ctx context.Context, e *domain.TourEvent) {
			logger.InfoContext(ctx, "tour_stop", "session_id", e.SessionID, "tag", e.Tag, "completed", e.Completed)
		},
		OnStepChange: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_change", "session_id", e.SessionID, "tag", e.Tag, "from", e.From, "to", e.To)
		},
	}
}
