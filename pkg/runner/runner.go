package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/pkg/coordinator"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

var _ ports.Presenter = (*Runner)(nil)

// Runner walks a tour session through an IOHandler.
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdin/stdout.
	Handler IOHandler

	// Resolver decides whether a step's target exists. Nil treats every target as present.
	Resolver ports.TargetResolver

	// Logger is used for internal debug logging.
	Logger *slog.Logger
}

// NewRunner creates a Runner. Without options it reads commands from stdin.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

type direction int

const (
	forward direction = iota
	backward
)

// Present walks the session held by the coordinator provided to ctx until the
// user closes it, the tour completes, input ends or ctx is cancelled.
// requestClose is called exactly once, when Present returns.
// An inactive or empty session renders nothing.
func (r *Runner) Present(ctx context.Context, session *domain.TourSession, requestClose func()) error {
	c := coordinator.MustFromContext(ctx)

	var once sync.Once
	defer once.Do(func() {
		if requestClose != nil {
			requestClose()
		}
	})

	if session == nil || !session.Active || len(session.Steps) == 0 {
		r.Logger.Debug("Nothing to present", "active", session != nil && session.Active)
		return nil
	}

	dir := forward
	for {
		s, ok := r.settle(ctx, c, dir)
		if !ok {
			_ = r.Handler.SystemOutput(ctx, "Tour finished.")
			return nil
		}

		step, _ := s.CurrentStep()
		view := StepView{
			Tag:   s.Tag,
			Index: s.CurrentIndex,
			Total: len(s.Steps),
			Step:  step,
			Last:  s.IsLast(),
		}
		if err := r.Handler.Output(ctx, view); err != nil {
			return fmt.Errorf("output error: %w", err)
		}

		cmd, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		r.Logger.Debug("Command received", "command", cmd.Kind, "index", cmd.Index)

		switch cmd.Kind {
		case CommandNext:
			dir = forward
			if c.Next(ctx) {
				_ = r.Handler.SystemOutput(ctx, "Tour finished.")
				return nil
			}
		case CommandPrev:
			dir = backward
			c.Prev(ctx)
		case CommandGoTo:
			dir = forward
			if cmd.Index < s.CurrentIndex {
				dir = backward
			}
			c.GoTo(ctx, cmd.Index)
		case CommandClose:
			c.Stop(ctx)
			return nil
		}
	}
}

// settle moves off steps whose target is missing, in the direction of travel.
// Walking backward past the first step turns around. Walking forward past the
// last step completes the tour. It reports false once the session is inactive.
func (r *Runner) settle(ctx context.Context, c *coordinator.Coordinator, dir direction) (*domain.TourSession, bool) {
	for {
		s := c.Session()
		if !s.Active {
			return s, false
		}
		step, ok := s.CurrentStep()
		if !ok {
			// Active with no steps: inert.
			return s, false
		}
		if r.resolves(step.Target) {
			return s, true
		}

		r.Logger.Debug("Skipping step with missing target", "index", s.CurrentIndex, "target", step.Target)

		if dir == backward && s.CurrentIndex > 0 {
			c.Prev(ctx)
			continue
		}
		dir = forward
		if c.Next(ctx) {
			return c.Session(), false
		}
	}
}

func (r *Runner) resolves(selector string) bool {
	if r.Resolver == nil {
		return true
	}
	return r.Resolver.Resolve(selector)
}
