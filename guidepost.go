package guidepost

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/internal/validator"
	loamAdapter "github.com/aretw0/guidepost/pkg/adapters/loam"
	"github.com/aretw0/guidepost/pkg/adapters/memory"
	"github.com/aretw0/guidepost/pkg/coordinator"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/guidepost/pkg/registry"
	"github.com/aretw0/guidepost/pkg/session"
	"github.com/aretw0/guidepost/pkg/trigger"
)

// Guide is the high-level entry point of the library.
// It owns the tour registry and the session manager that coordinators run under.
type Guide struct {
	registry *registry.Registry
	loader   ports.TourLoader
	store    ports.SessionStore
	sessions *session.Manager

	locker      ports.DistributedLocker
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	noBuiltin   bool
	sessionOpts []session.Option

	// Name is the base name of the tours directory, if any.
	Name string
}

// Option defines a functional option for configuring the Guide.
type Option func(*Guide)

// WithLifecycleHooks registers observability hooks. Repeated calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Guide) {
		g.hooks = g.hooks.Merge(hooks)
	}
}

// WithLoader injects a custom TourLoader, bypassing the default Loam initialization.
func WithLoader(l ports.TourLoader) Option {
	return func(g *Guide) {
		g.loader = l
	}
}

// WithStore sets the session store. The default keeps sessions in memory.
func WithStore(s ports.SessionStore) Option {
	return func(g *Guide) {
		g.store = s
	}
}

// WithLocker enables distributed session locking.
func WithLocker(l ports.DistributedLocker) Option {
	return func(g *Guide) {
		g.locker = l
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guide) {
		g.logger = logger
	}
}

// WithoutBuiltinTours starts from an empty registry instead of the website catalog.
func WithoutBuiltinTours() Option {
	return func(g *Guide) {
		g.noBuiltin = true
	}
}

// WithSessionOptions passes extra options to the session manager.
func WithSessionOptions(opts ...session.Option) Option {
	return func(g *Guide) {
		g.sessionOpts = append(g.sessionOpts, opts...)
	}
}

// New initializes a Guide.
// The registry starts with the builtin catalog. When toursDir is set, tour
// documents found there are loaded through Loam and override builtin tours with
// the same id. If WithLoader is provided, toursDir is only used as a label.
func New(toursDir string, opts ...Option) (*Guide, error) {
	g := &Guide{}
	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = logging.NewNop()
	}

	if toursDir != "" {
		absPath, err := filepath.Abs(toursDir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		g.Name = filepath.Base(absPath)

		if g.loader == nil {
			loader, err := loamAdapter.Open(absPath)
			if err != nil {
				return nil, err
			}
			g.loader = loader
		}
	}
	if g.Name != "" {
		g.logger = g.logger.With("tours", g.Name)
	}

	g.registry = registry.NewRegistry()
	if err := g.Reload(context.Background()); err != nil {
		return nil, err
	}

	if g.store == nil {
		g.store = memory.NewStore()
	}
	sessionOpts := []session.Option{
		session.WithLifecycleHooks(g.hooks),
		session.WithLogger(g.logger),
	}
	if g.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(g.locker))
	}
	g.sessions = session.NewManager(g.store, append(sessionOpts, g.sessionOpts...)...)

	return g, nil
}

// Reload rebuilds the registry from the builtin catalog and the loader.
// The new set is validated before it replaces the current one, so a broken
// edit leaves the previous tours in place.
func (g *Guide) Reload(ctx context.Context) error {
	var tours []domain.Tour
	if !g.noBuiltin {
		tours = registry.BuiltinTours()
	}

	if g.loader != nil {
		loaded, err := g.loader.LoadTours(ctx)
		if err != nil {
			return fmt.Errorf("failed to load tours: %w", err)
		}
		tours = mergeTours(tours, loaded)
	}

	next := registry.NewRegistry()
	next.Replace(tours)
	if err := validator.ValidateRegistry(next); err != nil {
		return err
	}

	g.registry.Replace(tours)
	g.logger.Debug("Tours loaded", "count", len(tours))
	return nil
}

// mergeTours appends loaded to base, replacing base entries with the same id in place.
func mergeTours(base, loaded []domain.Tour) []domain.Tour {
	index := make(map[string]int, len(base))
	out := append([]domain.Tour(nil), base...)
	for i, t := range out {
		index[t.ID] = i
	}
	for _, t := range loaded {
		if i, ok := index[t.ID]; ok {
			out[i] = t
			continue
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	return out
}

// Registry returns the tour registry.
func (g *Guide) Registry() *registry.Registry {
	return g.registry
}

// Sessions returns the session manager.
func (g *Guide) Sessions() *session.Manager {
	return g.sessions
}

// Store returns the session store.
func (g *Guide) Store() ports.SessionStore {
	return g.store
}

// Loader returns the tour loader, or nil when only builtin tours are served.
func (g *Guide) Loader() ports.TourLoader {
	return g.loader
}

// Watch returns a channel that signals when the tour documents change.
// Returns error if the loader does not support watching.
func (g *Guide) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := g.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Do runs fn with the session's coordinator provided on ctx and persists the result.
// Nothing is saved when fn fails.
func (g *Guide) Do(ctx context.Context, sessionID string, fn func(ctx context.Context) error) (*domain.TourSession, error) {
	return g.sessions.Update(ctx, sessionID, func(ctx context.Context, c *coordinator.Coordinator) error {
		return fn(coordinator.NewContext(ctx, c))
	})
}

// Start starts tourID for a session, replacing any running tour. An empty tag defaults to the tour id.
func (g *Guide) Start(ctx context.Context, sessionID, tourID, tag string) (*domain.TourSession, error) {
	var opts []trigger.Option
	if tag != "" {
		opts = append(opts, trigger.WithTag(tag))
	}
	button := trigger.NewLabeledButton(g.registry, tourID, opts...)
	return g.Do(ctx, sessionID, button.Activate)
}

// Stop ends the session's tour. It is a no-op for inactive sessions.
func (g *Guide) Stop(ctx context.Context, sessionID string) (*domain.TourSession, error) {
	return g.Do(ctx, sessionID, func(ctx context.Context) error {
		coordinator.MustFromContext(ctx).Stop(ctx)
		return nil
	})
}

// GoTo moves the session to index, clamped to the step range.
func (g *Guide) GoTo(ctx context.Context, sessionID string, index int) (*domain.TourSession, error) {
	return g.Do(ctx, sessionID, func(ctx context.Context) error {
		coordinator.MustFromContext(ctx).GoTo(ctx, index)
		return nil
	})
}

// Session returns a snapshot of the session. Unknown sessions are inactive.
func (g *Guide) Session(ctx context.Context, sessionID string) (*domain.TourSession, error) {
	return g.sessions.LoadOrNew(ctx, sessionID)
}

// Walk hands the session to presenter and saves the state it ends in.
// A session already running tourID resumes at its current step; otherwise
// tourID is started from the first step. The session is locked only while the
// walk starts and while the result is saved, so a presenter waiting on input
// does not outlive a distributed lock. Changes made to the session by others
// during the walk are overwritten.
func (g *Guide) Walk(ctx context.Context, sessionID, tourID string, presenter ports.Presenter) (*domain.TourSession, error) {
	button := trigger.NewLabeledButton(g.registry, tourID)
	started, err := g.Do(ctx, sessionID, func(ctx context.Context) error {
		c := coordinator.MustFromContext(ctx)
		if s := c.Session(); s.Active && s.Tag == tourID {
			g.logger.Debug("Resuming walk", "session_id", sessionID, "tour", tourID, "step", s.CurrentIndex)
			return nil
		}
		return button.Activate(ctx)
	})
	if err != nil {
		return nil, err
	}

	c := g.sessions.NewCoordinator(started)
	err = presenter.Present(coordinator.NewContext(ctx, c), c.Session(), func() {
		g.logger.Debug("Presenter closed", "session_id", sessionID, "tour", tourID)
	})
	if err != nil {
		return nil, err
	}

	// An interrupted walk still records where it stopped.
	final := c.Session()
	if err := g.sessions.Save(context.WithoutCancel(ctx), sessionID, final); err != nil {
		return nil, err
	}
	return final, nil
}
