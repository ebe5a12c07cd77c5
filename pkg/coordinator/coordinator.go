package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/pkg/domain"
)

// Coordinator owns one TourSession and is the only thing allowed to mutate it.
// All operations complete synchronously, so a Start is fully visible before the
// next call is processed.
type Coordinator struct {
	mu      sync.Mutex
	session *domain.TourSession

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Coordinator) {
		c.hooks = hooks
	}
}

// WithLogger configures a logger for the Coordinator.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithSession restores a previously persisted session instead of starting inactive.
func WithSession(session *domain.TourSession) Option {
	return func(c *Coordinator) {
		if session != nil {
			c.session = session.Snapshot()
		}
	}
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// New creates a Coordinator with an inactive session.
func New(sessionID string, opts ...Option) *Coordinator {
	c := &Coordinator{
		session: domain.NewSession(sessionID),
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session.SessionID == "" {
		c.session.SessionID = sessionID
	}
	if c.session.Steps == nil {
		c.session.Steps = []domain.StepDescriptor{}
	}
	c.clampLocked()
	c.logger = c.logger.With("session_id", c.session.SessionID)
	return c
}

// Start replaces the whole session: steps and tag are loaded, the index resets
// to 0 and the session becomes active. An active tour is discarded without
// confirmation. An empty steps slice is accepted; presenters render nothing for it.
func (c *Coordinator) Start(ctx context.Context, steps []domain.StepDescriptor, tag string) {
	c.mu.Lock()
	replaced := ""
	if c.session.Active {
		replaced = c.session.Tag
	}
	now := c.now()
	c.session = &domain.TourSession{
		SessionID:    c.session.SessionID,
		Active:       true,
		Steps:        domain.CloneSteps(steps),
		CurrentIndex: 0,
		Tag:          tag,
		StartedAt:    now,
		UpdatedAt:    now,
	}
	event := &domain.TourEvent{
		EventBase: c.event(domain.EventTourStart, now),
		Tag:       tag,
		Steps:     len(steps),
		Replaced:  replaced,
	}
	c.mu.Unlock()

	if replaced != "" {
		c.logger.Debug("Active tour replaced", "tag", tag, "replaced", replaced)
	}
	c.logger.Debug("Tour started", "tag", tag, "steps", len(steps))
	if c.hooks.OnTourStart != nil {
		c.hooks.OnTourStart(ctx, event)
	}
}

// Stop ends the session. Steps and tag are kept so the last tour shown can be
// inspected. Calling Stop on an inactive session does nothing.
func (c *Coordinator) Stop(ctx context.Context) {
	c.stop(ctx, false)
}

func (c *Coordinator) stop(ctx context.Context, completed bool) {
	c.mu.Lock()
	if !c.session.Active {
		c.mu.Unlock()
		return
	}
	event := c.stopLocked(completed)
	c.mu.Unlock()

	c.fireStop(ctx, event)
}

func (c *Coordinator) stopLocked(completed bool) *domain.TourEvent {
	now := c.now()
	c.session.Active = false
	c.session.UpdatedAt = now
	return &domain.TourEvent{
		EventBase: c.event(domain.EventTourStop, now),
		Tag:       c.session.Tag,
		Steps:     len(c.session.Steps),
		Completed: completed,
	}
}

func (c *Coordinator) fireStop(ctx context.Context, event *domain.TourEvent) {
	c.logger.Debug("Tour stopped", "tag", event.Tag, "completed", event.Completed)
	if c.hooks.OnTourStop != nil {
		c.hooks.OnTourStop(ctx, event)
	}
}

// GoTo moves to index, clamped silently to [0, len(steps)-1].
// It is a no-op when the session is inactive or has no steps.
// It returns the resulting index.
func (c *Coordinator) GoTo(ctx context.Context, index int) int {
	return c.move(ctx, func(int) int { return index })
}

// Prev moves back one step. On the first step it stays put.
func (c *Coordinator) Prev(ctx context.Context) int {
	return c.move(ctx, func(current int) int { return current - 1 })
}

// Next advances one step. On the last step (or an empty sequence) it completes
// the tour by stopping it and reports true.
func (c *Coordinator) Next(ctx context.Context) (completed bool) {
	c.mu.Lock()
	if !c.session.Active {
		c.mu.Unlock()
		return false
	}
	if n := len(c.session.Steps); n > 0 && c.session.CurrentIndex < n-1 {
		event := c.moveLocked(c.session.CurrentIndex + 1)
		c.mu.Unlock()
		c.fireStep(ctx, event)
		return false
	}
	event := c.stopLocked(true)
	c.mu.Unlock()

	c.fireStop(ctx, event)
	return true
}

func (c *Coordinator) move(ctx context.Context, target func(current int) int) int {
	c.mu.Lock()
	if !c.session.Active || len(c.session.Steps) == 0 {
		current := c.session.CurrentIndex
		c.mu.Unlock()
		return current
	}
	event := c.moveLocked(target(c.session.CurrentIndex))
	index := c.session.CurrentIndex
	c.mu.Unlock()

	c.fireStep(ctx, event)
	return index
}

// moveLocked clamps and applies target. It returns nil when the index did not change.
func (c *Coordinator) moveLocked(target int) *domain.StepEvent {
	target = clamp(target, 0, len(c.session.Steps)-1)
	from := c.session.CurrentIndex
	if target == from {
		return nil
	}

	now := c.now()
	c.session.CurrentIndex = target
	c.session.UpdatedAt = now
	return &domain.StepEvent{
		EventBase: c.event(domain.EventStepChange, now),
		Tag:       c.session.Tag,
		From:      from,
		To:        target,
	}
}

func (c *Coordinator) fireStep(ctx context.Context, event *domain.StepEvent) {
	if event == nil {
		return
	}
	c.logger.Debug("Step changed", "tag", event.Tag, "from", event.From, "to", event.To)
	if c.hooks.OnStepChange != nil {
		c.hooks.OnStepChange(ctx, event)
	}
}

// Session returns a snapshot of the current session.
func (c *Coordinator) Session() *domain.TourSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Snapshot()
}

// Active reports whether a tour is being presented.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Active
}

func (c *Coordinator) event(t domain.EventType, now time.Time) domain.EventBase {
	return domain.EventBase{
		Timestamp: now,
		Type:      t,
		SessionID: c.session.SessionID,
	}
}

// clampLocked repairs an index restored from storage.
func (c *Coordinator) clampLocked() {
	if len(c.session.Steps) == 0 {
		c.session.CurrentIndex = 0
		return
	}
	c.session.CurrentIndex = clamp(c.session.CurrentIndex, 0, len(c.session.Steps)-1)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
