package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/guidepost/internal/logging"
	"github.com/aretw0/guidepost/pkg/coordinator"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/observability"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/introspection"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session.
const DefaultLockTTL = 30 * time.Second

// ComponentType identifies the Manager in introspection snapshots.
const ComponentType = "session"

var (
	_ introspection.TypedWatcher[*domain.TourSession] = (*Manager)(nil)
	_ introspection.Component                         = (*Manager)(nil)
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger

	feed observability.Feed[*domain.TourSession]
	last *domain.TourSession
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLifecycleHooks registers hooks passed to every coordinator the Manager builds.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	m.feed.Type = ComponentType
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// activeLocks reports how many lock entries are alive.
func (m *Manager) activeLocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.TourSession, error) {
	var session *domain.TourSession
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		return err
	})
	return session, err
}

// LoadOrNew loads a session, returning a fresh inactive one when none is stored.
// The fresh session is not persisted.
func (m *Manager) LoadOrNew(ctx context.Context, sessionID string) (*domain.TourSession, error) {
	var session *domain.TourSession
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.loadOrNew(ctx, sessionID)
		return err
	})
	return session, err
}

func (m *Manager) loadOrNew(ctx context.Context, sessionID string) (*domain.TourSession, error) {
	session, err := m.store.Load(ctx, sessionID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return domain.NewSession(sessionID), nil
}

// Update runs fn against a coordinator holding the stored session and
// persists the result. The whole cycle happens under the session lock.
// If fn fails nothing is saved, and a session fn left untouched is not
// written either.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(ctx context.Context, c *coordinator.Coordinator) error) (*domain.TourSession, error) {
	var result *domain.TourSession
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := m.loadOrNew(ctx, sessionID)
		if err != nil {
			return err
		}

		c := m.NewCoordinator(current)
		if err := fn(ctx, c); err != nil {
			return err
		}

		result = c.Session()
		if unchanged(current, result) {
			return nil
		}
		return m.commit(ctx, sessionID, current, result)
	})
	return result, err
}

// NewCoordinator builds a coordinator over session carrying the Manager's
// hooks and logger. Changes made through it are not persisted until Save.
func (m *Manager) NewCoordinator(session *domain.TourSession) *coordinator.Coordinator {
	return coordinator.New(session.SessionID,
		coordinator.WithSession(session),
		coordinator.WithLifecycleHooks(m.hooks),
		coordinator.WithLogger(m.logger),
	)
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, sessionID string, session *domain.TourSession) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var previous *domain.TourSession
		if m.feed.Watchers() > 0 {
			previous, _ = m.store.Load(ctx, sessionID)
		}
		return m.commit(ctx, sessionID, previous, session)
	})
}

func (m *Manager) commit(ctx context.Context, sessionID string, previous, session *domain.TourSession) error {
	if err := m.store.Save(ctx, sessionID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	m.mu.Lock()
	m.last = session.Snapshot()
	m.mu.Unlock()

	m.feed.Publish(sessionID, previous, session.Snapshot())
	return nil
}

func unchanged(before, after *domain.TourSession) bool {
	return domain.Diff(before, after) == nil && before.UpdatedAt.Equal(after.UpdatedAt)
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// State returns the session most recently saved through the Manager, or nil.
func (m *Manager) State() *domain.TourSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return nil
	}
	return m.last.Snapshot()
}

// Watch streams every saved session transition until ctx is done.
func (m *Manager) Watch(ctx context.Context) <-chan introspection.StateChange[*domain.TourSession] {
	return m.feed.Watch(ctx)
}

// ComponentType implements introspection.Component.
func (m *Manager) ComponentType() string {
	return ComponentType
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
