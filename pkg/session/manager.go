package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/rapidhire/internal/logging"
	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/aretw0/rapidhire/pkg/ports"
)

// ErrClearFailed is returned by Transact when a finished session could neither
// be deleted nor overwritten with its terminal state.
var ErrClearFailed = errors.New("failed to clear session")

// DefaultLockTTL bounds how long a distributed session lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring one event per session at a time.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
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

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new session Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
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

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// Save persists the session state.
func (m *Manager) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
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

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// Transact runs a read-modify-write cycle on one session while holding its lock.
// fn receives the stored state, or nil when the session does not exist.
// A nil or terminal result clears the session; anything else is saved.
// When the delete fails, the terminal state is saved in its place so that a
// repeated input finds a finished dialogue instead of the previous stage.
func (m *Manager) Transact(ctx context.Context, sessionID string, fn func(ctx context.Context, current *domain.State) (*domain.State, error)) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				return fmt.Errorf("failed to load session: %w", err)
			}
			current = nil
		}

		next, err := fn(ctx, current)
		if err != nil {
			return err
		}

		if next == nil || next.Stage.Terminal() {
			if current == nil {
				return nil
			}
			if err := m.store.Delete(ctx, sessionID); err != nil {
				return m.tombstone(ctx, sessionID, current, next, err)
			}
			return nil
		}

		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

func (m *Manager) tombstone(ctx context.Context, sessionID string, current, next *domain.State, deleteErr error) error {
	if next == nil {
		if current.Stage.Terminal() {
			// Already a tombstone from an earlier failed delete.
			m.logger.Warn("Failed to delete finished session", "session_id", sessionID, "err", deleteErr)
			return nil
		}
		return fmt.Errorf("%w: %w", ErrClearFailed, deleteErr)
	}

	if err := m.store.Save(ctx, sessionID, next); err != nil {
		return fmt.Errorf("%w: delete: %w; save terminal state: %w", ErrClearFailed, deleteErr, err)
	}
	m.logger.Warn("Failed to delete finished session, kept its terminal state",
		"session_id", sessionID,
		"stage", next.Stage,
		"err", deleteErr,
	)
	return nil
}

// WithLock executes a function while holding the lock for the session.
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
