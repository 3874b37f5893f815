// Package recorder guards the single append of a confirmed application.
//
// The dialogue never fails because of the record store: every error, timeout or
// panic raised while appending is converted into a false result, logged at ERROR
// and, when configured, written to a dead-letter sink for manual recovery.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/rapidhire/internal/logging"
	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/aretw0/rapidhire/pkg/ports"
)

// DefaultTimeout bounds one append call.
const DefaultTimeout = 15 * time.Second

// ErrNoStore is reported when the guard has no store to append to.
var ErrNoStore = errors.New("no application store configured")

// Guard runs ApplicationStore.Append exactly once per call and never fails outward.
type Guard struct {
	store      ports.ApplicationStore
	deadLetter ports.DeadLetter
	timeout    time.Duration
	now        func() time.Time
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option configures the Guard.
type Option func(*Guard)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithDeadLetter keeps failed applications in dl.
func WithDeadLetter(dl ports.DeadLetter) Option {
	return func(g *Guard) {
		g.deadLetter = dl
	}
}

// WithHooks registers lifecycle hooks. Only OnSubmit is used.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Guard) {
		g.hooks = g.hooks.Merge(hooks)
	}
}

// WithLogger configures the logger failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// WithClock overrides the time source used for SubmittedAt.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

// New creates a Guard around store.
func New(store ports.ApplicationStore, opts ...Option) *Guard {
	g := &Guard{
		store:   store,
		timeout: DefaultTimeout,
		now:     time.Now,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Submit appends app and reports whether the store accepted it.
// A zero SubmittedAt is stamped with the current time. The append is detached from
// the caller's cancellation so a dropped request does not abort a confirmed
// submission, but it is always bounded by the guard timeout.
func (g *Guard) Submit(ctx context.Context, sessionID string, app domain.Application) bool {
	start := g.now()
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = start
	}

	err := g.append(ctx, app)
	elapsed := g.now().Sub(start)

	if g.hooks.OnSubmit != nil {
		g.hooks.OnSubmit(ctx, &domain.SubmitEvent{
			Timestamp:   start,
			SessionID:   sessionID,
			Application: app,
			OK:          err == nil,
			Duration:    elapsed,
			Err:         err,
		})
	}

	if err == nil {
		g.logger.Info("Application stored",
			"session_id", sessionID,
			"target_language", app.TargetLanguage,
			"duration", elapsed,
		)
		return true
	}

	g.logger.Error("Application could not be stored",
		"alert", "submission_lost",
		"session_id", sessionID,
		"row", app.Row(start, ""),
		"duration", elapsed,
		"err", err,
	)
	if g.deadLetter != nil {
		if dlErr := g.deadLetter.Put(context.WithoutCancel(ctx), sessionID, app, err); dlErr != nil {
			g.logger.Error("Failed to write dead letter",
				"alert", "submission_lost",
				"session_id", sessionID,
				"err", dlErr,
			)
		}
	}
	return false
}

// append performs one bounded attempt, converting panics into errors.
func (g *Guard) append(ctx context.Context, app domain.Application) error {
	if g.store == nil {
		return ErrNoStore
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("application store panicked: %v", r)
			}
		}()
		done <- g.store.Append(ctx, app)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("append failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("append timed out after %s: %w", g.timeout, ctx.Err())
	}
}
