package rapidhire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/rapidhire/internal/logging"
	"github.com/aretw0/rapidhire/internal/runtime"
	"github.com/aretw0/rapidhire/pkg/adapters/memory"
	"github.com/aretw0/rapidhire/pkg/domain"
	"github.com/aretw0/rapidhire/pkg/ports"
	"github.com/aretw0/rapidhire/pkg/recorder"
	"github.com/aretw0/rapidhire/pkg/session"
)

// ErrNoApplicationStore is returned by New when no record store was configured.
var ErrNoApplicationStore = errors.New("application store is required")

// Bot is the high-level entry point: it routes events through the dialogue engine
// under a per-session lock and executes submissions.
type Bot struct {
	engine   *runtime.Engine
	sessions *session.Manager
	recorder *recorder.Guard

	stateStore ports.StateStore
	apps       ports.ApplicationStore
	deadLetter ports.DeadLetter
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	timeout    time.Duration
	now        func() time.Time
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithApplicationStore sets the record store confirmed applications are appended to.
func WithApplicationStore(store ports.ApplicationStore) Option {
	return func(b *Bot) {
		b.apps = store
	}
}

// WithStateStore sets where in-progress dialogues are kept. Defaults to memory.
func WithStateStore(store ports.StateStore) Option {
	return func(b *Bot) {
		b.stateStore = store
	}
}

// WithDeadLetter keeps applications the record store refused.
func WithDeadLetter(dl ports.DeadLetter) Option {
	return func(b *Bot) {
		b.deadLetter = dl
	}
}

// WithLocker enables distributed session locking, for several replicas sharing a state store.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(b *Bot) {
		b.locker = locker
		b.lockTTL = ttl
	}
}

// WithSubmitTimeout bounds the record store append. Defaults to recorder.DefaultTimeout.
func WithSubmitTimeout(d time.Duration) Option {
	return func(b *Bot) {
		b.timeout = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = b.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// New creates a Bot. An application store is required.
func New(opts ...Option) (*Bot, error) {
	b := &Bot{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}

	if b.apps == nil {
		return nil, ErrNoApplicationStore
	}
	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	if b.stateStore == nil {
		b.stateStore = memory.NewStore()
	}

	b.engine = runtime.NewEngine(
		runtime.WithClock(b.now),
		runtime.WithLogger(b.logger),
	)

	sessionOpts := []session.Option{session.WithLogger(b.logger)}
	if b.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(b.locker), session.WithLockTTL(b.lockTTL))
	}
	b.sessions = session.NewManager(b.stateStore, sessionOpts...)

	recorderOpts := []recorder.Option{
		recorder.WithLogger(b.logger),
		recorder.WithClock(b.now),
		recorder.WithTimeout(b.timeout),
		recorder.WithHooks(b.hooks),
	}
	if b.deadLetter != nil {
		recorderOpts = append(recorderOpts, recorder.WithDeadLetter(b.deadLetter))
	}
	b.recorder = recorder.New(b.apps, recorderOpts...)

	return b, nil
}

// Handle processes one inbound event and returns the effects the transport must render.
// Events of the same session are handled one at a time; different sessions run in parallel.
// A failing record store never surfaces here: the user is told the application was received.
func (b *Bot) Handle(ctx context.Context, ev domain.Event) ([]domain.Effect, error) {
	if ev.SessionID == "" {
		return nil, fmt.Errorf("event %q has no session id", ev.Kind)
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = b.now()
	}

	var (
		effects   []domain.Effect
		submitted bool
	)
	err := b.sessions.Transact(ctx, ev.SessionID, func(ctx context.Context, current *domain.State) (*domain.State, error) {
		res, err := b.engine.Step(ctx, current, ev)
		if err != nil {
			return nil, err
		}
		b.notify(ctx, res)

		for _, eff := range res.Effects {
			if eff.Kind == domain.EffectSubmit && eff.Application != nil {
				// The outcome is logged and counted by the guard; the dialogue proceeds either way.
				b.recorder.Submit(ctx, ev.SessionID, *eff.Application)
				submitted = true
			}
		}

		effects = domain.Outbound(res.Effects)
		return res.State, nil
	})
	if err != nil && submitted {
		// The row is already appended, so the candidate still gets the closing message.
		b.logger.Error("Failed to close session after submission",
			"session_id", ev.SessionID,
			"alert", "session_not_cleared",
			"err", err,
		)
		return effects, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", ev.SessionID, err)
	}
	return effects, nil
}

func (b *Bot) notify(ctx context.Context, res runtime.Result) {
	if res.Transition != nil && b.hooks.OnTransition != nil {
		b.hooks.OnTransition(ctx, res.Transition)
	}
	if res.Reject != nil && b.hooks.OnReject != nil {
		b.hooks.OnReject(ctx, res.Reject)
	}
}

// Sessions returns the session manager, for inspection tools.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}

// Transitions lists the edges of the dialogue flow.
func (b *Bot) Transitions() []runtime.Transition {
	return b.engine.Transitions()
}
