// Package telegram connects the bot to the Telegram Bot API.
//
// Updates arrive either through long polling (Run) or through a webhook
// (WebhookHandler). Each update is translated into a domain event, handed to the
// Handler and the returned effects are rendered back into the chat.
package telegram

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/rapidhire/internal/logging"
	"github.com/aretw0/rapidhire/pkg/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// Defaults for long polling.
const (
	DefaultPollTimeout = 30 * time.Second
	DefaultWorkers     = 8
)

// SecretTokenHeader carries the webhook secret set with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// API is the subset of *tgbotapi.BotAPI the transport uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler processes one event. *rapidhire.Bot satisfies it.
type Handler interface {
	Handle(ctx context.Context, ev domain.Event) ([]domain.Effect, error)
}

// Transport routes Telegram updates to a Handler.
type Transport struct {
	api         API
	handler     Handler
	pollTimeout time.Duration
	workers     int
	secret      string
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures the Transport.
type Option func(*Transport)

// WithPollTimeout sets the long polling timeout.
func WithPollTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.pollTimeout = d
		}
	}
}

// WithWorkers sets how many updates are processed in parallel while polling.
func WithWorkers(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.workers = n
		}
	}
}

// WithSecretToken makes the webhook reject requests without the matching secret header.
func WithSecretToken(secret string) Option {
	return func(t *Transport) {
		t.secret = secret
	}
}

// WithLogger configures the transport logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// WithClock overrides the time stamped on events.
func WithClock(now func() time.Time) Option {
	return func(t *Transport) {
		t.now = now
	}
}

// New creates a Transport.
func New(api API, handler Handler, opts ...Option) *Transport {
	t := &Transport{
		api:         api,
		handler:     handler,
		pollTimeout: DefaultPollTimeout,
		workers:     DefaultWorkers,
		now:         time.Now,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RegisterCommands publishes the command menu shown by Telegram clients.
func (t *Transport) RegisterCommands() error {
	_, err := t.api.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: CommandStart, Description: "Start a new application"},
		tgbotapi.BotCommand{Command: CommandCancel, Description: "Cancel the application in progress"},
	))
	return err
}

// Run long polls for updates until ctx is cancelled.
// Updates of one session are processed in arrival order; different sessions are
// spread over the worker pool.
func (t *Transport) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(t.pollTimeout / time.Second)
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates := t.api.GetUpdatesChan(cfg)

	// Queued updates are drained on shutdown, so workers do not inherit cancellation.
	workCtx := context.WithoutCancel(ctx)
	queues := make([]chan tgbotapi.Update, t.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan tgbotapi.Update, 16)
		wg.Add(1)
		go func(q <-chan tgbotapi.Update) {
			defer wg.Done()
			for u := range q {
				t.Process(workCtx, u)
			}
		}(queues[i])
	}
	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
	}()

	t.logger.Info("Polling for updates", "timeout", t.pollTimeout, "workers", t.workers)
	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.logger.Info("Polling stopped")
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			select {
			case queues[t.shard(u)] <- u:
			case <-ctx.Done():
			}
		}
	}
}

// shard maps an update to a worker so that one session always lands on the same queue.
func (t *Transport) shard(u tgbotapi.Update) int {
	ev, ok := Translate(u, time.Time{})
	if !ok {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(ev.SessionID))
	return int(h.Sum32() % uint32(t.workers))
}

// WebhookHandler serves updates pushed by Telegram. It always answers 200 once the
// update is decoded so Telegram does not redeliver it.
func (t *Transport) WebhookHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if t.secret != "" && r.Header.Get(SecretTokenHeader) != t.secret {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var u tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			http.Error(w, "invalid update", http.StatusBadRequest)
			return
		}

		t.Process(r.Context(), u)
		w.WriteHeader(http.StatusOK)
	})
}

// Process handles a single update end to end. Failures are logged, never returned:
// one broken update must not stop the loop.
func (t *Transport) Process(ctx context.Context, u tgbotapi.Update) {
	logger := t.logger.With("update_id", u.UpdateID, "trace_id", uuid.NewString())

	if cq := u.CallbackQuery; cq != nil {
		// Stop the client-side spinner whatever happens next.
		if _, err := t.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			logger.Warn("Failed to answer callback query", "err", err)
		}
	}

	ev, ok := Translate(u, t.now())
	if !ok {
		logger.Debug("Ignoring update")
		return
	}
	logger = logger.With("session_id", ev.SessionID, "kind", ev.Kind)

	effects, err := t.handler.Handle(ctx, ev)
	if err != nil {
		logger.Error("Failed to handle event", "err", err)
		return
	}

	for _, eff := range effects {
		msg, err := Render(ev.ChatID, eff)
		if err != nil {
			logger.Warn("Skipping effect", "err", err)
			continue
		}
		if _, err := t.api.Send(msg); err != nil {
			logger.Error("Failed to send message", "effect", eff.Kind, "err", err)
		}
	}
}
