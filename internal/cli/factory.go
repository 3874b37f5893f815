// Package cli builds the bot's components from configuration for the commands in cmd/rapidhire.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/rapidhire"
	"github.com/aretw0/rapidhire/internal/config"
	"github.com/aretw0/rapidhire/pkg/adapters/file"
	"github.com/aretw0/rapidhire/pkg/adapters/memory"
	"github.com/aretw0/rapidhire/pkg/adapters/redis"
	"github.com/aretw0/rapidhire/pkg/adapters/sheets"
	"github.com/aretw0/rapidhire/pkg/observability"
	"github.com/aretw0/rapidhire/pkg/persistence/middleware"
	"github.com/aretw0/rapidhire/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/api/option"
)

// Components is everything a command needs to run the bot.
type Components struct {
	Bot          *rapidhire.Bot
	Registry     *prometheus.Registry
	Applications ports.ApplicationStore

	closers []func() error
}

// Close releases connections opened by Build.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	return errors.Join(errs...)
}

// BuildOptions tweaks Build.
type BuildOptions struct {
	// RequireSheets fails when no spreadsheet is configured instead of
	// falling back to an in-memory record store.
	RequireSheets bool

	// SheetsOptions are passed to the Sheets and Drive clients.
	SheetsOptions []option.ClientOption
}

// Build wires the record store, the session store and the metrics into a Bot.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts BuildOptions) (*Components, error) {
	c := &Components{Registry: prometheus.NewRegistry()}
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	apps, err := NewApplicationStore(ctx, cfg.Sheets, logger, opts)
	if err != nil {
		return nil, err
	}
	c.Applications = apps

	states, locker, closeStates, err := NewStateStore(cfg.Sessions)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, closeStates)

	metrics := observability.NewMetrics(c.Registry)
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))

	botOpts := []rapidhire.Option{
		rapidhire.WithApplicationStore(apps),
		rapidhire.WithStateStore(states),
		rapidhire.WithSubmitTimeout(cfg.Sheets.Timeout),
		rapidhire.WithLifecycleHooks(hooks),
		rapidhire.WithLogger(logger),
	}
	if cfg.DeadLetter.Path != "" {
		botOpts = append(botOpts, rapidhire.WithDeadLetter(file.NewDeadLetter(cfg.DeadLetter.Path)))
	}
	if locker != nil {
		botOpts = append(botOpts, rapidhire.WithLocker(locker, cfg.Sessions.LockTTL))
	}

	bot, err := rapidhire.New(botOpts...)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Bot = bot
	return c, nil
}

// NewApplicationStore returns the Sheets store, or an in-memory one when no
// spreadsheet is configured and opts allow it.
func NewApplicationStore(ctx context.Context, cfg config.SheetsConfig, logger *slog.Logger, opts BuildOptions) (ports.ApplicationStore, error) {
	if !cfg.Configured() {
		if opts.RequireSheets {
			return nil, errors.New("no spreadsheet configured")
		}
		logger.Warn("No spreadsheet configured, applications are kept in memory only")
		return memory.NewApplications(), nil
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid sheets timezone: %w", err)
	}

	store, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:   cfg.SpreadsheetID,
		SpreadsheetName: cfg.SpreadsheetName,
		Worksheet:       cfg.Worksheet,
		CredentialsFile: cfg.CredentialsFile,
		TimeLayout:      cfg.TimeLayout,
		Location:        loc,
	}, opts.SheetsOptions...)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to spreadsheet", "spreadsheet_id", store.SpreadsheetID())
	return store, nil
}

// NewStateStore opens the configured session backend, sealed with encryption
// when a key is configured. The locker is only returned for redis with
// locking enabled.
func NewStateStore(cfg config.SessionsConfig) (ports.StateStore, ports.DistributedLocker, func() error, error) {
	store, locker, closeFn, err := openStateStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	active, fallback, err := cfg.Keys()
	if err != nil {
		_ = closeFn()
		return nil, nil, nil, err
	}
	if active != nil {
		seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			_ = closeFn()
			return nil, nil, nil, err
		}
		store = seal(store)
	}
	return store, locker, closeFn, nil
}

func openStateStore(cfg config.SessionsConfig) (ports.StateStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory, "":
		return memory.NewStore(), nil, noop, nil

	case config.BackendFile:
		return file.New(cfg.Dir), nil, noop, nil

	case config.BackendRedis:
		store, err := redis.NewFromURL(cfg.RedisURL, redis.WithTTL(cfg.TTL))
		if err != nil {
			return nil, nil, nil, err
		}
		var locker ports.DistributedLocker
		if cfg.Lock {
			locker = redis.NewLocker(store.Client(), store.Prefix())
		}
		return store, locker, store.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
}
