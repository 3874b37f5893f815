package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/rapidhire"
	"github.com/aretw0/rapidhire/internal/cli"
	"github.com/aretw0/rapidhire/internal/config"
	httpAdapter "github.com/aretw0/rapidhire/pkg/adapters/http"
	"github.com/aretw0/rapidhire/pkg/adapters/telegram"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Validates the configuration, connects to the spreadsheet and starts receiving
Telegram updates by long polling or webhook. Any configuration error aborts
before the first update is accepted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(config.Requirements{Telegram: true, Sheets: true}); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		components, err := cli.Build(ctx, cfg, logger, cli.BuildOptions{RequireSheets: true})
		if err != nil {
			return err
		}
		defer components.Close()

		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("failed to connect to telegram: %w", err)
		}
		api.Debug = cfg.Telegram.Debug
		logger.Info("Authorized on Telegram", "bot", api.Self.UserName, "mode", cfg.Telegram.Mode)

		transport := telegram.New(api, components.Bot,
			telegram.WithPollTimeout(cfg.Telegram.PollTimeout),
			telegram.WithWorkers(cfg.Telegram.Workers),
			telegram.WithSecretToken(cfg.Telegram.SecretToken),
			telegram.WithLogger(logger),
		)
		if err := transport.RegisterCommands(); err != nil {
			logger.Warn("Failed to register bot commands", "err", err)
		}

		// Telegram retries deliveries until the listener below is up.
		switch cfg.Telegram.Mode {
		case config.ModeWebhook:
			wh, err := tgbotapi.NewWebhook(cfg.Telegram.WebhookURL)
			if err != nil {
				return fmt.Errorf("invalid webhook url: %w", err)
			}
			if _, err := api.Request(wh); err != nil {
				return fmt.Errorf("failed to register webhook: %w", err)
			}
			logger.Info("Webhook registered", "url", cfg.Telegram.WebhookURL)
		default:
			if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
				logger.Warn("Failed to remove webhook before polling", "err", err)
			}
		}

		g, ctx := errgroup.WithContext(ctx)

		if cfg.HTTP.Enabled {
			opts := []httpAdapter.Option{
				httpAdapter.WithGatherer(components.Registry),
				httpAdapter.WithLogger(logger),
			}
			if cfg.Telegram.Mode == config.ModeWebhook {
				opts = append(opts, httpAdapter.WithWebhook(cfg.Telegram.WebhookPath, transport.WebhookHandler()))
			}
			srv := &http.Server{
				Addr: cfg.HTTP.Addr,
				Handler: httpAdapter.NewHandler(httpAdapter.Info{
					App:     "rapidhire",
					Version: strings.TrimSpace(rapidhire.Version),
					Mode:    cfg.Telegram.Mode,
				}, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			g.Go(func() error {
				logger.Info("Starting HTTP server", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
		}

		if cfg.Telegram.Mode == config.ModePolling {
			g.Go(func() error {
				return transport.Run(ctx)
			})
		}

		err = g.Wait()
		logger.Info("Rapid-Hire stopped")
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
