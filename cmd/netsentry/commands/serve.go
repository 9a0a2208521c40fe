package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/netsentry/netsentry/internal/alerts"
	"github.com/netsentry/netsentry/internal/analytics"
	"github.com/netsentry/netsentry/internal/chat"
	"github.com/netsentry/netsentry/internal/config"
	"github.com/netsentry/netsentry/internal/dashboard"
	"github.com/netsentry/netsentry/internal/identity"
	"github.com/netsentry/netsentry/internal/records"
	"github.com/netsentry/netsentry/internal/tracing"
	"github.com/netsentry/netsentry/internal/upload"
)

func newServeCmd() *cobra.Command {
	var port int
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the netsentry dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				// Fall back to defaults if no config file
				cfg = config.Defaults()
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg.Server.LogLevel)

			shutdownTracing, err := tracing.Setup("netsentry", version, cfg.Tracing.Enabled)
			if err != nil {
				return err
			}

			sessions, err := chat.NewSessionProvider(cfg.Session)
			if err != nil {
				return err
			}

			store, err := alerts.NewStore(cfg.Alerts.DBPath, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SeedEmailSettings(alerts.EmailSettings{
				Enabled:     cfg.Alerts.Email.Enabled,
				Recipients:  cfg.Alerts.Email.Recipients,
				MinSeverity: cfg.Alerts.Email.MinSeverity,
				DigestHour:  cfg.Alerts.Email.DigestHour,
			}); err != nil {
				return err
			}
			if err := store.SeedAlerts(alerts.DemoAlerts(time.Now())); err != nil {
				return err
			}

			intake, err := upload.NewIntake(cfg.Uploads, logger)
			if err != nil {
				return err
			}

			var idp identity.Provider
			if cfg.Identity.URL != "" {
				idp, err = identity.NewProvider(cfg.Identity)
				if err != nil {
					return err
				}
			}

			pipeline := chat.NewPipeline(
				cfg.Webhook.URL,
				time.Duration(cfg.Webhook.TimeoutS)*time.Second,
				sessions,
				logger,
			)
			viewer := records.NewViewer(records.NewClient(cfg.Tabular.BaseURL, cfg.Tabular.Token), logger)

			srv := dashboard.NewServer(dashboard.Deps{
				Config:    cfg,
				Pipeline:  pipeline,
				Viewer:    viewer,
				Intake:    intake,
				Alerts:    store,
				Analytics: analytics.NewStaticSource(),
				Identity:  idp,
				Logger:    logger,
			})

			printBanner(cfg, srv.AccessCode())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Reload validated config edits without a restart. The webhook
			// and tabular sections swap through their owners' locks; email
			// settings are persisted state and stay with the store.
			go func() {
				werr := config.Watch(ctx, cfgFile, logger, func(next *config.Config) {
					pipeline.SetWebhook(next.Webhook.URL, time.Duration(next.Webhook.TimeoutS)*time.Second)
					srv.ApplyConfig(next)
					logger.Info("config reloaded", "path", cfgFile)
				})
				if werr != nil && ctx.Err() == nil {
					logger.Warn("config watch unavailable", "error", werr)
				}
			}()

			bindAddr := cfg.Server.Bind
			if bindAddr == "" {
				bindAddr = "127.0.0.1"
			}
			httpSrv := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", bindAddr, cfg.Server.Port),
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpSrv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				return shutdownTracing(shutdownCtx)
			}
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "address to bind (default: 127.0.0.1)")
	return cmd
}

func newLogger(level string) *slog.Logger {
	l := slog.LevelInfo
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func printBanner(cfg *config.Config, dashCode string) {
	bindAddr := cfg.Server.Bind
	if bindAddr == "" {
		bindAddr = "127.0.0.1"
	}

	webhook := "not configured"
	if cfg.Webhook.URL != "" {
		webhook = cfg.Webhook.URL
	}

	fmt.Println()
	fmt.Println("  netsentry")
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Dashboard:  http://%s:%d/dashboard\n", bindAddr, cfg.Server.Port)
	fmt.Printf("  API:        http://%s:%d/api\n", bindAddr, cfg.Server.Port)
	fmt.Printf("  Health:     http://%s:%d/health\n", bindAddr, cfg.Server.Port)
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Access code:  %s\n", dashCode)
	fmt.Println("  ────────────────────────────────────────")
	fmt.Printf("  Webhook: %s\n", webhook)
	fmt.Println()
	fmt.Println("  Enter this code in the browser to access the dashboard.")
	fmt.Println("  Press Ctrl+C to stop.")
	fmt.Println()
}
