package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hermitcli/hermit/pkg/cli/config"
	controller "github.com/hermitcli/hermit/pkg/controller/http"
	"github.com/hermitcli/hermit/pkg/domain/types"
	"github.com/hermitcli/hermit/pkg/usecase"
)

func cmdReleaseWatch() *cli.Command {
	var (
		serverCfg  config.Server
		releaseCfg config.Release
		githubCfg  config.GitHub
		historyCfg config.History
		notifyCfg  config.Notify
		sentryCfg  config.Sentry
	)

	flags := serverCfg.Flags()
	flags = append(flags, releaseCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, githubCfg.WebhookFlags()...)
	flags = append(flags, historyCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "Watch for tag pushes via GitHub webhooks and release them",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if releaseCfg.SkipPublish {
				return goerr.New("skip-publish is not available in watch mode")
			}
			// Watch mode always checks the tag out from GitHub.
			releaseCfg.SourceDir = ""

			if sentryCfg.DSN != "" {
				if err := sentry.Init(sentry.ClientOptions{
					Dsn:     sentryCfg.DSN,
					Release: types.AppName + "@" + types.Version,
				}); err != nil {
					return goerr.Wrap(err, "failed to initialize sentry")
				}
				defer sentry.Flush(2 * time.Second)
			}

			wiring, err := newPipelineWiring(ctx, &releaseCfg, &githubCfg, &historyCfg, &notifyCfg)
			if err != nil {
				return err
			}
			defer wiring.close(ctx)

			webhookUC := usecase.NewWebhook(wiring.pipeline, usecase.WithTagPattern(wiring.tagPattern))

			server, err := controller.NewServer(
				ctx,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			logger.Info("starting release watcher",
				slog.String("addr", serverCfg.Addr),
				slog.String("repository", releaseCfg.Repository),
				slog.String("pattern", string(wiring.tagPattern)),
			)

			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("server shutdown complete")
			return nil
		},
	}
}
