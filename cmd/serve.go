package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"promette/internal/bootstrap"
	"promette/internal/bootstrap/logging"
	"promette/internal/errs"
	"promette/internal/transport/httpapi"
	correspondenceuc "promette/internal/usecase/correspondence"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the correspondence REST API",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *correspondenceuc.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = app.Config.Server.Addr
		}

		serveCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if app.Config.Catalog.Watch && app.Config.Catalog.Path != "" {
			closeWatcher, err := watchCatalog(serveCtx, app.Config.Catalog.Path, svc)
			if err != nil {
				return errs.Wrap(err, "watch catalog profile")
			}
			defer closeWatcher()
		}

		server := &http.Server{
			Addr:    addr,
			Handler: httpapi.NewHandler(svc),
		}

		go func() {
			<-serveCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()

		logging.Info(ctx, "correspondence api started", slog.String("addr", addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "correspondence api failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "serve correspondence api")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr from config)")
}

// watchCatalog hot-reloads the workflow catalog when the profile file
// changes. A broken edit keeps the previous catalog and logs the error.
func watchCatalog(ctx context.Context, path string, svc *correspondenceuc.Service) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				profile, err := correspondenceuc.LoadCatalogProfile(path)
				if err != nil {
					logging.Warn(ctx, "catalog reload failed", slog.Any("err", errs.Loggable(err)))
					continue
				}
				catalog, err := profile.BuildCatalog()
				if err != nil {
					logging.Warn(ctx, "catalog reload failed", slog.Any("err", errs.Loggable(err)))
					continue
				}

				svc.ReplaceCatalog(catalog)
				logging.Info(ctx, "catalog reloaded", slog.String("path", path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn(ctx, "catalog watcher error", slog.Any("err", errs.Loggable(err)))
			}
		}
	}()

	return func() { _ = watcher.Close() }, nil
}
