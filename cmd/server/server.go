package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/vocab-drill/internal/api"
)

const defaultShutdownTimeout = 10 * time.Second

// serve prepares the store and runs the HTTP server until ctx ends or a
// termination signal arrives.
func (app *application) serve(ctx context.Context) error {
	if err := app.migrate(ctx); err != nil {
		return err
	}

	if _, err := app.seeder().FirstRun(ctx, app.config.Engine.SeedPath); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.startEngine(ctx)
	handler := app.handler()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: api.NewRouter(handler, app.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	timeout := app.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := handler.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("failed to suspend session on shutdown", slog.String("error", err.Error()))
	}

	app.logger.Info("server shutdown completed")
	return nil
}
