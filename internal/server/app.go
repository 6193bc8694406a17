// Package server wires the development API server: storage backend,
// services, HTTP router and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/schooladmin/internal/logging"
	"github.com/dmitrijs2005/schooladmin/internal/server/config"
	"github.com/dmitrijs2005/schooladmin/internal/server/httpapi"
	"github.com/dmitrijs2005/schooladmin/internal/server/repositories"
	"github.com/dmitrijs2005/schooladmin/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   repositories.Store
	handler http.Handler
}

// openStore picks PostgreSQL when a DSN is configured and the in-memory
// store otherwise.
var openStore = func(ctx context.Context, dsn string) (repositories.Store, error) {
	if dsn == "" {
		return repositories.NewMemStore()
	}
	return repositories.OpenPostgres(ctx, dsn)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	store, err := openStore(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, store repositories.Store) (*App, error) {
	users := services.NewUserService(store.Usuarios(), logger)
	if c.AdminUser != "" {
		if err := users.EnsureUser(ctx, c.AdminUser, c.AdminPassword); err != nil {
			return nil, err
		}
	}

	h := httpapi.NewRouter(httpapi.Services{
		Alunos:      services.NewResourceService(store.Alunos(), logger),
		Professores: services.NewResourceService(store.Professores(), logger),
		Materias:    services.NewResourceService(store.Materias(), logger),
		Usuarios:    users,
		Auth:        users,
	}, logger)

	return &App{config: c, logger: logger, store: store, handler: h}, nil
}

// Handler returns the root HTTP handler.
func (app *App) Handler() http.Handler { return app.handler }

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// drains in-flight requests and closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()
	defer func() {
		if err := app.store.Close(); err != nil {
			app.logger.Error(context.Background(), "store close failed", "error", err)
		}
	}()

	ln, err := net.Listen("tcp", app.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", app.config.Addr, err)
	}

	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	app.logger.Info(ctx, "Starting app...", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info(context.Background(), "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
