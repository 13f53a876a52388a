// Package server initializes and runs the main application server.
// It wires the PostgreSQL document store, the Redis chat store and the HTTP
// API together, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/crewdesk-app/crewdesk/internal/logging"
	"github.com/crewdesk-app/crewdesk/internal/server/chat"
	"github.com/crewdesk-app/crewdesk/internal/server/config"
	"github.com/crewdesk-app/crewdesk/internal/server/httpapi"
	"github.com/crewdesk-app/crewdesk/internal/server/store"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	dataStore store.DataStore
	chatStore *chat.Store
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON()

	ds, err := store.NewPostgresStore(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	opts, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url error: %w", err)
	}
	cs, err := chat.NewStore(ctx, redis.NewClient(opts))
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}

	return &App{config: c, logger: logger, dataStore: ds, chatStore: cs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.HTTPAddr,
		Handler: httpapi.NewRouter(app.logger, app.dataStore, app.chatStore),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "shutdown error", "err", err)
		}
	}()

	app.logger.Info(ctx, "listening", "addr", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.dataStore.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "err", err)
	}
	if err := app.chatStore.Close(); err != nil {
		app.logger.Error(ctx, "closing redis", "err", err)
	}
}
