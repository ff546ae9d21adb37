package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocab-drill/internal/api"
	"github.com/phrazzld/vocab-drill/internal/config"
	"github.com/phrazzld/vocab-drill/internal/events"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/platform/postgres"
	"github.com/phrazzld/vocab-drill/internal/platform/sqlite"
	"github.com/phrazzld/vocab-drill/internal/platform/sqlstore"
	"github.com/phrazzld/vocab-drill/internal/redact"
	"github.com/phrazzld/vocab-drill/internal/seed"
	"github.com/phrazzld/vocab-drill/internal/service/drill"
	"github.com/phrazzld/vocab-drill/internal/store"
	"github.com/phrazzld/vocab-drill/internal/task"
)

// notificationBuffer is the capacity of the engine notification channel.
const notificationBuffer = 64

// application holds the shared dependencies of every command and releases
// them on cleanup.
type application struct {
	config *config.Config
	logger *slog.Logger

	db      *sql.DB
	dialect sqlstore.Dialect
	words   store.WordStore
	fields  store.SessionFieldStore

	emitter       *events.InMemoryEventEmitter
	notifications *events.ChannelHandler
	engine        *drill.Engine
	dispatcher    *task.Dispatcher
}

// bootstrap loads configuration, sets up logging and opens the store.
func bootstrap(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("database_url", redact.URL(cfg.Database.URL)),
		slog.Any("tiers", cfg.Engine.Tiers))

	db, dialect, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	return &application{
		config:  cfg,
		logger:  log,
		db:      db,
		dialect: dialect,
		words:   sqlstore.NewWordStore(db, dialect, log),
		fields:  sqlstore.NewSessionFieldStore(db, dialect, log),
	}, nil
}

// openDatabase opens the configured backend and returns its SQL dialect.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, sqlstore.Dialect, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		return db, postgres.Dialect{}, nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return db, sqlite.Dialect{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// migrate applies pending schema migrations.
func (app *application) migrate(ctx context.Context) error {
	if err := sqlstore.Migrate(ctx, app.db, app.dialect); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// seeder returns a Seeder over the application's stores.
func (app *application) seeder() *seed.Seeder {
	return seed.NewSeeder(app.db, app.words, app.fields, app.logger)
}

// startEngine builds the drill engine, its notifications and the dispatcher.
func (app *application) startEngine(ctx context.Context) {
	app.emitter = events.NewInMemoryEventEmitter(app.logger)
	app.notifications = events.NewChannelHandler(notificationBuffer, app.logger)
	app.emitter.RegisterHandler(app.notifications)
	go app.logNotifications(ctx)

	app.engine = drill.NewEngine(app.db, app.words, app.fields, app.logger,
		drill.WithEmitter(app.emitter))

	app.dispatcher = task.NewDispatcher(app.config.Engine, app.logger)
	app.dispatcher.Start()
}

// logNotifications drains engine notifications until the channel closes.
func (app *application) logNotifications(ctx context.Context) {
	log := app.logger.With(slog.String("component", "notifications"))
	for event := range app.notifications.Events() {
		switch event.Type {
		case events.TypeErrorQueueCleared:
			log.InfoContext(ctx, "all mistakes corrected")
		case events.TypeErrorCountChanged:
			var p events.ErrorCountPayload
			if err := event.UnmarshalPayload(&p); err == nil {
				log.DebugContext(ctx, "error count changed", slog.Int("count", p.Count))
			}
		case events.TypeProgressChanged:
			var p events.ProgressPayload
			if err := event.UnmarshalPayload(&p); err == nil {
				log.DebugContext(ctx, "progress changed",
					slog.String("tier", p.Tier),
					slog.Int("completed", p.Completed),
					slog.Int("total", p.Total))
			}
		}
	}
}

// handler builds the HTTP drill handler. startEngine must have run.
func (app *application) handler() *api.DrillHandler {
	return api.NewDrillHandler(app.engine, app.dispatcher, app.config.Engine, app.logger)
}

// cleanup releases everything the application opened.
func (app *application) cleanup() {
	if app.dispatcher != nil {
		app.dispatcher.Stop()
	}
	if app.notifications != nil {
		app.notifications.Close()
		if dropped := app.notifications.Dropped(); dropped > 0 {
			app.logger.Warn("dropped engine notifications", slog.Int64("count", dropped))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
