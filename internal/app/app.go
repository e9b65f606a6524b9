package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/khrees2412/jobsphere/internal/config"
	"github.com/khrees2412/jobsphere/internal/database"
	"github.com/khrees2412/jobsphere/internal/database/memory"
	"github.com/khrees2412/jobsphere/internal/logging"
)

// App is the dependency container shared by the CLI commands and the server
type App struct {
	DB     *sqlx.DB // nil for the memory driver
	Store  database.Store
	Config *config.Config
	Logger *logrus.Logger
}

// NewApp opens the configured store, applies pending migrations and builds
// the logger.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("using in-memory store; data is lost on exit")
		return &App{Store: memory.New(), Config: cfg, Logger: logger}, nil
	}

	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		DB:     db,
		Store:  database.NewSQLStore(db),
		Config: cfg,
		Logger: logger,
	}, nil
}

// Close closes all resources
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
