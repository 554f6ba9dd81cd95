// Package app provides application initialization and dependency injection.
//
// App is the core container that wires configuration, the database pool,
// Genkit, the catalog and history stores, and the coaching service. Setup
// builds everything in dependency order; Close releases it in reverse.
package app

import (
	"context"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pchen41/gauntlet-reel-app/internal/catalog"
	"github.com/pchen41/gauntlet-reel-app/internal/coach"
	"github.com/pchen41/gauntlet-reel-app/internal/config"
	"github.com/pchen41/gauntlet-reel-app/internal/history"
	"github.com/pchen41/gauntlet-reel-app/internal/log"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit  *genkit.Genkit
	DBPool  *pgxpool.Pool
	Catalog *catalog.Store
	History *history.Store
	Coach   *coach.Service

	// Lifecycle management
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// Close gracefully shuts down all resources.
// Safe to call on a partially initialized App.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.cancel != nil {
		a.cancel()
	}

	if a.otelShutdown != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := a.otelShutdown(shutdownCtx); err != nil && a.Logger != nil {
			a.Logger.Warn("shutting down tracer provider", "error", err)
		}
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		if a.Logger != nil {
			a.Logger.Info("database pool closed")
		}
	}

	return nil
}
