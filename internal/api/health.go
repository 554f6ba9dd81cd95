package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pchen41/gauntlet-reel-app/internal/log"
)

// health is a liveness probe. Returns 200 OK with {"status":"ok"}.
func health(logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}

// readiness is a readiness probe that verifies database connectivity.
// With a nil pool it degrades to a plain liveness response.
func readiness(pool *pgxpool.Pool, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pool == nil {
			WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			logger.Warn("readiness probe failed", "error", err)
			WriteError(w, http.StatusServiceUnavailable, "not_ready", "database unavailable", logger)
			return
		}

		stats := pool.Stat()
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":           "ok",
			"total_conns":      stats.TotalConns(),
			"idle_conns":       stats.IdleConns(),
			"acquired_conns":   stats.AcquiredConns(),
			"max_conns":        stats.MaxConns(),
			"new_conns_count":  stats.NewConnsCount(),
			"acquire_duration": stats.AcquireDuration().String(),
		}, logger)
	}
}
