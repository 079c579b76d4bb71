// Package health serves the worker's operational endpoints: a liveness
// probe that pings the backing stores and the Prometheus metrics scrape.
package health

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/milnali/shop-backend/pkg/config"
	"github.com/milnali/shop-backend/pkg/db"
	"github.com/milnali/shop-backend/pkg/logger"
	"github.com/milnali/shop-backend/pkg/redis"
)

// NewRouter builds the operational HTTP handler.
func NewRouter(cfg *config.Config, logg *logger.Logger, dbPinger db.Pinger, redisPinger redis.Pinger) http.Handler {
	router := chi.NewRouter()
	router.Get("/healthz", healthz(cfg, logg, dbPinger, redisPinger))
	router.Handle("/metrics", promhttp.Handler())
	return router
}

func healthz(cfg *config.Config, logg *logger.Logger, dbPinger db.Pinger, redisPinger redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := logg.WithFields(r.Context(), map[string]any{
			"env":  cfg.App.Env,
			"path": r.URL.Path,
		})

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if dbPinger != nil {
			if err := dbPinger.Ping(ctx); err != nil {
				logg.Error(ctx, "database ping failed", err)
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["database"] = "unreachable"
			}
		}
		if redisPinger != nil {
			if err := redisPinger.Ping(ctx); err != nil {
				logg.Error(ctx, "redis ping failed", err)
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["redis"] = "unreachable"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logg.Error(ctx, "failed to write health response", err)
		}
	}
}
