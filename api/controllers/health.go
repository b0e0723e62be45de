package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/rashidkhoury/fleetquote-backend/api/responses"
	"github.com/rashidkhoury/fleetquote-backend/pkg/config"
	"github.com/rashidkhoury/fleetquote-backend/pkg/db"
	pkgerrors "github.com/rashidkhoury/fleetquote-backend/pkg/errors"
	"github.com/rashidkhoury/fleetquote-backend/pkg/logger"
	"github.com/rashidkhoury/fleetquote-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FleetQuote-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both the database and redis answer a
// ping within the readiness timeout.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FleetQuote-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}

		if dbP == nil {
			checks["database"] = "not configured"
		} else if err := dbP.Ping(ctx); err != nil {
			checks["database"] = err.Error()
		}

		if redisP == nil {
			checks["redis"] = "not configured"
		} else if err := redisP.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
		}

		if len(checks) > 0 {
			details := map[string]any{}
			for name, reason := range checks {
				details[name] = reason
			}
			err := pkgerrors.New(pkgerrors.CodeDependency, "service not ready").WithDetails(details)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
