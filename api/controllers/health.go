package controllers

import (
	"net/http"

	"github.com/pizzaro/pizzaro-backend/api/responses"
	"github.com/pizzaro/pizzaro-backend/pkg/config"
	"github.com/pizzaro/pizzaro-backend/pkg/db"
	pkgerrors "github.com/pizzaro/pizzaro-backend/pkg/errors"
	"github.com/pizzaro/pizzaro-backend/pkg/logger"
	"github.com/pizzaro/pizzaro-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pizzaro-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when both backing stores answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pizzaro-Env", cfg.App.Env)

		checks := map[string]string{"db": "ok", "redis": "ok"}
		failed := false

		if dbP == nil {
			checks["db"] = "unconfigured"
			failed = true
		} else if err := dbP.Ping(r.Context()); err != nil {
			checks["db"] = "unreachable"
			failed = true
		}

		if redisP == nil {
			checks["redis"] = "unconfigured"
			failed = true
		} else if err := redisP.Ping(r.Context()); err != nil {
			checks["redis"] = "unreachable"
			failed = true
		}

		if failed {
			err := pkgerrors.New(pkgerrors.CodeDependency, "service not ready").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
