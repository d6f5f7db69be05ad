package controllers

import (
	"context"
	"net/http"

	"github.com/IhuzaApp/groceryrw-backend/api/responses"
	"github.com/IhuzaApp/groceryrw-backend/pkg/config"
	"github.com/IhuzaApp/groceryrw-backend/pkg/logger"
)

// Pinger is the health-check surface shared by the db, redis and pubsub
// clients.
type Pinger interface {
	Ping(context.Context) error
}

// HealthDeps names the dependencies the readiness probe covers. Nil entries
// are skipped so partial wiring (no pubsub in local dev) stays healthy.
type HealthDeps struct {
	DB     Pinger
	Redis  Pinger
	PubSub Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GroceryRW-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, deps HealthDeps, logg *logger.Logger) http.HandlerFunc {
	type check struct {
		name   string
		pinger Pinger
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GroceryRW-Env", cfg.App.Env)

		checks := []check{
			{name: "db", pinger: deps.DB},
			{name: "redis", pinger: deps.Redis},
			{name: "pubsub", pinger: deps.PubSub},
		}

		statuses := map[string]string{}
		healthy := true
		for _, c := range checks {
			if c.pinger == nil {
				continue
			}
			if err := c.pinger.Ping(r.Context()); err != nil {
				statuses[c.name] = "down"
				healthy = false
				if logg != nil {
					logg.Error(r.Context(), "healthcheck."+c.name, err)
				}
				continue
			}
			statuses[c.name] = "up"
		}

		if !healthy {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"checks": statuses,
			})
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": statuses,
		})
	}
}
