package controllers

import (
	"context"
	"net/http"

	"github.com/defactolounge/lounge-backend/api/responses"
	"github.com/defactolounge/lounge-backend/pkg/config"
	pkgerrors "github.com/defactolounge/lounge-backend/pkg/errors"
	"github.com/defactolounge/lounge-backend/pkg/logger"
)

// Pinger is the health check surface of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DFL-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores so the probe fails before traffic
// lands on a pod that cannot serve it.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-DFL-Env", cfg.App.Env)
		checks := []struct {
			name string
			dep  Pinger
		}{
			{"database", dbP},
			{"redis", redisP},
		}
		for _, check := range checks {
			if check.dep == nil {
				continue
			}
			if err := check.dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
