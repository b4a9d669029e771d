package controllers

import (
	"net/http"

	"github.com/dvthanh/garahub-backend/api/responses"
	"github.com/dvthanh/garahub-backend/pkg/config"
	"github.com/dvthanh/garahub-backend/pkg/db"
	pkgerrors "github.com/dvthanh/garahub-backend/pkg/errors"
	"github.com/dvthanh/garahub-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GaraHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every registered dependency answers a
// ping. Nil pingers (e.g. redis disabled) are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers map[string]db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GaraHub-Env", cfg.App.Env)
		for name, pinger := range pingers {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
