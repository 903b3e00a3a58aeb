package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Runner es lo que la superficie de ops necesita del Driver.
type Runner interface {
	RunNow(ctx context.Context, t Trigger) (RunReport, error)
	Runs() []RunReport
}

// RegisterRoutes expone el estado y la ejecución manual de los triggers.
func RegisterRoutes(r chi.Router, run Runner) {
	r.Get("/scheduler/runs", listRunsHandler(run))
	r.Post("/scheduler/{trigger}/run", runNowHandler(run))
}

// listRunsHandler godoc
// @Summary Último resultado de cada trigger
// @Tags scheduler
// @Produce json
// @Success 200 {array} RunReport
// @Router /scheduler/runs [get]
func listRunsHandler(run Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, run.Runs())
	}
}

// runNowHandler godoc
// @Summary Ejecuta un trigger ahora (daily | periodic)
// @Tags scheduler
// @Produce json
// @Param trigger path string true "daily | periodic"
// @Success 200 {object} RunReport
// @Failure 404 {string} string
// @Failure 409 {string} string
// @Failure 500 {object} RunReport
// @Router /scheduler/{trigger}/run [post]
func runNowHandler(run Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := ParseTrigger(chi.URLParam(r, "trigger"))
		if err != nil {
			http.Error(w, "unknown trigger", http.StatusNotFound)
			return
		}

		// el pase no debe morir si el cliente corta la conexión
		rep, err := run.RunNow(context.WithoutCancel(r.Context()), t)
		switch {
		case errors.Is(err, ErrBusy):
			http.Error(w, "trigger already running", http.StatusConflict)
		case err != nil:
			writeJSON(w, http.StatusInternalServerError, rep)
		default:
			writeJSON(w, http.StatusOK, rep)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
