package router

import (
	"net/http"
	"time"

	"pet-reminders/internal/domain/pets"
	"pet-reminders/internal/domain/reminders"
	"pet-reminders/internal/middleware"
	"pet-reminders/internal/platform/logger"
	"pet-reminders/internal/ports/auth"
	"pet-reminders/internal/scheduler"

	_ "pet-reminders/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Logger       logger.Logger

	Pets      *pets.Service
	Reminders *reminders.Service
	Scheduler scheduler.Runner // nil = sin rutas de ops

	// Reloj del feed ICS (DTSTAMP). nil = time.Now.
	Now func() time.Time
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier, opts.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Scheduler != nil {
		scheduler.RegisterRoutes(r, opts.Scheduler)
	}
	if opts.Pets != nil {
		pets.RegisterRoutes(r, opts.Pets)
		if opts.Reminders != nil {
			reminders.RegisterRoutes(r, opts.Reminders, opts.Pets, opts.Now)
		}
	}

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
