package reminders

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pet-reminders/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// PetDirectory es lo que el feed necesita de pets (sin importar el paquete).
type PetDirectory interface {
	OwnerDirectory
	OwnerOf(ctx context.Context, petID string) (string, error)
}

// RegisterRoutes expone el feed iCalendar de una mascota (solo owner).
func RegisterRoutes(r chi.Router, svc *Service, pets PetDirectory, now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	r.Get("/pets/{petID}/reminders.ics", feedHandler(svc, pets, now))
}

// feedHandler godoc
// @Summary Feed iCalendar de reminders pendientes
// @Tags reminders
// @Produce text/calendar
// @Param petID path string true "Pet ID"
// @Success 200 {string} string
// @Failure 401 {string} string
// @Failure 403 {string} string
// @Failure 404 {string} string
// @Router /pets/{petID}/reminders.ics [get]
func feedHandler(svc *Service, pets PetDirectory, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		owner, err := pets.OwnerOf(r.Context(), petID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if owner != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		petName := petID
		if c, err := pets.Contact(r.Context(), petID); err == nil && strings.TrimSpace(c.PetName) != "" {
			petName = c.PetName
		}

		items, err := svc.ListPending(r.Context(), petID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `inline; filename="reminders.ics"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(BuildFeed(petName, items, svc.Calendar(), now())))
	}
}
