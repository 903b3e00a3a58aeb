package pets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-reminders/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes expone las mascotas del usuario (solo lectura).
// Rutas planas para que otros módulos cuelguen de /pets/{petID}/...
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/pets", listPetsHandler(svc))
	r.Get("/pets/{petID}", getPetHandler(svc))
}

type petResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"name"`
	Species     Species   `json:"species"`
	Breed       string    `json:"breed"`
	CreatedAt   time.Time `json:"created_at"`
}

// listPetsHandler godoc
// @Summary Mis mascotas
// @Tags pets
// @Produce json
// @Success 200 {array} petResponse
// @Failure 401 {string} string
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getPetHandler godoc
// @Summary Perfil de mascota (owner)
// @Tags pets
// @Produce json
// @Param petID path string true "Pet ID"
// @Success 200 {object} petResponse
// @Failure 403 {string} string
// @Failure 404 {string} string
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "pet not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if p.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:          p.ID,
		OwnerUserID: p.OwnerUserID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		CreatedAt:   p.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
