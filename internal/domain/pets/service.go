package pets

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name       string
	Species    Species
	Breed      string
	OwnerName  string
	OwnerEmail string
}

// Create registra una mascota. Solo lo usan el store en memoria (seed de dev) y los tests;
// en producción las mascotas vienen de la app principal.
func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}
	switch in.Species {
	case SpeciesDog, SpeciesCat, SpeciesOther:
	case "":
		in.Species = SpeciesOther
	default:
		return Pet{}, ErrInvalidInput
	}
	email := strings.TrimSpace(in.OwnerEmail)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return Pet{}, ErrInvalidInput
		}
	}

	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		OwnerName:   strings.TrimSpace(in.OwnerName),
		OwnerEmail:  email,
		Name:        strings.TrimSpace(in.Name),
		Species:     in.Species,
		Breed:       strings.TrimSpace(in.Breed),
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	if strings.TrimSpace(id) == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}
