package pets

import (
	"context"

	"pet-reminders/internal/domain/reminders"
)

// OwnerOf expone el ownerUserID de una mascota.
// Se usa para evitar ciclos de imports (reminders no conoce pets).
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}

// Contact implementa reminders.OwnerDirectory.
func (s *Service) Contact(ctx context.Context, petID string) (reminders.Contact, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return reminders.Contact{}, err
	}
	return reminders.Contact{
		PetName:   p.Name,
		OwnerName: p.OwnerName,
		Email:     p.OwnerEmail,
	}, nil
}
