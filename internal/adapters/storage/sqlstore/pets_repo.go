package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-reminders/internal/domain/pets"
)

// PetsRepo lee mascotas junto al contacto del dueño (pets JOIN users).
type PetsRepo struct {
	s *Store
}

const petColumns = `p.id, p.owner_user_id, COALESCE(u.name, ''), COALESCE(u.email, ''),
	p.name, p.species, p.breed, p.created_at`

// Create registra dueño (upsert) y mascota en una transacción.
func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	uq := &query{d: r.s.dialect}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, name, email) VALUES (`+uq.arg(p.OwnerUserID)+`, `+uq.arg(p.OwnerName)+`, `+uq.arg(p.OwnerEmail)+`)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email
	`, uq.args...); err != nil {
		return err
	}

	pq := &query{d: r.s.dialect}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pets (id, owner_user_id, name, species, breed, created_at)
		VALUES (`+strings.Join([]string{
		pq.arg(p.ID),
		pq.arg(p.OwnerUserID),
		pq.arg(p.Name),
		pq.arg(string(p.Species)),
		pq.arg(p.Breed),
		pq.arg(formatTimestamp(p.CreatedAt)),
	}, ", ")+`)`, pq.args...); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	q := &query{d: r.s.dialect}
	row := r.s.db.QueryRowContext(ctx, `
		SELECT `+petColumns+`
		FROM pets p
		LEFT JOIN users u ON u.id = p.owner_user_id
		WHERE p.id = `+q.arg(id), q.args...)

	p, err := scanPet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	q := &query{d: r.s.dialect}
	rows, err := r.s.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets p
		LEFT JOIN users u ON u.id = p.owner_user_id
		WHERE p.owner_user_id = `+q.arg(ownerUserID)+`
		ORDER BY p.created_at ASC
	`, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var (
		p         pets.Pet
		species   string
		createdAt timestamp
	)
	if err := row.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.OwnerName,
		&p.OwnerEmail,
		&p.Name,
		&species,
		&p.Breed,
		&createdAt,
	); err != nil {
		return pets.Pet{}, err
	}
	p.Species = pets.Species(species)
	p.CreatedAt = createdAt.t
	return p, nil
}
