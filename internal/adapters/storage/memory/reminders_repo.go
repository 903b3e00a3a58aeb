package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-reminders/internal/domain/reminders"
)

// reminderRepo emula el índice único parcial de pending con DuplicateKey.
type reminderRepo struct {
	mu      sync.RWMutex
	byID    map[string]reminders.Reminder
	pending map[string]string // DuplicateKey -> id
}

func NewReminderRepo() reminders.Repository {
	return &reminderRepo{
		byID:    make(map[string]reminders.Reminder),
		pending: make(map[string]string),
	}
}

func (r *reminderRepo) Create(ctx context.Context, it reminders.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(it.ID) == "" {
		return errors.New("reminder id required")
	}
	if _, exists := r.byID[it.ID]; exists {
		return errors.New("reminder already exists")
	}
	if it.Status == reminders.StatusPending {
		key := it.DuplicateKey()
		if _, taken := r.pending[key]; taken {
			return reminders.ErrDuplicate
		}
		r.pending[key] = it.ID
	}
	r.byID[it.ID] = it
	return nil
}

func (r *reminderRepo) Find(ctx context.Context, f reminders.Filter) ([]reminders.Reminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reminders.Reminder, 0)
	for _, it := range r.byID {
		if f.Matches(it) {
			out = append(out, it)
		}
	}

	// Orden estable por fecha y creación (mismo orden que el store SQL)
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].ReminderDate.Compare(out[j].ReminderDate); c != 0 {
			return c < 0
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *reminderRepo) FindOne(ctx context.Context, f reminders.Filter) (reminders.Reminder, error) {
	items, err := r.Find(ctx, f)
	if err != nil {
		return reminders.Reminder{}, err
	}
	if len(items) == 0 {
		return reminders.Reminder{}, reminders.ErrNotFound
	}
	return items[0], nil
}

func (r *reminderRepo) UpdateWhere(ctx context.Context, f reminders.Filter, c reminders.Changes) (int64, error) {
	if c.Empty() {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// Primero se validan todas las claves; un ErrDuplicate no deja cambios a medias.
	type change struct {
		id        string
		cur, next reminders.Reminder
	}
	var batch []change
	matched := make(map[string]bool)
	for id, cur := range r.byID {
		if f.Matches(cur) {
			batch = append(batch, change{id: id, cur: cur, next: c.Apply(cur)})
			matched[id] = true
		}
	}

	claimed := make(map[string]bool)
	for _, ch := range batch {
		if ch.next.Status != reminders.StatusPending {
			continue
		}
		key := ch.next.DuplicateKey()
		if claimed[key] {
			return 0, reminders.ErrDuplicate
		}
		if owner, taken := r.pending[key]; taken && !matched[owner] {
			return 0, reminders.ErrDuplicate
		}
		claimed[key] = true
	}

	for _, ch := range batch {
		if ch.cur.Status == reminders.StatusPending && r.pending[ch.cur.DuplicateKey()] == ch.id {
			delete(r.pending, ch.cur.DuplicateKey())
		}
	}
	for _, ch := range batch {
		if ch.next.Status == reminders.StatusPending {
			r.pending[ch.next.DuplicateKey()] = ch.id
		}
		r.byID[ch.id] = ch.next
	}
	return int64(len(batch)), nil
}

func (r *reminderRepo) DeleteWhere(ctx context.Context, f reminders.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, cur := range r.byID {
		if !f.Matches(cur) {
			continue
		}
		if cur.Status == reminders.StatusPending && r.pending[cur.DuplicateKey()] == id {
			delete(r.pending, cur.DuplicateKey())
		}
		delete(r.byID, id)
		n++
	}
	return n, nil
}
