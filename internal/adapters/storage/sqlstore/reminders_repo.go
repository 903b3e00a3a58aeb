package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-reminders/internal/domain/calendar"
	"pet-reminders/internal/domain/reminders"
)

type RemindersRepo struct {
	s *Store
}

func (r *RemindersRepo) columns() string {
	return strings.Join([]string{
		"id", "pet_id", "type", "vaccination_type",
		r.s.dialect.TimeColumn("feeding_time"),
		"reminder_date", "frequency", "end_date",
		"status", "is_read", "created_at",
	}, ", ")
}

func (r *RemindersRepo) Create(ctx context.Context, it reminders.Reminder) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	q := &query{d: r.s.dialect}
	stmt := `INSERT INTO reminders (
			id, pet_id, type, vaccination_type, feeding_time,
			reminder_date, frequency, end_date, status, is_read, created_at
		) VALUES (` + strings.Join([]string{
		q.arg(it.ID),
		q.arg(it.PetID),
		q.arg(string(it.Type)),
		q.arg(nullString(it.VaccinationType)),
		q.arg(it.FeedingTime),
		q.arg(it.ReminderDate),
		q.arg(string(it.Frequency)),
		q.arg(it.EndDate),
		q.arg(string(it.Status)),
		q.arg(it.IsRead),
		q.arg(formatTimestamp(it.CreatedAt)),
	}, ", ") + `)`

	if _, err := r.s.db.ExecContext(ctx, stmt, q.args...); err != nil {
		if r.s.dialect.IsUniqueViolation(err) {
			return reminders.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *RemindersRepo) Find(ctx context.Context, f reminders.Filter) ([]reminders.Reminder, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	q := &query{d: r.s.dialect}
	applyFilter(q, r.s.dialect, f)

	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+r.columns()+` FROM reminders`+q.whereSQL()+` ORDER BY reminder_date ASC, created_at ASC, id ASC`,
		q.args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		it, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *RemindersRepo) FindOne(ctx context.Context, f reminders.Filter) (reminders.Reminder, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	q := &query{d: r.s.dialect}
	applyFilter(q, r.s.dialect, f)

	row := r.s.db.QueryRowContext(ctx,
		`SELECT `+r.columns()+` FROM reminders`+q.whereSQL()+` ORDER BY reminder_date ASC, created_at ASC, id ASC LIMIT 1`,
		q.args...,
	)
	it, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reminders.Reminder{}, reminders.ErrNotFound
		}
		return reminders.Reminder{}, err
	}
	return it, nil
}

func (r *RemindersRepo) UpdateWhere(ctx context.Context, f reminders.Filter, c reminders.Changes) (int64, error) {
	if c.Empty() {
		return 0, nil
	}
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	q := &query{d: r.s.dialect}
	sets := make([]string, 0, 2)
	if c.Status != nil {
		sets = append(sets, "status = "+q.arg(string(*c.Status)))
	}
	if c.IsRead != nil {
		sets = append(sets, "is_read = "+q.arg(*c.IsRead))
	}
	applyFilter(q, r.s.dialect, f)

	res, err := r.s.db.ExecContext(ctx,
		`UPDATE reminders SET `+strings.Join(sets, ", ")+q.whereSQL(),
		q.args...,
	)
	if err != nil {
		if r.s.dialect.IsUniqueViolation(err) {
			return 0, reminders.ErrDuplicate
		}
		return 0, err
	}
	return res.RowsAffected()
}

func (r *RemindersRepo) DeleteWhere(ctx context.Context, f reminders.Filter) (int64, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	q := &query{d: r.s.dialect}
	applyFilter(q, r.s.dialect, f)

	res, err := r.s.db.ExecContext(ctx, `DELETE FROM reminders`+q.whereSQL(), q.args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// applyFilter traduce Filter a SQL; debe coincidir con Filter.Matches.
// feeding_time se compara en forma canónica HH:MM:SS ("18:00" == "18:00:00").
func applyFilter(q *query, d Dialect, f reminders.Filter) {
	if id := strings.TrimSpace(f.ID); id != "" {
		q.where("id = " + q.arg(id))
	}
	if pid := strings.TrimSpace(f.PetID); pid != "" {
		q.where("pet_id = " + q.arg(pid))
	}
	if f.Type != "" {
		q.where("type = " + q.arg(string(f.Type)))
	}
	if f.ExcludeType != "" {
		q.where("type <> " + q.arg(string(f.ExcludeType)))
	}
	if f.Frequency != "" {
		q.where("frequency = " + q.arg(string(f.Frequency)))
	}
	if f.ExcludeFrequency != "" {
		q.where("frequency <> " + q.arg(string(f.ExcludeFrequency)))
	}
	if f.Status != "" {
		q.where("status = " + q.arg(string(f.Status)))
	}
	if f.IsRead != nil {
		q.where("is_read = " + q.arg(*f.IsRead))
	}
	if f.ReminderDate.Valid() {
		q.where("reminder_date = " + q.arg(f.ReminderDate))
	}
	if f.DueOnOrBefore.Valid() {
		q.where("reminder_date <= " + q.arg(f.DueOnOrBefore))
	}
	if f.DueBefore.Valid() {
		q.where("reminder_date < " + q.arg(f.DueBefore))
	}
	if f.WithinEndDate {
		q.where("(end_date IS NULL OR reminder_date <= end_date)")
	}
	if f.ActiveOn.Valid() {
		q.where("(end_date IS NULL OR end_date >= " + q.arg(f.ActiveOn) + ")")
	}
	if f.FeedingTime.Valid() {
		q.where(d.TimeColumn("feeding_time") + " = " + q.arg(f.FeedingTime.String()))
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (reminders.Reminder, error) {
	var (
		it        reminders.Reminder
		typ       string
		vacc      sql.NullString
		freq      string
		status    string
		createdAt timestamp
	)
	if err := row.Scan(
		&it.ID,
		&it.PetID,
		&typ,
		&vacc,
		&it.FeedingTime,
		&it.ReminderDate,
		&freq,
		&it.EndDate,
		&status,
		&it.IsRead,
		&createdAt,
	); err != nil {
		return reminders.Reminder{}, err
	}
	it.Type = reminders.Type(typ)
	it.VaccinationType = vacc.String
	it.Frequency = calendar.Frequency(freq)
	it.Status = reminders.Status(status)
	it.CreatedAt = createdAt.t
	return it, nil
}
