package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Frequency define cada cuánto se repite una serie.
// @Enum none, daily, weekly, monthly, yearly
type Frequency string

const (
	FrequencyNone    Frequency = "none"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyNone, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

func (f Frequency) Repeats() bool {
	return f.Valid() && f != FrequencyNone
}

// NextOccurrence devuelve la siguiente fecha de la serie.
// ok=false para none, frecuencias desconocidas o fechas inválidas.
func NextOccurrence(d Date, f Frequency) (Date, bool) {
	if !d.Valid() {
		return Date{}, false
	}
	switch f {
	case FrequencyDaily:
		return d.AddDays(1), true
	case FrequencyWeekly:
		return d.AddDays(7), true
	case FrequencyMonthly:
		return d.AddMonths(1), true
	case FrequencyYearly:
		return d.AddYears(1), true
	default:
		return Date{}, false
	}
}

// FormatDate devuelve YYYY-MM-DD; ok=false si la fecha es inválida.
func FormatDate(d Date) (string, bool) {
	if !d.Valid() {
		return "", false
	}
	return d.String(), true
}

func IsValidDateString(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

func IsValidTimeString(s string) bool {
	return timeRe.MatchString(s)
}

// Calendar fija la zona de referencia para "hoy" y para combinar fecha + hora.
// Todos los cálculos de "hoy" del scheduler pasan por aquí.
type Calendar struct {
	loc *time.Location
}

func New(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// Load crea un Calendar a partir de un nombre IANA ("Asia/Ho_Chi_Minh", "UTC").
func Load(name string) (Calendar, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return New(time.UTC), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Calendar{}, fmt.Errorf("calendar: load timezone %q: %w", name, err)
	}
	return New(loc), nil
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DateOf es la fecha civil de t en la zona de referencia.
func (c Calendar) DateOf(t time.Time) Date {
	y, m, d := t.In(c.Location()).Date()
	return NewDate(y, m, d)
}

// TimeOfDayOf es la hora civil de t en la zona de referencia.
func (c Calendar) TimeOfDayOf(t time.Time) TimeOfDay {
	lt := t.In(c.Location())
	return NewTimeOfDay(lt.Hour(), lt.Minute(), lt.Second())
}

// At combina fecha y hora en la zona de referencia.
func (c Calendar) At(d Date, tod TimeOfDay) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), tod.Hour(), tod.Minute(), tod.Second(), 0, c.Location())
}

func (c Calendar) IsToday(d Date, now time.Time) bool {
	return d.Valid() && d.Equal(c.DateOf(now))
}

// IsOverdue: la fecha ya pasó (estrictamente antes de hoy).
func (c Calendar) IsOverdue(d Date, now time.Time) bool {
	return d.Valid() && d.Before(c.DateOf(now))
}
