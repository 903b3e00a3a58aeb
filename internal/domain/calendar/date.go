package calendar

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Date es una fecha civil (sin hora ni zona). El valor cero es inválido.
type Date struct {
	t time.Time // siempre medianoche UTC
}

// NewDate normaliza como time.Date (p.ej. 2024-02-30 -> 2024-03-01).
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate exige YYYY-MM-DD estricto y que el round-trip reproduzca el input.
func ParseDate(s string) (Date, error) {
	if !dateRe.MatchString(s) {
		return Date{}, fmt.Errorf("calendar: date %q is not YYYY-MM-DD", s)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("calendar: date %q: %w", s, err)
	}
	if t.Format(dateLayout) != s {
		return Date{}, fmt.Errorf("calendar: date %q does not exist", s)
	}
	return Date{t: t}, nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Valid() bool { return !d.t.IsZero() }

func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// String devuelve "" para fechas inválidas.
func (d Date) String() string {
	if !d.Valid() {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d Date) AddDays(n int) Date {
	if !d.Valid() {
		return d
	}
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonths suma meses calendario y ajusta al último día válido del mes destino
// (31/01 + 1 -> 28/02 o 29/02, nunca 03/03).
func (d Date) AddMonths(n int) Date {
	if !d.Valid() {
		return d
	}
	y, m, day := d.t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

// AddYears con el mismo ajuste (29/02 -> 28/02 en años no bisiestos).
func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// Compare devuelve -1, 0 o +1.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// In devuelve la medianoche de la fecha en loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// Value guarda la fecha como texto YYYY-MM-DD (DATE en postgres, TEXT en sqlite).
func (d Date) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan nunca falla por contenido: un valor malformado queda como fecha inválida
// para que el registro se descarte individualmente y no rompa toda la consulta.
func (d *Date) Scan(src any) error {
	*d = Date{}
	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		y, m, day := v.Date()
		*d = NewDate(y, m, day)
	case string:
		*d = parseLenient(v)
	case []byte:
		*d = parseLenient(string(v))
	default:
		return fmt.Errorf("calendar: cannot scan %T into Date", src)
	}
	return nil
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// parseLenient acepta lo que devuelven los drivers ("2024-01-31" o "2024-01-31T00:00:00Z").
func parseLenient(s string) Date {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) && s[len(dateLayout)] == 'T' {
		s = s[:len(dateLayout)]
	}
	d, err := ParseDate(s)
	if err != nil {
		return Date{}
	}
	return d
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
