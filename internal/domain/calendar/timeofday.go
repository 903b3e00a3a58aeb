package calendar

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// HH:MM o HH:MM:SS, 24h.
var timeRe = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d(?::[0-5]\d)?$`)

// TimeOfDay es una hora del día sin fecha. El valor cero es inválido
// (00:00 válido se representa con ok=true).
type TimeOfDay struct {
	sec int
	ok  bool
}

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return TimeOfDay{}
	}
	return TimeOfDay{sec: hour*3600 + minute*60 + second, ok: true}
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if !timeRe.MatchString(s) {
		return TimeOfDay{}, fmt.Errorf("calendar: time %q is not HH:MM[:SS]", s)
	}
	parts := strings.Split(s, ":")
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	sec := 0
	if len(parts) == 3 {
		sec, _ = strconv.Atoi(parts[2])
	}
	return NewTimeOfDay(h, m, sec), nil
}

func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Valid() bool { return t.ok }

func (t TimeOfDay) Hour() int   { return t.sec / 3600 }
func (t TimeOfDay) Minute() int { return (t.sec % 3600) / 60 }
func (t TimeOfDay) Second() int { return t.sec % 60 }

// Duration desde medianoche.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.sec) * time.Second
}

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.sec < o.sec }
func (t TimeOfDay) Equal(o TimeOfDay) bool  { return t.ok == o.ok && t.sec == o.sec }

// String en formato HH:MM:SS ("" si inválida).
func (t TimeOfDay) String() string {
	if !t.ok {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// Clock en formato HH:MM, para mostrar.
func (t TimeOfDay) Clock() string {
	if !t.ok {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) Value() (driver.Value, error) {
	if !t.ok {
		return nil, nil
	}
	return t.String(), nil
}

// Scan, igual que Date, deja un valor inválido en vez de fallar.
func (t *TimeOfDay) Scan(src any) error {
	*t = TimeOfDay{}
	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		*t = NewTimeOfDay(v.Hour(), v.Minute(), v.Second())
	case string:
		*t, _ = ParseTimeOfDay(strings.TrimSpace(v))
	case []byte:
		*t, _ = ParseTimeOfDay(strings.TrimSpace(string(v)))
	default:
		return fmt.Errorf("calendar: cannot scan %T into TimeOfDay", src)
	}
	return nil
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = TimeOfDay{}
		return nil
	}
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
