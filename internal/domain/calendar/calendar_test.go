package calendar

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func TestNextOccurrence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		freq Frequency
		want string
		ok   bool
	}{
		{"daily", "2024-03-10", FrequencyDaily, "2024-03-11", true},
		{"daily year end", "2024-12-31", FrequencyDaily, "2025-01-01", true},
		{"weekly", "2024-02-26", FrequencyWeekly, "2024-03-04", true},
		{"monthly plain", "2024-03-15", FrequencyMonthly, "2024-04-15", true},
		{"monthly clamp leap", "2024-01-31", FrequencyMonthly, "2024-02-29", true},
		{"monthly clamp non-leap", "2025-01-31", FrequencyMonthly, "2025-02-28", true},
		{"monthly clamp 30", "2024-03-31", FrequencyMonthly, "2024-04-30", true},
		{"monthly december", "2024-12-31", FrequencyMonthly, "2025-01-31", true},
		{"yearly", "2024-06-01", FrequencyYearly, "2025-06-01", true},
		{"yearly leap day", "2024-02-29", FrequencyYearly, "2025-02-28", true},
		{"none", "2024-06-01", FrequencyNone, "", false},
		{"unknown", "2024-06-01", Frequency("hourly"), "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NextOccurrence(MustParseDate(tc.in), tc.freq)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if got.String() != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got.String())
			}
		})
	}
}

func TestNextOccurrence_InvalidDate(t *testing.T) {
	if _, ok := NextOccurrence(Date{}, FrequencyDaily); ok {
		t.Fatalf("expected ok=false for zero date")
	}
}

func TestIsValidDateString(t *testing.T) {
	valid := []string{"2024-02-29", "2023-12-31", "2000-01-01"}
	invalid := []string{"", "2024-02-30", "2023-02-29", "2024-13-01", "2024-1-01", "24-01-01", "2024-01-01T00:00:00Z", " 2024-01-01"}

	for _, s := range valid {
		if !IsValidDateString(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if IsValidDateString(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestIsValidTimeString(t *testing.T) {
	valid := []string{"00:00", "18:00", "23:59", "07:05:09"}
	invalid := []string{"", "24:00", "7:00", "12:60", "12:00:60", "12:00:00:00", "noon"}

	for _, s := range valid {
		if !IsValidTimeString(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if IsValidTimeString(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if s, ok := FormatDate(NewDate(2024, time.February, 9)); !ok || s != "2024-02-09" {
		t.Fatalf("unexpected format: %q %v", s, ok)
	}
	if _, ok := FormatDate(Date{}); ok {
		t.Fatalf("expected ok=false for zero date")
	}
}

func TestDate_ScanTolerant(t *testing.T) {
	var d Date
	if err := d.Scan("2024-02-30"); err != nil {
		t.Fatalf("scan should not fail on content: %v", err)
	}
	if d.Valid() {
		t.Fatalf("expected invalid date after malformed scan")
	}

	if err := d.Scan(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan time: %v", err)
	}
	if d.String() != "2024-05-06" {
		t.Fatalf("expected 2024-05-06, got %q", d.String())
	}

	if err := d.Scan([]byte("2024-05-07T00:00:00Z")); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if d.String() != "2024-05-07" {
		t.Fatalf("expected 2024-05-07, got %q", d.String())
	}
}

func TestTimeOfDay_ScanTolerant(t *testing.T) {
	var tod TimeOfDay
	if err := tod.Scan("25:99"); err != nil {
		t.Fatalf("scan should not fail on content: %v", err)
	}
	if tod.Valid() {
		t.Fatalf("expected invalid time after malformed scan")
	}
	if err := tod.Scan("18:00"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if tod.String() != "18:00:00" || tod.Clock() != "18:00" {
		t.Fatalf("unexpected time: %s / %s", tod.String(), tod.Clock())
	}
	midnight := MustParseTimeOfDay("00:00")
	if !midnight.Valid() {
		t.Fatalf("00:00 must be valid")
	}
}

func TestCalendar_ReferenceZone(t *testing.T) {
	cal, err := Load("Asia/Ho_Chi_Minh")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// 2024-03-10 18:30 UTC ya es 2024-03-11 01:30 en UTC+7.
	now := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)
	if got := cal.DateOf(now).String(); got != "2024-03-11" {
		t.Fatalf("expected 2024-03-11, got %s", got)
	}
	if !cal.IsToday(MustParseDate("2024-03-11"), now) {
		t.Fatalf("expected IsToday")
	}
	if !cal.IsOverdue(MustParseDate("2024-03-10"), now) {
		t.Fatalf("expected 2024-03-10 to be overdue")
	}
	if cal.IsOverdue(MustParseDate("2024-03-11"), now) {
		t.Fatalf("today is not overdue")
	}

	at := cal.At(MustParseDate("2024-03-11"), MustParseTimeOfDay("18:00"))
	if want := time.Date(2024, 3, 11, 11, 0, 0, 0, time.UTC); !at.Equal(want) {
		t.Fatalf("expected %s, got %s", want, at.UTC())
	}
	if got := cal.TimeOfDayOf(now).Clock(); got != "01:30" {
		t.Fatalf("expected 01:30, got %s", got)
	}
}

func TestLoad_Unknown(t *testing.T) {
	if _, err := Load("Mars/Olympus"); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}
