package reminders

import (
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"pet-reminders/internal/domain/calendar"
)

const feedingSlot = 30 * time.Minute

// BuildFeed arma un VCALENDAR con los reminders pendientes de una mascota.
// Las series se publican con RRULE solo cuando la regla iCalendar coincide
// con nuestra progresión (clamp de fin de mes); si no, va la ocurrencia suelta.
func BuildFeed(petName string, items []Reminder, cal calendar.Calendar, now time.Time) string {
	c := ics.NewCalendar()
	c.SetMethod(ics.MethodPublish)
	c.SetProductId("-//" + brand + "//Reminders//EN")
	c.SetName(brand + " - " + petName)
	c.SetTimezoneId(cal.Location().String())

	sorted := append([]Reminder(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReminderDate.Before(sorted[j].ReminderDate)
	})

	covered := dailyFeedingSlots(sorted)

	for _, r := range sorted {
		if !r.ReminderDate.Valid() {
			continue
		}
		// la instancia del día ya aparece en la serie diaria
		if r.Type == TypeFeeding && r.Frequency == calendar.FrequencyNone && covered(r) {
			continue
		}
		if r.Type == TypeFeeding && !r.FeedingTime.Valid() {
			continue
		}

		ev := c.AddEvent(r.ID + "@petcare")
		ev.SetDtStampTime(now.UTC())
		if !r.CreatedAt.IsZero() {
			ev.SetCreatedTime(r.CreatedAt.UTC())
		}
		ev.SetSummary(r.Title() + " - " + petName)

		var start time.Time
		if r.Type == TypeFeeding {
			start = cal.At(r.ReminderDate, r.FeedingTime)
			ev.SetStartAt(start.UTC())
			ev.SetEndAt(start.Add(feedingSlot).UTC())
		} else {
			start = r.ReminderDate.In(time.UTC)
			ev.SetAllDayStartAt(start)
			ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
		}

		if rule, ok := recurrenceRule(r, start); ok {
			ev.AddProperty(ics.ComponentPropertyRrule, rule)
		}
	}
	return c.Serialize()
}

// dailyFeedingSlots dice si una instancia de feeding cae dentro de una
// serie diaria pendiente de la misma hora.
func dailyFeedingSlots(items []Reminder) func(Reminder) bool {
	var bases []Reminder
	for _, b := range items {
		if b.Type == TypeFeeding && b.Frequency == calendar.FrequencyDaily &&
			b.Status == StatusPending && b.FeedingTime.Valid() && b.ReminderDate.Valid() {
			bases = append(bases, b)
		}
	}
	return func(r Reminder) bool {
		for _, b := range bases {
			if b.PetID != r.PetID || !b.FeedingTime.Equal(r.FeedingTime) {
				continue
			}
			if r.ReminderDate.Before(b.ReminderDate) {
				continue
			}
			if b.EndDate.Valid() && r.ReminderDate.After(b.EndDate) {
				continue
			}
			return true
		}
		return false
	}
}

func recurrenceRule(r Reminder, start time.Time) (string, bool) {
	opt := rrule.ROption{Dtstart: start}
	switch r.Frequency {
	case calendar.FrequencyDaily:
		opt.Freq = rrule.DAILY
	case calendar.FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
	case calendar.FrequencyMonthly:
		if r.ReminderDate.Day() > 28 {
			return "", false
		}
		opt.Freq = rrule.MONTHLY
	case calendar.FrequencyYearly:
		if r.ReminderDate.Month() == time.February && r.ReminderDate.Day() == 29 {
			return "", false
		}
		opt.Freq = rrule.YEARLY
	default:
		return "", false
	}
	if r.EndDate.Valid() {
		opt.Until = r.EndDate.In(time.UTC).Add(24*time.Hour - time.Second)
	}
	return opt.RRuleString(), true
}
