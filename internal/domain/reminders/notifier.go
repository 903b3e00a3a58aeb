package reminders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"pet-reminders/internal/domain/calendar"
	"pet-reminders/internal/platform/logger"
	"pet-reminders/internal/ports/notify"
)

const brand = "PetCare+"

var ErrNoContact = errors.New("owner contact not available")

// Contact es lo necesario para avisar al dueño de una mascota.
type Contact struct {
	PetName   string
	OwnerName string
	Email     string
}

// OwnerDirectory resuelve mascota -> dueño.
type OwnerDirectory interface {
	Contact(ctx context.Context, petID string) (Contact, error)
}

// Notifier arma los mensajes y los entrega por el dispatcher.
// Un fallo de entrega nunca se propaga: solo se reporta con false.
type Notifier struct {
	owners     OwnerDirectory
	dispatcher notify.Dispatcher
	log        logger.Logger
}

func NewNotifier(owners OwnerDirectory, d notify.Dispatcher, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{owners: owners, dispatcher: d, log: log}
}

var occurrenceTmpl = template.Must(template.New("occurrence").Parse(`<div style="font-family:sans-serif">
<h2>{{.Brand}} reminder</h2>
<p>Hi {{if .OwnerName}}{{.OwnerName}}{{else}}there{{end}},</p>
<p>A new <strong>{{.Title}}</strong> reminder has been scheduled for <strong>{{.PetName}}</strong> on <strong>{{.Date}}</strong>.</p>
{{if .Frequency}}<p>This reminder repeats {{.Frequency}}.</p>{{end}}
<p>The {{.Brand}} team</p>
</div>`))

var feedingTmpl = template.Must(template.New("feeding").Parse(`<div style="font-family:sans-serif">
<h2>{{.Brand}} feeding time</h2>
<p>Hi {{if .OwnerName}}{{.OwnerName}}{{else}}there{{end}},</p>
<p><strong>{{.PetName}}</strong> is due to be fed at <strong>{{.Time}}</strong> today ({{.Date}}).</p>
<p>The {{.Brand}} team</p>
</div>`))

type mailData struct {
	Brand     string
	OwnerName string
	PetName   string
	Title     string
	Date      string
	Time      string
	Frequency string
}

// Occurrence avisa de una nueva ocurrencia creada por la expansión.
func (n *Notifier) Occurrence(ctx context.Context, r Reminder) bool {
	c, ok := n.contact(ctx, r)
	if !ok {
		return false
	}
	date, _ := calendar.FormatDate(r.ReminderDate)
	data := mailData{
		Brand:     brand,
		OwnerName: c.OwnerName,
		PetName:   c.PetName,
		Title:     r.Title(),
		Date:      date,
	}
	if r.Frequency.Repeats() {
		data.Frequency = string(r.Frequency)
	}
	msg := notify.Message{
		To:       c.Email,
		Subject:  fmt.Sprintf("%s Reminder: %s for %s on %s", brand, r.Title(), c.PetName, date),
		TextBody: fmt.Sprintf("%s: %s for %s on %s", brand, r.Title(), c.PetName, date),
	}
	return n.send(ctx, r, occurrenceTmpl, data, msg)
}

// FeedingDue avisa que una comida entra en su ventana.
func (n *Notifier) FeedingDue(ctx context.Context, r Reminder) bool {
	c, ok := n.contact(ctx, r)
	if !ok {
		return false
	}
	date, _ := calendar.FormatDate(r.ReminderDate)
	data := mailData{
		Brand:     brand,
		OwnerName: c.OwnerName,
		PetName:   c.PetName,
		Title:     r.Title(),
		Date:      date,
		Time:      r.FeedingTime.Clock(),
	}
	msg := notify.Message{
		To:       c.Email,
		Subject:  fmt.Sprintf("%s Feeding reminder: %s at %s", brand, c.PetName, data.Time),
		TextBody: fmt.Sprintf("%s: time to feed %s at %s", brand, c.PetName, data.Time),
	}
	return n.send(ctx, r, feedingTmpl, data, msg)
}

func (n *Notifier) contact(ctx context.Context, r Reminder) (Contact, bool) {
	if n == nil || n.owners == nil || n.dispatcher == nil {
		return Contact{}, false
	}
	c, err := n.owners.Contact(ctx, r.PetID)
	if err == nil && strings.TrimSpace(c.Email) == "" {
		err = ErrNoContact
	}
	if err != nil {
		n.log.Warn("owner contact lookup failed", map[string]any{
			"reminder_id": r.ID,
			"pet_id":      r.PetID,
			"error":       err,
		})
		return Contact{}, false
	}
	if strings.TrimSpace(c.PetName) == "" {
		c.PetName = "your pet"
	}
	return c, true
}

func (n *Notifier) send(ctx context.Context, r Reminder, tmpl *template.Template, data mailData, msg notify.Message) bool {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		n.log.Error("render notification failed", map[string]any{"reminder_id": r.ID, "error": err})
		return false
	}
	msg.HTMLBody = buf.String()

	ok := n.dispatcher.Send(ctx, msg)
	fields := map[string]any{"reminder_id": r.ID, "pet_id": r.PetID, "to": msg.To}
	if ok {
		n.log.Debug("notification sent", fields)
	} else {
		n.log.Warn("notification not delivered", fields)
	}
	return ok
}
