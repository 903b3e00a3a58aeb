package reminders

import (
	"context"
	"strings"
	"testing"

	"pet-reminders/internal/domain/calendar"
)

func TestNotifier_OccurrenceMessage(t *testing.T) {
	d := &testDispatcher{ok: true}
	n := NewNotifier(testOwners{}, d, nil)

	r := recurring("r1", "2024-04-10", calendar.FrequencyMonthly)
	r.Type = TypeVetVisit
	if !n.Occurrence(context.Background(), r) {
		t.Fatalf("expected delivery")
	}

	msg := d.sent[0]
	if msg.To != "an@example.com" {
		t.Fatalf("unexpected recipient: %s", msg.To)
	}
	if !strings.Contains(msg.Subject, "Vet Visit") || !strings.Contains(msg.Subject, "Milo") || !strings.Contains(msg.Subject, "2024-04-10") {
		t.Fatalf("unexpected subject: %s", msg.Subject)
	}
	if !strings.Contains(msg.HTMLBody, "repeats monthly") || !strings.Contains(msg.HTMLBody, "PetCare+") {
		t.Fatalf("unexpected body: %s", msg.HTMLBody)
	}
	if msg.TextBody == "" {
		t.Fatalf("text body required for chat channels")
	}
}

func TestNotifier_FeedingMessage(t *testing.T) {
	d := &testDispatcher{ok: true}
	n := NewNotifier(testOwners{}, d, nil)

	r := feedingBase("f1", "2024-03-10", "18:00:00")
	if !n.FeedingDue(context.Background(), r) {
		t.Fatalf("expected delivery")
	}
	if !strings.Contains(d.sent[0].Subject, "18:00") {
		t.Fatalf("subject must carry the feeding time: %s", d.sent[0].Subject)
	}
}

func TestNotifier_EscapesOwnerData(t *testing.T) {
	d := &testDispatcher{ok: true}
	n := NewNotifier(evilOwners{}, d, nil)

	n.Occurrence(context.Background(), recurring("r1", "2024-04-10", calendar.FrequencyNone))
	if strings.Contains(d.sent[0].HTMLBody, "<script>") {
		t.Fatalf("pet name must be escaped: %s", d.sent[0].HTMLBody)
	}
}

func TestNotifier_NoContactOrNoDispatcher(t *testing.T) {
	r := recurring("r1", "2024-04-10", calendar.FrequencyNone)

	if NewNotifier(testOwners{}, nil, nil).Occurrence(context.Background(), r) {
		t.Fatalf("nil dispatcher must report failure")
	}

	d := &testDispatcher{ok: true}
	r.PetID = "pet-ghost"
	if NewNotifier(testOwners{}, d, nil).Occurrence(context.Background(), r) {
		t.Fatalf("missing contact must report failure")
	}
	if d.count() != 0 {
		t.Fatalf("nothing should be dispatched without a contact")
	}
}

type evilOwners struct{}

func (evilOwners) Contact(ctx context.Context, petID string) (Contact, error) {
	return Contact{PetName: "<script>alert(1)</script>", Email: "x@example.com"}, nil
}
