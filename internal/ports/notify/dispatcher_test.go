package notify

import (
	"context"
	"testing"
)

type stubChannel struct {
	name  string
	ok    bool
	calls int
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(ctx context.Context, msg Message) bool {
	s.calls++
	return s.ok
}

func TestFanout_SucceedsIfAnyChannelDelivers(t *testing.T) {
	failing := &stubChannel{name: "email", ok: false}
	working := &stubChannel{name: "telegram", ok: true}
	f := NewFanout(failing, nil, working)

	if !f.Send(context.Background(), Message{To: "a@b.c", Subject: "s", HTMLBody: "<p>x</p>"}) {
		t.Fatalf("expected delivery when one channel succeeds")
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Fatalf("expected every channel to be tried once, got %d/%d", failing.calls, working.calls)
	}
	if got := f.Names(); len(got) != 2 || got[0] != "email" || got[1] != "telegram" {
		t.Fatalf("unexpected names: %v", got)
	}
}

func TestFanout_Empty(t *testing.T) {
	if NewFanout().Send(context.Background(), Message{}) {
		t.Fatalf("empty fanout must report failure")
	}
}

func TestMessage_Valid(t *testing.T) {
	if (Message{To: "a@b.c", Subject: "s"}).Valid() {
		t.Fatalf("missing body must be invalid")
	}
	if !(Message{To: "a@b.c", Subject: "s", HTMLBody: "b"}).Valid() {
		t.Fatalf("expected valid message")
	}
}
