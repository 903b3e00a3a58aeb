package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-reminders/internal/ports/notify"
)

func TestSend(t *testing.T) {
	var got payload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	ch, err := New(Config{URL: srv.URL, Token: "s3cret", Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ok := ch.Send(context.Background(), notify.Message{To: "a@example.com", Subject: "s", HTMLBody: "<p>b</p>"})
	if !ok {
		t.Fatalf("expected delivery")
	}
	if auth != "Bearer s3cret" || got.To != "a@example.com" || got.HTML != "<p>b</p>" {
		t.Fatalf("unexpected request: auth=%q payload=%+v", auth, got)
	}
}

func TestSend_FailureReturnsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ch, err := New(Config{URL: srv.URL, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ch.Send(context.Background(), notify.Message{To: "a@example.com", Subject: "s", HTMLBody: "b"}) {
		t.Fatalf("5xx must report false")
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Config{URL: "not a url"}, nil); err == nil {
		t.Fatalf("expected error")
	}
}
