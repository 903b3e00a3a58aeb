package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestVerify_ReturnsClaims(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "k1" || r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var in verifyRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Token != "tok" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"user_id": " owner-1 ", "email": "a@b.c"})
	}))
	defer srv.Close()

	v, err := New(Config{VerifyURL: srv.URL, APIKey: "k1", Timeout: time.Second})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c, err := v.Verify(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.UserID != "owner-1" || c.Email != "a@b.c" {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestVerify_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	v, _ := New(Config{VerifyURL: srv.URL})
	if _, err := v.Verify(context.Background(), "tok"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := v.Verify(context.Background(), "  "); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("empty token must be rejected, got %v", err)
	}
}

func TestVerify_MissingUserID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"email":"x@y.z"}`))
	}))
	defer srv.Close()

	v, _ := New(Config{VerifyURL: srv.URL})
	if _, err := v.Verify(context.Background(), "tok"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
