package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Schedule.Timezone != "Asia/Ho_Chi_Minh" || cfg.Schedule.DailyCron != "1 0 * * *" {
		t.Fatalf("unexpected schedule defaults: %+v", cfg.Schedule)
	}
	if cfg.Schedule.PeriodicInterval != 5*time.Minute || cfg.Schedule.FeedingLead != time.Hour {
		t.Fatalf("unexpected durations: %+v", cfg.Schedule)
	}
	if cfg.Storage.Driver != DriverMemory || cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Storage, cfg.HTTP)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoad_FileThenEnvThenLegacy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "petcare.yaml")
	yml := `
storage:
  driver: sqlite
  dsn: /tmp/petcare.db
schedule:
  timezone: UTC
  feeding_lead: 30m
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("PETCARE_SCHEDULE__TIMEZONE", "Europe/Madrid")
	t.Setenv("PORT", "9090")
	t.Setenv("EMAIL_USER", "petcare@example.com")
	t.Setenv("EMAIL_PASS", "app-password")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.DSN != "/tmp/petcare.db" {
		t.Fatalf("file values not applied: %+v", cfg.Storage)
	}
	if cfg.Schedule.FeedingLead != 30*time.Minute {
		t.Fatalf("file duration not applied: %v", cfg.Schedule.FeedingLead)
	}
	if cfg.Schedule.Timezone != "Europe/Madrid" {
		t.Fatalf("env must override file, got %s", cfg.Schedule.Timezone)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("PORT not applied: %s", cfg.HTTP.Addr)
	}
	e := cfg.Notify.Email
	if !e.Enabled || e.Username != "petcare@example.com" || e.From != "petcare@example.com" || e.Password != "app-password" {
		t.Fatalf("legacy email env not applied: %+v", e)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("explicit missing file must fail")
	}
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad cron", func(c *Config) { c.Schedule.DailyCron = "every day" }},
		{"bad zone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
		{"bad driver", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"relative verify url", func(c *Config) { c.Auth.VerifyURL = "tokens/verify" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }},
		{"zero interval", func(c *Config) { c.Schedule.PeriodicInterval = 0 }},
		{"email without from", func(c *Config) { c.Notify.Email.Enabled = true }},
		{"webhook without url", func(c *Config) { c.Notify.Webhook.Enabled = true }},
		{"telegram without chat", func(c *Config) { c.Notify.Telegram.Enabled = true; c.Notify.Telegram.Token = "t" }},
	}
	for _, tc := range cases {
		c := *base
		tc.mutate(&c)
		if err := c.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", tc.name, err)
		}
	}
}
