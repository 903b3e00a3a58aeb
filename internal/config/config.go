// Package config carga la configuración en capas:
// defaults -> archivo YAML -> PETCARE_* -> variables heredadas (PORT, DB_DSN, EMAIL_USER...).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"

	"pet-reminders/internal/domain/calendar"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	App      AppConfig      `koanf:"app"`
	Log      LogConfig      `koanf:"log"`
	HTTP     HTTPConfig     `koanf:"http"`
	Auth     AuthConfig     `koanf:"auth"`
	Storage  StorageConfig  `koanf:"storage"`
	Schedule ScheduleConfig `koanf:"schedule"`
	Notify   NotifyConfig   `koanf:"notify"`
}

type AppConfig struct {
	Name string `koanf:"name"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// AuthConfig apunta al servicio que verifica bearer tokens.
// VerifyURL vacío = modo dev (header X-Debug-User-ID).
type AuthConfig struct {
	VerifyURL string        `koanf:"verify_url"`
	APIKey    string        `koanf:"api_key"`
	Timeout   time.Duration `koanf:"timeout"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type StorageConfig struct {
	Driver  string        `koanf:"driver"`
	DSN     string        `koanf:"dsn"`
	Migrate bool          `koanf:"migrate"`
	Timeout time.Duration `koanf:"timeout"`
}

type ScheduleConfig struct {
	Timezone         string        `koanf:"timezone"`
	DailyCron        string        `koanf:"daily_cron"`
	PeriodicInterval time.Duration `koanf:"periodic_interval"`
	PassTimeout      time.Duration `koanf:"pass_timeout"`
	FeedingLead      time.Duration `koanf:"feeding_lead"`
	RunOnStart       bool          `koanf:"run_on_start"`
}

type NotifyConfig struct {
	Email    EmailConfig    `koanf:"email"`
	Webhook  WebhookConfig  `koanf:"webhook"`
	Telegram TelegramConfig `koanf:"telegram"`
}

type EmailConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from"`
	SSL      bool          `koanf:"ssl"`
	Timeout  time.Duration `koanf:"timeout"`
}

type WebhookConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`
	Retries int           `koanf:"retries"`
}

type TelegramConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token"`
	ChatID  int64  `koanf:"chat_id"`
}

// Load arma la configuración. configPath vacío usa PETCARE_CONFIG si existe.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if configPath == "" {
		configPath = os.Getenv("PETCARE_CONFIG")
	}
	if configPath = strings.TrimSpace(configPath); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", configPath, err)
		}
	}

	// PETCARE_NOTIFY__EMAIL__HOST -> notify.email.host
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	applyLegacyEnv(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// applyLegacyEnv respeta las variables del despliegue original.
func applyLegacyEnv(k *koanf.Koanf) {
	set := func(envKey, path string) {
		if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
			_ = k.Set(path, v)
		}
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		_ = k.Set("http.addr", ":"+strings.TrimPrefix(port, ":"))
	}
	set("DB_DSN", "storage.dsn")
	set("LOG_LEVEL", "log.level")
	set("LOG_FORMAT", "log.format")
	set("APP_NAME", "app.name")

	if user := strings.TrimSpace(os.Getenv("EMAIL_USER")); user != "" {
		_ = k.Set("notify.email.enabled", true)
		_ = k.Set("notify.email.username", user)
		if k.String("notify.email.from") == "" {
			_ = k.Set("notify.email.from", user)
		}
	}
	set("EMAIL_PASS", "notify.email.password")
	set("EMAIL_FROM", "notify.email.from")
}

// Validate revisa todo lo que haría fallar al arrancar.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if c.Storage.Driver == DriverPostgres && strings.TrimSpace(c.Storage.DSN) == "" {
			bad("storage.dsn is required for postgres")
		}
	default:
		bad("unknown storage.driver %q (memory, postgres, sqlite)", c.Storage.Driver)
	}
	if c.Storage.Timeout < 0 {
		bad("storage.timeout must not be negative")
	}

	if u := strings.TrimSpace(c.Auth.VerifyURL); u != "" {
		if _, err := url.ParseRequestURI(u); err != nil {
			bad("auth.verify_url: %v", err)
		}
	}

	if _, err := calendar.Load(c.Schedule.Timezone); err != nil {
		bad("schedule.timezone: %v", err)
	}
	if _, err := cron.ParseStandard(c.Schedule.DailyCron); err != nil {
		bad("schedule.daily_cron %q: %v", c.Schedule.DailyCron, err)
	}
	if c.Schedule.PeriodicInterval < time.Second {
		bad("schedule.periodic_interval must be at least 1s")
	}
	if c.Schedule.PassTimeout <= 0 {
		bad("schedule.pass_timeout must be positive")
	}
	if c.Schedule.FeedingLead <= 0 || c.Schedule.FeedingLead >= 24*time.Hour {
		bad("schedule.feeding_lead must be between 0 and 24h")
	}

	if e := c.Notify.Email; e.Enabled {
		if strings.TrimSpace(e.Host) == "" || strings.TrimSpace(e.From) == "" {
			bad("notify.email requires host and from")
		}
		if e.Port <= 0 || e.Port > 65535 {
			bad("notify.email.port out of range")
		}
	}
	if w := c.Notify.Webhook; w.Enabled && strings.TrimSpace(w.URL) == "" {
		bad("notify.webhook.url is required")
	}
	if tg := c.Notify.Telegram; tg.Enabled && (strings.TrimSpace(tg.Token) == "" || tg.ChatID == 0) {
		bad("notify.telegram requires token and chat_id")
	}

	return errors.Join(errs...)
}
