// @title PetCare+ Reminders
// @version 1.0
// @description Motor de reminders recurrentes: ops del scheduler y feed iCalendar por mascota.
// @BasePath /
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"pet-reminders/internal/adapters/auth/remote"
	"pet-reminders/internal/adapters/notify/logsink"
	"pet-reminders/internal/adapters/notify/smtp"
	"pet-reminders/internal/adapters/notify/telegram"
	"pet-reminders/internal/adapters/notify/webhook"
	mem "pet-reminders/internal/adapters/storage/memory"
	"pet-reminders/internal/adapters/storage/postgres"
	"pet-reminders/internal/adapters/storage/sqlite"
	"pet-reminders/internal/config"
	"pet-reminders/internal/domain/calendar"
	"pet-reminders/internal/domain/pets"
	"pet-reminders/internal/domain/reminders"
	"pet-reminders/internal/platform/logger"
	"pet-reminders/internal/ports/auth"
	"pet-reminders/internal/ports/notify"
	"pet-reminders/internal/router"
	"pet-reminders/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "", "archivo YAML de configuración (opcional)")
	flag.Parse()

	// .env es opcional
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,
	})
	defer logger.Sync(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", map[string]any{"error": err})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("exit", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	cal, err := calendar.Load(cfg.Schedule.Timezone)
	if err != nil {
		return err
	}

	remRepo, petRepo, closeStore, err := openStore(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer closeStore()

	petsSvc := pets.NewService(petRepo)

	dispatcher, err := buildDispatcher(cfg.Notify, log)
	if err != nil {
		return err
	}
	remSvc := reminders.NewService(remRepo, reminders.Options{
		Calendar:    cal,
		Notifier:    reminders.NewNotifier(petsSvc, dispatcher, log),
		Logger:      log,
		FeedingLead: cfg.Schedule.FeedingLead,
	})

	driver := scheduler.New(remSvc, scheduler.Config{
		Location:         cal.Location(),
		DailyCron:        cfg.Schedule.DailyCron,
		PeriodicInterval: cfg.Schedule.PeriodicInterval,
		PassTimeout:      cfg.Schedule.PassTimeout,
		RunOnStart:       cfg.Schedule.RunOnStart,
	}, log)
	if err := driver.Start(); err != nil {
		return err
	}
	defer func() {
		if err := driver.Shutdown(); err != nil {
			log.Warn("scheduler shutdown", map[string]any{"error": err})
		}
	}()

	var verifier auth.AuthVerifier
	if cfg.Auth.VerifyURL != "" {
		v, err := remote.New(remote.Config{
			VerifyURL: cfg.Auth.VerifyURL,
			APIKey:    cfg.Auth.APIKey,
			Timeout:   cfg.Auth.Timeout,
		})
		if err != nil {
			return err
		}
		verifier = v
	} else {
		log.Warn("no auth.verify_url: dev mode, X-Debug-User-ID accepted", nil)
	}

	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: router.NewRouter(router.Options{
			AuthVerifier: verifier,
			Logger:       log,
			Pets:         petsSvc,
			Reminders:    remSvc,
			Scheduler:    driver,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Schedule.PassTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.HTTP.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down", nil)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, sc config.StorageConfig, log logger.Logger) (reminders.Repository, pets.Repository, func(), error) {
	switch sc.Driver {
	case config.DriverPostgres:
		st, err := postgres.NewStore(ctx, sc.DSN, sc.Migrate, sc.Timeout)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		log.Info("storage ready", map[string]any{"driver": st.Dialect()})
		return st.Reminders(), st.Pets(), func() { _ = st.Close() }, nil

	case config.DriverSQLite:
		path := sc.DSN
		if path == "" {
			path = "petcare.db"
		}
		st, err := sqlite.NewStore(ctx, path, sc.Timeout)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		log.Info("storage ready", map[string]any{"driver": st.Dialect(), "path": path})
		return st.Reminders(), st.Pets(), func() { _ = st.Close() }, nil
	}

	log.Warn("in-memory storage: data is lost on restart", nil)
	return mem.NewReminderRepo(), mem.NewPetRepo(), func() {}, nil
}

// buildDispatcher arma el fan-out con los canales habilitados.
// Sin canales, las notificaciones solo se loguean.
func buildDispatcher(nc config.NotifyConfig, log logger.Logger) (notify.Dispatcher, error) {
	var channels []notify.Channel

	if e := nc.Email; e.Enabled {
		ch, err := smtp.New(smtp.Config{
			Host:     e.Host,
			Port:     e.Port,
			Username: e.Username,
			Password: e.Password,
			From:     e.From,
			SSL:      e.SSL,
			Timeout:  e.Timeout,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("email channel: %w", err)
		}
		channels = append(channels, ch)
	}
	if w := nc.Webhook; w.Enabled {
		ch, err := webhook.New(webhook.Config{
			URL:     w.URL,
			Token:   w.Token,
			Timeout: w.Timeout,
			Retries: w.Retries,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("webhook channel: %w", err)
		}
		channels = append(channels, ch)
	}
	if tg := nc.Telegram; tg.Enabled {
		ch, err := telegram.Connect(tg.Token, tg.ChatID, log)
		if err != nil {
			return nil, fmt.Errorf("telegram channel: %w", err)
		}
		channels = append(channels, ch)
	}

	if len(channels) == 0 {
		channels = append(channels, logsink.New(log))
	}
	fan := notify.NewFanout(channels...)
	log.Info("notification channels", map[string]any{"channels": fan.Names()})
	return fan, nil
}
