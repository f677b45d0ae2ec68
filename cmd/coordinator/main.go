package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"

	"github.com/bengol30/patifon-events-management-sub000/internal/app"
	"github.com/bengol30/patifon-events-management-sub000/internal/model"
	"github.com/bengol30/patifon-events-management-sub000/internal/notify"
	"github.com/bengol30/patifon-events-management-sub000/internal/roster"
	"github.com/bengol30/patifon-events-management-sub000/internal/storage/memory"
	"github.com/bengol30/patifon-events-management-sub000/internal/storage/mongodb"
	"github.com/bengol30/patifon-events-management-sub000/internal/whatsapp"
	"github.com/bengol30/patifon-events-management-sub000/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()

	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if cfg.Debug {
		logOpts = append(logOpts, lgr.Debug, lgr.CallerFile, lgr.CallerFunc)
	}
	log := lgr.New(logOpts...)

	if cfg.Debug {
		log.Logf("[DEBUG] running with config")
		fmt.Fprintln(os.Stdout, cfg.String())
	}

	fmt.Fprintln(os.Stdout, color.GreenString("coordinator %s", version.String()))

	if err := run(ctx, cfg, log); err != nil {
		log.Logf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log lgr.L) error {
	var (
		tasks      model.TaskRepository
		events     model.EventRepository
		volunteers model.VolunteerRepository
		settings   model.SettingsRepository
		tokenStore notify.TokenStore
		users      notify.UserDirectory
		volDir     notify.VolunteerDirectory
		changes    <-chan roster.Change
	)

	if cfg.DryRun {
		store := memory.New()
		tasks, events, volunteers, settings = store, store, store, store
		tokenStore = store
		users = store.UserDirectory()
		volDir = store.VolunteerDirectory()
		changes = store.Subscribe()
		log.Logf("[INFO] dry run, using in-memory storage")
	} else {
		db, err := mongodb.Connect(ctx, cfg.Mongo.URI.Unmask(), cfg.Mongo.Database)
		if err != nil {
			return err
		}
		log.Logf("[INFO] connected to database %q", cfg.Mongo.Database)

		tasks = mongodb.NewTaskStorage(db)
		events = mongodb.NewEventStorage(db)
		volunteerStorage := mongodb.NewVolunteerStorage(db)
		volunteers = volunteerStorage
		volDir = volunteerStorage
		settings = mongodb.NewSettingsStorage(db)
		tokenStore = mongodb.NewRateTokenStorage(db)
		users = mongodb.NewUserStorage(db)

		ch := make(chan roster.Change, 64)
		if err := mongodb.Watch(ctx, db, ch, log); err != nil {
			return err
		}
		changes = ch
	}

	sender := buildSender(ctx, cfg, settings, log)
	resolver := notify.NewPhoneResolver(users, volDir, log)
	gate := notify.NewRateGate(tokenStore, log)
	dispatcher := notify.NewDispatcher(gate, resolver, sender, tasks, log)

	coordinator := app.NewCoordinator(app.Config{
		TaskURLBase:  cfg.URLs.TaskBase,
		EventURLBase: cfg.URLs.EventBase,
	}, tasks, events, volunteers, dispatcher, log)

	aggregator := roster.NewAggregator(volunteers, tasks, resolver, log)

	// React to data-layer changes: refresh the merged roster and run
	// the read-time task normalization for the touched event.
	for {
		select {
		case ch, ok := <-changes:
			if !ok {
				dispatcher.Wait()
				return nil
			}
			if ch.EventID == "" {
				// An unattributed delete: refresh everything known.
				aggregator.RecomputeAll(ctx)
				continue
			}
			aggregator.Recompute(ctx, ch.EventID)
			coordinator.HydrateEventTasks(ctx, ch.EventID)
		case <-ctx.Done():
			// Let any in-flight notifications finish before exiting.
			dispatcher.Wait()
			log.Logf("[DEBUG] stopped: %v", ctx.Err())
			return nil
		}
	}
}

// buildSender turns the stored gateway settings into a messaging
// client. Missing settings or a disabled notify flag mean a no-op
// sender, not an error.
func buildSender(ctx context.Context, cfg Config, settings model.SettingsRepository, log lgr.L) notify.Sender {
	if cfg.DryRun {
		return whatsapp.Disabled(log)
	}
	s, err := settings.FetchSettings(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrSettingsNotFound) {
			log.Logf("[WARN] could not fetch settings: %v", err)
		}
		log.Logf("[INFO] messaging not configured, sending disabled")
		return whatsapp.Disabled(log)
	}
	if !s.SendingEnabled() {
		log.Logf("[INFO] notifications switched off, sending disabled")
		return whatsapp.Disabled(log)
	}
	return whatsapp.New(s.WhatsAppInstanceID, s.WhatsAppToken, log)
}
