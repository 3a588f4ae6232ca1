package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/routine-bot/internal/application"
	"github.com/example/routine-bot/internal/calendar"
	"github.com/example/routine-bot/internal/chat"
	"github.com/example/routine-bot/internal/config"
	httptransport "github.com/example/routine-bot/internal/http"
	"github.com/example/routine-bot/internal/logging"
	"github.com/example/routine-bot/internal/persistence/sqlite"
)

// app carries the shared wiring every subcommand starts from: configuration,
// storage, the calendar and both mode engines.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	store  *sqlite.Store
	cal    calendar.Calendar
	chat   chat.Client

	catalog    *application.CatalogService
	directory  *application.DirectoryService
	rotation   *application.RotationService
	remote     *application.RemoteService
	production httptransport.Engine
	debug      httptransport.Engine
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger := logging.New(cfg.LogLevel)

	cal, err := calendar.New(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	store, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	catalogService := application.NewCatalogService(store, logger)
	directory := application.NewDirectoryService(store, store, store, cal, logger)
	rotation := application.NewRotationService(store, directory, cal, time.Now, logger)
	remote := application.NewRemoteService(store, directory, cal, logger)

	opts := application.ScheduleOptions{
		TeamMention:    cfg.TeamMention,
		ReminderHour:   cfg.ReminderHour,
		LateCutoffHour: cfg.LateCutoffHour,
	}
	engines := make(map[application.Mode]httptransport.Engine, 2)
	for _, mode := range []application.Mode{application.ModeProduction, application.ModeDebug} {
		ledger := application.NewLedgerService(mode, store, catalogService, cal, logger)
		engines[mode] = httptransport.Engine{
			Ledger:   ledger,
			Schedule: application.NewScheduleService(mode, catalogService, directory, rotation, ledger, remote, cal, opts, logger),
		}
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		cal:        cal,
		chat:       chat.NewSlackClient(cfg.BotToken, logger),
		catalog:    catalogService,
		directory:  directory,
		rotation:   rotation,
		remote:     remote,
		production: engines[application.ModeProduction],
		debug:      engines[application.ModeDebug],
	}, nil
}

func (a *app) close() {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
	}
}
