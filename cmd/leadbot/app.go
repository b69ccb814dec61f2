package main

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"leadbot/internal/admin"
	"leadbot/internal/bot"
	"leadbot/internal/config"
	"leadbot/internal/logger"
	"leadbot/internal/pgstore"
	"leadbot/internal/repository"
	"leadbot/internal/service"
)

// app holds the wired process dependencies shared by every subcommand.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	users    service.UserStore
	settings service.SettingsStore
	api      *tgbotapi.BotAPI
	delivery *bot.Delivery
	closers  []func() error
}

func newApp(ctx context.Context, configFile string, withTelegram bool) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() error {
		_ = log.Sync()
		return nil
	})

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if withTelegram {
		a.api, err = bot.NewAPI(cfg.TelegramToken, log)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	a.delivery = bot.NewDelivery(a.api)

	if cfg.AdminTelegramID == 0 {
		log.Warn("ADMIN_TELEGRAM_ID is not set, admin broadcast is disabled")
	}

	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	if a.cfg.Postgres() {
		if err := pgstore.Migrate(a.cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		db, err := pgstore.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.users = pgstore.NewUserRepository(db)
		a.settings = pgstore.NewSettingsRepository(db)
		a.log.Info("using postgres store")
		return nil
	}

	db, err := repository.NewDB(a.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	a.users = repository.NewUserRepository(db)
	a.settings = repository.NewSettingsRepository(db)
	a.log.Info("using sqlite store", zap.String("path", a.cfg.DatabaseURL))
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close", zap.Error(err))
		}
	}
}

func (a *app) adminID() service.AdminID {
	return service.AdminID(a.cfg.AdminTelegramID)
}

func (a *app) dispatcher() *bot.Dispatcher {
	funnel := service.NewFunnelService(a.users, a.settings, a.delivery, a.log)
	broadcast := service.NewBroadcastService(a.users, a.settings, a.delivery, a.adminID(), a.log)
	return bot.NewDispatcher(funnel, broadcast, a.delivery, a.adminID(), a.log)
}

func (a *app) reports() *service.ReportService {
	window := a.cfg.ReportInterval
	if window <= 0 {
		window = 24 * time.Hour
	}
	return service.NewReportService(a.users, a.settings, a.delivery, a.adminID(), window, a.log)
}

func (a *app) adminHandler() *admin.Handler {
	return admin.NewHandler(
		service.NewSettingsService(a.settings),
		service.NewUserService(a.users, a.delivery, a.log),
		a.reports(),
		a.log,
	)
}

// scheduler registers the admin report jobs. It returns nil when none are configured.
func (a *app) scheduler() (*service.SchedulerService, error) {
	if a.cfg.AdminTelegramID == 0 || !a.delivery.Configured() {
		if a.cfg.ReportInterval > 0 || a.cfg.ReportAt != "" {
			a.log.Warn("admin reports need ADMIN_TELEGRAM_ID and TELEGRAM_BOT_TOKEN, skipping")
		}
		return nil, nil
	}

	reports := a.reports()
	job := func(ctx context.Context) error {
		return reports.SendToAdmin(ctx, time.Now())
	}

	s := service.NewSchedulerService(a.cfg.ReportLocation, a.log)
	if a.cfg.ReportInterval > 0 {
		if _, err := s.ScheduleInterval("admin-report", a.cfg.ReportInterval, job); err != nil {
			return nil, fmt.Errorf("schedule reports: %w", err)
		}
	}
	if a.cfg.ReportAt != "" {
		if _, err := s.ScheduleDaily("admin-daily-report", a.cfg.ReportAt, job); err != nil {
			return nil, fmt.Errorf("schedule daily report: %w", err)
		}
	}
	if s.Len() == 0 {
		return nil, nil
	}
	return s, nil
}
