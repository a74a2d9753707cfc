package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"renthunt/internal/config"
	"renthunt/internal/directory"
	"renthunt/internal/handler"
	"renthunt/internal/locale"
	"renthunt/internal/lock"
	"renthunt/internal/messenger"
	"renthunt/internal/middleware"
	"renthunt/internal/repository/postgres"
	"renthunt/internal/scheduler"
	"renthunt/internal/service"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// app holds the wired services shared by serve and sweep
type app struct {
	bot     *tele.Bot
	handler *handler.Handler
	sweep   *service.SweepService
}

func newApp(cfg *config.Config, db *sqlx.DB, logger *zap.Logger) (*app, error) {
	bundle, err := locale.Load(cfg.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}

	// The HTTP timeout must outlast a long poll
	pollTimeout := 10 * time.Second
	clientTimeout := cfg.SendTimeout
	if clientTimeout <= pollTimeout {
		clientTimeout = pollTimeout + 5*time.Second
	}

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
		Client: &http.Client{Timeout: clientTimeout},
		OnError: func(err error, c tele.Context) {
			logger.Error("Telegram handler error", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	logger.Info("Telegram bot initialized")

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	requestRepo := postgres.NewRequestRepo(db)

	dir := directory.NewClient(directory.Config{
		Token:           cfg.Airtable.Token,
		BaseID:          cfg.Airtable.Base,
		UsersTable:      cfg.Airtable.UsersTable,
		PropertiesTable: cfg.Airtable.PropertiesTable,
	}, logger)

	msgr := messenger.NewTelebot(bot)
	locks := lock.NewKeyed()
	links := service.Links{Tariffs: cfg.Tariffs, Support: cfg.Support}

	// Initialize services
	accessService := service.NewAccessService(dir)
	dispatchService := service.NewDispatchService(dir, requestRepo, msgr, bundle, service.DispatchConfig{
		CatalogURL:  cfg.Catalog,
		SendTimeout: cfg.SendTimeout,
	}, logger)
	sweepService := service.NewSweepService(
		userRepo, requestRepo, accessService, dispatchService, msgr, bundle, locks, links,
		cfg.Sweep.Concurrency, logger,
	)

	h := handler.NewHandler(userRepo, requestRepo, accessService, dispatchService, msgr, bundle, locks, links, logger)

	return &app{bot: bot, handler: h, sweep: sweepService}, nil
}

func serve(ctx context.Context, migrations string, logger *zap.Logger) error {
	logger.Info("Starting RentHunt Bot")

	cfg, db, err := bootstrap(logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db, migrations, logger); err != nil {
		return err
	}

	a, err := newApp(cfg, db, logger)
	if err != nil {
		return err
	}

	a.bot.Use(middleware.Recover(logger), middleware.PrivateOnly(logger))
	a.handler.RegisterHandlers(a.bot)

	logger.Info("Handlers registered")

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the sweep loop in background
	sched := scheduler.New(cfg.Sweep.Interval, func(ctx context.Context) error {
		_, err := a.sweep.Run(ctx)
		return err
	}, logger)

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sched.Run(ctx)
	}()

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		a.bot.Start()
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	a.bot.Stop()
	<-sweepDone

	logger.Info("Bot stopped gracefully")
	return nil
}

func sweepOnce(ctx context.Context, logger *zap.Logger) error {
	cfg, db, err := bootstrap(logger)
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := newApp(cfg, db, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if _, err := a.sweep.Run(ctx); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	return nil
}

func migrateOnly(migrations string, logger *zap.Logger) error {
	_, db, err := bootstrap(logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return runMigrations(db, migrations, logger)
}

// bootstrap loads the configuration and opens the database
func bootstrap(logger *zap.Logger) (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Configuration loaded successfully")

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Database connection established")
	return cfg, db, nil
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to connect to database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sqlx.DB, source string, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db.DB, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}
