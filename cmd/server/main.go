package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	auth "github.com/goliatone/go-person-auth"
	"github.com/goliatone/go-person-auth/config"
	"github.com/goliatone/go-person-auth/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := auth.NewJSONLogger(os.Stdout, auth.ParseLevel(cfg.LogLevel))

	if err := auth.SetHashCost(cfg.BcryptCost); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, storage.Options{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DBDSN,
		MaxOpenConns: cfg.DBMaxOpenConns,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("close database", "error", err)
		}
	}()

	if cfg.DBMigrate {
		applied, err := storage.Migrate(ctx, db, cfg.DBDriver)
		if err != nil {
			return err
		}
		logger.Info("migrations applied", "count", applied)
	}

	repo := auth.NewRepositoryManager(db, nil)
	if err := repo.Validate(); err != nil {
		return err
	}

	metrics := auth.NewMetrics()
	activity := auth.MultiActivitySink(
		auth.NewLoggerActivitySink(logger),
		metrics.ActivitySink(),
	)
	timeout := cfg.GetStoreTimeout()

	tokens := auth.NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetIssuer(),
		auth.WithTokenLogger(logger),
	)

	auther := auth.NewAuthenticator(
		auth.NewUserProvider(repo.Users()).WithLogger(logger),
		auth.NewPersonProvider(repo.Persons()).WithLogger(logger),
		cfg,
	).
		WithLogger(logger).
		WithTokenService(tokens).
		WithActivitySink(activity)

	ctrl := auth.NewAuthController(
		auth.WithControllerLogger(logger),
		auth.WithControllerConfig(cfg),
		auth.WithAuthenticator(auther),
		auth.WithRegistrar(auth.NewRegisterUserHandler(repo, timeout).
			WithLogger(logger).
			WithActivitySink(activity)),
		auth.WithPersonService(auth.NewPersonService(repo.Persons(),
			auth.WithPersonStoreTimeout(timeout),
			auth.WithPersonLogger(logger),
			auth.WithPersonActivitySink(activity),
		)),
		auth.WithAuthCodeIssuer(auth.NewAuthCodeIssuer(repo.AuthCodes(),
			auth.WithAuthCodeTimeout(timeout),
			auth.WithAuthCodeLogger(logger),
			auth.WithAuthCodeActivitySink(activity),
		)),
		auth.WithMetrics(metrics),
		auth.WithHealthCheck(db.PingContext),
	)

	app := auth.NewApp(ctrl, auth.AppOptions{
		BodyLimit: cfg.BodyLimit,
		Logger:    logger,
		Metrics:   metrics,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		return app.Listen(cfg.HTTPAddr)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		return app.ShutdownWithTimeout(cfg.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("server stopped")
	return nil
}
