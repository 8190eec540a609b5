package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/pcpedia/leasing-api/internal/app"
	"github.com/pcpedia/leasing-api/internal/auth"
	"github.com/pcpedia/leasing-api/internal/catalog"
	"github.com/pcpedia/leasing-api/internal/leasing/contracts"
	"github.com/pcpedia/leasing-api/internal/leasing/quotes"
	"github.com/pcpedia/leasing-api/internal/leasing/requests"
	"github.com/pcpedia/leasing-api/internal/platform/db"
	"github.com/pcpedia/leasing-api/internal/platform/i18n"
	"github.com/pcpedia/leasing-api/internal/shared"
	"github.com/pcpedia/leasing-api/internal/users"
	"github.com/pcpedia/leasing-api/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	clock := shared.NewClock()
	printer := i18n.NewPrinter(cfg.Locale)

	userRepo := users.NewRepository(pool)
	catalogRepo := catalog.NewRepository(pool)

	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authService := auth.NewService(userRepo, tokenStore)
	authHandler := auth.NewHandler(authService, printer, logger)
	authMiddleware := auth.NewMiddleware(authService, printer, logger)

	requestRepo := requests.NewRepository(pool)
	requestService := requests.NewService(requestRepo, catalogRepo, userRepo)
	requestHandler := requests.NewHandler(logger, requestService)

	quoteRepo := quotes.NewRepository(pool)
	quoteService := quotes.NewService(quoteRepo, requestRepo, catalogRepo, userRepo, clock)
	quoteHandler := quotes.NewHandler(logger, quoteService)

	contractRepo := contracts.NewRepository(pool)
	contractService := contracts.NewService(contractRepo, quoteRepo, catalogRepo, userRepo, clock, logger)
	contractHandler := contracts.NewHandler(logger, contractService)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskContractExpiry, Handler: jobs.NewContractExpiryHandler(contractRepo, clock, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ExpirySweepCron, Task: jobs.NewContractExpiryTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		AuthMiddleware:   authMiddleware,
		RequestsHandler:  requestHandler,
		QuotesHandler:    quoteHandler,
		ContractsHandler: contractHandler,
		JobHandler:       jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("run", slog.Any("error", err))
		os.Exit(1)
	}
}
