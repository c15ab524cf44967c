package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/reviewhub/internal/accounts"
	"github.com/geocoder89/reviewhub/internal/auth"
	"github.com/geocoder89/reviewhub/internal/cache"
	"github.com/geocoder89/reviewhub/internal/config"
	"github.com/geocoder89/reviewhub/internal/db"
	httpx "github.com/geocoder89/reviewhub/internal/http"
	"github.com/geocoder89/reviewhub/internal/http/handlers"
	"github.com/geocoder89/reviewhub/internal/media"
	"github.com/geocoder89/reviewhub/internal/observability"
	"github.com/geocoder89/reviewhub/internal/repo/postgres"
	"github.com/geocoder89/reviewhub/internal/reviews"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: "reviewhub-api",
		Env:         cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Warn("tracing disabled", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	rdb := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = rdb.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	s3Client, err := media.NewS3Client(ctx, cfg)
	if err != nil {
		log.Error("object storage client failed", "err", err)
		os.Exit(1)
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	reviewsRepo := postgres.NewReviewsRepo(pool, prom)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	uploader := media.NewUploader(s3Client, cfg.S3Bucket, cfg.PublicBaseURL(), prom, log)
	catalog := reviews.NewCatalog(reviewsRepo, usersRepo, rdb, cfg.CatalogTTL, prom, log)

	router := httpx.NewRouter(httpx.Deps{
		Config:   cfg,
		Log:      log,
		Prom:     prom,
		Gatherer: reg,
		Accounts: accounts.NewService(usersRepo, tokens, log),
		Reviews:  reviews.NewAssembler(usersRepo, uploader, reviewsRepo, catalog, log),
		Catalog:  catalog,
		Tokens:   tokens,
		Checks: map[string]handlers.Check{
			"postgres": pool.Ping,
			"redis":    rdb.Ping,
		},
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	// Graceful shutdown

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
}
