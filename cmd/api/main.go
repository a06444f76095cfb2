package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm/logger"

	"fitreport/internal/api"
	"fitreport/internal/config"
	"fitreport/internal/database"
	"fitreport/internal/datastore"
	"fitreport/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logLevel := slog.LevelInfo
	gormLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
		gormLevel = logger.Info
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)

	if err := run(cfg, log, gormLevel); err != nil {
		log.Error("api exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, gormLevel logger.LogLevel) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDatabase(cfg.Database, gormLevel)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	seeded, err := database.SeedPositions(ctx, db)
	if err != nil {
		return fmt.Errorf("seed positions: %w", err)
	}
	log.Info("database ready", slog.String("host", cfg.Database.Host), slog.Int("positions_seeded", seeded))

	blobs, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	log.Info("storage ready", slog.String("bucket", blobs.Bucket()))

	deps := api.Dependencies{
		Config: cfg,
		Store:  datastore.New(db),
		Blobs:  blobs,
	}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// 레이트 리밋은 선택 기능이라 기동을 막지 않는다
			log.Warn("redis unavailable, login rate limit disabled", slog.Any("error", err))
		} else {
			deps.RateCounter = rdb
		}
	}
	if cfg.Clamd.Addr != "" {
		deps.Scanner = api.ClamdScanner{Addr: cfg.Clamd.Addr}
		log.Info("upload virus scan enabled", slog.String("clamd", cfg.Clamd.Addr))
	}

	router := api.NewRouter(cfg, log)
	if err := api.RegisterRoutes(router, deps); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
