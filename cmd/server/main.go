// Command pestscan-server starts the farm pest scanning API.
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/farmsight/pestscan/internal/config"
	"github.com/farmsight/pestscan/internal/database"
	"github.com/farmsight/pestscan/internal/detect"
	"github.com/farmsight/pestscan/internal/handler"
	"github.com/farmsight/pestscan/internal/i18n"
	"github.com/farmsight/pestscan/internal/migrate"
	"github.com/farmsight/pestscan/internal/queue"
	"github.com/farmsight/pestscan/internal/repository"
	"github.com/farmsight/pestscan/internal/router"
	queue_publisher "github.com/farmsight/pestscan/internal/service"
	"github.com/farmsight/pestscan/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	logger.Info("starting", zap.String("env", cfg.Env), zap.String("port", cfg.Port))

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migrate.Up(ctx, db); err != nil {
		cancel()
		logger.Fatal("migrate up", zap.Error(err))
	}
	cancel()

	// Redis is optional: a nil client disables caching and rate
	// limiting rather than blocking startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; response cache and rate limiting disabled")
	}

	images, err := storage.NewImageStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal("create upload dir", zap.Error(err))
	}

	translations := i18n.Load(cfg.LocalesDir)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	scans := repository.NewScanRepo(db)
	feedbacks := repository.NewFeedbackRepo(db)
	pests := repository.NewPestRepo(db)

	// The simulated engine stands in for the real model; anything
	// satisfying detect.Engine can replace it here.
	engine := detect.NewSimulated(time.Now().UnixNano())

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Account:   handler.NewAccountHandler(cfg, users),
		Scans:     handler.NewScanHandler(engine, images, scans, queue_publisher.PublishScanRecorded),
		Feedback:  handler.NewFeedbackHandler(feedbacks, pests, translations),
		Export:    handler.NewExportHandler(users, scans),
		Dashboard: handler.NewDashboardHandler(scans),
	}

	// Language preference lookup for the locale middleware.
	prefs := func(ctx context.Context, userID uint64) (string, error) {
		u, err := users.GetByID(ctx, userID)
		if err != nil {
			return "", err
		}
		return u.Language, nil
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, h, rdb, prefs)

	// Drain scan.recorded events in the background; reconnects on its own.
	go queue.StartScanConsumer(logger)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
