package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dcaportfolio/internal/config"
	"dcaportfolio/internal/engine"
	"dcaportfolio/internal/exchange/threecommas"
	"dcaportfolio/internal/logger"
	"dcaportfolio/internal/store"
	transport "dcaportfolio/internal/transport/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	cfg, err := config.Load(os.Getenv("PORTFOLIO_CONFIG"))
	if err != nil {
		panic(err)
	}

	logger := logger.New(logger.Config{
		Level:      cfg.Runtime.Log.Level,
		Format:     cfg.Runtime.Log.Format,
		Output:     cfg.Runtime.Log.File,
		MaxSize:    cfg.Runtime.Log.MaxSize,
		MaxBackups: cfg.Runtime.Log.MaxBackups,
		MaxAge:     cfg.Runtime.Log.MaxAge,
		Compress:   cfg.Runtime.Log.Compress,
	})

	profile, err := cfg.ActiveProfile()
	if err != nil {
		logger.WithError(err).Fatal("Профиль не выбран.")
	}

	db, err := store.NewStore(cfg.Storage.Path)
	if err != nil {
		logger.WithError(err).Fatal("Не удалось открыть хранилище.")
	}
	defer db.Close()

	logger.WithProfile(profile.ID).Info("Синхронизация портфеля запущена.")

	factory := threecommas.NewFactory(cfg.ThreeCommas, logger)
	eng := engine.New(cfg, factory, db, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return eng.Start(ctx)
	})

	if cfg.HTTP.Enabled {
		if cfg.Runtime.Log.Level != "debug" && cfg.Runtime.Log.Level != "trace" {
			gin.SetMode(gin.ReleaseMode)
		}
		handler := transport.NewHandler(profile, eng, db, logger)
		server := transport.NewServer(cfg.HTTP, handler, logger)
		group.Go(func() error {
			return server.Run(ctx)
		})
	}

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		cancel()
	}()

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("Синхронизация завершилась с ошибкой.")
	}

	logger.Info("Синхронизация портфеля остановлена.")
}
