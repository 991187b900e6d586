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
	"dcaportfolio/internal/models"
	"dcaportfolio/internal/store"

	"github.com/sirupsen/logrus"
)

// One full pass, then exit. Useful for cron and for the first import.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("PORTFOLIO_CONFIG"))
	if err != nil {
		panic(err)
	}

	logger := logger.New(logger.Config{
		Level:  cfg.Runtime.Log.Level,
		Format: cfg.Runtime.Log.Format,
		Output: cfg.Runtime.Log.File,
	})

	db, err := store.NewStore(cfg.Storage.Path)
	if err != nil {
		logger.WithError(err).Fatal("Не удалось открыть хранилище.")
	}
	defer db.Close()

	mode := models.SyncModeFull
	if os.Getenv("PORTFOLIO_SYNC_MODE") == string(models.SyncModeAuto) {
		mode = models.SyncModeAuto
	}

	eng := engine.New(cfg, threecommas.NewFactory(cfg.ThreeCommas, logger), db, logger)

	passCtx, cancel := context.WithTimeout(ctx, cfg.Sync.PassTimeout)
	defer cancel()

	report, err := eng.RunPass(passCtx, mode, cfg.Sync.PageSize)
	if err != nil {
		logger.WithError(err).Error("Синхронизация завершилась с ошибкой.")
		os.Exit(1)
	}

	logger.WithFields(logrus.Fields{
		"run_id":         report.RunID,
		"mode":           report.Mode,
		"bots":           report.Bots,
		"deals":          report.Deals,
		"accounts":       report.Accounts,
		"last_sync_time": report.LastSyncTime,
	}).Info("Синхронизация завершена.")
}
