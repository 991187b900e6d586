package engine

import (
	"context"
	"errors"
	"time"

	"dcaportfolio/internal/config"
	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/logger"
	"dcaportfolio/internal/models"
)

var ErrEngineStopped = errors.New("Движок синхронизации остановлен.")

const streamDebounce = 2 * time.Second

type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

type Engine struct {
	cfg     *config.Config
	factory exchange.ClientFactory
	store   Store
	log     *logger.Logger
	now     func() time.Time

	jobs    chan job
	stopped chan struct{}

	// dealState is owned by the goroutine running passes.
	dealState DealSyncState
}

func New(cfg *config.Config, factory exchange.ClientFactory, store Store, log *logger.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		factory: factory,
		store:   store,
		log:     log,
		now:     time.Now,
		jobs:    make(chan job),
		stopped: make(chan struct{}),
	}
}

// Start runs every remote call on one goroutine until ctx is cancelled: periodic deal
// autoSync, periodic bot and account sync, stream-triggered syncs and submitted jobs.
func (e *Engine) Start(ctx context.Context) error {
	defer close(e.stopped)
	e.logEntry().Info("Движок синхронизации запущен.")

	passCtx, cancel := e.passContext(ctx)
	_, err := e.RunPass(passCtx, models.SyncModeAuto, 0)
	cancel()
	if err != nil {
		e.logEntry().WithError(err).Warn("Первичная синхронизация завершилась с ошибкой.")
	}

	dealTicker := time.NewTicker(e.interval(e.cfg.Sync.Interval, 15*time.Second))
	defer dealTicker.Stop()
	botTicker := time.NewTicker(e.interval(e.cfg.Sync.BotInterval, 5*time.Minute))
	defer botTicker.Stop()

	events := e.subscribe(ctx)
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			e.logEntry().Info("Движок синхронизации остановлен.")
			return nil
		case <-dealTicker.C:
			e.runDeals(ctx, models.SyncModeAuto, 0)
		case <-botTicker.C:
			e.runBots(ctx)
		case j := <-e.jobs:
			j.done <- e.runJob(j)
		case event, ok := <-events:
			if !ok {
				e.logEntry().Warn("Канал событий WS закрыт.")
				events = nil
				continue
			}
			if e.handleEvent(event) && debounce == nil {
				debounce = time.After(streamDebounce)
			}
		case <-debounce:
			debounce = nil
			e.runDeals(ctx, models.SyncModeAuto, 0)
		}
	}
}

// Do runs fn on the engine goroutine, so it never overlaps with a sync pass.
func (e *Engine) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case e.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		return ErrEngineStopped
	}
	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) runJob(j job) error {
	ctx, cancel := e.passContext(j.ctx)
	defer cancel()
	return j.fn(ctx)
}

func (e *Engine) runDeals(ctx context.Context, mode models.SyncMode, pageSize int) {
	passCtx, cancel := e.passContext(ctx)
	defer cancel()
	if _, err := e.syncDealsPass(passCtx, newRunID(), mode, pageSize); err != nil {
		e.logEntry().WithError(err).Warn("Синхронизация сделок завершилась с ошибкой.")
	}
}

func (e *Engine) runBots(ctx context.Context) {
	passCtx, cancel := e.passContext(ctx)
	defer cancel()
	if _, _, err := e.syncBotsPass(passCtx, newRunID()); err != nil {
		e.logEntry().WithError(err).Warn("Синхронизация ботов и счетов завершилась с ошибкой.")
	}
}

func (e *Engine) passContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := e.cfg.Sync.PassTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return context.WithTimeout(ctx, timeout)
}

func (e *Engine) interval(val, fallback time.Duration) time.Duration {
	if val <= 0 {
		return fallback
	}
	return val
}

// DealState returns the remembered open deal ids. Only safe on the engine goroutine
// or when the loop is not running.
func (e *Engine) DealState() DealSyncState {
	return e.dealState
}
