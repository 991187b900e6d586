package engine

import (
	"context"

	"dcaportfolio/internal/exchange"
)

// subscribe opens the deal stream when enabled. A nil channel blocks forever in select,
// so a disabled or failed stream simply never fires.
func (e *Engine) subscribe(ctx context.Context) <-chan exchange.Event {
	if !e.cfg.Sync.Stream {
		return nil
	}
	profile, err := e.cfg.ActiveProfile()
	if err != nil {
		e.logEntry().WithError(err).Warn("Поток сделок не запущен.")
		return nil
	}
	client, err := e.factory(profile.Credentials)
	if err != nil {
		e.logEntry().WithError(err).Warn("Поток сделок не запущен.")
		return nil
	}
	events, err := client.Subscribe(ctx)
	if err != nil {
		e.logEntry().WithError(err).Warn("Не удалось подписаться на поток сделок.")
		return nil
	}
	return events
}

// handleEvent reports whether the event should trigger an autoSync.
func (e *Engine) handleEvent(event exchange.Event) bool {
	switch event.Type {
	case exchange.EventTypeDeal:
		if event.Deal == nil {
			return false
		}
		e.dealEntry(event.Deal.ID).WithField("status", event.Deal.Status).Debug("Получено обновление сделки.")
		return true
	case exchange.EventTypeReconnect:
		e.logEntry().Info("Получен сигнал реконнекта WS, запускаем синхронизацию.")
		return true
	}
	return false
}
