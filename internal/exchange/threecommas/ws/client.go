package ws

import (
	"context"
	"fmt"
	"time"

	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func New(url, apiKey, secret string, log *logger.Logger) (*Client, error) {
	identifier, err := buildIdentifier(apiKey, secret)
	if err != nil {
		return nil, err
	}
	return &Client{
		url:          url,
		apiKey:       apiKey,
		secret:       secret,
		log:          log,
		identifier:   identifier,
		events:       make(chan exchange.Event, 100),
		stopCh:       make(chan struct{}),
		reconnectMin: 1 * time.Second,
		reconnectMax: 30 * time.Second,
	}, nil
}

func (w *Client) Connect(ctx context.Context) error {
	w.logEntry().WithField("url", w.url).Info("Подключение к WS.")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("Не удалось подключиться к WS: %w", err)
	}
	conn.SetReadLimit(2 << 20)

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.subscribe(); err != nil {
		return err
	}

	w.logEntry().Info("WS соединение установлено.")

	go w.readLoop()
	go func() {
		select {
		case <-ctx.Done():
			w.Close()
		case <-w.stopCh:
		}
	}()

	return nil
}

func (w *Client) Close() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		if w.conn != nil {
			_ = w.conn.Close()
		}
		w.mu.Unlock()
	})
}

func (w *Client) logEntry() *logrus.Entry {
	return w.log.WithComponent("threecommas_ws")
}

func (w *Client) Events() <-chan exchange.Event {
	return w.events
}

func (w *Client) emit(event exchange.Event) {
	select {
	case w.events <- event:
	case <-w.stopCh:
	}
}
