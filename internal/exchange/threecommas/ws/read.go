package ws

import (
	"encoding/json"
	"time"

	"dcaportfolio/internal/exchange"

	"github.com/gorilla/websocket"
)

func (w *Client) readLoop() {
	w.logEntry().Debug("readLoop запущен.")
	defer close(w.events)

	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		w.mu.Lock()
		conn := w.conn
		w.mu.Unlock()

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-w.stopCh:
				return
			default:
			}
			w.logEntry().WithError(err).Warn("Ошибка чтения WS.")

			if !w.reconnect() {
				return
			}
			continue
		}

		w.handleFrame(data)
	}
}

func (w *Client) handleFrame(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		w.logEntry().WithError(err).Warn("Не удалось разобрать WS сообщение.")
		return
	}

	switch msg.Type {
	case "welcome", "ping":
		return
	case "confirm_subscription":
		w.logEntry().Info("Подписка на сделки подтверждена.")
		return
	case "reject_subscription":
		w.logEntry().Error("Подписка на сделки отклонена, проверьте ключи.")
		return
	case "disconnect":
		w.logEntry().Warn("Сервер закрыл WS сессию.")
		return
	}

	if len(msg.Message) > 0 && msg.Identifier != "" {
		w.handleDeal(msg)
	}
}

func (w *Client) reconnect() bool {
	backoff := w.reconnectMin

	for {
		w.logEntry().Info("Попытка переподключения к WS.")

		select {
		case <-w.stopCh:
			return false
		case <-time.After(backoff):
		}

		conn, _, err := websocket.DefaultDialer.Dial(w.url, nil)
		if err != nil {
			w.logEntry().WithError(err).Warn("Не удалось переподключиться к WS.")
			backoff = w.nextBackoff(backoff)
			continue
		}
		conn.SetReadLimit(2 << 20)

		w.mu.Lock()
		if w.conn != nil {
			_ = w.conn.Close()
		}
		w.conn = conn
		w.mu.Unlock()

		if err := w.subscribe(); err != nil {
			w.logEntry().WithError(err).Warn("Не удалось повторно подписаться на WS.")
			backoff = w.nextBackoff(backoff)
			continue
		}

		w.emit(exchange.Event{Type: exchange.EventTypeReconnect})
		w.logEntry().Info("WS переподключён и подписка восстановлена.")
		return true
	}
}

func (w *Client) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > w.reconnectMax {
		return w.reconnectMax
	}
	return next
}
