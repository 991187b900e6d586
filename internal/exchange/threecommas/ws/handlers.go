package ws

import (
	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/exchange/threecommas/rest"

	"github.com/tidwall/gjson"
)

func (w *Client) handleDeal(msg Message) {
	if !gjson.ValidBytes(msg.Message) {
		w.logEntry().Warn("Не удалось разобрать сделку из WS.")
		return
	}
	deal, err := rest.DecodeDeal(gjson.ParseBytes(msg.Message))
	if err != nil {
		w.logEntry().WithError(err).Warn("Сделка из WS пропущена.")
		return
	}

	w.logEntry().WithFields(map[string]interface{}{
		"deal_id": deal.ID,
		"status":  deal.Status,
		"pair":    deal.Pair,
	}).Debug("deal")

	w.emit(exchange.Event{
		Type: exchange.EventTypeDeal,
		Deal: &deal,
	})
}
