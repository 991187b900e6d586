package engine

import (
	"context"

	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/models"
)

// ClassifyManualSafetyOrders keeps the manual safety orders and groups them by status.
func ClassifyManualSafetyOrders(orders []models.MarketOrder) models.MarketOrders {
	out := models.MarketOrders{
		Filled: []models.MarketOrder{},
		Failed: []models.MarketOrder{},
		Active: []models.MarketOrder{},
	}
	for _, order := range orders {
		if order.DealOrderType != models.OrderTypeManualSafety {
			continue
		}
		switch order.StatusString {
		case models.OrderStatusFilled:
			out.Filled = append(out.Filled, order)
		case models.OrderStatusCancelled:
			out.Failed = append(out.Failed, order)
		case models.OrderStatusActive:
			out.Active = append(out.Active, order)
		}
	}
	return out
}

// manualSafetyOrders falls back to empty groups when the orders cannot be read.
func (e *Engine) manualSafetyOrders(ctx context.Context, client exchange.Client, dealID int64) models.MarketOrders {
	if client == nil {
		return ClassifyManualSafetyOrders(nil)
	}
	orders, err := client.GetDealSafetyOrders(ctx, dealID)
	if err != nil {
		e.dealEntry(dealID).WithError(err).Warn("Не удалось получить ручные страховочные ордера, считаем их отсутствующими.")
		return ClassifyManualSafetyOrders(nil)
	}
	return ClassifyManualSafetyOrders(orders)
}

// normalizeDealOrders fills the rate of market orders from the average price and the
// total of active orders from rate and quantity.
func normalizeDealOrders(orders []models.MarketOrder) []models.MarketOrder {
	out := make([]models.MarketOrder, 0, len(orders))
	for _, order := range orders {
		if order.Rate == 0 {
			order.Rate = order.AveragePrice
		}
		if order.StatusString == models.OrderStatusActive && order.Rate != 0 && order.Quantity != 0 {
			order.Total = order.Rate * order.Quantity
		}
		out = append(out, order)
	}
	return out
}
