package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/models"
)

func (c *Client) ListDeals(ctx context.Context, q exchange.DealQuery) (exchange.Page[models.APIDeal], error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	params.Set("offset", strconv.Itoa(q.Offset))
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	if q.OrderDirection != "" {
		params.Set("order_direction", q.OrderDirection)
	}
	if q.Scope != "" {
		params.Set("scope", q.Scope)
	}

	data, err := c.doRequest(ctx, http.MethodGet, "/ver1/deals", params)
	if err != nil {
		return exchange.Page[models.APIDeal]{}, err
	}
	items, err := parseList(data)
	if err != nil {
		return exchange.Page[models.APIDeal]{}, err
	}
	return exchange.Page[models.APIDeal]{
		Items:    decodeAll(c, "deal", items, DecodeDeal),
		Received: len(items),
	}, nil
}

// GetDealSafetyOrders reads /deals/{id}/market_orders.
func (c *Client) GetDealSafetyOrders(ctx context.Context, dealID int64) ([]models.MarketOrder, error) {
	data, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/ver1/deals/%d/market_orders", dealID), nil)
	if err != nil {
		return nil, err
	}
	items, err := parseList(data)
	if err != nil {
		return nil, err
	}
	return decodeAll(c, "market_order", items, decodeMarketOrder), nil
}
