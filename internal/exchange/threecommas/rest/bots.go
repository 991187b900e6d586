package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/models"

	"github.com/tidwall/gjson"
)

func (c *Client) ListBots(ctx context.Context, q exchange.BotQuery) (exchange.Page[models.APIBot], error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	params.Set("offset", strconv.Itoa(q.Offset))
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.SortDirection != "" {
		params.Set("sort_direction", q.SortDirection)
	}

	data, err := c.doRequest(ctx, http.MethodGet, "/ver1/bots", params)
	if err != nil {
		return exchange.Page[models.APIBot]{}, err
	}
	items, err := parseList(data)
	if err != nil {
		return exchange.Page[models.APIBot]{}, err
	}
	return exchange.Page[models.APIBot]{
		Items:    decodeAll(c, "bot", items, decodeBot),
		Received: len(items),
	}, nil
}

// decodeAll drops records that fail validation instead of failing the whole page.
func decodeAll[T any](c *Client, kind string, items []gjson.Result, decode func(gjson.Result) (T, error)) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		v, err := decode(item)
		if err != nil {
			if c.log != nil {
				c.log.WithComponent("threecommas_rest").WithError(err).WithFields(map[string]interface{}{
					"kind": kind,
					"id":   item.Get("id").String(),
				}).Warn("Запись пропущена.")
			}
			continue
		}
		out = append(out, v)
	}
	return out
}
