package rest

import (
	"fmt"
	"strings"
	"time"

	"dcaportfolio/internal/models"

	"github.com/tidwall/gjson"
)

// parseList unwraps a JSON array response. The platform answers numbers either as
// JSON numbers or as strings, so records stay as gjson results until decoded.
func parseList(data []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("Ответ не является JSON.")
	}
	parsed := gjson.ParseBytes(data)
	if code := parsed.Get("error"); code.Exists() {
		return nil, &APIError{Code: code.String(), Description: parsed.Get("error_description").String()}
	}
	if !parsed.IsArray() {
		return nil, fmt.Errorf("Ожидался массив, получено: %s", parsed.Type)
	}
	return parsed.Array(), nil
}

func requireFields(r gjson.Result, fields ...string) error {
	for _, field := range fields {
		v := r.Get(field)
		if !v.Exists() || v.Type == gjson.Null || (v.Type == gjson.String && strings.TrimSpace(v.Str) == "") {
			return fmt.Errorf("%w: нет поля %s", ErrInvalidRecord, field)
		}
	}
	return nil
}

func parseTime(r gjson.Result) (time.Time, error) {
	if r.Type == gjson.Number {
		return time.UnixMilli(r.Int()).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, r.String())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: некорректная дата %q", ErrInvalidRecord, r.String())
	}
	return t.UTC(), nil
}

func parseOptionalTime(r gjson.Result) (*time.Time, error) {
	if !r.Exists() || r.Type == gjson.Null || r.String() == "" {
		return nil, nil
	}
	t, err := parseTime(r)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func decodeBot(r gjson.Result) (models.APIBot, error) {
	if err := requireFields(r, "id", "name", "created_at", "updated_at"); err != nil {
		return models.APIBot{}, err
	}
	createdAt, err := parseTime(r.Get("created_at"))
	if err != nil {
		return models.APIBot{}, err
	}
	updatedAt, err := parseTime(r.Get("updated_at"))
	if err != nil {
		return models.APIBot{}, err
	}

	var pairs []string
	for _, p := range r.Get("pairs").Array() {
		pairs = append(pairs, p.String())
	}

	return models.APIBot{
		ID:                          r.Get("id").Int(),
		AccountID:                   r.Get("account_id").Int(),
		AccountName:                 r.Get("account_name").String(),
		Name:                        r.Get("name").String(),
		IsEnabled:                   r.Get("is_enabled").Bool(),
		Type:                        r.Get("type").String(),
		Strategy:                    r.Get("strategy").String(),
		Pairs:                       pairs,
		MaxSafetyOrders:             int(r.Get("max_safety_orders").Int()),
		ActiveSafetyOrdersCount:     int(r.Get("active_safety_orders_count").Int()),
		MaxActiveDeals:              int(r.Get("max_active_deals").Int()),
		ActiveDealsCount:            int(r.Get("active_deals_count").Int()),
		TakeProfit:                  r.Get("take_profit").Float(),
		TakeProfitType:              r.Get("take_profit_type").String(),
		BaseOrderVolume:             r.Get("base_order_volume").Float(),
		BaseOrderVolumeType:         r.Get("base_order_volume_type").String(),
		SafetyOrderVolume:           r.Get("safety_order_volume").Float(),
		SafetyOrderVolumeType:       r.Get("safety_order_volume_type").String(),
		SafetyOrderStepPercentage:   r.Get("safety_order_step_percentage").Float(),
		MartingaleCoefficient:       r.Get("martingale_coefficient").Float(),
		MartingaleVolumeCoefficient: r.Get("martingale_volume_coefficient").Float(),
		MartingaleStepCoefficient:   r.Get("martingale_step_coefficient").Float(),
		StopLossPercentage:          r.Get("stop_loss_percentage").Float(),
		TrailingDeviation:           r.Get("trailing_deviation").Float(),
		ProfitCurrency:              r.Get("profit_currency").String(),
		FinishedDealsProfitUSD:      r.Get("finished_deals_profit_usd").Float(),
		FinishedDealsCount:          int(r.Get("finished_deals_count").Int()),
		ActiveDealsUSDProfit:        r.Get("active_deals_usd_profit").Float(),
		CreatedAt:                   createdAt,
		UpdatedAt:                   updatedAt,
	}, nil
}

func DecodeDeal(r gjson.Result) (models.APIDeal, error) {
	if err := requireFields(r, "id", "pair", "created_at", "updated_at"); err != nil {
		return models.APIDeal{}, err
	}
	createdAt, err := parseTime(r.Get("created_at"))
	if err != nil {
		return models.APIDeal{}, err
	}
	updatedAt, err := parseTime(r.Get("updated_at"))
	if err != nil {
		return models.APIDeal{}, err
	}
	closedAt, err := parseOptionalTime(r.Get("closed_at"))
	if err != nil {
		return models.APIDeal{}, err
	}

	return models.APIDeal{
		ID:                               r.Get("id").Int(),
		BotID:                            r.Get("bot_id").Int(),
		BotName:                          r.Get("bot_name").String(),
		AccountID:                        r.Get("account_id").Int(),
		Pair:                             r.Get("pair").String(),
		Status:                           r.Get("status").String(),
		CreatedAt:                        createdAt,
		UpdatedAt:                        updatedAt,
		ClosedAt:                         closedAt,
		BoughtVolume:                     r.Get("bought_volume").Float(),
		BoughtAmount:                     r.Get("bought_amount").Float(),
		BoughtAveragePrice:               r.Get("bought_average_price").Float(),
		CurrentPrice:                     r.Get("current_price").Float(),
		BaseOrderVolume:                  r.Get("base_order_volume").Float(),
		SafetyOrderVolume:                r.Get("safety_order_volume").Float(),
		MartingaleVolumeCoefficient:      r.Get("martingale_volume_coefficient").Float(),
		MaxSafetyOrders:                  int(r.Get("max_safety_orders").Int()),
		CompletedSafetyOrdersCount:       int(r.Get("completed_safety_orders_count").Int()),
		CompletedManualSafetyOrdersCount: int(r.Get("completed_manual_safety_orders_count").Int()),
		ActiveSafetyOrdersCount:          int(r.Get("active_safety_orders_count").Int()),
		ActiveManualSafetyOrders:         int(r.Get("active_manual_safety_orders").Int()),
		CurrentActiveSafetyOrders:        int(r.Get("current_active_safety_orders").Int()),
		TakeProfit:                       r.Get("take_profit").Float(),
		FinalProfit:                      r.Get("final_profit").Float(),
		FinalProfitPercentage:            r.Get("final_profit_percentage").Float(),
		ActualProfit:                     r.Get("actual_profit").Float(),
		ActualUSDProfit:                  r.Get("actual_usd_profit").Float(),
		USDFinalProfit:                   r.Get("usd_final_profit").Float(),
		FromCurrency:                     r.Get("from_currency").String(),
		ToCurrency:                       r.Get("to_currency").String(),
	}, nil
}

func decodeMarketOrder(r gjson.Result) (models.MarketOrder, error) {
	if err := requireFields(r, "deal_order_type", "status_string"); err != nil {
		return models.MarketOrder{}, err
	}
	order := models.MarketOrder{
		OrderID:           r.Get("order_id").String(),
		DealOrderType:     r.Get("deal_order_type").String(),
		StatusString:      models.OrderStatus(r.Get("status_string").String()),
		OrderType:         r.Get("order_type").String(),
		Quantity:          r.Get("quantity").Float(),
		QuantityRemaining: r.Get("quantity_remaining").Float(),
		Total:             r.Get("total").Float(),
		Rate:              r.Get("rate").Float(),
		AveragePrice:      r.Get("average_price").Float(),
	}
	if t, err := parseOptionalTime(r.Get("created_at")); err == nil && t != nil {
		order.CreatedAt = *t
	}
	if t, err := parseOptionalTime(r.Get("updated_at")); err == nil && t != nil {
		order.UpdatedAt = *t
	}
	return order, nil
}

func decodeAccount(r gjson.Result) (models.APIAccount, error) {
	if err := requireFields(r, "id"); err != nil {
		return models.APIAccount{}, err
	}
	return models.APIAccount{
		ID:           r.Get("id").Int(),
		Name:         r.Get("name").String(),
		ExchangeName: r.Get("exchange_name").String(),
		MarketCode:   r.Get("market_code").String(),
	}, nil
}

func decodeAccountTableRow(r gjson.Result, accountID int64) (models.AccountTableRow, error) {
	if err := requireFields(r, "currency_code"); err != nil {
		return models.AccountTableRow{}, err
	}
	slug := r.Get("currency_slug").String()
	if slug == "" {
		slug = r.Get("currency_code").String()
	}
	id := r.Get("account_id").Int()
	if id == 0 {
		id = accountID
	}
	return models.AccountTableRow{
		AccountID:    id,
		CurrencyCode: r.Get("currency_code").String(),
		CurrencySlug: slug,
		Percentage:   r.Get("percentage").Float(),
		Position:     r.Get("position").Float(),
		OnOrders:     r.Get("on_orders").Float(),
		BTCValue:     r.Get("btc_value").Float(),
		USDValue:     r.Get("usd_value").Float(),
	}, nil
}
