package store

import (
	"context"
	"sort"

	"dcaportfolio/internal/models"

	"github.com/shopspring/decimal"
)

type Metrics struct {
	ActiveDeals      int     `json:"active_deals"`
	ClosedDeals      int     `json:"closed_deals"`
	TotalInDeals     float64 `json:"total_in_deals"`
	MaxRisk          float64 `json:"max_risk"`
	TotalProfitUSD   float64 `json:"total_profit_usd"`
	AverageDealHours float64 `json:"average_deal_hours"`
	Bankroll         float64 `json:"bankroll"`
	OnOrdersUSD      float64 `json:"on_orders_usd"`
	EnabledBots      int     `json:"enabled_bots"`
	MaxBotFunds      float64 `json:"max_bot_funds"`
	InactiveFunds    float64 `json:"inactive_funds"`
}

type BotPerformance struct {
	BotID            int64   `json:"bot_id"`
	BotName          string  `json:"bot_name"`
	ClosedDeals      int     `json:"closed_deals"`
	TotalProfitUSD   float64 `json:"total_profit_usd"`
	AverageDealHours float64 `json:"average_deal_hours"`
}

// Metrics aggregates the dashboard totals of one profile.
func (s *Store) Metrics(ctx context.Context, profileID string) (Metrics, error) {
	deals, err := s.Deals(ctx, profileID, DealStatusAll)
	if err != nil {
		return Metrics{}, err
	}
	bots, err := s.Bots(ctx, profileID)
	if err != nil {
		return Metrics{}, err
	}
	rows, err := s.AccountRows(ctx, profileID)
	if err != nil {
		return Metrics{}, err
	}

	var m Metrics
	inDeals, maxRisk, profit, hours := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, d := range deals {
		if d.IsOpen() {
			m.ActiveDeals++
			inDeals = inDeals.Add(decimal.NewFromFloat(d.BoughtVolume))
			if d.MaxDealFunds != nil {
				maxRisk = maxRisk.Add(decimal.NewFromFloat(*d.MaxDealFunds))
			}
			continue
		}
		m.ClosedDeals++
		if d.RealizedActualProfitUSD != nil {
			profit = profit.Add(decimal.NewFromFloat(*d.RealizedActualProfitUSD))
		}
		hours = hours.Add(decimal.NewFromFloat(d.DealHours))
	}

	bankroll, onOrders := decimal.Zero, decimal.Zero
	for _, r := range rows {
		bankroll = bankroll.Add(decimal.NewFromFloat(r.USDValue))
		onOrders = onOrders.Add(onOrdersUSD(r))
	}

	botFunds, inactive := decimal.Zero, decimal.Zero
	for _, b := range bots {
		if !b.IsEnabled {
			continue
		}
		m.EnabledBots++
		botFunds = botFunds.Add(decimal.NewFromFloat(b.MaxFunds))
		inactive = inactive.Add(decimal.NewFromFloat(b.EnabledInactiveFunds))
	}

	m.TotalInDeals = inDeals.InexactFloat64()
	m.MaxRisk = maxRisk.InexactFloat64()
	m.TotalProfitUSD = profit.InexactFloat64()
	m.Bankroll = bankroll.InexactFloat64()
	m.OnOrdersUSD = onOrders.Round(2).InexactFloat64()
	m.MaxBotFunds = botFunds.InexactFloat64()
	m.InactiveFunds = inactive.InexactFloat64()
	if m.ClosedDeals > 0 {
		m.AverageDealHours = hours.Div(decimal.NewFromInt(int64(m.ClosedDeals))).Round(2).InexactFloat64()
	}
	return m, nil
}

// onOrdersUSD prices the amount locked in orders at the row's own USD rate.
// A row without a position has no rate and counts as zero.
func onOrdersUSD(r models.AccountRow) decimal.Decimal {
	if r.Position == 0 || r.OnOrders == 0 {
		return decimal.Zero
	}
	rate := decimal.NewFromFloat(r.USDValue).Div(decimal.NewFromFloat(r.Position))
	return decimal.NewFromFloat(r.OnOrders).Mul(rate)
}

// BotPerformance groups closed deals by bot, most profitable first.
func (s *Store) BotPerformance(ctx context.Context, profileID string) ([]BotPerformance, error) {
	deals, err := s.Deals(ctx, profileID, DealStatusClosed)
	if err != nil {
		return nil, err
	}

	type acc struct {
		name   string
		count  int
		profit decimal.Decimal
		hours  decimal.Decimal
	}
	byBot := make(map[int64]*acc)
	for _, d := range deals {
		a, ok := byBot[d.BotID]
		if !ok {
			a = &acc{name: d.BotName, profit: decimal.Zero, hours: decimal.Zero}
			byBot[d.BotID] = a
		}
		a.count++
		if d.RealizedActualProfitUSD != nil {
			a.profit = a.profit.Add(decimal.NewFromFloat(*d.RealizedActualProfitUSD))
		}
		a.hours = a.hours.Add(decimal.NewFromFloat(d.DealHours))
	}

	out := make([]BotPerformance, 0, len(byBot))
	for id, a := range byBot {
		out = append(out, BotPerformance{
			BotID:            id,
			BotName:          a.name,
			ClosedDeals:      a.count,
			TotalProfitUSD:   a.profit.InexactFloat64(),
			AverageDealHours: a.hours.Div(decimal.NewFromInt(int64(a.count))).Round(2).InexactFloat64(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalProfitUSD != out[j].TotalProfitUSD {
			return out[i].TotalProfitUSD > out[j].TotalProfitUSD
		}
		return out[i].BotID < out[j].BotID
	})
	return out, nil
}
