package engine

import (
	"context"
	"errors"
	"time"

	"dcaportfolio/internal/exchange"
	"dcaportfolio/internal/models"
)

// NormalizeDeals derives the persisted fields of every deal. Deals with manual safety
// orders cost one extra request each.
func (e *Engine) NormalizeDeals(ctx context.Context, raw []models.APIDeal, profile models.Profile) []models.Deal {
	client, err := e.factory(profile.Credentials)
	if err != nil {
		if !errors.Is(err, exchange.ErrMissingCredentials) {
			e.logEntry().WithError(err).Warn("Клиент API недоступен, ручные страховочные ордера не учитываются.")
		}
		client = nil
	}

	now := e.now()
	deals := make([]models.Deal, 0, len(raw))
	for _, d := range raw {
		orders := ClassifyManualSafetyOrders(nil)
		if d.ActiveManualSafetyOrders > 0 || d.CompletedManualSafetyOrdersCount > 0 {
			orders = e.manualSafetyOrders(ctx, client, d.ID)
		}
		deal := normalizeDeal(d, orders, now)
		deal.ProfileID = profile.ID
		deals = append(deals, deal)
	}
	return deals
}

func normalizeDeal(d models.APIDeal, orders models.MarketOrders, now time.Time) models.Deal {
	deal := models.Deal{APIDeal: d}

	deal.MaxSafetyOrders = CalcMaxSafetyOrders(d.CompletedSafetyOrdersCount, d.CurrentActiveSafetyOrders, d.MaxSafetyOrders)
	deal.DealHours = CalcDealHours(d.CreatedAt, d.ClosedAt, now)
	deal.CompletedManualSafetyOrdersCount = len(orders.Filled)

	base, quote := splitPair(d.Pair)
	deal.Pair = quote
	deal.Currency = base

	if d.IsOpen() {
		maxDealFunds := CalcMaxDealFunds(d.BoughtVolume, d.SafetyOrderVolume, d.MartingaleVolumeCoefficient, deal.MaxSafetyOrders, d.CompletedSafetyOrdersCount, orders.Active)
		deal.MaxDealFunds = &maxDealFunds
		deal.ImpactFactor = CalcImpactFactor(d.BoughtAveragePrice, d.CurrentPrice, d.BoughtVolume, d.ActualUSDProfit, d.ActualProfit)
		return deal
	}

	realized := d.ActualUSDProfit
	closedAt := d.ClosedAt.UnixMilli()
	deal.RealizedActualProfitUSD = &realized
	deal.ProfitPercent = CalcProfitPercent(d.FinalProfitPercentage, deal.DealHours)
	deal.ClosedAtMillis = &closedAt
	return deal
}

// GetDealOrders returns every safety order of one deal.
func (e *Engine) GetDealOrders(ctx context.Context, profile models.Profile, dealID int64) ([]models.MarketOrder, error) {
	client, err := e.factory(profile.Credentials)
	if err != nil {
		return nil, err
	}
	orders, err := client.GetDealSafetyOrders(ctx, dealID)
	if err != nil {
		return nil, err
	}
	return normalizeDealOrders(orders), nil
}
