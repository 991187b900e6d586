package engine

import (
	"strings"

	"dcaportfolio/internal/models"
)

const botOriginSync = "sync"

// NormalizeBots derives the fund exposure and ladder coverage of every bot.
func NormalizeBots(raw []models.APIBot) []models.Bot {
	bots := make([]models.Bot, 0, len(raw))
	for _, b := range raw {
		maxDealFunds := CalcDealMaxFundsBot(b.MaxSafetyOrders, b.BaseOrderVolume, b.SafetyOrderVolume, b.MartingaleVolumeCoefficient)
		maxInactive := CalcMaxInactiveFunds(maxDealFunds, b.MaxActiveDeals, b.ActiveDealsCount)

		bot := models.Bot{
			ID:                          b.ID,
			Origin:                      botOriginSync,
			AccountID:                   b.AccountID,
			AccountName:                 b.AccountName,
			Name:                        b.Name,
			Pairs:                       quoteCurrencies(b.Pairs),
			FromCurrency:                firstBaseCurrency(b.Pairs),
			Type:                        botType(b.Type),
			Strategy:                    b.Strategy,
			IsEnabled:                   b.IsEnabled,
			ActiveDealsCount:            b.ActiveDealsCount,
			ActiveDealsUSDProfit:        b.ActiveDealsUSDProfit,
			ActiveSafetyOrdersCount:     b.ActiveSafetyOrdersCount,
			BaseOrderVolume:             b.BaseOrderVolume,
			BaseOrderVolumeType:         b.BaseOrderVolumeType,
			SafetyOrderVolume:           b.SafetyOrderVolume,
			SafetyOrderVolumeType:       b.SafetyOrderVolumeType,
			SafetyOrderStepPercentage:   b.SafetyOrderStepPercentage,
			MartingaleCoefficient:       b.MartingaleCoefficient,
			MartingaleVolumeCoefficient: b.MartingaleVolumeCoefficient,
			MartingaleStepCoefficient:   b.MartingaleStepCoefficient,
			MaxActiveDeals:              b.MaxActiveDeals,
			MaxSafetyOrders:             b.MaxSafetyOrders,
			MaxFunds:                    CalcMaxBotFunds(maxDealFunds, b.MaxActiveDeals),
			MaxFundsPerDeal:             maxDealFunds,
			FinishedDealsCount:          b.FinishedDealsCount,
			FinishedDealsProfitUSD:      b.FinishedDealsProfitUSD,
			ProfitCurrency:              b.ProfitCurrency,
			StopLossPercentage:          b.StopLossPercentage,
			TakeProfit:                  b.TakeProfit,
			TakeProfitType:              b.TakeProfitType,
			TrailingDeviation:           b.TrailingDeviation,
			PriceDeviation:              CalcPriceDeviation(b.MaxSafetyOrders, b.SafetyOrderStepPercentage, b.MartingaleStepCoefficient),
			CreatedAt:                   b.CreatedAt,
			UpdatedAt:                   b.UpdatedAt,
		}

		// Disabled bots hold no funds.
		if b.IsEnabled {
			bot.MaxInactiveFunds = maxInactive
			bot.EnabledInactiveFunds = maxInactive
			bot.EnabledActiveFunds = maxDealFunds * float64(b.ActiveDealsCount)
		}

		bots = append(bots, bot)
	}
	return bots
}

// splitPair splits "BASE_QUOTE". A pair without a separator is treated as a bare quote.
func splitPair(pair string) (string, string) {
	base, quote, ok := strings.Cut(pair, "_")
	if !ok {
		return "", pair
	}
	return base, quote
}

func quoteCurrencies(pairs []string) string {
	quotes := make([]string, 0, len(pairs))
	for _, p := range pairs {
		_, quote := splitPair(p)
		quotes = append(quotes, quote)
	}
	return strings.Join(quotes, ",")
}

func firstBaseCurrency(pairs []string) string {
	if len(pairs) == 0 {
		return ""
	}
	base, _ := splitPair(pairs[0])
	return base
}

// botType turns "Bot::SingleBot" into "SingleBot".
func botType(t string) string {
	if _, after, ok := strings.Cut(t, "::"); ok {
		return after
	}
	return t
}
