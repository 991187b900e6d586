package engine

import (
	"math"
	"time"

	"dcaportfolio/internal/models"

	"github.com/shopspring/decimal"
)

// impactVolumeScale and impactVolumeExponent shape the volume term of the impact factor.
const (
	impactVolumeScale    = 415.0
	impactVolumeExponent = 0.618
)

type SafetyOrder struct {
	Volume       float64
	TotalVolume  float64
	Step         float64
	TotalPercent float64
}

// CalcSafetyOrders builds the safety-order ladder: volumes scale by the volume
// coefficient and steps by the step coefficient.
func CalcSafetyOrders(soCount int, soVolume, soVolumeMultiplier, soStepPercent, soStepMultiplier float64) []SafetyOrder {
	var orders []SafetyOrder

	totalVolume := 0.0
	totalPercent := 0.0

	for i := 0; i < soCount; i++ {
		volume := soVolume * math.Pow(soVolumeMultiplier, float64(i))
		step := soStepPercent * math.Pow(soStepMultiplier, float64(i))
		totalVolume += volume
		totalPercent += step

		orders = append(orders, SafetyOrder{
			Volume:       volume,
			TotalVolume:  totalVolume,
			Step:         step,
			TotalPercent: totalPercent,
		})
	}
	return orders
}

func CalcDealMaxFundsBot(maxSafetyOrders int, baseOrderVolume, safetyOrderVolume, volumeMultiplier float64) float64 {
	ladder := CalcSafetyOrders(maxSafetyOrders, safetyOrderVolume, volumeMultiplier, 0, 0)
	if len(ladder) == 0 {
		return baseOrderVolume
	}
	return baseOrderVolume + ladder[len(ladder)-1].TotalVolume
}

func CalcMaxBotFunds(maxDealFunds float64, maxActiveDeals int) float64 {
	return maxDealFunds * float64(maxActiveDeals)
}

func CalcMaxInactiveFunds(maxDealFunds float64, maxActiveDeals, activeDeals int) float64 {
	return CalcMaxBotFunds(maxDealFunds, maxActiveDeals) - maxDealFunds*float64(activeDeals)
}

// CalcPriceDeviation is the cumulative drop covered by the whole ladder, in percent.
func CalcPriceDeviation(maxSafetyOrders int, stepPercent, stepMultiplier float64) float64 {
	ladder := CalcSafetyOrders(maxSafetyOrders, 0, 0, stepPercent, stepMultiplier)
	if len(ladder) == 0 {
		return 0
	}
	return ladder[len(ladder)-1].TotalPercent
}

func CalcDealHours(createdAt time.Time, closedAt *time.Time, now time.Time) float64 {
	end := now
	if closedAt != nil {
		end = *closedAt
	}
	return float64(end.UnixMilli()-createdAt.UnixMilli()) / float64(time.Hour/time.Millisecond)
}

// CalcMaxSafetyOrders compensates for the platform reporting fewer max safety orders
// than the deal has actually used.
func CalcMaxSafetyOrders(completed, currentActive, reported int) int {
	return max(completed+currentActive, reported)
}

// CalcMaxDealFunds is what an open deal can still draw: what was bought, the remaining
// ladder and the open manual safety orders.
func CalcMaxDealFunds(boughtVolume, safetyOrderVolume, volumeMultiplier float64, maxSafetyOrders, completedSafetyOrders int, activeManual []models.MarketOrder) float64 {
	total := boughtVolume
	ladder := CalcSafetyOrders(maxSafetyOrders, safetyOrderVolume, volumeMultiplier, 0, 0)
	for i := completedSafetyOrders; i < len(ladder); i++ {
		total += ladder[i].Volume
	}
	for _, order := range activeManual {
		total += order.Rate * order.Quantity
	}
	return total
}

// CalcProfitPercent returns the per-hour profit share rounded to three places.
func CalcProfitPercent(finalProfitPercentage, dealHours float64) *float64 {
	if dealHours == 0 {
		return nil
	}
	v, _ := decimal.NewFromFloat(finalProfitPercentage).
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromFloat(dealHours)).
		Round(3).
		Float64()
	return &v
}

func CalcImpactFactor(avgPrice, currentPrice, boughtVolume, actualUSDProfit, actualProfit float64) *float64 {
	if avgPrice == 0 || boughtVolume == 0 || actualProfit == 0 || actualUSDProfit == 0 {
		return nil
	}
	drift := (avgPrice - currentPrice) / avgPrice
	volume := impactVolumeScale / math.Pow(boughtVolume, impactVolumeExponent)
	ratio := actualUSDProfit / actualProfit
	v := drift * volume / ratio
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
