package models

import "time"

// Bot is the persisted, normalized bot row.
type Bot struct {
	ID                          int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProfileID                   string    `json:"profile_id" gorm:"index"`
	Origin                      string    `json:"origin"`
	AccountID                   int64     `json:"account_id"`
	AccountName                 string    `json:"account_name"`
	Name                        string    `json:"name"`
	Pairs                       string    `json:"pairs"`
	FromCurrency                string    `json:"from_currency"`
	Type                        string    `json:"type"`
	Strategy                    string    `json:"strategy"`
	IsEnabled                   bool      `json:"is_enabled"`
	ActiveDealsCount            int       `json:"active_deals_count"`
	ActiveDealsUSDProfit        float64   `json:"active_deals_usd_profit"`
	ActiveSafetyOrdersCount     int       `json:"active_safety_orders_count"`
	BaseOrderVolume             float64   `json:"base_order_volume"`
	BaseOrderVolumeType         string    `json:"base_order_volume_type"`
	SafetyOrderVolume           float64   `json:"safety_order_volume"`
	SafetyOrderVolumeType       string    `json:"safety_order_volume_type"`
	SafetyOrderStepPercentage   float64   `json:"safety_order_step_percentage"`
	MartingaleCoefficient       float64   `json:"martingale_coefficient"`
	MartingaleVolumeCoefficient float64   `json:"martingale_volume_coefficient"`
	MartingaleStepCoefficient   float64   `json:"martingale_step_coefficient"`
	MaxActiveDeals              int       `json:"max_active_deals"`
	MaxSafetyOrders             int       `json:"max_safety_orders"`
	MaxFunds                    float64   `json:"max_funds"`
	MaxFundsPerDeal             float64   `json:"max_funds_per_deal"`
	MaxInactiveFunds            float64   `json:"max_inactive_funds"`
	EnabledInactiveFunds        float64   `json:"enabled_inactive_funds"`
	EnabledActiveFunds          float64   `json:"enabled_active_funds"`
	FinishedDealsCount          int       `json:"finished_deals_count"`
	FinishedDealsProfitUSD      float64   `json:"finished_deals_profit_usd"`
	ProfitCurrency              string    `json:"profit_currency"`
	StopLossPercentage          float64   `json:"stop_loss_percentage"`
	TakeProfit                  float64   `json:"take_profit"`
	TakeProfitType              string    `json:"take_profit_type"`
	TrailingDeviation           float64   `json:"trailing_deviation"`
	PriceDeviation              float64   `json:"price_deviation"`
	Drawdown                    float64   `json:"drawdown"`
	MaxCoveragePercent          *float64  `json:"max_coverage_percent"`
	CreatedAt                   time.Time `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt                   time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

// Deal is the persisted deal row: the raw deal plus derived fields.
type Deal struct {
	APIDeal   `gorm:"embedded"`
	ProfileID string `json:"profile_id" gorm:"index"`

	Currency                string   `json:"currency"`
	DealHours               float64  `json:"deal_hours"`
	RealizedActualProfitUSD *float64 `json:"realized_actual_profit_usd"`
	MaxDealFunds            *float64 `json:"max_deal_funds"`
	ProfitPercent           *float64 `json:"profit_percent"`
	ImpactFactor            *float64 `json:"impact_factor"`
	ClosedAtMillis          *int64   `json:"closed_at_millis"`
}

// AccountRow is one (account, currency) position.
type AccountRow struct {
	ID           string  `json:"id" gorm:"primaryKey"`
	ProfileID    string  `json:"profile_id" gorm:"index"`
	AccountID    int64   `json:"account_id"`
	AccountName  string  `json:"account_name"`
	ExchangeName string  `json:"exchange_name"`
	MarketCode   string  `json:"market_code"`
	CurrencyCode string  `json:"currency_code"`
	Percentage   float64 `json:"percentage"`
	Position     float64 `json:"position"`
	OnOrders     float64 `json:"on_orders"`
	BTCValue     float64 `json:"btc_value"`
	USDValue     float64 `json:"usd_value"`
}
