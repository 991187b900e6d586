package models

import "time"

type SyncMode string

const (
	SyncModeAuto SyncMode = "autoSync"
	SyncModeFull SyncMode = "full"
)

type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "Active"
	OrderStatusFilled    OrderStatus = "Filled"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

const OrderTypeManualSafety = "Manual Safety"

// APIBot is a bot record as returned by the remote listing, already coerced to fixed types.
type APIBot struct {
	ID                          int64
	AccountID                   int64
	AccountName                 string
	Name                        string
	IsEnabled                   bool
	Type                        string
	Strategy                    string
	Pairs                       []string
	MaxSafetyOrders             int
	ActiveSafetyOrdersCount     int
	MaxActiveDeals              int
	ActiveDealsCount            int
	TakeProfit                  float64
	TakeProfitType              string
	BaseOrderVolume             float64
	BaseOrderVolumeType         string
	SafetyOrderVolume           float64
	SafetyOrderVolumeType       string
	SafetyOrderStepPercentage   float64
	MartingaleCoefficient       float64
	MartingaleVolumeCoefficient float64
	MartingaleStepCoefficient   float64
	StopLossPercentage          float64
	TrailingDeviation           float64
	ProfitCurrency              string
	FinishedDealsProfitUSD      float64
	FinishedDealsCount          int
	ActiveDealsUSDProfit        float64
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

type APIDeal struct {
	ID                               int64      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	BotID                            int64      `json:"bot_id"`
	BotName                          string     `json:"bot_name"`
	AccountID                        int64      `json:"account_id"`
	Pair                             string     `json:"pair"`
	Status                           string     `json:"status"`
	CreatedAt                        time.Time  `json:"created_at" gorm:"autoCreateTime:false"`
	UpdatedAt                        time.Time  `json:"updated_at" gorm:"autoUpdateTime:false"`
	ClosedAt                         *time.Time `json:"closed_at"`
	BoughtVolume                     float64    `json:"bought_volume"`
	BoughtAmount                     float64    `json:"bought_amount"`
	BoughtAveragePrice               float64    `json:"bought_average_price"`
	CurrentPrice                     float64    `json:"current_price"`
	BaseOrderVolume                  float64    `json:"base_order_volume"`
	SafetyOrderVolume                float64    `json:"safety_order_volume"`
	MartingaleVolumeCoefficient      float64    `json:"martingale_volume_coefficient"`
	MaxSafetyOrders                  int        `json:"max_safety_orders"`
	CompletedSafetyOrdersCount       int        `json:"completed_safety_orders_count"`
	CompletedManualSafetyOrdersCount int        `json:"completed_manual_safety_orders_count"`
	ActiveSafetyOrdersCount          int        `json:"active_safety_orders_count"`
	ActiveManualSafetyOrders         int        `json:"active_manual_safety_orders"`
	CurrentActiveSafetyOrders        int        `json:"current_active_safety_orders"`
	TakeProfit                       float64    `json:"take_profit"`
	FinalProfit                      float64    `json:"final_profit"`
	FinalProfitPercentage            float64    `json:"final_profit_percentage"`
	ActualProfit                     float64    `json:"actual_profit"`
	ActualUSDProfit                  float64    `json:"actual_usd_profit"`
	USDFinalProfit                   float64    `json:"usd_final_profit"`
	FromCurrency                     string     `json:"from_currency"`
	ToCurrency                       string     `json:"to_currency"`
}

func (d APIDeal) IsOpen() bool {
	return d.ClosedAt == nil
}

type MarketOrder struct {
	OrderID           string      `json:"order_id"`
	DealOrderType     string      `json:"deal_order_type"`
	StatusString      OrderStatus `json:"status_string"`
	OrderType         string      `json:"order_type"`
	Quantity          float64     `json:"quantity"`
	QuantityRemaining float64     `json:"quantity_remaining"`
	Total             float64     `json:"total"`
	Rate              float64     `json:"rate"`
	AveragePrice      float64     `json:"average_price"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type MarketOrders struct {
	Filled []MarketOrder `json:"filled"`
	Failed []MarketOrder `json:"failed"`
	Active []MarketOrder `json:"active"`
}

type APIAccount struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ExchangeName string `json:"exchange_name"`
	MarketCode   string `json:"market_code"`
}

type AccountTableRow struct {
	AccountID    int64   `json:"account_id"`
	CurrencyCode string  `json:"currency_code"`
	CurrencySlug string  `json:"currency_slug"`
	Percentage   float64 `json:"percentage"`
	Position     float64 `json:"position"`
	OnOrders     float64 `json:"on_orders"`
	BTCValue     float64 `json:"btc_value"`
	USDValue     float64 `json:"usd_value"`
}

type AccountSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Persisted table names, addressed by the sink.
const (
	TableBots     = "bots"
	TableDeals    = "deals"
	TableAccounts = "accountData"
)
