package models

import (
	"time"

	"github.com/google/uuid"
)

// Stockout recommendations, ordered by urgency. First matching rule wins.
const (
	RecommendReorderNow  = "reorder_now"
	RecommendReorderSoon = "reorder_soon"
	RecommendMonitor     = "monitor"
	RecommendNoAction    = "no_action"
)

// ReorderPointResult is the output of the reorder-point calculation.
type ReorderPointResult struct {
	SupplyID        uuid.UUID `json:"supply_id"`
	ReorderPoint    int       `json:"reorder_point"`
	ReorderQuantity int       `json:"reorder_quantity"`
	AvgDailyUsage   float64   `json:"avg_daily_usage"`
	LeadTimeDays    int       `json:"lead_time_days"`
	SafetyStock     int       `json:"safety_stock"`
}

// StockoutPrediction is the output of predict-stockout. When there is no
// consumption history the date and days fields are nil and Reason explains
// why; a nil date never means "never runs out".
type StockoutPrediction struct {
	SupplyID              uuid.UUID  `json:"supply_id"`
	DaysUntilStockout     *float64   `json:"days_until_stockout"`
	PredictedStockoutDate *time.Time `json:"predicted_stockout_date"`
	Recommendation        string     `json:"recommendation"`
	Reason                *string    `json:"reason,omitempty"`
	AvgDailyUsage         float64    `json:"avg_daily_usage"`
}

// Consumption trends over the analysis window.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// DailyUsage is one point of the consumption series.
type DailyUsage struct {
	Date     time.Time `json:"date"`
	Quantity int       `json:"quantity"`
}

// UsageAnalysis summarizes consumption over a trailing window.
type UsageAnalysis struct {
	SupplyID        uuid.UUID    `json:"supply_id"`
	WindowDays      int          `json:"window_days"`
	TotalConsumed   int          `json:"total_consumed"`
	AvgDailyUsage   float64      `json:"avg_daily_usage"`
	Trend           string       `json:"trend"`
	TrendPercentage float64      `json:"trend_percentage"`
	TurnoverRate    float64      `json:"turnover_rate"`
	DaysOfStock     *float64     `json:"days_of_stock"`
	Series          []DailyUsage `json:"series"`
	StockStatus     string       `json:"stock_status"`
}
