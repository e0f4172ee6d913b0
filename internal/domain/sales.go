package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySale is the quantity of an item sold at a store on one day
type DailySale struct {
	Date     time.Time       `db:"date"`
	Quantity decimal.Decimal `db:"quantity"`
}

// WeeklySales is one bar of the eight-week sales chart
type WeeklySales struct {
	Week  string          `json:"week"`
	Total decimal.Decimal `json:"total"`
}

// ItemSalesStats summarises an item's recent sales at one store. The
// summary figures are rounded to two decimals and encoded as JSON numbers.
type ItemSalesStats struct {
	ItemCode               string        `json:"item_code"`
	ItemName               string        `json:"item_name"`
	StoreID                int64         `json:"store"`
	TotalLast30Days        float64       `json:"total_last_30_days"`
	AverageLast30Days      float64       `json:"average_last_30_days"`
	AverageDailyLast8Weeks float64       `json:"average_daily_last_8_weeks"`
	WeeklySalesLast8Weeks  []WeeklySales `json:"weekly_sales_last_8_weeks"`
}
