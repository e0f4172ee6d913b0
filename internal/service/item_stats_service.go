package service

import (
	"context"
	"strings"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	statsRecentDays = 30
	statsWeeks      = 8
)

var (
	recentDaysDivisor = decimal.NewFromInt(statsRecentDays)
	weeksDaysDivisor  = decimal.NewFromInt(statsWeeks * 7)
)

// ItemStatsService reports recent sales of an item shown next to the order grid
type ItemStatsService struct {
	repo     repository.SalesRepository
	location *time.Location
	now      func() time.Time
}

func NewItemStatsService(repo repository.SalesRepository, loc *time.Location, now func() time.Time) *ItemStatsService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ItemStatsService{repo: repo, location: loc, now: now}
}

// ItemStats summarises the last 30 days and the last 8 weeks of sales of an
// item at a store
func (s *ItemStatsService) ItemStats(ctx context.Context, storeID int64, itemCode string) (*domain.ItemSalesStats, error) {
	itemCode = strings.TrimSpace(itemCode)
	verr := domain.ValidationError{}
	if storeID <= 0 {
		verr.Add("store", "store is required")
	}
	if itemCode == "" {
		verr.Add("item", "item is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	name, err := s.repo.GetItemName(ctx, itemCode)
	if err != nil {
		return nil, err
	}

	today := s.today()
	sales, err := s.repo.DailySales(ctx, storeID, itemCode, today.AddDate(0, 0, -statsWeeks*7))
	if err != nil {
		return nil, err
	}

	stats := ComputeItemStats(today, sales)
	stats.ItemCode = itemCode
	stats.ItemName = name
	stats.StoreID = storeID
	return &stats, nil
}

func (s *ItemStatsService) today() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ComputeItemStats derives the summary from daily totals. Weeks run back from
// today, oldest first, each covering [start, end) and labelled "dd/mm-dd/mm".
func ComputeItemStats(today time.Time, sales []domain.DailySale) domain.ItemSalesStats {
	recentFrom := today.AddDate(0, 0, -statsRecentDays)

	total30 := decimal.Zero
	for _, sale := range sales {
		if !sale.Date.Before(recentFrom) {
			total30 = total30.Add(sale.Quantity)
		}
	}

	weekly := make([]domain.WeeklySales, statsWeeks)
	totalWeeks := decimal.Zero
	for i := 0; i < statsWeeks; i++ {
		start := today.AddDate(0, 0, -7*(i+1))
		end := today.AddDate(0, 0, -7*i)

		week := decimal.Zero
		for _, sale := range sales {
			if !sale.Date.Before(start) && sale.Date.Before(end) {
				week = week.Add(sale.Quantity)
			}
		}
		totalWeeks = totalWeeks.Add(week)

		weekly[statsWeeks-1-i] = domain.WeeklySales{
			Week:  start.Format("02/01") + "-" + end.Format("02/01"),
			Total: week.Round(2),
		}
	}

	return domain.ItemSalesStats{
		TotalLast30Days:        total30.Round(2).InexactFloat64(),
		AverageLast30Days:      total30.Div(recentDaysDivisor).Round(2).InexactFloat64(),
		AverageDailyLast8Weeks: totalWeeks.Div(weeksDaysDivisor).Round(2).InexactFloat64(),
		WeeklySalesLast8Weeks:  weekly,
	}
}
