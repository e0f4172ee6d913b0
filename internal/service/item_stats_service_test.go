package service

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeItemStats(t *testing.T) {
	today := day(2025, 3, 1)
	sales := []domain.DailySale{
		{Date: day(2025, 1, 4), Quantity: dec("100")}, // first day of the oldest week
		{Date: day(2025, 1, 30), Quantity: dec("4")},  // day 30 back counts as recent
		{Date: day(2025, 2, 20), Quantity: dec("10")},
		{Date: day(2025, 2, 28), Quantity: dec("5.5")},
		{Date: day(2025, 3, 1), Quantity: dec("3")}, // today: recent, but in no full week
	}

	stats := ComputeItemStats(today, sales)

	assert.Equal(t, 22.5, stats.TotalLast30Days)
	assert.Equal(t, 0.75, stats.AverageLast30Days)
	// (100 + 4 + 10 + 5.5) / 56
	assert.Equal(t, 2.13, stats.AverageDailyLast8Weeks)

	require.Len(t, stats.WeeklySalesLast8Weeks, 8)
	oldest := stats.WeeklySalesLast8Weeks[0]
	assert.Equal(t, "04/01-11/01", oldest.Week)
	assert.True(t, oldest.Total.Equal(dec("100")))

	latest := stats.WeeklySalesLast8Weeks[7]
	assert.Equal(t, "22/02-01/03", latest.Week)
	assert.True(t, latest.Total.Equal(dec("5.5")))

	empty := ComputeItemStats(today, nil)
	assert.Zero(t, empty.AverageDailyLast8Weeks)
	assert.Len(t, empty.WeeklySalesLast8Weeks, 8)
}

func TestItemStatsService(t *testing.T) {
	repo := memory.NewSalesRepository()
	repo.SetItem("A1", "Agua 500ml")
	repo.AddSale(1, "A1", day(2025, 2, 28), dec("6"))
	repo.AddSale(1, "A1", day(2025, 2, 28), dec("3"))
	repo.AddSale(2, "A1", day(2025, 2, 28), dec("50"))
	repo.AddSale(1, "A1", day(2024, 12, 1), dec("70"))

	// 02:00 UTC on March 1st is still February 28th at UTC-3
	loc := time.FixedZone("PYT", -3*60*60)
	svc := NewItemStatsService(repo, loc, func() time.Time { return time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC) })

	stats, err := svc.ItemStats(context.Background(), 1, " A1 ")
	require.NoError(t, err)
	assert.Equal(t, "A1", stats.ItemCode)
	assert.Equal(t, "Agua 500ml", stats.ItemName)
	assert.Equal(t, 9.0, stats.TotalLast30Days)
	assert.Equal(t, 0.3, stats.AverageLast30Days)
	// today is the 28th, so its sales fall outside every full week
	assert.Zero(t, stats.AverageDailyLast8Weeks)

	_, err = svc.ItemStats(context.Background(), 1, "ZZ")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = svc.ItemStats(context.Background(), 0, "")
	var verr domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr, "store")
	assert.Contains(t, verr, "item")
}
