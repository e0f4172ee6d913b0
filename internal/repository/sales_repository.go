package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
)

type SalesRepository interface {
	// GetItemName returns domain.ErrItemNotFound for unknown codes
	GetItemName(ctx context.Context, itemCode string) (string, error)
	// DailySales returns the per-day totals of an item at a store from since onwards
	DailySales(ctx context.Context, storeID int64, itemCode string, since time.Time) ([]domain.DailySale, error)
}
