package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/repository"
	"github.com/shopspring/decimal"
)

var _ repository.SalesRepository = (*SalesRepository)(nil)

type saleKey struct {
	storeID  int64
	itemCode string
}

type SalesRepository struct {
	mu    sync.Mutex
	items map[string]string
	sales map[saleKey]map[string]domain.DailySale
}

func NewSalesRepository() *SalesRepository {
	return &SalesRepository{
		items: make(map[string]string),
		sales: make(map[saleKey]map[string]domain.DailySale),
	}
}

func (r *SalesRepository) SetItem(code, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[code] = name
}

// AddSale adds quantity to the item's total for that day
func (r *SalesRepository) AddSale(storeID int64, itemCode string, day time.Time, quantity decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := saleKey{storeID: storeID, itemCode: itemCode}
	if r.sales[key] == nil {
		r.sales[key] = make(map[string]domain.DailySale)
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	d := day.Format("2006-01-02")
	sale := r.sales[key][d]
	sale.Date = day
	sale.Quantity = sale.Quantity.Add(quantity)
	r.sales[key][d] = sale
}

func (r *SalesRepository) GetItemName(ctx context.Context, itemCode string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.items[itemCode]
	if !ok {
		return "", domain.ErrItemNotFound
	}
	return name, nil
}

func (r *SalesRepository) DailySales(ctx context.Context, storeID int64, itemCode string, since time.Time) ([]domain.DailySale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.DailySale
	for _, sale := range r.sales[saleKey{storeID: storeID, itemCode: itemCode}] {
		if !sale.Date.Before(since) {
			out = append(out, sale)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
