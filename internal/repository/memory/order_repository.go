// Package memory holds in-process repository test doubles.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/repository"
)

var _ repository.OrderRepository = (*OrderRepository)(nil)

type OrderRepository struct {
	mu         sync.Mutex
	orders     map[int64]*domain.Order
	logs       map[int64][]domain.OrderLog
	defaults   domain.OrderDefaults
	candidates []domain.OrderLine
	queries    int
	nextID     int64
	nextLogID  int64
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[int64]*domain.Order),
		logs:   make(map[int64][]domain.OrderLog),
	}
}

// SetDefaults replaces the stores and sections offered for new orders
func (r *OrderRepository) SetDefaults(d domain.OrderDefaults) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults = d
}

// SetCandidates replaces the lines returned for every candidate filter
func (r *OrderRepository) SetCandidates(lines []domain.OrderLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates = append([]domain.OrderLine(nil), lines...)
}

// CandidateQueries counts GetCandidateLines calls
func (r *OrderRepository) CandidateQueries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries
}

// SetStatus forces an order's status without logging
func (r *OrderRepository) SetStatus(id int64, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		o.StatusID = status
	}
}

// Logs returns every stored entry of an order in insertion order
func (r *OrderRepository) Logs(orderID int64) []domain.OrderLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.OrderLog(nil), r.logs[orderID]...)
}

func (r *OrderRepository) GetOrderDefaults(ctx context.Context) (*domain.OrderDefaults, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.defaults
	return &d, nil
}

func (r *OrderRepository) GetCandidateLines(ctx context.Context, filter domain.CandidateFilter) ([]domain.OrderLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries++
	return append([]domain.OrderLine(nil), r.candidates...), nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order, logs []domain.OrderLog) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := cloneOrder(order)
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.orders[stored.ID] = stored
	r.appendLogs(stored.ID, logs)

	order.ID = stored.ID
	return stored.ID, nil
}

func (r *OrderRepository) UpdateOrder(ctx context.Context, order *domain.Order, logs []domain.OrderLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	stored := cloneOrder(order)
	stored.UpdatedAt = time.Now()
	r.orders[order.ID] = stored
	r.appendLogs(order.ID, logs)
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status int, entry domain.OrderLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.StatusID = status
	o.StatusName = domain.OrderStatusLabel(status)
	r.appendLogs(orderID, []domain.OrderLog{entry})
	return nil
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.orders, id)
	delete(r.logs, id)
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.OrderSummary, 0, len(r.orders))
	for _, o := range r.orders {
		switch {
		case filter.SupplierID > 0 && o.SupplierID != filter.SupplierID,
			filter.SectionID > 0 && o.SectionID != filter.SectionID,
			filter.BuyerID > 0 && o.BuyerID != filter.BuyerID,
			filter.StatusID > 0 && o.StatusID != filter.StatusID,
			filter.PendingOnly && !domain.AwaitingApproval(o.StatusID):
			continue
		}
		out = append(out, domain.OrderSummary{
			ID:           o.ID,
			SupplierName: o.SupplierName,
			StoreName:    o.StoreName,
			BuyerID:      o.BuyerID,
			StatusID:     o.StatusID,
			StatusName:   domain.OrderStatusLabel(o.StatusID),
			Date:         o.Date,
			TotalAmount:  o.TotalAmount,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(out) {
			return []domain.OrderSummary{}, nil
		}
		end := start + filter.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (r *OrderRepository) ListLogs(ctx context.Context, orderID int64) ([]domain.OrderLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logs := append([]domain.OrderLog(nil), r.logs[orderID]...)
	// newest first, like the SQL listing
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].ID > logs[j].ID })
	return logs, nil
}

func (r *OrderRepository) appendLogs(orderID int64, logs []domain.OrderLog) {
	for _, l := range logs {
		r.nextLogID++
		l.ID = r.nextLogID
		l.OrderID = orderID
		if l.Timestamp.IsZero() {
			l.Timestamp = time.Now()
		}
		r.logs[orderID] = append(r.logs[orderID], l)
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Lines = append([]domain.OrderLine(nil), o.Lines...)
	c.OCNumbersPending = append([]string(nil), o.OCNumbersPending...)
	return &c
}
