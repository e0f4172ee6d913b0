// backend-go/internal/repository/order_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
)

type OrderRepository interface {
	GetOrderDefaults(ctx context.Context) (*domain.OrderDefaults, error)
	GetCandidateLines(ctx context.Context, filter domain.CandidateFilter) ([]domain.OrderLine, error)

	// Orders are written together with the log entries describing the change
	CreateOrder(ctx context.Context, order *domain.Order, logs []domain.OrderLog) (int64, error)
	UpdateOrder(ctx context.Context, order *domain.Order, logs []domain.OrderLog) error
	UpdateStatus(ctx context.Context, orderID int64, status int, entry domain.OrderLog) error
	DeleteOrder(ctx context.Context, id int64) error

	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderSummary, error)
	ListLogs(ctx context.Context, orderID int64) ([]domain.OrderLog, error)
}
