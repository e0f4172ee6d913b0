package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) *salesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) GetItemName(ctx context.Context, itemCode string) (string, error) {
	var name string
	err := sqlx.GetContext(ctx, r.db, &name, `SELECT name FROM items WHERE code = $1`, itemCode)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrItemNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load item %s: %w", itemCode, err)
	}
	return name, nil
}

func (r *salesRepository) DailySales(ctx context.Context, storeID int64, itemCode string, since time.Time) ([]domain.DailySale, error) {
	query := `
		SELECT date, SUM(quantity) AS quantity
		FROM sales
		WHERE store_id = $1 AND item_code = $2 AND date >= $3
		GROUP BY date
		ORDER BY date
	`
	var sales []domain.DailySale
	if err := sqlx.SelectContext(ctx, r.db, &sales, query, storeID, itemCode, since.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("failed to load daily sales: %w", err)
	}
	return sales, nil
}
