// backend-go/internal/repository/postgres/order_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type orderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *orderRepository {
	return &orderRepository{db: db}
}

type orderRow struct {
	ID               int64           `db:"id"`
	SupplierID       int64           `db:"supplier_id"`
	SupplierName     string          `db:"supplier_name"`
	StoreID          int64           `db:"store_id"`
	StoreName        string          `db:"store_name"`
	SectionID        int64           `db:"section_id"`
	SubsectionID     sql.NullInt64   `db:"subsection_id"`
	StartDateSale    time.Time       `db:"start_date_sale"`
	EndDateSale      time.Time       `db:"end_date_sale"`
	StatusID         int             `db:"status_id"`
	BuyerID          sql.NullInt64   `db:"buyer_id"`
	Date             time.Time       `db:"date"`
	Observation      string          `db:"observation"`
	OCNumbersPending pq.StringArray  `db:"oc_numbers_pending"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r orderRow) toDomain() *domain.Order {
	order := &domain.Order{
		ID:               r.ID,
		SupplierID:       r.SupplierID,
		SupplierName:     r.SupplierName,
		StoreID:          r.StoreID,
		StoreName:        r.StoreName,
		SectionID:        r.SectionID,
		Window:           domain.PredictionWindow{StartDate: r.StartDateSale, EndDate: r.EndDateSale},
		StatusID:         r.StatusID,
		StatusName:       domain.OrderStatusLabel(r.StatusID),
		BuyerID:          r.BuyerID.Int64,
		Date:             r.Date,
		Observation:      r.Observation,
		OCNumbersPending: []string(r.OCNumbersPending),
		TotalAmount:      r.TotalAmount,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.SubsectionID.Valid {
		id := r.SubsectionID.Int64
		order.SubsectionID = &id
	}
	return order
}

type lineRow struct {
	OrderID              int64           `db:"order_id"`
	ItemCode             string          `db:"item_code"`
	ItemName             string          `db:"item_name"`
	DaysStock            int             `db:"days_stock"`
	PackSize             int             `db:"pack_size"`
	DateLastPurchase     sql.NullTime    `db:"date_last_purchase"`
	QuantityLastPurchase decimal.Decimal `db:"quantity_last_purchase"`
	SalePrediction       decimal.Decimal `db:"sale_prediction"`
	StockAvailable       decimal.Decimal `db:"stock_available"`
	QuantityOrder        decimal.Decimal `db:"quantity_order"`
	Bonus                decimal.Decimal `db:"bonus"`
	Discount             decimal.Decimal `db:"discount"`
	PurchasePrice        decimal.Decimal `db:"purchase_price"`
}

func (r lineRow) toDomain() domain.OrderLine {
	line := domain.OrderLine{
		ItemCode:             r.ItemCode,
		ItemName:             r.ItemName,
		DaysStockDesired:     r.DaysStock,
		PackSize:             r.PackSize,
		LastPurchaseQuantity: r.QuantityLastPurchase,
		SalePrediction:       r.SalePrediction,
		StockAvailable:       r.StockAvailable,
		QuantityOrder:        r.QuantityOrder,
		Bonus:                r.Bonus,
		Discount:             r.Discount,
		PurchasePrice:        r.PurchasePrice,
	}
	if r.DateLastPurchase.Valid {
		d := r.DateLastPurchase.Time
		line.LastPurchaseDate = &d
	}
	return line
}

func newLineRow(orderID int64, line domain.OrderLine) lineRow {
	row := lineRow{
		OrderID:              orderID,
		ItemCode:             line.ItemCode,
		DaysStock:            line.DaysStockDesired,
		PackSize:             line.PackSize,
		QuantityLastPurchase: line.LastPurchaseQuantity,
		SalePrediction:       line.SalePrediction,
		StockAvailable:       line.StockAvailable,
		QuantityOrder:        line.QuantityOrder,
		Bonus:                line.Bonus,
		Discount:             line.Discount,
		PurchasePrice:        line.PurchasePrice,
	}
	if line.LastPurchaseDate != nil {
		row.DateLastPurchase = sql.NullTime{Time: *line.LastPurchaseDate, Valid: true}
	}
	return row
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func optionalID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

func (r *orderRepository) GetOrderDefaults(ctx context.Context) (*domain.OrderDefaults, error) {
	defaults := &domain.OrderDefaults{}

	if err := sqlx.SelectContext(ctx, r.db, &defaults.Stores,
		`SELECT id, code, name FROM stores ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to get stores: %w", err)
	}

	if err := sqlx.SelectContext(ctx, r.db, &defaults.Sections,
		`SELECT id, name FROM sections ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to get sections: %w", err)
	}

	var subsections []domain.Subsection
	if err := sqlx.SelectContext(ctx, r.db, &subsections,
		`SELECT id, section_id, name FROM subsections ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to get subsections: %w", err)
	}

	bySection := make(map[int64]int, len(defaults.Sections))
	for i, s := range defaults.Sections {
		bySection[s.ID] = i
	}
	for _, sub := range subsections {
		if i, ok := bySection[sub.SectionID]; ok {
			defaults.Sections[i].Subsections = append(defaults.Sections[i].Subsections, sub)
		}
	}

	return defaults, nil
}

// GetCandidateLines returns the enabled items of a supplier/section together
// with the store's stock control data and the forecast summed over the window
func (r *orderRepository) GetCandidateLines(ctx context.Context, filter domain.CandidateFilter) ([]domain.OrderLine, error) {
	query := `
		SELECT
			i.code AS item_code,
			i.name AS item_name,
			COALESCE(cs.days_stock, 0) AS days_stock,
			i.pack_size,
			cs.date_last_purchase,
			COALESCE(cs.quantity_last_purchase, 0) AS quantity_last_purchase,
			COALESCE(fc.quantity, 0) AS sale_prediction,
			COALESCE(cs.stock_available, 0) AS stock_available,
			0 AS quantity_order,
			0 AS bonus,
			0 AS discount,
			i.purchase_price
		FROM items i
		LEFT JOIN item_control_stock cs
			ON cs.item_code = i.code AND cs.store_id = $1
		LEFT JOIN (
			SELECT item_code, SUM(quantity) AS quantity
			FROM sales_forecasts
			WHERE store_id = $1 AND date >= $2 AND date <= $3
			GROUP BY item_code
		) fc ON fc.item_code = i.code
		WHERE i.supplier_id = $4
			AND i.section_id = $5
			AND NOT i.disabled
	`
	args := []interface{}{
		filter.StoreID,
		filter.Window.StartDate,
		filter.Window.EndDate,
		filter.SupplierID,
		filter.SectionID,
	}

	if filter.SubsectionID != nil {
		query += " AND i.subsection_id = $6"
		args = append(args, *filter.SubsectionID)
	}
	query += " ORDER BY i.code"

	var rows []lineRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get candidate lines: %w", err)
	}

	lines := make([]domain.OrderLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.toDomain())
	}

	log.Debug().
		Int64("store_id", filter.StoreID).
		Int64("supplier_id", filter.SupplierID).
		Int("lines", len(lines)).
		Msg("orders: loaded candidate lines")

	return lines, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order, logs []domain.OrderLog) (int64, error) {
	var id int64
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// 1. Header
		query := `
			INSERT INTO orders (
				supplier_id, store_id, section_id, subsection_id,
				start_date_sale, end_date_sale, status_id, buyer_id, date,
				observation, oc_numbers_pending, total_amount, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, query,
			order.SupplierID,
			order.StoreID,
			order.SectionID,
			nullableID(order.SubsectionID),
			order.Window.StartDate,
			order.Window.EndDate,
			order.StatusID,
			optionalID(order.BuyerID),
			order.Date,
			order.Observation,
			pq.StringArray(order.OCNumbersPending),
			order.TotalAmount,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		// 2. Lines
		if err := insertLines(ctx, tx, id, order.Lines); err != nil {
			return err
		}

		// 3. Logs
		return insertLogs(ctx, tx, id, logs)
	})
	if err != nil {
		return 0, err
	}

	order.ID = id
	return id, nil
}

func (r *orderRepository) UpdateOrder(ctx context.Context, order *domain.Order, logs []domain.OrderLog) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE orders SET
				start_date_sale = $2,
				end_date_sale = $3,
				observation = $4,
				oc_numbers_pending = $5,
				total_amount = $6,
				updated_at = NOW()
			WHERE id = $1
		`
		res, err := tx.ExecContext(ctx, query,
			order.ID,
			order.Window.StartDate,
			order.Window.EndDate,
			order.Observation,
			pq.StringArray(order.OCNumbersPending),
			order.TotalAmount,
		)
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrOrderNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
			return fmt.Errorf("failed to clear order items: %w", err)
		}
		if err := insertLines(ctx, tx, order.ID, order.Lines); err != nil {
			return err
		}

		return insertLogs(ctx, tx, order.ID, logs)
	})
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID int64, status int, entry domain.OrderLog) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE orders SET status_id = $2, updated_at = NOW() WHERE id = $1`,
			orderID, status)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrOrderNotFound
		}

		return insertLogs(ctx, tx, orderID, []domain.OrderLog{entry})
	})
}

// DeleteOrder removes the order; its items and logs go with it (ON DELETE CASCADE)
func (r *orderRepository) DeleteOrder(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrOrderNotFound
		}
		return nil
	})
}

func insertLines(ctx context.Context, tx *sqlx.Tx, orderID int64, lines []domain.OrderLine) error {
	query := `
		INSERT INTO order_items (
			order_id, item_code, days_stock, pack_size, date_last_purchase,
			quantity_last_purchase, sale_prediction, stock_available,
			quantity_order, bonus, discount, purchase_price
		) VALUES (
			:order_id, :item_code, :days_stock, :pack_size, :date_last_purchase,
			:quantity_last_purchase, :sale_prediction, :stock_available,
			:quantity_order, :bonus, :discount, :purchase_price
		)
	`
	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, line := range lines {
		if _, err := stmt.ExecContext(ctx, newLineRow(orderID, line)); err != nil {
			return fmt.Errorf("failed to insert order item %s: %w", line.ItemCode, err)
		}
	}
	return nil
}

func insertLogs(ctx context.Context, tx *sqlx.Tx, orderID int64, logs []domain.OrderLog) error {
	query := `
		INSERT INTO order_logs (
			order_id, action, user_id, timestamp, previous_status_id, new_status_id,
			item_code, field_changed, previous_value, new_value, notes
		) VALUES (
			:order_id, :action, :user_id, :timestamp, :previous_status_id, :new_status_id,
			:item_code, :field_changed, :previous_value, :new_value, :notes
		)
	`
	for _, entry := range logs {
		entry.OrderID = orderID
		if entry.Timestamp.IsZero() {
			entry.Timestamp = time.Now()
		}
		if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
			return fmt.Errorf("failed to insert order log: %w", err)
		}
	}
	return nil
}

const orderSelect = `
	SELECT
		o.id, o.supplier_id, sp.name AS supplier_name, o.store_id, st.name AS store_name,
		o.section_id, o.subsection_id, o.start_date_sale, o.end_date_sale, o.status_id,
		o.buyer_id, o.date, o.observation, o.oc_numbers_pending, o.total_amount,
		o.created_at, o.updated_at
	FROM orders o
	JOIN suppliers sp ON sp.id = o.supplier_id
	JOIN stores st ON st.id = o.store_id
`

func (r *orderRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var row orderRow
	err := sqlx.GetContext(ctx, r.db, &row, orderSelect+" WHERE o.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	order := row.toDomain()

	query := `
		SELECT
			oi.order_id, oi.item_code, i.name AS item_name, oi.days_stock, oi.pack_size,
			oi.date_last_purchase, oi.quantity_last_purchase, oi.sale_prediction,
			oi.stock_available, oi.quantity_order, oi.bonus, oi.discount, oi.purchase_price
		FROM order_items oi
		JOIN items i ON i.code = oi.item_code
		WHERE oi.order_id = $1
		ORDER BY oi.item_code
	`
	var lines []lineRow
	if err := sqlx.SelectContext(ctx, r.db, &lines, query, id); err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	order.Lines = make([]domain.OrderLine, 0, len(lines))
	for _, l := range lines {
		order.Lines = append(order.Lines, l.toDomain())
	}

	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderSummary, error) {
	where, args := buildOrderFilterClause(filter, "o", 1)
	paging, pagingArgs := buildPaging(filter, len(args)+1)
	args = append(args, pagingArgs...)

	query := `
		SELECT
			o.id, sp.name AS supplier_name, st.name AS store_name, se.name AS section_name,
			COALESCE(o.buyer_id, 0) AS buyer_id, o.status_id, o.date, o.total_amount
		FROM orders o
		JOIN suppliers sp ON sp.id = o.supplier_id
		JOIN stores st ON st.id = o.store_id
		JOIN sections se ON se.id = o.section_id
	` + where + " ORDER BY o.date DESC, o.id DESC" + paging

	var summaries []domain.OrderSummary
	if err := sqlx.SelectContext(ctx, r.db, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	for i := range summaries {
		summaries[i].StatusName = domain.OrderStatusLabel(summaries[i].StatusID)
	}

	return summaries, nil
}

func (r *orderRepository) ListLogs(ctx context.Context, orderID int64) ([]domain.OrderLog, error) {
	query := `
		SELECT
			id, order_id, action, user_id, timestamp, previous_status_id, new_status_id,
			item_code, field_changed, previous_value, new_value, notes
		FROM order_logs
		WHERE order_id = $1
		ORDER BY timestamp DESC, id DESC
	`
	var logs []domain.OrderLog
	if err := sqlx.SelectContext(ctx, r.db, &logs, query, orderID); err != nil {
		return nil, fmt.Errorf("failed to list order logs: %w", err)
	}
	return logs, nil
}
