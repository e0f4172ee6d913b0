// backend-go/internal/domain/order.go
package domain

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is one item row of a purchase order's detail grid
type OrderLine struct {
	ItemCode             string          `json:"item_code"`
	ItemName             string          `json:"item_name"`
	DaysStockDesired     int             `json:"days_stock"`
	PackSize             int             `json:"pack_size"`
	LastPurchaseDate     *time.Time      `json:"date_last_purchase"`
	LastPurchaseQuantity decimal.Decimal `json:"quantity_last_purchase"`
	SalePrediction       decimal.Decimal `json:"sale_prediction"`
	StockAvailable       decimal.Decimal `json:"stock_available"`
	QuantityOrder        decimal.Decimal `json:"quantity_order"`
	Bonus                decimal.Decimal `json:"bonus"`
	Discount             decimal.Decimal `json:"discount"`
	PurchasePrice        decimal.Decimal `json:"purchase_price"`
}

// PredictionWindow is the date range the sales forecast covers
type PredictionWindow struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// DaysDiff returns the window length in whole days, rounded up.
// A window with a missing bound has no length.
func (w PredictionWindow) DaysDiff() int {
	if w.StartDate.IsZero() || w.EndDate.IsZero() {
		return 0
	}
	return int(math.Ceil(w.EndDate.Sub(w.StartDate).Hours() / 24))
}

// Valid reports whether day-based computations are meaningful for the window
func (w PredictionWindow) Valid() bool {
	return w.DaysDiff() > 0
}

// Severity tiers how far an ordered quantity deviates from the suggestion
type Severity string

const (
	SeverityNormal  Severity = "normal"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Order is a purchase order header together with its lines
type Order struct {
	ID               int64            `json:"id"`
	SupplierID       int64            `json:"supplier"`
	SupplierName     string           `json:"supplier_name"`
	StoreID          int64            `json:"store"`
	StoreName        string           `json:"store_name"`
	SectionID        int64            `json:"section"`
	SubsectionID     *int64           `json:"subsection"`
	Window           PredictionWindow `json:"-"`
	StatusID         int              `json:"status_id"`
	StatusName       string           `json:"status_name"`
	BuyerID          int64            `json:"buyer"`
	Date             time.Time        `json:"date"`
	Observation      string           `json:"observation"`
	OCNumbersPending []string         `json:"oc_numbers_pending"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	Lines            []OrderLine      `json:"-"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// OrderSummary is a row of the order listing
type OrderSummary struct {
	ID           int64           `json:"id" db:"id"`
	SupplierName string          `json:"supplier_name" db:"supplier_name"`
	StoreName    string          `json:"store_name" db:"store_name"`
	SectionName  string          `json:"section_name" db:"section_name"`
	BuyerID      int64           `json:"buyer" db:"buyer_id"`
	StatusID     int             `json:"status_id" db:"status_id"`
	StatusName   string          `json:"status_name" db:"-"`
	Date         time.Time       `json:"date" db:"date"`
	TotalAmount  decimal.Decimal `json:"total_amount" db:"total_amount"`
}

// OrderFilter narrows the order listing. Zero values mean "any".
// PendingOnly keeps the orders still awaiting approval.
type OrderFilter struct {
	SupplierID  int64
	SectionID   int64
	BuyerID     int64
	StatusID    int
	PendingOnly bool
	Page        int
	PageSize    int
}

// CandidateFilter selects the items offered when a new order is started
type CandidateFilter struct {
	StoreID      int64
	SupplierID   int64
	SectionID    int64
	SubsectionID *int64
	Window       PredictionWindow
}

// Actor identifies who is acting on an order
type Actor struct {
	ID     int64
	Name   string
	Groups []string
}

// HasGroup reports whether the actor belongs to the named group (case-insensitive)
func (a Actor) HasGroup(name string) bool {
	for _, g := range a.Groups {
		if strings.EqualFold(strings.TrimSpace(g), name) {
			return true
		}
	}
	return false
}

// LogAction classifies order log entries
type LogAction string

const (
	LogActionCreated       LogAction = "created"
	LogActionStatusChanged LogAction = "status_changed"
	LogActionItemModified  LogAction = "item_modified"
)

// OrderLog is an audit entry recorded against an order
type OrderLog struct {
	ID             int64     `json:"id" db:"id"`
	OrderID        int64     `json:"order" db:"order_id"`
	Action         LogAction `json:"action" db:"action"`
	UserID         *int64    `json:"user" db:"user_id"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
	PreviousStatus *int      `json:"previous_status" db:"previous_status_id"`
	NewStatus      *int      `json:"new_status" db:"new_status_id"`
	ItemCode       string    `json:"item" db:"item_code"`
	FieldChanged   string    `json:"field_changed" db:"field_changed"`
	PreviousValue  string    `json:"previous_value" db:"previous_value"`
	NewValue       string    `json:"new_value" db:"new_value"`
	Notes          string    `json:"notes" db:"notes"`
}

// Store is a shop that orders are placed for
type Store struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}

// Section groups items for purchasing; subsections refine it
type Section struct {
	ID          int64        `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Subsections []Subsection `json:"subsections" db:"-"`
}

type Subsection struct {
	ID        int64  `json:"id" db:"id"`
	SectionID int64  `json:"section_id" db:"section_id"`
	Name      string `json:"name" db:"name"`
}

// OrderDefaults are the choices offered when a new order is started
type OrderDefaults struct {
	Stores   []Store   `json:"stores"`
	Sections []Section `json:"sections"`
}
