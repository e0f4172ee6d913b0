// backend-go/internal/service/order_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/cache"
	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/reconcile"
	"github.com/andresuchdata/purchasing/backend-go/internal/repository"
	"github.com/andresuchdata/purchasing/backend-go/internal/sheet"
	"github.com/andresuchdata/purchasing/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type OrderService struct {
	repo     repository.OrderRepository
	cache    cache.CandidateCache
	notices  *NotificationService
	archive  storage.ObjectStorage
	location *time.Location
	now      func() time.Time
}

type Option func(*OrderService)

// WithNotifications tells analysts, supervisors and buyers about order events
func WithNotifications(n *NotificationService) Option {
	return func(s *OrderService) { s.notices = n }
}

// WithArchive stores every generated export in object storage
func WithArchive(o storage.ObjectStorage) Option {
	return func(s *OrderService) { s.archive = o }
}

// WithLocation sets the timezone "today" is evaluated in
func WithLocation(loc *time.Location) Option {
	return func(s *OrderService) { s.location = loc }
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(repo repository.OrderRepository, cacheImpl cache.CandidateCache, opts ...Option) *OrderService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopCandidateCache()
	}
	s := &OrderService{
		repo:     repo,
		cache:    cacheImpl,
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OrderDetail is an order with its lines serialized the way they are saved
type OrderDetail struct {
	*domain.Order
	StartDateSale string                  `json:"start_date_sale"`
	EndDateSale   string                  `json:"end_date_sale"`
	Items         []reconcile.ItemPayload `json:"items"`
	Severity      map[domain.Severity]int `json:"severity"`
}

// StatusChange reports the outcome of advancing one order
type StatusChange struct {
	OrderID int64  `json:"order"`
	From    int    `json:"previous_status"`
	To      int    `json:"new_status"`
	Error   string `json:"error,omitempty"`
}

func (s *OrderService) GetOrderDefaults(ctx context.Context) (*domain.OrderDefaults, error) {
	return s.repo.GetOrderDefaults(ctx)
}

// CandidateLines loads the lines offered for a new order and derives their
// suggested quantities, stock days, rotation and severity
func (s *OrderService) CandidateLines(ctx context.Context, filter domain.CandidateFilter) (reconcile.Result, error) {
	if verr := validateWindow(filter.Window); verr != nil {
		return reconcile.Result{}, verr
	}

	lines, ok, err := s.cache.GetLines(ctx, filter)
	if err != nil {
		log.Warn().Err(err).Msg("orders: cache get candidates failed")
	}
	if !ok {
		lines, err = s.repo.GetCandidateLines(ctx, filter)
		if err != nil {
			return reconcile.Result{}, err
		}
		if err := s.cache.SetLines(ctx, filter, lines); err != nil {
			log.Warn().Err(err).Msg("orders: cache set candidates failed")
		}
	}

	return reconcile.Reconcile(lines, filter.Window), nil
}

// InvalidateCandidates drops every cached candidate list
func (s *OrderService) InvalidateCandidates(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

func (s *OrderService) Reconcile(lines []domain.OrderLine, window domain.PredictionWindow) reconcile.Result {
	return reconcile.Reconcile(lines, window)
}

func (s *OrderService) ValidateEdit(field string, value decimal.Decimal) reconcile.EditResult {
	f, ok := reconcile.ParseField(field)
	if !ok {
		return reconcile.EditResult{Reason: "field " + field + " is read-only"}
	}
	return reconcile.ValidateEdit(f, value)
}

// CreateOrder validates and stores a new pending order, then notifies
// connected clients
func (s *OrderService) CreateOrder(ctx context.Context, actor domain.Actor, order *domain.Order) (*OrderDetail, error) {
	verr := domain.ValidationError{}
	s.validateHeader(order, verr, true)
	mergeValidation(verr, reconcile.ValidateLines(order.Lines))
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	order.StatusID = domain.StatusPending
	order.StatusName = domain.OrderStatusLabel(order.StatusID)
	order.BuyerID = actor.ID
	order.Date = now
	order.TotalAmount = reconcile.OrderTotal(order.Lines)

	entry := domain.OrderLog{
		Action:    domain.LogActionCreated,
		UserID:    actorID(actor),
		Timestamp: now,
		NewStatus: intPtr(order.StatusID),
		Notes:     fmt.Sprintf("order created with %d items", len(order.Lines)),
	}

	id, err := s.repo.CreateOrder(ctx, order, []domain.OrderLog{entry})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = id

	log.Info().
		Int64("order_id", id).
		Int64("buyer_id", actor.ID).
		Str("total_amount", order.TotalAmount.String()).
		Msg("orders: created")

	s.notifyGroup(ctx, domain.GroupAnalyst, domain.Notification{
		Title:   "Nueva orden de compra",
		Message: fmt.Sprintf("Orden de compra #%d creada por %s", id, actorName(actor)),
		Type:    domain.NotificationInfo,
		Link:    orderLink(id),
	})

	return s.detail(order), nil
}

// UpdateOrder applies the editable header fields and lines of changes to
// order id, recording an item_modified entry per changed value
func (s *OrderService) UpdateOrder(ctx context.Context, actor domain.Actor, id int64, changes *domain.Order) (*OrderDetail, error) {
	existing, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckEditable(existing.StatusID, actor); err != nil {
		return nil, err
	}

	// The start date may only be left in the past when it is not being moved
	checkStart := !sameDay(existing.Window.StartDate, changes.Window.StartDate)
	verr := domain.ValidationError{}
	s.validateWindowInto(changes.Window, verr, checkStart)
	mergeValidation(verr, reconcile.ValidateLines(changes.Lines))
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	logs := diffLines(existing.Lines, changes.Lines, actorID(actor), now)

	total := reconcile.OrderTotal(changes.Lines)
	if !total.Equal(existing.TotalAmount) {
		logs = append(logs, domain.OrderLog{
			Action:        domain.LogActionItemModified,
			UserID:        actorID(actor),
			Timestamp:     now,
			FieldChanged:  "total_amount",
			PreviousValue: existing.TotalAmount.String(),
			NewValue:      total.String(),
		})
	}

	existing.Window = changes.Window
	existing.Observation = changes.Observation
	existing.OCNumbersPending = changes.OCNumbersPending
	existing.Lines = changes.Lines
	existing.TotalAmount = total

	if err := s.repo.UpdateOrder(ctx, existing, logs); err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, err)
	}

	log.Info().Int64("order_id", id).Int("changes", len(logs)).Msg("orders: updated")
	return s.detail(existing), nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*OrderDetail, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(order), nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderSummary, error) {
	orders, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = make([]domain.OrderSummary, 0)
	}
	return orders, nil
}

// AdvanceStatuses moves each order to its next status. Orders that cannot
// move are reported in the result rather than failing the batch.
func (s *OrderService) AdvanceStatuses(ctx context.Context, actor domain.Actor, ids []int64) ([]StatusChange, error) {
	if len(ids) == 0 {
		return nil, domain.ValidationError{"orders": "at least one order is required"}
	}

	changes := make([]StatusChange, 0, len(ids))
	for _, id := range ids {
		change := StatusChange{OrderID: id}

		order, err := s.repo.GetOrder(ctx, id)
		if err != nil {
			change.Error = err.Error()
			changes = append(changes, change)
			continue
		}
		change.From = order.StatusID

		next, ok := domain.NextOrderStatus(order.StatusID)
		if !ok {
			change.Error = domain.ErrOrderLocked.Error()
			changes = append(changes, change)
			continue
		}

		entry := domain.OrderLog{
			Action:         domain.LogActionStatusChanged,
			UserID:         actorID(actor),
			Timestamp:      s.now(),
			PreviousStatus: intPtr(order.StatusID),
			NewStatus:      intPtr(next),
		}
		if err := s.repo.UpdateStatus(ctx, id, next, entry); err != nil {
			log.Error().Err(err).Int64("order_id", id).Msg("orders: status update failed")
			change.Error = err.Error()
			changes = append(changes, change)
			continue
		}

		change.To = next
		changes = append(changes, change)
		log.Info().Int64("order_id", id).Int("from", order.StatusID).Int("to", next).Msg("orders: status advanced")

		s.notifyStatusChange(ctx, order, next)
	}

	return changes, nil
}

// ListLogs returns the order's history, newest first, without the
// bookkeeping entries for total amount changes
func (s *OrderService) ListLogs(ctx context.Context, orderID int64) ([]domain.OrderLog, error) {
	if _, err := s.repo.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}

	logs, err := s.repo.ListLogs(ctx, orderID)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.OrderLog, 0, len(logs))
	for _, l := range logs {
		if l.FieldChanged == "total_amount" {
			continue
		}
		visible = append(visible, l)
	}
	return visible, nil
}

// ExportOrder renders the order's XLSX export and, when an archive is
// configured, keeps a copy of it there
func (s *OrderService) ExportOrder(ctx context.Context, id int64) ([]byte, string, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, "", err
	}

	data, err := sheet.WriteOrder(order.Lines)
	if err != nil {
		return nil, "", fmt.Errorf("failed to export order %d: %w", id, err)
	}
	name := sheet.FileName(order)

	if s.archive != nil {
		key := fmt.Sprintf("orders/%d/%s", id, name)
		if err := s.archive.UploadObject(ctx, key, data, sheet.ContentType); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("orders: export archive failed")
		} else {
			log.Info().Str("key", key).Msg("orders: export archived")
		}
	}

	return data, name, nil
}

// DeleteOrder removes an order that the actor may still edit
func (s *OrderService) DeleteOrder(ctx context.Context, actor domain.Actor, id int64) error {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.CheckEditable(order.StatusID, actor); err != nil {
		return err
	}
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}

	log.Info().Int64("order_id", id).Int64("user_id", actor.ID).Msg("orders: deleted")
	return nil
}

// notifyStatusChange tells supervisors an order awaits final approval and the
// buyer that their order was approved
func (s *OrderService) notifyStatusChange(ctx context.Context, order *domain.Order, next int) {
	switch next {
	case domain.StatusAnalyzed:
		s.notifyGroup(ctx, domain.GroupSupervisor, domain.Notification{
			Title:   "Orden aguardando aprobación final",
			Message: fmt.Sprintf("La OC #%d fue analizada y aguarda su aprobación.", order.ID),
			Type:    domain.NotificationWarning,
			Link:    orderLink(order.ID),
		})
	case domain.StatusApproved:
		if order.BuyerID == 0 || s.notices == nil {
			return
		}
		err := s.notices.NotifyUsers(ctx, []int64{order.BuyerID}, domain.Notification{
			Title:   "Estado de la OC actualizado",
			Message: fmt.Sprintf("Su OC #%d fue aprobada por el supervisor.", order.ID),
			Type:    domain.NotificationSuccess,
			Link:    orderLink(order.ID),
		})
		if err != nil {
			log.Warn().Err(err).Int64("order_id", order.ID).Msg("orders: buyer notification failed")
		}
	}
}

func (s *OrderService) notifyGroup(ctx context.Context, group string, n domain.Notification) {
	if s.notices == nil {
		return
	}
	if err := s.notices.NotifyGroup(ctx, group, n); err != nil {
		log.Warn().Err(err).Str("group", group).Msg("orders: notification failed")
	}
}

func (s *OrderService) detail(order *domain.Order) *OrderDetail {
	result := reconcile.Reconcile(order.Lines, order.Window)
	return &OrderDetail{
		Order:         order,
		StartDateSale: formatDate(order.Window.StartDate),
		EndDateSale:   formatDate(order.Window.EndDate),
		Items:         reconcile.BuildItemPayloads(order.Lines, order.Window),
		Severity:      result.CountBySeverity(),
	}
}

func (s *OrderService) validateHeader(order *domain.Order, verr domain.ValidationError, checkStart bool) {
	if order.SupplierID <= 0 {
		verr.Add("supplier", "supplier is required")
	}
	if order.StoreID <= 0 {
		verr.Add("store", "store is required")
	}
	if order.SectionID <= 0 {
		verr.Add("section", "section is required")
	}
	s.validateWindowInto(order.Window, verr, checkStart)
}

func (s *OrderService) validateWindowInto(w domain.PredictionWindow, verr domain.ValidationError, checkStart bool) {
	if w.StartDate.IsZero() {
		verr.Add("start_date_sale", "start date is required")
	}
	if w.EndDate.IsZero() {
		verr.Add("end_date_sale", "end date is required")
	}
	if w.StartDate.IsZero() || w.EndDate.IsZero() {
		return
	}

	if checkStart {
		today := s.now().In(s.location).Format(dateLayout)
		if w.StartDate.Format(dateLayout) < today {
			verr.Add("start_date_sale", "start date cannot be in the past")
		}
	}
	if !w.EndDate.After(w.StartDate) {
		verr.Add("end_date_sale", "end date must be after start date")
	}
}

func validateWindow(w domain.PredictionWindow) error {
	verr := domain.ValidationError{}
	if w.StartDate.IsZero() {
		verr.Add("start_date_sale", "start date is required")
	}
	if w.EndDate.IsZero() {
		verr.Add("end_date_sale", "end date is required")
	}
	return verr.OrNil()
}

func mergeValidation(dst domain.ValidationError, err error) {
	if v, ok := err.(domain.ValidationError); ok {
		for k, msg := range v {
			dst.Add(k, msg)
		}
	}
}

// diffLines emits an item_modified entry for every editable value that
// changed on a line present before and after the edit
func diffLines(before, after []domain.OrderLine, userID *int64, at time.Time) []domain.OrderLog {
	previous := make(map[string]domain.OrderLine, len(before))
	for _, l := range before {
		previous[l.ItemCode] = l
	}

	var logs []domain.OrderLog
	for _, l := range after {
		old, ok := previous[l.ItemCode]
		if !ok {
			continue
		}
		fields := []struct {
			name     reconcile.Field
			old, new decimal.Decimal
		}{
			{reconcile.FieldQuantityOrder, old.QuantityOrder, l.QuantityOrder},
			{reconcile.FieldBonus, old.Bonus, l.Bonus},
			{reconcile.FieldDiscount, old.Discount, l.Discount},
		}
		for _, f := range fields {
			if f.old.Equal(f.new) {
				continue
			}
			logs = append(logs, domain.OrderLog{
				Action:        domain.LogActionItemModified,
				UserID:        userID,
				Timestamp:     at,
				ItemCode:      l.ItemCode,
				FieldChanged:  string(f.name),
				PreviousValue: f.old.String(),
				NewValue:      f.new.String(),
			})
		}
	}
	return logs
}

func sameDay(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func actorID(a domain.Actor) *int64 {
	if a.ID == 0 {
		return nil
	}
	id := a.ID
	return &id
}

func actorName(a domain.Actor) string {
	if a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("usuario %d", a.ID)
}

func orderLink(id int64) string {
	return fmt.Sprintf("/orders/%d", id)
}

func intPtr(v int) *int {
	return &v
}
