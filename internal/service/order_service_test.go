package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andresuchdata/purchasing/backend-go/internal/cache"
	"github.com/andresuchdata/purchasing/backend-go/internal/config"
	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/repository/memory"
	"github.com/andresuchdata/purchasing/backend-go/internal/sheet"
	"github.com/andresuchdata/purchasing/backend-go/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	sent []domain.Notification
}

func (r *recordingNotifier) Notify(n domain.Notification) {
	r.sent = append(r.sent, n)
}

type memoryArchive struct {
	objects map[string][]byte
	fail    bool
}

func (m *memoryArchive) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for k, v := range m.objects {
		out = append(out, storage.ObjectInfo{Key: k, Size: int64(len(v))})
	}
	return out, nil
}

func (m *memoryArchive) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	if m.fail {
		return errors.New("bucket unavailable")
	}
	m.objects[key] = data
	return nil
}

var (
	today     = time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)
	comprador = domain.Actor{ID: 5, Name: "Ana", Groups: []string{"comprador"}}
	analista  = domain.Actor{ID: 6, Name: "Luis", Groups: []string{"analista"}}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(repo *memory.OrderRepository, opts ...Option) *OrderService {
	opts = append([]Option{WithClock(func() time.Time { return today })}, opts...)
	return NewOrderService(repo, nil, opts...)
}

func newOrder() *domain.Order {
	return &domain.Order{
		SupplierID: 20,
		StoreID:    1,
		SectionID:  3,
		Window:     domain.PredictionWindow{StartDate: day(2025, 1, 10), EndDate: day(2025, 2, 9)},
		Lines: []domain.OrderLine{
			{ItemCode: "A1", DaysStockDesired: 30, PackSize: 12, SalePrediction: dec("300"), StockAvailable: dec("50"),
				QuantityOrder: dec("10"), PurchasePrice: dec("5")},
			{ItemCode: "A2", QuantityOrder: dec("3"), Discount: dec("1.5"), PurchasePrice: dec("7")},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	repo := memory.NewOrderRepository()
	notifier := &recordingNotifier{}
	notices := memory.NewNotificationRepository()
	notices.SetGroup(domain.GroupAnalyst, 6, 8)
	svc := newTestService(repo, WithNotifications(NewNotificationService(notices, notifier)))

	detail, err := svc.CreateOrder(context.Background(), comprador, newOrder())
	require.NoError(t, err)

	assert.Equal(t, int64(1), detail.ID)
	assert.Equal(t, domain.StatusPending, detail.StatusID)
	assert.Equal(t, int64(5), detail.BuyerID)
	assert.True(t, detail.TotalAmount.Equal(dec("71")), detail.TotalAmount.String())
	assert.Equal(t, "2025-01-10", detail.StartDateSale)
	require.Len(t, detail.Items, 2)
	assert.True(t, detail.Items[0].QuantitySuggested.Equal(dec("252")))

	require.Len(t, repo.Logs(1), 1)
	assert.Equal(t, domain.LogActionCreated, repo.Logs(1)[0].Action)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, int64(6), notifier.sent[0].UserID)
	assert.Equal(t, int64(8), notifier.sent[1].UserID)
	assert.Equal(t, "/orders/1", notifier.sent[0].Link)
	assert.Equal(t, domain.NotificationInfo, notifier.sent[0].Type)
	assert.Contains(t, notifier.sent[0].Message, "Ana")

	stored := notices.Stored()
	require.Len(t, stored, 2)
	assert.NotZero(t, stored[0].ID)
	assert.False(t, stored[0].IsRead)
}

func TestStatusChangesNotifySupervisorsThenBuyer(t *testing.T) {
	repo := memory.NewOrderRepository()
	notifier := &recordingNotifier{}
	notices := memory.NewNotificationRepository()
	notices.SetGroup(domain.GroupSupervisor, 9)
	svc := newTestService(repo, WithNotifications(NewNotificationService(notices, notifier)))
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, comprador, newOrder())
	require.NoError(t, err)
	assert.Empty(t, notifier.sent)

	_, err = svc.AdvanceStatuses(ctx, analista, []int64{created.ID})
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(9), notifier.sent[0].UserID)
	assert.Equal(t, domain.NotificationWarning, notifier.sent[0].Type)

	_, err = svc.AdvanceStatuses(ctx, analista, []int64{created.ID})
	require.NoError(t, err)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, comprador.ID, notifier.sent[1].UserID)
	assert.Equal(t, domain.NotificationSuccess, notifier.sent[1].Type)
	assert.Contains(t, notifier.sent[1].Message, "#1")

	feed, err := NewNotificationService(notices, nil).List(ctx, comprador.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "/orders/1", feed[0].Link)
}

func TestListOrdersPendingOnly(t *testing.T) {
	repo := memory.NewOrderRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, comprador, newOrder())
	require.NoError(t, err)
	second, err := svc.CreateOrder(ctx, comprador, newOrder())
	require.NoError(t, err)
	third, err := svc.CreateOrder(ctx, comprador, newOrder())
	require.NoError(t, err)
	repo.SetStatus(second.ID, domain.StatusAnalyzed)
	repo.SetStatus(third.ID, domain.StatusApproved)

	pending, err := svc.ListOrders(ctx, domain.OrderFilter{PendingOnly: true})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, second.ID, pending[0].ID)
	assert.Equal(t, first.ID, pending[1].ID)

	all, err := svc.ListOrders(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateOrderRejectsUnstorableDiscount(t *testing.T) {
	repo := memory.NewOrderRepository()
	svc := newTestService(repo)
	created, err := svc.CreateOrder(context.Background(), comprador, newOrder())
	require.NoError(t, err)

	changes := newOrder()
	changes.Lines[1].Discount = dec("12.345")
	_, err = svc.UpdateOrder(context.Background(), comprador, created.ID, changes)

	var verr domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "discount allows at most 2 decimal places", verr["items[1].discount"])

	stored, err := svc.GetOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Lines[1].Discount.Equal(dec("1.5")))
}

func TestDeleteOrder(t *testing.T) {
	repo := memory.NewOrderRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, comprador, newOrder())
	require.NoError(t, err)
	require.NoError(t, svc.DeleteOrder(ctx, comprador, created.ID))
	_, err = svc.GetOrder(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Empty(t, repo.Logs(created.ID))

	analyzed, err := svc.CreateOrder(ctx, comprador, newOrder())
	require.NoError(t, err)
	repo.SetStatus(analyzed.ID, domain.StatusAnalyzed)
	assert.ErrorIs(t, svc.DeleteOrder(ctx, comprador, analyzed.ID), domain.ErrForbidden)

	repo.SetStatus(analyzed.ID, domain.StatusApproved)
	assert.ErrorIs(t, svc.DeleteOrder(ctx, analista, analyzed.ID), domain.ErrOrderLocked)

	assert.ErrorIs(t, svc.DeleteOrder(ctx, analista, 404), domain.ErrOrderNotFound)
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newTestService(memory.NewOrderRepository())

	order := newOrder()
	order.StoreID = 0
	order.Window.StartDate = day(2025, 1, 9)
	order.Lines[1].Bonus = dec("-1")

	_, err := svc.CreateOrder(context.Background(), comprador, order)
	var verr domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr, "store")
	assert.Contains(t, verr, "start_date_sale")
	assert.Contains(t, verr, "items[1].bonus")

	order = newOrder()
	order.Window.EndDate = order.Window.StartDate
	_, err = svc.CreateOrder(context.Background(), comprador, order)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "end date must be after start date", verr["end_date_sale"])
}

func TestCreateOrderUsesConfiguredTimezone(t *testing.T) {
	loc := time.FixedZone("PYT", -3*60*60)
	// 01:00 UTC on the 10th is still the 9th in a UTC-3 zone
	svc := NewOrderService(memory.NewOrderRepository(), nil,
		WithLocation(loc),
		WithClock(func() time.Time { return time.Date(2025, 1, 10, 1, 0, 0, 0, time.UTC) }))

	order := newOrder()
	order.Window.StartDate = day(2025, 1, 9)
	_, err := svc.CreateOrder(context.Background(), comprador, order)
	require.NoError(t, err)
}

func TestUpdateOrderLogsChangedValues(t *testing.T) {
	repo := memory.NewOrderRepository()
	svc := newTestService(repo)
	created, err := svc.CreateOrder(context.Background(), comprador, newOrder())
	require.NoError(t, err)

	changes := newOrder()
	changes.Lines[0].QuantityOrder = dec("24")
	changes.Lines[1].Discount = dec("0")
	changes.Observation = "entregar lunes"

	detail, err := svc.UpdateOrder(context.Background(), comprador, created.ID, changes)
	require.NoError(t, err)
	assert.Equal(t, "entregar lunes", detail.Observation)
	assert.True(t, detail.TotalAmount.Equal(dec("141")), detail.TotalAmount.String())

	var modified []domain.OrderLog
	for _, l := range repo.Logs(created.ID) {
		if l.Action == domain.LogActionItemModified {
			modified = append(modified, l)
		}
	}
	require.Len(t, modified, 3)
	assert.Equal(t, "A1", modified[0].ItemCode)
	assert.Equal(t, "quantity_order", modified[0].FieldChanged)
	assert.Equal(t, "10", modified[0].PreviousValue)
	assert.Equal(t, "24", modified[0].NewValue)
	assert.Equal(t, "discount", modified[1].FieldChanged)
	assert.Equal(t, "total_amount", modified[2].FieldChanged)

	visible, err := svc.ListLogs(context.Background(), created.ID)
	require.NoError(t, err)
	for _, l := range visible {
		assert.NotEqual(t, "total_amount", l.FieldChanged)
	}
	assert.Len(t, visible, 3)
}

func TestUpdateOrderKeepsPastStartDate(t *testing.T) {
	repo := memory.NewOrderRepository()
	svc := newTestService(repo)
	created, err := svc.CreateOrder(context.Background(), comprador, newOrder())
	require.NoError(t, err)

	later := NewOrderService(repo, nil, WithClock(func() time.Time { return today.AddDate(0, 0, 5) }))

	_, err = later.UpdateOrder(context.Background(), comprador, created.ID, newOrder())
	require.NoError(t, err)

	moved := newOrder()
	moved.Window.StartDate = day(2025, 1, 12)
	_, err = later.UpdateOrder(context.Background(), comprador, created.ID, moved)
	var verr domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr, "start_date_sale")
}

func TestUpdateOrderPermissions(t *testing.T) {
	repo := memory.NewOrderRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, comprador, newOrder())
	require.NoError(t, err)

	_, err = svc.AdvanceStatuses(ctx, analista, []int64{created.ID})
	require.NoError(t, err)

	_, err = svc.UpdateOrder(ctx, comprador, created.ID, newOrder())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.UpdateOrder(ctx, analista, created.ID, newOrder())
	assert.NoError(t, err)

	_, err = svc.AdvanceStatuses(ctx, analista, []int64{created.ID})
	require.NoError(t, err)

	_, err = svc.UpdateOrder(ctx, analista, created.ID, newOrder())
	assert.ErrorIs(t, err, domain.ErrOrderLocked)

	_, err = svc.UpdateOrder(ctx, analista, 99, newOrder())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestAdvanceStatuses(t *testing.T) {
	repo := memory.NewOrderRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, comprador, newOrder())
	require.NoError(t, err)
	second, err := svc.CreateOrder(ctx, comprador, newOrder())
	require.NoError(t, err)
	repo.SetStatus(second.ID, domain.StatusApproved)

	changes, err := svc.AdvanceStatuses(ctx, analista, []int64{first.ID, second.ID, 42})
	require.NoError(t, err)
	require.Len(t, changes, 3)

	assert.Equal(t, StatusChange{OrderID: first.ID, From: 1, To: 2}, changes[0])
	assert.NotEmpty(t, changes[1].Error)
	assert.Equal(t, domain.ErrOrderNotFound.Error(), changes[2].Error)

	logs := repo.Logs(first.ID)
	last := logs[len(logs)-1]
	assert.Equal(t, domain.LogActionStatusChanged, last.Action)
	assert.Equal(t, 1, *last.PreviousStatus)
	assert.Equal(t, 2, *last.NewStatus)
	assert.Equal(t, int64(6), *last.UserID)

	_, err = svc.AdvanceStatuses(ctx, analista, nil)
	var verr domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCandidateLines(t *testing.T) {
	repo := memory.NewOrderRepository()
	repo.SetCandidates([]domain.OrderLine{
		{ItemCode: "A1", DaysStockDesired: 30, PackSize: 12, SalePrediction: dec("300"), StockAvailable: dec("50")},
	})
	svc := newTestService(repo)

	filter := domain.CandidateFilter{
		StoreID: 1, SupplierID: 20, SectionID: 3,
		Window: domain.PredictionWindow{StartDate: day(2025, 1, 1), EndDate: day(2025, 1, 31)},
	}
	result, err := svc.CandidateLines(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	assert.True(t, result.Lines[0].SuggestedQuantity.Equal(dec("252")))
	assert.Equal(t, domain.SeverityNormal, result.Lines[0].Severity)
	assert.Equal(t, 1, repo.CandidateQueries())

	_, err = svc.CandidateLines(context.Background(), domain.CandidateFilter{StoreID: 1})
	var verr domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCandidateLinesUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	candidates, err := cache.NewCandidateCache(config.CacheConfig{Enabled: true, RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)

	repo := memory.NewOrderRepository()
	repo.SetCandidates([]domain.OrderLine{{ItemCode: "A1", SalePrediction: dec("30"), DaysStockDesired: 10}})
	svc := NewOrderService(repo, candidates)

	filter := domain.CandidateFilter{
		StoreID: 1, SupplierID: 20, SectionID: 3,
		Window: domain.PredictionWindow{StartDate: day(2025, 1, 1), EndDate: day(2025, 1, 31)},
	}
	for i := 0; i < 3; i++ {
		result, err := svc.CandidateLines(context.Background(), filter)
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)
		assert.True(t, result.Lines[0].SuggestedQuantity.Equal(dec("10")))
	}
	assert.Equal(t, 1, repo.CandidateQueries())

	require.NoError(t, svc.InvalidateCandidates(context.Background()))
	_, err = svc.CandidateLines(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.CandidateQueries())
}

func TestValidateEdit(t *testing.T) {
	svc := newTestService(memory.NewOrderRepository())

	assert.True(t, svc.ValidateEdit("bonus", dec("2")).Accept)
	assert.False(t, svc.ValidateEdit("bonus", dec("-2")).Accept)
	assert.False(t, svc.ValidateEdit("sale_prediction", dec("2")).Accept)
}

func TestExportOrderArchives(t *testing.T) {
	repo := memory.NewOrderRepository()
	archive := &memoryArchive{objects: map[string][]byte{}}
	svc := newTestService(repo, WithArchive(archive))

	created, err := svc.CreateOrder(context.Background(), comprador, newOrder())
	require.NoError(t, err)

	data, name, err := svc.ExportOrder(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pedido_1_20250110.xlsx", name)
	assert.Equal(t, data, archive.objects["orders/1/pedido_1_20250110.xlsx"])

	rows, err := sheet.ReadExport(data)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	archive.fail = true
	_, _, err = svc.ExportOrder(context.Background(), created.ID)
	assert.NoError(t, err)

	_, _, err = svc.ExportOrder(context.Background(), 77)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
