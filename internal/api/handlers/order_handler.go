package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/api/middleware"
	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/reconcile"
	"github.com/andresuchdata/purchasing/backend-go/internal/service"
	"github.com/andresuchdata/purchasing/backend-go/internal/sheet"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type OrderHandler struct {
	service *service.OrderService
}

func NewOrderHandler(service *service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type orderRequest struct {
	Supplier         int64                   `json:"supplier"`
	Store            int64                   `json:"store"`
	Section          int64                   `json:"section"`
	Subsection       *int64                  `json:"subsection"`
	StartDateSale    string                  `json:"start_date_sale"`
	EndDateSale      string                  `json:"end_date_sale"`
	Observation      string                  `json:"observation"`
	OCNumbersPending []string                `json:"oc_numbers_pending"`
	Items            []reconcile.ItemPayload `json:"items"`
}

func (r orderRequest) toOrder() (*domain.Order, error) {
	window, err := parseWindow(r.StartDateSale, r.EndDateSale)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		SupplierID:       r.Supplier,
		StoreID:          r.Store,
		SectionID:        r.Section,
		SubsectionID:     r.Subsection,
		Window:           window,
		Observation:      strings.TrimSpace(r.Observation),
		OCNumbersPending: r.OCNumbersPending,
		Lines:            reconcile.ParseItemPayloads(r.Items),
	}, nil
}

type reconcileRequest struct {
	StartDateSale string                  `json:"start_date_sale"`
	EndDateSale   string                  `json:"end_date_sale"`
	Items         []reconcile.ItemPayload `json:"items"`
}

type validateEditRequest struct {
	Field string          `json:"field" binding:"required"`
	Value decimal.Decimal `json:"value"`
}

type updateStatusRequest struct {
	Orders []int64 `json:"orders"`
}

func parseWindow(start, end string) (domain.PredictionWindow, error) {
	var (
		window domain.PredictionWindow
		verr   = domain.ValidationError{}
	)
	if s := strings.TrimSpace(start); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			verr.Add("start_date_sale", "start date must be YYYY-MM-DD")
		}
		window.StartDate = t
	}
	if e := strings.TrimSpace(end); e != "" {
		t, err := time.Parse(dateLayout, e)
		if err != nil {
			verr.Add("end_date_sale", "end date must be YYYY-MM-DD")
		}
		window.EndDate = t
	}
	return window, verr.OrNil()
}

func queryInt64(c *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(c.Query(name)), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}

// writeError maps service errors to HTTP responses
func writeError(c *gin.Context, err error) {
	var verr domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr})
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *OrderHandler) GetOrderDefaults(c *gin.Context) {
	defaults, err := h.service.GetOrderDefaults(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, defaults)
}

// GetOrderDefaultDetail returns the candidate lines for a new order
func (h *OrderHandler) GetOrderDefaultDetail(c *gin.Context) {
	window, err := parseWindow(c.Query("start_date_sale"), c.Query("end_date_sale"))
	if err != nil {
		writeError(c, err)
		return
	}

	filter := domain.CandidateFilter{
		StoreID:    queryInt64(c, "store"),
		SupplierID: queryInt64(c, "supplier"),
		SectionID:  queryInt64(c, "section"),
		Window:     window,
	}
	if sub := queryInt64(c, "subsection"); sub > 0 {
		filter.SubsectionID = &sub
	}

	verr := domain.ValidationError{}
	if filter.StoreID == 0 {
		verr.Add("store", "store is required")
	}
	if filter.SupplierID == 0 {
		verr.Add("supplier", "supplier is required")
	}
	if filter.SectionID == 0 {
		verr.Add("section", "section is required")
	}
	if window.StartDate.IsZero() {
		verr.Add("start_date_sale", "start date is required")
	}
	if window.EndDate.IsZero() {
		verr.Add("end_date_sale", "end date is required")
	}
	if err := verr.OrNil(); err != nil {
		writeError(c, err)
		return
	}

	result, err := h.service.CandidateLines(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":        reconcile.BuildItemPayloads(linesOf(result), window),
		"lines":        result.Lines,
		"total_amount": result.TotalAmount,
	})
}

// Reconcile recomputes the derived columns of lines edited client-side
func (h *OrderHandler) Reconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	window, err := parseWindow(req.StartDateSale, req.EndDateSale)
	if err != nil {
		writeError(c, err)
		return
	}

	result := h.service.Reconcile(reconcile.ParseItemPayloads(req.Items), window)

	rows := make([]reconcile.DisplayRow, 0, len(result.Lines))
	for _, l := range result.Lines {
		rows = append(rows, reconcile.Present(l))
	}

	c.JSON(http.StatusOK, gin.H{
		"lines":        result.Lines,
		"rows":         rows,
		"total_amount": result.TotalAmount,
		"severity":     result.CountBySeverity(),
	})
}

func (h *OrderHandler) ValidateEdit(c *gin.Context) {
	var req validateEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.ValidateEdit(req.Field, req.Value))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := domain.OrderFilter{
		SupplierID:  queryInt64(c, "supplier"),
		SectionID:   queryInt64(c, "section"),
		BuyerID:     queryInt64(c, "buyer"),
		PendingOnly: c.Query("pending_only") == "true",
		Page:        1,
		PageSize:    50,
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if code, ok := domain.ParseOrderStatus(status); ok {
			filter.StatusID = code
		} else if code, err := strconv.Atoi(status); err == nil {
			filter.StatusID = code
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}

	orders, err := h.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders, "page": filter.Page, "page_size": filter.PageSize})
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := req.toOrder()
	if err != nil {
		writeError(c, err)
		return
	}

	detail, err := h.service.CreateOrder(c.Request.Context(), middleware.ActorFrom(c), order)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	detail, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	changes, err := req.toOrder()
	if err != nil {
		writeError(c, err)
		return
	}

	detail, err := h.service.UpdateOrder(c.Request.Context(), middleware.ActorFrom(c), id, changes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteOrder(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changes, err := h.service.AdvanceStatuses(c.Request.Context(), middleware.ActorFrom(c), req.Orders)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": changes})
}

func (h *OrderHandler) ListLogs(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	logs, err := h.service.ListLogs(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}

func (h *OrderHandler) ExportExcel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	data, name, err := h.service.ExportOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, sheet.ContentType, data)
}

func linesOf(result reconcile.Result) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(result.Lines))
	for _, l := range result.Lines {
		lines = append(lines, l.OrderLine)
	}
	return lines
}
