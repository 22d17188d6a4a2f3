package handler

import (
	"log/slog"
	"net/http"
	"time"

	"ventas/internal/delivery/api/response"
	"ventas/internal/domain/entity"
	"ventas/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// AnalyticsHandlerParams holds dependencies for AnalyticsHandler, injected by Fx.
type AnalyticsHandlerParams struct {
	fx.In

	AnalyticsUC usecase.AnalyticsUsecase
	Logger      *slog.Logger
}

// AnalyticsHandler serves sales reports.
type AnalyticsHandler struct {
	analyticsUC usecase.AnalyticsUsecase
	logger      *slog.Logger
}

// NewAnalyticsHandler is the constructor for AnalyticsHandler.
func NewAnalyticsHandler(params AnalyticsHandlerParams) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsUC: params.AnalyticsUC,
		logger:      params.Logger,
	}
}

type summaryResponse struct {
	From              time.Time                      `json:"from"`
	To                time.Time                      `json:"to"`
	TotalOrders       int64                          `json:"total_orders"`
	OrdersByStatus    map[entity.PaymentStatus]int64 `json:"orders_by_status"`
	Revenue           decimal.Decimal                `json:"revenue"`
	AverageOrderValue decimal.Decimal                `json:"average_order_value"`
}

type productSalesResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

func newProductSalesResponse(p *entity.ProductSales) productSalesResponse {
	return productSalesResponse{
		ProductID:   p.ProductID,
		ProductName: p.ProductName,
		Quantity:    p.Quantity,
		Revenue:     p.Revenue,
	}
}

func window(c echo.Context) (time.Time, time.Time, error) {
	from, err := queryTime(c, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return from, to, nil
}

// Summary reports order counts and revenue for ?from= and ?to=.
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	from, to, err := window(c)
	if err != nil {
		return err
	}

	summary, err := h.analyticsUC.Summary(c.Request().Context(), from, to)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, summaryResponse{
		From:              summary.From,
		To:                summary.To,
		TotalOrders:       summary.TotalOrders,
		OrdersByStatus:    summary.OrdersByStatus,
		Revenue:           summary.Revenue,
		AverageOrderValue: summary.AverageOrderValue,
	})
}

// TopProducts ranks products by paid quantity.
func (h *AnalyticsHandler) TopProducts(c echo.Context) error {
	from, to, err := window(c)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	rows, err := h.analyticsUC.TopProducts(c.Request().Context(), from, to, limit)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, mapSlice(rows, newProductSalesResponse))
}
