package handler

import (
	"log/slog"
	"net/http"

	"ventas/internal/delivery/api/response"
	"ventas/internal/domain/entity"
	"ventas/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// OrderHandlerParams holds dependencies for OrderHandler, injected by Fx.
type OrderHandlerParams struct {
	fx.In

	OrderUC usecase.OrderUsecase
	Logger  *slog.Logger
}

// OrderHandler serves order placement and the back-office order endpoints.
type OrderHandler struct {
	orderUC usecase.OrderUsecase
	logger  *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler.
func NewOrderHandler(params OrderHandlerParams) *OrderHandler {
	return &OrderHandler{
		orderUC: params.OrderUC,
		logger:  params.Logger,
	}
}

// CreateOrderRequest represents the request body for placing an order.
// Quantity is range-checked by the order service so that it maps to INVALID_QUANTITY.
type CreateOrderRequest struct {
	ClientName  string `json:"client_name" validate:"required,max=200"`
	ClientPhone string `json:"client_phone" validate:"required,max=30"`
	ProductID   string `json:"product_id" validate:"required,uuid"`
	Quantity    int    `json:"quantity"`
}

// UpdatePaymentStatusRequest represents the request body for a manual status change.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending paid failed cancelled"`
}

// CreateOrder places a pending order priced from the current catalog.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	productID, err := parseID(req.ProductID, "product_id")
	if err != nil {
		return err
	}

	order, err := h.orderUC.CreateOrder(c.Request().Context(), &usecase.CreateOrderInput{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ProductID:   productID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, newOrderResponse(order))
}

// ListOrders supports ?status=, ?limit= and ?offset=.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}

	orders, err := h.orderUC.ListOrders(c.Request().Context(), entity.OrderFilter{
		PaymentStatus: entity.PaymentStatus(c.QueryParam("status")),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, mapSlice(orders, newOrderResponse))
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderUC.GetOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newOrderResponse(order))
}

// UpdatePaymentStatus overrides the payment status, e.g. for cash on delivery.
func (h *OrderHandler) UpdatePaymentStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req UpdatePaymentStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderUC.UpdatePaymentStatus(c.Request().Context(), id, entity.PaymentStatus(req.PaymentStatus))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newOrderResponse(order))
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.orderUC.DeleteOrder(c.Request().Context(), id); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]any{"deleted": true})
}

// GetPaymentLink returns the hosted checkout URL for the order.
func (h *OrderHandler) GetPaymentLink(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	url, err := h.orderUC.GetPaymentLink(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]string{"url": url})
}

// GetPaymentQR renders the checkout URL as a PNG image.
func (h *OrderHandler) GetPaymentQR(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	qr, err := h.orderUC.GetPaymentQR(c.Request().Context(), id)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")

	return c.Blob(http.StatusOK, "image/png", qr.PNG)
}
