package handler

import (
	"io"
	"log/slog"
	"net/http"

	"ventas/internal/delivery/api/response"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// PaymentHandlerParams holds dependencies for PaymentHandler, injected by Fx.
type PaymentHandlerParams struct {
	fx.In

	PaymentUC usecase.PaymentUsecase
	Logger    *slog.Logger
}

// PaymentHandler serves payment queries and the Wompi event webhook.
type PaymentHandler struct {
	paymentUC usecase.PaymentUsecase
	logger    *slog.Logger
}

// NewPaymentHandler is the constructor for PaymentHandler.
func NewPaymentHandler(params PaymentHandlerParams) *PaymentHandler {
	return &PaymentHandler{
		paymentUC: params.PaymentUC,
		logger:    params.Logger,
	}
}

// ListPayments supports ?order_id= to restrict the listing to one order.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	var orderID *uuid.UUID
	if raw := c.QueryParam("order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domainerrors.ErrValidationFailed.WithDetails("order_id must be a UUID")
		}
		orderID = &id
	}

	payments, err := h.paymentUC.ListPayments(c.Request().Context(), orderID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, mapSlice(payments, newPaymentResponse))
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	payment, err := h.paymentUC.GetPayment(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newPaymentResponse(payment))
}

// WompiWebhook applies a Wompi event. The raw body is needed for checksum verification.
func (h *PaymentHandler) WompiWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("unreadable request body")
	}

	out, err := h.paymentUC.HandleWompiEvent(c.Request().Context(), body)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]bool{
		"received": true,
		"ignored":  out.Ignored,
	})
}
