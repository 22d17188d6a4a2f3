package handler

import (
	"io"
	"log/slog"
	"net/http"

	"ventas/internal/delivery/api/response"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const headerHubSignature = "X-Hub-Signature-256"

// WebhookHandlerParams holds dependencies for WebhookHandler, injected by Fx.
type WebhookHandlerParams struct {
	fx.In

	WebhookUC usecase.WebhookUsecase
	Logger    *slog.Logger
}

// WebhookHandler serves the WhatsApp Cloud API webhook.
type WebhookHandler struct {
	webhookUC usecase.WebhookUsecase
	logger    *slog.Logger
}

// NewWebhookHandler is the constructor for WebhookHandler.
func NewWebhookHandler(params WebhookHandlerParams) *WebhookHandler {
	return &WebhookHandler{
		webhookUC: params.WebhookUC,
		logger:    params.Logger,
	}
}

// VerifyWhatsApp answers the subscription handshake with the bare challenge.
func (h *WebhookHandler) VerifyWhatsApp(c echo.Context) error {
	challenge, err := h.webhookUC.VerifySubscription(c.Request().Context(), &usecase.VerifySubscriptionInput{
		Mode:        c.QueryParam("hub.mode"),
		VerifyToken: c.QueryParam("hub.verify_token"),
		Challenge:   c.QueryParam("hub.challenge"),
	})
	if err != nil {
		return err
	}

	return c.String(http.StatusOK, challenge)
}

// ReceiveWhatsApp relays an inbound delivery. Relay failures are still
// acknowledged, only a bad signature is rejected.
func (h *WebhookHandler) ReceiveWhatsApp(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("unreadable request body")
	}

	err = h.webhookUC.RelayInboundMessage(c.Request().Context(), &usecase.InboundMessageInput{
		Body:      body,
		Signature: c.Request().Header.Get(headerHubSignature),
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]bool{"received": true})
}
