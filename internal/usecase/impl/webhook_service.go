package impl

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"

	"ventas/config"
	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/domain/constants"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/service"
	"ventas/internal/errors"
	"ventas/internal/usecase"

	"go.uber.org/fx"
)

const (
	hubModeSubscribe = "subscribe"
	signaturePrefix  = "sha256="
)

// webhookService implements the WebhookUsecase interface.
type webhookService struct {
	verifyToken string
	appSecret   string
	publisher   service.EventPublisher
	metrics     service.MetricsRecorder
	logger      *slog.Logger
}

// WebhookServiceParams holds dependencies for WebhookService, injected by Fx.
type WebhookServiceParams struct {
	fx.In

	Config    *config.Config
	Publisher service.EventPublisher
	Metrics   service.MetricsRecorder
	Logger    *slog.Logger
}

// NewWebhookService is the constructor for webhookService.
func NewWebhookService(params WebhookServiceParams) usecase.WebhookUsecase {
	srv := &webhookService{
		publisher: params.Publisher,
		metrics:   params.Metrics,
		logger:    params.Logger,
	}
	if params.Config != nil && params.Config.WhatsApp != nil {
		srv.verifyToken = params.Config.WhatsApp.VerifyToken
		srv.appSecret = params.Config.WhatsApp.AppSecret
	}

	return srv
}

func (srv *webhookService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// VerifySubscription answers Meta's webhook verification handshake.
func (srv *webhookService) VerifySubscription(ctx context.Context, input *usecase.VerifySubscriptionInput) (string, error) {
	if srv.verifyToken == "" ||
		input.Mode != hubModeSubscribe ||
		subtle.ConstantTimeCompare([]byte(input.VerifyToken), []byte(srv.verifyToken)) != 1 {
		srv.log(ctx).Warn("WhatsApp webhook verification failed", slog.String("mode", input.Mode))

		return "", errors.Wrap(domainerrors.ErrWebhookVerificationFailed, "verify token mismatch")
	}

	return input.Challenge, nil
}

// RelayInboundMessage forwards a WhatsApp delivery to the automation tooling.
// Relay failures are logged and counted but not returned, so Meta does not redeliver.
func (srv *webhookService) RelayInboundMessage(ctx context.Context, input *usecase.InboundMessageInput) error {
	// 1. Signature, when an app secret is configured.
	if srv.appSecret != "" && !validHubSignature(input.Body, input.Signature, srv.appSecret) {
		srv.metrics.WebhookEvent(webhookSourceWhatsApp, webhookResultRejected)
		srv.log(ctx).Warn("Rejected WhatsApp webhook with bad signature")

		return errors.Wrap(domainerrors.ErrInvalidWebhookSignature, "whatsapp signature mismatch")
	}

	// 2. The payload is relayed verbatim, so it only has to be JSON.
	if !json.Valid(input.Body) {
		srv.metrics.WebhookEvent(webhookSourceWhatsApp, webhookResultRejected)

		return domainerrors.ErrValidationFailed.WithDetails("body is not valid JSON")
	}

	// 3. Relay.
	event := newRawEvent(ctx, constants.EventWhatsAppMessageReceived, json.RawMessage(input.Body))
	if err := srv.publisher.Publish(ctx, event); err != nil {
		srv.metrics.WebhookEvent(webhookSourceWhatsApp, webhookResultFailed)
		srv.log(ctx).Error("Failed to relay WhatsApp message", slog.String("event_id", event.ID), slog.Any("error", err))

		return nil
	}

	srv.metrics.WebhookEvent(webhookSourceWhatsApp, webhookResultProcessed)
	srv.log(ctx).Debug("Relayed WhatsApp message", slog.String("event_id", event.ID))

	return nil
}

// validHubSignature checks an X-Hub-Signature-256 header against the body.
func validHubSignature(body []byte, header, secret string) bool {
	digest, ok := strings.CutPrefix(header, signaturePrefix)
	if !ok {
		return false
	}

	given, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hmac.Equal(given, mac.Sum(nil))
}
