package usecase

import (
	"context"
)

// VerifySubscriptionInput is the Meta webhook verification handshake.
type VerifySubscriptionInput struct {
	Mode        string
	VerifyToken string
	Challenge   string
}

// InboundMessageInput is a raw WhatsApp webhook delivery.
type InboundMessageInput struct {
	Body      []byte
	Signature string // X-Hub-Signature-256 header, "sha256=<hex>".
}

// WebhookUsecase bridges WhatsApp deliveries to the automation tooling.
type WebhookUsecase interface {
	// VerifySubscription returns the challenge to echo, or ErrWebhookVerificationFailed.
	VerifySubscription(ctx context.Context, input *VerifySubscriptionInput) (string, error)

	// RelayInboundMessage checks the signature and forwards the payload as an event.
	RelayInboundMessage(ctx context.Context, input *InboundMessageInput) error
}
