// Package wompi implements the payment gateway against Wompi's hosted
// checkout and its signed event webhooks.
package wompi

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"ventas/config"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/service"
	"ventas/internal/errors"
	"ventas/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// eventEnvelope is the outer shape of every Wompi event.
type eventEnvelope struct {
	Event     string         `json:"event"`
	Data      map[string]any `json:"data"`
	Signature struct {
		Properties []string `json:"properties"`
		Checksum   string   `json:"checksum"`
	} `json:"signature"`
	Timestamp   json.Number `json:"timestamp"`
	Environment string      `json:"environment"`
}

type transaction struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Reference     string `json:"reference"`
	AmountInCents int64  `json:"amount_in_cents"`
	Currency      string `json:"currency"`
}

type gateway struct {
	publicKey       string
	eventsSecret    string
	integritySecret string
	checkoutURL     string
	currency        string
	redirectURL     string
}

// NewGateway builds the Wompi gateway. Without an events secret every webhook
// is rejected, and without a public key no checkout link can be built.
func NewGateway(cfg *config.Config) service.PaymentGateway {
	g := &gateway{
		checkoutURL: "https://checkout.wompi.co/p/",
		currency:    "COP",
	}
	if w := cfg.Wompi; w != nil {
		g.publicKey = w.PublicKey
		g.eventsSecret = w.EventsSecret
		g.integritySecret = w.IntegritySecret
		g.redirectURL = w.RedirectURL
		if w.CheckoutURL != "" {
			g.checkoutURL = w.CheckoutURL
		}
		if w.Currency != "" {
			g.currency = w.Currency
		}
	}

	return g
}

// ParseEvent checks the event checksum before trusting any field of the body.
func (g *gateway) ParseEvent(body []byte) (*service.PaymentEvent, error) {
	if g.eventsSecret == "" {
		return nil, domainerrors.ErrInvalidWebhookSignature.WrapMessage("events secret not configured")
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var envelope eventEnvelope
	if err := decoder.Decode(&envelope); err != nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "malformed event body")
	}

	if !g.validChecksum(&envelope) {
		return nil, domainerrors.ErrInvalidWebhookSignature.WrapMessage("checksum mismatch")
	}

	event := &service.PaymentEvent{EventType: envelope.Event}

	raw, ok := envelope.Data["transaction"]
	if !ok {
		return event, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var tx transaction
	if err := json.Unmarshal(encoded, &tx); err != nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "malformed transaction")
	}

	event.TransactionID = tx.ID
	event.Reference = tx.Reference
	event.Status = tx.Status
	event.PaymentStatus = mapStatus(tx.Status)
	event.AmountInCents = tx.AmountInCents
	event.Currency = tx.Currency

	return event, nil
}

// validChecksum recomputes SHA-256(values of signature.properties, timestamp, secret).
func (g *gateway) validChecksum(envelope *eventEnvelope) bool {
	if envelope.Signature.Checksum == "" || len(envelope.Signature.Properties) == 0 {
		return false
	}

	parts := make([]string, 0, len(envelope.Signature.Properties)+2)
	for _, property := range envelope.Signature.Properties {
		value, ok := lookup(envelope.Data, property)
		if !ok {
			return false
		}
		parts = append(parts, value)
	}
	parts = append(parts, envelope.Timestamp.String(), g.eventsSecret)

	return util.EqualHexFold(util.SHA256Hex(parts...), envelope.Signature.Checksum)
}

// lookup resolves a dotted path such as "transaction.amount_in_cents" inside data.
func lookup(data map[string]any, path string) (string, bool) {
	var current any = data
	for _, segment := range strings.Split(path, ".") {
		object, ok := current.(map[string]any)
		if !ok {
			return "", false
		}
		if current, ok = object[segment]; !ok {
			return "", false
		}
	}

	switch value := current.(type) {
	case string:
		return value, true
	case json.Number:
		return value.String(), true
	case bool:
		return strconv.FormatBool(value), true
	case nil:
		return "", true
	default:
		return "", false
	}
}

// CheckoutURL builds a web-checkout link signed with the integrity secret.
func (g *gateway) CheckoutURL(orderID uuid.UUID, total decimal.Decimal) (string, error) {
	if g.publicKey == "" || g.integritySecret == "" {
		return "", errors.Wrap(domainerrors.ErrInternalError, "wompi checkout is not configured")
	}

	amountInCents := AmountInCents(total)
	reference := orderID.String()
	amount := strconv.FormatInt(amountInCents, 10)

	query := url.Values{}
	query.Set("public-key", g.publicKey)
	query.Set("currency", g.currency)
	query.Set("amount-in-cents", amount)
	query.Set("reference", reference)
	query.Set("signature:integrity", util.SHA256Hex(reference, amount, g.currency, g.integritySecret))
	if g.redirectURL != "" {
		query.Set("redirect-url", g.redirectURL)
	}

	return g.checkoutURL + "?" + query.Encode(), nil
}

// AmountInCents converts a money amount into integer minor units.
func AmountInCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// mapStatus translates a Wompi transaction status to an order payment status.
func mapStatus(status string) entity.PaymentStatus {
	switch strings.ToUpper(status) {
	case "APPROVED":
		return entity.PaymentStatusPaid
	case "DECLINED", "ERROR":
		return entity.PaymentStatusFailed
	case "VOIDED":
		return entity.PaymentStatusCancelled
	case "PENDING":
		return entity.PaymentStatusPending
	default:
		return ""
	}
}
