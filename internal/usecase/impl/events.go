package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	deliverycontext "ventas/internal/delivery/context"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/service"
	"ventas/internal/errors"

	"github.com/google/uuid"
)

const (
	resultSuccess     = "success"
	resultRejected    = "rejected"
	resultCompromised = "compromised"
	resultError       = "error"
)

// newEvent wraps payload in an integration event stamped with the request id.
func newEvent(ctx context.Context, eventType string, payload any) (*service.Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal event payload")
	}

	return newRawEvent(ctx, eventType, raw), nil
}

func newRawEvent(ctx context.Context, eventType string, raw json.RawMessage) *service.Event {
	return &service.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}
}

// publishBestEffort publishes after a commit. Failures are logged and never
// reach the caller, whose state change is already durable.
func publishBestEffort(ctx context.Context, publisher service.EventPublisher, logger *slog.Logger, eventType string, payload any) {
	event, err := newEvent(ctx, eventType, payload)
	if err != nil {
		logger.Warn("Failed to build event", slog.String("event_type", eventType), slog.Any("error", err))

		return
	}

	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID),
			slog.Any("error", err),
		)
	}
}

// notifyBestEffort pushes an operator alert, logging instead of failing.
func notifyBestEffort(ctx context.Context, notifier service.NotificationService, logger *slog.Logger, topic, title, body string, data map[string]string) {
	if err := notifier.SendTopicNotification(ctx, topic, title, body, data); err != nil {
		logger.Warn("Failed to send operator notification", slog.String("topic", topic), slog.Any("error", err))
	}
}

// outcome classifies an auth result for metrics.
func outcome(err error) string {
	if err == nil {
		return resultSuccess
	}
	if errors.Is(err, domainerrors.ErrCompromisedSession) {
		return resultCompromised
	}
	if appErr, ok := errors.AsType[domainerrors.AppError](err); ok && appErr.HTTPCode() < 500 {
		return resultRejected
	}

	return resultError
}
