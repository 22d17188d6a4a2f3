package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ventas/internal/domain/service"
	"ventas/internal/errors"
)

const (
	defaultHTTPPublishTimeout = 10 * time.Second

	headerEventType = "X-Event-Type"
	headerEventID   = "X-Event-Id"
	headerRequestID = "X-Request-Id"
)

// httpPublisher implements EventPublisher by POSTing each event as JSON to a
// webhook endpoint, typically an n8n workflow trigger.
type httpPublisher struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPPublisher creates a publisher that delivers events to endpoint.
func NewHTTPPublisher(endpoint string, logger *slog.Logger) service.EventPublisher {
	return &httpPublisher{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: defaultHTTPPublishTimeout,
		},
		logger: logger,
	}
}

// Publish sends the event and treats any non-2xx answer as a failure.
func (p *httpPublisher) Publish(ctx context.Context, event *service.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerEventType, event.Type)
	req.Header.Set(headerEventID, event.ID)

	// Add X-Request-Id header for tracing
	if event.RequestID != "" {
		req.Header.Set(headerRequestID, event.RequestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to deliver event")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("event endpoint returned non-success status: %d", resp.StatusCode)
	}

	p.logger.Debug("[HTTPPublisher] Event delivered",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type),
	)

	return nil
}

// Close releases resources (no-op for HTTP client)
func (p *httpPublisher) Close() error {
	p.httpClient.CloseIdleConnections()

	return nil
}
