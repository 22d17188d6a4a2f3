// Package pubsub delivers domain events (orders, payments, compromised accounts,
// inbound WhatsApp messages) to the automation side. The sink is chosen by
// configuration: an n8n webhook over HTTP, Google Pub/Sub or RabbitMQ.
package pubsub

import (
	"context"
	"log/slog"

	"ventas/config"
	"ventas/internal/domain/constants"
	"ventas/internal/domain/service"
	"ventas/internal/errors"

	"go.uber.org/fx"
)

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewEventPublisher picks the sink named by pubsub.provider. Without one,
// events are dropped so the back office still runs standalone.
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	publisher, err := newPublisher(params.Config, params.Logger)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			params.Logger.Info("Closing event publisher")

			return publisher.Close()
		},
	})

	return publisher, nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (service.EventPublisher, error) {
	ps := cfg.PubSub
	if ps == nil || ps.Provider == "" {
		logger.Warn("Event publishing disabled, automations will not receive events")

		return &noopPublisher{logger: logger}, nil
	}

	switch ps.Provider {
	case constants.PubSubProviderLocal:
		if ps.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}

		return NewHTTPPublisher(ps.LocalEndpoint, logger), nil

	case constants.PubSubProviderGoogle:
		if ps.ProjectID == "" || ps.TopicID == "" {
			return nil, errors.New("project ID and topic ID are required for google provider")
		}

		return NewGooglePubSubPublisher(context.Background(), ps.ProjectID, ps.TopicID, logger)

	case constants.PubSubProviderRabbitMQ:
		return NewRabbitMQPublisher(cfg.RabbitMQ, logger)

	default:
		return nil, errors.Errorf("unknown pubsub provider %q", ps.Provider)
	}
}

// noopPublisher drops events when no provider is configured.
type noopPublisher struct {
	logger *slog.Logger
}

func (p *noopPublisher) Publish(ctx context.Context, event *service.Event) error {
	p.logger.DebugContext(ctx, "Event dropped, no publisher configured",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type),
	)

	return nil
}

func (p *noopPublisher) Close() error { return nil }
