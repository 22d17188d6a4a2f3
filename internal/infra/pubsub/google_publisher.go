package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"ventas/internal/domain/service"
	"ventas/internal/errors"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
)

type googlePubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    *slog.Logger
}

// NewGooglePubSubPublisher connects to an existing topic. A missing topic is a
// startup error rather than a silent loss of every event.
func NewGooglePubSubPublisher(ctx context.Context, projectID, topicID string, logger *slog.Logger) (service.EventPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pubsub client")
	}

	topic := "projects/" + projectID + "/topics/" + topicID
	if _, err := client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: topic}); err != nil {
		_ = client.Close()

		return nil, errors.Wrapf(err, "topic %s is not reachable", topic)
	}

	logger.Info("Publishing events to Google Pub/Sub", slog.String("topic", topic))

	return &googlePubSubPublisher{
		client:    client,
		publisher: client.Publisher(topicID),
		logger:    logger,
	}, nil
}

// Publish blocks until the broker acknowledges the message.
func (p *googlePubSubPublisher) Publish(ctx context.Context, event *service.Event) error {
	msg, err := toPubSubMessage(event)
	if err != nil {
		return err
	}

	serverID, err := p.publisher.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to publish %s", event.Type)
	}

	p.logger.DebugContext(ctx, "Event published",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type),
		slog.String("server_id", serverID),
	)

	return nil
}

// toPubSubMessage mirrors the envelope metadata into attributes so
// subscriptions can filter on event_type without decoding the body.
func toPubSubMessage(event *service.Event) (*pubsub.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode event")
	}

	attrs := map[string]string{
		"event_id":    event.ID,
		"event_type":  event.Type,
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if event.RequestID != "" {
		attrs["request_id"] = event.RequestID
	}

	return &pubsub.Message{Data: data, Attributes: attrs}, nil
}

func (p *googlePubSubPublisher) Close() error {
	p.publisher.Stop()

	return errors.WithStack(p.client.Close())
}
