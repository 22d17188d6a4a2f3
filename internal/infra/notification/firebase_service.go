// Package notification delivers operator alerts through Firebase Cloud Messaging.
package notification

import (
	"context"
	"log/slog"

	"ventas/config"
	"ventas/internal/domain/service"
	"ventas/internal/errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// messageSender is the part of messaging.Client the service uses.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type firebaseService struct {
	client messageSender
	logger *slog.Logger
}

// NewFirebaseService creates a Firebase notification service from a service-account file.
func NewFirebaseService(ctx context.Context, cfg *config.FirebaseConfig, logger *slog.Logger) (service.NotificationService, error) {
	var appConfig *firebase.Config
	if cfg.ProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appConfig, option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get messaging client")
	}

	return &firebaseService{
		client: client,
		logger: logger,
	}, nil
}

// SendTopicNotification pushes to every back-office device subscribed to topic.
func (s *firebaseService) SendTopicNotification(ctx context.Context, topic, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	messageID, err := s.client.Send(ctx, message)
	if err != nil {
		return errors.Wrapf(err, "failed to send notification to topic %s", topic)
	}

	s.logger.Debug("Push notification sent",
		slog.String("topic", topic),
		slog.String("message_id", messageID),
	)

	return nil
}

// noopNotificationService is used when Firebase is not configured.
type noopNotificationService struct {
	logger *slog.Logger
}

func (s *noopNotificationService) SendTopicNotification(_ context.Context, topic, title, _ string, _ map[string]string) error {
	s.logger.Debug("Push notifications disabled, skipping",
		slog.String("topic", topic),
		slog.String("title", title),
	)

	return nil
}

// NewNotificationService picks Firebase when credentials are configured and a no-op otherwise.
func NewNotificationService(cfg *config.Config, logger *slog.Logger) (service.NotificationService, error) {
	if cfg.Firebase == nil || cfg.Firebase.CredentialsPath == "" {
		logger.Info("Firebase not configured, push notifications disabled")

		return &noopNotificationService{logger: logger}, nil
	}

	return NewFirebaseService(context.Background(), cfg.Firebase, logger)
}
