package service

import (
	"context"
)

// NotificationService defines the interface for push notifications to back-office operators.
type NotificationService interface {
	// SendTopicNotification pushes a notification to every device subscribed to topic.
	SendTopicNotification(ctx context.Context, topic, title, body string, data map[string]string) error
}
