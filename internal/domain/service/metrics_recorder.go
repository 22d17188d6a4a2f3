package service

// MetricsRecorder counts business events for monitoring.
type MetricsRecorder interface {
	// AuthAttempt counts an auth operation (login, register, refresh, logout) by result.
	AuthAttempt(operation, result string)

	// SessionCompromised counts accounts flagged by a foreign refresh attempt.
	SessionCompromised()

	// OrderCreated counts committed orders.
	OrderCreated()

	// WebhookEvent counts inbound webhook deliveries by source and result.
	WebhookEvent(source, result string)
}
