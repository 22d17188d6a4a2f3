// Package constants holds string identifiers shared across layers.
package constants

// Event publisher providers
const (
	PubSubProviderLocal    = "local"
	PubSubProviderGoogle   = "google"
	PubSubProviderRabbitMQ = "rabbitmq"
)

// Event types emitted by the back office
const (
	EventAccountCompromised      = "account.compromised"
	EventOrderCreated            = "order.created"
	EventPaymentStatusChanged    = "payment.status_changed"
	EventWhatsAppMessageReceived = "whatsapp.message_received"
)

// Payment providers
const (
	PaymentProviderWompi = "wompi"
)

// Operator push topics
const (
	TopicSecurityAlerts = "security-alerts"
	TopicNewOrders      = "new-orders"
)

// HeaderDeviceName carries the client-declared device label used for session fingerprints.
const HeaderDeviceName = "X-Device-Name"
