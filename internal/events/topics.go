package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicOrderCreated          = "order.created"
	TopicOrderConfirmationSent = "order.confirmation_sent"
)
