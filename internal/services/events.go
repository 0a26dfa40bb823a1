package services

import (
	"encoding/json"
	"log/slog"
)

// Event types published on user lifecycle changes.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// EventPublisher publishes domain events. pkg/rabbitmq.Client implements it.
type EventPublisher interface {
	PublishEvent(eventType string, body []byte) error
}

// publish sends an event if a publisher is configured. Failures are logged and
// never fail the request that triggered them.
func publish(p EventPublisher, log *slog.Logger, eventType string, payload map[string]any) {
	if p == nil {
		return
	}
	payload["event"] = eventType
	body, err := json.Marshal(payload)
	if err != nil {
		log.Warn("failed to marshal event", "event", eventType, "error", err)
		return
	}
	if err := p.PublishEvent(eventType, body); err != nil {
		log.Warn("failed to publish event", "event", eventType, "error", err)
	}
}
