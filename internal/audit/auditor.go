// Package audit subscribes to the ticket event stream and records every
// event for operational visibility. It is the service's own consumer of the
// ticket.* exchange; external services attach their own queues.
package audit

import (
	"encoding/json"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"

	"github.com/example/kanban/backend/internal/metrics"
)

// Auditor logs and counts consumed ticket events.
type Auditor struct {
	log *slog.Logger
}

// NewAuditor builds an auditor logging through log.
func NewAuditor(log *slog.Logger) *Auditor {
	if log == nil {
		log = slog.Default()
	}
	return &Auditor{log: log.With("component", "audit")}
}

// Handle processes one delivery. Malformed payloads are acknowledged and
// discarded; requeueing them would loop forever.
func (a *Auditor) Handle(msg amqp091.Delivery) {
	var event struct {
		Event      string `json:"event"`
		TicketID   string `json:"ticketId"`
		OccurredAt string `json:"occurredAt"`
	}
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		a.log.Warn("discarding malformed ticket event",
			"error", err, "routing_key", msg.RoutingKey)
		_ = msg.Ack(false)
		return
	}

	metrics.EventConsumed(msg.RoutingKey)
	a.log.Info("ticket event",
		"event", event.Event,
		"ticket_id", event.TicketID,
		"occurred_at", event.OccurredAt,
		"routing_key", msg.RoutingKey)
	_ = msg.Ack(false)
}
