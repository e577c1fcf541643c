// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_operations_total",
			Help: "Total number of ticket write operations by kind",
		},
		[]string{"operation"},
	)
	danglingRefs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_dangling_references_total",
			Help: "Dangling cross-service references found by the reconciler",
		},
		[]string{"field"},
	)
	eventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_events_consumed_total",
			Help: "Ticket events consumed from the audit queue by routing key",
		},
		[]string{"routing_key"},
	)
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
)

// TicketOperation counts a completed write operation ("create", "update",
// "delete").
func TicketOperation(op string) {
	ticketOps.WithLabelValues(op).Inc()
}

// DanglingReference counts a dangling project_id or assignee_id finding.
func DanglingReference(field string) {
	danglingRefs.WithLabelValues(field).Inc()
}

// EventConsumed counts a ticket event taken off the audit queue.
func EventConsumed(routingKey string) {
	eventsConsumed.WithLabelValues(routingKey).Inc()
}

// HTTPRequest counts a served request.
func HTTPRequest(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}
