package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/kanban/backend/internal/metrics"
	"github.com/example/kanban/backend/internal/models"
	"github.com/example/kanban/backend/internal/mq"
	"github.com/example/kanban/backend/internal/repository"
)

// Resolver answers whether a cross-service identifier still resolves.
type Resolver interface {
	ProjectExists(ctx context.Context, id uuid.UUID) (bool, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Reconciler periodically sweeps tickets and reports references to projects
// or users that no longer exist. Findings are logged and published as
// ticket.dangling events; the ticket rows themselves are never touched, so
// a dangling reference remains until a consumer acts on the event.
type Reconciler struct {
	id        string
	tickets   *repository.TicketRepository
	directory Resolver
	mq        mq.Publisher
	interval  time.Duration
	batchSize int
	log       *slog.Logger
}

// NewReconciler creates the sweeper with a random worker identifier.
func NewReconciler(repo *repository.TicketRepository, directory Resolver, publisher mq.Publisher, interval time.Duration, batchSize int, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		id:        uuid.New().String(),
		tickets:   repo,
		directory: directory,
		mq:        publisher,
		interval:  interval,
		batchSize: batchSize,
		log:       log.With("worker", "reconciler"),
	}
}

// Run starts the sweep loop and should be launched in its own goroutine.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reconciler shutting down")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep checks one batch of recent tickets against the owning services.
func (r *Reconciler) Sweep(ctx context.Context) {
	tickets, err := r.tickets.List(ctx, repository.TicketFilter{Limit: r.batchSize})
	if err != nil {
		r.log.Error("list tickets for reconciliation failed", "error", err)
		return
	}
	for i := range tickets {
		r.check(ctx, &tickets[i])
	}
}

func (r *Reconciler) check(ctx context.Context, ticket *models.Ticket) {
	exists, err := r.directory.ProjectExists(ctx, ticket.ProjectID)
	if err != nil {
		r.log.Warn("project lookup failed", "error", err, "ticket_id", ticket.ID)
	} else if !exists {
		r.report(ctx, ticket, "project_id", ticket.ProjectID)
	}

	if ticket.AssigneeID == nil {
		return
	}
	exists, err = r.directory.UserExists(ctx, *ticket.AssigneeID)
	if err != nil {
		r.log.Warn("user lookup failed", "error", err, "ticket_id", ticket.ID)
	} else if !exists {
		r.report(ctx, ticket, "assignee_id", *ticket.AssigneeID)
	}
}

func (r *Reconciler) report(ctx context.Context, ticket *models.Ticket, field string, ref uuid.UUID) {
	r.log.Warn("dangling reference",
		"ticket_id", ticket.ID, "field", field, "reference", ref)
	metrics.DanglingReference(field)
	if r.mq == nil {
		return
	}
	payload := map[string]any{
		"event":      "ticket.dangling",
		"ticketId":   ticket.ID.String(),
		"field":      field,
		"reference":  ref.String(),
		"workerId":   r.id,
		"occurredAt": time.Now().UTC().Format(time.RFC3339),
	}
	if err := r.mq.Publish(ctx, "ticket.dangling", payload); err != nil {
		r.log.Warn("publish ticket.dangling failed", "error", err, "ticket_id", ticket.ID)
	}
}
