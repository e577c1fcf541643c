package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/kanban/backend/internal/apperrors"
	"github.com/example/kanban/backend/internal/cache"
	"github.com/example/kanban/backend/internal/dto"
	"github.com/example/kanban/backend/internal/metrics"
	"github.com/example/kanban/backend/internal/models"
	"github.com/example/kanban/backend/internal/mq"
	"github.com/example/kanban/backend/internal/repository"
)

// TicketService contains the business logic for the ticket life cycle.
// Writes are validated synchronously against the column constraints; the
// existence of the referenced project and assignee is never checked here.
type TicketService struct {
	tickets *repository.TicketRepository
	cache   *cache.TicketCache
	mq      mq.Publisher
	log     *slog.Logger
}

// NewTicketService builds a service with dependencies. cache and publisher
// may be nil; the service then runs without caching or eventing.
func NewTicketService(repo *repository.TicketRepository, ticketCache *cache.TicketCache, publisher mq.Publisher, log *slog.Logger) *TicketService {
	if log == nil {
		log = slog.Default()
	}
	return &TicketService{tickets: repo, cache: ticketCache, mq: publisher, log: log}
}

// CreateTicket validates and persists a new ticket, applying the enum
// defaults for omitted fields, and publishes a ticket.created event.
func (s *TicketService) CreateTicket(ctx context.Context, req dto.CreateTicketRequest) (*models.Ticket, error) {
	ticket := &models.Ticket{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
	}
	if ticket.Status == "" {
		ticket.Status = models.TicketStatusOpen
	}
	if ticket.Priority == "" {
		ticket.Priority = models.TicketPriorityMedium
	}
	if err := ticket.Validate(); err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	metrics.TicketOperation("create")
	if err := s.publishEvent(ctx, "ticket.created", ticket); err != nil {
		s.log.Warn("publish ticket.created failed", "error", err, "ticket_id", ticket.ID)
	}
	return ticket, nil
}

// GetTicket returns the ticket by id, consulting the cache first.
func (s *TicketService) GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id); err != nil {
			s.log.Warn("ticket cache read failed", "error", err, "ticket_id", id)
		} else if cached != nil {
			return cached, nil
		}
	}

	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, ticket); err != nil {
			s.log.Warn("ticket cache write failed", "error", err, "ticket_id", id)
		}
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]models.Ticket, error) {
	return s.tickets.List(ctx, filter)
}

// UpdateTicket applies a partial update, re-validates the row and persists
// it. Fields left nil in the request are unchanged.
func (s *TicketService) UpdateTicket(ctx context.Context, id uuid.UUID, req dto.UpdateTicketRequest) (*models.Ticket, error) {
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if req.Title != nil {
		ticket.Title = *req.Title
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.Status != nil {
		ticket.Status = *req.Status
	}
	if req.Priority != nil {
		ticket.Priority = *req.Priority
	}
	if req.AssigneeID.Set {
		ticket.AssigneeID = req.AssigneeID.Value
	}

	if err := ticket.Validate(); err != nil {
		return nil, err
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	metrics.TicketOperation("update")
	if err := s.publishEvent(ctx, "ticket.updated", ticket); err != nil {
		s.log.Warn("publish ticket.updated failed", "error", err, "ticket_id", ticket.ID)
	}
	return ticket, nil
}

// DeleteTicket removes the ticket row. There is no cascading into other
// services; their rows are referenced without constraints.
func (s *TicketService) DeleteTicket(ctx context.Context, id uuid.UUID) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}
	s.invalidate(ctx, id)
	metrics.TicketOperation("delete")
	if s.mq != nil {
		payload := map[string]any{
			"event":      "ticket.deleted",
			"ticketId":   id.String(),
			"occurredAt": time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.mq.Publish(ctx, "ticket.deleted", payload); err != nil {
			s.log.Warn("publish ticket.deleted failed", "error", err, "ticket_id", id)
		}
	}
	return nil
}

func (s *TicketService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("ticket cache invalidation failed", "error", err, "ticket_id", id)
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event string, ticket *models.Ticket) error {
	if s.mq == nil {
		return nil
	}
	payload := map[string]any{
		"event":      event,
		"ticketId":   ticket.ID.String(),
		"title":      ticket.Title,
		"status":     ticket.Status,
		"priority":   ticket.Priority,
		"projectId":  ticket.ProjectID.String(),
		"occurredAt": time.Now().UTC().Format(time.RFC3339),
	}
	if ticket.AssigneeID != nil {
		payload["assigneeId"] = ticket.AssigneeID.String()
	}
	return s.mq.Publish(ctx, event, payload)
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError("ticket not found")
	}
	return err
}
