package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/kanban/backend/internal/models"
)

// DefaultListLimit caps unbounded list queries.
const DefaultListLimit = 50

// TicketFilter narrows a list query along the indexed columns.
type TicketFilter struct {
	Status     *models.TicketStatus
	Priority   *models.TicketPriority
	ProjectID  *uuid.UUID
	AssigneeID *uuid.UUID
	Limit      int
	Offset     int
}

// TicketRepository provides persistence access for Ticket entities.
type TicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository constructs a repository using the provided gorm DB.
func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create persists the ticket instance.
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(ticket).Error)
}

// Update persists the modified ticket.
func (r *TicketRepository) Update(ctx context.Context, ticket *models.Ticket) error {
	return errors.WithStack(r.db.WithContext(ctx).Save(ticket).Error)
}

// Delete removes the ticket row. Returns gorm.ErrRecordNotFound when no row
// matched.
func (r *TicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Ticket{}, "id = ?", id)
	if res.Error != nil {
		return errors.WithStack(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(gorm.ErrRecordNotFound)
	}
	return nil
}

// FindByID returns the ticket by id.
func (r *TicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &ticket, nil
}

// List returns tickets matching the filter, newest first. Every filter
// column is backed by an index.
func (r *TicketRepository) List(ctx context.Context, filter TicketFilter) ([]models.Ticket, error) {
	q := r.db.WithContext(ctx).Model(&models.Ticket{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		q = q.Where("priority = ?", *filter.Priority)
	}
	if filter.ProjectID != nil {
		q = q.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.AssigneeID != nil {
		q = q.Where("assignee_id = ?", *filter.AssigneeID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var tickets []models.Ticket
	err := q.Order("created_at desc").Limit(limit).Offset(filter.Offset).Find(&tickets).Error
	return tickets, errors.WithStack(err)
}
