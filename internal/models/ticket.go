package models

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kanban/backend/internal/apperrors"
)

// TicketStatus describes the kanban column a ticket currently sits in.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusDone       TicketStatus = "done"
)

// TicketPriority is the ordered urgency of a ticket.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// TitleMaxLength bounds the title column, counted in characters.
const TitleMaxLength = 300

// Ticket is a unit of work on the kanban board. ProjectID and AssigneeID
// reference rows owned by the Project and Member services and deliberately
// carry no foreign key, so this table can be sharded or moved to its own
// database without cross-service constraints.
type Ticket struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"size:300;not null;index" json:"title" validate:"required,max=300"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TicketStatus   `gorm:"size:32;not null;default:'open';index" json:"status" validate:"required,oneof=open in_progress done"`
	Priority    TicketPriority `gorm:"size:32;not null;default:'medium';index" json:"priority" validate:"required,oneof=low medium high"`
	// References projects.id in the Project service; existence is never
	// verified here.
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"projectId" validate:"required"`
	// References users.id in the Member service; nil means unassigned.
	AssigneeID *uuid.UUID `gorm:"type:uuid;index" json:"assigneeId"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

var validate = validator.New()

// BeforeCreate is a GORM hook that populates the primary key and applies
// column defaults for omitted enum fields.
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TicketStatusOpen
	}
	if t.Priority == "" {
		t.Priority = TicketPriorityMedium
	}
	return nil
}

// Validate checks the column constraints and reports the first violation as
// a validation error. It is called by the service layer before every write.
func (t *Ticket) Validate() error {
	if t.Title == "" {
		return apperrors.NewValidationError("title must not be empty")
	}
	if utf8.RuneCountInString(t.Title) > TitleMaxLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("title must not exceed %d characters", TitleMaxLength))
	}
	if !t.Status.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid status %q", t.Status))
	}
	if !t.Priority.Valid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid priority %q", t.Priority))
	}
	if t.ProjectID == uuid.Nil {
		return apperrors.NewValidationError("projectId is required")
	}
	if err := validate.Struct(t); err != nil {
		return apperrors.NewValidationError("invalid ticket", err.Error())
	}
	return nil
}

// Valid reports whether the status is a member of the enumerated set.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusDone:
		return true
	}
	return false
}

// Valid reports whether the priority is a member of the enumerated set.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

func (t *Ticket) String() string {
	return fmt.Sprintf("Ticket(id=%s, title=%q)", t.ID, t.Title)
}
