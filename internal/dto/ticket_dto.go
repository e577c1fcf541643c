package dto

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/example/kanban/backend/internal/models"
)

// NullableUUID distinguishes an absent JSON field from an explicit null.
// Set is true whenever the field appeared in the payload; Value is nil for
// an explicit null.
type NullableUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}

func (n NullableUUID) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// CreateTicketRequest carries the fields accepted when filing a ticket.
// Status and priority fall back to their column defaults when omitted.
type CreateTicketRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Status      models.TicketStatus   `json:"status"`
	Priority    models.TicketPriority `json:"priority"`
	ProjectID   uuid.UUID             `json:"projectId" binding:"required"`
	AssigneeID  *uuid.UUID            `json:"assigneeId"`
}

// UpdateTicketRequest carries a partial update; absent fields are left
// unchanged. An explicit "assigneeId": null unassigns the ticket.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Status      *models.TicketStatus   `json:"status"`
	Priority    *models.TicketPriority `json:"priority"`
	AssigneeID  NullableUUID           `json:"assigneeId"`
}
