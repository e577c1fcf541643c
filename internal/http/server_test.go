package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/kanban/backend/internal/models"
	"github.com/example/kanban/backend/internal/repository"
	"github.com/example/kanban/backend/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Ticket{}))

	svc := service.NewTicketService(repository.NewTicketRepository(db), nil, nil, nil)
	return NewServer(svc)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine.ServeHTTP(rec, req)
	return rec
}

func createTicket(t *testing.T, srv *Server, body map[string]any) models.Ticket {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/tickets", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ticket models.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))
	return ticket
}

func TestCreateTicketEndpoint(t *testing.T) {
	srv := newTestServer(t)
	projectID := uuid.New()

	ticket := createTicket(t, srv, map[string]any{
		"title":     "Fix login bug",
		"projectId": projectID,
	})

	assert.Equal(t, "Fix login bug", ticket.Title)
	assert.Equal(t, models.TicketStatusOpen, ticket.Status)
	assert.Equal(t, models.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, projectID, ticket.ProjectID)
	assert.Nil(t, ticket.AssigneeID)
}

func TestCreateTicketRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"projectId": uuid.New()}},
		{"missing project id", map[string]any{"title": "orphan"}},
		{"title too long", map[string]any{
			"title":     strings.Repeat("x", models.TitleMaxLength+1),
			"projectId": uuid.New(),
		}},
		{"status outside enum", map[string]any{
			"title":     "bad",
			"status":    "archived",
			"projectId": uuid.New(),
		}},
		{"priority outside enum", map[string]any{
			"title":     "bad",
			"priority":  "urgent",
			"projectId": uuid.New(),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/tickets", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestGetTicketEndpoint(t *testing.T) {
	srv := newTestServer(t)
	ticket := createTicket(t, srv, map[string]any{"title": "Fix login bug", "projectId": uuid.New()})

	rec := doJSON(t, srv, http.MethodGet, "/api/tickets/"+ticket.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tickets/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tickets/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTicketsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	projectID := uuid.New()

	createTicket(t, srv, map[string]any{"title": "a", "projectId": projectID})
	createTicket(t, srv, map[string]any{"title": "b", "projectId": projectID, "status": "done"})
	createTicket(t, srv, map[string]any{"title": "c", "projectId": uuid.New()})

	rec := doJSON(t, srv, http.MethodGet, "/api/tickets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tickets []models.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tickets))
	assert.Len(t, tickets, 3)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/tickets?project_id=%s&status=open", projectID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tickets = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tickets))
	require.Len(t, tickets, 1)
	assert.Equal(t, "a", tickets[0].Title)

	rec = doJSON(t, srv, http.MethodGet, "/api/tickets?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tickets?assignee_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTicketEndpoint(t *testing.T) {
	srv := newTestServer(t)
	ticket := createTicket(t, srv, map[string]any{"title": "Fix login bug", "projectId": uuid.New()})

	rec := doJSON(t, srv, http.MethodPatch, "/api/tickets/"+ticket.ID.String(), map[string]any{
		"status": "in_progress",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, models.TicketStatusInProgress, updated.Status)
	assert.Equal(t, "Fix login bug", updated.Title)

	rec = doJSON(t, srv, http.MethodPatch, "/api/tickets/"+ticket.ID.String(), map[string]any{
		"status": "archived",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPatch, "/api/tickets/"+uuid.NewString(), map[string]any{
		"status": "done",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTicketAssigneeNull(t *testing.T) {
	srv := newTestServer(t)
	assignee := uuid.New()
	ticket := createTicket(t, srv, map[string]any{
		"title":      "Fix login bug",
		"projectId":  uuid.New(),
		"assigneeId": assignee,
	})
	require.NotNil(t, ticket.AssigneeID)

	// A payload without the field leaves the assignee in place.
	rec := doJSON(t, srv, http.MethodPatch, "/api/tickets/"+ticket.ID.String(), map[string]any{
		"priority": "high",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Ticket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, assignee, *updated.AssigneeID)

	// An explicit null clears it.
	rec = doJSON(t, srv, http.MethodPatch, "/api/tickets/"+ticket.ID.String(), map[string]any{
		"assigneeId": nil,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated = models.Ticket{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Nil(t, updated.AssigneeID)
}

func TestDeleteTicketEndpoint(t *testing.T) {
	srv := newTestServer(t)
	ticket := createTicket(t, srv, map[string]any{"title": "obsolete", "projectId": uuid.New()})

	rec := doJSON(t, srv, http.MethodDelete, "/api/tickets/"+ticket.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/tickets/"+ticket.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
