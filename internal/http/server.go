package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/kanban/backend/internal/apperrors"
	"github.com/example/kanban/backend/internal/dto"
	"github.com/example/kanban/backend/internal/metrics"
	"github.com/example/kanban/backend/internal/models"
	"github.com/example/kanban/backend/internal/repository"
	"github.com/example/kanban/backend/internal/service"
)

// Server wraps the gin engine and collaborators needed to handle API requests.
type Server struct {
	Engine  *gin.Engine
	tickets *service.TicketService
}

// NewServer constructs a new API server and registers routes.
func NewServer(tickets *service.TicketService) *Server {
	router := gin.Default()
	srv := &Server{Engine: router, tickets: tickets}
	srv.registerRoutes()
	return srv
}

func (s *Server) registerRoutes() {
	s.Engine.Use(countRequests())
	s.Engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.Engine.Group("/api")
	api.POST("/tickets", s.createTicket)
	api.GET("/tickets", s.listTickets)
	api.GET("/tickets/:id", s.getTicket)
	api.PATCH("/tickets/:id", s.updateTicket)
	api.DELETE("/tickets/:id", s.deleteTicket)
}

func countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
	}
}

func (s *Server) createTicket(c *gin.Context) {
	var req dto.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := s.tickets.CreateTicket(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (s *Server) listTickets(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	tickets, err := s.tickets.ListTickets(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (s *Server) getTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	ticket, err := s.tickets.GetTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (s *Server) updateTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req dto.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ticket, err := s.tickets.UpdateTicket(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (s *Server) deleteTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.tickets.DeleteTicket(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseFilter builds the list filter from query parameters, replying 400 on
// a malformed value.
func parseFilter(c *gin.Context) (repository.TicketFilter, bool) {
	var filter repository.TicketFilter

	if v := c.Query("status"); v != "" {
		status := models.TicketStatus(v)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return filter, false
		}
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := models.TicketPriority(v)
		if !priority.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
			return filter, false
		}
		filter.Priority = &priority
	}
	if v := c.Query("project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return filter, false
		}
		filter.ProjectID = &id
	}
	if v := c.Query("assignee_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignee_id"})
			return filter, false
		}
		filter.AssigneeID = &id
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return filter, false
		}
		filter.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return filter, false
		}
		filter.Offset = n
	}
	return filter, true
}

func respondError(c *gin.Context, err error) {
	if appErr := apperrors.Get(err); appErr != nil {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message, "type": appErr.Type})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
