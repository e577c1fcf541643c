package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/kanban/backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive for the test.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Ticket{}))
	return db
}

func TestCreateAndFindByID(t *testing.T) {
	repo := NewTicketRepository(openTestDB(t))
	ctx := context.Background()

	ticket := &models.Ticket{Title: "Fix login bug", ProjectID: uuid.New()}
	require.NoError(t, repo.Create(ctx, ticket))
	require.NotEqual(t, uuid.Nil, ticket.ID)

	got, err := repo.FindByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fix login bug", got.Title)
	assert.Equal(t, models.TicketStatusOpen, got.Status)
	assert.Equal(t, models.TicketPriorityMedium, got.Priority)
	assert.Nil(t, got.AssigneeID)
}

func TestFindByIDMissing(t *testing.T) {
	repo := NewTicketRepository(openTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDelete(t *testing.T) {
	repo := NewTicketRepository(openTestDB(t))
	ctx := context.Background()

	ticket := &models.Ticket{Title: "Remove stale feature flag", ProjectID: uuid.New()}
	require.NoError(t, repo.Create(ctx, ticket))

	require.NoError(t, repo.Delete(ctx, ticket.ID))

	_, err := repo.FindByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Delete(ctx, ticket.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListFilters(t *testing.T) {
	repo := NewTicketRepository(openTestDB(t))
	ctx := context.Background()

	projectA := uuid.New()
	projectB := uuid.New()
	assignee := uuid.New()

	seed := []*models.Ticket{
		{Title: "a", ProjectID: projectA, Status: models.TicketStatusOpen, Priority: models.TicketPriorityHigh},
		{Title: "b", ProjectID: projectA, Status: models.TicketStatusDone, Priority: models.TicketPriorityLow, AssigneeID: &assignee},
		{Title: "c", ProjectID: projectB, Status: models.TicketStatusOpen, Priority: models.TicketPriorityMedium, AssigneeID: &assignee},
	}
	for _, tk := range seed {
		require.NoError(t, repo.Create(ctx, tk))
	}

	all, err := repo.List(ctx, TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	open := models.TicketStatusOpen
	byStatus, err := repo.List(ctx, TicketFilter{Status: &open})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	low := models.TicketPriorityLow
	byPriority, err := repo.List(ctx, TicketFilter{Priority: &low})
	require.NoError(t, err)
	require.Len(t, byPriority, 1)
	assert.Equal(t, "b", byPriority[0].Title)

	byProject, err := repo.List(ctx, TicketFilter{ProjectID: &projectA})
	require.NoError(t, err)
	assert.Len(t, byProject, 2)

	byAssignee, err := repo.List(ctx, TicketFilter{AssigneeID: &assignee})
	require.NoError(t, err)
	assert.Len(t, byAssignee, 2)

	limited, err := repo.List(ctx, TicketFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
