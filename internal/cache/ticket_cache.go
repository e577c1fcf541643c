// Package cache provides a Redis read-through cache for tickets. The cache
// is strictly an optimization: every operation degrades to the database when
// Redis is unavailable.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/kanban/backend/internal/models"
)

// TicketCache stores JSON-serialized tickets under a key prefix with a TTL.
type TicketCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewTicketCache creates a cache using the given client, key prefix
// (e.g. "ticket:") and expiration.
func NewTicketCache(client *redis.Client, prefix string, ttl time.Duration) *TicketCache {
	return &TicketCache{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the cached ticket or (nil, nil) on a miss.
func (c *TicketCache) Get(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var ticket models.Ticket
	if err := json.Unmarshal(data, &ticket); err != nil {
		// Treat a corrupt entry as a miss; it will be overwritten.
		return nil, nil
	}
	return &ticket, nil
}

// Set stores the ticket with the configured TTL.
func (c *TicketCache) Set(ctx context.Context, ticket *models.Ticket) error {
	data, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(ticket.ID), data, c.ttl).Err()
}

// Delete drops the cached entry, if any.
func (c *TicketCache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

func (c *TicketCache) key(id uuid.UUID) string {
	return c.prefix + id.String()
}
