// Package directory resolves the opaque cross-service identifiers a ticket
// carries against the services that own them. Resolution is advisory: the
// write path never calls it.
package directory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client queries the Project and Member services over their REST APIs.
type Client struct {
	projectBaseURL string
	memberBaseURL  string
	client         *http.Client
}

// NewClient constructs a client targeting the two owning services.
func NewClient(projectBaseURL, memberBaseURL string) *Client {
	return &Client{
		projectBaseURL: projectBaseURL,
		memberBaseURL:  memberBaseURL,
		client:         &http.Client{Timeout: 15 * time.Second},
	}
}

// ProjectExists reports whether the Project service knows the given id.
func (c *Client) ProjectExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.exists(ctx, fmt.Sprintf("%s/api/projects/%s", c.projectBaseURL, id))
}

// UserExists reports whether the Member service knows the given id.
func (c *Client) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.exists(ctx, fmt.Sprintf("%s/api/users/%s", c.memberBaseURL, id))
}

func (c *Client) exists(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, fmt.Errorf("directory lookup failed: %s", resp.Status)
	}
}
