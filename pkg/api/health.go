package api

import (
	"context"
)

// HealthStatus represents the API health status
type HealthStatus struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// Health checks if the API is healthy
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var health HealthStatus
	_, err := checkResponse(c.http.R().SetContext(ctx).SetResult(&health).Get("/health"))
	if err != nil {
		return nil, err
	}

	return &health, nil
}
