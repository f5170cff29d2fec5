package api

import (
	"context"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
)

// GetModes retrieves the full mode set
func (c *Client) GetModes(ctx context.Context) ([]models.ViewMode, error) {
	modes := []models.ViewMode{}
	_, err := checkResponse(c.http.R().SetContext(ctx).SetResult(&modes).Get("/available_modes"))
	if err != nil {
		return nil, err
	}

	return modes, nil
}

// GetCurrentMode retrieves the active mode. It returns nil when no mode is active.
func (c *Client) GetCurrentMode(ctx context.Context) (*models.ViewMode, error) {
	var mode *models.ViewMode
	_, err := checkResponse(c.http.R().SetContext(ctx).SetResult(&mode).Get("/current_mode"))
	if err != nil {
		return nil, err
	}

	return mode, nil
}

// ChangeMode asks the server to activate label
func (c *Client) ChangeMode(ctx context.Context, label string) error {
	_, err := checkResponse(c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"label": label}).
		Post("/change_mode"))
	return err
}
