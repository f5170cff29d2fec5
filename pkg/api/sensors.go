package api

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
)

// GetSensors retrieves every sensor id that has readings
func (c *Client) GetSensors(ctx context.Context) ([]string, error) {
	sensors := []string{}
	_, err := checkResponse(c.http.R().SetContext(ctx).SetResult(&sensors).Get("/sensors"))
	if err != nil {
		return nil, err
	}

	return sensors, nil
}

// GetShocks retrieves shock readings, for every sensor when sensorID is empty
func (c *Client) GetShocks(ctx context.Context, sensorID string) ([]models.ShockReading, error) {
	path := "/shocks"
	if sensorID != "" {
		path = fmt.Sprintf("/shocks/%s", url.PathEscape(sensorID))
	}

	shocks := []models.ShockReading{}
	_, err := checkResponse(c.http.R().SetContext(ctx).SetResult(&shocks).Get(path))
	if err != nil {
		return nil, err
	}

	return shocks, nil
}

// GetTimeline retrieves the merged timeline of a sensor
func (c *Client) GetTimeline(ctx context.Context, sensorID string) ([]models.TimelinePoint, error) {
	points := []models.TimelinePoint{}
	path := fmt.Sprintf("/sensor_data/%s", url.PathEscape(sensorID))

	_, err := checkResponse(c.http.R().SetContext(ctx).SetResult(&points).Get(path))
	if err != nil {
		return nil, err
	}

	return points, nil
}

// ExportTimeline downloads the timeline workbook of a sensor into w
func (c *Client) ExportTimeline(ctx context.Context, sensorID string, w io.Writer) (int64, error) {
	path := fmt.Sprintf("/sensor_data/%s/export", url.PathEscape(sensorID))

	resp, err := checkResponse(c.http.R().SetContext(ctx).Get(path))
	if err != nil {
		return 0, err
	}

	n, err := w.Write(resp.Body())
	if err != nil {
		return int64(n), fmt.Errorf("failed to write workbook: %w", err)
	}
	return int64(n), nil
}
