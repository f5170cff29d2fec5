package models

// TimelinePoint is one row of a merged sensor timeline.
// Shock points carry Shock only, environment points carry Temperature and Humidity only.
type TimelinePoint struct {
	Timestamp   string   `json:"timestamp"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Shock       *int     `json:"shock"`
}

// IsShock reports whether the point was projected from a shock reading
func (p TimelinePoint) IsShock() bool {
	return p.Shock != nil
}
