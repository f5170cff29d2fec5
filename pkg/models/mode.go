package models

// ViewMode is one entry of the shared display mode set
type ViewMode struct {
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// DefaultModeLabels is the mode set used when none is configured.
// The first entry is active at startup.
var DefaultModeLabels = []string{
	"Current Game",
	"Games",
	"Players",
	"Sensor data",
	"Select Table",
}
