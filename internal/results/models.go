package results

import (
	"time"

	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/session"
)

// Run is a persisted run record with its identity columns.
type Run struct {
	ID       string `json:"id"`
	DeviceID string `json:"device_id"`
	session.RunResult
	CreatedAt time.Time `json:"created_at"`
}

// Stats aggregates a device's run history.
type Stats struct {
	DeviceID       string  `json:"device_id"`
	RunCount       int     `json:"run_count"`
	TotalDistanceM float64 `json:"total_distance_m"`
	TotalDurationS float64 `json:"total_duration_s"`
	TotalElevGainM float64 `json:"total_elevation_gain_m"`
}
