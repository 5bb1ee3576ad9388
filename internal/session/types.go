package session

import (
	"errors"
	"time"
)

// Fix provenance. Synthetic fixes produced during GPS outages carry the
// predicted or estimated origin and a degraded accuracy.
const (
	OriginReal      = "real"
	OriginPredicted = "predicted"
	OriginEstimated = "estimated"
)

// Distance units for pace and splits.
const (
	UnitKm   = "km"
	UnitMile = "mile"
)

// Session states.
const (
	StateIdle     = "idle"
	StateTracking = "tracking"
	StatePaused   = "paused"
)

// ErrPermissionDenied marks a location permission failure delivered by the
// watcher. It is surfaced to permission listeners and requires external
// remediation; there is no automatic retry.
var ErrPermissionDenied = errors.New("location permission denied")

// RawFix is one geographic position sample as delivered by the location
// source. Immutable once received.
type RawFix struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Altitude  *float64  `json:"altitude_m,omitempty"`
	Accuracy  float64   `json:"accuracy_m"`
	Timestamp time.Time `json:"timestamp"`
	Origin    string    `json:"origin,omitempty"`
}

// Position is an accepted fix, either raw or after filtering.
type Position struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Altitude  *float64  `json:"altitude_m,omitempty"`
	Accuracy  float64   `json:"accuracy_m"`
	Timestamp time.Time `json:"timestamp"`
}

// Split is recorded exactly once per whole distance-unit crossing and
// never mutated afterwards.
type Split struct {
	Index    int     `json:"index"`
	Duration float64 `json:"duration_s"`
	Pace     float64 `json:"pace"`
	Partial  bool    `json:"partial"`
}

// Config is the explicit per-session configuration; there is no ambient
// global state.
type Config struct {
	Unit       string  `json:"unit"`
	FilterMode string  `json:"filter_mode"`
	Activity   string  `json:"activity"`
	GoalMeters float64 `json:"goal_m,omitempty"`
}

// RunResult is the immutable record produced when a session stops.
type RunResult struct {
	DistanceMeters  float64   `json:"distance_m"`
	DurationSeconds float64   `json:"duration_s"`
	Pace            float64   `json:"pace,omitempty"`
	AverageSpeedMPS float64   `json:"average_speed_mps,omitempty"`
	TotalSteps      int       `json:"total_steps,omitempty"`
	Splits          []Split   `json:"splits"`
	ElevationGainM  float64   `json:"elevation_gain_m"`
	ElevationLossM  float64   `json:"elevation_loss_m"`
	Unit            string    `json:"unit"`
	Activity        string    `json:"activity"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Snapshot captures an in-flight session for later restoration, for
// example across a process restart.
type Snapshot struct {
	Config         Config    `json:"config"`
	DistanceMeters float64   `json:"distance_m"`
	DurationSecs   float64   `json:"duration_s"`
	Splits         []Split   `json:"splits"`
	ElevationGainM float64   `json:"elevation_gain_m"`
	ElevationLossM float64   `json:"elevation_loss_m"`
	Steps          int       `json:"steps"`
	SavedAt        time.Time `json:"saved_at"`
}

// LocationWatcher is the platform location source. Start is called once
// per tracking interval; Stop must be idempotent. SetInterval pushes the
// adaptive polling interval to the platform configuration.
type LocationWatcher interface {
	Start(onFix func(RawFix), onErr func(error)) error
	SetInterval(d time.Duration)
	Stop()
}

// WakeLock keeps the device awake across the active tracking interval.
// Platforms without the capability inject NopWakeLock.
type WakeLock interface {
	Acquire() error
	Release()
}

// NopWakeLock is the no-op capability used when the platform offers none.
type NopWakeLock struct{}

func (NopWakeLock) Acquire() error { return nil }
func (NopWakeLock) Release()       {}

// UnitMeters maps a distance unit to its length in meters.
func UnitMeters(unit string) float64 {
	if unit == UnitMile {
		return 1609.344
	}
	return 1000
}

// Pace returns seconds per distance unit for the given totals, or zero
// before any distance has accumulated.
func Pace(distanceM, durationS, unitM float64) float64 {
	if distanceM <= 0 || durationS <= 0 {
		return 0
	}
	return durationS / (distanceM / unitM)
}
