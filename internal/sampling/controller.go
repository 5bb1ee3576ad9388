// Package sampling computes the GPS polling interval, trading tracking
// fidelity against battery drain.
package sampling

import "time"

// Interval bounds pushed to the location watcher.
const (
	MinInterval = 3 * time.Second
	MaxInterval = 60 * time.Second
)

// Base polling intervals by activity type.
const (
	baseWalk  = 15 * time.Second
	baseRun   = 10 * time.Second
	baseCycle = 5 * time.Second
)

// Inputs are the signals the controller weighs on each recompute.
type Inputs struct {
	Activity        string
	SpeedMPS        float64
	BatteryLevel    float64 // 0..1, negative when unknown
	DistanceToGoalM float64 // negative when no goal is set
	Backgrounded    bool
}

// Interval computes the next polling interval. The result is always
// within [MinInterval, MaxInterval].
func Interval(in Inputs) time.Duration {
	interval := baseFor(in.Activity)

	// Measured speed overrides the activity base downward (or upward
	// when barely moving).
	switch {
	case in.SpeedMPS > 15:
		interval = minDuration(interval, 5*time.Second)
	case in.SpeedMPS > 8:
		interval = minDuration(interval, 10*time.Second)
	case in.SpeedMPS < 0.5:
		interval = maxDuration(interval, 30*time.Second)
	}

	// Battery scaling applies on top of the speed-adjusted value.
	if in.BatteryLevel >= 0 {
		switch {
		case in.BatteryLevel < 0.15:
			interval *= 2
		case in.BatteryLevel < 0.30:
			interval = interval * 3 / 2
		}
	}

	// Close to a distance goal the UI needs tight updates.
	if in.DistanceToGoalM >= 0 && in.DistanceToGoalM <= 1000 {
		interval = minDuration(interval, 5*time.Second)
	}

	if in.Backgrounded {
		interval = maxDuration(interval, 30*time.Second)
	}

	return clamp(interval)
}

func baseFor(activity string) time.Duration {
	switch activity {
	case "walk":
		return baseWalk
	case "cycle":
		return baseCycle
	default:
		return baseRun
	}
}

func clamp(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	if d > MaxInterval {
		return MaxInterval
	}
	return d
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
