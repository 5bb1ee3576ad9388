package fusion

import (
	"math"
	"time"

	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/geo"
)

const (
	defaultStepLengthM  = 0.75
	confidenceDecayRate = 0.95
)

// DeadReckoner extrapolates position from the last confirmed GPS fix,
// walking forward along the last known heading by counted steps.
type DeadReckoner struct {
	lat, lon      float64
	heading       float64
	fixedAt       time.Time
	baselineSteps int
	stepLengthM   float64
	haveFix       bool
}

func NewDeadReckoner() *DeadReckoner {
	return &DeadReckoner{stepLengthM: defaultStepLengthM}
}

// SetStepLength overrides the stride length in meters. Non-positive values
// are ignored.
func (d *DeadReckoner) SetStepLength(m float64) {
	if m > 0 {
		d.stepLengthM = m
	}
}

// NoteFix records a confirmed GPS position, resetting confidence and the
// step baseline.
func (d *DeadReckoner) NoteFix(lat, lon, heading float64, at time.Time, steps int) {
	d.lat = lat
	d.lon = lon
	d.heading = heading
	d.fixedAt = at
	d.baselineSteps = steps
	d.haveFix = true
}

// Estimate projects the current position from steps taken since the last
// fix. Confidence decays geometrically per step and starts at 1.0 on a
// fresh fix.
func (d *DeadReckoner) Estimate(steps int) (lat, lon, confidence float64, ok bool) {
	if !d.haveFix {
		return 0, 0, 0, false
	}
	delta := steps - d.baselineSteps
	if delta < 0 {
		delta = 0
	}
	distance := float64(delta) * d.stepLengthM
	lat, lon = geo.Destination(d.lat, d.lon, d.heading, distance)
	confidence = math.Pow(confidenceDecayRate, float64(delta))
	return lat, lon, confidence, true
}

func (d *DeadReckoner) Reset() {
	*d = DeadReckoner{stepLengthM: d.stepLengthM}
}
