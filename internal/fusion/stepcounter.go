package fusion

import (
	"math"
	"time"
)

const (
	stepThreshold   = 12.0 // m/s^2, upward crossing fires a step
	stepMinInterval = 250 * time.Millisecond
)

// MotionSample is one accelerometer (and optional gyroscope) reading.
// Samples are transient; they are consumed immediately and not retained
// beyond the classifier window.
type MotionSample struct {
	AX, AY, AZ float64 // m/s^2
	RX, RY, RZ float64 // rad/s, zero when the device has no gyroscope
	At         time.Time
}

// Magnitude returns the acceleration vector magnitude.
func (m MotionSample) Magnitude() float64 {
	return math.Sqrt(m.AX*m.AX + m.AY*m.AY + m.AZ*m.AZ)
}

// RotationMagnitude returns the rotation-rate vector magnitude.
func (m MotionSample) RotationMagnitude() float64 {
	return math.Sqrt(m.RX*m.RX + m.RY*m.RY + m.RZ*m.RZ)
}

// StepCounter detects steps as upward threshold crossings of the
// acceleration magnitude, with a refractory interval between steps.
type StepCounter struct {
	lastMagnitude float64
	lastStepAt    time.Time
	steps         int
	onStep        func(total int)
}

func NewStepCounter() *StepCounter {
	return &StepCounter{}
}

// OnStep registers a callback invoked with the cumulative count each time
// a step fires.
func (c *StepCounter) OnStep(fn func(total int)) {
	c.onStep = fn
}

// Process feeds one motion sample and reports whether it produced a step.
func (c *StepCounter) Process(s MotionSample) bool {
	mag := s.Magnitude()
	fired := false
	if c.lastMagnitude < stepThreshold && mag >= stepThreshold {
		if c.lastStepAt.IsZero() || s.At.Sub(c.lastStepAt) >= stepMinInterval {
			c.steps++
			c.lastStepAt = s.At
			fired = true
			if c.onStep != nil {
				c.onStep(c.steps)
			}
		}
	}
	c.lastMagnitude = mag
	return fired
}

// Steps returns the cumulative step count since the last reset.
func (c *StepCounter) Steps() int {
	return c.steps
}

func (c *StepCounter) Reset() {
	c.lastMagnitude = 0
	c.lastStepAt = time.Time{}
	c.steps = 0
}
