// Package fusion derives step counts, an activity label, and a dead
// reckoning position estimate from device motion sensors. It backs GPS
// tracking during signal gaps; when sensors are unavailable the session
// keeps running GPS-only.
package fusion

import (
	"context"
	"log"
	"sync"
	"time"
)

// Manager owns the step counter, activity classifier and dead reckoning
// estimator and exposes one fused view over them.
type Manager struct {
	mu         sync.Mutex
	steps      *StepCounter
	classifier *ActivityClassifier
	reckoner   *DeadReckoner
	degraded   bool
	inited     bool
}

func NewManager() *Manager {
	return &Manager{
		steps:      NewStepCounter(),
		classifier: NewActivityClassifier(),
		reckoner:   NewDeadReckoner(),
	}
}

// Init acquires sensor access in the background. It never blocks the
// caller; failure flips the manager into degraded mode and tracking
// continues GPS-only. Cancelling ctx abandons the acquisition without
// marking the manager degraded.
func (m *Manager) Init(ctx context.Context, acquire func(context.Context) error) {
	go func() {
		var err error
		if acquire != nil {
			err = acquire(ctx)
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			m.degraded = true
			log.Printf("motion sensor init failed, continuing GPS-only: %v", err)
			return
		}
		m.inited = true
	}()
}

// Degraded reports whether sensor acquisition failed.
func (m *Manager) Degraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded
}

// OnStep registers a per-step callback, invoked with the cumulative count.
func (m *Manager) OnStep(fn func(total int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps.OnStep(fn)
}

// Process consumes one motion sample.
func (m *Manager) Process(s MotionSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps.Process(s)
	m.classifier.Add(s)
}

// Steps returns the cumulative step count.
func (m *Manager) Steps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.steps.Steps()
}

// CurrentActivity returns the classifier's label and confidence.
func (m *Manager) CurrentActivity() (string, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.classifier.Classify()
}

// NoteFix anchors dead reckoning on a confirmed GPS position.
func (m *Manager) NoteFix(lat, lon, heading float64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reckoner.NoteFix(lat, lon, heading, at, m.steps.Steps())
}

// EstimatedPosition returns the dead reckoning estimate from steps taken
// since the last anchored fix.
func (m *Manager) EstimatedPosition() (lat, lon, confidence float64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reckoner.Estimate(m.steps.Steps())
}

// Reset clears all component state for a new session.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps.Reset()
	m.classifier.Reset()
	m.reckoner.Reset()
}
