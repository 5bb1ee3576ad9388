package session

import "time"

// listeners holds the typed subscriber lists for every notification kind
// the session publishes. Composition instead of making the session an
// event-emitter subtype: nothing depends on the session being a
// notification source itself.
type listeners struct {
	distance   []func(meters float64)
	duration   []func(seconds float64)
	pace       []func(secondsPerUnit float64)
	speed      []func(mps float64)
	split      []func(Split)
	elevation  []func(gainM, lossM float64)
	steps      []func(total int)
	status     []func(state string)
	goal       []func(meters float64)
	permission []func(err error)
	interval   []func(d time.Duration)
	completed  []func(RunResult)
}

// OnDistanceChange subscribes to cumulative distance updates in meters.
func (s *Session) OnDistanceChange(fn func(float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.distance = append(s.listeners.distance, fn)
}

// OnDurationChange subscribes to elapsed duration updates in seconds.
func (s *Session) OnDurationChange(fn func(float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.duration = append(s.listeners.duration, fn)
}

// OnPaceChange subscribes to pace updates (seconds per distance unit).
func (s *Session) OnPaceChange(fn func(float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.pace = append(s.listeners.pace, fn)
}

// OnSpeedChange subscribes to smoothed speed updates (m/s, cycling).
func (s *Session) OnSpeedChange(fn func(float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.speed = append(s.listeners.speed, fn)
}

// OnSplitRecorded subscribes to split records.
func (s *Session) OnSplitRecorded(fn func(Split)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.split = append(s.listeners.split, fn)
}

// OnElevationChange subscribes to elevation gain/loss updates in meters.
func (s *Session) OnElevationChange(fn func(gainM, lossM float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.elevation = append(s.listeners.elevation, fn)
}

// OnStepsChange subscribes to cumulative step-count updates.
func (s *Session) OnStepsChange(fn func(int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.steps = append(s.listeners.steps, fn)
}

// OnStatusChange subscribes to session state transitions.
func (s *Session) OnStatusChange(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.status = append(s.listeners.status, fn)
}

// OnGoalReached subscribes to the distance-goal notification. Reaching a
// goal does not stop tracking; stopping is the caller's decision.
func (s *Session) OnGoalReached(fn func(float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.goal = append(s.listeners.goal, fn)
}

// OnPermissionError subscribes to location permission and watcher errors.
func (s *Session) OnPermissionError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.permission = append(s.listeners.permission, fn)
}

// OnIntervalChange subscribes to adaptive sampling interval updates.
func (s *Session) OnIntervalChange(fn func(time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.interval = append(s.listeners.interval, fn)
}

// OnRunCompleted subscribes to the final result record emitted by Stop.
func (s *Session) OnRunCompleted(fn func(RunResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners.completed = append(s.listeners.completed, fn)
}

func (s *Session) emitDistance(m float64) {
	for _, fn := range s.listeners.distance {
		fn(m)
	}
}

func (s *Session) emitDuration(secs float64) {
	for _, fn := range s.listeners.duration {
		fn(secs)
	}
}

func (s *Session) emitPace(p float64) {
	for _, fn := range s.listeners.pace {
		fn(p)
	}
}

func (s *Session) emitSpeed(v float64) {
	for _, fn := range s.listeners.speed {
		fn(v)
	}
}

func (s *Session) emitSplit(sp Split) {
	for _, fn := range s.listeners.split {
		fn(sp)
	}
}

func (s *Session) emitElevation(gain, loss float64) {
	for _, fn := range s.listeners.elevation {
		fn(gain, loss)
	}
}

func (s *Session) emitSteps(total int) {
	for _, fn := range s.listeners.steps {
		fn(total)
	}
}

func (s *Session) emitStatus(state string) {
	for _, fn := range s.listeners.status {
		fn(state)
	}
}

func (s *Session) emitGoal(m float64) {
	for _, fn := range s.listeners.goal {
		fn(m)
	}
}

func (s *Session) emitPermission(err error) {
	for _, fn := range s.listeners.permission {
		fn(err)
	}
}

func (s *Session) emitInterval(d time.Duration) {
	for _, fn := range s.listeners.interval {
		fn(d)
	}
}

func (s *Session) emitCompleted(r RunResult) {
	for _, fn := range s.listeners.completed {
		fn(r)
	}
}
