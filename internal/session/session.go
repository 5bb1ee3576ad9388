// Package session implements the run-tracking state machine: it ingests
// raw position fixes, enforces quality gates, accumulates distance,
// duration, pace, splits and elevation, bridges GPS outages, and adapts
// the location polling interval.
package session

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/filter"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/fusion"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/geo"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/sampling"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/trajectory"
)

const (
	maxAccuracyM     = 20.0 // real fixes above this never touch distance or filters
	jitterThresholdM = 0.5
	elevationFloorM  = 1.0
	speedWindow      = 10 * time.Second

	durationTickEvery = time.Second
	outageTickEvery   = 5 * time.Second
	samplingTickEvery = 30 * time.Second

	outageAfter          = 10 * time.Second
	predictedConfidence  = 0.5
	estimatedConfidence  = 0.3
	predictedAccuracyNum = 25.0
	estimatedAccuracyNum = 50.0

	estimatedStepLengthM = 0.75
)

// Options inject the platform capabilities a session depends on. Absent
// capabilities fall back to no-op implementations.
type Options struct {
	Watcher    LocationWatcher
	WakeLock   WakeLock
	Fusion     *fusion.Manager
	SensorInit func(context.Context) error
	Now        func() time.Time
}

// Session is a single tracking session. Its lifecycle is owned explicitly
// by the caller; there is no process-wide tracker instance. All state
// mutation is serialized behind one mutex: location fixes, the periodic
// timers and motion samples never run concurrently against it.
type Session struct {
	mu sync.Mutex

	cfg        Config
	watcher    LocationWatcher
	wake       WakeLock
	fusionMgr  *fusion.Manager
	sensorInit func(context.Context) error
	now        func() time.Time

	smoother filter.Smoother
	gap      *trajectory.GapFiller

	listeners listeners

	state            string
	startTime        time.Time
	pausedAt         time.Time
	accumulatedPause time.Duration

	distance          float64
	duration          float64
	splits            []Split
	lastSplitDistance float64

	elevGain     float64
	elevLoss     float64
	lastAltitude *float64

	history         []Position // filtered accepted fixes
	rawTrack        []Position // raw accepted fixes
	trackElapsed    []float64  // pause-excluded seconds per rawTrack entry
	lastRealFixAt   time.Time  // wall clock, drives outage detection
	lastAcceptedAt  time.Time  // wall clock of the last accepted fix
	smoothedSpeed   float64
	lastWindowSpeed float64

	goalMeters   float64
	goalReached  bool
	battery      float64
	backgrounded bool

	cancelTimers context.CancelFunc
}

// New builds a session for the given configuration. The session starts
// Idle; nothing runs until Start.
func New(cfg Config, opts Options) *Session {
	if cfg.Unit == "" {
		cfg.Unit = UnitKm
	}
	if cfg.Activity == "" {
		cfg.Activity = fusion.ActivityRun
	}
	s := &Session{
		cfg:        cfg,
		watcher:    opts.Watcher,
		wake:       opts.WakeLock,
		fusionMgr:  opts.Fusion,
		sensorInit: opts.SensorInit,
		now:        opts.Now,
		smoother:   filter.New(cfg.FilterMode, cfg.Activity),
		gap:        trajectory.NewGapFiller(trajectory.NewPredictor()),
		state:      StateIdle,
		goalMeters: cfg.GoalMeters,
		battery:    -1,
	}
	if s.watcher == nil {
		s.watcher = nopWatcher{}
	}
	if s.wake == nil {
		s.wake = NopWakeLock{}
	}
	if s.fusionMgr == nil {
		s.fusionMgr = fusion.NewManager()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// State returns the current lifecycle state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Distance returns the accumulated distance in meters.
func (s *Session) Distance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.distance
}

// Duration returns the elapsed tracked duration in seconds.
func (s *Session) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Splits returns a copy of the recorded splits.
func (s *Session) Splits() []Split {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Split, len(s.splits))
	copy(out, s.splits)
	return out
}

// Track returns a copy of the filtered positions accepted so far.
func (s *Session) Track() []Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Position, len(s.history))
	copy(out, s.history)
	return out
}

// Start begins tracking. Valid from Idle; a no-op when already tracking.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateTracking {
		return nil
	}
	if s.state == StatePaused {
		return errInvalidTransition(s.state, "start")
	}

	s.resetLocked()
	s.startTime = s.now()
	s.lastRealFixAt = s.startTime

	if err := s.wake.Acquire(); err != nil {
		log.Printf("wake lock unavailable: %v", err)
	}
	if err := s.watcher.Start(s.handleFix, s.handleWatcherError); err != nil {
		s.wake.Release()
		s.emitPermission(err)
		return err
	}

	ctx := s.startTimersLocked()
	s.fusionMgr.Init(ctx, s.sensorInit)

	s.state = StateTracking
	s.emitStatus(StateTracking)
	return nil
}

// Pause suspends tracking, preserving all accumulators. Valid only while
// tracking.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateTracking {
		return errInvalidTransition(s.state, "pause")
	}

	s.teardownLocked()
	s.pausedAt = s.now()
	s.state = StatePaused
	s.emitStatus(StatePaused)
	return nil
}

// Resume continues a paused session, accounting the paused interval.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return errInvalidTransition(s.state, "resume")
	}

	s.accumulatedPause += s.now().Sub(s.pausedAt)
	s.pausedAt = time.Time{}

	if err := s.wake.Acquire(); err != nil {
		log.Printf("wake lock unavailable: %v", err)
	}
	if err := s.watcher.Start(s.handleFix, s.handleWatcherError); err != nil {
		s.wake.Release()
		s.emitPermission(err)
		return err
	}
	s.startTimersLocked()

	s.state = StateTracking
	s.emitStatus(StateTracking)
	return nil
}

// Stop finalizes the session and returns the immutable result. Valid from
// Tracking or Paused; afterwards the session is Idle again.
func (s *Session) Stop() (RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateTracking && s.state != StatePaused {
		return RunResult{}, errInvalidTransition(s.state, "stop")
	}

	now := s.now()
	if s.state == StatePaused {
		s.accumulatedPause += now.Sub(s.pausedAt)
		s.pausedAt = time.Time{}
	}
	s.teardownLocked()

	if wall := now.Sub(s.startTime) - s.accumulatedPause; wall.Seconds() > s.duration {
		s.duration = wall.Seconds()
	}
	if len(s.splits) == 0 && len(s.rawTrack) > 1 {
		s.recomputeSplitsLocked()
	}

	result := RunResult{
		DistanceMeters:  s.distance,
		DurationSeconds: s.duration,
		Splits:          append([]Split(nil), s.splits...),
		ElevationGainM:  s.elevGain,
		ElevationLossM:  s.elevLoss,
		Unit:            s.cfg.Unit,
		Activity:        s.cfg.Activity,
		StartedAt:       s.startTime,
		FinishedAt:      now,
	}
	switch s.cfg.Activity {
	case fusion.ActivityCycle:
		if s.duration > 0 {
			result.AverageSpeedMPS = s.distance / s.duration
		}
	case fusion.ActivityWalk:
		result.Pace = Pace(s.distance, s.duration, UnitMeters(s.cfg.Unit))
		result.TotalSteps = s.totalStepsLocked()
	default:
		result.Pace = Pace(s.distance, s.duration, UnitMeters(s.cfg.Unit))
	}

	s.state = StateIdle
	s.emitStatus(StateIdle)
	s.emitCompleted(result)
	return result, nil
}

// SetDistanceGoal installs or replaces the distance goal in meters.
func (s *Session) SetDistanceGoal(meters float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goalMeters = meters
	s.goalReached = false
}

// ClearDistanceGoal removes the distance goal.
func (s *Session) ClearDistanceGoal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goalMeters = 0
	s.goalReached = false
}

// SetBattery feeds the current battery level in [0,1] to the adaptive
// sampling controller.
func (s *Session) SetBattery(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battery = level
}

// SetBackgrounded records app visibility for the sampling controller.
func (s *Session) SetBackgrounded(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backgrounded = v
}

// Ingest feeds one raw fix through the quality gate and accounting
// pipeline. Fixes are processed strictly in delivery order.
func (s *Session) Ingest(f RawFix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingestLocked(f)
}

// ProcessMotion consumes one accelerometer/gyroscope sample, driving the
// step counter and activity classifier.
func (s *Session) ProcessMotion(m fusion.MotionSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTracking {
		return
	}

	before := s.fusionMgr.Steps()
	s.fusionMgr.Process(m)
	if after := s.fusionMgr.Steps(); after != before {
		s.emitSteps(after)
	}

	// A confident classification retunes the position filter.
	if label, conf := s.fusionMgr.CurrentActivity(); conf >= 0.7 {
		switch label {
		case fusion.ActivityWalk, fusion.ActivityRun, fusion.ActivityCycle:
			s.smoother.SetActivity(label)
		}
	}
}

// TakeSnapshot captures the live accumulators for persistence.
func (s *Session) TakeSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Config:         s.cfg,
		DistanceMeters: s.distance,
		DurationSecs:   s.duration,
		Splits:         append([]Split(nil), s.splits...),
		ElevationGainM: s.elevGain,
		ElevationLossM: s.elevLoss,
		Steps:          s.fusionMgr.Steps(),
		SavedAt:        s.now(),
	}
}

// Restore rehydrates the session from a snapshot and resumes tracking.
// Elapsed wall-clock time since the snapshot is added to the duration.
func (s *Session) Restore(snap Snapshot) error {
	return s.restore(snap, false)
}

// RestorePaused rehydrates from a snapshot into the Paused state without
// crediting elapsed wall-clock time.
func (s *Session) RestorePaused(snap Snapshot) error {
	return s.restore(snap, true)
}

func (s *Session) restore(snap Snapshot, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return errInvalidTransition(s.state, "restore")
	}

	s.resetLocked()
	s.distance = snap.DistanceMeters
	s.duration = snap.DurationSecs
	s.splits = append([]Split(nil), snap.Splits...)
	s.elevGain = snap.ElevationGainM
	s.elevLoss = snap.ElevationLossM
	if n := len(s.splits); n > 0 {
		s.lastSplitDistance = float64(s.splits[n-1].Index) * UnitMeters(s.cfg.Unit)
	}

	now := s.now()
	if !paused && !snap.SavedAt.IsZero() {
		if gap := now.Sub(snap.SavedAt).Seconds(); gap > 0 {
			s.duration += gap
		}
	}
	s.startTime = now.Add(-time.Duration(s.duration * float64(time.Second)))
	s.lastRealFixAt = now

	// Re-emit restored values as if freshly computed.
	s.emitDistance(s.distance)
	s.emitDuration(s.duration)
	s.emitElevation(s.elevGain, s.elevLoss)
	if s.cfg.Activity != fusion.ActivityCycle {
		s.emitPace(Pace(s.distance, s.duration, UnitMeters(s.cfg.Unit)))
	}
	if snap.Steps > 0 {
		s.emitSteps(snap.Steps)
	}

	if paused {
		s.pausedAt = now
		s.state = StatePaused
		s.emitStatus(StatePaused)
		return nil
	}

	if err := s.wake.Acquire(); err != nil {
		log.Printf("wake lock unavailable: %v", err)
	}
	if err := s.watcher.Start(s.handleFix, s.handleWatcherError); err != nil {
		s.wake.Release()
		s.emitPermission(err)
		return err
	}
	s.startTimersLocked()
	s.state = StateTracking
	s.emitStatus(StateTracking)
	return nil
}

func (s *Session) handleFix(f RawFix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingestLocked(f)
}

// handleWatcherError tears the watcher down; the caller must explicitly
// restart tracking after remediation.
func (s *Session) handleWatcherError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateTracking || s.state == StatePaused {
		s.teardownLocked()
		s.state = StateIdle
		s.emitStatus(StateIdle)
	}
	s.emitPermission(err)
}

func (s *Session) ingestLocked(f RawFix) {
	if s.state != StateTracking {
		return
	}
	if !validCoordinate(f.Latitude, f.Longitude) {
		return
	}
	if f.Origin == "" {
		f.Origin = OriginReal
	}
	if f.Origin == OriginReal && f.Accuracy > maxAccuracyM {
		return
	}

	flat, flon, facc := s.smoother.Smooth(f.Latitude, f.Longitude, f.Accuracy)
	filtered := Position{Latitude: flat, Longitude: flon, Accuracy: facc, Timestamp: f.Timestamp}
	if f.Altitude != nil && !math.IsNaN(*f.Altitude) {
		alt := s.smoother.SmoothAltitude(*f.Altitude)
		filtered.Altitude = &alt
	}

	// Duration follows the fix's own timestamp so it survives timer
	// throttling; it never moves backwards.
	if d := f.Timestamp.Sub(s.startTime) - s.accumulatedPause; d.Seconds() > s.duration {
		s.duration = d.Seconds()
		s.emitDuration(s.duration)
	}

	if f.Altitude != nil && !math.IsNaN(*f.Altitude) {
		s.updateElevationLocked(*f.Altitude)
	}

	var increment float64
	first := len(s.rawTrack) == 0
	if !first {
		prev := s.rawTrack[len(s.rawTrack)-1]
		increment = geo.Haversine(prev.Latitude, prev.Longitude, f.Latitude, f.Longitude)
	}

	raw := Position{Latitude: f.Latitude, Longitude: f.Longitude, Altitude: f.Altitude, Accuracy: f.Accuracy, Timestamp: f.Timestamp}
	if f.Origin == OriginReal {
		if !first {
			prev := s.rawTrack[len(s.rawTrack)-1]
			heading := geo.Bearing(prev.Latitude, prev.Longitude, f.Latitude, f.Longitude)
			s.fusionMgr.NoteFix(f.Latitude, f.Longitude, heading, f.Timestamp)
		}
		s.gap.ObserveReal(f.Latitude, f.Longitude, f.Timestamp)
		s.lastRealFixAt = s.now()
	}
	elapsed := f.Timestamp.Sub(s.startTime).Seconds() - s.accumulatedPause.Seconds()
	if n := len(s.trackElapsed); n > 0 && elapsed < s.trackElapsed[n-1] {
		elapsed = s.trackElapsed[n-1]
	}
	if elapsed < 0 {
		elapsed = 0
	}
	s.rawTrack = append(s.rawTrack, raw)
	s.trackElapsed = append(s.trackElapsed, elapsed)
	s.history = append(s.history, filtered)
	s.lastAcceptedAt = s.now()

	if first || increment < jitterThresholdM {
		// Jitter: time and elevation bookkeeping only; distance, goal
		// and split checks stay under this threshold.
		return
	}

	s.distance += increment
	s.emitDistance(s.distance)
	s.updateSpeedLocked(f.Timestamp)
	s.checkGoalLocked()
	s.checkSplitLocked()
}

func (s *Session) updateElevationLocked(altitude float64) {
	if s.lastAltitude == nil {
		v := altitude
		s.lastAltitude = &v
		return
	}
	diff := altitude - *s.lastAltitude
	if math.Abs(diff) >= elevationFloorM {
		if diff > 0 {
			s.elevGain += diff
		} else {
			s.elevLoss += -diff
		}
		s.emitElevation(s.elevGain, s.elevLoss)
	}
	*s.lastAltitude = altitude
}

// updateSpeedLocked recomputes pace (walk/run) or the smoothed sliding
// window speed (cycle) after a distance-bearing fix.
func (s *Session) updateSpeedLocked(ref time.Time) {
	raw := s.windowSpeedLocked(ref)
	s.lastWindowSpeed = raw

	if s.cfg.Activity == fusion.ActivityCycle {
		if raw > 0 {
			s.smoothedSpeed = 0.7*s.smoothedSpeed + 0.3*raw
		} else {
			s.smoothedSpeed *= 0.8
		}
		s.emitSpeed(s.smoothedSpeed)
		return
	}
	s.emitPace(Pace(s.distance, s.duration, UnitMeters(s.cfg.Unit)))
}

// windowSpeedLocked measures speed over the trailing window of accepted
// fixes, falling back to the whole-session average with fewer than two
// window points.
func (s *Session) windowSpeedLocked(ref time.Time) float64 {
	cutoff := ref.Add(-speedWindow)
	start := len(s.rawTrack)
	for i := len(s.rawTrack) - 1; i >= 0; i-- {
		if s.rawTrack[i].Timestamp.Before(cutoff) {
			break
		}
		start = i
	}
	window := s.rawTrack[start:]
	if len(window) < 2 {
		if s.duration > 0 {
			return s.distance / s.duration
		}
		return 0
	}

	var dist float64
	for i := 1; i < len(window); i++ {
		dist += geo.Haversine(window[i-1].Latitude, window[i-1].Longitude, window[i].Latitude, window[i].Longitude)
	}
	elapsed := window[len(window)-1].Timestamp.Sub(window[0].Timestamp).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return dist / elapsed
}

func (s *Session) checkGoalLocked() {
	if s.goalMeters <= 0 || s.goalReached {
		return
	}
	if s.distance >= s.goalMeters {
		s.goalReached = true
		s.emitGoal(s.goalMeters)
	}
}

func (s *Session) checkSplitLocked() {
	unit := UnitMeters(s.cfg.Unit)
	completed := int(math.Floor(s.distance / unit))
	if completed <= int(math.Floor(s.lastSplitDistance/unit)) {
		return
	}

	var prevDuration float64
	if n := len(s.splits); n > 0 {
		prevDuration = s.splits[n-1].Duration
	}
	split := Split{
		Index:    completed,
		Duration: s.duration,
		Pace:     (s.duration - prevDuration) / unit,
	}
	s.splits = append(s.splits, split)
	s.lastSplitDistance = float64(completed) * unit
	s.emitSplit(split)
}

// recomputeSplitsLocked rebuilds splits from the accepted position
// history. Used as a fallback at stop time when live split evaluation
// never fired. Per-fix elapsed times already exclude paused intervals.
func (s *Session) recomputeSplitsLocked() {
	unit := UnitMeters(s.cfg.Unit)
	var cum float64
	var prevDuration float64
	index := 0
	for i := 1; i < len(s.rawTrack); i++ {
		prev := s.rawTrack[i-1]
		cur := s.rawTrack[i]
		cum += geo.Haversine(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude)
		for int(math.Floor(cum/unit)) > index {
			index++
			at := s.trackElapsed[i]
			s.splits = append(s.splits, Split{
				Index:    index,
				Duration: at,
				Pace:     (at - prevDuration) / unit,
			})
			prevDuration = at
		}
	}
}

func (s *Session) totalStepsLocked() int {
	steps := s.fusionMgr.Steps()
	if steps == 0 && s.distance > 0 {
		steps = int(math.Round(s.distance / estimatedStepLengthM))
	}
	return steps
}

// startTimersLocked launches the periodic tasks and returns their
// context, cancelled by teardown. Sensor acquisition shares it so a
// pause or stop abandons an in-flight init.
func (s *Session) startTimersLocked() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelTimers = cancel
	s.runTimer(ctx, durationTickEvery, s.durationTick)
	s.runTimer(ctx, outageTickEvery, s.outageTick)
	s.runTimer(ctx, samplingTickEvery, s.samplingTick)
	return ctx
}

func (s *Session) runTimer(ctx context.Context, every time.Duration, fn func()) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// teardownLocked cancels the periodic tasks, stops the watcher and
// releases the wake lock. Every exit path (stop, pause, watcher error)
// funnels through here.
func (s *Session) teardownLocked() {
	if s.cancelTimers != nil {
		s.cancelTimers()
		s.cancelTimers = nil
	}
	s.watcher.Stop()
	s.wake.Release()
}

// durationTick advances duration from the wall clock when no fixes
// arrive, keeping the UI moving; fix-driven updates take precedence.
func (s *Session) durationTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTracking {
		return
	}

	if wall := s.now().Sub(s.startTime) - s.accumulatedPause; wall.Seconds() > s.duration {
		s.duration = wall.Seconds()
		s.emitDuration(s.duration)
	}

	if s.cfg.Activity == fusion.ActivityCycle {
		if s.smoothedSpeed > 0 && (s.lastAcceptedAt.IsZero() || s.now().Sub(s.lastAcceptedAt) > speedWindow) {
			s.smoothedSpeed *= 0.8
			s.emitSpeed(s.smoothedSpeed)
		}
		return
	}
	if s.distance > 0 {
		s.emitPace(Pace(s.distance, s.duration, UnitMeters(s.cfg.Unit)))
	}
}

// outageTick bridges GPS outages: after 10s without a real fix it tries
// trajectory prediction first, then the dead reckoning estimate, and
// injects the winner as a synthetic fix with degraded accuracy.
func (s *Session) outageTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTracking {
		return
	}

	now := s.now()
	if now.Sub(s.lastRealFixAt) <= outageAfter {
		return
	}

	if pred, ok := s.gap.FillGap(now); ok && pred.Confidence > predictedConfidence {
		s.ingestLocked(RawFix{
			Latitude:  pred.Lat,
			Longitude: pred.Lon,
			Accuracy:  predictedAccuracyNum / pred.Confidence,
			Timestamp: now,
			Origin:    OriginPredicted,
		})
		return
	}

	if lat, lon, conf, ok := s.fusionMgr.EstimatedPosition(); ok && conf > estimatedConfidence {
		s.ingestLocked(RawFix{
			Latitude:  lat,
			Longitude: lon,
			Accuracy:  estimatedAccuracyNum / conf,
			Timestamp: now,
			Origin:    OriginEstimated,
		})
	}
}

// samplingTick recomputes the polling interval and pushes it to the
// watcher.
func (s *Session) samplingTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTracking {
		return
	}

	activity := s.cfg.Activity
	if label, conf := s.fusionMgr.CurrentActivity(); conf >= 0.7 && label != fusion.ActivityUnknown {
		activity = label
	}

	speed := s.lastWindowSpeed
	if s.cfg.Activity == fusion.ActivityCycle {
		speed = s.smoothedSpeed
	}

	goalDistance := -1.0
	if s.goalMeters > 0 && !s.goalReached {
		goalDistance = math.Max(0, s.goalMeters-s.distance)
	}

	interval := sampling.Interval(sampling.Inputs{
		Activity:        activity,
		SpeedMPS:        speed,
		BatteryLevel:    s.battery,
		DistanceToGoalM: goalDistance,
		Backgrounded:    s.backgrounded,
	})
	s.watcher.SetInterval(interval)
	s.emitInterval(interval)
}

func (s *Session) resetLocked() {
	s.startTime = time.Time{}
	s.pausedAt = time.Time{}
	s.accumulatedPause = 0
	s.distance = 0
	s.duration = 0
	s.splits = nil
	s.lastSplitDistance = 0
	s.elevGain = 0
	s.elevLoss = 0
	s.lastAltitude = nil
	s.history = nil
	s.rawTrack = nil
	s.trackElapsed = nil
	s.lastRealFixAt = time.Time{}
	s.lastAcceptedAt = time.Time{}
	s.smoothedSpeed = 0
	s.lastWindowSpeed = 0
	s.goalReached = false
	s.smoother.Reset()
	s.gap.Reset()
	s.fusionMgr.Reset()
}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

type invalidTransitionError struct {
	state, op string
}

func (e invalidTransitionError) Error() string {
	return "cannot " + e.op + " from state " + e.state
}

func errInvalidTransition(state, op string) error {
	return invalidTransitionError{state: state, op: op}
}

// nopWatcher satisfies LocationWatcher when no platform source is wired,
// e.g. for snapshot-restore flows driven purely through Ingest.
type nopWatcher struct{}

func (nopWatcher) Start(func(RawFix), func(error)) error { return nil }
func (nopWatcher) SetInterval(time.Duration)             {}
func (nopWatcher) Stop()                                 {}
