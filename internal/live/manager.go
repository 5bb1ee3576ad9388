// Package live owns in-flight tracking runs: it maps run IDs to
// sessions, feeds device-reported fixes and motion samples into them,
// relays session events to the stream hub, and archives finished runs.
package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/fusion"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/results"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/session"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/stream"

	"github.com/google/uuid"
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrNotOwner    = errors.New("run belongs to another device")
)

// Run pairs a session with its feed watcher and owner.
type Run struct {
	ID       string
	DeviceID string
	Session  *session.Session
	Feed     *FeedWatcher
}

// Manager is the registry of active runs.
type Manager struct {
	mu      sync.Mutex
	runs    map[string]*Run
	hub     *stream.Hub
	archive *results.Service
}

func NewManager(hub *stream.Hub, archive *results.Service) *Manager {
	return &Manager{
		runs:    map[string]*Run{},
		hub:     hub,
		archive: archive,
	}
}

// StartRun creates a session for the device and begins tracking.
func (m *Manager) StartRun(deviceID string, cfg session.Config) (*Run, error) {
	feed := NewFeedWatcher()
	sess := session.New(cfg, session.Options{Watcher: feed})

	run := &Run{
		ID:       uuid.NewString(),
		DeviceID: deviceID,
		Session:  sess,
		Feed:     feed,
	}
	m.bridgeEvents(run)

	if err := sess.Start(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.runs[run.ID] = run
	m.mu.Unlock()
	return run, nil
}

// RestoreRun rehydrates a persisted snapshot into a fresh run.
func (m *Manager) RestoreRun(deviceID string, snap session.Snapshot, paused bool) (*Run, error) {
	feed := NewFeedWatcher()
	sess := session.New(snap.Config, session.Options{Watcher: feed})

	run := &Run{
		ID:       uuid.NewString(),
		DeviceID: deviceID,
		Session:  sess,
		Feed:     feed,
	}
	m.bridgeEvents(run)

	var err error
	if paused {
		err = sess.RestorePaused(snap)
	} else {
		err = sess.Restore(snap)
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.runs[run.ID] = run
	m.mu.Unlock()
	return run, nil
}

func (m *Manager) get(runID, deviceID string) (*Run, error) {
	m.mu.Lock()
	run, ok := m.runs[runID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrRunNotFound
	}
	if deviceID != "" && run.DeviceID != deviceID {
		return nil, ErrNotOwner
	}
	return run, nil
}

// Pause suspends the run's session.
func (m *Manager) Pause(runID, deviceID string) error {
	run, err := m.get(runID, deviceID)
	if err != nil {
		return err
	}
	return run.Session.Pause()
}

// Resume continues a paused run.
func (m *Manager) Resume(runID, deviceID string) error {
	run, err := m.get(runID, deviceID)
	if err != nil {
		return err
	}
	return run.Session.Resume()
}

// Stop finalizes the run, archives the result and drops the run from
// the registry. The archived record is returned; with no archive
// configured the record carries the result without identity columns.
func (m *Manager) Stop(ctx context.Context, runID, deviceID string) (results.Run, error) {
	run, err := m.get(runID, deviceID)
	if err != nil {
		return results.Run{}, err
	}

	result, err := run.Session.Stop()
	if err != nil {
		return results.Run{}, err
	}

	m.mu.Lock()
	delete(m.runs, runID)
	m.mu.Unlock()

	if m.archive == nil {
		return results.Run{ID: runID, DeviceID: run.DeviceID, RunResult: result}, nil
	}
	return m.archive.Save(ctx, run.DeviceID, result)
}

// IngestFix forwards one device-reported fix into the run.
func (m *Manager) IngestFix(runID, deviceID string, f session.RawFix) error {
	run, err := m.get(runID, deviceID)
	if err != nil {
		return err
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now()
	}
	run.Feed.Deliver(f)
	return nil
}

// IngestMotion forwards accelerometer/gyro samples into the run.
func (m *Manager) IngestMotion(runID, deviceID string, samples []fusion.MotionSample) error {
	run, err := m.get(runID, deviceID)
	if err != nil {
		return err
	}
	for _, s := range samples {
		run.Session.ProcessMotion(s)
	}
	return nil
}

// ReportSignals updates battery and visibility inputs for adaptive
// sampling.
func (m *Manager) ReportSignals(runID, deviceID string, battery float64, backgrounded bool) error {
	run, err := m.get(runID, deviceID)
	if err != nil {
		return err
	}
	run.Session.SetBattery(battery)
	run.Session.SetBackgrounded(backgrounded)
	return nil
}

// ReportLocationFailure surfaces a device-side watcher failure.
func (m *Manager) ReportLocationFailure(runID, deviceID string) error {
	run, err := m.get(runID, deviceID)
	if err != nil {
		return err
	}
	run.Feed.Fail(session.ErrPermissionDenied)
	return nil
}

// SetGoal installs or clears the distance goal (meters <= 0 clears).
func (m *Manager) SetGoal(runID, deviceID string, meters float64) error {
	run, err := m.get(runID, deviceID)
	if err != nil {
		return err
	}
	if meters <= 0 {
		run.Session.ClearDistanceGoal()
	} else {
		run.Session.SetDistanceGoal(meters)
	}
	return nil
}

// Status describes a run's live accumulators and filtered track.
type Status struct {
	ID       string             `json:"id"`
	DeviceID string             `json:"device_id"`
	State    string             `json:"state"`
	Snapshot session.Snapshot   `json:"snapshot"`
	Track    []session.Position `json:"track"`
	Interval float64            `json:"interval_s"`
}

// StatusOf reports the live state of a run.
func (m *Manager) StatusOf(runID, deviceID string) (Status, error) {
	run, err := m.get(runID, deviceID)
	if err != nil {
		return Status{}, err
	}
	return Status{
		ID:       run.ID,
		DeviceID: run.DeviceID,
		State:    run.Session.State(),
		Snapshot: run.Session.TakeSnapshot(),
		Track:    run.Session.Track(),
		Interval: run.Feed.Interval().Seconds(),
	}, nil
}

// bridgeEvents relays every session notification to the stream hub so
// websocket subscribers see the run live.
func (m *Manager) bridgeEvents(run *Run) {
	if m.hub == nil {
		return
	}
	id := run.ID
	sess := run.Session

	sess.OnDistanceChange(func(meters float64) {
		m.hub.Publish(id, "distance", map[string]float64{"meters": meters})
	})
	sess.OnDurationChange(func(seconds float64) {
		m.hub.Publish(id, "duration", map[string]float64{"seconds": seconds})
	})
	sess.OnPaceChange(func(pace float64) {
		m.hub.Publish(id, "pace", map[string]float64{"seconds_per_unit": pace})
	})
	sess.OnSpeedChange(func(mps float64) {
		m.hub.Publish(id, "speed", map[string]float64{"mps": mps})
	})
	sess.OnSplitRecorded(func(split session.Split) {
		m.hub.Publish(id, "split", split)
	})
	sess.OnElevationChange(func(gain, loss float64) {
		m.hub.Publish(id, "elevation", map[string]float64{"gain_m": gain, "loss_m": loss})
	})
	sess.OnStepsChange(func(total int) {
		m.hub.Publish(id, "steps", map[string]int{"total": total})
	})
	sess.OnStatusChange(func(state string) {
		m.hub.Publish(id, "status", map[string]string{"state": state})
	})
	sess.OnGoalReached(func(meters float64) {
		m.hub.Publish(id, "goal", map[string]float64{"meters": meters})
	})
	sess.OnPermissionError(func(err error) {
		m.hub.Publish(id, "permission_error", map[string]string{"error": err.Error()})
	})
	sess.OnIntervalChange(func(d time.Duration) {
		m.hub.Publish(id, "interval", map[string]float64{"seconds": d.Seconds()})
	})
	sess.OnRunCompleted(func(result session.RunResult) {
		m.hub.Publish(id, "completed", result)
	})
}
