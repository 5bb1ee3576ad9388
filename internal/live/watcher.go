package live

import (
	"sync"
	"time"

	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/session"
)

// FeedWatcher adapts HTTP-delivered fixes to the session's location
// watcher contract. Devices push fixes to the API; the watcher hands
// them to whatever session is started on it.
type FeedWatcher struct {
	mu       sync.Mutex
	onFix    func(session.RawFix)
	onErr    func(error)
	interval time.Duration
	running  bool
}

func NewFeedWatcher() *FeedWatcher {
	return &FeedWatcher{}
}

func (w *FeedWatcher) Start(onFix func(session.RawFix), onErr func(error)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onFix = onFix
	w.onErr = onErr
	w.running = true
	return nil
}

func (w *FeedWatcher) SetInterval(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = d
}

// Interval reports the last interval pushed by the sampling controller,
// so devices can poll it and throttle their GPS accordingly.
func (w *FeedWatcher) Interval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.interval
}

func (w *FeedWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
}

// Deliver forwards one device-reported fix. Fixes arriving while the
// watcher is stopped are dropped.
func (w *FeedWatcher) Deliver(f session.RawFix) {
	w.mu.Lock()
	onFix := w.onFix
	running := w.running
	w.mu.Unlock()

	if running && onFix != nil {
		onFix(f)
	}
}

// Fail reports a device-side location failure, e.g. revoked permission.
func (w *FeedWatcher) Fail(err error) {
	w.mu.Lock()
	onErr := w.onErr
	w.mu.Unlock()

	if onErr != nil {
		onErr(err)
	}
}
