// Package filter smooths raw GPS coordinates before they reach the
// distance and split accounting in a tracking session.
package filter

// Smoothing modes selectable per session.
const (
	ModeKalman   = "kalman"
	ModeWeighted = "weighted"
)

// Smoother filters a stream of coordinate readings. Implementations keep
// per-session state and are not safe for concurrent use; the owning
// session serializes access.
type Smoother interface {
	// Smooth folds one reading into the filter state and returns the
	// filtered latitude, longitude and accuracy.
	Smooth(lat, lon, accuracy float64) (float64, float64, float64)
	// SmoothAltitude filters an altitude reading where the mode supports it.
	SmoothAltitude(alt float64) float64
	// SetActivity retunes the filter for the given activity type.
	SetActivity(activity string)
	// Reset clears all state; the next reading re-initializes the filter.
	Reset()
}

// New returns the smoother for the given mode. Unknown modes fall back to
// the Kalman strategy.
func New(mode, activity string) Smoother {
	if mode == ModeWeighted {
		return newWeightedSmoother()
	}
	return newKalmanSmoother(activity)
}
