package filter

// Process noise per activity type. Cycling tolerates faster true movement,
// so the filter trusts measurements more.
const (
	processNoiseWalk     = 0.5
	processNoiseRun      = 3.0
	processNoiseCycle    = 5.0
	processNoiseAltitude = 0.1

	minMeasurementNoise = 0.001
)

// Kalman1D is a one-dimensional Kalman filter run independently per axis.
// The state re-initializes from the first measurement after Reset.
type Kalman1D struct {
	estimate    float64
	covariance  float64
	q           float64
	r           float64
	initialized bool
}

func NewKalman1D(processNoise float64) *Kalman1D {
	return &Kalman1D{q: processNoise, r: 1}
}

// Filter folds one measurement into the running estimate.
func (k *Kalman1D) Filter(measurement float64) float64 {
	if !k.initialized {
		k.estimate = measurement
		k.covariance = 1
		k.initialized = true
		return k.estimate
	}

	predicted := k.covariance + k.q
	gain := predicted / (predicted + k.r)
	k.estimate += gain * (measurement - k.estimate)
	k.covariance = (1 - gain) * predicted
	return k.estimate
}

// AdjustParameters derives measurement noise from the reported fix accuracy.
// A zero accuracy is clamped rather than divided through.
func (k *Kalman1D) AdjustParameters(accuracy float64) {
	r := accuracy / 20
	if r < minMeasurementNoise {
		r = minMeasurementNoise
	}
	k.r = r
}

// SetProcessNoise switches Q, typically when the activity type changes.
func (k *Kalman1D) SetProcessNoise(q float64) {
	k.q = q
}

// Covariance reports the current error covariance. Never negative.
func (k *Kalman1D) Covariance() float64 {
	return k.covariance
}

// Reset clears state; the next Filter call re-initializes from its input.
func (k *Kalman1D) Reset() {
	k.estimate = 0
	k.covariance = 0
	k.r = 1
	k.initialized = false
}

type kalmanSmoother struct {
	lat *Kalman1D
	lon *Kalman1D
	alt *Kalman1D
}

func newKalmanSmoother(activity string) *kalmanSmoother {
	q := processNoiseFor(activity)
	return &kalmanSmoother{
		lat: NewKalman1D(q),
		lon: NewKalman1D(q),
		alt: NewKalman1D(processNoiseAltitude),
	}
}

func (s *kalmanSmoother) Smooth(lat, lon, accuracy float64) (float64, float64, float64) {
	s.lat.AdjustParameters(accuracy)
	s.lon.AdjustParameters(accuracy)
	return s.lat.Filter(lat), s.lon.Filter(lon), accuracy
}

func (s *kalmanSmoother) SmoothAltitude(alt float64) float64 {
	return s.alt.Filter(alt)
}

func (s *kalmanSmoother) SetActivity(activity string) {
	q := processNoiseFor(activity)
	s.lat.SetProcessNoise(q)
	s.lon.SetProcessNoise(q)
}

func (s *kalmanSmoother) Reset() {
	s.lat.Reset()
	s.lon.Reset()
	s.alt.Reset()
}

func processNoiseFor(activity string) float64 {
	switch activity {
	case "walk":
		return processNoiseWalk
	case "cycle":
		return processNoiseCycle
	default:
		return processNoiseRun
	}
}
