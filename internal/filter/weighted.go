package filter

const weightedWindowSize = 5

type weightedReading struct {
	lat, lon, accuracy float64
}

// weightedSmoother averages a sliding window of recent readings, each
// weighted by the inverse square of its reported accuracy.
type weightedSmoother struct {
	window []weightedReading
	size   int
}

func newWeightedSmoother() *weightedSmoother {
	return &weightedSmoother{size: weightedWindowSize}
}

func (s *weightedSmoother) Smooth(lat, lon, accuracy float64) (float64, float64, float64) {
	if accuracy < minMeasurementNoise {
		accuracy = minMeasurementNoise
	}
	s.window = append(s.window, weightedReading{lat: lat, lon: lon, accuracy: accuracy})
	if len(s.window) > s.size {
		s.window = s.window[1:]
	}

	var sumLat, sumLon, sumWeight, sumAccuracy float64
	for _, r := range s.window {
		w := 1 / (r.accuracy * r.accuracy)
		sumLat += r.lat * w
		sumLon += r.lon * w
		sumWeight += w
		sumAccuracy += r.accuracy
	}
	n := float64(len(s.window))
	return sumLat / sumWeight, sumLon / sumWeight, sumAccuracy / n
}

// SmoothAltitude passes altitude through untouched in weighted mode.
func (s *weightedSmoother) SmoothAltitude(alt float64) float64 {
	return alt
}

func (s *weightedSmoother) SetActivity(string) {}

func (s *weightedSmoother) Reset() {
	s.window = s.window[:0]
}
