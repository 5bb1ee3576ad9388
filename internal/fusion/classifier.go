package fusion

// Activity labels produced by the classifier and consumed across the
// tracking pipeline.
const (
	ActivityStationary = "stationary"
	ActivityWalk       = "walk"
	ActivityRun        = "run"
	ActivityCycle      = "cycle"
	ActivityUnknown    = "unknown"
)

// Classifier window: about 2.5 seconds of samples at the nominal 20 Hz
// motion rate.
const (
	classifierWindow = 50
	classifierRateHz = 20.0
)

// Feature thresholds for the rule table. These are rule certainties, not
// learned probabilities.
const (
	stationaryMagnitude = 10.2 // gravity plus sensor noise
	lowPeakFrequency    = 1.2  // Hz
	highPeakFrequency   = 2.4  // Hz
	highRotation        = 0.8  // rad/s
	highVariance        = 9.0
)

// ActivityClassifier keeps a rolling buffer of motion samples and
// classifies the current activity with a rule table over extracted
// features.
type ActivityClassifier struct {
	window []MotionSample
}

func NewActivityClassifier() *ActivityClassifier {
	return &ActivityClassifier{window: make([]MotionSample, 0, classifierWindow)}
}

// Add appends a sample to the rolling window.
func (c *ActivityClassifier) Add(s MotionSample) {
	c.window = append(c.window, s)
	if len(c.window) > classifierWindow {
		c.window = c.window[1:]
	}
}

// Classify returns the current activity label and a fixed confidence for
// the matched rule. With too few samples the label is unknown.
func (c *ActivityClassifier) Classify() (string, float64) {
	if len(c.window) < classifierWindow/2 {
		return ActivityUnknown, 0
	}

	meanMag, variance := c.magnitudeStats()
	peakFreq := c.peakFrequency()
	meanRot := c.meanRotation()

	switch {
	case meanMag < stationaryMagnitude && variance < 1.0:
		return ActivityStationary, 0.9
	case peakFreq < lowPeakFrequency && meanRot > highRotation:
		return ActivityCycle, 0.75
	case peakFreq < lowPeakFrequency:
		return ActivityWalk, 0.8
	case peakFreq > highPeakFrequency:
		return ActivityRun, 0.85
	case variance > highVariance:
		return ActivityRun, 0.7
	default:
		return ActivityWalk, 0.7
	}
}

func (c *ActivityClassifier) Reset() {
	c.window = c.window[:0]
}

func (c *ActivityClassifier) magnitudeStats() (mean, variance float64) {
	n := float64(len(c.window))
	for _, s := range c.window {
		mean += s.Magnitude()
	}
	mean /= n
	for _, s := range c.window {
		d := s.Magnitude() - mean
		variance += d * d
	}
	variance /= n
	return mean, variance
}

// peakFrequency counts local maxima of the magnitude series and converts
// the count to Hz over the window duration.
func (c *ActivityClassifier) peakFrequency() float64 {
	peaks := 0
	for i := 1; i < len(c.window)-1; i++ {
		prev := c.window[i-1].Magnitude()
		cur := c.window[i].Magnitude()
		next := c.window[i+1].Magnitude()
		if cur > prev && cur >= next {
			peaks++
		}
	}
	seconds := float64(len(c.window)) / classifierRateHz
	if seconds <= 0 {
		return 0
	}
	return float64(peaks) / seconds
}

func (c *ActivityClassifier) meanRotation() float64 {
	var sum float64
	for _, s := range c.window {
		sum += s.RotationMagnitude()
	}
	return sum / float64(len(c.window))
}
