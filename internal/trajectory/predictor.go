// Package trajectory predicts near-future positions from recent fix
// history, so short GPS outages can be bridged with synthetic fixes.
package trajectory

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/geo"
)

const (
	historySize  = 20
	minFitPoints = 3

	confidenceBase  = 0.9
	confidenceFloor = 0.1
	confidenceTauS  = 30.0
)

type fixPoint struct {
	lat, lon float64
	at       time.Time
	speed    float64 // m/s, derived from the previous point
	heading  float64 // degrees
}

// Prediction is an extrapolated position with a decaying confidence.
type Prediction struct {
	Lat        float64
	Lon        float64
	Speed      float64
	Heading    float64
	Confidence float64
}

type model struct {
	alpha, beta float64
}

func (m model) at(x float64) float64 { return m.alpha + m.beta*x }

// Predictor keeps a bounded history of real fixes and fits independent
// least-squares lines for latitude, longitude, speed and heading over
// time.
type Predictor struct {
	history []fixPoint
	lat     model
	lon     model
	speed   model
	heading model
	trained bool
	last    time.Time
}

func NewPredictor() *Predictor {
	return &Predictor{history: make([]fixPoint, 0, historySize)}
}

// Observe feeds one real fix, recomputing derived speed and heading and
// retraining the regression models.
func (p *Predictor) Observe(lat, lon float64, at time.Time) {
	point := fixPoint{lat: lat, lon: lon, at: at}
	if n := len(p.history); n > 0 {
		prev := p.history[n-1]
		if dt := at.Sub(prev.at).Seconds(); dt > 0 {
			point.speed = geo.Haversine(prev.lat, prev.lon, lat, lon) / dt
			point.heading = geo.Bearing(prev.lat, prev.lon, lat, lon)
		}
	}

	p.history = append(p.history, point)
	if len(p.history) > historySize {
		p.history = p.history[1:]
	}
	p.last = at
	p.retrain()
}

// PredictPosition extrapolates the position at the given time. Confidence
// decays exponentially with the gap since the last real fix, floored at
// 0.1. Returns false until enough history has accumulated.
func (p *Predictor) PredictPosition(at time.Time) (Prediction, bool) {
	if !p.trained {
		return Prediction{}, false
	}

	x := at.Sub(p.history[0].at).Seconds()
	gap := at.Sub(p.last).Seconds()
	if gap < 0 {
		gap = 0
	}
	confidence := confidenceBase * math.Exp(-gap/confidenceTauS)
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}

	return Prediction{
		Lat:        p.lat.at(x),
		Lon:        p.lon.at(x),
		Speed:      p.speed.at(x),
		Heading:    p.heading.at(x),
		Confidence: confidence,
	}, true
}

// LastObserved returns the timestamp of the most recent real fix.
func (p *Predictor) LastObserved() time.Time {
	return p.last
}

func (p *Predictor) Reset() {
	p.history = p.history[:0]
	p.trained = false
	p.last = time.Time{}
}

func (p *Predictor) retrain() {
	if len(p.history) < minFitPoints {
		p.trained = false
		return
	}

	n := len(p.history)
	xs := make([]float64, n)
	lats := make([]float64, n)
	lons := make([]float64, n)
	speeds := make([]float64, n)
	headings := make([]float64, n)
	origin := p.history[0].at
	for i, f := range p.history {
		xs[i] = f.at.Sub(origin).Seconds()
		lats[i] = f.lat
		lons[i] = f.lon
		speeds[i] = f.speed
		headings[i] = f.heading
	}

	p.lat.alpha, p.lat.beta = stat.LinearRegression(xs, lats, nil, false)
	p.lon.alpha, p.lon.beta = stat.LinearRegression(xs, lons, nil, false)
	p.speed.alpha, p.speed.beta = stat.LinearRegression(xs, speeds, nil, false)
	p.heading.alpha, p.heading.beta = stat.LinearRegression(xs, headings, nil, false)
	p.trained = true
}
