package trajectory

import "time"

const (
	// MaxGapDuration bounds how long synthetic positions are produced
	// without a real fix.
	MaxGapDuration = 60 * time.Second

	gapMinConfidence = 0.3
)

// GapFiller tracks whether the session is inside a GPS gap and serves
// trajectory predictions while the gap stays under the maximum duration.
type GapFiller struct {
	predictor *Predictor
	inGap     bool
	gapStart  time.Time
	maxGap    time.Duration
}

func NewGapFiller(p *Predictor) *GapFiller {
	return &GapFiller{predictor: p, maxGap: MaxGapDuration}
}

// ObserveReal feeds a real fix to the predictor and clears gap state.
func (g *GapFiller) ObserveReal(lat, lon float64, at time.Time) {
	g.predictor.Observe(lat, lon, at)
	g.inGap = false
	g.gapStart = time.Time{}
}

// FillGap attempts a synthetic position for the given moment. The first
// call without a preceding real fix marks the gap start. Once the gap
// outlives the maximum duration no further positions are produced.
func (g *GapFiller) FillGap(now time.Time) (Prediction, bool) {
	if !g.inGap {
		g.inGap = true
		g.gapStart = now
	}
	if now.Sub(g.gapStart) > g.maxGap {
		return Prediction{}, false
	}

	p, ok := g.predictor.PredictPosition(now)
	if !ok || p.Confidence <= gapMinConfidence {
		return Prediction{}, false
	}
	return p, true
}

// InGap reports whether a gap is currently open.
func (g *GapFiller) InGap() bool {
	return g.inGap
}

func (g *GapFiller) Reset() {
	g.predictor.Reset()
	g.inGap = false
	g.gapStart = time.Time{}
}
