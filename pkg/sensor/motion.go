package sensor

import "math"

// Motion derives a "motion occurred" signal from consecutive distance
// readings. It never signals motion on the first sample after construction
// or after Reset, because there is no baseline to compare against.
type Motion struct {
	delta       float64
	previous    float64
	hasPrevious bool
}

// NewMotion returns a motion detector with the given delta threshold in cm.
func NewMotion(deltaCM float64) *Motion {
	return &Motion{delta: deltaCM}
}

// Observe records a new distance sample and reports whether it differs from
// the immediately preceding one by more than the delta threshold.
func (m *Motion) Observe(distanceCM float64) bool {
	if !m.hasPrevious {
		m.previous = distanceCM
		m.hasPrevious = true
		return false
	}

	moved := math.Abs(distanceCM-m.previous) > m.delta
	m.previous = distanceCM
	return moved
}

// Reset clears the baseline, e.g. after a gap in readings. The next sample
// will never signal motion.
func (m *Motion) Reset() {
	m.hasPrevious = false
}

// SetDelta updates the delta threshold.
func (m *Motion) SetDelta(deltaCM float64) {
	m.delta = deltaCM
}
