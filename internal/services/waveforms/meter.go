package waveforms

import "sync"

// Meter accumulates normalized loudness samples for one recording session.
// Capture backends call Record from their own goroutine.
type Meter struct {
	mu      sync.Mutex
	samples []float64
}

// NewMeter creates an empty meter
func NewMeter() *Meter {
	return &Meter{}
}

// Record normalizes a dBFS reading and appends it. Non-finite readings are
// dropped; the return value reports whether the sample was kept.
func (m *Meter) Record(dbfs float64) bool {
	v, ok := NormalizeMetering(dbfs)
	if !ok {
		return false
	}
	m.mu.Lock()
	m.samples = append(m.samples, v)
	m.mu.Unlock()
	return true
}

// Samples returns a copy of the recorded samples
func (m *Meter) Samples() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.samples...)
}

// Len returns the number of recorded samples
func (m *Meter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples)
}

// Reset discards all samples
func (m *Meter) Reset() {
	m.mu.Lock()
	m.samples = nil
	m.mu.Unlock()
}

// Waveform downsamples the recorded samples; nil when nothing was recorded
func (m *Meter) Waveform() []float64 {
	return Downsample(m.Samples())
}
