package waveforms

import (
	"fmt"
	"math"
)

// Default bar heights in display units
const (
	DefaultMinHeight = 6
	DefaultMaxHeight = 26
)

// Placeholder synthesizes bars for notes recorded without metering
func Placeholder() []float64 {
	bars := make([]float64, BarCount)
	for i := range bars {
		bars[i] = 0.3 + 0.7*math.Abs(math.Sin(float64(i)*0.55))
	}
	return bars
}

// BarsFor returns the stored amplitudes when they form a complete waveform,
// otherwise the placeholder.
func BarsFor(amplitudes []float64) []float64 {
	if len(amplitudes) == BarCount {
		return amplitudes
	}
	return Placeholder()
}

// BarHeights maps amplitudes onto heights in [minH, maxH], rounding half up
func BarHeights(amplitudes []float64, minH, maxH int) ([]int, error) {
	if maxH < minH {
		return nil, fmt.Errorf("%w: min %d, max %d", ErrInvalidBarBounds, minH, maxH)
	}
	heights := make([]int, len(amplitudes))
	span := float64(maxH - minH)
	for i, a := range amplitudes {
		heights[i] = int(math.Floor(float64(minH) + a*span + 0.5))
	}
	return heights, nil
}

// ProgressIndex snaps a playback position onto a bar index in [0, BarCount-1].
// Bars at or below the index render as played.
func ProgressIndex(positionMillis, durationMillis int64) int {
	if durationMillis <= 0 {
		return 0
	}
	idx := int(math.Floor(float64(positionMillis) / float64(durationMillis) * BarCount))
	return max(0, min(BarCount-1, idx))
}

// SeekPosition converts a fractional position along the waveform into a
// playback offset in milliseconds.
func SeekPosition(frac float64, durationMillis int64) int64 {
	frac = max(0, min(1, frac))
	return int64(math.Floor(frac * float64(durationMillis)))
}

// SeekFractionForBar returns the fraction of the waveform at the start of a bar
func SeekFractionForBar(bar int) float64 {
	bar = max(0, min(BarCount-1, bar))
	return float64(bar) / BarCount
}

// FormatClock renders milliseconds as mm:ss
func FormatClock(ms int64) string {
	totalSec := max(0, ms/1000)
	return fmt.Sprintf("%02d:%02d", totalSec/60, totalSec%60)
}
