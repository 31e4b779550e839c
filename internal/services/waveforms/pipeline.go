// Package waveforms turns metering samples captured during a recording into
// the fixed-size bar waveform stored with each note, and maps stored bars and
// playback positions onto the rendered display.
package waveforms

import (
	"math"

	"github.com/killallgit/voicenotes/internal/models"
)

// BarCount is the number of bars in every stored waveform
const BarCount = models.BarCount

// MinBar is the floor applied after normalization so no bar is invisible
const MinBar = 0.1

// flatSpread is the largest max-min spread still treated as a flat signal.
// Interpolating equal buckets can differ by an ulp, which min-max scaling
// would otherwise stretch into a full-height waveform.
const flatSpread = 1e-12

// Downsample converts a variable-length sequence of loudness samples in [0,1]
// into exactly BarCount values in [MinBar,1]. It returns nil when raw is empty.
//
// The output must stay bit-for-bit stable: stored waveforms of existing notes
// were produced by this exact sequence of operations.
func Downsample(raw []float64) []float64 {
	n := len(raw)
	if n == 0 {
		return nil
	}

	// Coarse bucketing into consecutive slices of `step` samples.
	step := max(1, n/BarCount)
	out := make([]float64, 0, (n+step-1)/step)
	for i := 0; i < n; i += step {
		end := min(i+step, n)
		sum := 0.0
		for _, v := range raw[i:end] {
			sum += v
		}
		out = append(out, sum/float64(end-i))
	}

	// Resample to BarCount points. The upper neighbor is clamped to the last
	// bucket, so the final point reads out[last] twice.
	scaled := make([]float64, BarCount)
	last := len(out) - 1
	for i := 0; i < BarCount; i++ {
		t := (float64(i) / float64(BarCount-1)) * float64(last)
		i0 := int(math.Floor(t))
		i1 := min(last, i0+1)
		frac := t - float64(i0)
		// The conversions round each product, so no platform fuses them
		// into a multiply-add and changes the last bit.
		scaled[i] = float64(out[i0]*(1-frac)) + float64(out[i1]*frac)
	}

	return normalize(scaled)
}

// normalize applies min-max scaling with a MinBar floor
func normalize(scaled []float64) []float64 {
	lo, hi := scaled[0], scaled[0]
	for _, v := range scaled[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	bars := make([]float64, len(scaled))
	for i, v := range scaled {
		x := 0.0
		if hi-lo > flatSpread {
			x = (v - lo) / (hi - lo)
		}
		bars[i] = max(MinBar, min(1, x))
	}
	return bars
}

// NormalizeMetering maps a dBFS metering reading (typically -160..0) onto
// [0,1]. ok is false for readings that are not finite numbers.
func NormalizeMetering(dbfs float64) (value float64, ok bool) {
	if math.IsNaN(dbfs) || math.IsInf(dbfs, 0) {
		return 0, false
	}
	return max(0, min(1, (dbfs+160)/160)), true
}
