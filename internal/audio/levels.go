// Package audio provides the desktop capture, playback and probing backends
// on top of PortAudio and PCM WAV files.
package audio

import (
	"math"

	"github.com/go-audio/audio"
)

// SilenceDBFS is reported for an all-zero buffer
const SilenceDBFS = -160.0

// PeakDBFS returns the peak level of 16-bit samples in dBFS
func PeakDBFS(samples []int16) float64 {
	peak := 0
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		peak = max(peak, v)
	}
	return amplitudeToDBFS(float64(peak) / 32768)
}

func amplitudeToDBFS(a float64) float64 {
	if a <= 0 {
		return SilenceDBFS
	}
	return max(SilenceDBFS, 20*math.Log10(a))
}

// toInt16 scales decoded PCM of any supported depth to 16 bits
func toInt16(buf *audio.IntBuffer, bitDepth int) []int16 {
	shift := bitDepth - 16
	out := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch {
		case shift > 0:
			v >>= shift
		case shift < 0:
			v <<= -shift
		}
		out[i] = int16(max(math.MinInt16, min(math.MaxInt16, v)))
	}
	return out
}
