package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/voicenotes/internal/services/waveforms"
)

func filled(v float64) []float64 {
	amps := make([]float64, waveforms.BarCount)
	for i := range amps {
		amps[i] = v
	}
	return amps
}

func TestBlocks(t *testing.T) {
	assert.Equal(t, " ▁▄█", blocks([]int{0, 1, 4, 8}))
	assert.Equal(t, " █", blocks([]int{-3, 12}), "levels are clamped")
}

func TestBarLevels(t *testing.T) {
	tests := []struct {
		name string
		amp  float64
		want int
	}{
		{"full", 1, 8},
		{"floor bar", waveforms.MinBar, 3},
		{"half", 0.5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels := barLevels(filled(tt.amp), waveforms.DefaultMinHeight, waveforms.DefaultMaxHeight)
			require.Len(t, levels, waveforms.BarCount)
			for _, l := range levels {
				assert.Equal(t, tt.want, l)
			}
		})
	}
}

func TestBarLevels_Placeholder(t *testing.T) {
	levels := barLevels(nil, waveforms.DefaultMinHeight, waveforms.DefaultMaxHeight)
	require.Len(t, levels, waveforms.BarCount)
	for _, l := range levels {
		assert.GreaterOrEqual(t, l, 1)
		assert.LessOrEqual(t, l, 8)
	}

	short := barLevels([]float64{1, 1}, waveforms.DefaultMinHeight, waveforms.DefaultMaxHeight)
	assert.Equal(t, levels, short, "incomplete waveforms fall back to the placeholder")
}

func TestBarLevels_InvalidBounds(t *testing.T) {
	levels := barLevels(filled(1), 10, 4)
	assert.Equal(t, make([]int, waveforms.BarCount), levels)
}

func TestRenderWaveform(t *testing.T) {
	amps := filled(1)

	for _, progress := range []int{-1, 0, 20, 47, 100} {
		out := renderWaveform(amps, waveforms.DefaultMinHeight, waveforms.DefaultMaxHeight, progress)
		assert.Equal(t, waveforms.BarCount, lipgloss.Width(out))
		assert.Equal(t, waveforms.BarCount, strings.Count(out, "█"))
	}
}

func TestRenderLevels(t *testing.T) {
	out := renderLevels([]float64{0, 1}, 4)
	assert.Equal(t, 4, lipgloss.Width(out))
	assert.Equal(t, 1, strings.Count(out, "█"))

	out = renderLevels([]float64{1, 1, 1, 1, 1, 1}, 3)
	assert.Equal(t, 3, strings.Count(out, "█"), "only the newest samples are shown")

	assert.Empty(t, renderLevels([]float64{1}, 0))
}
