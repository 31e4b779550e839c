package tui

import (
	"strings"

	"github.com/killallgit/voicenotes/internal/services/waveforms"
)

// Block characters for amplitude visualization (8 levels, bottom to top).
// Index 0 = empty (space), 1-8 = increasing fill levels.
const blockChars = " ▁▂▃▄▅▆▇█"

// barLevels scales a note's bar heights onto block levels 1-8. Notes
// without a stored waveform get the placeholder shape.
func barLevels(amplitudes []float64, minH, maxH int) []int {
	heights, err := waveforms.BarHeights(waveforms.BarsFor(amplitudes), minH, maxH)
	if err != nil || maxH <= 0 {
		return make([]int, waveforms.BarCount)
	}
	levels := make([]int, len(heights))
	for i, h := range heights {
		levels[i] = max(1, min(8, (h*8+maxH-1)/maxH))
	}
	return levels
}

func blocks(levels []int) string {
	runes := []rune(blockChars)
	var sb strings.Builder
	for _, l := range levels {
		sb.WriteRune(runes[max(0, min(8, l))])
	}
	return sb.String()
}

// renderWaveform draws one column per bar. Bars up to and including
// progress render as played; a negative progress leaves all bars unplayed.
func renderWaveform(amplitudes []float64, minH, maxH, progress int) string {
	levels := barLevels(amplitudes, minH, maxH)
	split := max(0, min(len(levels), progress+1))
	return PlayedStyle.Render(blocks(levels[:split])) + UnplayedStyle.Render(blocks(levels[split:]))
}

// renderLevels draws the most recent metering samples, newest on the right
func renderLevels(samples []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}
	levels := make([]int, width)
	offset := width - len(samples)
	for i, v := range samples {
		levels[offset+i] = int(v*8 + 0.5)
	}
	return RecordingStyle.Render(blocks(levels))
}
