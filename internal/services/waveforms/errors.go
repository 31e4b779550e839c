package waveforms

import "errors"

var (
	// ErrInvalidBarBounds is returned when the maximum bar height is below the minimum
	ErrInvalidBarBounds = errors.New("invalid bar height bounds")

	// ErrInvalidAmplitudes is returned when a stored waveform does not have BarCount values
	ErrInvalidAmplitudes = errors.New("invalid amplitudes data")
)
