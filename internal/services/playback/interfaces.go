package playback

import (
	"context"
)

// Status is a transport report about a loaded sound
type Status struct {
	PositionMillis int64
	DurationMillis int64
	Playing        bool
	DidJustFinish  bool
}

// StatusFunc receives periodic status reports from a loaded sound
type StatusFunc func(Status)

// Transport loads audio files for playback
type Transport interface {
	// Load opens uri. onStatus is called from the transport's own goroutine
	// and must not block.
	Load(ctx context.Context, uri string, onStatus StatusFunc) (Sound, error)
}

// Sound is one loaded audio file
type Sound interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SetPosition(ctx context.Context, millis int64) error
	SetRate(ctx context.Context, rate float64) error
	Status() Status
	Unload(ctx context.Context) error
}
