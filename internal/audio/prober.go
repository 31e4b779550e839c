package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/killallgit/voicenotes/pkg/ffmpeg"
)

// Prober measures durations: WAV from its header, anything else via ffprobe
type Prober struct {
	ffprobe *ffmpeg.FFprobe
}

// NewProber creates a prober. ff may be nil, in which case only WAV files
// can be probed.
func NewProber(ff *ffmpeg.FFprobe) *Prober {
	return &Prober{ffprobe: ff}
}

// Duration returns the playable duration of path
func (p *Prober) Duration(ctx context.Context, path string) (time.Duration, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		d, err := WAVDuration(path)
		if err == nil && d > 0 {
			return d, nil
		}
		if p.ffprobe == nil {
			if err == nil {
				err = fmt.Errorf("empty recording: %s", path)
			}
			return 0, err
		}
	}

	if p.ffprobe == nil {
		return 0, fmt.Errorf("%w: cannot probe %s", ffmpeg.ErrFFprobeNotFound, path)
	}
	return p.ffprobe.Duration(ctx, path)
}
