package ffmpeg

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	probe := New("", 30*time.Second)
	assert.Equal(t, "ffprobe", probe.ffprobePath)
	assert.Equal(t, 30*time.Second, probe.timeout)

	probe = New("/opt/bin/ffprobe", 0)
	assert.Equal(t, "/opt/bin/ffprobe", probe.ffprobePath)
}

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantErr  bool
		duration float64
		codec    string
		rate     int
	}{
		{
			name: "m4a with format duration",
			raw: `{"format":{"duration":"3.250000","size":"26000","bit_rate":"64000","format_name":"mov,mp4,m4a,3gp,3g2,mj2"},
				"streams":[{"codec_type":"audio","codec_name":"aac","sample_rate":"44100","channels":1,"duration":"3.250000"}]}`,
			duration: 3.25,
			codec:    "aac",
			rate:     44100,
		},
		{
			name: "falls back to stream duration",
			raw: `{"format":{"format_name":"wav"},
				"streams":[{"codec_type":"audio","codec_name":"pcm_s16le","sample_rate":"48000","channels":2,"duration":"1.5"}]}`,
			duration: 1.5,
			codec:    "pcm_s16le",
			rate:     48000,
		},
		{
			name:    "no duration",
			raw:     `{"format":{"format_name":"wav"},"streams":[]}`,
			wantErr: true,
		},
		{
			name:    "garbage",
			raw:     `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata, err := parseMetadata([]byte(tt.raw), "test.m4a")
			if tt.wantErr {
				require.Error(t, err)
				var perr *ProcessingError
				assert.True(t, errors.As(err, &perr))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.duration, metadata.Duration, 1e-9)
			assert.Equal(t, tt.codec, metadata.Codec)
			assert.Equal(t, tt.rate, metadata.SampleRate)
		})
	}
}

func TestAudioMetadata_DurationValue(t *testing.T) {
	m := &AudioMetadata{Duration: 2.5}
	assert.Equal(t, 2500*time.Millisecond, m.DurationValue())
}

func TestProcessingError(t *testing.T) {
	err := NewProcessingError("metadata_extraction", "a.m4a", ErrInvalidAudioFile, "moov atom not found")
	assert.Contains(t, err.Error(), "moov atom not found")
	assert.True(t, errors.Is(err, ErrInvalidAudioFile))
}

// Integration test - only runs if ffprobe is available
func TestGetMetadataFileNotFound(t *testing.T) {
	probe := New("ffprobe", 10*time.Second)
	if err := probe.ValidateBinary(); err != nil {
		t.Skipf("ffprobe binary not available: %v", err)
	}

	_, err := probe.Duration(context.Background(), filepath.Join(t.TempDir(), "missing.m4a"))
	assert.Error(t, err)
}
