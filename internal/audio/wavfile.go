package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrNotWAV is returned for files the WAV decoder cannot read
var ErrNotWAV = errors.New("not a PCM WAV file")

// PCM is decoded 16-bit interleaved audio
type PCM struct {
	Samples    []int16
	Channels   int
	SampleRate int
}

// Frames returns the number of sample frames
func (p *PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// DurationMillis returns the playable length
func (p *PCM) DurationMillis() int64 {
	if p.SampleRate == 0 {
		return 0
	}
	return int64(p.Frames()) * 1000 / int64(p.SampleRate)
}

// ReadWAV decodes a PCM WAV file into memory
func ReadWAV(path string) (*PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrNotWAV, path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 {
		return nil, fmt.Errorf("%w: %s has no format", ErrNotWAV, path)
	}

	return &PCM{
		Samples:    toInt16(buf, int(dec.BitDepth)),
		Channels:   buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// WriteWAV encodes 16-bit interleaved samples
func WriteWAV(path string, pcm *PCM) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, pcm.SampleRate, 16, pcm.Channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: pcm.Channels,
			SampleRate:  pcm.SampleRate,
		},
		Data:           make([]int, len(pcm.Samples)),
		SourceBitDepth: 16,
	}
	for i := range pcm.Samples {
		buf.Data[i] = int(pcm.Samples[i])
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// WAVDuration reads the duration from a WAV header
func WAVDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("%w: %s", ErrNotWAV, path)
	}
	d, err := dec.Duration()
	if err != nil {
		return 0, fmt.Errorf("failed to read duration of %s: %w", path, err)
	}
	return d, nil
}
