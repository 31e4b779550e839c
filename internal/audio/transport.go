package audio

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/killallgit/voicenotes/internal/services/playback"
)

// Transport plays WAV files through the default output device
type Transport struct {
	interval time.Duration
}

// Ensure Transport implements playback.Transport
var _ playback.Transport = (*Transport)(nil)

// NewTransport creates a transport reporting status every interval
func NewTransport(interval time.Duration) *Transport {
	if interval <= 0 {
		interval = playback.DefaultProgressInterval
	}
	return &Transport{interval: interval}
}

// Load decodes uri into memory and opens an output stream for it
func (t *Transport) Load(ctx context.Context, uri string, onStatus playback.StatusFunc) (playback.Sound, error) {
	if !strings.EqualFold(filepath.Ext(uri), ".wav") {
		return nil, fmt.Errorf("%w: %s", ErrNotWAV, uri)
	}
	pcm, err := ReadWAV(uri)
	if err != nil {
		return nil, err
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	dev, err := portaudio.DefaultOutputDevice()
	if err != nil || dev == nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("no output device available")
	}

	s := &sound{
		pcm:       pcm,
		rate:      1,
		interval:  t.interval,
		onStatus:  onStatus,
		terminate: portaudio.Terminate,
	}

	params := portaudio.HighLatencyParameters(nil, dev)
	params.Output.Channels = pcm.Channels
	params.SampleRate = float64(pcm.SampleRate)
	params.FramesPerBuffer = FramesPerBuffer

	stream, err := portaudio.OpenStream(params, s.process)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

// outputStream is the part of *portaudio.Stream a sound drives
type outputStream interface {
	Start() error
	Stop() error
	Close() error
}

// sound is one loaded file. Rate changes step through frames faster or
// slower without resampling.
type sound struct {
	pcm       *PCM
	stream    outputStream
	interval  time.Duration
	onStatus  playback.StatusFunc
	terminate func() error

	mu       sync.Mutex
	frame    float64 // playhead in frames
	rate     float64
	playing  bool
	ended    bool
	unloaded bool
	stopTick chan struct{}
	stopped  chan struct{} // closed once the end-of-file stop completes
}

// process is the PortAudio output callback
func (s *sound) process(out []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.pcm.Channels
	frames := s.pcm.Frames()
	for i := 0; i+ch <= len(out); i += ch {
		idx := int(s.frame)
		if !s.playing || idx >= frames {
			for c := 0; c < ch; c++ {
				out[i+c] = 0
			}
			if idx >= frames {
				s.ended = true
			}
			continue
		}
		copy(out[i:i+ch], s.pcm.Samples[idx*ch:idx*ch+ch])
		s.frame += s.rate
	}
}

func (s *sound) positionLocked() int64 {
	frames := min(s.frame, float64(s.pcm.Frames()))
	return int64(frames * 1000 / float64(s.pcm.SampleRate))
}

func (s *sound) Status() playback.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return playback.Status{
		PositionMillis: s.positionLocked(),
		DurationMillis: s.pcm.DurationMillis(),
		Playing:        s.playing,
	}
}

// awaitStop blocks until a stop started at the end of the file has returned.
// The stream must not be restarted or closed before then.
func (s *sound) awaitStop() {
	s.mu.Lock()
	pending := s.stopped
	s.mu.Unlock()
	if pending != nil {
		<-pending
	}
}

func (s *sound) Play(ctx context.Context) error {
	s.awaitStop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unloaded {
		return fmt.Errorf("sound is unloaded")
	}
	if s.playing {
		return nil
	}
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	s.playing = true
	s.ended = false
	s.stopTick = make(chan struct{})
	go s.report(s.stopTick)
	return nil
}

// report emits status every interval and detects the end of the file
func (s *sound) report(stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			finished := s.ended && s.playing
			var stopped chan struct{}
			if finished {
				s.playing = false
				s.haltLocked()
				stopped = make(chan struct{})
				s.stopped = stopped
			}
			st := playback.Status{
				PositionMillis: s.positionLocked(),
				DurationMillis: s.pcm.DurationMillis(),
				Playing:        s.playing,
				DidJustFinish:  finished,
			}
			s.mu.Unlock()

			if finished {
				// Stop outside s.mu: the callback takes it and Stop waits for
				// the callback to return.
				s.stopStream()
				s.mu.Lock()
				s.stopped = nil
				s.mu.Unlock()
				close(stopped)
			}
			if s.onStatus != nil {
				s.onStatus(st)
			}
			if finished {
				return
			}
		}
	}
}

func (s *sound) stopStream() {
	if err := s.stream.Stop(); err != nil {
		log.Printf("[DEBUG] Error stopping output stream: %v", err)
	}
}

// haltLocked stops status reporting; callers hold s.mu
func (s *sound) haltLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

func (s *sound) Pause(ctx context.Context) error {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return nil
	}
	s.playing = false
	s.haltLocked()
	s.mu.Unlock()

	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop output stream: %w", err)
	}
	return nil
}

func (s *sound) SetPosition(ctx context.Context, millis int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := float64(millis) * float64(s.pcm.SampleRate) / 1000
	s.frame = max(0, min(frame, float64(s.pcm.Frames())))
	s.ended = false
	return nil
}

func (s *sound) SetRate(ctx context.Context, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("invalid rate %v", rate)
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	return nil
}

// Unload releases the stream. It does not wait for a status report in
// flight, which may be blocked on the player.
func (s *sound) Unload(ctx context.Context) error {
	s.mu.Lock()
	if s.unloaded {
		s.mu.Unlock()
		return nil
	}
	s.unloaded = true
	wasPlaying := s.playing
	s.playing = false
	s.haltLocked()
	s.mu.Unlock()

	s.awaitStop()
	if wasPlaying {
		if err := s.stream.Stop(); err != nil {
			log.Printf("[DEBUG] Error stopping output stream: %v", err)
		}
	}
	closeErr := s.stream.Close()
	if s.terminate != nil {
		if err := s.terminate(); err != nil {
			log.Printf("[WARN] Error terminating portaudio: %v", err)
		}
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close output stream: %w", closeErr)
	}
	return nil
}
