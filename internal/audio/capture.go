package audio

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"

	"github.com/killallgit/voicenotes/internal/services/recorder"
)

// FramesPerBuffer is the PortAudio buffer size for capture and playback
const FramesPerBuffer = 1024

// Capture records from the default input device into 16-bit PCM WAV files
type Capture struct {
	tempDir string
}

// Ensure Capture implements recorder.Capture
var _ recorder.Capture = (*Capture)(nil)

// NewCapture creates a capture backend writing into tempDir
func NewCapture(tempDir string) *Capture {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Capture{tempDir: tempDir}
}

// Prepare opens an input stream and the WAV file it will write. Only WAV
// output at 16 bits is supported.
func (c *Capture) Prepare(ctx context.Context, profile recorder.Profile, onMeter recorder.MeterFunc, interval time.Duration) (recorder.Take, error) {
	if profile.Extension != ".wav" || profile.BitDepth != 16 {
		return nil, fmt.Errorf("%w: %s", recorder.ErrUnsupportedProfile, profile)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	dev, err := portaudio.DefaultInputDevice()
	if err != nil || dev == nil {
		_ = portaudio.Terminate()
		return nil, recorder.ErrNoInputDevice
	}

	path := filepath.Join(c.tempDir, recorder.TempFilePrefix+uuid.NewString()+".wav")
	f, err := os.Create(path)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}

	t := &take{
		path:     path,
		file:     f,
		encoder:  wav.NewEncoder(f, profile.SampleRate, 16, profile.Channels, 1),
		format:   &audio.Format{NumChannels: profile.Channels, SampleRate: profile.SampleRate},
		onMeter:  onMeter,
		interval: interval,
	}

	params := portaudio.HighLatencyParameters(dev, nil)
	params.Input.Channels = profile.Channels
	params.SampleRate = float64(profile.SampleRate)
	params.FramesPerBuffer = FramesPerBuffer

	stream, err := portaudio.OpenStream(params, t.process)
	if err != nil {
		f.Close()
		os.Remove(path)
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	t.stream = stream

	log.Printf("[DEBUG] Prepared capture on %s: %s", dev.Name, profile)
	return t, nil
}

// take is one capture in progress
type take struct {
	path     string
	stream   *portaudio.Stream
	onMeter  recorder.MeterFunc
	interval time.Duration

	mu       sync.Mutex
	file     *os.File
	encoder  *wav.Encoder
	format   *audio.Format
	writeErr error
	peak     int16 // since last meter tick
	running  bool
	stopTick chan struct{}
	stopped  bool
}

// process is the PortAudio input callback
func (t *take) process(in []int16) {
	buf := &audio.IntBuffer{
		Format:         t.format,
		Data:           make([]int, len(in)),
		SourceBitDepth: 16,
	}
	var peak int16
	for i, s := range in {
		buf.Data[i] = int(s)
		if s < 0 {
			s = -max(s, -32767)
		}
		peak = max(peak, s)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.writeErr == nil {
		t.writeErr = t.encoder.Write(buf)
	}
	t.peak = max(t.peak, peak)
}

func (t *take) Path() string {
	return t.path
}

func (t *take) Start(ctx context.Context) error {
	return t.run()
}

func (t *take) Resume(ctx context.Context) error {
	return t.run()
}

func (t *take) run() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.stopped {
		return nil
	}
	if err := t.stream.Start(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	t.running = true

	if t.onMeter != nil && t.interval > 0 {
		t.stopTick = make(chan struct{})
		go t.meter(t.stopTick)
	}
	return nil
}

// meter reports the peak level once per interval
func (t *take) meter(stop <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			peak := t.peak
			t.peak = 0
			t.mu.Unlock()
			t.onMeter(amplitudeToDBFS(float64(peak) / 32768))
		}
	}
}

func (t *take) Pause(ctx context.Context) error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	t.haltLocked()
	t.mu.Unlock()

	if err := t.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop input stream: %w", err)
	}
	return nil
}

// haltLocked stops metering; callers hold t.mu
func (t *take) haltLocked() {
	t.running = false
	if t.stopTick != nil {
		close(t.stopTick)
		t.stopTick = nil
	}
}

// Stop finalizes the WAV header and releases the device. It is safe to call
// more than once.
func (t *take) Stop(ctx context.Context) (string, error) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return t.path, nil
	}
	wasRunning := t.running
	t.haltLocked()
	t.mu.Unlock()

	// Stop outside the lock: the callback may be waiting on it.
	if wasRunning {
		if err := t.stream.Stop(); err != nil {
			log.Printf("[WARN] Error stopping input stream: %v", err)
		}
	}
	if err := t.stream.Close(); err != nil {
		log.Printf("[WARN] Error closing input stream: %v", err)
	}
	if err := portaudio.Terminate(); err != nil {
		log.Printf("[WARN] Error terminating portaudio: %v", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true

	encErr := t.encoder.Close()
	closeErr := t.file.Close()
	switch {
	case t.writeErr != nil:
		return "", fmt.Errorf("failed to write capture: %w", t.writeErr)
	case encErr != nil:
		return "", fmt.Errorf("failed to finalize capture: %w", encErr)
	case closeErr != nil:
		return "", fmt.Errorf("failed to close capture: %w", closeErr)
	}
	return t.path, nil
}
