package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
		check   func(t *testing.T)
	}{
		{
			name: "load from config file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "config.yaml")
				content := `
storage:
  dir: "/var/lib/voicenotes"
  backend: sqlite
recording:
  platform: ios
`
				require.NoError(t, os.WriteFile(path, []byte(content), 0644))
				return path
			},
			check: func(t *testing.T) {
				assert.Equal(t, "/var/lib/voicenotes", GetString("storage.dir"))
				assert.Equal(t, "sqlite", GetString("storage.backend"))
				assert.Equal(t, "ios", GetString("recording.platform"))
			},
		},
		{
			name: "environment variable override",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte("errors:\n  policy: ignore\n"), 0644))
				t.Setenv("VOICENOTES_ERRORS_POLICY", "surface")
				return path
			},
			check: func(t *testing.T) {
				assert.Equal(t, "surface", GetString("errors.policy"))
			},
		},
		{
			name: "missing default config file uses defaults",
			setup: func(t *testing.T) string {
				t.Setenv("HOME", t.TempDir())
				return ""
			},
			check: func(t *testing.T) {
				assert.Equal(t, "json", GetString("storage.backend"))
				assert.Equal(t, "notes.json", GetString("storage.metadata_file"))
				assert.Equal(t, 100*time.Millisecond, GetDuration("recording.metering_interval"))
				assert.Equal(t, 6, GetInt("waveform.min_height"))
				assert.Equal(t, 26, GetInt("waveform.max_height"))
			},
		},
		{
			name: "missing explicit config file fails",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope.yaml")
			},
			wantErr: true,
		},
		{
			name: "invalid backend fails validation",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: postgres\n"), 0644))
				return path
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Reset()
			t.Cleanup(Reset)

			path := tt.setup(t)
			err := Init(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}

func TestGetConfig(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, Init(""))

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1.5, 2}, cfg.Playback.Rates)
	assert.Equal(t, 50*time.Millisecond, cfg.Playback.ProgressInterval)
	assert.Equal(t, 30*time.Millisecond, cfg.Playback.RewindThreshold)
	assert.Equal(t, "desktop", cfg.Recording.Platform)
	assert.True(t, cfg.Recording.MeteringEnabled)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:   StorageConfig{Dir: "/tmp/voices", Backend: "json"},
			Recording: RecordingConfig{Platform: "android", MeteringInterval: 100 * time.Millisecond},
			Playback:  PlaybackConfig{ProgressInterval: 50 * time.Millisecond, Rates: []float64{1, 2}},
			Waveform:  WaveformConfig{MinHeight: 6, MaxHeight: 26},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "memory backend needs no dir", mutate: func(c *Config) { c.Storage.Backend = "memory"; c.Storage.Dir = "" }},
		{name: "missing dir", mutate: func(c *Config) { c.Storage.Dir = "" }, wantErr: true},
		{name: "sqlite without database path", mutate: func(c *Config) { c.Storage.Backend = "sqlite" }, wantErr: true},
		{name: "unknown platform", mutate: func(c *Config) { c.Recording.Platform = "web" }, wantErr: true},
		{name: "zero metering interval", mutate: func(c *Config) { c.Recording.MeteringInterval = 0 }, wantErr: true},
		{name: "no rates", mutate: func(c *Config) { c.Playback.Rates = nil }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.Playback.Rates = []float64{1, -1} }, wantErr: true},
		{name: "inverted heights", mutate: func(c *Config) { c.Waveform.MinHeight = 30 }, wantErr: true},
		{name: "unknown policy", mutate: func(c *Config) { c.Errors.Policy = "retry" }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
