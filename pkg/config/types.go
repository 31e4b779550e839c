package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Recording  RecordingConfig  `mapstructure:"recording"`
	Playback   PlaybackConfig   `mapstructure:"playback"`
	Waveform   WaveformConfig   `mapstructure:"waveform"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Errors     ErrorsConfig     `mapstructure:"errors"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// StorageConfig contains note storage settings
type StorageConfig struct {
	Dir          string        `mapstructure:"dir"`
	MetadataFile string        `mapstructure:"metadata_file"`
	Backend      string        `mapstructure:"backend"` // json, sqlite, memory
	TempDir      string        `mapstructure:"temp_dir"`
	MaxTempAge   time.Duration `mapstructure:"max_temp_age"`
	Watch        bool          `mapstructure:"watch"`
}

// DatabaseConfig contains settings for the sqlite backend
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// RecordingConfig contains capture settings
type RecordingConfig struct {
	Platform         string        `mapstructure:"platform"` // ios, android, desktop
	SampleRate       int           `mapstructure:"sample_rate"`
	Channels         int           `mapstructure:"channels"`
	BitRate          int           `mapstructure:"bit_rate"`
	BitDepth         int           `mapstructure:"bit_depth"`
	MeteringEnabled  bool          `mapstructure:"metering_enabled"`
	MeteringInterval time.Duration `mapstructure:"metering_interval"`
}

// PlaybackConfig contains player settings
type PlaybackConfig struct {
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	RewindThreshold  time.Duration `mapstructure:"rewind_threshold"`
	Rates            []float64     `mapstructure:"rates"`
}

// WaveformConfig contains bar rendering settings
type WaveformConfig struct {
	MinHeight int `mapstructure:"min_height"`
	MaxHeight int `mapstructure:"max_height"`
}

// ProcessingConfig contains external tool settings
type ProcessingConfig struct {
	FFprobePath    string        `mapstructure:"ffprobe_path"`
	FFprobeTimeout time.Duration `mapstructure:"ffprobe_timeout"`
}

// ErrorsConfig selects how I/O and media failures are handled
type ErrorsConfig struct {
	Policy string `mapstructure:"policy"` // ignore, surface
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}
