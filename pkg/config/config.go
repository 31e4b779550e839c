package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Accepted enumerations
var (
	StorageBackends = []string{"json", "sqlite", "memory"}
	Platforms       = []string{"ios", "android", "desktop"}
	ErrorPolicies   = []string{"ignore", "surface"}
	LogLevels       = []string{"debug", "info", "warn", "error"}
)

// Init initializes the configuration system.
// An empty configFile falls back to $HOME/.voicenotes/config.yaml when present.
func Init(configFile string) error {
	once.Do(func() {
		setDefaults()

		viper.SetEnvPrefix("VOICENOTES")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		explicit := configFile != ""
		if !explicit {
			configFile = filepath.Join(HomeDir(), "config.yaml")
		}
		viper.SetConfigFile(filepath.Clean(configFile))

		if err := viper.ReadInConfig(); err != nil {
			// A missing default file is fine; a missing explicit one is not.
			var notFound viper.ConfigFileNotFoundError
			if explicit || !(os.IsNotExist(err) || errors.As(err, &notFound)) {
				initErr = fmt.Errorf("error reading config file %s: %w", configFile, err)
				return
			}
		}

		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// Reset clears loaded configuration so Init can run again (used by tests)
func Reset() {
	viper.Reset()
	once = sync.Once{}
	initErr = nil
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// HomeDir returns the per-user application directory
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return filepath.Join(home, ".voicenotes")
}

// Get returns a config value by key using Viper directly
func Get(key string) any {
	return viper.Get(key)
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// Set overrides a config value (flags bind through this)
func Set(key string, value any) {
	viper.Set(key, value)
}

// validate validates the configuration using Viper values
func validate() error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate checks enumerated fields and ranges
func (c *Config) Validate() error {
	if !oneOf(c.Storage.Backend, StorageBackends) {
		return fmt.Errorf("invalid storage backend %q (want one of %s)", c.Storage.Backend, strings.Join(StorageBackends, ", "))
	}

	if c.Storage.Backend != "memory" && c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required for the %s backend", c.Storage.Backend)
	}

	if c.Storage.Backend == "sqlite" && c.Database.Path == "" {
		return fmt.Errorf("database.path is required for the sqlite backend")
	}

	if !oneOf(c.Recording.Platform, Platforms) {
		return fmt.Errorf("invalid recording platform %q (want one of %s)", c.Recording.Platform, strings.Join(Platforms, ", "))
	}

	if c.Recording.MeteringInterval <= 0 {
		return fmt.Errorf("recording.metering_interval must be positive, got %v", c.Recording.MeteringInterval)
	}

	if c.Playback.ProgressInterval <= 0 {
		return fmt.Errorf("playback.progress_interval must be positive, got %v", c.Playback.ProgressInterval)
	}

	if len(c.Playback.Rates) == 0 {
		return fmt.Errorf("playback.rates must not be empty")
	}
	for _, r := range c.Playback.Rates {
		if r <= 0 {
			return fmt.Errorf("invalid playback rate %v", r)
		}
	}

	if c.Waveform.MinHeight < 0 || c.Waveform.MaxHeight < c.Waveform.MinHeight {
		return fmt.Errorf("invalid waveform heights: min %d, max %d", c.Waveform.MinHeight, c.Waveform.MaxHeight)
	}

	if c.Errors.Policy != "" && !oneOf(c.Errors.Policy, ErrorPolicies) {
		return fmt.Errorf("invalid error policy %q", c.Errors.Policy)
	}

	if c.Logging.Level != "" && !oneOf(c.Logging.Level, LogLevels) {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	return nil
}

func oneOf(v string, allowed []string) bool {
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// setDefaults sets default configuration values
func setDefaults() {
	home := HomeDir()

	// Storage defaults
	viper.SetDefault("storage.dir", filepath.Join(home, "voices"))
	viper.SetDefault("storage.metadata_file", "notes.json")
	viper.SetDefault("storage.backend", "json")
	viper.SetDefault("storage.temp_dir", os.TempDir())
	viper.SetDefault("storage.max_temp_age", 24*time.Hour)
	viper.SetDefault("storage.watch", true)

	// Database defaults
	viper.SetDefault("database.path", filepath.Join(home, "notes.db"))
	viper.SetDefault("database.verbose", false)

	// Recording defaults
	viper.SetDefault("recording.platform", "desktop")
	viper.SetDefault("recording.sample_rate", 44100)
	viper.SetDefault("recording.channels", 1)
	viper.SetDefault("recording.bit_rate", 64000)
	viper.SetDefault("recording.bit_depth", 16)
	viper.SetDefault("recording.metering_enabled", true)
	viper.SetDefault("recording.metering_interval", 100*time.Millisecond)

	// Playback defaults
	viper.SetDefault("playback.progress_interval", 50*time.Millisecond)
	viper.SetDefault("playback.rewind_threshold", 30*time.Millisecond)
	viper.SetDefault("playback.rates", []float64{1, 1.5, 2})

	// Waveform defaults
	viper.SetDefault("waveform.min_height", 6)
	viper.SetDefault("waveform.max_height", 26)

	// Processing defaults
	viper.SetDefault("processing.ffprobe_path", "ffprobe")
	viper.SetDefault("processing.ffprobe_timeout", 30*time.Second)

	// Error handling defaults
	viper.SetDefault("errors.policy", "ignore")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
