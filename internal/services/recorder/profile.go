package recorder

import (
	"fmt"
	"slices"
	"strings"

	"github.com/killallgit/voicenotes/pkg/config"
	apperrors "github.com/killallgit/voicenotes/pkg/errors"
)

// Platform identifies a capture target
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformDesktop Platform = "desktop"
)

// Accepted capture parameters
var (
	SampleRates = []int{8000, 16000, 22050, 32000, 44100, 48000}
	Channels    = []int{1, 2}
	BitDepths   = []int{16, 24, 32}
)

// Profile is the full set of capture options for one platform
type Profile struct {
	Platform        Platform
	Extension       string // output container, with leading dot
	SampleRate      int
	Channels        int
	BitRate         int // bits per second
	BitDepth        int
	MeteringEnabled bool
}

// Preset returns the default profile for a platform. The mobile presets
// produce mono AAC in an m4a container; desktop writes 16-bit PCM WAV.
func Preset(p Platform) (Profile, error) {
	switch p {
	case PlatformIOS, PlatformAndroid:
		return Profile{
			Platform:        p,
			Extension:       ".m4a",
			SampleRate:      44100,
			Channels:        1,
			BitRate:         64000,
			BitDepth:        16,
			MeteringEnabled: true,
		}, nil
	case PlatformDesktop:
		return Profile{
			Platform:        p,
			Extension:       ".wav",
			SampleRate:      44100,
			Channels:        1,
			BitRate:         44100 * 16,
			BitDepth:        16,
			MeteringEnabled: true,
		}, nil
	default:
		return Profile{}, apperrors.ValidationError("platform", fmt.Sprintf("unknown platform %q", p))
	}
}

// ProfileFromConfig builds and validates the configured profile
func ProfileFromConfig(cfg config.RecordingConfig) (Profile, error) {
	p, err := Preset(Platform(strings.ToLower(cfg.Platform)))
	if err != nil {
		return Profile{}, err
	}
	p.SampleRate = cfg.SampleRate
	p.Channels = cfg.Channels
	p.BitRate = cfg.BitRate
	p.BitDepth = cfg.BitDepth
	p.MeteringEnabled = cfg.MeteringEnabled
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Fallback returns the platform preset with metering off, used when the
// configured profile cannot be prepared.
func (p Profile) Fallback() Profile {
	fb, err := Preset(p.Platform)
	if err != nil {
		return p
	}
	fb.MeteringEnabled = false
	return fb
}

// Validate checks every field against the accepted values
func (p Profile) Validate() error {
	if !slices.Contains(SampleRates, p.SampleRate) {
		return apperrors.ValidationError("sample_rate", fmt.Sprintf("unsupported sample rate %d", p.SampleRate))
	}
	if !slices.Contains(Channels, p.Channels) {
		return apperrors.ValidationError("channels", fmt.Sprintf("unsupported channel count %d", p.Channels))
	}
	if p.BitRate <= 0 {
		return apperrors.ValidationError("bit_rate", "must be positive")
	}
	if !slices.Contains(BitDepths, p.BitDepth) {
		return apperrors.ValidationError("bit_depth", fmt.Sprintf("unsupported bit depth %d", p.BitDepth))
	}
	if !strings.HasPrefix(p.Extension, ".") {
		return apperrors.ValidationError("extension", fmt.Sprintf("extension %q must start with a dot", p.Extension))
	}
	return nil
}

func (p Profile) String() string {
	return fmt.Sprintf("%s %s %dHz %dch %dbps %d-bit metering=%t",
		p.Platform, strings.TrimPrefix(p.Extension, "."), p.SampleRate, p.Channels, p.BitRate, p.BitDepth, p.MeteringEnabled)
}
