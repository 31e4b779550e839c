package audio

import (
	"context"
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
)

// DeviceGate grants microphone access when an input device is present.
// Desktop systems have no permission prompt; a missing device is the closest
// equivalent of a denial.
type DeviceGate struct{}

// RequestPermission reports whether a default input device with at least one
// input channel exists
func (DeviceGate) RequestPermission(ctx context.Context) (bool, error) {
	if err := portaudio.Initialize(); err != nil {
		return false, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	defer func() {
		if err := portaudio.Terminate(); err != nil {
			log.Printf("[WARN] Error terminating portaudio: %v", err)
		}
	}()

	dev, err := portaudio.DefaultInputDevice()
	if err != nil || dev == nil {
		log.Printf("[DEBUG] No default input device: %v", err)
		return false, nil
	}
	return dev.MaxInputChannels > 0, nil
}
