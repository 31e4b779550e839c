package notes

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/killallgit/voicenotes/internal/models"
)

var recordingNamePattern = regexp.MustCompile(`(?i)^Recording\s+(\d+)$`)

// NextRecordingName returns "Recording N" where N is one more than the highest
// number already used by a default-style name. Gaps are never refilled.
func NextRecordingName(notes []models.VoiceNote) string {
	highest := 0
	for _, n := range notes {
		m := recordingNamePattern.FindStringSubmatch(n.Name)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue // overflow
		}
		highest = max(highest, v)
	}
	return fmt.Sprintf("Recording %d", highest+1)
}
