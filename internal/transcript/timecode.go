package transcript

import (
	"fmt"
	"math"
	"strings"
)

// FormatTime renders seconds as an SRT timestamp (HH:MM:SS,mmm). Every field
// is floored; hours are not clamped and may exceed two digits. Negative or
// non-finite input renders as zero.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	hours := int64(math.Floor(seconds / 3600))
	minutes := int64(math.Floor(math.Mod(seconds, 3600) / 60))
	secs := int64(math.Floor(math.Mod(seconds, 60)))
	millis := int64(math.Floor(math.Mod(seconds, 1) * 1000))
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// FormatVTTTime renders seconds as a WebVTT timestamp (HH:MM:SS.mmm).
func FormatVTTTime(seconds float64) string {
	return strings.Replace(FormatTime(seconds), ",", ".", 1)
}
