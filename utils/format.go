package utils

import (
	"fmt"
	"math"
	"time"
)

// FormatTime formats time.Duration output to a human readable value.
func FormatTime(d time.Duration) string {
	switch {
	case d.Seconds() < 60.0:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d.Minutes() < 60.0:
		return fmt.Sprintf("%dm %.2fs", int64(d.Minutes()), math.Mod(d.Seconds(), 60))
	case d.Hours() < 24.0:
		return fmt.Sprintf("%dh %dm %.2fs",
			int64(d.Hours()), int64(math.Mod(d.Minutes(), 60)), math.Mod(d.Seconds(), 60))
	}
	return fmt.Sprintf("%dd %dh %dm %.2fs",
		int64(d.Hours()/24), int64(math.Mod(d.Hours(), 24)),
		int64(math.Mod(d.Minutes(), 60)), math.Mod(d.Seconds(), 60))
}

// FormatSize formats image dimensions as WxH.
func FormatSize(width, height int) string {
	return fmt.Sprintf("%dx%d", width, height)
}
