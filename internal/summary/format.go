package summary

import (
	"fmt"
	"math"
)

// FormatDuration renders seconds as ms, s or min.
func FormatDuration(seconds *float64) string {
	if seconds == nil || math.IsNaN(*seconds) || math.IsInf(*seconds, 0) {
		return "-"
	}
	v := *seconds
	switch {
	case v < 1:
		return fmt.Sprintf("%d ms", int64(math.Round(v*1000)))
	case v < 60:
		return fmt.Sprintf("%.2f s", v)
	default:
		return fmt.Sprintf("%.1f min", v/60)
	}
}

func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	sizes := []string{"B", "KB", "MB", "GB"}
	i := min(int(math.Floor(math.Log(float64(n))/math.Log(1024))), len(sizes)-1)
	v := float64(n) / math.Pow(1024, float64(i))
	if v < 10 {
		return fmt.Sprintf("%.1f %s", v, sizes[i])
	}
	return fmt.Sprintf("%.0f %s", v, sizes[i])
}
