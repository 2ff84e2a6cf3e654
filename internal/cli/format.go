package cli

import (
	"fmt"
	"time"
)

// FormatSize formats bytes as human-readable size.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatPlayTime formats a play time in seconds, e.g. "1h2m3s".
func FormatPlayTime(seconds uint64) string {
	if seconds == 0 {
		return "0s"
	}
	return (time.Duration(seconds) * time.Second).String()
}
