package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FormatSize renders a byte count in a compact human-readable unit.
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

// FileExtension returns the lowercased extension of name, including the dot.
// Returns "" for names without an extension.
func FileExtension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
