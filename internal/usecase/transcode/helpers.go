package transcode

import (
	"path/filepath"
	"strings"
)

const defaultCategory = "image"

func normalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return defaultCategory
	}

	return c
}

// extensionFromPath returns the dot-prefixed extension of a path or
// storage key, empty when there is none.
func extensionFromPath(path string) string {
	return filepath.Ext(path)
}
