package model

import (
	"os"
	"path/filepath"
)

// defaultCacheDir returns ~/.concordance/cache, or a temp dir if home is unknown
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "concordance-cache")
	}
	return filepath.Join(home, ".concordance", "cache")
}

// SubjectFromSource derives a readable subject from a path or URL
func SubjectFromSource(source string) string {
	base := filepath.Base(source)
	if ext := filepath.Ext(base); ext != "" && len(ext) < len(base) {
		base = base[:len(base)-len(ext)]
	}
	if base == "." || base == string(filepath.Separator) || base == "" {
		return source
	}
	return base
}
