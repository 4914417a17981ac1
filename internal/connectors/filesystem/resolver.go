// Package filesystem collects local files for upload and watches folders
// for changes.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath converts a user supplied location to a clean absolute path.
// It accepts file:// URIs and a leading "~".
func ResolvePath(p string) (string, error) {
	p = strings.TrimPrefix(p, "file://")

	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}

	return filepath.Abs(p)
}

// isHidden reports whether any element of path starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}
