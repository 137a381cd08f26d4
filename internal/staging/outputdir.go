package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// collisionSuffix is appended when the requested output path is an existing file.
const collisionSuffix = "_"

// ResolveOutputDir returns the directory a job writing to dir will use
// without creating it. When dir names an existing non-directory, the sibling
// dir + "_" is used instead.
func ResolveOutputDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", errors.New("output directory required")
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return dir, nil
	case err == nil:
		alt := dir + collisionSuffix
		if altInfo, altErr := os.Stat(alt); altErr == nil && !altInfo.IsDir() {
			return "", fmt.Errorf("output path %q and fallback %q are both files", dir, alt)
		}
		return alt, nil
	case errors.Is(err, fs.ErrNotExist):
		return dir, nil
	default:
		return "", fmt.Errorf("stat output directory: %w", err)
	}
}

// PrepareOutputDir resolves dir like ResolveOutputDir and creates it.
func PrepareOutputDir(dir string) (string, error) {
	resolved, err := ResolveOutputDir(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return resolved, nil
}
