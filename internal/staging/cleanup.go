package staging

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"songshift/internal/logging"
)

// CleanupResult contains the outcome of draining a set of scheduled paths.
type CleanupResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its removal error.
type CleanupError struct {
	Path  string
	Error error
}

// Drain removes every path: directories recursively, files individually.
// Paths that no longer exist are skipped silently, so draining the same set
// twice is harmless. Removal errors are collected and logged, never returned,
// and the remaining paths are still attempted.
func Drain(ctx context.Context, paths []string, logger *slog.Logger) CleanupResult {
	result := CleanupResult{}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logger)

	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		removed, err := removePath(path)
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logging.WarnWithContext(logger, "failed to remove temporary path",
				"cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output directory permissions"),
				logging.String(logging.FieldImpact, "temporary files left in output directory"),
			)
			continue
		}
		if removed {
			result.Removed = append(result.Removed, path)
			logger.Debug("removed temporary path",
				logging.String("path", path),
				logging.String(logging.FieldEventType, "cleanup_removed"),
			)
		}
	}
	return result
}

func removePath(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	return err == nil, nil
}
