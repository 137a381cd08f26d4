package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"songshift/internal/config"
	"songshift/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatableDirectory passes when path is an accessible directory or when
// its nearest existing ancestor would let it be created.
func CheckCreatableDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := filepath.Dir(path)
	for {
		if _, err := os.Stat(ancestor); err == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckInputFile verifies path names a readable regular file.
func CheckInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return fmt.Errorf("%s is not readable: %w", path, err)
	}
	return nil
}

// CheckSystemDeps evaluates the external tools for the configured engines,
// plus the ffmpeg encoders and filter they rely on when ffmpeg is present.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	ffmpegOK := false
	for _, s := range statuses {
		if s.Command == cfg.FFmpegBinary() && s.Available {
			ffmpegOK = true
		}
	}
	if !ffmpegOK {
		return statuses
	}
	statuses = append(statuses, deps.CheckFFmpegComponents(ctx, cfg.FFmpegBinary(), "encoders", deps.EncoderNames)...)
	if cfg.Pitch.Engine == config.PitchEngineFFmpeg {
		statuses = append(statuses, deps.CheckFFmpegComponents(ctx, cfg.FFmpegBinary(), "filters", []string{"rubberband"})...)
	}
	return statuses
}
