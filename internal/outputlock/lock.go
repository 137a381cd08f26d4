// Package outputlock keeps two songshift jobs from writing into the same
// output directory at once. Intermediate names are derived from the input
// base name, so concurrent jobs on one directory would delete each other's
// files during cleanup.
//
// Lock files live in a separate lock directory, one per output directory,
// so nothing is added to the directory a job writes its deliverables to.
package outputlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const lockExt = ".lock"

// ErrLocked is returned when another process holds the directory lock.
var ErrLocked = errors.New("output directory is in use by another songshift job")

// Lock is an acquired output directory lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// PathFor returns the lock file guarding outputDir. The name is a name-based
// UUID of the absolute directory, so every spelling of one directory maps to
// the same file.
func PathFor(lockDir, outputDir string) (string, error) {
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory %s: %w", outputDir, err)
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs)))
	return filepath.Join(lockDir, id.String()+lockExt), nil
}

// Acquire takes the lock for outputDir without blocking, creating lockDir
// if needed. outputDir itself is not touched and need not exist yet.
func Acquire(lockDir, outputDir string) (*Lock, error) {
	path, err := PathFor(lockDir, outputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, outputDir)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release unlocks the directory. The lock file stays in the lock directory
// so a waiting process never locks an unlinked file. Safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return l.lock.Close()
}
