package outputlock_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"songshift/internal/outputlock"
)

func TestAcquireExcludesSecondHolder(t *testing.T) {
	base := t.TempDir()
	locks := filepath.Join(base, "state", "locks")
	out := filepath.Join(base, "out")

	first, err := outputlock.Acquire(locks, out)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if filepath.Dir(first.Path()) != locks {
		t.Fatalf("lock %q not under %q", first.Path(), locks)
	}

	if _, err := outputlock.Acquire(locks, out); !errors.Is(err, outputlock.ErrLocked) {
		t.Fatalf("second Acquire err = %v, want ErrLocked", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}

	again, err := outputlock.Acquire(locks, out)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	t.Cleanup(func() { _ = again.Release() })
}

func TestAcquireLeavesOutputDirectoryAlone(t *testing.T) {
	base := t.TempDir()
	out := filepath.Join(base, "out")

	lock, err := outputlock.Acquire(filepath.Join(base, "locks"), out)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = lock.Release() })

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output directory must not be created: %v", err)
	}
}

func TestPathForIsStablePerDirectory(t *testing.T) {
	base := t.TempDir()
	locks := filepath.Join(base, "locks")

	a, err := outputlock.PathFor(locks, filepath.Join(base, "out"))
	if err != nil {
		t.Fatalf("PathFor: %v", err)
	}
	b, err := outputlock.PathFor(locks, filepath.Join(base, "x", "..", "out")+string(filepath.Separator))
	if err != nil {
		t.Fatalf("PathFor: %v", err)
	}
	if a != b {
		t.Fatalf("same directory mapped to %q and %q", a, b)
	}
	c, err := outputlock.PathFor(locks, filepath.Join(base, "other"))
	if err != nil {
		t.Fatalf("PathFor: %v", err)
	}
	if c == a {
		t.Fatal("different directories share a lock")
	}
}

func TestReleaseNil(t *testing.T) {
	var l *outputlock.Lock
	if err := l.Release(); err != nil {
		t.Fatalf("Release on nil: %v", err)
	}
}
