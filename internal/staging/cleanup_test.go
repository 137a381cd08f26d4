package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"songshift/internal/logging"
)

func TestDrainRemovesFilesAndDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	file := filepath.Join(tmpDir, "song_2.wav")
	if err := os.WriteFile(file, []byte("pcm"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	dir := filepath.Join(tmpDir, "song_2")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "vocals.wav"), []byte("v"), 0o644); err != nil {
		t.Fatalf("write stem: %v", err)
	}
	missing := filepath.Join(tmpDir, "never-created")

	result := Drain(context.Background(), []string{file, dir, missing, "  "}, logging.NewNop())

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Removed) != 2 {
		t.Fatalf("expected 2 removed, got %v", result.Removed)
	}
	for _, p := range []string{file, dir} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("expected %s to be removed", p)
		}
	}
}

func TestDrainIsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "a.wav")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	paths := []string{file, filepath.Join(tmpDir, "dir")}

	first := Drain(context.Background(), paths, nil)
	second := Drain(context.Background(), paths, nil)

	if len(first.Removed) != 1 || len(first.Errors) != 0 {
		t.Fatalf("unexpected first result %+v", first)
	}
	if len(second.Removed) != 0 || len(second.Errors) != 0 {
		t.Fatalf("second drain should be a no-op, got %+v", second)
	}
}

func TestDrainContinuesAfterError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	tmpDir := t.TempDir()
	locked := filepath.Join(tmpDir, "locked")
	if err := os.MkdirAll(locked, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	victim := filepath.Join(locked, "stem.wav")
	if err := os.WriteFile(victim, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chmod(locked, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	other := filepath.Join(tmpDir, "other.wav")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result := Drain(context.Background(), []string{victim, other}, logging.NewNop())
	if len(result.Errors) != 1 || result.Errors[0].Path != victim {
		t.Fatalf("expected one error for %s, got %+v", victim, result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != other {
		t.Fatalf("expected %s removed, got %v", other, result.Removed)
	}
}

func TestPathSet(t *testing.T) {
	var set PathSet
	set.Add("a", "b", "a", "")
	set.Add("c")
	if set.Len() != 3 {
		t.Fatalf("expected 3 paths, got %v", set.Paths())
	}
	set.Delete("b")
	got := set.Paths()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("unexpected order %v", got)
	}
	got[0] = "mutated"
	if !set.Contains("a") {
		t.Fatal("Paths must return a copy")
	}
}
