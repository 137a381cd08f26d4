package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"songshift/internal/archive"
	"songshift/internal/pathplan"
	"songshift/internal/services"
)

// callLog records backend invocations in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeShifter struct {
	log *callLog
	err error
	// partial writes the output before failing.
	partial bool
}

func (f *fakeShifter) Shift(_ context.Context, input, output string, semitones float64) error {
	f.log.add("pitch " + filepath.Base(input) + " " + pathplan.FormatSemitones(semitones))
	if f.err != nil {
		if f.partial {
			_ = os.WriteFile(output, []byte("partial"), 0o644)
		}
		return f.err
	}
	return os.WriteFile(output, []byte("pitched"), 0o644)
}

type fakeSeparator struct {
	log      *callLog
	err      error
	skipStem string
	hint     time.Duration
}

func (f *fakeSeparator) Separate(_ context.Context, input, outputDir string, hint time.Duration) (map[string]string, error) {
	f.log.add("split " + filepath.Base(input))
	f.hint = hint
	stemDir := pathplan.SplitOutputDir(outputDir, pathplan.BaseName(input))
	if err := os.MkdirAll(stemDir, 0o755); err != nil {
		return nil, err
	}
	stems := make(map[string]string)
	for _, stem := range pathplan.Stems {
		if stem == f.skipStem {
			continue
		}
		path := pathplan.StemPath(stemDir, stem)
		if err := os.WriteFile(path, []byte(stem), 0o644); err != nil {
			return nil, err
		}
		stems[stem] = path
	}
	if f.err != nil {
		return nil, f.err
	}
	return stems, nil
}

type fakeTranscoder struct {
	log *callLog
	// failures maps an input base name to the error returned for it.
	failures map[string]error
}

func (f *fakeTranscoder) Transcode(_ context.Context, input, output string, format pathplan.Format) error {
	f.log.add("transcode " + filepath.Base(input) + " " + string(format))
	if err, ok := f.failures[filepath.Base(input)]; ok {
		_ = os.WriteFile(output, []byte("truncated"), 0o644)
		return err
	}
	return os.WriteFile(output, []byte("encoded "+filepath.Base(input)), 0o644)
}

type recordingArchiver struct {
	log *callLog
	err error
}

func (a *recordingArchiver) Zip(ctx context.Context, sourceDir, dest string) (string, error) {
	a.log.add("zip " + filepath.Base(sourceDir))
	if a.err != nil {
		return "", a.err
	}
	return archive.Zipper{}.Zip(ctx, sourceDir, dest)
}

type fakeProber struct {
	d   time.Duration
	err error
}

func (p fakeProber) Duration(context.Context, string) (time.Duration, error) {
	return p.d, p.err
}

type panickingShifter struct{}

func (panickingShifter) Shift(context.Context, string, string, float64) error {
	panic("boom")
}

func execFailed(stage string) error {
	return services.Wrap(services.ErrExecutionFailed, stage, "fake", "exit status 1", nil)
}

func notFound(stage string) error {
	return services.Wrap(services.ErrExecutableNotFound, stage, "fake", "not on PATH", nil)
}
