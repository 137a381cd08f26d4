package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"songshift/internal/history"
	"songshift/internal/logging"
	"songshift/internal/outputlock"
	"songshift/internal/pathplan"
	"songshift/internal/pipeline"
	"songshift/internal/services"
	"songshift/internal/testsupport"
	"songshift/internal/workflow"
)

type stubJobs struct {
	lockDir string
	got     pipeline.Request
	result  pipeline.Result
	// lockHeld records whether the output lock was held during Run.
	lockHeld bool
}

func (s *stubJobs) Run(_ context.Context, req pipeline.Request) pipeline.Result {
	s.got = req
	if _, err := outputlock.Acquire(s.lockDir, req.OutputDir); errors.Is(err, outputlock.ErrLocked) {
		s.lockHeld = true
	}
	res := s.result
	res.Request = req
	res.OutputDir = req.OutputDir
	return res
}

type failingRecorder struct{ calls int }

func (f *failingRecorder) Record(context.Context, history.Entry) (int64, error) {
	f.calls++
	return 0, errors.New("disk full")
}

func TestRunnerLocksAndRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	started := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	jobs := &stubJobs{lockDir: cfg.LockDir(), result: pipeline.Result{
		JobID:        "job-7",
		Outcome:      pipeline.OutcomePartial,
		Deliverables: []string{"/out/song.zip"},
		StemFailures: []pipeline.StemFailure{{Stem: pathplan.StemVocals, Kind: services.KindExecutionFailed}},
		Started:      started,
		Finished:     started.Add(time.Minute),
	}}
	runner := workflow.NewRunner(jobs, store, cfg.LockDir(), logging.NewNop())

	outDir := filepath.Join(testsupport.BaseDir(cfg), "fresh")
	result, err := runner.Run(context.Background(), pipeline.Request{AudioPath: "/music/song.wav", OutputDir: outDir, Split: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.JobID != "job-7" {
		t.Fatalf("job id = %q", result.JobID)
	}
	if !jobs.lockHeld {
		t.Fatal("output lock not held while the job ran")
	}
	if jobs.got.OutputDir != outDir {
		t.Fatalf("output dir = %q", jobs.got.OutputDir)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Fatalf("runner must leave creating the output directory to the job: %v", err)
	}

	entry, err := store.Get(context.Background(), "job-7")
	if err != nil || entry == nil {
		t.Fatalf("Get = %+v, %v", entry, err)
	}
	if entry.Outcome != "partial" || !entry.Split || entry.StemFailures["vocals"] != "backend_execution_failed" {
		t.Fatalf("entry = %+v", entry)
	}

	// Lock released after the run.
	lock, err := outputlock.Acquire(cfg.LockDir(), outDir)
	if err != nil {
		t.Fatalf("Acquire after run: %v", err)
	}
	_ = lock.Release()
}

func TestRunnerBusyDirectory(t *testing.T) {
	dir := t.TempDir()
	locks := filepath.Join(t.TempDir(), "locks")
	held, err := outputlock.Acquire(locks, dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = held.Release() })

	jobs := &stubJobs{lockDir: locks}
	_, err = workflow.NewRunner(jobs, nil, locks, logging.NewNop()).Run(context.Background(), pipeline.Request{OutputDir: dir})
	if !errors.Is(err, outputlock.ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
	if jobs.got.OutputDir != "" {
		t.Fatal("job must not run while the directory is locked")
	}
}

func TestRunnerHistoryFailureIsNotFatal(t *testing.T) {
	recorder := &failingRecorder{}
	jobs := &stubJobs{result: pipeline.Result{JobID: "j", Outcome: pipeline.OutcomeSucceeded}}
	result, err := workflow.NewRunner(jobs, recorder, t.TempDir(), logging.NewNop()).Run(context.Background(), pipeline.Request{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if recorder.calls != 1 || result.Outcome != pipeline.OutcomeSucceeded {
		t.Fatalf("calls = %d outcome = %s", recorder.calls, result.Outcome)
	}
}

func TestEntryFromFailedResult(t *testing.T) {
	err := services.Wrap(services.ErrExecutableNotFound, "transcode", "ffmpeg", "not on PATH", nil)
	entry := workflow.EntryFromResult(pipeline.Result{
		JobID:   "j",
		Request: pipeline.Request{AudioPath: "a.wav", OutputDir: "out", Format: pathplan.FormatMP3},
		Outcome: pipeline.OutcomeFailed,
		Kind:    services.KindExecutableNotFound,
		Stage:   pipeline.StageTranscode,
		Err:     err,
		Removed: []string{"out/a_1.wav", "out/a_1"},
	})
	if entry.OutputDir != "out" || entry.Format != "mp3" || entry.RemovedCount != 2 {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.FailureKind != "backend_executable_not_found" || entry.FailedStage != "transcode" || entry.ErrorMessage == "" {
		t.Fatalf("failure fields = %+v", entry)
	}
	if !entry.Failed() {
		t.Fatal("expected failed entry")
	}
}
