package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"songshift/internal/history"
	"songshift/internal/logging"
	"songshift/internal/outputlock"
	"songshift/internal/pipeline"
	"songshift/internal/staging"
)

// JobRunner is the pipeline contract the runner drives.
type JobRunner interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.Result
}

// Recorder persists finished jobs.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (int64, error)
}

// Runner wraps a pipeline run with the output directory lock and job history.
type Runner struct {
	jobs     JobRunner
	recorder Recorder
	lockDir  string
	logger   *slog.Logger
}

// NewRunner constructs a Runner that keeps its locks in lockDir. recorder may
// be nil to skip history.
func NewRunner(jobs JobRunner, recorder Recorder, lockDir string, logger *slog.Logger) *Runner {
	return &Runner{
		jobs:     jobs,
		recorder: recorder,
		lockDir:  lockDir,
		logger:   logging.NewComponentLogger(logger, "workflow"),
	}
}

// Run locks the output directory, runs the job, and records it. The
// directory is created by the job itself once the request is validated.
// The returned error covers only failures outside the job itself, such as a
// busy output directory; job failures are reported through the Result.
func (r *Runner) Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error) {
	if r == nil || r.jobs == nil {
		return pipeline.Result{}, errors.New("workflow runner not configured")
	}

	outputDir, err := staging.ResolveOutputDir(req.OutputDir)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("resolve output directory: %w", err)
	}
	lock, err := outputlock.Acquire(r.lockDir, outputDir)
	if err != nil {
		return pipeline.Result{}, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WarnWithContext(r.logger, "failed to release output lock", "output_lock_release_failed",
				logging.String("lock", lock.Path()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the lock file if no songshift job is running"),
				logging.String(logging.FieldImpact, "next job on this directory may report it as busy"),
			)
		}
	}()

	result := r.jobs.Run(ctx, req)

	if r.recorder != nil {
		if _, err := r.recorder.Record(context.WithoutCancel(ctx), EntryFromResult(result)); err != nil {
			logging.WarnWithContext(r.logger, "failed to record job history", "history_record_failed",
				logging.String(logging.FieldJobID, result.JobID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check history.path permissions or disable [history]"),
				logging.String(logging.FieldImpact, "job missing from 'songshift history'"),
			)
		}
	}
	return result, nil
}

// EntryFromResult converts a pipeline result into a history row.
func EntryFromResult(result pipeline.Result) history.Entry {
	entry := history.Entry{
		JobID:             result.JobID,
		AudioPath:         result.Request.AudioPath,
		OutputDir:         result.OutputDir,
		Semitones:         result.Request.Semitones,
		Split:             result.Request.Split,
		Format:            string(result.Request.Format),
		Outcome:           string(result.Outcome),
		FailureKind:       string(result.Kind),
		FailedStage:       result.Stage,
		Deliverables:      result.Deliverables,
		RemovedCount:      len(result.Removed),
		CleanupErrorCount: len(result.CleanupErrors),
		StartedAt:         result.Started,
		FinishedAt:        result.Finished,
	}
	if entry.OutputDir == "" {
		entry.OutputDir = result.Request.OutputDir
	}
	if result.Err != nil {
		entry.ErrorMessage = result.Err.Error()
	}
	if len(result.StemFailures) > 0 {
		entry.StemFailures = make(map[string]string, len(result.StemFailures))
		for _, f := range result.StemFailures {
			entry.StemFailures[f.Stem] = string(f.Kind)
		}
	}
	return entry
}
