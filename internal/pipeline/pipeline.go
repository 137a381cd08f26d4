package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"songshift/internal/logging"
	"songshift/internal/pathplan"
	"songshift/internal/preflight"
	"songshift/internal/services"
	"songshift/internal/staging"
)

// DefaultDurationHint is passed to the separator when the input cannot be probed.
const DefaultDurationHint = 600 * time.Second

// Pipeline runs jobs against a fixed set of backends. It holds no per-job
// state and may be shared across goroutines.
type Pipeline struct {
	backends        Backends
	logger          *slog.Logger
	defaultDuration time.Duration
	now             func() time.Time
	newID           func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDefaultDuration overrides the separator duration hint used when probing fails.
func WithDefaultDuration(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.defaultDuration = d
		}
	}
}

// WithClock overrides time.Now for job timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithIDGenerator overrides job ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) {
		if newID != nil {
			p.newID = newID
		}
	}
}

// New constructs a Pipeline.
func New(backends Backends, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		backends:        backends,
		logger:          logging.NewComponentLogger(logger, "pipeline"),
		defaultDuration: DefaultDurationHint,
		now:             time.Now,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// stageError carries the stage that produced a job-aborting error.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func fail(stage string, err error) error {
	return &stageError{stage: stage, err: err}
}

// Run executes req and reports the outcome. Scheduled temporary paths are
// removed before Run returns, whatever happened.
func (p *Pipeline) Run(ctx context.Context, req Request) (result Result) {
	result = Result{
		JobID:   p.newID(),
		Request: req,
		Started: p.now(),
	}
	ctx = services.WithJobID(ctx, result.JobID)
	logger := logging.WithContext(ctx, p.logger)

	state := &State{}

	defer func() {
		if r := recover(); r != nil {
			result.Err = services.Wrap(services.ErrUnknown, "pipeline", "run", fmt.Sprintf("panic: %v", r), nil)
			result.Kind = services.KindUnknown
			result.Outcome = OutcomeFailed
		}

		failed := result.Err != nil
		targets := state.Pending.Paths()
		if failed {
			targets = append(targets, state.Provisional.Paths()...)
		}
		cleanupCtx := services.WithStage(context.WithoutCancel(ctx), StageCleanup)
		cleanup := staging.Drain(cleanupCtx, targets, p.logger)
		result.Removed = cleanup.Removed
		result.CleanupErrors = cleanup.Errors

		if failed {
			result.Deliverables = nil
		} else {
			result.Deliverables = state.deliverables()
		}
		result.Finished = p.now()
		p.logResult(logger, result)
	}()

	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("audio", req.AudioPath),
		logging.String("output_dir", req.OutputDir),
		logging.Float64("semitones", req.Semitones),
		logging.Bool("split", req.Split),
		logging.String("format", string(req.Format)),
	)

	err := p.execute(ctx, req, state, &result)
	result.StemFailures = state.stemFailures
	if err != nil {
		var se *stageError
		if errors.As(err, &se) {
			result.Stage = se.stage
			err = se.err
		}
		result.Err = err
		result.Kind = services.KindOf(err)
		result.Outcome = OutcomeFailed
		return result
	}
	if len(state.stemFailures) > 0 {
		result.Outcome = OutcomePartial
	} else {
		result.Outcome = OutcomeSucceeded
	}
	return result
}

func (p *Pipeline) execute(ctx context.Context, req Request, state *State, result *Result) error {
	outputDir, err := p.validate(ctx, req)
	if err != nil {
		return fail(StageValidate, err)
	}
	result.OutputDir = outputDir
	state.Current = req.AudioPath
	state.BaseName = pathplan.BaseName(req.AudioPath)

	type step struct {
		name    string
		enabled bool
		run     func(context.Context) (stageEffect, error)
	}
	steps := []step{
		{StagePitch, req.Semitones != 0, func(ctx context.Context) (stageEffect, error) {
			return p.pitch(ctx, state, outputDir, req.Semitones)
		}},
		{StageSplit, req.Split, func(ctx context.Context) (stageEffect, error) {
			return p.split(ctx, state, outputDir)
		}},
	}
	for _, s := range steps {
		if !s.enabled {
			continue
		}
		if err := p.runStage(ctx, s.name, state, s.run); err != nil {
			return err
		}
	}

	if req.Split {
		if req.Format != pathplan.FormatNone {
			for _, stem := range pathplan.Stems {
				if err := p.runStage(ctx, StageTranscode, state, func(ctx context.Context) (stageEffect, error) {
					return p.transcodeStem(ctx, state, stem, req.Format)
				}, logging.String("stem", stem)); err != nil {
					return err
				}
			}
		}
		return p.runStage(ctx, StageArchive, state, func(ctx context.Context) (stageEffect, error) {
			return p.archive(ctx, state, outputDir, req.Semitones)
		})
	}

	if req.Format != pathplan.FormatNone {
		return p.runStage(ctx, StageTranscode, state, func(ctx context.Context) (stageEffect, error) {
			return p.transcodeFinal(ctx, state, outputDir, req.Format)
		})
	}
	return nil
}

// runStage wraps one stage with cancellation checks, logging, and effect
// application. Effects are applied even when the stage fails so paths it
// scheduled before failing are still cleaned up.
func (p *Pipeline) runStage(ctx context.Context, name string, state *State, run func(context.Context) (stageEffect, error), attrs ...logging.Attr) error {
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, p.logger)
	if len(attrs) > 0 {
		stageLogger = stageLogger.With(logging.Args(attrs...)...)
	}

	if err := ctx.Err(); err != nil {
		return fail(name, services.Wrap(services.ErrUnknown, name, "start", "job cancelled", err))
	}

	started := p.now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("input", state.Current),
	)

	effect, err := run(stageCtx)
	state.apply(effect)
	if err != nil {
		if !services.Marked(err) {
			err = services.Wrap(services.ErrUnknown, name, "run", "", err)
		}
		kind := services.KindOf(err)
		stageLogger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String(logging.FieldFailureKind, string(kind)),
			logging.String(logging.FieldErrorHint, services.Hint(kind)),
			logging.Error(err),
		)
		return fail(name, err)
	}
	if f := effect.stemFailure; f != nil {
		logging.WarnWithContext(stageLogger, "stem transcode failed; keeping wav",
			"stem_transcode_failed",
			logging.String(logging.FieldFailureKind, string(f.Kind)),
			logging.String(logging.FieldErrorHint, services.Hint(f.Kind)),
			logging.String(logging.FieldImpact, "stem archived untranscoded"),
			logging.Error(f.Err),
		)
		return nil
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("output", state.Current),
		logging.Duration("elapsed", p.now().Sub(started)),
	)
	return nil
}

func (p *Pipeline) validate(ctx context.Context, req Request) (string, error) {
	if req.Format != pathplan.FormatNone && !req.Format.Valid() {
		return "", services.Wrap(services.ErrInvalidOutputFormat, StageValidate, "format",
			fmt.Sprintf("unsupported output format %q", string(req.Format)), nil)
	}
	if strings.TrimSpace(req.AudioPath) == "" {
		return "", services.Wrap(services.ErrInvalidInputFormat, StageValidate, "input", "audio path required", nil)
	}
	if err := preflight.CheckInputFile(req.AudioPath); err != nil {
		return "", services.Wrap(services.ErrInvalidInputFormat, StageValidate, "input", "", err)
	}
	if err := p.checkBackends(req); err != nil {
		return "", err
	}
	outputDir, err := staging.ResolveOutputDir(req.OutputDir)
	if err != nil {
		return "", services.Wrap(services.ErrUnknown, StageValidate, "output directory", "", err)
	}
	if err := checkInputUntouched(req, outputDir); err != nil {
		return "", err
	}
	if outputDir, err = staging.PrepareOutputDir(outputDir); err != nil {
		return "", services.Wrap(services.ErrUnknown, StageValidate, "output directory", "", err)
	}
	if outputDir != req.OutputDir {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "output path is a file; using fallback directory",
			"output_dir_fallback",
			logging.String("requested", req.OutputDir),
			logging.String("output_dir", outputDir),
			logging.String(logging.FieldErrorHint, "pick an output path that is not an existing file"),
			logging.String(logging.FieldImpact, "outputs written to "+outputDir),
		)
	}
	return outputDir, nil
}

// checkInputUntouched rejects jobs whose outputs or cleanup would overwrite
// or remove the input file, such as an input stored in the output directory
// under the name of the final transcode.
func checkInputUntouched(req Request, outputDir string) error {
	inputs := canonicalPaths(req.AudioPath)
	dirs := canonicalPaths(outputDir)
	for _, dir := range dirs {
		for _, planned := range pathplan.JobPaths(req.AudioPath, dir, req.Semitones, req.Split, req.Format) {
			for _, input := range inputs {
				if pathplan.Covers(planned, input) {
					return services.Wrap(services.ErrInvalidInputFormat, StageValidate, "input",
						fmt.Sprintf("input would be overwritten or removed by %s; choose another output directory", planned), nil)
				}
			}
		}
	}
	return nil
}

// canonicalPaths returns the absolute form of path and, when it differs,
// the form with symlinks resolved.
func canonicalPaths(path string) []string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return []string{filepath.Clean(path)}
	}
	paths := []string{abs}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil && resolved != abs {
		paths = append(paths, resolved)
	}
	return paths
}

func (p *Pipeline) checkBackends(req Request) error {
	var missing []string
	if req.Semitones != 0 && p.backends.Pitch == nil {
		missing = append(missing, "pitch shifter")
	}
	if req.Split {
		if p.backends.Separator == nil {
			missing = append(missing, "separator")
		}
		if p.backends.Archiver == nil {
			missing = append(missing, "archiver")
		}
	}
	if req.Format != pathplan.FormatNone && p.backends.Transcoder == nil {
		missing = append(missing, "transcoder")
	}
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(services.ErrUnknown, StageValidate, "backends",
		"not configured: "+strings.Join(missing, ", "), nil)
}

func (p *Pipeline) logResult(logger *slog.Logger, result Result) {
	attrs := []logging.Attr{
		logging.String("outcome", string(result.Outcome)),
		logging.Int("deliverables", len(result.Deliverables)),
		logging.Int("removed", len(result.Removed)),
		logging.Duration("elapsed", result.Duration()),
	}
	switch result.Outcome {
	case OutcomeFailed:
		attrs = append(attrs,
			logging.String(logging.FieldStage, result.Stage),
			logging.String(logging.FieldFailureKind, string(result.Kind)),
			logging.String(logging.FieldErrorHint, services.Hint(result.Kind)),
			logging.Error(result.Err),
		)
		logging.ErrorWithContext(logger, "job failed", "job_failure", attrs...)
	case OutcomePartial:
		attrs = append(attrs,
			logging.Int("stem_failures", len(result.StemFailures)),
			logging.String(logging.FieldImpact, "failed stems archived as wav"),
		)
		logging.WarnWithContext(logger, "job completed with stem failures", "job_partial", attrs...)
	default:
		logger.Info("job completed", logging.Args(append(attrs, logging.String(logging.FieldEventType, "job_complete"))...)...)
	}
}
