package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"songshift/internal/logging"
	"songshift/internal/pathplan"
	"songshift/internal/services"
)

func (p *Pipeline) pitch(ctx context.Context, state *State, outputDir string, semitones float64) (stageEffect, error) {
	output := pathplan.PitchOutputPath(state.BaseName, outputDir, semitones)
	effect := stageEffect{provisional: []string{output}}
	if err := p.backends.Pitch.Shift(ctx, state.Current, output, semitones); err != nil {
		return effect, pitchError(err)
	}
	effect.current = output
	effect.shifted = true
	return effect, nil
}

// pitchError reports any pitch failure other than a missing tool or a
// cancelled job as an unreadable input.
func pitchError(err error) error {
	switch {
	case errors.Is(err, services.ErrExecutableNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return services.Wrap(services.ErrInvalidInputFormat, StagePitch, "shift", "input could not be pitch shifted", err)
	}
}

func (p *Pipeline) split(ctx context.Context, state *State, outputDir string) (stageEffect, error) {
	stemDir := pathplan.SplitOutputDir(outputDir, pathplan.BaseName(state.Current))

	// Scheduled before the separator runs so a failure part way through
	// still removes whatever it wrote.
	effect := stageEffect{schedule: []string{stemDir}}
	if state.Shifted {
		effect.schedule = append(effect.schedule, state.Current)
	}

	hint := p.durationHint(ctx, state.Current)
	if _, err := p.backends.Separator.Separate(ctx, state.Current, outputDir, hint); err != nil {
		return effect, err
	}
	for _, stem := range pathplan.Stems {
		path := pathplan.StemPath(stemDir, stem)
		if _, err := os.Stat(path); err != nil {
			return effect, services.Wrap(services.ErrUnknown, StageSplit, "verify", fmt.Sprintf("%s stem missing", stem), err)
		}
	}
	effect.stemDir = stemDir
	return effect, nil
}

func (p *Pipeline) durationHint(ctx context.Context, path string) time.Duration {
	if p.backends.Prober == nil {
		return p.defaultDuration
	}
	d, err := p.backends.Prober.Duration(ctx, path)
	if err != nil || d <= 0 {
		logging.WithContext(ctx, p.logger).Debug("duration probe unavailable; using default",
			logging.Duration("default", p.defaultDuration),
			logging.Error(err),
		)
		return p.defaultDuration
	}
	return d
}

func (p *Pipeline) transcodeStem(ctx context.Context, state *State, stem string, format pathplan.Format) (stageEffect, error) {
	plan := pathplan.StemTranscode(state.StemDir, stem, format)
	logger := logging.WithContext(ctx, p.logger)
	if plan.Skip {
		logger.Debug("stem already in target format", logging.String("stem", stem))
		return stageEffect{}, nil
	}

	err := p.backends.Transcoder.Transcode(ctx, plan.Input, plan.Output, format)
	if err == nil {
		if rmErr := os.Remove(plan.Input); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			logging.WarnWithContext(logger, "failed to remove transcoded stem source",
				"stem_source_retained",
				logging.String("stem", stem),
				logging.String("path", plan.Input),
				logging.Error(rmErr),
				logging.String(logging.FieldImpact, "archive contains both wav and transcoded stem"),
			)
		}
		return stageEffect{}, nil
	}

	// Whatever the encoder left behind must not end up in the archive.
	_ = os.Remove(plan.Output)

	if stemFailureAborts(ctx, err) {
		return stageEffect{}, err
	}
	return stageEffect{stemFailure: &StemFailure{Stem: stem, Kind: services.KindOf(err), Err: err}}, nil
}

// stemFailureAborts reports whether a stem transcode error ends the job
// rather than leaving the stem untranscoded.
func stemFailureAborts(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, services.ErrExecutableNotFound) || errors.Is(err, services.ErrInvalidOutputFormat)
}

func (p *Pipeline) archive(ctx context.Context, state *State, outputDir string, semitones float64) (stageEffect, error) {
	dest := pathplan.ArchiveBase(outputDir, state.BaseName, semitones)
	effect := stageEffect{provisional: []string{dest + pathplan.ArchiveExt}}
	zipPath, err := p.backends.Archiver.Zip(ctx, state.StemDir, dest)
	if err != nil {
		return effect, err
	}
	effect.provisional = append(effect.provisional, zipPath)
	effect.current = zipPath
	return effect, nil
}

func (p *Pipeline) transcodeFinal(ctx context.Context, state *State, outputDir string, format pathplan.Format) (stageEffect, error) {
	plan := pathplan.FinalTranscode(state.Current, outputDir, state.BaseName, format)
	if plan.Skip {
		logging.WithContext(ctx, p.logger).Debug("input already in target format",
			logging.String("path", plan.Input),
		)
		return stageEffect{}, nil
	}
	effect := stageEffect{provisional: []string{plan.Output}}
	if err := p.backends.Transcoder.Transcode(ctx, plan.Input, plan.Output, format); err != nil {
		return effect, err
	}
	effect.current = plan.Output
	if state.Shifted {
		effect.schedule = []string{state.Current}
	}
	return effect, nil
}
