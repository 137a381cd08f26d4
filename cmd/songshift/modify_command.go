package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"songshift/internal/history"
	"songshift/internal/logging"
	"songshift/internal/pathplan"
	"songshift/internal/pipeline"
	"songshift/internal/services"
	"songshift/internal/workflow"
)

const exitPartial = 2

type modifyOptions struct {
	audio     string
	semitones float64
	split     bool
	format    string
	output    string
	debug     bool
}

func newModifyCommand(ctx *commandContext) *cobra.Command {
	var opts modifyOptions

	cmd := &cobra.Command{
		Use:   "modify",
		Short: "Pitch shift, split into vocals and accompaniment, and transcode a song",
		Example: `  songshift modify --audio song.wav --pitch 2 --format mp3
  songshift modify -a song.flac -s -f mp3 -o stems`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModify(cmd, ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.audio, "audio", "a", "", "Path to the audio file")
	cmd.Flags().Float64VarP(&opts.semitones, "pitch", "p", 0, "Semitones to shift the pitch by (e.g. 2, -1, 0.5)")
	cmd.Flags().BoolVarP(&opts.split, "split", "s", false, "Split into vocals and accompaniment and zip the stems")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Transcode to this format ("+formatList()+")")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output directory (default from config, \"output\")")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")
	_ = cmd.MarkFlagRequired("audio")

	return cmd
}

func runModify(cmd *cobra.Command, ctx *commandContext, opts modifyOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	format, err := pathplan.ParseFormat(opts.format)
	if err != nil {
		return fmt.Errorf("%w (%s)", err, services.Hint(services.KindOf(err)))
	}
	outputDir := strings.TrimSpace(opts.output)
	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	}

	logger, err := ctx.logger(cmd, opts.debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := ctx.newBackends(cfg, logger)
	if err != nil {
		return fmt.Errorf("configure backends: %w", err)
	}
	jobs := pipeline.New(backends, logger, pipeline.WithDefaultDuration(cfg.DefaultDuration()))

	var recorder workflow.Recorder
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logging.WarnWithContext(logger, "job history unavailable", "history_open_failed",
				logging.String("path", cfg.History.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check history.path or set history.enabled = false"),
				logging.String(logging.FieldImpact, "this job will not appear in 'songshift history'"),
			)
		} else {
			defer store.Close()
			recorder = store
		}
	}

	result, err := workflow.NewRunner(jobs, recorder, cfg.LockDir(), logger).Run(runCtx, pipeline.Request{
		AudioPath: opts.audio,
		OutputDir: outputDir,
		Semitones: opts.semitones,
		Split:     opts.split,
		Format:    format,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderSummary(result, newPrinter(out)))

	switch result.Outcome {
	case pipeline.OutcomeFailed:
		return &exitError{code: 1, err: fmt.Errorf("job %s failed: %w", result.JobID, result.Err)}
	case pipeline.OutcomePartial:
		return &exitError{code: exitPartial, err: fmt.Errorf("job %s completed with %d stem(s) left untranscoded", result.JobID, len(result.StemFailures))}
	}
	return nil
}

func formatList() string {
	names := make([]string, 0, len(pathplan.Formats))
	for _, f := range pathplan.Formats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
