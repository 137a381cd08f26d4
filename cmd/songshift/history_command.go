package main

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"songshift/internal/history"
	"songshift/internal/pathplan"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var outcome string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				entries, err := store.List(cmd.Context(), history.Filter{Limit: limit, Outcome: strings.ToLower(strings.TrimSpace(outcome))})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No jobs recorded")
					return nil
				}
				fmt.Fprintln(out, renderHistoryTable(entries))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Number of jobs to show")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Only show jobs with this outcome (succeeded, partial, failed)")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one recorded job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				entry, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("job %s not found", args[0])
				}
				fmt.Fprint(cmd.OutOrStdout(), renderHistoryEntry(*entry))
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d job(s)\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 100, "Number of recent jobs to keep")
	return cmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("job history is disabled (set history.enabled = true)")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func renderHistoryTable(entries []history.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.StartedAt.Local().Format("2006-01-02 15:04"),
			shortJobID(e.JobID),
			filepath.Base(e.AudioPath),
			jobOptions(e),
			displayLabel(e.Outcome),
			displayLabel(e.FailureKind),
			e.Duration().Round(time.Second).String(),
		})
	}
	headers := []string{"Started", "Job", "Input", "Options", "Outcome", "Failure", "Elapsed"}
	return renderTable(headers, rows, len(headers))
}

func renderHistoryEntry(e history.Entry) string {
	var p printer
	var b strings.Builder
	fmt.Fprintln(&b, p.field("Job", e.JobID))
	fmt.Fprintln(&b, p.field("Input", e.AudioPath))
	fmt.Fprintln(&b, p.field("Output dir", e.OutputDir))
	fmt.Fprintln(&b, p.field("Options", jobOptions(e)))
	fmt.Fprintln(&b, p.field("Outcome", displayLabel(e.Outcome)))
	if e.Failed() {
		fmt.Fprintln(&b, p.field("Failure", fmt.Sprintf("%s at %s stage", displayLabel(e.FailureKind), e.FailedStage)))
		fmt.Fprintln(&b, p.field("Error", e.ErrorMessage))
	}
	for _, stem := range slices.Sorted(maps.Keys(e.StemFailures)) {
		fmt.Fprintln(&b, p.field(displayLabel(stem), displayLabel(e.StemFailures[stem])+", kept as wav"))
	}
	for _, d := range e.Deliverables {
		fmt.Fprintln(&b, p.field("Output", d))
	}
	fmt.Fprintln(&b, p.field("Started", e.StartedAt.Local().Format(time.DateTime)))
	fmt.Fprintln(&b, p.field("Elapsed", e.Duration().Round(time.Second).String()))
	return b.String()
}

func jobOptions(e history.Entry) string {
	var parts []string
	if e.Semitones != 0 {
		sign := ""
		if e.Semitones > 0 {
			sign = "+"
		}
		parts = append(parts, "pitch "+sign+pathplan.FormatSemitones(e.Semitones))
	}
	if e.Split {
		parts = append(parts, "split")
	}
	if e.Format != "" {
		parts = append(parts, e.Format)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func shortJobID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
