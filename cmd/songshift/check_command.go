package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"songshift/internal/deps"
	"songshift/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify external tools and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := newPrinter(out)

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				rows = append(rows, []string{s.Name, s.Command, dependencyState(s), dependencyDetail(s)})
			}
			fmt.Fprintln(out, p.title("Tools"))
			fmt.Fprintln(out, renderTable([]string{"Tool", "Command", "Status", "Detail"}, rows))

			fmt.Fprintln(out, p.title("Directories"))
			failedDirs := 0
			for _, r := range preflight.RunAll(cmd.Context(), cfg, strings.TrimSpace(outputDir)) {
				t := toneGood
				if !r.Passed {
					t = toneBad
					failedDirs++
				}
				fmt.Fprintln(out, p.status(r.Name, t, r.Detail))
			}
			if ctx.configPath != "" {
				fmt.Fprintln(out, p.field("Config", ctx.configPath))
			}

			missing := deps.MissingRequired(statuses)
			if len(missing) == 0 && failedDirs == 0 {
				fmt.Fprintln(out, p.status("Result", toneGood, "ready"))
				return nil
			}
			names := make([]string, 0, len(missing))
			for _, m := range missing {
				names = append(names, m.Name)
			}
			if len(names) > 0 {
				return fmt.Errorf("missing required tools: %s", strings.Join(names, ", "))
			}
			return fmt.Errorf("%d directory check(s) failed", failedDirs)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory to check (default from config)")
	return cmd
}

func dependencyState(s deps.Status) string {
	switch {
	case s.Available:
		return "ok"
	case s.Optional:
		return "optional"
	default:
		return "missing"
	}
}

func dependencyDetail(s deps.Status) string {
	if s.Available && s.Path != "" {
		return s.Path
	}
	if s.Detail != "" {
		return s.Detail
	}
	return s.Description
}
