package main

import (
	"github.com/spf13/cobra"
)

type rootOption func(*commandContext)

// withBackendFactory replaces production backend construction.
func withBackendFactory(factory backendFactory) rootOption {
	return func(c *commandContext) {
		if factory != nil {
			c.newBackends = factory
		}
	}
}

func newRootCommand(opts ...rootOption) *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)
	for _, opt := range opts {
		opt(ctx)
	}

	rootCmd := &cobra.Command{
		Use:           "songshift",
		Short:         "Pitch shift, split, and transcode songs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newModifyCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
