package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"songshift/internal/config"
	"songshift/internal/logging"
	"songshift/internal/pipeline"
	"songshift/internal/workflow"
)

type backendFactory func(cfg *config.Config, logger *slog.Logger) (pipeline.Backends, error)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	newBackends backendFactory
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		newBackends: func(cfg *config.Config, logger *slog.Logger) (pipeline.Backends, error) {
			return workflow.NewBackends(cfg, logger, nil)
		},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command, debug bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := logging.OptionsFromConfig(cfg, debug)
	opts.Writer = cmd.ErrOrStderr()
	return logging.New(opts)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
