package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeEngines()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = binaryOrDefault(c.Tools.FFmpeg, defaultFFmpegBinary)
	c.Tools.FFprobe = binaryOrDefault(c.Tools.FFprobe, defaultFFprobeBinary)
	c.Tools.Rubberband = binaryOrDefault(c.Tools.Rubberband, defaultRubberbandBinary)
	c.Tools.Spleeter = binaryOrDefault(c.Tools.Spleeter, defaultSpleeterBinary)
	c.Tools.Demucs = binaryOrDefault(c.Tools.Demucs, defaultDemucsBinary)
}

func (c *Config) normalizeEngines() {
	c.Pitch.Engine = strings.ToLower(strings.TrimSpace(c.Pitch.Engine))
	if c.Pitch.Engine == "" {
		c.Pitch.Engine = PitchEngineRubberband
	}
	c.Separation.Engine = strings.ToLower(strings.TrimSpace(c.Separation.Engine))
	if c.Separation.Engine == "" {
		c.Separation.Engine = SeparationEngineSpleeter
	}
	c.Separation.Model = strings.TrimSpace(c.Separation.Model)
	if c.Separation.Model == "" {
		switch c.Separation.Engine {
		case SeparationEngineDemucs:
			c.Separation.Model = defaultDemucsModel
		default:
			c.Separation.Model = defaultSpleeterModel
		}
	}
	if c.Separation.DefaultDurationSeconds == 0 {
		c.Separation.DefaultDurationSeconds = defaultSeparationDurationSecs
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
		return nil
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
