package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngines(); err != nil {
		return err
	}
	if err := c.validateTranscode(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngines() error {
	switch c.Pitch.Engine {
	case PitchEngineRubberband, PitchEngineFFmpeg:
	default:
		return fmt.Errorf("pitch.engine must be %q or %q", PitchEngineRubberband, PitchEngineFFmpeg)
	}
	switch c.Separation.Engine {
	case SeparationEngineSpleeter, SeparationEngineDemucs:
	default:
		return fmt.Errorf("separation.engine must be %q or %q", SeparationEngineSpleeter, SeparationEngineDemucs)
	}
	if c.Separation.DefaultDurationSeconds < 0 {
		return errors.New("separation.default_duration_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTranscode() error {
	if c.Transcode.BitrateWebM <= 0 {
		return errors.New("transcode.bitrate_webm must be positive")
	}
	if c.Transcode.BitrateMP3 <= 0 {
		return errors.New("transcode.bitrate_mp3 must be positive")
	}
	if c.Transcode.BitrateAAC <= 0 {
		return errors.New("transcode.bitrate_aac must be positive")
	}
	if c.Transcode.Channels <= 0 {
		return errors.New("transcode.channels must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	if c.Timeouts.PitchSeconds < 0 {
		return errors.New("timeouts.pitch_seconds must be zero or positive")
	}
	if c.Timeouts.SeparationSeconds < 0 {
		return errors.New("timeouts.separation_seconds must be zero or positive")
	}
	if c.Timeouts.TranscodeSeconds < 0 {
		return errors.New("timeouts.transcode_seconds must be zero or positive")
	}
	return nil
}
