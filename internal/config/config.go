package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Tools contains the executables each backend invokes.
type Tools struct {
	FFmpeg     string `toml:"ffmpeg"`
	FFprobe    string `toml:"ffprobe"`
	Rubberband string `toml:"rubberband"`
	Spleeter   string `toml:"spleeter"`
	Demucs     string `toml:"demucs"`
}

// Pitch selects the pitch-shifting engine.
type Pitch struct {
	// Engine is "rubberband" (standalone CLI) or "ffmpeg" (rubberband audio filter).
	Engine string `toml:"engine"`
}

// Separation contains source separation settings.
type Separation struct {
	// Engine is "spleeter" or "demucs".
	Engine string `toml:"engine"`
	// Model is the pretrained model passed to the engine, e.g. "spleeter:2stems" or "htdemucs".
	Model                  string `toml:"model"`
	DefaultDurationSeconds int    `toml:"default_duration_seconds"`
}

// Transcode contains encoder bitrates in kbit/s.
type Transcode struct {
	BitrateWebM int `toml:"bitrate_webm"`
	BitrateMP3  int `toml:"bitrate_mp3"`
	BitrateAAC  int `toml:"bitrate_aac"`
	Channels    int `toml:"channels"`
}

// History controls the job history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File enables an additional log file under paths.log_dir.
	File bool `toml:"file"`
}

// Timeouts bounds each backend invocation in seconds. Zero disables the limit.
type Timeouts struct {
	PitchSeconds      int `toml:"pitch_seconds"`
	SeparationSeconds int `toml:"separation_seconds"`
	TranscodeSeconds  int `toml:"transcode_seconds"`
}

// Config encapsulates all configuration values for songshift.
//
// Configuration sections by subsystem:
//   - Paths: default output directory, log and state directories
//   - Tools: external executables
//   - Pitch, Separation, Transcode: backend selection and encoder settings
//   - History: SQLite job history
//   - Logging: log format and level
//   - Timeouts: optional per-backend limits
type Config struct {
	Paths      Paths      `toml:"paths"`
	Tools      Tools      `toml:"tools"`
	Pitch      Pitch      `toml:"pitch"`
	Separation Separation `toml:"separation"`
	Transcode  Transcode  `toml:"transcode"`
	History    History    `toml:"history"`
	Logging    Logging    `toml:"logging"`
	Timeouts   Timeouts   `toml:"timeouts"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("songshift.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories. The output
// directory is prepared per job since the CLI can override it.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockDir holds the per-output-directory job locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, lockDirName)
}

// FFmpegBinary returns the ffmpeg executable used for transcoding.
func (c *Config) FFmpegBinary() string {
	return binaryOrDefault(c.Tools.FFmpeg, defaultFFmpegBinary)
}

// FFprobeBinary returns the ffprobe executable used to read track durations.
func (c *Config) FFprobeBinary() string {
	return binaryOrDefault(c.Tools.FFprobe, defaultFFprobeBinary)
}

// RubberbandBinary returns the rubberband executable name.
func (c *Config) RubberbandBinary() string {
	return binaryOrDefault(c.Tools.Rubberband, defaultRubberbandBinary)
}

// SeparatorBinary returns the executable for the configured separation engine.
func (c *Config) SeparatorBinary() string {
	if c.Separation.Engine == SeparationEngineDemucs {
		return binaryOrDefault(c.Tools.Demucs, defaultDemucsBinary)
	}
	return binaryOrDefault(c.Tools.Spleeter, defaultSpleeterBinary)
}

// DefaultDuration is the separation duration hint used when probing fails.
func (c *Config) DefaultDuration() time.Duration {
	return time.Duration(c.Separation.DefaultDurationSeconds) * time.Second
}

// Timeout converts a seconds setting into a duration; zero means no limit.
func Timeout(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func binaryOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
