package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"songshift/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "songshift")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.History.Path != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.History.Path)
	}
	if cfg.LockDir() != filepath.Join(wantState, "locks") {
		t.Fatalf("unexpected lock dir: %q", cfg.LockDir())
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) || filepath.Base(cfg.Paths.OutputDir) != "output" {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Separation.Model != "spleeter:2stems" {
		t.Fatalf("unexpected separation model: %q", cfg.Separation.Model)
	}
	if cfg.DefaultDuration() != 600*time.Second {
		t.Fatalf("unexpected default duration: %s", cfg.DefaultDuration())
	}
	if cfg.Transcode.BitrateWebM != 160 || cfg.Transcode.BitrateMP3 != 192 || cfg.Transcode.BitrateAAC != 192 {
		t.Fatalf("unexpected bitrates: %+v", cfg.Transcode)
	}
	if cfg.SeparatorBinary() != "spleeter" {
		t.Fatalf("unexpected separator binary: %q", cfg.SeparatorBinary())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "songshift.toml")

	type payload struct {
		Tools struct {
			FFmpeg string `toml:"ffmpeg"`
		} `toml:"tools"`
		Separation struct {
			Engine string `toml:"engine"`
		} `toml:"separation"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Tools.FFmpeg = "/opt/ffmpeg/bin/ffmpeg"
	custom.Separation.Engine = "Demucs"
	custom.Logging.Format = "JSON"
	custom.Logging.Level = " Debug "

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.FFmpegBinary())
	}
	if cfg.Separation.Engine != config.SeparationEngineDemucs {
		t.Fatalf("expected demucs engine, got %q", cfg.Separation.Engine)
	}
	if cfg.Separation.Model != "htdemucs" {
		t.Fatalf("expected demucs default model, got %q", cfg.Separation.Model)
	}
	if cfg.SeparatorBinary() != "demucs" {
		t.Fatalf("unexpected separator binary: %q", cfg.SeparatorBinary())
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	if cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("expected ffprobe default, got %q", cfg.FFprobeBinary())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "pitch engine", body: "[pitch]\nengine = \"soundtouch\"\n", wantErr: "pitch.engine"},
		{name: "separation engine", body: "[separation]\nengine = \"openunmix\"\n", wantErr: "separation.engine"},
		{name: "bitrate", body: "[transcode]\nbitrate_mp3 = -1\n", wantErr: "transcode.bitrate_mp3"},
		{name: "log format", body: "[logging]\nformat = \"xml\"\n", wantErr: "logging.format"},
		{name: "timeout", body: "[timeouts]\ntranscode_seconds = -5\n", wantErr: "timeouts.transcode_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Pitch.Engine != config.PitchEngineRubberband {
		t.Fatalf("unexpected pitch engine: %q", cfg.Pitch.Engine)
	}
}

func TestTimeout(t *testing.T) {
	if config.Timeout(0) != 0 || config.Timeout(-3) != 0 {
		t.Fatal("expected non-positive seconds to disable timeout")
	}
	if config.Timeout(90) != 90*time.Second {
		t.Fatalf("unexpected timeout: %s", config.Timeout(90))
	}
}
