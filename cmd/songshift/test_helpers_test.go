package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"songshift/internal/config"
	"songshift/internal/testsupport"
)

// writeLastArgScript writes the last argument as a file, which is where
// ffmpeg and rubberband put their output.
const writeLastArgScript = "#!/bin/sh\nfor arg; do last=\"$arg\"; done\nprintf 'audio' > \"$last\"\n"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	input      string
}

func setupCLITestEnv(t *testing.T, mutate ...func(*config.Config)) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	binDir := filepath.Join(base, "bin")
	for _, name := range []string{"ffmpeg", "rubberband"} {
		writeScript(t, filepath.Join(binDir, name), writeLastArgScript)
	}
	cfg.Tools.FFmpeg = filepath.Join(binDir, "ffmpeg")
	cfg.Tools.Rubberband = filepath.Join(binDir, "rubberband")
	cfg.Tools.FFprobe = filepath.Join(binDir, "ffprobe-missing")
	for _, fn := range mutate {
		fn(cfg)
	}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	input := filepath.Join(base, "music", "song.wav")
	testsupport.WriteFile(t, input, 128)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base, input: input}
}

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string, opts ...rootOption) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts...)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q, got:\n%s", substr, output)
	}
}
