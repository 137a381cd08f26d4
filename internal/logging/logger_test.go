package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"songshift/internal/config"
	"songshift/internal/logging"
	"songshift/internal/services"
)

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "pipeline")
	logger.Info("stage completed", logging.String("stage", "split"), logging.String("path", "/tmp/a b.wav"))

	line := buf.String()
	for _, fragment := range []string{"[INFO]", "pipeline - stage completed", "stage=split", `path="/tmp/a b.wav"`} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with caller")
	if !strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestJSONLoggerRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("job finished", logging.Error(errors.New("boom")), logging.Duration("elapsed", 1500*time.Millisecond))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json: %v (%q)", err, buf.String())
	}
	for _, key := range []string{"ts", "level", "msg"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected key %q in %v", key, payload)
		}
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lower-case level, got %v", payload["level"])
	}
	if payload["error"] != "boom" {
		t.Fatalf("expected error string, got %v", payload["error"])
	}
	if payload["elapsed"] != "1.5s" {
		t.Fatalf("expected readable duration, got %v", payload["elapsed"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.File = true

	logger, err := logging.NewFromConfig(&cfg, true)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug reaches file")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "debug reaches file") {
		t.Fatalf("expected debug line in log file, got %q", content)
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithJobID(context.Background(), "job-1")
	ctx = services.WithStage(ctx, "transcode")

	logging.WithContext(ctx, logger).Info("hello")
	for _, fragment := range []string{"job_id=job-1", "stage=transcode"} {
		if !strings.Contains(buf.String(), fragment) {
			t.Fatalf("expected %q in %q", fragment, buf.String())
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "cleanup incomplete", "cleanup_failed", logging.String(logging.FieldImpact, "temporary files remain"))

	line := buf.String()
	for _, fragment := range []string{"event_type=cleanup_failed", "error_hint=", `impact="temporary files remain"`} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in %q", fragment, line)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.NewComponentLogger(nil, "x").Info("ignored")
}
