package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestTeeHandlerFiltersEachHandlerByLevel(t *testing.T) {
	var console, file bytes.Buffer
	infoLevel := new(slog.LevelVar)
	debugLevel := new(slog.LevelVar)
	debugLevel.Set(slog.LevelDebug)

	logger := slog.New(TeeHandler(
		newPrettyHandler(&console, infoLevel, false),
		newJSONHandler(&file, debugLevel, false),
	)).With(String(FieldStage, "split"))

	logger.Debug("duration lookup skipped")
	logger.Info("stage completed")

	if strings.Contains(console.String(), "duration lookup skipped") || !strings.Contains(console.String(), "stage completed") {
		t.Fatalf("console = %q", console.String())
	}
	if !strings.Contains(file.String(), "duration lookup skipped") || !strings.Contains(file.String(), "stage completed") {
		t.Fatalf("file = %q", file.String())
	}
	if !strings.Contains(file.String(), `"stage":"split"`) {
		t.Fatalf("attrs not propagated: %q", file.String())
	}
}

type failingHandler struct{ NoopHandler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestTeeHandlerKeepsWritingAfterError(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	h := TeeHandler(failingHandler{}, newJSONHandler(&buf, lvl, false))

	err := slog.New(h).Handler().Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "job completed", 0))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(buf.String(), "job completed") {
		t.Fatalf("second handler skipped: %q", buf.String())
	}
}

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler().(NoopHandler); !ok {
		t.Fatal("expected noop handler for empty input")
	}
	h := NoopHandler{}
	if got := TeeHandler(nil, h); got != slog.Handler(h) {
		t.Fatal("expected single handler passthrough")
	}
}
