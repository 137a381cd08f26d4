package services_test

import (
	"errors"
	"strings"
	"testing"

	"songshift/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExecutionFailed, "transcode", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExecutionFailed) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcode", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToUnknownMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrUnknown) {
		t.Fatalf("expected unknown marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want services.FailureKind
	}{
		{name: "nil", err: nil, want: services.KindNone},
		{name: "input", err: services.Wrap(services.ErrInvalidInputFormat, "validate", "", "bad", nil), want: services.KindInvalidInputFormat},
		{name: "output", err: services.Wrap(services.ErrInvalidOutputFormat, "validate", "", "bad", nil), want: services.KindInvalidOutputFormat},
		{name: "missing binary", err: services.Wrap(services.ErrExecutableNotFound, "split", "spleeter", "", nil), want: services.KindExecutableNotFound},
		{name: "exit", err: services.Wrap(services.ErrExecutionFailed, "pitch", "rubberband", "", nil), want: services.KindExecutionFailed},
		{name: "plain", err: errors.New("disk full"), want: services.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarked(t *testing.T) {
	if services.Marked(errors.New("plain")) {
		t.Fatal("plain error should not be marked")
	}
	if !services.Marked(services.Wrap(services.ErrUnknown, "archive", "", "", nil)) {
		t.Fatal("explicit unknown marker should count as marked")
	}
	if !services.Marked(services.Wrap(services.ErrExecutionFailed, "archive", "", "", nil)) {
		t.Fatal("execution failure should be marked")
	}
}

func TestHintCoversEveryKind(t *testing.T) {
	for _, kind := range []services.FailureKind{
		services.KindInvalidInputFormat,
		services.KindInvalidOutputFormat,
		services.KindExecutableNotFound,
		services.KindExecutionFailed,
		services.KindUnknown,
	} {
		if services.Hint(kind) == "" {
			t.Fatalf("missing hint for %q", kind)
		}
	}
	if services.Hint(services.KindNone) != "" {
		t.Fatal("expected no hint for success")
	}
}
