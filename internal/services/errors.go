package services

import (
	"errors"
	"fmt"
	"strings"
)

// Failure markers. Every error leaving a backend or the pipeline carries
// exactly one of these so callers can classify it with errors.Is.
var (
	ErrInvalidInputFormat  = errors.New("invalid input format")
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrExecutableNotFound  = errors.New("backend executable not found")
	ErrExecutionFailed     = errors.New("backend execution failed")
	ErrUnknown             = errors.New("unknown failure")
)

// FailureKind is the discriminant reported in job results and history rows.
type FailureKind string

const (
	KindNone                FailureKind = ""
	KindInvalidInputFormat  FailureKind = "invalid_input_format"
	KindInvalidOutputFormat FailureKind = "invalid_output_format"
	KindExecutableNotFound  FailureKind = "backend_executable_not_found"
	KindExecutionFailed     FailureKind = "backend_execution_failed"
	KindUnknown             FailureKind = "unknown_failure"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrUnknown
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Marked reports whether err already carries a failure marker.
func Marked(err error) bool {
	return KindOf(err) != KindUnknown || errors.Is(err, ErrUnknown)
}

// KindOf maps an error to its failure kind. Unmarked errors are unknown.
func KindOf(err error) FailureKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidInputFormat):
		return KindInvalidInputFormat
	case errors.Is(err, ErrInvalidOutputFormat):
		return KindInvalidOutputFormat
	case errors.Is(err, ErrExecutableNotFound):
		return KindExecutableNotFound
	case errors.Is(err, ErrExecutionFailed):
		return KindExecutionFailed
	default:
		return KindUnknown
	}
}

// Hint returns a short operator-facing suggestion for a failure kind.
func Hint(kind FailureKind) string {
	switch kind {
	case KindInvalidInputFormat:
		return "check that the input exists and is a decodable audio file"
	case KindInvalidOutputFormat:
		return "use one of wav, mp3, m4a, flac, webm"
	case KindExecutableNotFound:
		return "install the missing tool or set its path under [tools]; run 'songshift check'"
	case KindExecutionFailed:
		return "inspect the tool stderr in the error message; rerun with --debug"
	case KindNone:
		return ""
	default:
		return "rerun with --debug and check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
