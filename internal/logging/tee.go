package logging

import (
	"context"
	"errors"
	"log/slog"
)

// tee sends each record to every handler that accepts its level. songshift
// uses it to mirror console output into the JSON log file.
type tee []slog.Handler

// TeeHandler combines handlers, dropping nils. A single handler is returned
// unchanged and none yields a NoopHandler.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	var t tee
	for _, h := range handlers {
		if h != nil {
			t = append(t, h)
		}
	}
	switch len(t) {
	case 0:
		return NoopHandler{}
	case 1:
		return t[0]
	}
	return t
}

func (t tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t tee) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t tee) each(fn func(slog.Handler) slog.Handler) tee {
	next := make(tee, len(t))
	for i, h := range t {
		next[i] = fn(h)
	}
	return next
}
