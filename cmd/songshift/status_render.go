package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"songshift/internal/pipeline"
)

// tone is the severity a status line is tagged and coloured with.
type tone int

const (
	toneGood tone = iota
	toneWarn
	toneBad
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"

	labelWidth = 14
)

func (t tone) tag() string {
	switch t {
	case toneGood:
		return "[OK]"
	case toneWarn:
		return "[WARN]"
	default:
		return "[ERROR]"
	}
}

func (t tone) color() string {
	switch t {
	case toneGood:
		return "\x1b[32m"
	case toneWarn:
		return "\x1b[33m"
	default:
		return "\x1b[31m"
	}
}

func outcomeTone(outcome pipeline.Outcome) tone {
	switch outcome {
	case pipeline.OutcomeSucceeded:
		return toneGood
	case pipeline.OutcomePartial:
		return toneWarn
	default:
		return toneBad
	}
}

// printer formats the aligned "label: value" lines used by modify, check and
// history show. Colour is applied only when writing to a terminal.
type printer struct {
	color bool
}

func newPrinter(w io.Writer) printer {
	f, ok := w.(*os.File)
	if !ok {
		return printer{}
	}
	fd := f.Fd()
	return printer{color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

func (p printer) title(text string) string {
	if p.color {
		return ansiBold + text + ansiReset
	}
	return text
}

func (p printer) field(label, value string) string {
	return fmt.Sprintf("  %-*s %s", labelWidth, label+":", value)
}

func (p printer) status(label string, t tone, message string) string {
	value := t.tag()
	if message != "" {
		value += " " + message
	}
	line := p.field(label, value)
	if p.color {
		return t.color() + line + ansiReset
	}
	return line
}
