package main

import (
	"fmt"
	"strings"
	"time"

	"songshift/internal/pipeline"
	"songshift/internal/services"
)

func renderSummary(result pipeline.Result, p printer) string {
	lines := []string{p.title("Job " + result.JobID)}

	outcome := displayLabel(string(result.Outcome))
	if result.Outcome == pipeline.OutcomeFailed {
		outcome = fmt.Sprintf("%s at %s stage", displayLabel(string(result.Kind)), result.Stage)
	}
	lines = append(lines, p.status("Outcome", outcomeTone(result.Outcome), outcome))
	if result.Outcome == pipeline.OutcomeFailed {
		if hint := services.Hint(result.Kind); hint != "" {
			lines = append(lines, p.field("Hint", hint))
		}
	}
	for _, f := range result.StemFailures {
		lines = append(lines, p.status(displayLabel(f.Stem), toneWarn, displayLabel(string(f.Kind))+", kept as wav"))
	}

	if result.OutputDir != "" {
		lines = append(lines, p.field("Output dir", result.OutputDir))
	}
	for _, path := range result.Deliverables {
		lines = append(lines, p.field("Output", path))
	}
	if len(result.Deliverables) == 0 && result.Outcome != pipeline.OutcomeFailed {
		lines = append(lines, p.field("Output", "nothing to write; input already matches the request"))
	}
	if n := len(result.Removed); n > 0 {
		lines = append(lines, p.field("Cleaned up", fmt.Sprintf("%d temporary path(s)", n)))
	}
	for _, ce := range result.CleanupErrors {
		lines = append(lines, p.status("Not removed", toneWarn, fmt.Sprintf("%s: %v", ce.Path, ce.Error)))
	}
	lines = append(lines, p.field("Elapsed", result.Duration().Round(100*time.Millisecond).String()))

	return strings.Join(lines, "\n") + "\n"
}
