package workflow_test

import (
	"testing"

	"songshift/internal/config"
	"songshift/internal/logging"
	"songshift/internal/services/rubberband"
	"songshift/internal/services/separator"
	"songshift/internal/testsupport"
	"songshift/internal/workflow"
)

func TestNewBackendsSelectsEngines(t *testing.T) {
	tests := []struct {
		name       string
		pitch      string
		separation string
		wantFilter bool
	}{
		{"rubberband cli with spleeter", config.PitchEngineRubberband, config.SeparationEngineSpleeter, false},
		{"ffmpeg filter with demucs", config.PitchEngineFFmpeg, config.SeparationEngineDemucs, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithSeparationEngine(tt.separation))
			cfg.Pitch.Engine = tt.pitch

			backends, err := workflow.NewBackends(cfg, logging.NewNop(), nil)
			if err != nil {
				t.Fatalf("NewBackends: %v", err)
			}
			_, isFilter := backends.Pitch.(*rubberband.Filter)
			if isFilter != tt.wantFilter {
				t.Fatalf("pitch backend = %T", backends.Pitch)
			}
			sep, ok := backends.Separator.(*separator.Separator)
			if !ok || sep.Engine() != tt.separation {
				t.Fatalf("separator = %T", backends.Separator)
			}
			if backends.Transcoder == nil || backends.Archiver == nil || backends.Prober == nil {
				t.Fatalf("missing backend: %+v", backends)
			}
		})
	}
}

func TestNewBackendsRejectsUnknownSeparation(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSeparationEngine("umx"))
	if _, err := workflow.NewBackends(cfg, logging.NewNop(), nil); err == nil {
		t.Fatal("expected error")
	}
}
