package pipeline

import (
	"time"

	"songshift/internal/pathplan"
	"songshift/internal/services"
	"songshift/internal/staging"
)

// Stage names used in logs, errors, and job history.
const (
	StageValidate  = "validate"
	StagePitch     = "pitch"
	StageSplit     = "split"
	StageTranscode = "transcode"
	StageArchive   = "archive"
	StageCleanup   = "cleanup"
)

// Request describes one job. It is not modified by Run.
type Request struct {
	AudioPath string
	OutputDir string
	// Semitones is the pitch shift; 0 disables the pitch stage.
	Semitones float64
	Split     bool
	// Format is the transcode target; FormatNone disables transcoding.
	Format pathplan.Format
}

// Outcome is the overall result of a job.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomePartial means the archive was produced but at least one stem
	// could not be transcoded and is archived in its original WAV form.
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// StemFailure records a stem whose transcode failed without aborting the job.
type StemFailure struct {
	Stem string
	Kind services.FailureKind
	Err  error
}

// Result reports what a job did. Err is set only when Outcome is failed.
type Result struct {
	JobID     string
	Request   Request
	OutputDir string
	Outcome   Outcome
	Kind      services.FailureKind
	// Stage is the stage that failed, empty on success.
	Stage         string
	Err           error
	Deliverables  []string
	StemFailures  []StemFailure
	Removed       []string
	CleanupErrors []staging.CleanupError
	Started       time.Time
	Finished      time.Time
}

// Duration is the wall time of the job.
func (r Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// State is the mutable bookkeeping of one job.
type State struct {
	// Current is the most recently produced artifact; starts as the input.
	Current string
	// BaseName is the input file name without extension.
	BaseName string
	// Shifted records whether a pitch shift produced Current.
	Shifted bool
	// StemDir is set once the split stage has produced stems.
	StemDir string
	// Pending is drained unconditionally at cleanup. It only grows.
	Pending staging.PathSet
	// Provisional holds planned deliverables; drained only on failure.
	Provisional  staging.PathSet
	stemFailures []StemFailure
}

// stageEffect is what a stage hands back to Run to apply.
type stageEffect struct {
	current     string
	stemDir     string
	shifted     bool
	schedule    []string
	provisional []string
	stemFailure *StemFailure
}

func (s *State) apply(e stageEffect) {
	if e.current != "" {
		s.Current = e.current
	}
	if e.stemDir != "" {
		s.StemDir = e.stemDir
	}
	if e.shifted {
		s.Shifted = true
	}
	s.Pending.Add(e.schedule...)
	s.Provisional.Add(e.provisional...)
	if e.stemFailure != nil {
		s.stemFailures = append(s.stemFailures, *e.stemFailure)
	}
}

// deliverables are the provisional paths that are not also scheduled for deletion.
func (s *State) deliverables() []string {
	var out []string
	for _, p := range s.Provisional.Paths() {
		if !s.Pending.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}
