package history

import "time"

// Entry is one recorded job.
type Entry struct {
	ID           int64
	JobID        string
	AudioPath    string
	OutputDir    string
	Semitones    float64
	Split        bool
	Format       string
	Outcome      string
	FailureKind  string
	FailedStage  string
	ErrorMessage string
	Deliverables []string
	// StemFailures are the stems archived untranscoded, keyed by stem name
	// with the failure kind as value.
	StemFailures      map[string]string
	RemovedCount      int
	CleanupErrorCount int
	StartedAt         time.Time
	FinishedAt        time.Time
}

// Duration is the wall time of the job.
func (e Entry) Duration() time.Duration {
	if e.StartedAt.IsZero() || e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// Failed reports whether the job produced no deliverable.
func (e Entry) Failed() bool {
	return e.Outcome == OutcomeFailed
}

// Outcome values as written by the pipeline.
const (
	OutcomeSucceeded = "succeeded"
	OutcomePartial   = "partial"
	OutcomeFailed    = "failed"
)

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Outcome string
	Limit   int
}
