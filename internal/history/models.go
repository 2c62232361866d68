package history

import "time"

// Status classifies the outcome of a run or a single job.
type Status string

const (
	// StatusSucceeded means every requested clip was merged.
	StatusSucceeded Status = "succeeded"
	// StatusSucceededWithSkips means output was produced but one or more
	// clips were skipped.
	StatusSucceededWithSkips Status = "succeeded_with_skips"
	// StatusFailed means no output was produced.
	StatusFailed Status = "failed"
)

// Run is one batch invocation.
type Run struct {
	ID                 string
	StartedAt          time.Time
	FinishedAt         time.Time
	Jobs               int
	Succeeded          int
	SucceededWithSkips int
	Failed             int
}

// Job is the recorded outcome of one rig job within a run.
type Job struct {
	RunID        string
	JobID        string
	Base         string
	Output       string
	Status       Status
	Tracks       int
	SkippedClips int
	Error        string
	FinishedAt   time.Time
}
