package batch

import "rigprep/internal/history"

// JobResult is the outcome of one job.
type JobResult struct {
	JobID        string
	Base         string
	Output       string
	Status       history.Status
	Tracks       int
	SkippedClips int
	Err          error
}

// Summary tallies a batch run.
type Summary struct {
	RunID   string
	Results []JobResult
}

// Counts returns the per-status totals.
func (s *Summary) Counts() (succeeded, succeededWithSkips, failed int) {
	for _, r := range s.Results {
		switch r.Status {
		case history.StatusSucceeded:
			succeeded++
		case history.StatusSucceededWithSkips:
			succeededWithSkips++
		case history.StatusFailed:
			failed++
		}
	}
	return succeeded, succeededWithSkips, failed
}

// Failed reports whether any job failed outright.
func (s *Summary) Failed() bool {
	_, _, failed := s.Counts()
	return failed > 0
}
