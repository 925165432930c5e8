package history

import "time"

// Run is the persisted summary of one parse invocation.
type Run struct {
	ID           string    `json:"id"`
	Input        string    `json:"input"`
	Output       string    `json:"output"`
	Policy       string    `json:"policy"`
	Lines        int       `json:"lines"`
	MapRequests  int       `json:"map_requests"`
	SkippedLines int       `json:"skipped_lines"`
	IgnoredLines int       `json:"ignored_lines"`
	Records      int       `json:"records"`
	LongestRun   int       `json:"longest_run"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Duration reports how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
