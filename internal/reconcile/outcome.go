package reconcile

import (
	"errors"

	"jellyclean/internal/faults"
)

// Status is the result class of one top-level entry.
type Status string

const (
	StatusCleaned   Status = "cleaned"
	StatusUnchanged Status = "unchanged"
	StatusPlanned   Status = "planned"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusIgnored   Status = "ignored"
)

// Outcome is what happened to one top-level entry.
type Outcome struct {
	Path        string
	Kind        string
	Canonical   string
	Target      string
	Status      Status
	Mutations   int
	Subtitles   int
	Removed     int
	TVCandidate bool
	Err         error
}

// ErrorMessage returns the error text or "".
func (o Outcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// statusFor maps an entry error to its status. Name problems skip the entry;
// everything else fails it.
func statusFor(err error) Status {
	if errors.Is(err, faults.ErrFormat) {
		return StatusSkipped
	}
	return StatusFailed
}

// Summary collects the outcomes of a walk in processing order.
type Summary struct {
	Root     string
	DryRun   bool
	Outcomes []Outcome
	// NotProcessed lists entries never started because the walk was cancelled.
	NotProcessed []string
}

// Count returns how many outcomes have status s.
func (s Summary) Count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Mutations totals the changes made across all entries.
func (s Summary) Mutations() int {
	n := 0
	for _, o := range s.Outcomes {
		n += o.Mutations
	}
	return n
}

// HasProblems reports whether any entry was skipped, failed, or never
// processed.
func (s Summary) HasProblems() bool {
	return s.Count(StatusSkipped) > 0 || s.Count(StatusFailed) > 0 || len(s.NotProcessed) > 0
}
