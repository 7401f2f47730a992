package domain

import (
	"time"
)

// TransitionPolicy maps (current status, age) to the next status. It is a
// pure function of its inputs; thresholds come from configuration so the
// policy is testable with arbitrary durations.
type TransitionPolicy struct {
	// ProgressAfter is the age at which a pending request starts.
	ProgressAfter time.Duration
	// CompleteAfter is the age at which an in-progress request finishes.
	CompleteAfter time.Duration
}

// Next returns the status a request of the given status and age should hold
// now. It returns the input status unchanged when no transition is due.
// Terminal statuses never change.
func (p TransitionPolicy) Next(status RequestStatus, age time.Duration) RequestStatus {
	switch status {
	case StatusPending:
		if age >= p.ProgressAfter {
			return StatusInProgress
		}
	case StatusInProgress:
		if age >= p.CompleteAfter {
			return StatusCompleted
		}
	}
	return status
}
