package domain

import (
	"time"
)

// RequestStatus is the lifecycle state of a service request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

// IsValid checks if the status is a known request status.
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are permitted.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Label returns the human-readable form used in notifications.
func (s RequestStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// ServiceRequest is a unit of work paid for with credits. Status only moves
// forward: pending -> in_progress -> completed via the sweeper, or
// pending -> cancelled via an interactive cancel. Requests are never
// deleted; terminal statuses end the lifecycle.
type ServiceRequest struct {
	ID          string
	AccountID   string
	ServiceType string
	Title       string
	Description string
	Status      RequestStatus
	CreatedAt   time.Time
}

// Age returns the elapsed time since creation. Both sides are normalized to
// UTC so naive timestamps read back from storage compare correctly.
func (r *ServiceRequest) Age(now time.Time) time.Duration {
	return now.UTC().Sub(r.CreatedAt.UTC())
}
