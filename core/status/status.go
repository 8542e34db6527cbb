// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status

import (
	"fmt"
	"time"
)

// Status represents the workload status of a unit as reported to the
// host runtime.
type Status string

// String returns a string representation of the Status.
func (s Status) String() string {
	return string(s)
}

const (
	// Active is set when:
	// The unit believes it is correctly offering all the services it has
	// been asked to offer.
	Active Status = "active"

	// Blocked is set when:
	// The unit needs manual intervention to get back to the Running state.
	Blocked Status = "blocked"

	// Waiting is set when:
	// The unit is unable to progress to an active state because an
	// application to which it is related has not provided its data yet.
	Waiting Status = "waiting"

	// Maintenance is set when:
	// The unit is not yet providing services, but is actively doing stuff
	// in preparation for providing those services.
	Maintenance Status = "maintenance"

	// Unknown is set when:
	// The charm has not set a status yet.
	Unknown Status = "unknown"

	// Error means the unit requires human intervention
	// in order to operate correctly.
	Error Status = "error"
)

// StatusInfo holds a Status and associated information.
type StatusInfo struct {
	Status  Status
	Message string
	Since   *time.Time
}

// String returns the status and message in the form the host runtime
// shows them, eg. "waiting: Waiting for controller data".
func (s StatusInfo) String() string {
	if s.Message == "" {
		return s.Status.String()
	}
	return fmt.Sprintf("%s: %s", s.Status, s.Message)
}

// StatusSetter represents a type whose status can be set.
type StatusSetter interface {
	SetStatus(StatusInfo) error
}

// StatusGetter represents a type whose status can be read.
type StatusGetter interface {
	Status() (StatusInfo, error)
}

// ValidWorkloadStatus returns true if status has a valid value (that is to
// say, a value that it's OK to set) for units.
func ValidWorkloadStatus(status Status) bool {
	switch status {
	case
		Active,
		Blocked,
		Maintenance,
		Waiting,
		Unknown:
		return true
	default:
		return false
	}
}

// NewActive returns an active status with the given message.
func NewActive(message string) StatusInfo {
	return StatusInfo{Status: Active, Message: message}
}

// NewBlocked returns a blocked status with the given message.
func NewBlocked(message string) StatusInfo {
	return StatusInfo{Status: Blocked, Message: message}
}

// NewWaiting returns a waiting status with the given message.
func NewWaiting(message string) StatusInfo {
	return StatusInfo{Status: Waiting, Message: message}
}

// NewMaintenance returns a maintenance status with the given message.
func NewMaintenance(message string) StatusInfo {
	return StatusInfo{Status: Maintenance, Message: message}
}
