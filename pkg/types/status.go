package types

import (
	"errors"
	"strconv"
)

// Status is the workflow code stored in a table's status column. The codes
// are stable across tables even though not every table uses all of them.
type Status int

// Workflow states. A record progresses Open through Deployed; Cancelled and
// Archived are terminal.
const (
	StatusOpen      Status = 1
	StatusOrdered   Status = 2
	StatusDelivered Status = 3
	StatusDeployed  Status = 4
	StatusCancelled Status = 5
	StatusArchived  Status = 6
)

// Status errors.
var (
	ErrInvalidStatus     = errors.New("invalid status value")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// validStatuses is the set of recognized status codes.
var validStatuses = map[Status]bool{
	StatusOpen:      true,
	StatusOrdered:   true,
	StatusDelivered: true,
	StatusDeployed:  true,
	StatusCancelled: true,
	StatusArchived:  true,
}

// Valid reports whether s is a recognized status code.
func (s Status) Valid() bool {
	return validStatuses[s]
}

// Terminal reports whether s is a terminal state. Terminal rows are excluded
// from active-item views by callers.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusArchived
}

// String returns the decimal form stored in table fields.
func (s Status) String() string {
	return strconv.Itoa(int(s))
}

// ParseStatus converts a trimmed field value to a Status.
// Returns ErrInvalidStatus for anything outside the known set.
func ParseStatus(field string) (Status, error) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, ErrInvalidStatus
	}
	s := Status(n)
	if !s.Valid() {
		return 0, ErrInvalidStatus
	}
	return s, nil
}

// TransitionPolicy decides whether a status change is legal for a table.
// Policies receive the current and requested status and return
// ErrInvalidTransition (or a wrapped form of it) to reject the change.
type TransitionPolicy func(from, to Status) error

// AcceptAll permits every transition. This matches the historical behavior
// and is the default for tables without a policy in the schema registry.
func AcceptAll(from, to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// workflowDAG is the strict forward order: each state may advance to the
// next, and any non-terminal state may be cancelled or archived.
var workflowDAG = map[Status][]Status{
	StatusOpen:      {StatusOrdered, StatusCancelled, StatusArchived},
	StatusOrdered:   {StatusDelivered, StatusCancelled, StatusArchived},
	StatusDelivered: {StatusDeployed, StatusCancelled, StatusArchived},
	StatusDeployed:  {StatusArchived},
}

// StrictWorkflow permits only forward transitions plus cancel/archive from
// non-terminal states. Terminal states never leave.
func StrictWorkflow(from, to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if from == to {
		// Idempotent: re-setting the current state succeeds.
		return nil
	}
	for _, next := range workflowDAG[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}
