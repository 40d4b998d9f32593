package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle position of a tax case.
type Status string

const (
	StatusIntake        Status = "INTAKE"
	StatusWaitingDocs   Status = "WAITING_DOCS"
	StatusInProgress    Status = "IN_PROGRESS"
	StatusReadyForEntry Status = "READY_FOR_ENTRY"
	StatusEntryComplete Status = "ENTRY_COMPLETE"
	StatusReview        Status = "REVIEW"
	StatusFiled         Status = "FILED"
)

// transitions is the explicit adjacency table. The workflow is linear in
// intent, with one skip edge for cases that arrive with documents in hand.
var transitions = map[Status][]Status{
	StatusIntake:        {StatusWaitingDocs, StatusInProgress},
	StatusWaitingDocs:   {StatusInProgress},
	StatusInProgress:    {StatusReadyForEntry},
	StatusReadyForEntry: {StatusEntryComplete},
	StatusEntryComplete: {StatusReview},
	StatusReview:        {StatusFiled},
	StatusFiled:         {},
}

// ValidStatus reports whether s is one of the seven workflow statuses.
func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// ParseStatus normalizes raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !ValidStatus(s) {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// IsValidTransition reports whether from may move to to. A status is never a
// transition target of itself.
func IsValidTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextValidStatuses returns the statuses a case in from may move to. The
// current status leads the list as the no-op option.
func NextValidStatuses(from Status) []Status {
	next := transitions[from]
	out := make([]Status, 0, len(next)+1)
	out = append(out, from)
	out = append(out, next...)
	return out
}

// InvalidTransitionError reports a rejected status change with enough
// context for the caller to render the legal choices.
type InvalidTransitionError struct {
	Current Status
	Target  Status
	Allowed []Status
}

func NewInvalidTransitionError(current, target Status) *InvalidTransitionError {
	allowed := make([]Status, len(transitions[current]))
	copy(allowed, transitions[current])
	return &InvalidTransitionError{
		Current: current,
		Target:  target,
		Allowed: allowed,
	}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.Current, e.Target)
}
