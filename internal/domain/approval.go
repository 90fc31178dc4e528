package domain

import "fmt"

// ApprovalState is the workflow status of a time entry.
type ApprovalState string

const (
	ApprovalUnsubmitted ApprovalState = "unsubmitted"
	ApprovalSubmitted   ApprovalState = "submitted"
	ApprovalApproved    ApprovalState = "approved"
	ApprovalRejected    ApprovalState = "rejected"
)

// ApprovalStates lists every state in display order.
var ApprovalStates = []ApprovalState{
	ApprovalUnsubmitted,
	ApprovalSubmitted,
	ApprovalApproved,
	ApprovalRejected,
}

// Valid reports whether s is a known state.
func (s ApprovalState) Valid() bool {
	switch s {
	case ApprovalUnsubmitted, ApprovalSubmitted, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// ParseApprovalState converts a stored value into a state.
// Empty values are treated as unsubmitted, matching rows created before approval existed.
func ParseApprovalState(s string) (ApprovalState, error) {
	if s == "" {
		return ApprovalUnsubmitted, nil
	}
	state := ApprovalState(s)
	if !state.Valid() {
		return "", fmt.Errorf("unknown approval state %q", s)
	}
	return state, nil
}
