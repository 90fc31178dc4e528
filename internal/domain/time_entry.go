package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntry represents a tracked interval of work in the domain model.
type TimeEntry struct {
	ID             uuid.UUID     `json:"id"`
	OrganizationID uuid.UUID     `json:"organization_id"`
	UserID         uuid.UUID     `json:"user_id"`
	MemberID       uuid.UUID     `json:"member_id"`
	ProjectID      *uuid.UUID    `json:"project_id"`
	TaskID         *uuid.UUID    `json:"task_id"`
	ClientID       *uuid.UUID    `json:"client_id"`
	Description    string        `json:"description"`
	Start          time.Time     `json:"start"`
	End            *time.Time    `json:"end"`
	Tags           []string      `json:"tags"`
	Billable       bool          `json:"billable"`
	BillableRate   *int64        `json:"billable_rate"`
	Approval       ApprovalState `json:"approval"`
	ApprovedBy     *uuid.UUID    `json:"approved_by"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// NewTimeEntry creates a running, unsubmitted entry for a member.
func NewTimeEntry(member Member, start time.Time) TimeEntry {
	return TimeEntry{
		ID:             uuid.New(),
		OrganizationID: member.OrganizationID,
		UserID:         member.UserID,
		MemberID:       member.ID,
		Start:          start,
		Approval:       ApprovalUnsubmitted,
	}
}

// IsRunning returns true if the time entry has no end yet.
func (te TimeEntry) IsRunning() bool {
	return te.End == nil
}

// Stop sets the end time for the time entry.
func (te TimeEntry) Stop(end time.Time) TimeEntry {
	te.End = &end
	return te
}

// Duration returns the tracked duration, zero while the entry is running.
func (te TimeEntry) Duration() time.Duration {
	if te.End == nil || te.End.Before(te.Start) {
		return 0
	}
	return te.End.Sub(te.Start)
}

// DurationMinutes returns the tracked duration in whole minutes, floored.
func (te TimeEntry) DurationMinutes() int64 {
	return int64(te.Duration() / time.Minute)
}
