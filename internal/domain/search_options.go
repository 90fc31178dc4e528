package domain

import (
	"time"

	"github.com/google/uuid"
)

// SearchOptions represents search criteria for time entries.
// Empty fields do not filter.
type SearchOptions struct {
	OrganizationID *uuid.UUID
	UserID         *uuid.UUID
	MemberID       *uuid.UUID
	IDs            []uuid.UUID
	Approvals      []ApprovalState
	StartTime      *time.Time
	EndTime        *time.Time
}
