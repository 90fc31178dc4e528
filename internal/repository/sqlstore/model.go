package sqlstore

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Organization is a row of the organizations table
type Organization struct {
	ID        uuid.UUID
	Name      string
	Timezone  string
	CreatedAt time.Time
}

// User is a row of the users table
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

// Member links a user to an organization with a role
type Member struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Role           string
	CreatedAt      time.Time
}

// Team is a row of the teams table
type Team struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
}

// Client is a row of the clients table
type Client struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
}

// Project is a row of the projects table
type Project struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ClientID       uuid.NullUUID
	Name           string
}

// Task is a row of the tasks table
type Task struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ProjectID      uuid.UUID
	Name           string
}

// MemberProfile is a member joined with its user and teams
type MemberProfile struct {
	MemberID       uuid.UUID
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Role           string
	Name           string
	Email          string
	Teams          []Team
}

// TimeEntry represents a single time tracking entry
type TimeEntry struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	MemberID       uuid.UUID
	ProjectID      uuid.NullUUID
	TaskID         uuid.NullUUID
	ClientID       uuid.NullUUID
	Description    string
	StartTime      time.Time
	EndTime        *time.Time // nil while running
	Tags           []string
	Billable       bool
	BillableRate   sql.NullInt64
	Approval       string
	ApprovedBy     uuid.NullUUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SearchOptions contains all possible search parameters
type SearchOptions struct {
	OrganizationID *uuid.UUID
	UserID         *uuid.UUID
	MemberID       *uuid.UUID
	IDs            []uuid.UUID
	Approvals      []string
	StartTime      *time.Time
	EndTime        *time.Time
}

// ApprovalChange moves one entry from an expected approval state to another
type ApprovalChange struct {
	ID         uuid.UUID
	From       string
	To         string
	ApprovedBy uuid.NullUUID
}
