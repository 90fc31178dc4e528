package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"timesheet/internal/domain"
	"timesheet/internal/period"
	"timesheet/internal/workflow"
)

// Summary is one user's tracked time within one period
type Summary struct {
	UserID       uuid.UUID `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	TotalMinutes int64     `json:"total_minutes"`
	Formatted    string    `json:"formatted"`
}

// Timesheet partitions tracked minutes by period and then by user
type Timesheet map[period.ID]map[uuid.UUID]Summary

// GroupMember identifies the membership behind a grouped row
type GroupMember struct {
	ID uuid.UUID `json:"id"`
}

// GroupUser is the user block of a grouped row
type GroupUser struct {
	ID     uuid.UUID    `json:"id"`
	Name   string       `json:"name"`
	Groups []string     `json:"groups"`
	Member *GroupMember `json:"member"`
}

// GroupRow is one user's total for a period in the external shape
type GroupRow struct {
	User       GroupUser `json:"user"`
	TotalHours string    `json:"totalHours"`
}

// GroupedTimesheet maps period ids to ordered rows
type GroupedTimesheet map[period.ID][]GroupRow

// PendingTimesheets is the reviewer's queue of submitted time
type PendingTimesheets struct {
	IsManager bool             `json:"isManager"`
	Remain    int              `json:"remain"`
	Data      GroupedTimesheet `json:"data"`
}

// ApprovalBoard splits visible time by approval state
type ApprovalBoard struct {
	Submitted   GroupedTimesheet `json:"submitted"`
	Unsubmitted GroupedTimesheet `json:"unsubmitted"`
	Approved    GroupedTimesheet `json:"approved"`
	Rejected    GroupedTimesheet `json:"rejected"`
}

// TransitionRequest names a batch of entries and the action to apply.
// Period only labels the notification; when nil the label is derived from the entries.
type TransitionRequest struct {
	Action workflow.Action
	IDs    []uuid.UUID
	Period *period.ID
}

// TransitionResult reports what a batch transition or reminder did
type TransitionResult struct {
	Action   string   `json:"action"`
	Updated  int      `json:"updated"`
	Notified int      `json:"notified"`
	Status   string   `json:"status"`
	Period   string   `json:"period,omitempty"`
	IDs      []string `json:"ids,omitempty"`
}

// OverviewEntry is one entry in a member overview
type OverviewEntry struct {
	Entry     domain.TimeEntry `json:"entry"`
	Period    period.ID        `json:"period"`
	Minutes   int64            `json:"minutes"`
	Formatted string           `json:"formatted"`
}

// MemberOverview lists a member's time over a date range
type MemberOverview struct {
	MemberID     uuid.UUID       `json:"member_id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Periods      []period.ID     `json:"periods"`
	Entries      []OverviewEntry `json:"entries"`
	TotalMinutes int64           `json:"total_minutes"`
	Formatted    string          `json:"formatted"`
}

// DayEntries is one local day of a member's own timesheet
type DayEntries struct {
	Date         string             `json:"date"`
	Entries      []domain.TimeEntry `json:"entries"`
	TotalMinutes int64              `json:"total_minutes"`
	Formatted    string             `json:"formatted"`
}

// OwnTimesheet is the actor's time in one period, grouped by local day
type OwnTimesheet struct {
	Period       period.ID    `json:"period"`
	Label        string       `json:"label"`
	From         time.Time    `json:"from"`
	To           time.Time    `json:"to"`
	Days         []DayEntries `json:"days"`
	TotalMinutes int64        `json:"total_minutes"`
	Formatted    string       `json:"formatted"`
}

// DetailedEntry is an entry resolved with the names an export needs
type DetailedEntry struct {
	Entry        domain.TimeEntry
	Project      string
	Client       string
	Task         string
	UserName     string
	UserEmail    string
	Organization string
}

// NewTimeEntry carries the fields a member may set when logging time
type NewTimeEntry struct {
	ProjectID    *uuid.UUID
	TaskID       *uuid.UUID
	ClientID     *uuid.UUID
	Description  string
	Start        time.Time
	End          *time.Time
	Tags         []string
	Billable     bool
	BillableRate *int64
}

// DirectoryService resolves organizations, members and actors
type DirectoryService interface {
	ResolveActor(ctx context.Context, orgID, userID uuid.UUID) (domain.Actor, error)
	Organization(ctx context.Context, orgID uuid.UUID) (domain.Organization, error)
	Profiles(ctx context.Context, orgID uuid.UUID) ([]domain.Profile, error)
	Calculator(ctx context.Context, orgID uuid.UUID) (period.Calculator, error)
}

// AggregationService partitions entries into period timesheets
type AggregationService interface {
	Aggregate(entries []domain.TimeEntry, people []domain.Profile) Timesheet
	Group(entries []domain.TimeEntry, people []domain.Profile) GroupedTimesheet
	Board(entries []domain.TimeEntry, people []domain.Profile) *ApprovalBoard
}

// ApprovalService runs the approval workflow
type ApprovalService interface {
	Transition(ctx context.Context, actor domain.Actor, req TransitionRequest) (*TransitionResult, error)
	Remind(ctx context.Context, actor domain.Actor, req TransitionRequest) (*TransitionResult, error)
	Pending(ctx context.Context, actor domain.Actor) (*PendingTimesheets, error)
	Board(ctx context.Context, actor domain.Actor) (*ApprovalBoard, error)
}

// TimeEntryService handles a member's own time
type TimeEntryService interface {
	Create(ctx context.Context, actor domain.Actor, input NewTimeEntry) (*domain.TimeEntry, error)
	ListOwn(ctx context.Context, actor domain.Actor, from, to *time.Time) ([]domain.TimeEntry, error)
	Stop(ctx context.Context, actor domain.Actor, id uuid.UUID, end time.Time) (*domain.TimeEntry, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	Period(ctx context.Context, actor domain.Actor, at time.Time) (*OwnTimesheet, error)
	FormatDuration(d time.Duration) string
}

// ReportingService builds read-only views over visible time
type ReportingService interface {
	Overview(ctx context.Context, actor domain.Actor, memberID uuid.UUID, from, to time.Time) (*MemberOverview, error)
	Detailed(ctx context.Context, actor domain.Actor, id period.ID) ([]DetailedEntry, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	Directory   DirectoryService
	Approval    ApprovalService
	TimeEntries TimeEntryService
	Reporting   ReportingService
}
