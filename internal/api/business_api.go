package api

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/period"
	"timesheet/internal/services"
	"timesheet/internal/validation"
	"timesheet/internal/workflow"
)

// ActionRemind is accepted by Transition next to the workflow actions
const ActionRemind = "remind"

// PeriodInfo describes one half-month period in the organization's timezone
type PeriodInfo struct {
	ID    period.ID `json:"id"`
	Label string    `json:"label"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}

// BusinessAPI defines the operations exposed to transports. Every call after
// ResolveActor takes the actor explicitly.
type BusinessAPI interface {
	// ========== Identity ==========

	// ResolveActor loads the caller's membership in an organization
	ResolveActor(ctx context.Context, orgID, userID string) (domain.Actor, error)

	// Calendar returns the period calculator in the actor's organization
	// timezone, used by transports to read bare dates as local days
	Calendar(ctx context.Context, actor domain.Actor) (period.Calculator, error)

	// CurrentPeriod returns the period containing at, or now when at is zero
	CurrentPeriod(ctx context.Context, actor domain.Actor, at time.Time) (*PeriodInfo, error)

	// ========== Approval Workflows ==========

	// PendingTimesheets returns submitted time the actor may review
	PendingTimesheets(ctx context.Context, actor domain.Actor) (*services.PendingTimesheets, error)

	// ApprovalBoard returns visible time split by approval state
	ApprovalBoard(ctx context.Context, actor domain.Actor) (*services.ApprovalBoard, error)

	// Transition applies action ("submit", "unsubmit", "approve", "reject",
	// "withdraw" or "remind") to a batch payload
	Transition(ctx context.Context, actor domain.Actor, action string, payload validation.BatchPayload) (*services.TransitionResult, error)

	// ========== Own Time ==========

	// ListOwnEntries returns the actor's entries starting inside [from, to]
	ListOwnEntries(ctx context.Context, actor domain.Actor, from, to *time.Time) ([]domain.TimeEntry, error)

	// OwnTimesheet returns the actor's entries in the period containing at,
	// grouped by day. A zero at means now.
	OwnTimesheet(ctx context.Context, actor domain.Actor, at time.Time) (*services.OwnTimesheet, error)

	// CreateEntry logs time for the actor
	CreateEntry(ctx context.Context, actor domain.Actor, input services.NewTimeEntry) (*domain.TimeEntry, error)

	// StopEntry ends a running entry at end, or now when end is zero
	StopEntry(ctx context.Context, actor domain.Actor, id string, end time.Time) (*domain.TimeEntry, error)

	// DeleteEntry removes an unsubmitted entry
	DeleteEntry(ctx context.Context, actor domain.Actor, id string) error

	// ========== Reporting ==========

	// MemberOverview returns a member's time over a date range
	MemberOverview(ctx context.Context, actor domain.Actor, memberID string, from, to time.Time) (*services.MemberOverview, error)

	// DetailedExport resolves the entries of a period for export. An empty
	// period id means the current period.
	DetailedExport(ctx context.Context, actor domain.Actor, periodID string) ([]services.DetailedEntry, *PeriodInfo, error)
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	services       *services.ServiceContainer
	batchValidator *validation.BatchValidator
	now            func() time.Time
}

// NewBusinessAPI creates a new BusinessAPI instance
func NewBusinessAPI(container *services.ServiceContainer, limits validation.Limits) BusinessAPI {
	return &businessAPIImpl{
		services:       container,
		batchValidator: validation.NewBatchValidator(limits),
		now:            time.Now,
	}
}

// ========== Identity ==========

func (b *businessAPIImpl) ResolveActor(ctx context.Context, orgID, userID string) (domain.Actor, error) {
	org, err := parseID("organization", orgID)
	if err != nil {
		return domain.Actor{}, err
	}
	user, err := parseID("user", userID)
	if err != nil {
		return domain.Actor{}, err
	}
	return b.services.Directory.ResolveActor(ctx, org, user)
}

func (b *businessAPIImpl) Calendar(ctx context.Context, actor domain.Actor) (period.Calculator, error) {
	return b.services.Directory.Calculator(ctx, actor.OrganizationID)
}

func (b *businessAPIImpl) CurrentPeriod(ctx context.Context, actor domain.Actor, at time.Time) (*PeriodInfo, error) {
	calc, err := b.services.Directory.Calculator(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = b.now()
	}
	return describe(calc, calc.Of(at)), nil
}

// ========== Approval Workflows ==========

func (b *businessAPIImpl) PendingTimesheets(ctx context.Context, actor domain.Actor) (*services.PendingTimesheets, error) {
	return b.services.Approval.Pending(ctx, actor)
}

func (b *businessAPIImpl) ApprovalBoard(ctx context.Context, actor domain.Actor) (*services.ApprovalBoard, error) {
	return b.services.Approval.Board(ctx, actor)
}

func (b *businessAPIImpl) Transition(ctx context.Context, actor domain.Actor, action string, payload validation.BatchPayload) (*services.TransitionResult, error) {
	// 1. Resolve the action before touching the payload
	remind := strings.EqualFold(strings.TrimSpace(action), ActionRemind)
	var wfAction workflow.Action
	if !remind {
		parsed, err := workflow.ParseAction(action)
		if err != nil {
			return nil, err
		}
		wfAction = parsed
	}

	// 2. Validate ids and optional period
	batch, err := b.batchValidator.Validate(payload)
	if err != nil {
		return nil, err
	}

	// 3. Dispatch
	req := services.TransitionRequest{Action: wfAction, IDs: batch.IDs, Period: batch.Period}
	if remind {
		return b.services.Approval.Remind(ctx, actor, req)
	}
	return b.services.Approval.Transition(ctx, actor, req)
}

// ========== Own Time ==========

func (b *businessAPIImpl) ListOwnEntries(ctx context.Context, actor domain.Actor, from, to *time.Time) ([]domain.TimeEntry, error) {
	return b.services.TimeEntries.ListOwn(ctx, actor, from, to)
}

func (b *businessAPIImpl) OwnTimesheet(ctx context.Context, actor domain.Actor, at time.Time) (*services.OwnTimesheet, error) {
	if at.IsZero() {
		at = b.now()
	}
	return b.services.TimeEntries.Period(ctx, actor, at)
}

func (b *businessAPIImpl) CreateEntry(ctx context.Context, actor domain.Actor, input services.NewTimeEntry) (*domain.TimeEntry, error) {
	if input.Start.IsZero() {
		input.Start = b.now()
	}
	return b.services.TimeEntries.Create(ctx, actor, input)
}

func (b *businessAPIImpl) StopEntry(ctx context.Context, actor domain.Actor, id string, end time.Time) (*domain.TimeEntry, error) {
	entryID, err := parseID("time entry", id)
	if err != nil {
		return nil, err
	}
	if end.IsZero() {
		end = b.now()
	}
	return b.services.TimeEntries.Stop(ctx, actor, entryID, end)
}

func (b *businessAPIImpl) DeleteEntry(ctx context.Context, actor domain.Actor, id string) error {
	entryID, err := parseID("time entry", id)
	if err != nil {
		return err
	}
	return b.services.TimeEntries.Delete(ctx, actor, entryID)
}

// ========== Reporting ==========

func (b *businessAPIImpl) MemberOverview(ctx context.Context, actor domain.Actor, memberID string, from, to time.Time) (*services.MemberOverview, error) {
	member, err := parseID("member", memberID)
	if err != nil {
		return nil, err
	}
	return b.services.Reporting.Overview(ctx, actor, member, from, to)
}

func (b *businessAPIImpl) DetailedExport(ctx context.Context, actor domain.Actor, periodID string) ([]services.DetailedEntry, *PeriodInfo, error) {
	calc, err := b.services.Directory.Calculator(ctx, actor.OrganizationID)
	if err != nil {
		return nil, nil, err
	}

	id := calc.Of(b.now())
	if periodID != "" {
		id, err = period.Parse(periodID)
		if err != nil {
			return nil, nil, err
		}
	}

	entries, err := b.services.Reporting.Detailed(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	return entries, describe(calc, id), nil
}

func describe(calc period.Calculator, id period.ID) *PeriodInfo {
	from, to := calc.RangeOf(id)
	return &PeriodInfo{ID: id, Label: calc.Label(id), From: from, To: to}
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, errors.NewInvalidInputError(field+" id", raw, "not a valid uuid")
	}
	return id, nil
}
