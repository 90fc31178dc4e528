package cli

import (
	"context"
	"time"

	"timesheet/internal/api"
	"timesheet/internal/domain"
	"timesheet/internal/period"
	"timesheet/internal/services"
	"timesheet/internal/validation"
)

// mockBusinessAPI implements the BusinessAPI interface for testing and
// records the last transition it was asked for
type mockBusinessAPI struct {
	pending *services.PendingTimesheets
	entries []domain.TimeEntry
	sheet   *services.OwnTimesheet
	calc    period.Calculator
	err     error

	lastAction  string
	lastPayload validation.BatchPayload
	lastFrom    *time.Time
	lastTo      *time.Time
}

// newMockBusinessAPI creates a new mock BusinessAPI instance
func newMockBusinessAPI() *mockBusinessAPI {
	return &mockBusinessAPI{
		pending: &services.PendingTimesheets{IsManager: true, Data: services.GroupedTimesheet{}},
	}
}

var _ api.BusinessAPI = (*mockBusinessAPI)(nil)

func (m *mockBusinessAPI) ResolveActor(ctx context.Context, orgID, userID string) (domain.Actor, error) {
	return domain.Actor{Role: domain.RoleManager}, m.err
}

func (m *mockBusinessAPI) Calendar(ctx context.Context, actor domain.Actor) (period.Calculator, error) {
	return m.calc, nil
}

func (m *mockBusinessAPI) CurrentPeriod(ctx context.Context, actor domain.Actor, at time.Time) (*api.PeriodInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	if at.IsZero() {
		at = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	}
	id := m.calc.Of(at)
	from, to := m.calc.RangeOf(id)
	return &api.PeriodInfo{ID: id, Label: m.calc.Label(id), From: from, To: to}, nil
}

func (m *mockBusinessAPI) PendingTimesheets(ctx context.Context, actor domain.Actor) (*services.PendingTimesheets, error) {
	return m.pending, m.err
}

func (m *mockBusinessAPI) ApprovalBoard(ctx context.Context, actor domain.Actor) (*services.ApprovalBoard, error) {
	return &services.ApprovalBoard{}, m.err
}

func (m *mockBusinessAPI) Transition(ctx context.Context, actor domain.Actor, action string, payload validation.BatchPayload) (*services.TransitionResult, error) {
	m.lastAction = action
	m.lastPayload = payload
	if m.err != nil {
		return nil, m.err
	}
	updated := len(payload.IDs)
	if action == api.ActionRemind {
		updated = 0
	}
	return &services.TransitionResult{Action: action, Updated: updated, Notified: 2, Status: "ok", Period: payload.Period}, nil
}

func (m *mockBusinessAPI) ListOwnEntries(ctx context.Context, actor domain.Actor, from, to *time.Time) ([]domain.TimeEntry, error) {
	m.lastFrom, m.lastTo = from, to
	return m.entries, m.err
}

func (m *mockBusinessAPI) OwnTimesheet(ctx context.Context, actor domain.Actor, at time.Time) (*services.OwnTimesheet, error) {
	return m.sheet, m.err
}

func (m *mockBusinessAPI) CreateEntry(ctx context.Context, actor domain.Actor, input services.NewTimeEntry) (*domain.TimeEntry, error) {
	return nil, m.err
}

func (m *mockBusinessAPI) StopEntry(ctx context.Context, actor domain.Actor, id string, end time.Time) (*domain.TimeEntry, error) {
	return nil, m.err
}

func (m *mockBusinessAPI) DeleteEntry(ctx context.Context, actor domain.Actor, id string) error {
	return m.err
}

func (m *mockBusinessAPI) MemberOverview(ctx context.Context, actor domain.Actor, memberID string, from, to time.Time) (*services.MemberOverview, error) {
	return nil, m.err
}

func (m *mockBusinessAPI) DetailedExport(ctx context.Context, actor domain.Actor, periodID string) ([]services.DetailedEntry, *api.PeriodInfo, error) {
	info, err := m.CurrentPeriod(ctx, domain.Actor{}, time.Time{})
	return nil, info, err
}
