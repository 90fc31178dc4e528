package services

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/repository/sqlstore"
	"timesheet/internal/validation"
)

// timeServiceImpl implements the TimeEntryService interface
type timeServiceImpl struct {
	repo               sqlstore.Repository
	directory          DirectoryService
	mapper             *domain.Mapper
	timeEntryValidator *validation.TimeEntryValidator
}

// NewTimeService creates a new TimeEntryService instance
func NewTimeService(repo sqlstore.Repository, directory DirectoryService, limits validation.Limits) TimeEntryService {
	return &timeServiceImpl{
		repo:               repo,
		directory:          directory,
		mapper:             domain.NewMapper(),
		timeEntryValidator: validation.NewTimeEntryValidatorWithLimits(limits),
	}
}

// Create logs a new unsubmitted entry for the actor. Project, task and client
// references must belong to the actor's organization.
func (t *timeServiceImpl) Create(ctx context.Context, actor domain.Actor, input NewTimeEntry) (*domain.TimeEntry, error) {
	entry := domain.NewTimeEntry(domain.Member{
		ID:             actor.MemberID,
		OrganizationID: actor.OrganizationID,
		UserID:         actor.UserID,
		Role:           actor.Role,
	}, input.Start)
	entry.ProjectID = input.ProjectID
	entry.TaskID = input.TaskID
	entry.ClientID = input.ClientID
	entry.Description = input.Description
	entry.End = input.End
	entry.Tags = validation.NormalizeTags(input.Tags)
	entry.Billable = input.Billable
	entry.BillableRate = input.BillableRate

	if err := t.timeEntryValidator.ValidateTimeEntry(entry); err != nil {
		return nil, err
	}
	if err := t.checkReferences(ctx, actor.OrganizationID, entry); err != nil {
		return nil, err
	}

	row := t.mapper.TimeEntry.ToDatabase(entry)
	if err := t.repo.CreateTimeEntry(ctx, &row); err != nil {
		return nil, err
	}
	created := t.mapper.TimeEntry.FromDatabase(row)
	return &created, nil
}

// ListOwn returns the actor's entries in the organization, optionally bounded
// by start time
func (t *timeServiceImpl) ListOwn(ctx context.Context, actor domain.Actor, from, to *time.Time) ([]domain.TimeEntry, error) {
	opts := domain.SearchOptions{
		OrganizationID: &actor.OrganizationID,
		UserID:         &actor.UserID,
		StartTime:      from,
		EndTime:        to,
	}
	if err := t.timeEntryValidator.ValidateSearchOptions(opts); err != nil {
		return nil, err
	}

	rows, err := t.repo.SearchTimeEntries(ctx, t.mapper.SearchOptions.ToDatabase(opts))
	if err != nil {
		return nil, err
	}
	return t.mapper.TimeEntry.FromDatabaseSlice(rows), nil
}

// Period returns the actor's own entries in the period containing at, grouped
// by local day with daily and period totals. Days without time are left out.
func (t *timeServiceImpl) Period(ctx context.Context, actor domain.Actor, at time.Time) (*OwnTimesheet, error) {
	calc, err := t.directory.Calculator(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	id := calc.Of(at)
	from, to := calc.RangeOf(id)

	entries, err := t.ListOwn(ctx, actor, &from, &to)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start.Before(entries[j].Start) })

	sheet := &OwnTimesheet{
		Period: id,
		Label:  calc.Label(id),
		From:   from,
		To:     to,
		Days:   []DayEntries{},
	}
	for _, e := range entries {
		if !calc.Contains(id, e.Start) {
			continue
		}
		date := e.Start.In(calc.Location()).Format(time.DateOnly)
		if n := len(sheet.Days); n == 0 || sheet.Days[n-1].Date != date {
			sheet.Days = append(sheet.Days, DayEntries{Date: date})
		}
		day := &sheet.Days[len(sheet.Days)-1]
		day.Entries = append(day.Entries, e)
		day.TotalMinutes += e.DurationMinutes()
		sheet.TotalMinutes += e.DurationMinutes()
	}
	for i := range sheet.Days {
		sheet.Days[i].Formatted = t.FormatDuration(time.Duration(sheet.Days[i].TotalMinutes) * time.Minute)
	}
	sheet.Formatted = t.FormatDuration(time.Duration(sheet.TotalMinutes) * time.Minute)
	return sheet, nil
}

// Stop ends a running entry of the actor
func (t *timeServiceImpl) Stop(ctx context.Context, actor domain.Actor, id uuid.UUID, end time.Time) (*domain.TimeEntry, error) {
	entry, err := t.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !entry.IsRunning() {
		return nil, errors.NewConflictError("stop of finished entry", []string{id.String()})
	}

	stopped := entry.Stop(end)
	if err := t.timeEntryValidator.ValidateTimeEntry(stopped); err != nil {
		return nil, err
	}
	row := t.mapper.TimeEntry.ToDatabase(stopped)
	if err := t.repo.UpdateTimeEntry(ctx, &row); err != nil {
		return nil, err
	}
	updated := t.mapper.TimeEntry.FromDatabase(row)
	return &updated, nil
}

// Delete removes an unsubmitted entry of the actor
func (t *timeServiceImpl) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if _, err := t.editable(ctx, actor, id); err != nil {
		return err
	}
	return t.repo.DeleteTimeEntry(ctx, id)
}

// FormatDuration formats a duration as "<H>h <MM>m"
func (t *timeServiceImpl) FormatDuration(duration time.Duration) string {
	return FormatMinutes(int64(duration / time.Minute))
}

// editable loads an entry the actor may still change. Once submitted an entry
// only moves through approval transitions.
func (t *timeServiceImpl) editable(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.TimeEntry, error) {
	row, err := t.repo.GetTimeEntry(ctx, id)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	entry := t.mapper.TimeEntry.FromDatabase(*row)
	if entry.OrganizationID != actor.OrganizationID {
		return domain.TimeEntry{}, errors.NewNotFoundError("time entry", id.String())
	}
	if !actor.Owns(entry) {
		return domain.TimeEntry{}, errors.NewPermissionError("edit", "time entry "+id.String())
	}
	if entry.Approval != domain.ApprovalUnsubmitted {
		return domain.TimeEntry{}, errors.NewConflictError("edit of "+string(entry.Approval)+" entry", []string{id.String()})
	}
	return entry, nil
}

func (t *timeServiceImpl) checkReferences(ctx context.Context, orgID uuid.UUID, entry domain.TimeEntry) error {
	if entry.ProjectID != nil {
		rows, err := t.repo.ListProjects(ctx, orgID)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(rows, func(p *sqlstore.Project) bool { return p.ID == *entry.ProjectID }) {
			return errors.NewNotFoundError("project", entry.ProjectID.String())
		}
	}
	if entry.TaskID != nil {
		rows, err := t.repo.ListTasks(ctx, orgID)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(rows, func(task *sqlstore.Task) bool { return task.ID == *entry.TaskID }) {
			return errors.NewNotFoundError("task", entry.TaskID.String())
		}
	}
	if entry.ClientID != nil {
		rows, err := t.repo.ListClients(ctx, orgID)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(rows, func(c *sqlstore.Client) bool { return c.ID == *entry.ClientID }) {
			return errors.NewNotFoundError("client", entry.ClientID.String())
		}
	}
	return nil
}
