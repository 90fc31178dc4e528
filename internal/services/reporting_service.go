package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/period"
	"timesheet/internal/policy"
	"timesheet/internal/repository/sqlstore"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	repo      sqlstore.Repository
	directory DirectoryService
	matrix    policy.Matrix
	mapper    *domain.Mapper
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(repo sqlstore.Repository, directory DirectoryService, matrix policy.Matrix) ReportingService {
	return &reportingServiceImpl{
		repo:      repo,
		directory: directory,
		matrix:    matrix,
		mapper:    domain.NewMapper(),
	}
}

// Overview lists a member's entries that start within [from, to]. The actor
// must be the member or be allowed to see them.
func (r *reportingServiceImpl) Overview(ctx context.Context, actor domain.Actor, memberID uuid.UUID, from, to time.Time) (*MemberOverview, error) {
	if to.Before(from) {
		return nil, errors.NewInvalidInputError("date_end", to, "must not be before date_start")
	}

	row, err := r.repo.GetProfileByMember(ctx, actor.OrganizationID, memberID)
	if err != nil {
		return nil, err
	}
	profile := r.mapper.Profile.FromDatabase(*row)
	if profile.UserID != actor.UserID && !r.matrix.CanSee(actor, profile) {
		return nil, errors.NewPermissionError("overview", "member "+memberID.String())
	}

	calc, err := r.directory.Calculator(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	opts := domain.SearchOptions{
		OrganizationID: &actor.OrganizationID,
		UserID:         &profile.UserID,
		StartTime:      &from,
		EndTime:        &to,
	}
	rows, err := r.repo.SearchTimeEntries(ctx, r.mapper.SearchOptions.ToDatabase(opts))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.NewNotFoundError("time entries", "member "+memberID.String()+" in range")
	}

	overview := &MemberOverview{
		MemberID: memberID,
		Name:     profile.Name,
		Email:    profile.Email,
		From:     from,
		To:       to,
		Periods:  calc.Between(from, to),
		Entries:  make([]OverviewEntry, 0, len(rows)),
	}
	for _, e := range r.mapper.TimeEntry.FromDatabaseSlice(rows) {
		minutes := e.DurationMinutes()
		overview.TotalMinutes += minutes
		overview.Entries = append(overview.Entries, OverviewEntry{
			Entry:     e,
			Period:    calc.Of(e.Start),
			Minutes:   minutes,
			Formatted: FormatMinutes(minutes),
		})
	}
	overview.Formatted = FormatMinutes(overview.TotalMinutes)
	return overview, nil
}

// Detailed returns every entry of the period the actor may see, resolved with
// project, client, task and user names. Employees and interns only get their
// own time.
func (r *reportingServiceImpl) Detailed(ctx context.Context, actor domain.Actor, id period.ID) ([]DetailedEntry, error) {
	org, err := r.directory.Organization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	calc, err := r.directory.Calculator(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	profiles, err := r.directory.Profiles(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	from, to := calc.RangeOf(id)
	opts := domain.SearchOptions{
		OrganizationID: &actor.OrganizationID,
		StartTime:      &from,
		EndTime:        &to,
	}
	rows, err := r.repo.SearchTimeEntries(ctx, r.mapper.SearchOptions.ToDatabase(opts))
	if err != nil {
		return nil, err
	}

	names, err := r.catalogNames(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	visible := r.matrix.VisibleUsers(actor, profiles)
	byUser := make(map[uuid.UUID]domain.Profile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}

	detailed := make([]DetailedEntry, 0, len(rows))
	for _, e := range r.mapper.TimeEntry.FromDatabaseSlice(rows) {
		if e.UserID != actor.UserID && !visible[e.UserID] {
			continue
		}
		owner := byUser[e.UserID]
		d := DetailedEntry{
			Entry:        e,
			UserName:     owner.Name,
			UserEmail:    owner.Email,
			Organization: org.Name,
		}
		if e.ProjectID != nil {
			d.Project = names.projects[*e.ProjectID]
		}
		if e.TaskID != nil {
			d.Task = names.tasks[*e.TaskID]
		}
		clientID := e.ClientID
		if clientID == nil && e.ProjectID != nil {
			clientID = names.projectClient[*e.ProjectID]
		}
		if clientID != nil {
			d.Client = names.clients[*clientID]
		}
		detailed = append(detailed, d)
	}
	return detailed, nil
}

type catalogNames struct {
	projects      map[uuid.UUID]string
	projectClient map[uuid.UUID]*uuid.UUID
	clients       map[uuid.UUID]string
	tasks         map[uuid.UUID]string
}

func (r *reportingServiceImpl) catalogNames(ctx context.Context, orgID uuid.UUID) (*catalogNames, error) {
	projects, err := r.repo.ListProjects(ctx, orgID)
	if err != nil {
		return nil, err
	}
	clients, err := r.repo.ListClients(ctx, orgID)
	if err != nil {
		return nil, err
	}
	tasks, err := r.repo.ListTasks(ctx, orgID)
	if err != nil {
		return nil, err
	}

	names := &catalogNames{
		projects:      make(map[uuid.UUID]string, len(projects)),
		projectClient: make(map[uuid.UUID]*uuid.UUID, len(projects)),
		clients:       make(map[uuid.UUID]string, len(clients)),
		tasks:         make(map[uuid.UUID]string, len(tasks)),
	}
	for _, p := range r.mapper.Organization.ProjectsFromDatabase(projects) {
		names.projects[p.ID] = p.Name
		names.projectClient[p.ID] = p.ClientID
	}
	for _, c := range r.mapper.Organization.ClientsFromDatabase(clients) {
		names.clients[c.ID] = c.Name
	}
	for _, t := range r.mapper.Organization.TasksFromDatabase(tasks) {
		names.tasks[t.ID] = t.Name
	}
	return names, nil
}
