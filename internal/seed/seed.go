// Package seed loads organizations, members, catalog and time entries from
// YAML fixtures into a store.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/repository/sqlstore"
)

// Fixture is the YAML document accepted by Apply
type Fixture struct {
	Organization Organization `yaml:"organization"`
	Teams        []string     `yaml:"teams"`
	Members      []Member     `yaml:"members"`
	Clients      []string     `yaml:"clients"`
	Projects     []Project    `yaml:"projects"`
	Tasks        []Task       `yaml:"tasks"`
	TimeEntries  []TimeEntry  `yaml:"time_entries"`
}

type Organization struct {
	ID       uuid.UUID `yaml:"id"`
	Name     string    `yaml:"name"`
	Timezone string    `yaml:"timezone"`
}

type Member struct {
	UserID uuid.UUID `yaml:"user_id"`
	Name   string    `yaml:"name"`
	Email  string    `yaml:"email"`
	Role   string    `yaml:"role"`
	Teams  []string  `yaml:"teams"`
}

type Project struct {
	Name   string `yaml:"name"`
	Client string `yaml:"client"`
}

type Task struct {
	Name    string `yaml:"name"`
	Project string `yaml:"project"`
}

type TimeEntry struct {
	ID          uuid.UUID `yaml:"id"`
	Email       string    `yaml:"email"`
	Project     string    `yaml:"project"`
	Task        string    `yaml:"task"`
	Description string    `yaml:"description"`
	Start       time.Time `yaml:"start"`
	Minutes     int       `yaml:"minutes"`
	Tags        []string  `yaml:"tags"`
	Billable    bool      `yaml:"billable"`
	Rate        *int64    `yaml:"rate"`
	Approval    string    `yaml:"approval"`
	ApprovedBy  string    `yaml:"approved_by"`
}

// Result holds the ids assigned while applying a fixture
type Result struct {
	OrganizationID uuid.UUID
	Users          map[string]uuid.UUID
	Members        map[string]uuid.UUID
	TimeEntries    []uuid.UUID
}

// Decode reads a fixture from r
func Decode(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.NewValidationError("invalid seed file", err)
	}
	if f.Organization.Name == "" {
		return nil, errors.NewInvalidInputError("organization.name", "", "cannot be empty")
	}
	return &f, nil
}

// LoadFile reads a fixture from path
func LoadFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()
	return Decode(file)
}

// Apply inserts the fixture. Users that already exist are matched by email
// and joined to the new organization.
func Apply(ctx context.Context, repo sqlstore.Repository, f *Fixture) (*Result, error) {
	org := &sqlstore.Organization{ID: f.Organization.ID, Name: f.Organization.Name, Timezone: f.Organization.Timezone}
	if err := repo.CreateOrganization(ctx, org); err != nil {
		return nil, err
	}
	res := &Result{
		OrganizationID: org.ID,
		Users:          make(map[string]uuid.UUID),
		Members:        make(map[string]uuid.UUID),
	}

	teams := make(map[string]uuid.UUID, len(f.Teams))
	for _, name := range f.Teams {
		team := &sqlstore.Team{OrganizationID: org.ID, Name: name}
		if err := repo.CreateTeam(ctx, team); err != nil {
			return nil, err
		}
		teams[name] = team.ID
	}

	for _, m := range f.Members {
		if err := applyMember(ctx, repo, org.ID, m, teams, res); err != nil {
			return nil, err
		}
	}

	clients := make(map[string]uuid.UUID, len(f.Clients))
	for _, name := range f.Clients {
		client := &sqlstore.Client{OrganizationID: org.ID, Name: name}
		if err := repo.CreateClient(ctx, client); err != nil {
			return nil, err
		}
		clients[name] = client.ID
	}

	projects := make(map[string]*sqlstore.Project, len(f.Projects))
	for _, p := range f.Projects {
		project := &sqlstore.Project{OrganizationID: org.ID, Name: p.Name}
		if p.Client != "" {
			id, ok := clients[p.Client]
			if !ok {
				return nil, errors.NewNotFoundError("client", p.Client)
			}
			project.ClientID = uuid.NullUUID{UUID: id, Valid: true}
		}
		if err := repo.CreateProject(ctx, project); err != nil {
			return nil, err
		}
		projects[p.Name] = project
	}

	tasks := make(map[string]uuid.UUID, len(f.Tasks))
	for _, tk := range f.Tasks {
		project, ok := projects[tk.Project]
		if !ok {
			return nil, errors.NewNotFoundError("project", tk.Project)
		}
		task := &sqlstore.Task{OrganizationID: org.ID, ProjectID: project.ID, Name: tk.Name}
		if err := repo.CreateTask(ctx, task); err != nil {
			return nil, err
		}
		tasks[tk.Name] = task.ID
	}

	for i, e := range f.TimeEntries {
		entry, err := buildEntry(org.ID, e, res, projects, tasks)
		if err != nil {
			return nil, fmt.Errorf("time entry %d: %w", i, err)
		}
		if err := repo.CreateTimeEntry(ctx, entry); err != nil {
			return nil, err
		}
		res.TimeEntries = append(res.TimeEntries, entry.ID)
	}

	return res, nil
}

func applyMember(ctx context.Context, repo sqlstore.Repository, orgID uuid.UUID, m Member, teams map[string]uuid.UUID, res *Result) error {
	role, err := domain.ParseRole(m.Role)
	if err != nil {
		return err
	}

	user, err := repo.GetUserByEmail(ctx, m.Email)
	if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		user = &sqlstore.User{ID: m.UserID, Name: m.Name, Email: m.Email}
		err = repo.CreateUser(ctx, user)
	}
	if err != nil {
		return err
	}

	member := &sqlstore.Member{OrganizationID: orgID, UserID: user.ID, Role: string(role)}
	if err := repo.CreateMember(ctx, member); err != nil {
		return err
	}
	for _, name := range m.Teams {
		teamID, ok := teams[name]
		if !ok {
			return errors.NewNotFoundError("team", name)
		}
		if err := repo.AddTeamMember(ctx, teamID, user.ID); err != nil {
			return err
		}
	}

	res.Users[m.Email] = user.ID
	res.Members[m.Email] = member.ID
	return nil
}

func buildEntry(orgID uuid.UUID, e TimeEntry, res *Result, projects map[string]*sqlstore.Project, tasks map[string]uuid.UUID) (*sqlstore.TimeEntry, error) {
	userID, ok := res.Users[e.Email]
	if !ok {
		return nil, errors.NewNotFoundError("member", e.Email)
	}

	approval := domain.ApprovalUnsubmitted
	if e.Approval != "" {
		state, err := domain.ParseApprovalState(e.Approval)
		if err != nil {
			return nil, err
		}
		approval = state
	}

	entry := &sqlstore.TimeEntry{
		ID:             e.ID,
		OrganizationID: orgID,
		UserID:         userID,
		MemberID:       res.Members[e.Email],
		Description:    e.Description,
		StartTime:      e.Start,
		Tags:           e.Tags,
		Billable:       e.Billable,
		Approval:       string(approval),
	}
	if e.Minutes > 0 {
		end := e.Start.Add(time.Duration(e.Minutes) * time.Minute)
		entry.EndTime = &end
	}
	if e.Rate != nil {
		entry.BillableRate = sql.NullInt64{Int64: *e.Rate, Valid: true}
	}
	if e.Project != "" {
		project, ok := projects[e.Project]
		if !ok {
			return nil, errors.NewNotFoundError("project", e.Project)
		}
		entry.ProjectID = uuid.NullUUID{UUID: project.ID, Valid: true}
		entry.ClientID = project.ClientID
	}
	if e.Task != "" {
		id, ok := tasks[e.Task]
		if !ok {
			return nil, errors.NewNotFoundError("task", e.Task)
		}
		entry.TaskID = uuid.NullUUID{UUID: id, Valid: true}
	}
	if e.ApprovedBy != "" {
		id, ok := res.Users[e.ApprovedBy]
		if !ok {
			return nil, errors.NewNotFoundError("member", e.ApprovedBy)
		}
		entry.ApprovedBy = uuid.NullUUID{UUID: id, Valid: true}
	}
	return entry, nil
}
