package domain

import (
	"database/sql"

	"github.com/google/uuid"

	"timesheet/internal/repository/sqlstore"
)

// TimeEntryMapper handles conversion between domain and database TimeEntry models.
type TimeEntryMapper struct{}

// NewTimeEntryMapper creates a new TimeEntryMapper instance.
func NewTimeEntryMapper() *TimeEntryMapper {
	return &TimeEntryMapper{}
}

// ToDatabase converts a domain TimeEntry to a database TimeEntry.
func (m *TimeEntryMapper) ToDatabase(e TimeEntry) sqlstore.TimeEntry {
	return sqlstore.TimeEntry{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		UserID:         e.UserID,
		MemberID:       e.MemberID,
		ProjectID:      toNullUUID(e.ProjectID),
		TaskID:         toNullUUID(e.TaskID),
		ClientID:       toNullUUID(e.ClientID),
		Description:    e.Description,
		StartTime:      e.Start,
		EndTime:        e.End,
		Tags:           e.Tags,
		Billable:       e.Billable,
		BillableRate:   toNullInt64(e.BillableRate),
		Approval:       string(e.Approval),
		ApprovedBy:     toNullUUID(e.ApprovedBy),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// FromDatabase converts a database TimeEntry to a domain TimeEntry.
func (m *TimeEntryMapper) FromDatabase(e sqlstore.TimeEntry) TimeEntry {
	approval := ApprovalState(e.Approval)
	if approval == "" {
		approval = ApprovalUnsubmitted
	}
	return TimeEntry{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		UserID:         e.UserID,
		MemberID:       e.MemberID,
		ProjectID:      fromNullUUID(e.ProjectID),
		TaskID:         fromNullUUID(e.TaskID),
		ClientID:       fromNullUUID(e.ClientID),
		Description:    e.Description,
		Start:          e.StartTime,
		End:            e.EndTime,
		Tags:           e.Tags,
		Billable:       e.Billable,
		BillableRate:   fromNullInt64(e.BillableRate),
		Approval:       approval,
		ApprovedBy:     fromNullUUID(e.ApprovedBy),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// FromDatabaseSlice converts database rows to domain TimeEntries.
func (m *TimeEntryMapper) FromDatabaseSlice(rows []*sqlstore.TimeEntry) []TimeEntry {
	entries := make([]TimeEntry, len(rows))
	for i, row := range rows {
		entries[i] = m.FromDatabase(*row)
	}
	return entries
}

// ProfileMapper converts member profiles loaded with their user and teams.
type ProfileMapper struct{}

// NewProfileMapper creates a new ProfileMapper instance.
func NewProfileMapper() *ProfileMapper {
	return &ProfileMapper{}
}

// FromDatabase converts a database MemberProfile to a domain Profile.
func (m *ProfileMapper) FromDatabase(p sqlstore.MemberProfile) Profile {
	teams := make([]Team, len(p.Teams))
	for i, t := range p.Teams {
		teams[i] = Team{ID: t.ID, OrganizationID: t.OrganizationID, Name: t.Name}
	}
	return Profile{
		MemberID:       p.MemberID,
		UserID:         p.UserID,
		OrganizationID: p.OrganizationID,
		Name:           p.Name,
		Email:          p.Email,
		Role:           Role(p.Role),
		Teams:          teams,
	}
}

// FromDatabaseSlice converts database profiles to domain Profiles.
func (m *ProfileMapper) FromDatabaseSlice(rows []*sqlstore.MemberProfile) []Profile {
	profiles := make([]Profile, len(rows))
	for i, row := range rows {
		profiles[i] = m.FromDatabase(*row)
	}
	return profiles
}

// OrganizationMapper converts organizations and the records they own.
type OrganizationMapper struct{}

// NewOrganizationMapper creates a new OrganizationMapper instance.
func NewOrganizationMapper() *OrganizationMapper {
	return &OrganizationMapper{}
}

func (m *OrganizationMapper) FromDatabase(o sqlstore.Organization) Organization {
	return Organization{ID: o.ID, Name: o.Name, Timezone: o.Timezone}
}

func (m *OrganizationMapper) ToDatabase(o Organization) sqlstore.Organization {
	return sqlstore.Organization{ID: o.ID, Name: o.Name, Timezone: o.Timezone}
}

func (m *OrganizationMapper) MemberToDatabase(mem Member) sqlstore.Member {
	return sqlstore.Member{ID: mem.ID, OrganizationID: mem.OrganizationID, UserID: mem.UserID, Role: string(mem.Role)}
}

func (m *OrganizationMapper) MemberFromDatabase(mem sqlstore.Member) Member {
	return Member{ID: mem.ID, OrganizationID: mem.OrganizationID, UserID: mem.UserID, Role: Role(mem.Role)}
}

func (m *OrganizationMapper) ProjectsFromDatabase(rows []*sqlstore.Project) []Project {
	projects := make([]Project, len(rows))
	for i, p := range rows {
		projects[i] = Project{ID: p.ID, OrganizationID: p.OrganizationID, ClientID: fromNullUUID(p.ClientID), Name: p.Name}
	}
	return projects
}

func (m *OrganizationMapper) ClientsFromDatabase(rows []*sqlstore.Client) []Client {
	clients := make([]Client, len(rows))
	for i, c := range rows {
		clients[i] = Client{ID: c.ID, OrganizationID: c.OrganizationID, Name: c.Name}
	}
	return clients
}

func (m *OrganizationMapper) TasksFromDatabase(rows []*sqlstore.Task) []Task {
	tasks := make([]Task, len(rows))
	for i, t := range rows {
		tasks[i] = Task{ID: t.ID, OrganizationID: t.OrganizationID, ProjectID: t.ProjectID, Name: t.Name}
	}
	return tasks
}

// SearchOptionsMapper handles conversion between domain and database SearchOptions.
type SearchOptionsMapper struct{}

// NewSearchOptionsMapper creates a new SearchOptionsMapper instance.
func NewSearchOptionsMapper() *SearchOptionsMapper {
	return &SearchOptionsMapper{}
}

// ToDatabase converts domain SearchOptions to database SearchOptions.
func (m *SearchOptionsMapper) ToDatabase(opts SearchOptions) sqlstore.SearchOptions {
	var approvals []string
	for _, a := range opts.Approvals {
		approvals = append(approvals, string(a))
	}
	return sqlstore.SearchOptions{
		OrganizationID: opts.OrganizationID,
		UserID:         opts.UserID,
		MemberID:       opts.MemberID,
		IDs:            opts.IDs,
		Approvals:      approvals,
		StartTime:      opts.StartTime,
		EndTime:        opts.EndTime,
	}
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	TimeEntry     *TimeEntryMapper
	Profile       *ProfileMapper
	Organization  *OrganizationMapper
	SearchOptions *SearchOptionsMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		TimeEntry:     NewTimeEntryMapper(),
		Profile:       NewProfileMapper(),
		Organization:  NewOrganizationMapper(),
		SearchOptions: NewSearchOptionsMapper(),
	}
}

func toNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func fromNullUUID(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}

func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func fromNullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
