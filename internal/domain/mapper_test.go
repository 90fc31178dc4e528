package domain

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"timesheet/internal/repository/sqlstore"
)

func TestTimeEntryMapper_RoundTrip(t *testing.T) {
	mapper := NewTimeEntryMapper()
	project := uuid.New()
	approver := uuid.New()
	rate := int64(9000)
	start := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	end := start.Add(210 * time.Minute)

	entry := TimeEntry{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		UserID:         uuid.New(),
		MemberID:       uuid.New(),
		ProjectID:      &project,
		Description:    "planning",
		Start:          start,
		End:            &end,
		Tags:           []string{"a"},
		Billable:       true,
		BillableRate:   &rate,
		Approval:       ApprovalApproved,
		ApprovedBy:     &approver,
	}

	row := mapper.ToDatabase(entry)
	assert.Equal(t, uuid.NullUUID{UUID: project, Valid: true}, row.ProjectID)
	assert.False(t, row.TaskID.Valid)
	assert.Equal(t, sql.NullInt64{Int64: 9000, Valid: true}, row.BillableRate)
	assert.Equal(t, "approved", row.Approval)

	assert.Equal(t, entry, mapper.FromDatabase(row))
}

func TestTimeEntryMapper_FromDatabaseDefaults(t *testing.T) {
	mapper := NewTimeEntryMapper()

	got := mapper.FromDatabase(sqlstore.TimeEntry{ID: uuid.New()})
	assert.Equal(t, ApprovalUnsubmitted, got.Approval)
	assert.Nil(t, got.ProjectID)
	assert.Nil(t, got.BillableRate)
	assert.Nil(t, got.ApprovedBy)
}

func TestTimeEntryMapper_FromDatabaseSlice(t *testing.T) {
	mapper := NewTimeEntryMapper()
	rows := []*sqlstore.TimeEntry{{ID: uuid.New(), Approval: "submitted"}, {ID: uuid.New()}}

	got := mapper.FromDatabaseSlice(rows)
	assert.Len(t, got, 2)
	assert.Equal(t, ApprovalSubmitted, got[0].Approval)
	assert.Empty(t, mapper.FromDatabaseSlice(nil))
}

func TestProfileMapper_FromDatabase(t *testing.T) {
	team := sqlstore.Team{ID: uuid.New(), Name: "Delivery"}
	row := sqlstore.MemberProfile{
		MemberID: uuid.New(),
		UserID:   uuid.New(),
		Role:     "manager",
		Name:     "Mark",
		Email:    "mark@example.com",
		Teams:    []sqlstore.Team{team},
	}

	p := NewProfileMapper().FromDatabase(row)
	assert.Equal(t, RoleManager, p.Role)
	assert.Equal(t, []uuid.UUID{team.ID}, p.TeamIDs())
	assert.True(t, p.InTeam(team.ID))
	assert.False(t, p.InTeam(uuid.New()))
}

func TestOrganizationMapper(t *testing.T) {
	m := NewOrganizationMapper()
	client := uuid.New()

	projects := m.ProjectsFromDatabase([]*sqlstore.Project{
		{ID: uuid.New(), ClientID: uuid.NullUUID{UUID: client, Valid: true}, Name: "Web"},
		{ID: uuid.New(), Name: "Internal"},
	})
	assert.Equal(t, client, *projects[0].ClientID)
	assert.Nil(t, projects[1].ClientID)

	member := Member{ID: uuid.New(), Role: RoleIntern}
	assert.Equal(t, member, m.MemberFromDatabase(m.MemberToDatabase(member)))

	org := Organization{ID: uuid.New(), Name: "Acme", Timezone: "UTC"}
	assert.Equal(t, org, m.FromDatabase(m.ToDatabase(org)))
}

func TestSearchOptionsMapper_ToDatabase(t *testing.T) {
	org := uuid.New()
	opts := SearchOptions{
		OrganizationID: &org,
		Approvals:      []ApprovalState{ApprovalSubmitted, ApprovalApproved},
	}

	got := NewSearchOptionsMapper().ToDatabase(opts)
	assert.Equal(t, &org, got.OrganizationID)
	assert.Equal(t, []string{"submitted", "approved"}, got.Approvals)

	assert.Nil(t, NewSearchOptionsMapper().ToDatabase(SearchOptions{}).Approvals)
}

func TestNewMapper(t *testing.T) {
	m := NewMapper()
	assert.NotNil(t, m.TimeEntry)
	assert.NotNil(t, m.Profile)
	assert.NotNil(t, m.Organization)
	assert.NotNil(t, m.SearchOptions)
}
