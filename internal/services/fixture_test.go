package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"timesheet/internal/domain"
	"timesheet/internal/notify"
	"timesheet/internal/repository/sqlstore"
	"timesheet/internal/validation"
)

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, req notify.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// testOrg is an organization in Europe/Berlin with one delivery team holding
// an admin, a manager and two employees. Eve works in another team and Olga
// owns the organization without belonging to a team.
type testOrg struct {
	store      *sqlstore.Store
	org        *sqlstore.Organization
	delivery   *sqlstore.Team
	operations *sqlstore.Team
	users      map[string]*sqlstore.User
	members    map[string]*sqlstore.Member
	dispatcher *mockDispatcher
	logs       *bytes.Buffer
	container  *ServiceContainer
}

func setupTestOrg(t *testing.T) *testOrg {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	o := &testOrg{
		store:      store,
		users:      make(map[string]*sqlstore.User),
		members:    make(map[string]*sqlstore.Member),
		dispatcher: new(mockDispatcher),
		logs:       &bytes.Buffer{},
	}
	o.org = &sqlstore.Organization{Name: "Acme", Timezone: "Europe/Berlin"}
	require.NoError(t, store.CreateOrganization(ctx, o.org))
	o.delivery = &sqlstore.Team{OrganizationID: o.org.ID, Name: "Delivery"}
	require.NoError(t, store.CreateTeam(ctx, o.delivery))
	o.operations = &sqlstore.Team{OrganizationID: o.org.ID, Name: "Operations"}
	require.NoError(t, store.CreateTeam(ctx, o.operations))

	add := func(key, name, role string, team *sqlstore.Team) {
		u := &sqlstore.User{Name: name, Email: key + "@example.com"}
		require.NoError(t, store.CreateUser(ctx, u))
		m := &sqlstore.Member{OrganizationID: o.org.ID, UserID: u.ID, Role: role}
		require.NoError(t, store.CreateMember(ctx, m))
		if team != nil {
			require.NoError(t, store.AddTeamMember(ctx, team.ID, u.ID))
		}
		o.users[key] = u
		o.members[key] = m
	}
	add("olga", "Olga Owner", "owner", nil)
	add("adam", "Adam Admin", "admin", o.delivery)
	add("mark", "Mark Manager", "manager", o.delivery)
	add("alice", "Alice Employee", "employee", o.delivery)
	add("bob", "Bob Employee", "employee", o.delivery)
	add("eve", "Eve Employee", "employee", o.operations)

	logger := slog.New(slog.NewJSONHandler(o.logs, nil))
	o.container = NewServiceContainer(store, o.dispatcher, logger, Options{
		DefaultTimezone: "UTC",
		AppURL:          "https://timesheet.example.com/",
		Limits:          validation.DefaultLimits(),
	})
	return o
}

func (o *testOrg) actor(t *testing.T, key string) domain.Actor {
	t.Helper()
	actor, err := o.container.Directory.ResolveActor(context.Background(), o.org.ID, o.users[key].ID)
	require.NoError(t, err)
	return actor
}

func (o *testOrg) entry(t *testing.T, key string, start time.Time, minutes int, approval domain.ApprovalState) uuid.UUID {
	t.Helper()
	end := start.Add(time.Duration(minutes) * time.Minute)
	row := &sqlstore.TimeEntry{
		OrganizationID: o.org.ID,
		UserID:         o.users[key].ID,
		MemberID:       o.members[key].ID,
		Description:    "work",
		StartTime:      start,
		EndTime:        &end,
		Tags:           []string{},
		Approval:       string(approval),
	}
	require.NoError(t, o.store.CreateTimeEntry(context.Background(), row))
	return row.ID
}

func (o *testOrg) load(t *testing.T, id uuid.UUID) domain.TimeEntry {
	t.Helper()
	row, err := o.store.GetTimeEntry(context.Background(), id)
	require.NoError(t, err)
	return domain.NewMapper().TimeEntry.FromDatabase(*row)
}

// march5 is 10:00 in Berlin on 2025-03-05
var march5 = time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
