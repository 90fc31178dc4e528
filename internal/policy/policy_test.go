package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"timesheet/internal/domain"
)

type org struct {
	id       uuid.UUID
	profiles map[string]domain.Profile
	all      []domain.Profile
}

func newOrg() *org {
	o := &org{id: uuid.New(), profiles: make(map[string]domain.Profile)}
	red := domain.Team{ID: uuid.New(), OrganizationID: o.id, Name: "red"}
	blue := domain.Team{ID: uuid.New(), OrganizationID: o.id, Name: "blue"}

	add := func(name string, role domain.Role, teams ...domain.Team) {
		p := domain.Profile{
			MemberID:       uuid.New(),
			UserID:         uuid.New(),
			OrganizationID: o.id,
			Name:           name,
			Email:          name + "@example.com",
			Role:           role,
			Teams:          teams,
		}
		o.profiles[name] = p
		o.all = append(o.all, p)
	}

	add("owner", domain.RoleOwner)
	add("admin", domain.RoleAdmin, red)
	add("admin2", domain.RoleAdmin, red)
	add("manager", domain.RoleManager, red)
	add("employee", domain.RoleEmployee, red)
	add("intern", domain.RoleIntern, red)
	add("bluemanager", domain.RoleManager, blue)
	add("blueemployee", domain.RoleEmployee, blue)
	return o
}

func (o *org) actor(name string) domain.Actor {
	return domain.ActorFromProfile(o.profiles[name])
}

func TestCanSee(t *testing.T) {
	o := newOrg()
	m := New(Options{})

	tests := []struct {
		actor   string
		subject string
		want    bool
	}{
		{"owner", "admin", true},
		{"owner", "blueemployee", true},
		{"owner", "owner", true},
		{"admin", "manager", true},
		{"admin", "employee", true},
		{"admin", "intern", false},
		{"admin", "admin2", false},
		{"admin", "blueemployee", false},
		{"manager", "employee", true},
		{"manager", "intern", true},
		{"manager", "admin", false},
		{"manager", "manager", false},
		{"manager", "blueemployee", false},
		{"bluemanager", "blueemployee", true},
		{"employee", "intern", false},
		{"intern", "intern", false},
	}

	for _, tt := range tests {
		t.Run(tt.actor+" sees "+tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, m.CanSee(o.actor(tt.actor), o.profiles[tt.subject]))
		})
	}
}

func TestAdminSeesAdminsToggle(t *testing.T) {
	o := newOrg()
	m := New(Options{AdminSeesAdmins: true})

	assert.True(t, m.CanSee(o.actor("admin"), o.profiles["admin2"]))
	assert.Equal(t, []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee}, m.VisibleRoles(domain.RoleAdmin))
}

func TestCanSeeOtherOrganization(t *testing.T) {
	o := newOrg()
	other := newOrg()
	m := New(Options{})

	assert.False(t, m.CanSee(o.actor("owner"), other.profiles["employee"]))
}

func TestVisibleRolesForNonReviewers(t *testing.T) {
	m := New(Options{})
	assert.Empty(t, m.VisibleRoles(domain.RoleEmployee))
	assert.Empty(t, m.VisibleRoles(domain.RoleIntern))
	assert.Len(t, m.VisibleRoles(domain.RoleOwner), len(domain.Roles))
}

func TestVisibleUsers(t *testing.T) {
	o := newOrg()
	m := New(Options{})

	users := m.VisibleUsers(o.actor("manager"), o.all)
	assert.Len(t, users, 2)
	assert.True(t, users[o.profiles["employee"].UserID])
	assert.True(t, users[o.profiles["intern"].UserID])
}

func TestPrivilegedAudience(t *testing.T) {
	o := newOrg()

	// sorted by email, so admin2@ precedes admin@
	got := PrivilegedAudience(o.actor("employee"), o.all)
	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"admin2", "admin", "manager", "owner"}, names)

	// blue team only reaches its manager and the owner
	got = PrivilegedAudience(o.actor("blueemployee"), o.all)
	names = nil
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"bluemanager", "owner"}, names)

	// the actor is excluded even when privileged
	for _, p := range PrivilegedAudience(o.actor("manager"), o.all) {
		assert.NotEqual(t, "manager", p.Name)
	}
}

func TestOwnerAudience(t *testing.T) {
	o := newOrg()
	employee := o.profiles["employee"].UserID
	intern := o.profiles["intern"].UserID
	manager := o.actor("manager")

	got := OwnerAudience(manager, o.all, []uuid.UUID{intern, employee, employee, manager.UserID})
	assert.Len(t, got, 2)
	assert.Equal(t, "employee", got[0].Name)
	assert.Equal(t, "intern", got[1].Name)

	assert.Empty(t, OwnerAudience(manager, o.all, []uuid.UUID{manager.UserID}))
}
