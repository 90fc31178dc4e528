package domain

import (
	"slices"

	"github.com/google/uuid"
)

// Organization is the tenant boundary owning members, projects and time entries.
type Organization struct {
	ID       uuid.UUID
	Name     string
	Timezone string
}

// User is a person who can belong to several organizations.
type User struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Member is a user's role-scoped membership in one organization.
type Member struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Role           Role
}

// Team groups users inside an organization and scopes manager and admin visibility.
type Team struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
}

// Client is a customer that projects are billed to.
type Client struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
}

// Project groups tasks and time entries.
type Project struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ClientID       *uuid.UUID
	Name           string
}

// Task is a unit of work inside a project.
type Task struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ProjectID      uuid.UUID
	Name           string
}

// Profile is a member joined with its user and team memberships.
type Profile struct {
	MemberID       uuid.UUID
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Email          string
	Role           Role
	Teams          []Team
}

// TeamIDs returns the ids of the profile's teams.
func (p Profile) TeamIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.Teams))
	for i, team := range p.Teams {
		ids[i] = team.ID
	}
	return ids
}

// InTeam reports whether the profile belongs to team.
func (p Profile) InTeam(team uuid.UUID) bool {
	return slices.ContainsFunc(p.Teams, func(t Team) bool { return t.ID == team })
}
