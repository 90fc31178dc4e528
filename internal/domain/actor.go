package domain

import (
	"slices"

	"github.com/google/uuid"
)

// Actor is the user performing an operation, scoped to one organization.
// Every operation receives it explicitly.
type Actor struct {
	UserID         uuid.UUID
	MemberID       uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Email          string
	Role           Role
	TeamIDs        []uuid.UUID
}

// ActorFromProfile builds an actor from a resolved member profile.
func ActorFromProfile(p Profile) Actor {
	return Actor{
		UserID:         p.UserID,
		MemberID:       p.MemberID,
		OrganizationID: p.OrganizationID,
		Name:           p.Name,
		Email:          p.Email,
		Role:           p.Role,
		TeamIDs:        p.TeamIDs(),
	}
}

// SharesTeam reports whether the actor and p have at least one team in common.
func (a Actor) SharesTeam(p Profile) bool {
	return slices.ContainsFunc(a.TeamIDs, p.InTeam)
}

// Owns reports whether entry belongs to the actor.
func (a Actor) Owns(entry TimeEntry) bool {
	return entry.UserID == a.UserID
}
