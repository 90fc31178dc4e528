// Package policy holds the role-visibility matrix that decides whose time
// entries an actor may list and review. Listing and transitions both consult it.
package policy

import (
	"slices"
	"sort"

	"github.com/google/uuid"

	"timesheet/internal/domain"
)

// Matrix maps an actor's role to the member roles it may review.
type Matrix struct {
	visible map[domain.Role][]domain.Role
}

// Options tunes the matrix.
type Options struct {
	// AdminSeesAdmins lets admins review other admins in their teams.
	AdminSeesAdmins bool
}

// New builds the matrix.
func New(opts Options) Matrix {
	admin := []domain.Role{domain.RoleManager, domain.RoleEmployee}
	if opts.AdminSeesAdmins {
		admin = append([]domain.Role{domain.RoleAdmin}, admin...)
	}
	return Matrix{visible: map[domain.Role][]domain.Role{
		domain.RoleOwner:   slices.Clone(domain.Roles),
		domain.RoleAdmin:   admin,
		domain.RoleManager: {domain.RoleEmployee, domain.RoleIntern},
	}}
}

// VisibleRoles returns the roles an actor with role may review.
func (m Matrix) VisibleRoles(role domain.Role) []domain.Role {
	return slices.Clone(m.visible[role])
}

// CanSee reports whether actor may review subject's time. Owners see the whole
// organization; admins and managers only members of a team they belong to.
func (m Matrix) CanSee(actor domain.Actor, subject domain.Profile) bool {
	if actor.OrganizationID != subject.OrganizationID {
		return false
	}
	if !slices.Contains(m.VisibleRoles(actor.Role), subject.Role) {
		return false
	}
	if actor.Role == domain.RoleOwner {
		return true
	}
	return actor.SharesTeam(subject)
}

// Visible filters profiles down to the ones actor may review.
func (m Matrix) Visible(actor domain.Actor, profiles []domain.Profile) []domain.Profile {
	var out []domain.Profile
	for _, p := range profiles {
		if m.CanSee(actor, p) {
			out = append(out, p)
		}
	}
	return out
}

// VisibleUsers returns the user ids of the profiles actor may review.
func (m Matrix) VisibleUsers(actor domain.Actor, profiles []domain.Profile) map[uuid.UUID]bool {
	users := make(map[uuid.UUID]bool)
	for _, p := range m.Visible(actor, profiles) {
		users[p.UserID] = true
	}
	return users
}

// PrivilegedAudience returns the members told about an actor's own changes:
// managers and admins sharing a team with the actor plus every organization
// owner. The actor is never included.
func PrivilegedAudience(actor domain.Actor, profiles []domain.Profile) []domain.Profile {
	seen := make(map[uuid.UUID]bool)
	var out []domain.Profile
	for _, p := range profiles {
		if p.UserID == actor.UserID || p.OrganizationID != actor.OrganizationID || seen[p.UserID] {
			continue
		}
		switch p.Role {
		case domain.RoleOwner:
		case domain.RoleAdmin, domain.RoleManager:
			if !actor.SharesTeam(p) {
				continue
			}
		default:
			continue
		}
		seen[p.UserID] = true
		out = append(out, p)
	}
	sortProfiles(out)
	return out
}

// OwnerAudience returns the profiles owning userIDs, minus the actor.
func OwnerAudience(actor domain.Actor, profiles []domain.Profile, userIDs []uuid.UUID) []domain.Profile {
	wanted := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	seen := make(map[uuid.UUID]bool)
	var out []domain.Profile
	for _, p := range profiles {
		if !wanted[p.UserID] || p.UserID == actor.UserID || seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		out = append(out, p)
	}
	sortProfiles(out)
	return out
}

func sortProfiles(profiles []domain.Profile) {
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].Email != profiles[j].Email {
			return profiles[i].Email < profiles[j].Email
		}
		return profiles[i].UserID.String() < profiles[j].UserID.String()
	})
}
