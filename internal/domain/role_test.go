package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		got, err := ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, got)
	}

	_, err := ParseRole("superuser")
	assert.Error(t, err)
}

func TestRole_IsPrivileged(t *testing.T) {
	assert.True(t, RoleOwner.IsPrivileged())
	assert.True(t, RoleAdmin.IsPrivileged())
	assert.True(t, RoleManager.IsPrivileged())
	assert.False(t, RoleEmployee.IsPrivileged())
	assert.False(t, RoleIntern.IsPrivileged())
}

func TestParseApprovalState(t *testing.T) {
	got, err := ParseApprovalState("")
	require.NoError(t, err)
	assert.Equal(t, ApprovalUnsubmitted, got)

	got, err = ParseApprovalState("rejected")
	require.NoError(t, err)
	assert.Equal(t, ApprovalRejected, got)

	_, err = ParseApprovalState("pending")
	assert.Error(t, err)
}

func TestActor(t *testing.T) {
	shared := uuid.New()
	profile := Profile{
		MemberID: uuid.New(),
		UserID:   uuid.New(),
		Name:     "Mark",
		Role:     RoleManager,
		Teams:    []Team{{ID: shared}},
	}
	actor := ActorFromProfile(profile)

	assert.Equal(t, profile.UserID, actor.UserID)
	assert.Equal(t, RoleManager, actor.Role)
	assert.True(t, actor.SharesTeam(Profile{Teams: []Team{{ID: uuid.New()}, {ID: shared}}}))
	assert.False(t, actor.SharesTeam(Profile{Teams: []Team{{ID: uuid.New()}}}))
	assert.False(t, actor.SharesTeam(Profile{}))

	assert.True(t, actor.Owns(TimeEntry{UserID: profile.UserID}))
	assert.False(t, actor.Owns(TimeEntry{UserID: uuid.New()}))
}
