package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

var orgID = uuid.New()

func actor(role domain.Role) domain.Actor {
	return domain.Actor{UserID: uuid.New(), OrganizationID: orgID, Role: role, Name: string(role)}
}

func entryOf(owner domain.Actor, state domain.ApprovalState) domain.TimeEntry {
	start := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	return domain.TimeEntry{
		ID:             uuid.New(),
		OrganizationID: owner.OrganizationID,
		UserID:         owner.UserID,
		Start:          start,
		End:            &end,
		Approval:       state,
	}
}

func request(a domain.Actor, action Action, visible map[uuid.UUID]bool, entries ...domain.TimeEntry) Request {
	req := Request{
		Actor:   a,
		Action:  action,
		Entries: make(map[uuid.UUID]domain.TimeEntry),
		CanSee:  func(id uuid.UUID) bool { return visible[id] },
	}
	for _, e := range entries {
		req.IDs = append(req.IDs, e.ID)
		req.Entries[e.ID] = e
	}
	return req
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions {
		got, err := ParseAction(string(a))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	got, err := ParseAction(" Approve ")
	require.NoError(t, err)
	assert.Equal(t, ActionApprove, got)

	_, err = ParseAction("remind")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func TestTarget(t *testing.T) {
	assert.Equal(t, domain.ApprovalSubmitted, ActionSubmit.Target())
	assert.Equal(t, domain.ApprovalUnsubmitted, ActionUnsubmit.Target())
	assert.Equal(t, domain.ApprovalApproved, ActionApprove.Target())
	assert.Equal(t, domain.ApprovalRejected, ActionReject.Target())
	assert.Equal(t, domain.ApprovalSubmitted, ActionWithdraw.Target())
}

func TestEvaluateTransitions(t *testing.T) {
	employee := actor(domain.RoleEmployee)
	manager := actor(domain.RoleManager)
	visible := map[uuid.UUID]bool{employee.UserID: true}
	previousApprover := uuid.New()

	tests := []struct {
		name          string
		actor         domain.Actor
		action        Action
		state         domain.ApprovalState
		wantTo        domain.ApprovalState
		wantApprover  *uuid.UUID
		wantOwners    bool
		wantReviewers bool
	}{
		{name: "owner submits", actor: employee, action: ActionSubmit, state: domain.ApprovalUnsubmitted, wantTo: domain.ApprovalSubmitted, wantApprover: &previousApprover, wantReviewers: true},
		{name: "owner unsubmits", actor: employee, action: ActionUnsubmit, state: domain.ApprovalSubmitted, wantTo: domain.ApprovalUnsubmitted, wantReviewers: true},
		{name: "manager unsubmits", actor: manager, action: ActionUnsubmit, state: domain.ApprovalSubmitted, wantTo: domain.ApprovalUnsubmitted, wantOwners: true},
		{name: "manager forces approved back", actor: manager, action: ActionUnsubmit, state: domain.ApprovalApproved, wantTo: domain.ApprovalUnsubmitted, wantOwners: true},
		{name: "manager approves", actor: manager, action: ActionApprove, state: domain.ApprovalSubmitted, wantTo: domain.ApprovalApproved, wantApprover: &manager.UserID, wantOwners: true},
		{name: "manager rejects", actor: manager, action: ActionReject, state: domain.ApprovalSubmitted, wantTo: domain.ApprovalRejected, wantApprover: &manager.UserID, wantOwners: true},
		{name: "owner withdraws approved", actor: employee, action: ActionWithdraw, state: domain.ApprovalApproved, wantTo: domain.ApprovalSubmitted, wantReviewers: true},
		{name: "owner withdraws rejected", actor: employee, action: ActionWithdraw, state: domain.ApprovalRejected, wantTo: domain.ApprovalSubmitted, wantReviewers: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entryOf(employee, tt.state)
			e.ApprovedBy = &previousApprover

			plan, err := Evaluate(request(tt.actor, tt.action, visible, e))
			require.NoError(t, err)
			require.Len(t, plan.Changes, 1)

			c := plan.Changes[0]
			assert.Equal(t, tt.state, c.From)
			assert.Equal(t, tt.wantTo, c.To)
			assert.Equal(t, tt.wantApprover, c.ApprovedBy)
			assert.Equal(t, tt.wantOwners, plan.NotifyOwners)
			assert.Equal(t, tt.wantReviewers, plan.NotifyReviewers)
			assert.Equal(t, []uuid.UUID{employee.UserID}, plan.OwnerIDs())
		})
	}
}

func TestEvaluateRejectsWrongState(t *testing.T) {
	employee := actor(domain.RoleEmployee)
	manager := actor(domain.RoleManager)
	visible := map[uuid.UUID]bool{employee.UserID: true}

	tests := []struct {
		name   string
		actor  domain.Actor
		action Action
		state  domain.ApprovalState
	}{
		{name: "submit submitted", actor: employee, action: ActionSubmit, state: domain.ApprovalSubmitted},
		{name: "approve unsubmitted", actor: manager, action: ActionApprove, state: domain.ApprovalUnsubmitted},
		{name: "reject approved", actor: manager, action: ActionReject, state: domain.ApprovalApproved},
		{name: "withdraw submitted", actor: employee, action: ActionWithdraw, state: domain.ApprovalSubmitted},
		{name: "owner cannot unsubmit approved", actor: employee, action: ActionUnsubmit, state: domain.ApprovalApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entryOf(employee, tt.state)
			_, err := Evaluate(request(tt.actor, tt.action, visible, e))
			require.Error(t, err)
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict))
			assert.Contains(t, err.Error(), e.ID.String())
		})
	}
}

func TestEvaluateEmployeeBatchOverTwoOwnersRejected(t *testing.T) {
	alice := actor(domain.RoleEmployee)
	bob := actor(domain.RoleEmployee)
	mine := entryOf(alice, domain.ApprovalUnsubmitted)
	theirs := entryOf(bob, domain.ApprovalUnsubmitted)

	_, err := Evaluate(request(alice, ActionSubmit, nil, mine, theirs))
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypePermission))
	assert.Contains(t, err.Error(), theirs.ID.String())
	assert.NotContains(t, err.Error(), mine.ID.String())
}

func TestEvaluateReviewerOutsideVisibility(t *testing.T) {
	employee := actor(domain.RoleEmployee)
	manager := actor(domain.RoleManager)
	e := entryOf(employee, domain.ApprovalSubmitted)

	_, err := Evaluate(request(manager, ActionApprove, map[uuid.UUID]bool{}, e))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypePermission))
}

func TestEvaluateEmployeeCannotApproveOwnTime(t *testing.T) {
	employee := actor(domain.RoleEmployee)
	e := entryOf(employee, domain.ApprovalSubmitted)

	_, err := Evaluate(request(employee, ActionApprove, map[uuid.UUID]bool{employee.UserID: true}, e))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypePermission))
}

func TestEvaluateMissingAndForeignEntries(t *testing.T) {
	employee := actor(domain.RoleEmployee)
	known := entryOf(employee, domain.ApprovalUnsubmitted)
	foreign := entryOf(employee, domain.ApprovalUnsubmitted)
	foreign.OrganizationID = uuid.New()

	req := request(employee, ActionSubmit, nil, known, foreign)
	ghost := uuid.New()
	req.IDs = append(req.IDs, ghost)

	_, err := Evaluate(req)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	assert.Contains(t, err.Error(), ghost.String())
	assert.Contains(t, err.Error(), foreign.ID.String())
}

func TestEvaluateDeduplicatesIDs(t *testing.T) {
	employee := actor(domain.RoleEmployee)
	e := entryOf(employee, domain.ApprovalUnsubmitted)
	req := request(employee, ActionSubmit, nil, e)
	req.IDs = append(req.IDs, e.ID)

	plan, err := Evaluate(req)
	require.NoError(t, err)
	assert.Len(t, plan.Changes, 1)
}

func TestEvaluateEmptyBatch(t *testing.T) {
	_, err := Evaluate(Request{Actor: actor(domain.RoleOwner), Action: ActionApprove})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))

	_, err = Evaluate(Request{Actor: actor(domain.RoleOwner), Action: "archive", IDs: []uuid.UUID{uuid.New()}})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func TestEvaluateMixedUnsubmitNotifiesBothSides(t *testing.T) {
	manager := actor(domain.RoleManager)
	employee := actor(domain.RoleEmployee)
	own := entryOf(manager, domain.ApprovalSubmitted)
	reviewed := entryOf(employee, domain.ApprovalSubmitted)

	plan, err := Evaluate(request(manager, ActionUnsubmit, map[uuid.UUID]bool{employee.UserID: true}, own, reviewed))
	require.NoError(t, err)
	assert.True(t, plan.NotifyOwners)
	assert.True(t, plan.NotifyReviewers)
	assert.Equal(t, []uuid.UUID{manager.UserID, employee.UserID}, plan.OwnerIDs())
}
