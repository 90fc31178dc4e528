// Package workflow decides whether a batch of time entries may move through
// an approval transition. It performs no IO; callers load the entries, apply
// the resulting plan and deliver notifications.
package workflow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// Action names a transition requested by an actor.
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionUnsubmit Action = "unsubmit"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionWithdraw Action = "withdraw"
)

// Actions lists every transition.
var Actions = []Action{ActionSubmit, ActionUnsubmit, ActionApprove, ActionReject, ActionWithdraw}

// ParseAction converts a path or command argument into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Actions, a) {
		return "", errors.NewInvalidInputError("action", s, "must be one of submit, unsubmit, approve, reject, withdraw")
	}
	return a, nil
}

type approverEffect int

const (
	approverKeep approverEffect = iota
	approverSet
	approverClear
)

// rule is one row of the transition table.
type rule struct {
	from     []domain.ApprovalState
	to       domain.ApprovalState
	approver approverEffect
	// byOwner allows the entry's own user to act.
	byOwner bool
	// byReviewer allows a privileged actor who can see the entry's owner.
	byReviewer bool
	// reviewerFrom widens from for reviewers acting on someone else's entry.
	reviewerFrom []domain.ApprovalState
}

var rules = map[Action]rule{
	ActionSubmit: {
		from:     []domain.ApprovalState{domain.ApprovalUnsubmitted},
		to:       domain.ApprovalSubmitted,
		approver: approverKeep,
		byOwner:  true,
	},
	ActionUnsubmit: {
		from:         []domain.ApprovalState{domain.ApprovalSubmitted},
		to:           domain.ApprovalUnsubmitted,
		approver:     approverClear,
		byOwner:      true,
		byReviewer:   true,
		reviewerFrom: []domain.ApprovalState{domain.ApprovalSubmitted, domain.ApprovalApproved, domain.ApprovalRejected},
	},
	ActionApprove: {
		from:       []domain.ApprovalState{domain.ApprovalSubmitted},
		to:         domain.ApprovalApproved,
		approver:   approverSet,
		byReviewer: true,
	},
	ActionReject: {
		from:       []domain.ApprovalState{domain.ApprovalSubmitted},
		to:         domain.ApprovalRejected,
		approver:   approverSet,
		byReviewer: true,
	},
	ActionWithdraw: {
		from:     []domain.ApprovalState{domain.ApprovalApproved, domain.ApprovalRejected},
		to:       domain.ApprovalSubmitted,
		approver: approverClear,
		byOwner:  true,
	},
}

// Target returns the state an action moves entries into.
func (a Action) Target() domain.ApprovalState {
	return rules[a].to
}

// Request is a batch transition to evaluate.
type Request struct {
	Actor  domain.Actor
	Action Action
	IDs    []uuid.UUID
	// Entries holds the loaded entries keyed by id; ids without an entry are missing.
	Entries map[uuid.UUID]domain.TimeEntry
	// CanSee reports whether the actor may review the given user's time.
	CanSee func(userID uuid.UUID) bool
}

// Change is a single entry's move.
type Change struct {
	Entry      domain.TimeEntry
	From       domain.ApprovalState
	To         domain.ApprovalState
	ApprovedBy *uuid.UUID
}

// Plan is an accepted batch transition.
type Plan struct {
	Action  Action
	Changes []Change
	// NotifyOwners asks for the owners of the changed entries to be told.
	NotifyOwners bool
	// NotifyReviewers asks for the actor's privileged audience to be told.
	NotifyReviewers bool
}

// OwnerIDs returns the distinct owners of the changed entries in batch order.
func (p *Plan) OwnerIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, c := range p.Changes {
		if !slices.Contains(ids, c.Entry.UserID) {
			ids = append(ids, c.Entry.UserID)
		}
	}
	return ids
}

// Evaluate checks every entry of the batch and returns a plan only when all of
// them may move. Failures name the offending ids: missing or foreign entries
// fail with NotFound, unauthorized ones with Permission and entries in the
// wrong state with Conflict.
func Evaluate(req Request) (*Plan, error) {
	r, ok := rules[req.Action]
	if !ok {
		return nil, errors.NewInvalidInputError("action", string(req.Action), "unknown action")
	}
	if len(req.IDs) == 0 {
		return nil, errors.NewInvalidInputError("ids", req.IDs, "at least one time entry is required")
	}

	canSee := req.CanSee
	if canSee == nil {
		canSee = func(uuid.UUID) bool { return false }
	}

	var missing, denied, stale []string
	plan := &Plan{Action: req.Action}
	seen := make(map[uuid.UUID]bool, len(req.IDs))
	selfOnly, ownsAny := true, false

	for _, id := range req.IDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		entry, ok := req.Entries[id]
		if !ok || entry.OrganizationID != req.Actor.OrganizationID {
			missing = append(missing, id.String())
			continue
		}

		owns := req.Actor.Owns(entry)
		reviews := r.byReviewer && req.Actor.Role.IsPrivileged() && canSee(entry.UserID)
		if !(r.byOwner && owns) && !reviews {
			denied = append(denied, id.String())
			continue
		}

		allowed := r.from
		if reviews && !owns && len(r.reviewerFrom) > 0 {
			allowed = r.reviewerFrom
		}
		if !slices.Contains(allowed, entry.Approval) {
			stale = append(stale, id.String())
			continue
		}

		if owns {
			ownsAny = true
		} else {
			selfOnly = false
		}
		plan.Changes = append(plan.Changes, Change{
			Entry:      entry,
			From:       entry.Approval,
			To:         r.to,
			ApprovedBy: approvedBy(r.approver, req.Actor, entry),
		})
	}

	switch {
	case len(missing) > 0:
		return nil, errors.NewNotFoundError("time entries", strings.Join(missing, ", ")).
			WithContext("ids", missing)
	case len(denied) > 0:
		return nil, errors.NewPermissionError(string(req.Action), "time entries "+strings.Join(denied, ", ")).
			WithContext("ids", denied)
	case len(stale) > 0:
		return nil, errors.NewConflictError(fmt.Sprintf("%s from current state", req.Action), stale)
	}

	switch req.Action {
	case ActionSubmit, ActionWithdraw:
		plan.NotifyReviewers = true
	case ActionApprove, ActionReject:
		plan.NotifyOwners = true
	case ActionUnsubmit:
		plan.NotifyOwners = !selfOnly
		plan.NotifyReviewers = ownsAny
	}

	return plan, nil
}

func approvedBy(effect approverEffect, actor domain.Actor, entry domain.TimeEntry) *uuid.UUID {
	switch effect {
	case approverSet:
		id := actor.UserID
		return &id
	case approverClear:
		return nil
	default:
		return entry.ApprovedBy
	}
}
