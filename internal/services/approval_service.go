package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
	"timesheet/internal/notify"
	"timesheet/internal/period"
	"timesheet/internal/policy"
	"timesheet/internal/repository/sqlstore"
	"timesheet/internal/workflow"
)

const allPeriodsLabel = "All"

// approvalServiceImpl implements the ApprovalService interface
type approvalServiceImpl struct {
	repo       sqlstore.Repository
	directory  DirectoryService
	matrix     policy.Matrix
	dispatcher notify.Dispatcher
	logger     *slog.Logger
	mapper     *domain.Mapper
	reviewURL  string
	timeURL    string
}

// NewApprovalService creates a new ApprovalService instance
func NewApprovalService(repo sqlstore.Repository, directory DirectoryService, matrix policy.Matrix, dispatcher notify.Dispatcher, logger *slog.Logger, appURL string) ApprovalService {
	if dispatcher == nil {
		dispatcher = notify.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	base := strings.TrimRight(appURL, "/")
	return &approvalServiceImpl{
		repo:       repo,
		directory:  directory,
		matrix:     matrix,
		dispatcher: dispatcher,
		logger:     logger,
		mapper:     domain.NewMapper(),
		reviewURL:  base + "/approvals",
		timeURL:    base + "/time",
	}
}

// Transition applies an approval action to a batch of entries. The batch is
// all or nothing; notifications go out after the change is stored and a
// delivery failure is logged without undoing it.
func (s *approvalServiceImpl) Transition(ctx context.Context, actor domain.Actor, req TransitionRequest) (*TransitionResult, error) {
	profiles, err := s.directory.Profiles(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	entries, err := s.loadEntries(ctx, actor, req.IDs)
	if err != nil {
		return nil, err
	}

	visible := s.matrix.VisibleUsers(actor, profiles)
	plan, err := workflow.Evaluate(workflow.Request{
		Actor:   actor,
		Action:  req.Action,
		IDs:     req.IDs,
		Entries: entries,
		CanSee:  func(id uuid.UUID) bool { return visible[id] },
	})
	if err != nil {
		return nil, err
	}

	changes := make([]sqlstore.ApprovalChange, len(plan.Changes))
	ids := make([]string, len(plan.Changes))
	for i, c := range plan.Changes {
		changes[i] = sqlstore.ApprovalChange{
			ID:         c.Entry.ID,
			From:       string(c.From),
			To:         string(c.To),
			ApprovedBy: uuidToNull(c.ApprovedBy),
		}
		ids[i] = c.Entry.ID.String()
	}
	if err := s.repo.ApplyApprovalChanges(ctx, changes); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "approval transition applied",
		"action", req.Action,
		"actor", actor.UserID,
		"organization", actor.OrganizationID,
		"entries", len(changes),
	)

	label := s.periodLabel(ctx, actor, req.Period, plan.Changes)

	var audience []domain.Profile
	if plan.NotifyOwners {
		audience = append(audience, policy.OwnerAudience(actor, profiles, plan.OwnerIDs())...)
	}
	if plan.NotifyReviewers {
		audience = append(audience, policy.PrivilegedAudience(actor, profiles)...)
	}
	link := s.reviewURL
	if plan.NotifyOwners && !plan.NotifyReviewers {
		link = s.timeURL
	}
	notified := s.deliver(ctx, notify.Request{
		Recipients:   notify.Recipients(audience),
		Kind:         kindFor(req.Action),
		PeriodLabel:  label,
		ActorName:    actor.Name,
		SubjectNames: ownerNames(profiles, plan.OwnerIDs()),
		EntryCount:   len(changes),
		Link:         link,
	})

	return &TransitionResult{
		Action:   string(req.Action),
		Updated:  len(changes),
		Notified: notified,
		Status:   "ok",
		Period:   label,
		IDs:      ids,
	}, nil
}

// Remind emails the owners of the named entries without changing them.
// Only reviewers who can see every owner may send reminders.
func (s *approvalServiceImpl) Remind(ctx context.Context, actor domain.Actor, req TransitionRequest) (*TransitionResult, error) {
	if len(req.IDs) == 0 {
		return nil, errors.NewInvalidInputError("ids", req.IDs, "at least one time entry is required")
	}
	if !actor.Role.IsPrivileged() {
		return nil, errors.NewPermissionError("remind", "time entries")
	}

	profiles, err := s.directory.Profiles(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	entries, err := s.loadEntries(ctx, actor, req.IDs)
	if err != nil {
		return nil, err
	}

	visible := s.matrix.VisibleUsers(actor, profiles)
	var missing, denied []string
	var owners []uuid.UUID
	var changes []workflow.Change
	for _, id := range req.IDs {
		e, ok := entries[id]
		if !ok {
			missing = append(missing, id.String())
			continue
		}
		if !visible[e.UserID] {
			denied = append(denied, id.String())
			continue
		}
		owners = append(owners, e.UserID)
		changes = append(changes, workflow.Change{Entry: e, From: e.Approval, To: e.Approval})
	}
	if len(missing) > 0 {
		return nil, errors.NewNotFoundError("time entries", strings.Join(missing, ", "))
	}
	if len(denied) > 0 {
		return nil, errors.NewPermissionError("remind", "time entries "+strings.Join(denied, ", "))
	}

	recipients := notify.Recipients(policy.OwnerAudience(actor, profiles, owners))
	if len(recipients) == 0 {
		return nil, errors.NewNotFoundError("reminder recipients", "no valid user emails found")
	}

	label := s.periodLabel(ctx, actor, req.Period, changes)
	notified := s.deliver(ctx, notify.Request{
		Recipients:   recipients,
		Kind:         notify.KindRemind,
		PeriodLabel:  label,
		ActorName:    actor.Name,
		SubjectNames: ownerNames(profiles, owners),
		EntryCount:   len(changes),
		Link:         s.timeURL,
	})

	return &TransitionResult{
		Action:   string(notify.KindRemind),
		Notified: notified,
		Status:   "ok",
		Period:   label,
	}, nil
}

// Pending returns the submitted time the actor may review, grouped by period
func (s *approvalServiceImpl) Pending(ctx context.Context, actor domain.Actor) (*PendingTimesheets, error) {
	if !actor.Role.IsPrivileged() {
		return nil, errors.NewPermissionError("review", "timesheets")
	}

	entries, profiles, calc, err := s.visibleEntries(ctx, actor, []domain.ApprovalState{domain.ApprovalSubmitted})
	if err != nil {
		return nil, err
	}

	users := make(map[uuid.UUID]bool)
	for _, e := range entries {
		users[e.UserID] = true
	}

	return &PendingTimesheets{
		IsManager: actor.Role != domain.RoleEmployee,
		Remain:    len(users),
		Data:      NewAggregationService(calc).Group(entries, profiles),
	}, nil
}

// Board returns every visible entry grouped per approval state
func (s *approvalServiceImpl) Board(ctx context.Context, actor domain.Actor) (*ApprovalBoard, error) {
	if !actor.Role.IsPrivileged() {
		return nil, errors.NewPermissionError("review", "timesheets")
	}

	entries, profiles, calc, err := s.visibleEntries(ctx, actor, nil)
	if err != nil {
		return nil, err
	}
	return NewAggregationService(calc).Board(entries, profiles), nil
}

func (s *approvalServiceImpl) visibleEntries(ctx context.Context, actor domain.Actor, states []domain.ApprovalState) ([]domain.TimeEntry, []domain.Profile, period.Calculator, error) {
	calc, err := s.directory.Calculator(ctx, actor.OrganizationID)
	if err != nil {
		return nil, nil, period.Calculator{}, err
	}
	profiles, err := s.directory.Profiles(ctx, actor.OrganizationID)
	if err != nil {
		return nil, nil, period.Calculator{}, err
	}

	opts := domain.SearchOptions{OrganizationID: &actor.OrganizationID, Approvals: states}
	rows, err := s.repo.SearchTimeEntries(ctx, s.mapper.SearchOptions.ToDatabase(opts))
	if err != nil {
		return nil, nil, period.Calculator{}, err
	}

	visible := s.matrix.VisibleUsers(actor, profiles)
	var entries []domain.TimeEntry
	for _, e := range s.mapper.TimeEntry.FromDatabaseSlice(rows) {
		if visible[e.UserID] {
			entries = append(entries, e)
		}
	}
	return entries, s.matrix.Visible(actor, profiles), calc, nil
}

func (s *approvalServiceImpl) loadEntries(ctx context.Context, actor domain.Actor, ids []uuid.UUID) (map[uuid.UUID]domain.TimeEntry, error) {
	entries := make(map[uuid.UUID]domain.TimeEntry, len(ids))
	if len(ids) == 0 {
		return entries, nil
	}
	opts := domain.SearchOptions{OrganizationID: &actor.OrganizationID, IDs: ids}
	rows, err := s.repo.SearchTimeEntries(ctx, s.mapper.SearchOptions.ToDatabase(opts))
	if err != nil {
		return nil, err
	}
	for _, e := range s.mapper.TimeEntry.FromDatabaseSlice(rows) {
		entries[e.ID] = e
	}
	return entries, nil
}

// periodLabel prefers the requested period, then the single period all
// changes share, and falls back to "All".
func (s *approvalServiceImpl) periodLabel(ctx context.Context, actor domain.Actor, requested *period.ID, changes []workflow.Change) string {
	calc, err := s.directory.Calculator(ctx, actor.OrganizationID)
	if err != nil {
		s.logger.WarnContext(ctx, "falling back to UTC periods", "organization", actor.OrganizationID, "error", err)
		calc = period.New(nil)
	}
	if requested != nil {
		return calc.Label(*requested)
	}
	if len(changes) == 0 {
		return allPeriodsLabel
	}
	first := calc.Of(changes[0].Entry.Start)
	for _, c := range changes[1:] {
		if calc.Of(c.Entry.Start) != first {
			return allPeriodsLabel
		}
	}
	return calc.Label(first)
}

// deliver sends req and returns the number of recipients reached
func (s *approvalServiceImpl) deliver(ctx context.Context, req notify.Request) int {
	if len(req.Recipients) == 0 {
		s.logger.WarnContext(ctx, "no notification recipients", "kind", req.Kind)
		return 0
	}
	if err := s.dispatcher.Dispatch(ctx, req); err != nil {
		s.logger.ErrorContext(ctx, "notification delivery failed",
			"kind", req.Kind,
			"recipients", len(req.Recipients),
			"error", err,
		)
		return 0
	}
	return len(req.Recipients)
}

func kindFor(action workflow.Action) notify.Kind {
	switch action {
	case workflow.ActionSubmit:
		return notify.KindSubmit
	case workflow.ActionUnsubmit:
		return notify.KindUnsubmit
	case workflow.ActionApprove:
		return notify.KindApprove
	case workflow.ActionReject:
		return notify.KindReject
	default:
		return notify.KindWithdraw
	}
}

func ownerNames(profiles []domain.Profile, userIDs []uuid.UUID) []string {
	wanted := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	var owners []domain.Profile
	for _, p := range profiles {
		if wanted[p.UserID] {
			owners = append(owners, p)
		}
	}
	return notify.Names(owners)
}

func uuidToNull(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
