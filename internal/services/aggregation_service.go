package services

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"timesheet/internal/domain"
	"timesheet/internal/period"
)

// aggregationServiceImpl implements the AggregationService interface
type aggregationServiceImpl struct {
	calc period.Calculator
}

// NewAggregationService creates an AggregationService that assigns entries to
// periods in the calculator's timezone
func NewAggregationService(calc period.Calculator) AggregationService {
	return &aggregationServiceImpl{calc: calc}
}

// FormatMinutes renders whole minutes as "<H>h <MM>m"
func FormatMinutes(minutes int64) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// Aggregate sums each user's completed time per period. An entry belongs to
// the period its start falls in, even when it ends in the next one. Running
// entries count as zero but still place their user in the period.
func (a *aggregationServiceImpl) Aggregate(entries []domain.TimeEntry, people []domain.Profile) Timesheet {
	names := make(map[uuid.UUID]string, len(people))
	for _, p := range people {
		names[p.UserID] = p.Name
	}

	ts := make(Timesheet)
	for _, e := range entries {
		id := a.calc.Of(e.Start)
		users, ok := ts[id]
		if !ok {
			users = make(map[uuid.UUID]Summary)
			ts[id] = users
		}
		s := users[e.UserID]
		s.UserID = e.UserID
		s.DisplayName = names[e.UserID]
		s.TotalMinutes += e.DurationMinutes()
		users[e.UserID] = s
	}

	for _, users := range ts {
		for id, s := range users {
			s.Formatted = FormatMinutes(s.TotalMinutes)
			users[id] = s
		}
	}
	return ts
}

// Group renders the aggregate in the external shape, rows ordered by name then id
func (a *aggregationServiceImpl) Group(entries []domain.TimeEntry, people []domain.Profile) GroupedTimesheet {
	byUser := make(map[uuid.UUID]domain.Profile, len(people))
	for _, p := range people {
		byUser[p.UserID] = p
	}
	memberOf := make(map[uuid.UUID]uuid.UUID)
	for _, e := range entries {
		if e.MemberID != uuid.Nil {
			memberOf[e.UserID] = e.MemberID
		}
	}

	grouped := make(GroupedTimesheet)
	for id, users := range a.Aggregate(entries, people) {
		rows := make([]GroupRow, 0, len(users))
		for userID, s := range users {
			user := GroupUser{ID: userID, Name: s.DisplayName, Groups: []string{}}
			if p, ok := byUser[userID]; ok {
				for _, team := range p.Teams {
					user.Groups = append(user.Groups, team.Name)
				}
				user.Member = &GroupMember{ID: p.MemberID}
			} else if m, ok := memberOf[userID]; ok {
				user.Member = &GroupMember{ID: m}
			}
			rows = append(rows, GroupRow{User: user, TotalHours: s.Formatted})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].User.Name != rows[j].User.Name {
				return rows[i].User.Name < rows[j].User.Name
			}
			return rows[i].User.ID.String() < rows[j].User.ID.String()
		})
		grouped[id] = rows
	}
	return grouped
}

// Board groups entries separately for each approval state
func (a *aggregationServiceImpl) Board(entries []domain.TimeEntry, people []domain.Profile) *ApprovalBoard {
	byState := make(map[domain.ApprovalState][]domain.TimeEntry)
	for _, e := range entries {
		byState[e.Approval] = append(byState[e.Approval], e)
	}
	return &ApprovalBoard{
		Submitted:   a.Group(byState[domain.ApprovalSubmitted], people),
		Unsubmitted: a.Group(byState[domain.ApprovalUnsubmitted], people),
		Approved:    a.Group(byState[domain.ApprovalApproved], people),
		Rejected:    a.Group(byState[domain.ApprovalRejected], people),
	}
}

// Periods returns the ids of a grouped timesheet in ascending order
func (g GroupedTimesheet) Periods() []period.ID {
	ids := make([]period.ID, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}
