package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/domain"
	"timesheet/internal/period"
)

func completed(user uuid.UUID, start time.Time, minutes int) domain.TimeEntry {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return domain.TimeEntry{ID: uuid.New(), UserID: user, Start: start, End: &end, Approval: domain.ApprovalSubmitted}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes  int64
		expected string
	}{
		{0, "0h 00m"},
		{5, "0h 05m"},
		{210, "3h 30m"},
		{600, "10h 00m"},
		{-3, "0h 00m"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMinutes(tt.minutes))
		})
	}
}

func TestAggregate_MarchScenario(t *testing.T) {
	// Arrange
	alice := uuid.New()
	agg := NewAggregationService(period.New(time.UTC))
	entries := []domain.TimeEntry{
		completed(alice, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), 120),
		completed(alice, time.Date(2025, 3, 5, 13, 0, 0, 0, time.UTC), 90),
	}
	people := []domain.Profile{{UserID: alice, Name: "Alice"}}

	// Act
	ts := agg.Aggregate(entries, people)

	// Assert
	id := period.ID{Year: 2025, Month: time.March, Half: 1}
	require.Len(t, ts, 1)
	require.Contains(t, ts, id)
	assert.Equal(t, "2025-03-1", id.String())
	s := ts[id][alice]
	assert.Equal(t, int64(210), s.TotalMinutes)
	assert.Equal(t, "3h 30m", s.Formatted)
	assert.Equal(t, "Alice", s.DisplayName)
}

func TestAggregate_Empty(t *testing.T) {
	agg := NewAggregationService(period.New(nil))
	assert.Empty(t, agg.Aggregate(nil, nil))
	assert.Empty(t, agg.Group(nil, nil))
}

func TestAggregate_RunningEntriesContributeZero(t *testing.T) {
	alice := uuid.New()
	agg := NewAggregationService(period.New(nil))
	running := domain.TimeEntry{ID: uuid.New(), UserID: alice, Start: time.Date(2025, 3, 20, 8, 0, 0, 0, time.UTC)}

	ts := agg.Aggregate([]domain.TimeEntry{running}, nil)

	id := period.ID{Year: 2025, Month: time.March, Half: 2}
	require.Contains(t, ts, id)
	assert.Equal(t, int64(0), ts[id][alice].TotalMinutes)
	assert.Equal(t, "0h 00m", ts[id][alice].Formatted)
}

func TestAggregate_FloorsPartialMinutes(t *testing.T) {
	alice := uuid.New()
	start := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	end := start.Add(59*time.Second + 30*time.Minute)
	entry := domain.TimeEntry{UserID: alice, Start: start, End: &end}

	ts := NewAggregationService(period.New(nil)).Aggregate([]domain.TimeEntry{entry}, nil)

	assert.Equal(t, int64(30), ts[period.ID{Year: 2025, Month: time.March, Half: 1}][alice].TotalMinutes)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	agg := NewAggregationService(period.New(nil))
	entries := []domain.TimeEntry{
		completed(alice, time.Date(2025, 2, 27, 9, 0, 0, 0, time.UTC), 45),
		completed(bob, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), 60),
		completed(alice, time.Date(2025, 3, 16, 9, 0, 0, 0, time.UTC), 30),
		completed(alice, time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC), 15),
	}
	reversed := make([]domain.TimeEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}

	assert.Equal(t, agg.Aggregate(entries, nil), agg.Aggregate(reversed, nil))
}

func TestAggregate_BoundaryEntryStaysInStartPeriod(t *testing.T) {
	alice := uuid.New()
	agg := NewAggregationService(period.New(time.UTC))
	entry := completed(alice, time.Date(2025, 3, 15, 23, 0, 0, 0, time.UTC), 120)

	ts := agg.Aggregate([]domain.TimeEntry{entry}, nil)

	require.Len(t, ts, 1)
	assert.Equal(t, int64(120), ts[period.ID{Year: 2025, Month: time.March, Half: 1}][alice].TotalMinutes)
}

func TestAggregate_UsesCalculatorTimezone(t *testing.T) {
	alice := uuid.New()
	tokyo, err := period.NewForZone("Asia/Tokyo")
	require.NoError(t, err)
	// 2025-03-15 20:00 UTC is already the 16th in Tokyo.
	entry := completed(alice, time.Date(2025, 3, 15, 20, 0, 0, 0, time.UTC), 30)

	ts := NewAggregationService(tokyo).Aggregate([]domain.TimeEntry{entry}, nil)

	assert.Contains(t, ts, period.ID{Year: 2025, Month: time.March, Half: 2})
}

func TestGroup_ShapeAndOrdering(t *testing.T) {
	// Arrange
	zed, amy, ghost := uuid.New(), uuid.New(), uuid.New()
	team := domain.Team{ID: uuid.New(), Name: "Delivery"}
	zedMember, amyMember, ghostMember := uuid.New(), uuid.New(), uuid.New()
	people := []domain.Profile{
		{UserID: zed, MemberID: zedMember, Name: "Zed", Teams: []domain.Team{team}},
		{UserID: amy, MemberID: amyMember, Name: "Amy"},
	}
	ghostEntry := completed(ghost, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), 10)
	ghostEntry.MemberID = ghostMember
	entries := []domain.TimeEntry{
		completed(zed, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), 60),
		completed(amy, time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC), 75),
		completed(amy, time.Date(2025, 2, 20, 9, 0, 0, 0, time.UTC), 5),
		ghostEntry,
	}

	// Act
	grouped := NewAggregationService(period.New(nil)).Group(entries, people)

	// Assert
	assert.Equal(t, []period.ID{
		{Year: 2025, Month: time.February, Half: 2},
		{Year: 2025, Month: time.March, Half: 1},
	}, grouped.Periods())

	rows := grouped[period.ID{Year: 2025, Month: time.March, Half: 1}]
	require.Len(t, rows, 3)
	assert.Equal(t, "", rows[0].User.Name)
	assert.Equal(t, ghostMember, rows[0].User.Member.ID)
	assert.Equal(t, []string{}, rows[0].User.Groups)
	assert.Equal(t, "Amy", rows[1].User.Name)
	assert.Equal(t, "1h 15m", rows[1].TotalHours)
	assert.Equal(t, amyMember, rows[1].User.Member.ID)
	assert.Equal(t, "Zed", rows[2].User.Name)
	assert.Equal(t, []string{"Delivery"}, rows[2].User.Groups)
}

func TestBoard_SplitsByState(t *testing.T) {
	alice := uuid.New()
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	submitted := completed(alice, start, 30)
	approved := completed(alice, start, 45)
	approved.Approval = domain.ApprovalApproved
	draft := completed(alice, start, 15)
	draft.Approval = domain.ApprovalUnsubmitted

	board := NewAggregationService(period.New(nil)).Board([]domain.TimeEntry{submitted, approved, draft}, nil)

	id := period.ID{Year: 2025, Month: time.March, Half: 1}
	assert.Equal(t, "0h 30m", board.Submitted[id][0].TotalHours)
	assert.Equal(t, "0h 45m", board.Approved[id][0].TotalHours)
	assert.Equal(t, "0h 15m", board.Unsubmitted[id][0].TotalHours)
	assert.Empty(t, board.Rejected)
}
