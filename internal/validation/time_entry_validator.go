package validation

import (
	"strings"
	"time"

	"timesheet/internal/domain"
)

// TimeEntryValidator provides validation for time entry operations
type TimeEntryValidator struct {
	validator *Validator
}

// NewTimeEntryValidator creates a time entry validator with the default limits
func NewTimeEntryValidator() *TimeEntryValidator {
	return NewTimeEntryValidatorWithLimits(DefaultLimits())
}

// NewTimeEntryValidatorWithLimits creates a time entry validator with the given limits
func NewTimeEntryValidatorWithLimits(limits Limits) *TimeEntryValidator {
	return &TimeEntryValidator{validator: NewValidatorWithLimits(limits)}
}

// ValidateTimeEntry validates the member-editable fields of an entry
func (tev *TimeEntryValidator) ValidateTimeEntry(entry domain.TimeEntry) error {
	ve := NewValidationError()
	limits := tev.validator.Limits()

	if entry.Start.IsZero() {
		ve.AddRequiredError("start")
	} else if !tev.validator.IsReasonableDate(entry.Start) {
		ve.AddInvalidValueError("start", entry.Start, "must be within reasonable date range")
	}

	if entry.End != nil && !entry.Start.IsZero() {
		if entry.End.Before(entry.Start) {
			ve.AddInvalidRangeError("end", map[string]time.Time{
				"start": entry.Start,
				"end":   *entry.End,
			}, "end time must not be before start time")
		} else if d := entry.End.Sub(entry.Start); d > limits.MaxEntryDuration {
			ve.AddInvalidValueError("duration", d, "must be at most "+limits.MaxEntryDuration.String())
		}
	}

	if !tev.validator.IsWithinLength(entry.Description, limits.DescriptionMaxLength) {
		ve.AddInvalidLengthError("description", entry.Description, limits.DescriptionMaxLength)
	}

	if len(entry.Tags) > limits.MaxTags {
		ve.AddTooManyError("tags", len(entry.Tags), limits.MaxTags)
	}
	for _, tag := range entry.Tags {
		if !tev.validator.IsNonEmptyString(tag) {
			ve.AddInvalidValueError("tags", tag, "tags must not be blank")
			break
		}
	}

	if entry.BillableRate != nil && *entry.BillableRate < 0 {
		ve.AddInvalidValueError("billable_rate", *entry.BillableRate, "must not be negative")
	}

	if !entry.Approval.Valid() {
		ve.AddInvalidValueError("approval", string(entry.Approval), "unknown approval state")
	}

	return ve.Err()
}

// ValidateSearchOptions validates a date range filter
func (tev *TimeEntryValidator) ValidateSearchOptions(opts domain.SearchOptions) error {
	ve := NewValidationError()
	if !tev.validator.IsValidDateRange(opts.StartTime, opts.EndTime) {
		ve.AddInvalidRangeError("date_range", map[string]any{
			"start": opts.StartTime,
			"end":   opts.EndTime,
		}, "end time must be after or equal to start time")
	}
	for _, state := range opts.Approvals {
		if !state.Valid() {
			ve.AddInvalidValueError("approval", string(state), "unknown approval state")
		}
	}
	return ve.Err()
}

// NormalizeTags trims tags, drops blanks and removes duplicates in order
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
