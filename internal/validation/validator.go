package validation

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Limits bounds what a single request may carry
type Limits struct {
	MaxBatchSize         int
	MaxEntryDuration     time.Duration
	DescriptionMaxLength int
	MaxTags              int
}

// DefaultLimits returns the limits used when no configuration is supplied
func DefaultLimits() Limits {
	return Limits{
		MaxBatchSize:         500,
		MaxEntryDuration:     24 * time.Hour,
		DescriptionMaxLength: 500,
		MaxTags:              20,
	}
}

// Validator provides common validation utilities
type Validator struct {
	limits Limits
	now    func() time.Time
}

// NewValidator creates a validator with the default limits
func NewValidator() *Validator {
	return NewValidatorWithLimits(DefaultLimits())
}

// NewValidatorWithLimits creates a validator with the given limits. Zero
// fields fall back to the defaults.
func NewValidatorWithLimits(limits Limits) *Validator {
	defaults := DefaultLimits()
	if limits.MaxBatchSize <= 0 {
		limits.MaxBatchSize = defaults.MaxBatchSize
	}
	if limits.MaxEntryDuration <= 0 {
		limits.MaxEntryDuration = defaults.MaxEntryDuration
	}
	if limits.DescriptionMaxLength <= 0 {
		limits.DescriptionMaxLength = defaults.DescriptionMaxLength
	}
	if limits.MaxTags <= 0 {
		limits.MaxTags = defaults.MaxTags
	}
	return &Validator{limits: limits, now: time.Now}
}

// Limits returns the effective limits
func (v *Validator) Limits() Limits {
	return v.limits
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsWithinLength checks that s has at most max runes
func (v *Validator) IsWithinLength(s string, max int) bool {
	return utf8.RuneCountInString(s) <= max
}

// IsValidTimeRange checks if start time is before end time
func (v *Validator) IsValidTimeRange(startTime time.Time, endTime *time.Time) bool {
	if endTime == nil {
		return true
	}
	return startTime.Before(*endTime)
}

// IsValidDuration checks if a duration is positive and within the entry limit
func (v *Validator) IsValidDuration(duration time.Duration) bool {
	return duration > 0 && duration <= v.limits.MaxEntryDuration
}

// IsReasonableDate checks if a date lies between ten years ago and one year ahead
func (v *Validator) IsReasonableDate(t time.Time) bool {
	now := v.now()
	return t.After(now.AddDate(-10, 0, 0)) && t.Before(now.AddDate(1, 0, 0))
}

// IsValidDateRange checks if a date range is logical. Open ends are valid.
func (v *Validator) IsValidDateRange(startTime, endTime *time.Time) bool {
	if startTime == nil || endTime == nil {
		return true
	}
	return !endTime.Before(*startTime)
}
