package sqlstore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// dbTimeLayout is fixed width so that stored values sort chronologically as text
const dbTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimeForDB formats a time.Time value in UTC for consistent database storage
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}

// FormatTimePtrForDB formats a *time.Time value, returning nil if the pointer is nil
func FormatTimePtrForDB(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTimeForDB(*t)
}

// ParseTimeFromDB parses a stored timestamp
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// ParseNullTimeFromDB parses a nullable stored timestamp
func ParseNullTimeFromDB(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := ParseTimeFromDB(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatTagsForDB encodes tags as a JSON array
func FormatTagsForDB(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

// ParseTagsFromDB decodes a JSON array of tags
func ParseTagsFromDB(s string) ([]string, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}
