// Package export writes detailed time entry reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"timesheet/internal/services"
)

// Header is the column set of the detailed CSV export
var Header = []string{
	"Project",
	"Client",
	"Description",
	"Task",
	"User",
	"Organization",
	"Email",
	"Tags",
	"Billable",
	"Start Date",
	"Start Time",
	"End Date",
	"End Time",
	"Duration (h)",
	"Duration (decimal)",
	"Approval",
}

// Options controls how dates and times are rendered
type Options struct {
	DateFormat string
	TimeFormat string
	Location   *time.Location
}

// CSVWriter renders detailed entries as CSV
type CSVWriter struct {
	opts Options
}

// NewCSVWriter creates a writer. Empty formats fall back to ISO dates and
// 24-hour times, and a nil location to UTC.
func NewCSVWriter(opts Options) *CSVWriter {
	if opts.DateFormat == "" {
		opts.DateFormat = time.DateOnly
	}
	if opts.TimeFormat == "" {
		opts.TimeFormat = time.TimeOnly
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &CSVWriter{opts: opts}
}

// Write writes the header and one row per entry to out
func (w *CSVWriter) Write(out io.Writer, entries []services.DetailedEntry) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, entry := range entries {
		if err := writer.Write(w.row(entry)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (w *CSVWriter) row(d services.DetailedEntry) []string {
	e := d.Entry
	start := e.Start.In(w.opts.Location)

	var endDate, endTime, hours, decimal string
	if e.End != nil {
		end := e.End.In(w.opts.Location)
		endDate = end.Format(w.opts.DateFormat)
		endTime = end.Format(w.opts.TimeFormat)
		minutes := e.DurationMinutes()
		hours = FormatHours(minutes)
		decimal = fmt.Sprintf("%.2f", float64(minutes)/60)
	}

	billable := "No"
	if e.Billable {
		billable = "Yes"
	}

	return []string{
		d.Project,
		d.Client,
		e.Description,
		d.Task,
		d.UserName,
		d.Organization,
		d.UserEmail,
		strings.Join(e.Tags, ", "),
		billable,
		start.Format(w.opts.DateFormat),
		start.Format(w.opts.TimeFormat),
		endDate,
		endTime,
		hours,
		decimal,
		string(e.Approval),
	}
}

// FormatHours renders minutes as H:MM
func FormatHours(minutes int64) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}
