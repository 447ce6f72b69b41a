package task

import (
	"fmt"
	"time"
)

// record is the on-disk shape of a task.
type record struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Deadline    *string `json:"deadline"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

// timestampLayouts are tried in order when reading a timestamp. Layouts
// without an offset are interpreted in local time. Fractional seconds are
// accepted after the seconds field by every layout.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func toRecord(t Task) record {
	r := record{
		Title:       t.Title,
		Description: t.Description,
		Timestamp:   t.LastModified.UTC().Format(time.RFC3339Nano),
	}
	if t.HasDeadline() {
		deadline := t.Deadline
		r.Deadline = &deadline
	}
	return r
}

// fromRecord converts a decoded record into a Task. now is used when the
// record carries no timestamp.
func fromRecord(r record, now time.Time) (Task, error) {
	t := Task{
		Title:        r.Title,
		Description:  r.Description,
		LastModified: now,
	}
	// An empty string means no deadline, the same as null.
	if r.Deadline != nil && *r.Deadline != "" {
		t.Deadline = *r.Deadline
	}
	if r.Timestamp != "" {
		ts, err := parseTimestamp(r.Timestamp)
		if err != nil {
			return Task{}, err
		}
		t.LastModified = ts
	}
	return t, nil
}

// parseTimestamp parses an ISO-8601 date-time and returns it in UTC.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		var (
			ts  time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			ts, err = time.Parse(layout, s)
		} else {
			ts, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
