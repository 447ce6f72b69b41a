package task

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DeadlineLayout is the layout of a deadline string (YYYY-MM-DD).
	DeadlineLayout = "2006-01-02"

	// DisplayLayout is the layout used for the last-modified time in
	// display lines.
	DisplayLayout = "2006-01-02 15:04:05"
)

// Task is a single to-do item.
type Task struct {
	Title       string
	Description string
	// Deadline is a YYYY-MM-DD date, or empty when the task has none.
	Deadline     string
	LastModified time.Time
}

// HasDeadline reports whether the task has a deadline set.
func (t Task) HasDeadline() bool {
	return t.Deadline != ""
}

// String formats the task as a display line:
//
//	{title} - {description}[ | Deadline: D] (Last Modified: YYYY-MM-DD HH:MM:SS)
//
// The last-modified time is rendered in local time.
func (t Task) String() string {
	var b strings.Builder
	b.WriteString(t.Title)
	b.WriteString(" - ")
	b.WriteString(t.Description)
	if t.HasDeadline() {
		b.WriteString(" | Deadline: ")
		b.WriteString(t.Deadline)
	}
	fmt.Fprintf(&b, " (Last Modified: %s)", t.LastModified.Local().Format(DisplayLayout))
	return b.String()
}

// matches reports whether the lower-cased keyword occurs in the title or
// the description, ignoring case.
func (t Task) matches(lowerKeyword string) bool {
	return strings.Contains(strings.ToLower(t.Title), lowerKeyword) ||
		strings.Contains(strings.ToLower(t.Description), lowerKeyword)
}

// Patch describes a partial update. Empty fields leave the task unchanged,
// so a deadline can be changed but not cleared through a patch.
type Patch struct {
	Title       string
	Description string
	Deadline    string
}

// IsZero reports whether the patch changes no field.
func (p Patch) IsZero() bool {
	return p.Title == "" && p.Description == "" && p.Deadline == ""
}

// apply copies the non-empty fields of p into t and refreshes
// LastModified.
func (t *Task) apply(p Patch, now time.Time) {
	if p.Title != "" {
		t.Title = p.Title
	}
	if p.Description != "" {
		t.Description = p.Description
	}
	if p.Deadline != "" {
		t.Deadline = p.Deadline
	}
	t.LastModified = now
}
