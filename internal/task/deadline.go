package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DeadlineError reports a task whose deadline is not a YYYY-MM-DD date.
type DeadlineError struct {
	Index int    // Position of the task in the list
	Value string // The offending deadline
	Err   error  // Underlying parse error
}

func (e *DeadlineError) Error() string {
	return fmt.Sprintf("task %d: invalid deadline %q: %s", e.Index, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeadlineError) Unwrap() error {
	return e.Err
}

// ParseDeadline parses a YYYY-MM-DD deadline.
func ParseDeadline(s string) (time.Time, error) {
	return time.Parse(DeadlineLayout, s)
}

// NormalizeDeadline turns user input into a YYYY-MM-DD deadline, relative
// to now. It accepts:
//
//   - "" (no deadline, returned unchanged)
//   - a YYYY-MM-DD date
//   - "today" or "tomorrow"
//   - "+Nd" for N days from now
func NormalizeDeadline(input string, now time.Time) (string, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "":
		return "", nil
	case "today":
		return now.Format(DeadlineLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(DeadlineLayout), nil
	}

	if strings.HasPrefix(s, "+") && strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(s[1 : len(s)-1])
		if err != nil || days < 0 {
			return "", fmt.Errorf("invalid relative deadline %q, expected +Nd", input)
		}
		return now.AddDate(0, 0, days).Format(DeadlineLayout), nil
	}

	d, err := ParseDeadline(s)
	if err != nil {
		return "", fmt.Errorf("invalid deadline %q, expected YYYY-MM-DD", input)
	}
	return d.Format(DeadlineLayout), nil
}
