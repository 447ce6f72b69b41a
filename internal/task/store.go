package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Store owns the ordered task list and keeps the task file in sync with
// it. A Store is not safe for concurrent use.
type Store struct {
	path      string
	tasks     []Task
	logger    *log.Logger
	validator *Validator
	now       func() time.Time
	loadErr   error

	sortOnLoad bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and save events.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithValidator sets the schema the task file is checked against on load.
func WithValidator(v *Validator) Option {
	return func(s *Store) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithClock sets the time source for LastModified.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSortOnLoad makes Load sort the tasks by deadline. The sorted order
// is only written back by the next mutation. If a deadline cannot be
// parsed the file order is kept and the problem is logged.
func WithSortOnLoad(enabled bool) Option {
	return func(s *Store) {
		s.sortOnLoad = enabled
	}
}

// NewStore returns an empty store backed by the file at path. Call Load to
// read the file.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = DefaultValidator()
	}
	return s
}

// Open creates a store for path and loads it.
func Open(path string, opts ...Option) (*Store, error) {
	s := NewStore(path, opts...)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the task file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the task list in current order.
func (s *Store) Tasks() []Task {
	return slices.Clone(s.tasks)
}

// Task returns the task at index, or false if index is out of range.
func (s *Store) Task(index int) (Task, bool) {
	if !s.inRange(index) {
		return Task{}, false
	}
	return s.tasks[index], true
}

// LoadErr returns the problem that caused the last Load to start from an
// empty list, or nil if the file was read cleanly or did not exist.
func (s *Store) LoadErr() error {
	return s.loadErr
}

// Add appends a new task and saves. The store does not check that title
// and description are non-empty.
func (s *Store) Add(title, description, deadline string) error {
	prev := slices.Clone(s.tasks)
	s.tasks = append(s.tasks, Task{
		Title:        title,
		Description:  description,
		Deadline:     deadline,
		LastModified: s.timestamp(),
	})
	return s.commit(prev)
}

// Update applies the non-empty fields of p to the task at index, refreshes
// its LastModified time, and saves. An out-of-range index is ignored.
func (s *Store) Update(index int, p Patch) error {
	if !s.inRange(index) {
		return nil
	}
	prev := slices.Clone(s.tasks)
	s.tasks[index].apply(p, s.timestamp())
	return s.commit(prev)
}

// Delete removes the task at index and saves. Later tasks move down by
// one position. An out-of-range index is ignored.
func (s *Store) Delete(index int) error {
	if !s.inRange(index) {
		return nil
	}
	prev := slices.Clone(s.tasks)
	s.tasks = slices.Delete(s.tasks, index, index+1)
	return s.commit(prev)
}

// List returns the display line of every task in current order.
func (s *Store) List() []string {
	lines := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		lines[i] = t.String()
	}
	return lines
}

// Search returns the display lines of tasks whose title or description
// contains keyword, ignoring case. The empty keyword matches every task.
func (s *Store) Search(keyword string) []string {
	indices := s.Matches(keyword)
	lines := make([]string, len(indices))
	for i, idx := range indices {
		lines[i] = s.tasks[idx].String()
	}
	return lines
}

// Matches returns the positions of the tasks Search would return.
func (s *Store) Matches(keyword string) []int {
	lower := strings.ToLower(keyword)
	indices := make([]int, 0, len(s.tasks))
	for i, t := range s.tasks {
		if t.matches(lower) {
			indices = append(indices, i)
		}
	}
	return indices
}

// SortByDeadline stably sorts tasks by deadline, earliest first, with
// tasks that have no deadline last, and saves the new order. If a deadline
// cannot be parsed the order is left unchanged and a *DeadlineError is
// returned.
func (s *Store) SortByDeadline() error {
	prev := slices.Clone(s.tasks)
	if err := s.sortTasks(); err != nil {
		return err
	}
	return s.commit(prev)
}

// sortTasks reorders the in-memory list without saving it.
func (s *Store) sortTasks() error {
	type keyed struct {
		task  Task
		due   time.Time
		dated bool
	}

	items := make([]keyed, len(s.tasks))
	for i, t := range s.tasks {
		items[i].task = t
		if !t.HasDeadline() {
			continue
		}
		due, err := ParseDeadline(t.Deadline)
		if err != nil {
			return &DeadlineError{Index: i, Value: t.Deadline, Err: err}
		}
		items[i].due = due
		items[i].dated = true
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case a.dated && b.dated:
			return a.due.Compare(b.due)
		case a.dated:
			return -1
		case b.dated:
			return 1
		default:
			return 0
		}
	})

	for i := range items {
		s.tasks[i] = items[i].task
	}
	return nil
}

// Save writes the whole task list to the task file with 2-space
// indentation.
func (s *Store) Save() error {
	records := make([]record, len(s.tasks))
	for i, t := range s.tasks {
		records[i] = toRecord(t)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}

	// Add trailing newline
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create task file directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}

	s.logger.Debug("saved tasks", "path", s.path, "count", len(s.tasks))
	return nil
}

// Load replaces the in-memory list with the contents of the task file.
// A missing file yields an empty list. An unreadable or malformed file
// also yields an empty list; the cause is logged and kept in LoadErr.
// Load only fails when the store has no path.
func (s *Store) Load() error {
	if s.path == "" {
		return errors.New("task file path is empty")
	}

	s.tasks = nil
	s.loadErr = nil

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("task file not found, starting empty", "path", s.path)
			return nil
		}
		s.recoverLoad(fmt.Errorf("read task file: %w", err))
		return nil
	}

	tasks, err := s.decode(data)
	if err != nil {
		s.recoverLoad(err)
		return nil
	}

	s.tasks = tasks
	s.logger.Debug("loaded tasks", "path", s.path, "count", len(tasks))

	if s.sortOnLoad {
		if err := s.sortTasks(); err != nil {
			s.logger.Warn("sort on load skipped", "path", s.path, "err", err)
		}
	}
	return nil
}

// decode validates and converts raw task file contents.
func (s *Store) decode(data []byte) ([]Task, error) {
	if result := s.validator.Validate(data); !result.Valid {
		return nil, fmt.Errorf("invalid task file: %w", result.Err())
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}

	now := s.timestamp()
	tasks := make([]Task, 0, len(records))
	for i, r := range records {
		t, err := fromRecord(r, now)
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("[%d].timestamp", i), Err: err}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *Store) recoverLoad(err error) {
	s.tasks = nil
	s.loadErr = err
	s.logger.Warn("task file unreadable, starting with an empty list", "path", s.path, "err", err)
}

// commit saves the current list, restoring prev if the write fails.
func (s *Store) commit(prev []Task) error {
	if err := s.Save(); err != nil {
		s.tasks = prev
		return err
	}
	return nil
}

func (s *Store) inRange(index int) bool {
	return index >= 0 && index < len(s.tasks)
}

// timestamp returns the current time in UTC without a monotonic reading,
// so it survives a save and load unchanged.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Round(0)
}
