// Package ui provides the interactive terminal interface for the task list.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskman/internal/task"
	"github.com/nibzard/taskman/internal/utils"
)

// Status messages shown for rejected actions.
const (
	msgFieldsRequired = "Both title and description are required."
	msgSelectUpdate   = "Select a task to update."
	msgSelectDelete   = "Select a task to delete."
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	confirmDelete bool
	now           func() time.Time
}

// WithConfirmDelete asks for confirmation before a task is deleted.
func WithConfirmDelete(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.confirmDelete = enabled
	}
}

// WithClock sets the time used to resolve relative deadlines.
func WithClock(now func() time.Time) TUIOption {
	return func(c *tuiConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// RunTUI runs the task manager on the terminal until the user quits or
// ctx is cancelled.
func RunTUI(ctx context.Context, store *task.Store, opts ...TUIOption) error {
	if !utils.IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := NewModel(store, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeSearch
	modeConfirmDelete
)

// Form field positions.
const (
	fieldTitle = iota
	fieldDescription
	fieldDeadline
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Deadline"}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	labelStyle    = lipgloss.NewStyle().Width(13)
)

// Model is the bubbletea model for the task manager. Rows hold store
// positions, so a filtered view still addresses the right task.
type Model struct {
	store *task.Store
	cfg   tuiConfig

	mode     mode
	rows     []int
	cursor   int
	query    string
	search   textinput.Model
	inputs   [fieldCount]textinput.Model
	focus    int
	editing  int // store index being edited, -1 when adding
	pending  int // store index awaiting delete confirmation
	status   string
	isError  bool
	showHelp bool
	width    int
}

// NewModel returns a model over store.
func NewModel(store *task.Store, opts ...TUIOption) *Model {
	cfg := tuiConfig{confirmDelete: true, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "keyword"
	search.CharLimit = 256

	m := &Model{
		store:   store,
		cfg:     cfg,
		search:  search,
		editing: -1,
		pending: -1,
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 512
		ti.Width = 48
		m.inputs[i] = ti
	}
	m.inputs[fieldDeadline].Placeholder = "YYYY-MM-DD, today, tomorrow, +3d"

	if err := store.LoadErr(); err != nil {
		m.setError(fmt.Sprintf("Task file could not be read, starting empty: %v", err))
	} else {
		m.setStatus("Press a to add, e to edit, d to delete, / to search, ? for help.")
	}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.search.Width = max(msg.Width-10, 10)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(m.rows)-1, 0)
	case "a":
		return m, m.openForm(-1)
	case "e", "enter":
		index, ok := m.selected()
		if !ok {
			m.setError(msgSelectUpdate)
			return m, nil
		}
		return m, m.openForm(index)
	case "d", "delete":
		index, ok := m.selected()
		if !ok {
			m.setError(msgSelectDelete)
			return m, nil
		}
		if !m.cfg.confirmDelete {
			m.deleteTask(index)
			return m, nil
		}
		t, _ := m.store.Task(index)
		m.pending = index
		m.mode = modeConfirmDelete
		m.setStatus(fmt.Sprintf("Delete %q? y/n", t.Title))
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case "esc":
		if m.query != "" {
			m.query = ""
			m.refresh()
			m.setStatus("Search cleared.")
		}
	case "s":
		if err := m.store.SortByDeadline(); err != nil {
			m.setError(fmt.Sprintf("Sort failed: %v", err))
			return m, nil
		}
		m.refresh()
		m.setStatus("Sorted by deadline.")
	case "r":
		if err := m.store.Load(); err != nil {
			m.setError(fmt.Sprintf("Reload failed: %v", err))
			return m, nil
		}
		m.refresh()
		if err := m.store.LoadErr(); err != nil {
			m.setError(fmt.Sprintf("Task file could not be read, starting empty: %v", err))
		} else {
			m.setStatus(fmt.Sprintf("Reloaded %d tasks.", m.store.Len()))
		}
	case "?", "h":
		m.showHelp = true
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.setStatus("Cancelled.")
		return m, nil
	case "tab", "down":
		return m, m.focusField((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case "enter":
		m.submitForm()
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.mode = modeList
		if m.query != "" {
			m.setStatus(fmt.Sprintf("%d matching tasks.", len(m.rows)))
		}
		return m, nil
	case "esc":
		m.search.Blur()
		m.search.SetValue("")
		m.query = ""
		m.mode = modeList
		m.refresh()
		m.setStatus("Search cleared.")
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := strings.TrimSpace(m.search.Value()); q != m.query {
		m.query = q
		m.refresh()
	}
	return m, cmd
}

func (m *Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	index := m.pending
	m.pending = -1
	m.mode = modeList

	switch msg.String() {
	case "y", "Y":
		m.deleteTask(index)
	default:
		m.setStatus("Delete cancelled.")
	}
	return m, nil
}

// openForm switches to the form for adding (index -1) or editing a task.
func (m *Model) openForm(index int) tea.Cmd {
	m.editing = index
	m.mode = modeForm
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	if t, ok := m.store.Task(index); ok {
		m.inputs[fieldTitle].SetValue(t.Title)
		m.inputs[fieldDescription].SetValue(t.Description)
		m.inputs[fieldDeadline].SetValue(t.Deadline)
		m.setStatus("Edit the fields and press enter. Empty fields keep their value.")
	} else {
		m.setStatus("Fill in the fields and press enter.")
	}
	return m.focusField(fieldTitle)
}

func (m *Model) closeForm() {
	for i := range m.inputs {
		m.inputs[i].Blur()
		m.inputs[i].SetValue("")
	}
	m.focus = fieldTitle
	m.editing = -1
	m.mode = modeList
}

func (m *Model) focusField(field int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = field
	m.inputs[field].CursorEnd()
	return m.inputs[field].Focus()
}

func (m *Model) submitForm() {
	title := strings.TrimSpace(m.inputs[fieldTitle].Value())
	description := strings.TrimSpace(m.inputs[fieldDescription].Value())
	deadline, err := task.NormalizeDeadline(m.inputs[fieldDeadline].Value(), m.cfg.now())
	if err != nil {
		m.setError(fmt.Sprintf("Invalid deadline: %v", err))
		return
	}

	if m.editing < 0 {
		if title == "" || description == "" {
			m.setError(msgFieldsRequired)
			return
		}
		if err := m.store.Add(title, description, deadline); err != nil {
			m.setError(fmt.Sprintf("Save failed: %v", err))
			return
		}
		m.closeForm()
		m.refresh()
		m.selectIndex(m.store.Len() - 1)
		m.setStatus(fmt.Sprintf("Added %q.", title))
		return
	}

	index := m.editing
	patch := task.Patch{Title: title, Description: description, Deadline: deadline}
	if err := m.store.Update(index, patch); err != nil {
		m.setError(fmt.Sprintf("Save failed: %v", err))
		return
	}
	m.closeForm()
	m.refresh()
	m.selectIndex(index)
	m.setStatus("Task updated.")
}

func (m *Model) deleteTask(index int) {
	t, ok := m.store.Task(index)
	if !ok {
		m.setError(msgSelectDelete)
		return
	}
	if err := m.store.Delete(index); err != nil {
		m.setError(fmt.Sprintf("Delete failed: %v", err))
		return
	}
	m.refresh()
	m.setStatus(fmt.Sprintf("Deleted %q.", t.Title))
}

// refresh rebuilds the visible rows from the store and the current query.
func (m *Model) refresh() {
	m.rows = m.store.Matches(m.query)
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

// selected returns the store index under the cursor.
func (m *Model) selected() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return 0, false
	}
	return m.rows[m.cursor], true
}

// selectIndex moves the cursor to the row showing store index, if visible.
func (m *Model) selectIndex(index int) {
	for i, row := range m.rows {
		if row == index {
			m.cursor = i
			return
		}
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.isError = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.isError = true
}

func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b, m.store.Path())

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	switch m.mode {
	case modeForm:
		m.writeForm(&b)
	default:
		m.writeList(&b)
	}

	m.writeStatus(&b)
	writeFooter(&b, m.mode)
	return b.String()
}

func writeTitle(b *strings.Builder, path string) {
	b.WriteString(titleStyle.Render("Task Manager"))
	b.WriteString("  " + dimStyle.Render(path) + "\n\n")
}

func (m *Model) writeList(b *strings.Builder) {
	if m.mode == modeSearch {
		b.WriteString(m.search.View() + "\n\n")
	} else if m.query != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Filter: %q (esc to clear)", m.query)) + "\n\n")
	}

	if len(m.rows) == 0 {
		if m.query != "" {
			b.WriteString("  No matching tasks.\n\n")
		} else {
			b.WriteString("  No tasks yet. Press a to add one.\n\n")
		}
		return
	}

	for i, index := range m.rows {
		t, _ := m.store.Task(index)
		line := fmt.Sprintf("%3d. %s", index, t.String())
		if m.width > 4 {
			line = utils.Truncate(line, m.width-4)
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m *Model) writeForm(b *strings.Builder) {
	heading := "New Task"
	if m.editing >= 0 {
		heading = fmt.Sprintf("Edit Task %d", m.editing)
	}
	b.WriteString(heading + "\n\n")
	for i := range m.inputs {
		marker := "  "
		if i == m.focus {
			marker = "> "
		}
		b.WriteString(marker + labelStyle.Render(fieldLabels[i]+":") + m.inputs[i].View() + "\n")
	}
	b.WriteString("\n")
}

func (m *Model) writeStatus(b *strings.Builder) {
	if m.status == "" {
		return
	}
	if m.isError {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/k, down/j   Move selection\n")
	b.WriteString("  g, G           First / last task\n")
	b.WriteString("  a              Add a task\n")
	b.WriteString("  e, enter       Edit the selected task\n")
	b.WriteString("  d, delete      Delete the selected task\n")
	b.WriteString("  /              Search title and description\n")
	b.WriteString("  esc            Clear search\n")
	b.WriteString("  s              Sort by deadline\n")
	b.WriteString("  r              Reload the task file\n")
	b.WriteString("  ?, h           Toggle this help screen\n")
	b.WriteString("  q, ctrl+c      Quit\n\n")
	b.WriteString("In the form: tab/shift+tab to move, enter to save, esc to cancel.\n")
	b.WriteString("Deadlines accept YYYY-MM-DD, today, tomorrow, or +Nd.\n\n")
	b.WriteString("Press any key to close help\n")
}

func writeFooter(b *strings.Builder, mode mode) {
	switch mode {
	case modeForm:
		b.WriteString(dimStyle.Render("tab next field | enter save | esc cancel"))
	case modeSearch:
		b.WriteString(dimStyle.Render("type to filter | enter keep filter | esc clear"))
	case modeConfirmDelete:
		b.WriteString(dimStyle.Render("y delete | any other key cancel"))
	default:
		b.WriteString(dimStyle.Render("Press ? for help | q to quit"))
	}
	b.WriteString("\n")
}
