package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nibzard/taskman/internal/task"
)

var (
	errFieldsRequired = errors.New("both title and description are required")
	errSelectUpdate   = errors.New("select a task to update")
	errSelectDelete   = errors.New("select a task to delete")
)

// lsCommand prints every task with its index.
func lsCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("taskman ls", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	store, err := a.openStore(a.logger)
	if err != nil {
		return err
	}
	printRows(a.stdout, store.List(), nil, "No tasks.")
	return nil
}

// addCommand appends a task. The title is the remaining arguments joined
// with spaces.
func addCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("taskman add", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	description := fs.String("d", "", "Task description (required)")
	due := fs.String("due", "", "Deadline: YYYY-MM-DD, today, tomorrow, or +Nd")
	if err := fs.Parse(args); err != nil {
		return err
	}

	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	desc := strings.TrimSpace(*description)
	if title == "" || desc == "" {
		return errFieldsRequired
	}
	deadline, err := task.NormalizeDeadline(*due, time.Now())
	if err != nil {
		return err
	}

	store, err := a.openStore(a.logger)
	if err != nil {
		return err
	}
	if err := store.Add(title, desc, deadline); err != nil {
		return fmt.Errorf("adding task: %w", err)
	}

	index := store.Len() - 1
	t, _ := store.Task(index)
	fmt.Fprintf(a.stdout, "Added %d. %s\n", index, t)
	return nil
}

// updateCommand patches the task at INDEX. Fields that are not given keep
// their value.
func updateCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("taskman update", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	title := fs.String("t", "", "New title")
	description := fs.String("d", "", "New description")
	due := fs.String("due", "", "New deadline: YYYY-MM-DD, today, tomorrow, or +Nd")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := a.openStore(a.logger)
	if err != nil {
		return err
	}
	index, err := parseIndex(fs.Args(), store, errSelectUpdate)
	if err != nil {
		return err
	}
	deadline, err := task.NormalizeDeadline(*due, time.Now())
	if err != nil {
		return err
	}

	patch := task.Patch{
		Title:       strings.TrimSpace(*title),
		Description: strings.TrimSpace(*description),
		Deadline:    deadline,
	}
	if err := store.Update(index, patch); err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	t, _ := store.Task(index)
	fmt.Fprintf(a.stdout, "Updated %d. %s\n", index, t)
	return nil
}

// rmCommand deletes the task at INDEX.
func rmCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("taskman rm", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := a.openStore(a.logger)
	if err != nil {
		return err
	}
	index, err := parseIndex(fs.Args(), store, errSelectDelete)
	if err != nil {
		return err
	}

	t, _ := store.Task(index)
	if err := store.Delete(index); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	fmt.Fprintf(a.stdout, "Deleted %d. %s\n", index, t)
	return nil
}

// searchCommand prints the tasks whose title or description contains the
// keyword, with their index in the full list.
func searchCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("taskman search", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := a.openStore(a.logger)
	if err != nil {
		return err
	}
	keyword := strings.Join(fs.Args(), " ")
	printRows(a.stdout, store.Search(keyword), store.Matches(keyword), "No matching tasks.")
	return nil
}

// sortCommand sorts by deadline, saves, and prints the new order.
func sortCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("taskman sort", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	store, err := a.openStore(a.logger)
	if err != nil {
		return err
	}
	if err := store.SortByDeadline(); err != nil {
		return fmt.Errorf("sorting tasks: %w", err)
	}
	printRows(a.stdout, store.List(), nil, "No tasks.")
	return nil
}

// parseIndex reads the single INDEX argument. A missing, malformed, or
// out-of-range index returns noSelection.
func parseIndex(args []string, store *task.Store, noSelection error) (int, error) {
	if len(args) == 0 {
		return 0, noSelection
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid index %q", noSelection, args[0])
	}
	if _, ok := store.Task(index); !ok {
		return 0, fmt.Errorf("%w: index %d is out of range (%d tasks)", noSelection, index, store.Len())
	}
	return index, nil
}

// printRows prints lines prefixed with their index. When indices is nil the
// line position is used.
func printRows(w io.Writer, lines []string, indices []int, empty string) {
	if len(lines) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for i, line := range lines {
		index := i
		if indices != nil {
			index = indices[i]
		}
		fmt.Fprintf(w, "%d. %s\n", index, line)
	}
}
