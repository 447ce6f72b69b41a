package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/task"
)

// doctorCommand checks config, schema, and task file validity. It never
// writes the task file.
func doctorCommand(a *app, args []string) error {
	// Parse doctor-specific flags
	flags := flag.NewFlagSet("taskman doctor", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	verbose := flags.Bool("v", false, "Verbose output")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	w := a.stdout
	cfg := a.cfg

	fmt.Fprintln(w, "Taskman Doctor")
	fmt.Fprintln(w, "==============")
	fmt.Fprintln(w)

	allOK := true

	// Check project root
	fmt.Fprintf(w, "Project root: %s\n", cfg.ProjectRoot)
	if _, err := os.Stat(cfg.ProjectRoot); err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	// Check config
	fmt.Fprintln(w, "Config:")
	if len(a.sources.Files) == 0 {
		fmt.Fprintln(w, "  ✅ No config file (using defaults)")
	}
	for _, f := range a.sources.Files {
		fmt.Fprintf(w, "  ✅ Loaded %s\n", f)
	}
	if logging.ValidLevel(cfg.LogLevel) {
		fmt.Fprintf(w, "  ✅ Log level: %s\n", cfg.LogLevel)
	} else {
		fmt.Fprintf(w, "  ❌ Log level: %s (expected debug|info|warn|error|fatal)\n", cfg.LogLevel)
		allOK = false
	}
	if logging.ValidFormat(cfg.LogFormat) {
		fmt.Fprintf(w, "  ✅ Log format: %s\n", cfg.LogFormat)
	} else {
		fmt.Fprintf(w, "  ❌ Log format: %s (expected text|json|logfmt)\n", cfg.LogFormat)
		allOK = false
	}
	fmt.Fprintln(w)

	// Check schema
	schemaLabel := cfg.SchemaFile
	if schemaLabel == "" {
		schemaLabel = "(built-in)"
	}
	fmt.Fprintf(w, "Schema: %s\n", schemaLabel)
	validator, err := task.NewValidator(cfg.SchemaFile)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		fmt.Fprintln(w)
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
		fmt.Fprintln(w)
		if !checkTaskFile(w, cfg.TaskFile, validator, *verbose) {
			allOK = false
		}
	}

	// Overall status
	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed. Tasks in an invalid file are dropped on the next change.")
	return fmt.Errorf("doctor checks failed")
}

// checkTaskFile reports on the task file and returns false if it would not
// load cleanly.
func checkTaskFile(w io.Writer, path string, validator *task.Validator, verbose bool) bool {
	fmt.Fprintf(w, "Task file: %s\n", path)
	defer fmt.Fprintln(w)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(w, "  ⚠️  Not found (created on the first change)")
			return true
		}
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		return false
	}
	if info.IsDir() {
		fmt.Fprintln(w, "  ❌ Error: path is a directory")
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		return false
	}
	fmt.Fprintln(w, "  ✅ OK")

	result := validator.Validate(data)
	if !result.Valid {
		fmt.Fprintln(w, "  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "     - %v\n", e)
		}
		return false
	}

	store := task.NewStore(path, task.WithValidator(validator), task.WithLogger(logging.Discard()))
	if err := store.Load(); err != nil {
		fmt.Fprintf(w, "  ❌ Load error: %v\n", err)
		return false
	}
	if err := store.LoadErr(); err != nil {
		fmt.Fprintf(w, "  ❌ Load error: %v\n", err)
		return false
	}
	fmt.Fprintln(w, "  ✅ Valid")

	ok := true
	for i, t := range store.Tasks() {
		if !t.HasDeadline() {
			continue
		}
		if _, err := task.ParseDeadline(t.Deadline); err != nil {
			fmt.Fprintf(w, "  ❌ %v\n", &task.DeadlineError{Index: i, Value: t.Deadline, Err: err})
			ok = false
		}
	}
	if ok {
		fmt.Fprintln(w, "  ✅ Deadlines sortable")
	}

	if verbose {
		fmt.Fprintf(w, "  Tasks: %d\n", store.Len())
		for i, line := range store.List() {
			fmt.Fprintf(w, "    %d. %s\n", i, line)
		}
	}
	return ok
}
