// Package cmd implements the CLI command structure for taskman.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskman/internal/config"
	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/task"
	"github.com/nibzard/taskman/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries what every subcommand needs.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	logger  *log.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// Run executes the taskman CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskman", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	cfg := cws.Config
	a := &app{
		cfg:     cfg,
		sources: cws,
		logger:  logging.NewFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller),
		stdout:  stdout,
		stderr:  stderr,
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "ls" as default
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	// Execute the subcommand
	switch subcommand {
	case "ls", "list":
		return lsCommand(a, remainingArgs)
	case "add":
		return addCommand(a, remainingArgs)
	case "update", "edit":
		return updateCommand(a, remainingArgs)
	case "rm", "delete":
		return rmCommand(a, remainingArgs)
	case "search":
		return searchCommand(a, remainingArgs)
	case "sort":
		return sortCommand(a, remainingArgs)
	case "tui":
		return tuiCommand(ctx, a, remainingArgs)
	case "doctor":
		return doctorCommand(a, remainingArgs)
	case "config":
		return configCommand(a, remainingArgs)
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openStore loads the configured task file. The logger is used for load
// and save events.
func (a *app) openStore(logger *log.Logger) (*task.Store, error) {
	validator, err := task.NewValidator(a.cfg.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	store, err := task.Open(a.cfg.TaskFile,
		task.WithLogger(logger),
		task.WithValidator(validator),
		task.WithSortOnLoad(a.cfg.SortOnLoad),
	)
	if err != nil {
		return nil, fmt.Errorf("loading task file: %w", err)
	}
	return store, nil
}

// tuiCommand launches the interactive terminal UI.
func tuiCommand(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("taskman tui", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	confirm := fs.Bool("confirm-delete", a.cfg.ConfirmDelete, "Ask before deleting a task")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	// The TUI owns the terminal, so store events are not logged.
	store, err := a.openStore(logging.Discard())
	if err != nil {
		return err
	}
	return ui.RunTUI(ctx, store, ui.WithConfirmDelete(*confirm))
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "taskman version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskman - a single-user task list manager")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskman [global options] [command] [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  ls, list                        List tasks with their index (default command)")
	fmt.Fprintln(w, "  add -d DESC [-due DATE] TITLE   Add a task")
	fmt.Fprintln(w, "  update, edit [-t TITLE] [-d DESC] [-due DATE] INDEX")
	fmt.Fprintln(w, "                                  Change the task at INDEX; omitted fields are kept")
	fmt.Fprintln(w, "  rm, delete INDEX                Delete the task at INDEX")
	fmt.Fprintln(w, "  search KEYWORD                  List tasks whose title or description contains KEYWORD")
	fmt.Fprintln(w, "  sort                            Sort tasks by deadline and save the order")
	fmt.Fprintln(w, "  tui                             Launch terminal UI")
	fmt.Fprintln(w, "  doctor [-v]                     Check config and task file validity")
	fmt.Fprintln(w, "  config [-example|-schema]       Show effective configuration and its sources")
	fmt.Fprintln(w, "  version                         Show version information")
	fmt.Fprintln(w, "  help                            Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Deadlines accept YYYY-MM-DD, today, tomorrow, or +Nd (days from today).")
	fmt.Fprintln(w, "Command options must come before positional arguments.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
