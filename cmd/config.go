package cmd

import (
	"flag"
	"fmt"

	"github.com/nibzard/taskman/internal/config"
	"github.com/nibzard/taskman/internal/task"
)

// configCommand prints the effective configuration and where each value
// came from. With -example it prints an example config file, and with
// -schema the built-in task file schema.
func configCommand(a *app, args []string) error {
	fs := flag.NewFlagSet("taskman config", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	example := fs.Bool("example", false, "Print an example config file")
	schema := fs.Bool("schema", false, "Print the built-in task file schema")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := a.stdout
	if *example {
		fmt.Fprint(w, config.ExampleConfig())
		return nil
	}
	if *schema {
		fmt.Fprint(w, task.BuiltinSchema())
		return nil
	}

	fmt.Fprintln(w, "Config files:")
	if len(a.sources.Files) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, f := range a.sources.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Effective configuration:")
	for _, field := range config.Fields() {
		fmt.Fprintf(w, "  %-15s %s (%s)\n", field, a.cfg.Value(field), a.sources.Sources[field])
	}
	return nil
}
