package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskman configuration file
# Values can be overridden by TASKMAN_* environment variables or CLI flags

# Task file (relative to the working directory; supports ~ and $VAR)
task_file = "tasks.json"

# JSON Schema used to validate the task file on load.
# Leave empty to use the built-in schema.
# schema_file = "tasks.schema.json"

# Sort tasks by deadline right after loading (the sorted order is saved)
sort_on_load = false

# Ask before deleting a task in the terminal UI
confirm_delete = true

# Logging: level is debug, info, warn, or error; format is text, json, or logfmt
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
`
}
