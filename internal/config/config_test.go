// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
)

// isolate points HOME and the OS config directory at empty temp dirs,
// clears TASKMAN_* variables, and changes into a fresh project directory.
// It returns the home and project directories.
func isolate(t *testing.T) (home, project string) {
	t.Helper()

	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{
		"TASKMAN_FILE",
		"TASKMAN_SCHEMA",
		"TASKMAN_SORT_ON_LOAD",
		"TASKMAN_CONFIRM_DELETE",
		"TASKMAN_LOG_LEVEL",
		"TASKMAN_LOG_FORMAT",
		"TASKMAN_LOG_TIMESTAMPS",
		"TASKMAN_LOG_CALLER",
	} {
		t.Setenv(name, "")
	}

	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
	t.Setenv("PWD", dir)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	return home, wd
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	want := &Config{
		TaskFile:      DefaultTaskFile,
		ConfirmDelete: true,
		LogLevel:      "info",
		LogFormat:     "text",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaults(t *testing.T) {
	_, project := isolate(t)

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}

	cfg := cws.Config
	if cfg.ProjectRoot != project {
		t.Errorf("ProjectRoot: got %q, want %q", cfg.ProjectRoot, project)
	}
	if want := filepath.Join(project, "tasks.json"); cfg.TaskFile != want {
		t.Errorf("TaskFile: got %q, want %q", cfg.TaskFile, want)
	}
	if cfg.SchemaFile != "" {
		t.Errorf("SchemaFile: got %q, want empty", cfg.SchemaFile)
	}
	if len(cws.Files) != 0 {
		t.Errorf("Files: got %v, want none", cws.Files)
	}
	for _, field := range Fields() {
		if cws.Sources[field] != SourceDefault {
			t.Errorf("source of %s: got %q, want %q", field, cws.Sources[field], SourceDefault)
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TASKMAN_FILE", "custom-tasks.json")
	t.Setenv("TASKMAN_SCHEMA", "custom.schema.json")
	t.Setenv("TASKMAN_SORT_ON_LOAD", "yes")
	t.Setenv("TASKMAN_CONFIRM_DELETE", "0")
	t.Setenv("TASKMAN_LOG_LEVEL", "debug")
	t.Setenv("TASKMAN_LOG_FORMAT", "json")
	t.Setenv("TASKMAN_LOG_TIMESTAMPS", "true")
	t.Setenv("TASKMAN_LOG_CALLER", "on")

	cfg := &Config{}
	setDefaults(cfg)
	sources := make(map[string]ConfigSource)
	loadFromEnv(cfg, sources)

	want := &Config{
		TaskFile:      "custom-tasks.json",
		SchemaFile:    "custom.schema.json",
		SortOnLoad:    true,
		ConfirmDelete: false,
		LogLevel:      "debug",
		LogFormat:     "json",
		LogTimestamps: true,
		LogCaller:     true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("env config mismatch (-want +got):\n%s", diff)
	}
	for _, field := range Fields() {
		if sources[field] != SourceEnv {
			t.Errorf("source of %s: got %q, want %q", field, sources[field], SourceEnv)
		}
	}
}

func TestLoadFromEnvIgnoresEmpty(t *testing.T) {
	t.Setenv("TASKMAN_FILE", "")
	t.Setenv("TASKMAN_CONFIRM_DELETE", "")

	cfg := &Config{}
	setDefaults(cfg)
	sources := make(map[string]ConfigSource)
	loadFromEnv(cfg, sources)

	if cfg.TaskFile != DefaultTaskFile {
		t.Errorf("TaskFile: got %q, want %q", cfg.TaskFile, DefaultTaskFile)
	}
	if !cfg.ConfirmDelete {
		t.Error("ConfirmDelete: got false, want true")
	}
	if len(sources) != 0 {
		t.Errorf("sources: got %v, want none", sources)
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "taskman.toml")
	writeFile(t, configFile, `task_file = "custom.json"
sort_on_load = true
log_level = "warn"
`)

	cfg := &Config{}
	setDefaults(cfg)
	sources := make(map[string]ConfigSource)
	if err := loadConfigFile(cfg, configFile, sources, SourceProjFile); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if cfg.TaskFile != "custom.json" {
		t.Errorf("TaskFile: got %q, want custom.json", cfg.TaskFile)
	}
	if !cfg.SortOnLoad {
		t.Error("SortOnLoad: got false, want true")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel: got %q, want warn", cfg.LogLevel)
	}
	// Keys absent from the file keep their defaults.
	if cfg.LogFormat != DefaultLogFormat {
		t.Errorf("LogFormat: got %q, want %q", cfg.LogFormat, DefaultLogFormat)
	}

	wantSources := map[string]ConfigSource{
		"task_file":    SourceProjFile,
		"sort_on_load": SourceProjFile,
		"log_level":    SourceProjFile,
	}
	if diff := cmp.Diff(wantSources, sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "task_file = \"a.json\"\ncolor = \"red\"\n", "unknown config keys"},
		{"wrong type", "sort_on_load = \"sometimes\"\n", ""},
		{"syntax error", "task_file = \n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "taskman.toml")
			writeFile(t, path, tt.content)

			cfg := &Config{}
			setDefaults(cfg)
			err := loadConfigFile(cfg, path, nil, SourceProjFile)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadPriority(t *testing.T) {
	home, project := isolate(t)

	writeFile(t, filepath.Join(home, ".taskman", "taskman.toml"), `task_file = "user.json"
log_level = "debug"
log_format = "json"
confirm_delete = false
`)
	writeFile(t, filepath.Join(project, "taskman.toml"), `task_file = "project.json"
log_level = "warn"
`)
	t.Setenv("TASKMAN_LOG_LEVEL", "error")

	args := []string{"-file", "flag.json", "ls"}
	fs := newFlagSet()
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}

	cfg := cws.Config
	if want := filepath.Join(project, "flag.json"); cfg.TaskFile != want {
		t.Errorf("TaskFile: got %q, want %q", cfg.TaskFile, want)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel: got %q, want error", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %q, want json", cfg.LogFormat)
	}
	if cfg.ConfirmDelete {
		t.Error("ConfirmDelete: got true, want false")
	}

	wantSources := map[string]ConfigSource{
		"task_file":      SourceFlag,
		"schema_file":    SourceDefault,
		"sort_on_load":   SourceDefault,
		"confirm_delete": SourceUserFile,
		"log_level":      SourceEnv,
		"log_format":     SourceUserFile,
		"log_timestamps": SourceDefault,
		"log_caller":     SourceDefault,
	}
	if diff := cmp.Diff(wantSources, cws.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}

	wantFiles := []string{filepath.Join(home, ".taskman", "taskman.toml"), "taskman.toml"}
	if diff := cmp.Diff(wantFiles, cws.Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	if got := cws.GetConfigFile(); got != "taskman.toml" {
		t.Errorf("GetConfigFile: got %q, want taskman.toml", got)
	}

	// The subcommand is left for the caller.
	if diff := cmp.Diff([]string{"ls"}, fs.Args()); diff != "" {
		t.Errorf("remaining args mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadHiddenProjectFile(t *testing.T) {
	_, project := isolate(t)
	writeFile(t, filepath.Join(project, ".taskman.toml"), "schema_file = \"schemas/tasks.json\"\n")

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(project, "schemas", "tasks.json"); cfg.SchemaFile != want {
		t.Errorf("SchemaFile: got %q, want %q", cfg.SchemaFile, want)
	}
}

func TestLoadOSConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only consulted on Linux")
	}
	home, _ := isolate(t)
	path := filepath.Join(home, ".config", "taskman", "taskman.toml")
	writeFile(t, path, "sort_on_load = true\n")

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	if !cws.Config.SortOnLoad {
		t.Error("SortOnLoad: got false, want true")
	}
	if cws.Sources["sort_on_load"] != SourceUserFile {
		t.Errorf("source: got %q, want %q", cws.Sources["sort_on_load"], SourceUserFile)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad project file", func(t *testing.T) {
		_, project := isolate(t)
		writeFile(t, filepath.Join(project, "taskman.toml"), "nope = 1\n")
		if _, err := Load(newFlagSet(), nil); err == nil {
			t.Error("expected error for unknown key")
		}
	})

	t.Run("empty task file", func(t *testing.T) {
		isolate(t)
		_, err := Load(newFlagSet(), []string{"-file", ""})
		if err == nil || !strings.Contains(err.Error(), "task file path is empty") {
			t.Errorf("got %v, want empty task file error", err)
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		isolate(t)
		fs := newFlagSet()
		fs.SetOutput(&strings.Builder{})
		if _, err := Load(fs, []string{"-bogus"}); err == nil {
			t.Error("expected error for unknown flag")
		}
	})
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	fs := newFlagSet()
	args := []string{
		"-file", "flag-tasks.json",
		"-schema", "flag.schema.json",
		"-sort-on-load",
		"-log-level", "debug",
		"-log-format", "logfmt",
		"-log-timestamps",
		"-log-caller=false",
		"search", "milk",
	}
	sources := make(map[string]ConfigSource)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	want := &Config{
		TaskFile:      "flag-tasks.json",
		SchemaFile:    "flag.schema.json",
		SortOnLoad:    true,
		ConfirmDelete: true,
		LogLevel:      "debug",
		LogFormat:     "logfmt",
		LogTimestamps: true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("flag config mismatch (-want +got):\n%s", diff)
	}
	if len(sources) != 7 {
		t.Errorf("sources: got %d entries, want 7: %v", len(sources), sources)
	}
	if _, ok := sources["confirm_delete"]; ok {
		t.Error("confirm_delete has no flag but was attributed to one")
	}
	if diff := cmp.Diff([]string{"search", "milk"}, fs.Args()); diff != "" {
		t.Errorf("remaining args mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlagsNilFlagSet(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	if err := parseFlags(cfg, nil, []string{"-log-level", "warn"}, nil); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel: got %q, want warn", cfg.LogLevel)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	t.Setenv("TASKMAN_TEST_DIR", "/data")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"~user/test", "~user/test"},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
		{"$TASKMAN_TEST_DIR/tasks.json", "/data/tasks.json"},
	}
	if runtime.GOOS == "windows" {
		t.Setenv("TASKMAN_TEST_HOME", home)
		tests = append(tests, struct {
			input string
			want  string
		}{
			input: `~\test`,
			want:  filepath.Join(home, "test"),
		}, struct {
			input string
			want  string
		}{
			input: `%TASKMAN_TEST_HOME%\logs`,
			want:  filepath.Join(home, "logs"),
		})
	} else {
		tests = append(tests, struct {
			input string
			want  string
		}{
			input: `~\test`,
			want:  `~\test`,
		})
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandWindowsEnv(t *testing.T) {
	t.Setenv("TASKMAN_TEST_VAR", "value")

	tests := []struct {
		input string
		want  string
	}{
		{"%TASKMAN_TEST_VAR%", "value"},
		{`C:\%TASKMAN_TEST_VAR%\x`, `C:\value\x`},
		{"%TASKMAN_UNSET_VAR%", "%TASKMAN_UNSET_VAR%"},
		{"100%", "100%"},
		{"%%", "%%"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandWindowsEnv(tt.input); got != tt.want {
				t.Errorf("expandWindowsEnv(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{" on ", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"off", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := boolFromString(tt.input)
			if got != tt.want {
				t.Errorf("boolFromString(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfigValue(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	tests := []struct {
		field string
		want  string
	}{
		{"task_file", "tasks.json"},
		{"schema_file", "(built-in)"},
		{"sort_on_load", "false"},
		{"confirm_delete", "true"},
		{"log_level", "info"},
		{"log_format", "text"},
		{"unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := cfg.Value(tt.field); got != tt.want {
				t.Errorf("Value(%q): got %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	cfg := &Config{}
	md, err := toml.Decode(ExampleConfig(), cfg)
	if err != nil {
		t.Fatalf("example config does not decode: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		t.Errorf("example config has unknown keys: %v", undecoded)
	}

	want := &Config{}
	setDefaults(want)
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("example config differs from defaults (-want +got):\n%s", diff)
	}
}
