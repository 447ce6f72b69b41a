package taskdir

import (
	"path/filepath"
	"testing"
)

func TestPaths(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"dir in cwd", DirPath("."), ".taskman"},
		{"dir empty base", DirPath(""), ".taskman"},
		{"dir in home", DirPath("/home/u"), filepath.Join("/home/u", ".taskman")},
		{"config in home", ConfigPath("/home/u"), filepath.Join("/home/u", ".taskman", "taskman.toml")},
		{"config in cwd", ConfigPath(""), filepath.Join(".taskman", "taskman.toml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestUserConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	want := filepath.Join(home, ".taskman", "taskman.toml")
	if got := UserConfigPath(); got != want {
		t.Errorf("UserConfigPath() = %q, want %q", got, want)
	}
}
