package platform

import (
	"os"
	"path/filepath"
	"testing"
)

// TestPathsForLinuxWithXDG verifies XDG_CONFIG_HOME wins on linux.
func TestPathsForLinuxWithXDG(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{
		"XDG_CONFIG_HOME": "/xdg/config",
	}, "/fallback/config", "/tmp", "kanban")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if want := filepath.Join("/xdg/config", "kanban", "config.json"); p.ConfigPath != want {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if want := filepath.Join("/xdg/config", "kanban", "themes"); p.ThemeDir != want {
		t.Fatalf("unexpected theme dir %q", p.ThemeDir)
	}
	if want := filepath.Join("/tmp", "kanban"); p.SaveDir != want {
		t.Fatalf("unexpected save dir %q", p.SaveDir)
	}
}

// TestPathsForWindowsUsesAppData verifies APPDATA wins on windows.
func TestPathsForWindowsUsesAppData(t *testing.T) {
	p, err := PathsFor("windows", map[string]string{
		"APPDATA": `C:\Users\me\AppData\Roaming`,
	}, `C:\fallback\config`, `C:\Temp`, "kanban")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if want := filepath.Join(`C:\Users\me\AppData\Roaming`, "kanban", "logs"); p.LogDir != want {
		t.Fatalf("unexpected log dir %q", p.LogDir)
	}
}

// TestPathsForDarwinIgnoresXDG verifies macOS keeps the user config dir.
func TestPathsForDarwinIgnoresXDG(t *testing.T) {
	p, err := PathsFor("darwin", map[string]string{
		"XDG_CONFIG_HOME": "/ignored",
	}, "/Users/me/Library/Application Support", "/tmp", "kanban")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if want := filepath.Join("/Users/me/Library/Application Support", "kanban"); p.ConfigDir != want {
		t.Fatalf("unexpected config dir %q", p.ConfigDir)
	}
}

func TestPathsForSaveDirOverride(t *testing.T) {
	p, err := PathsFor("linux", map[string]string{"KANBAN_SAVE_DIR": "/srv/saves"}, "/cfg", "/tmp", "kanban")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if p.SaveDir != "/srv/saves" {
		t.Fatalf("unexpected save dir %q", p.SaveDir)
	}
}

// TestPathsForEmptyDirsFails verifies missing bases are rejected.
func TestPathsForEmptyDirsFails(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp", "kanban"); err == nil {
		t.Fatal("expected error for empty dirs")
	}
	if _, err := PathsFor("linux", nil, "/cfg", "/tmp", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

// TestDefaultPathsWithOptionsDevMode verifies the dev suffix.
func TestDefaultPathsWithOptionsDevMode(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{AppName: "kanban", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(p.ConfigDir) != "kanban-dev" {
		t.Fatalf("expected dev config dir suffix, got %q", p.ConfigDir)
	}
}

func TestPathsEnsure(t *testing.T) {
	root := t.TempDir()
	p, err := PathsFor("linux", map[string]string{"XDG_CONFIG_HOME": root}, "/unused", root, "kanban")
	if err != nil {
		t.Fatalf("PathsFor() error = %v", err)
	}
	if err := p.Ensure(); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	for _, dir := range []string{p.ConfigDir, p.ThemeDir, p.LogDir, p.SaveDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected dir %q, err = %v", dir, err)
		}
	}
}
