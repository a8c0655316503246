package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evanschultz/kanban/internal/theme"
)

func TestRenderThemeListsEveryRole(t *testing.T) {
	out := renderTheme(theme.Default())
	for _, role := range theme.AllRoles() {
		if !strings.Contains(out, string(role)) {
			t.Fatalf("preview missing role %s", role)
		}
	}
}

func TestSelectThemes(t *testing.T) {
	all := theme.All(nil)
	got, err := selectThemes(all, nil)
	if err != nil || len(got) != len(all) {
		t.Fatalf("selectThemes(nil) = %d themes, %v", len(got), err)
	}
	if _, err := selectThemes(all, []string{"no-such-theme"}); err == nil {
		t.Fatal("expected unknown theme error")
	}
}

func TestRootCommandPreviewsUserTheme(t *testing.T) {
	dir := t.TempDir()
	custom := theme.Default().Clone()
	custom.Name = "Custom Preview"
	if _, err := theme.Save(dir, custom); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	var out strings.Builder
	cmd := newRootCommand(&out)
	cmd.SetArgs([]string{"--dir", dir, "--palette", "Custom Preview"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "Custom Preview") || !strings.Contains(out.String(), "ANSI 16") {
		t.Fatalf("output = %q", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, theme.FileName(custom.Name))); err != nil {
		t.Fatalf("theme file missing: %v", err)
	}
}
