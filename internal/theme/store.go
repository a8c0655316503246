package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// FileName is the on-disk name for a theme.
func FileName(name string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ':
			return '_'
		}
		return -1
	}, strings.TrimSpace(name))
	if slug == "" {
		slug = "theme"
	}
	return slug + ".json"
}

// LoadDir reads every *.json theme in dir. Files that fail to decode or
// validate are skipped with a warning. A missing dir yields no themes.
func LoadDir(dir string) ([]Theme, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read theme dir: %w", err)
	}
	var out []Theme
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		t, err := LoadFile(path)
		if err != nil {
			log.Warn("skipping theme file", "path", path, "err", err)
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Theme) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// LoadFile reads and validates one theme file.
func LoadFile(path string) (Theme, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("read theme: %w", err)
	}
	var t Theme
	if err := json.Unmarshal(raw, &t); err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	if t.Styles == nil {
		t.Styles = map[Role]Style{}
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// Save writes t into dir and returns the file path.
func Save(dir string, t Theme) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create theme dir: %w", err)
	}
	raw, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode theme: %w", err)
	}
	path := filepath.Join(dir, FileName(t.Name))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write theme: %w", err)
	}
	return path, nil
}

// All merges built-ins with user themes. A user theme with a built-in's
// name replaces it.
func All(user []Theme) []Theme {
	out := Builtins()
	for _, t := range user {
		idx := slices.IndexFunc(out, func(b Theme) bool { return strings.EqualFold(b.Name, t.Name) })
		if idx >= 0 {
			out[idx] = t
			continue
		}
		out = append(out, t)
	}
	return out
}

// Find returns the theme named name from themes.
func Find(themes []Theme, name string) (Theme, bool) {
	for _, t := range themes {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return Theme{}, false
}
