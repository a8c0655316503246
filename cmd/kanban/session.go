package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/evanschultz/kanban/internal/app"
)

const sessionFileName = "session.json"

func sessionPath(configDir string) string {
	return filepath.Join(configDir, sessionFileName)
}

// loadSession reads the saved cloud session. A missing file is an empty session.
func loadSession(path string) (app.Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return app.Session{}, nil
	}
	if err != nil {
		return app.Session{}, fmt.Errorf("read session: %w", err)
	}
	var s app.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return app.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// storeSession writes s readable by the owner only. An empty token removes the file.
func storeSession(path string, s app.Session) error {
	if s.Token == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
