// Package savefile keeps versioned save files in the local save directory.
package savefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
)

// dateLayout is the DD-MM-YYYY stamp embedded in every save name.
const dateLayout = "02-01-2006"

var namePattern = regexp.MustCompile(`^kanban_(\d{2}-\d{2}-\d{4})_v(\d+)\.json$`)

// Store implements app.SaveStore over one directory.
type Store struct {
	dir string
	// mu serializes version allocation so two saves on one day never share N.
	mu sync.Mutex
}

var _ app.SaveStore = (*Store)(nil)

// Open returns a store rooted at dir, creating it when missing.
func Open(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("save directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// FileName renders the canonical name of version n of a save made on date.
func FileName(date time.Time, n int) string {
	return fmt.Sprintf("kanban_%s_v%d.json", date.Format(dateLayout), n)
}

// ParseName splits a save file name into its date and version. Names that do
// not follow the save naming scheme are rejected.
func ParseName(name string) (time.Time, int, error) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, 0, fmt.Errorf("%w: %q is not a save file name", domain.ErrInputValidation, name)
	}
	date, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: save date %q: %v", domain.ErrInputValidation, m[1], err)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return time.Time{}, 0, fmt.Errorf("%w: save version %q", domain.ErrInputValidation, m[2])
	}
	return date, n, nil
}

// List returns every save in the directory ordered by date then version.
// Files that do not match the naming scheme are skipped.
func (s *Store) List(ctx context.Context) ([]app.SaveInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []app.SaveInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read save dir: %w", err)
	}
	out := make([]app.SaveInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		date, n, err := ParseName(entry.Name())
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.Debug("stat save failed", "name", entry.Name(), "err", err)
			continue
		}
		out = append(out, app.SaveInfo{
			Name:    entry.Name(),
			Date:    date,
			Version: n,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	slices.SortFunc(out, func(a, b app.SaveInfo) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.Version - b.Version
	})
	return out, nil
}

// Latest returns the newest save, or domain.ErrNotFound when there is none.
func (s *Store) Latest(ctx context.Context) (app.SaveInfo, error) {
	saves, err := s.List(ctx)
	if err != nil {
		return app.SaveInfo{}, err
	}
	if len(saves) == 0 {
		return app.SaveInfo{}, fmt.Errorf("save %w", domain.ErrNotFound)
	}
	return saves[len(saves)-1], nil
}

// Save writes data as the next version for now's date.
func (s *Store) Save(ctx context.Context, data []byte, now time.Time) (app.SaveInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saves, err := s.List(ctx)
	if err != nil {
		return app.SaveInfo{}, err
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	n := 1
	for _, save := range saves {
		if save.Date.Equal(day) {
			n = max(n, save.Version+1)
		}
	}
	name := FileName(now, n)
	if err := writeFileAtomic(filepath.Join(s.dir, name), data); err != nil {
		return app.SaveInfo{}, err
	}
	log.Info("save written", "name", name, "bytes", len(data))
	return app.SaveInfo{
		Name:    name,
		Date:    day,
		Version: n,
		Size:    int64(len(data)),
		ModTime: now,
	}, nil
}

// Read returns the contents of the named save.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("save %q %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read save %q: %w", name, err)
	}
	return data, nil
}

// Delete removes the named save.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("save %q %w", name, domain.ErrNotFound)
	} else if err != nil {
		return fmt.Errorf("delete save %q: %w", name, err)
	}
	log.Info("save deleted", "name", name)
	return nil
}

// path validates name against the naming scheme, which also keeps it inside dir.
func (s *Store) path(name string) (string, error) {
	if _, _, err := ParseName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".kanban-save-*")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close save: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
