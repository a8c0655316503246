package savefile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evanschultz/kanban/internal/domain"
)

func TestStoreVersionsWithinADay(t *testing.T) {
	ctx := context.Background()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	day1 := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 11, 9, 0, 0, 0, time.UTC)

	for i, now := range []time.Time{day1, day1.Add(time.Hour), day2} {
		if _, err := store.Save(ctx, []byte(`{"boards":[]}`), now); err != nil {
			t.Fatalf("Save(%d) error = %v", i, err)
		}
	}
	saves, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"kanban_10-01-2025_v1.json", "kanban_10-01-2025_v2.json", "kanban_11-01-2025_v1.json"}
	if len(saves) != len(want) {
		t.Fatalf("List() = %d saves, want %d", len(saves), len(want))
	}
	for i, name := range want {
		if saves[i].Name != name {
			t.Fatalf("saves[%d] = %q, want %q", i, saves[i].Name, name)
		}
	}
	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.Name != want[2] {
		t.Fatalf("Latest() = %q, want %q", latest.Name, want[2])
	}
}

func TestStoreListSortsByDateThenVersion(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"kanban_02-02-2024_v1.json",
		"kanban_01-03-2023_v10.json",
		"kanban_01-03-2023_v2.json",
		"notes.txt",
		"kanban_1-1-2024_v1.json",
		"kanban_05-05-2024_v3.json.bak",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	saves, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"kanban_01-03-2023_v2.json", "kanban_01-03-2023_v10.json", "kanban_02-02-2024_v1.json"}
	if len(saves) != len(want) {
		t.Fatalf("List() = %#v", saves)
	}
	for i, name := range want {
		if saves[i].Name != name {
			t.Fatalf("saves[%d] = %q, want %q", i, saves[i].Name, name)
		}
	}
}

func TestStoreReadAndDelete(t *testing.T) {
	ctx := context.Background()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	info, err := store.Save(ctx, []byte("payload"), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := store.Read(ctx, info.Name)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("Read() = %q", data)
	}
	if err := store.Delete(ctx, info.Name); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Read(ctx, info.Name); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Read() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := store.Latest(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Latest() error = %v, want ErrNotFound", err)
	}
}

func TestStoreRejectsForeignNames(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	for _, name := range []string{"../config.json", "kanban_10-01-2025_v0.json", "kanban.json"} {
		if _, err := store.Read(context.Background(), name); !errors.Is(err, domain.ErrInputValidation) {
			t.Fatalf("Read(%q) error = %v, want ErrInputValidation", name, err)
		}
	}
}

func TestParseName(t *testing.T) {
	date, n, err := ParseName("kanban_31-12-2024_v7.json")
	if err != nil {
		t.Fatalf("ParseName() error = %v", err)
	}
	if !date.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) || n != 7 {
		t.Fatalf("ParseName() = %s, %d", date, n)
	}
	if got := FileName(date, n); got != "kanban_31-12-2024_v7.json" {
		t.Fatalf("FileName() = %q", got)
	}
	if _, _, err := ParseName("kanban_32-13-2024_v1.json"); err == nil {
		t.Fatal("expected invalid date error")
	}
}
