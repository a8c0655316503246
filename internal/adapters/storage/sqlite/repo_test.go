package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "kanban.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func TestRepository_UserSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)

	user := app.User{ID: "u1", Email: "a@example.com", PasswordHash: "h1", CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	dup := user
	dup.ID = "u2"
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, app.ErrAccountExists) {
		t.Fatalf("CreateUser() duplicate error = %v, want ErrAccountExists", err)
	}

	got, err := repo.GetUserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != "u1" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user %#v", got)
	}
	if _, err := repo.GetUser(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetUser() error = %v, want ErrNotFound", err)
	}
	if err := repo.UpdateUserPassword(ctx, "u1", "h2", now.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateUserPassword() error = %v", err)
	}
	if err := repo.UpdateUserPassword(ctx, "missing", "h2", now); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UpdateUserPassword() missing error = %v", err)
	}

	for _, token := range []string{"t1", "t2"} {
		if err := repo.CreateSession(ctx, app.SessionRecord{Token: token, UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
	}
	session, err := repo.GetSession(ctx, "t1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if session.UserID != "u1" || !session.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected session %#v", session)
	}
	if err := repo.DeleteSession(ctx, "t1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := repo.GetSession(ctx, "t1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetSession() after delete error = %v", err)
	}
	if err := repo.DeleteUserSessions(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUserSessions() error = %v", err)
	}
	if _, err := repo.GetSession(ctx, "t2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetSession() after revoke error = %v", err)
	}
}

func TestRepository_ResetTokenUpsert(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)

	if _, err := repo.GetResetToken(ctx, "a@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetResetToken() error = %v, want ErrNotFound", err)
	}
	for i, hash := range []string{"first", "second"} {
		if err := repo.PutResetToken(ctx, app.ResetToken{
			Email:     "a@example.com",
			TokenHash: hash,
			SentAt:    now.Add(time.Duration(i) * time.Minute),
			ExpiresAt: now.Add(time.Hour),
		}); err != nil {
			t.Fatalf("PutResetToken() error = %v", err)
		}
	}
	got, err := repo.GetResetToken(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("GetResetToken() error = %v", err)
	}
	if got.TokenHash != "second" || !got.SentAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected reset token %#v", got)
	}
	if err := repo.DeleteResetToken(ctx, "a@example.com"); err != nil {
		t.Fatalf("DeleteResetToken() error = %v", err)
	}
}

func TestRepository_SavesAreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"u1", "u2"} {
		if err := repo.CreateUser(ctx, app.User{ID: id, Email: id + "@example.com", PasswordHash: "h", CreatedAt: now, UpdatedAt: now}); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
	}
	for v := 2; v >= 1; v-- {
		if err := repo.CreateSave(ctx, app.StoredSave{
			ID: "s" + string(rune('0'+v)), UserID: "u1", Name: "n", Version: v, Data: []byte("{}"), CreatedAt: now,
		}); err != nil {
			t.Fatalf("CreateSave() error = %v", err)
		}
	}
	if err := repo.CreateSave(ctx, app.StoredSave{ID: "dup", UserID: "u1", Version: 1, Data: []byte("{}"), CreatedAt: now}); !errors.Is(err, domain.ErrInputValidation) {
		t.Fatalf("CreateSave() duplicate version error = %v", err)
	}

	saves, err := repo.ListSaves(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSaves() error = %v", err)
	}
	if len(saves) != 2 || saves[0].Version != 1 || saves[1].Version != 2 {
		t.Fatalf("unexpected saves %#v", saves)
	}
	if _, err := repo.GetSave(ctx, "u2", "s1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetSave() other owner error = %v, want ErrNotFound", err)
	}
	save, err := repo.GetSave(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("GetSave() error = %v", err)
	}
	if string(save.Data) != "{}" {
		t.Fatalf("GetSave() data = %q", save.Data)
	}
}

func TestRepository_BacksSyncService(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	svc := app.NewSyncService(repo, nil, func() time.Time { return now }, app.SyncConfig{})

	session, err := svc.SignUp(ctx, "Ada@Example.com", "correct horse")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if _, err := svc.Login(ctx, "ada@example.com", "wrong password"); !errors.Is(err, app.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	data, err := app.EncodeSave(domain.Workspace{}, domain.DefaultDateTimeFormat, now)
	if err != nil {
		t.Fatalf("EncodeSave() error = %v", err)
	}
	pushed, err := svc.PushSave(ctx, session.Token, data)
	if err != nil {
		t.Fatalf("PushSave() error = %v", err)
	}
	if pushed.Version != 1 || pushed.Name != "kanban_21-02-2026_v1" {
		t.Fatalf("unexpected pushed save %#v", pushed)
	}
	saves, err := svc.ListSaves(ctx, session.Token)
	if err != nil {
		t.Fatalf("ListSaves() error = %v", err)
	}
	if len(saves) != 1 || saves[0].ID != pushed.ID {
		t.Fatalf("unexpected saves %#v", saves)
	}
	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.ListSaves(ctx, session.Token); !errors.Is(err, app.ErrUnauthorized) {
		t.Fatalf("ListSaves() after logout error = %v, want ErrUnauthorized", err)
	}
}
