package cloud

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evanschultz/kanban/internal/adapters/server"
	"github.com/evanschultz/kanban/internal/adapters/storage/sqlite"
	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	svc := app.NewSyncService(repo, nil, time.Now, app.SyncConfig{})
	handler, cfg, err := server.NewHandler(server.Config{}, server.Dependencies{Sync: svc})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL+cfg.APIEndpoint, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func testWorkspace(t *testing.T) domain.Workspace {
	t.Helper()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	board, err := domain.NewBoard(domain.ID{Hi: 1, Lo: 1}, "B1", "")
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	card, err := domain.NewCard(domain.ID{Hi: 1, Lo: 2}, domain.CardInput{Name: "C1", Tags: []string{"x"}}, now)
	if err != nil {
		t.Fatalf("NewCard() error = %v", err)
	}
	board.Cards = []domain.Card{card}
	return domain.Workspace{Boards: []domain.Board{board}}
}

// TestClientSyncRoundTrip drives the client against a real server and store.
func TestClientSyncRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	session, err := client.SignUp(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if !session.Valid(time.Now()) {
		t.Fatalf("session not valid: %#v", session)
	}
	if _, err := client.SignUp(ctx, "ada@example.com", "correct horse"); !errors.Is(err, app.ErrAccountExists) {
		t.Fatalf("SignUp() again error = %v, want ErrAccountExists", err)
	}
	if _, err := client.Login(ctx, "ada@example.com", "wrong horse"); !errors.Is(err, app.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}

	data, err := app.EncodeSave(testWorkspace(t), domain.DefaultDateTimeFormat, time.Now())
	if err != nil {
		t.Fatalf("EncodeSave() error = %v", err)
	}
	saved, err := client.Sync(ctx, session, data)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if saved.Version != 1 || saved.ID == "" {
		t.Fatalf("unexpected cloud save %#v", saved)
	}
	saves, err := client.ListSaves(ctx, session)
	if err != nil {
		t.Fatalf("ListSaves() error = %v", err)
	}
	if len(saves) != 1 || saves[0].ID != saved.ID {
		t.Fatalf("unexpected saves %#v", saves)
	}
	fetched, err := client.FetchSave(ctx, session, saved.ID)
	if err != nil {
		t.Fatalf("FetchSave() error = %v", err)
	}
	decoded, err := app.DecodeSave(fetched, domain.DefaultDateTimeFormat)
	if err != nil {
		t.Fatalf("DecodeSave() error = %v", err)
	}
	if len(decoded.Workspace.Boards) != 1 || decoded.Workspace.Boards[0].Cards[0].Name != "C1" {
		t.Fatalf("unexpected workspace %#v", decoded.Workspace)
	}
	if _, err := client.FetchSave(ctx, session, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("FetchSave() missing error = %v, want ErrNotFound", err)
	}

	if err := client.Logout(ctx, session); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := client.ListSaves(ctx, session); !errors.Is(err, app.ErrUnauthorized) {
		t.Fatalf("ListSaves() after logout error = %v, want ErrUnauthorized", err)
	}
}

// TestClientResetLinkIsRateLimited verifies the server throttle reaches the caller as a typed error.
func TestClientResetLinkIsRateLimited(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	if _, err := client.SignUp(ctx, "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if err := client.SendResetLink(ctx, "ada@example.com"); err != nil {
		t.Fatalf("SendResetLink() error = %v", err)
	}
	err := client.SendResetLink(ctx, "ada@example.com")
	var limited *app.RateLimitedError
	if !errors.As(err, &limited) {
		t.Fatalf("SendResetLink() again error = %v, want *RateLimitedError", err)
	}
	if limited.RetryAfter <= 0 || limited.RetryAfter > app.ResetLinkInterval {
		t.Fatalf("RetryAfter = %s", limited.RetryAfter)
	}
	if err := client.ResetPassword(ctx, "ada@example.com", "not-the-token", "new password"); !errors.Is(err, app.ErrInvalidResetToken) {
		t.Fatalf("ResetPassword() error = %v, want ErrInvalidResetToken", err)
	}
}

func TestClientMapsUnknownFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()
	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := client.ListSaves(context.Background(), app.Session{Token: "t"}); !errors.Is(err, app.ErrIOFailure) {
		t.Fatalf("ListSaves() error = %v, want ErrIOFailure", err)
	}
	if _, err := New("ftp://example.com"); err == nil {
		t.Fatal("expected scheme error")
	}
}
