package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/kanban/internal/adapters/server/common"
	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
)

// stubSyncService provides deterministic sync responses for handler tests.
type stubSyncService struct {
	session   app.Session
	saves     []app.CloudSave
	data      []byte
	boards    []domain.Board
	err       error
	lastToken string
	lastEmail string
	lastID    string
	lastTags  []string
	lastData  []byte
}

func (s *stubSyncService) SignUp(_ context.Context, email, _ string) (app.Session, error) {
	s.lastEmail = email
	return s.session, s.err
}

func (s *stubSyncService) Login(_ context.Context, email, _ string) (app.Session, error) {
	s.lastEmail = email
	return s.session, s.err
}

func (s *stubSyncService) Logout(_ context.Context, token string) error {
	s.lastToken = token
	return s.err
}

func (s *stubSyncService) SendResetLink(_ context.Context, email string) error {
	s.lastEmail = email
	return s.err
}

func (s *stubSyncService) ResetPassword(_ context.Context, email, _, _ string) error {
	s.lastEmail = email
	return s.err
}

func (s *stubSyncService) PushSave(_ context.Context, token string, data []byte) (app.CloudSave, error) {
	s.lastToken = token
	s.lastData = data
	if s.err != nil {
		return app.CloudSave{}, s.err
	}
	return app.CloudSave{ID: "s1", Version: 1}, nil
}

func (s *stubSyncService) ListSaves(_ context.Context, token string) ([]app.CloudSave, error) {
	s.lastToken = token
	return s.saves, s.err
}

func (s *stubSyncService) FetchSave(_ context.Context, token, id string) ([]byte, error) {
	s.lastToken = token
	s.lastID = id
	return s.data, s.err
}

func (s *stubSyncService) LoadWorkspace(_ context.Context, token, id string) (app.Save, error) {
	s.lastToken = token
	s.lastID = id
	return app.Save{}, s.err
}

func (s *stubSyncService) ListCards(_ context.Context, token, id string, tags []string) ([]domain.Board, error) {
	s.lastToken = token
	s.lastID = id
	s.lastTags = tags
	return s.boards, s.err
}

func serve(t *testing.T, h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return env.Error
}

// TestHandlerLoginSuccess verifies credentials reach the service and the session is returned.
func TestHandlerLoginSuccess(t *testing.T) {
	svc := &stubSyncService{session: app.Session{UserID: "u1", Token: "tok"}}
	rec := serve(t, NewHandler(svc), http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"secret123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got app.Session
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Token != "tok" || svc.lastEmail != "a@example.com" {
		t.Fatalf("unexpected session %#v email %q", got, svc.lastEmail)
	}
}

// TestHandlerRejectsUnknownFields verifies strict body decoding.
func TestHandlerRejectsUnknownFields(t *testing.T) {
	rec := serve(t, NewHandler(&stubSyncService{}), http.MethodPost, "/auth/signup", `{"email":"a@example.com","extra":1}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := decodeError(t, rec); got.Code != "invalid_request" {
		t.Fatalf("code = %q, want invalid_request", got.Code)
	}
}

// TestHandlerErrorMapping verifies structured status mapping for service errors.
func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "unauthorized", err: app.ErrUnauthorized, status: http.StatusUnauthorized, code: "unauthorized"},
		{name: "credentials", err: app.ErrInvalidCredentials, status: http.StatusUnauthorized, code: "invalid_credentials"},
		{name: "exists", err: app.ErrAccountExists, status: http.StatusConflict, code: "account_exists"},
		{name: "not found", err: domain.ErrCardNotFound, status: http.StatusNotFound, code: "not_found"},
		{name: "validation", err: domain.ErrInvalidName, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "internal", err: errors.New("boom"), status: http.StatusInternalServerError, code: "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, NewHandler(&stubSyncService{err: tc.err}), http.MethodGet, "/saves", "", "tok")
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if got := decodeError(t, rec); got.Code != tc.code {
				t.Fatalf("code = %q, want %q", got.Code, tc.code)
			}
		})
	}
}

// TestHandlerRateLimitSetsRetryAfter verifies throttled reset links report their deadline.
func TestHandlerRateLimitSetsRetryAfter(t *testing.T) {
	svc := &stubSyncService{err: &app.RateLimitedError{Op: "send reset link", RetryAfter: 41500 * time.Millisecond}}
	rec := serve(t, NewHandler(svc), http.MethodPost, "/auth/reset-link", `{"email":"a@example.com"}`, "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if got := rec.Header().Get("Retry-After"); got != "42" {
		t.Fatalf("Retry-After = %q, want 42", got)
	}
	apiErr := decodeError(t, rec)
	if apiErr.Code != "rate_limited" || apiErr.Context["retry_after_seconds"] != float64(42) {
		t.Fatalf("unexpected error %#v", apiErr)
	}
}

// TestHandlerSaveRoutes verifies push, fetch and card listing routes.
func TestHandlerSaveRoutes(t *testing.T) {
	board, err := domain.NewBoard(domain.ID{Hi: 1, Lo: 1}, "Roadmap", "")
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	svc := &stubSyncService{data: []byte(`{"boards":[]}`), boards: []domain.Board{board}}
	h := NewHandler(svc)

	rec := serve(t, h, http.MethodPost, "/saves", `{"boards":[]}`, "tok")
	if rec.Code != http.StatusCreated {
		t.Fatalf("push status = %d", rec.Code)
	}
	if svc.lastToken != "tok" || string(svc.lastData) != `{"boards":[]}` {
		t.Fatalf("push forwarded token %q data %q", svc.lastToken, svc.lastData)
	}

	rec = serve(t, h, http.MethodGet, "/saves/s1", "", "tok")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"boards":[]}` {
		t.Fatalf("fetch status = %d body = %q", rec.Code, rec.Body.String())
	}
	if svc.lastID != "s1" {
		t.Fatalf("fetch id = %q", svc.lastID)
	}

	rec = serve(t, h, http.MethodGet, "/saves/s1/cards?tag=x&tag=%20&tag=y", "", "tok")
	if rec.Code != http.StatusOK {
		t.Fatalf("cards status = %d", rec.Code)
	}
	if len(svc.lastTags) != 2 || svc.lastTags[0] != "x" || svc.lastTags[1] != "y" {
		t.Fatalf("cards tags = %#v", svc.lastTags)
	}
	var body struct {
		Boards []common.BoardView `json:"boards"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(body.Boards) != 1 || body.Boards[0].Name != "Roadmap" {
		t.Fatalf("unexpected boards %#v", body.Boards)
	}
}

// TestHandlerRouting verifies unknown paths and wrong methods.
func TestHandlerRouting(t *testing.T) {
	h := NewHandler(&stubSyncService{})
	if rec := serve(t, h, http.MethodGet, "/saves/s1/other", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d", rec.Code)
	}
	rec := serve(t, h, http.MethodGet, "/auth/login", "", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method status = %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodPost {
		t.Fatalf("Allow = %q", got)
	}
	if rec := serve(t, h, http.MethodPost, "/auth/logout", "", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}
	if rec := serve(t, NewHandler(nil), http.MethodGet, "/saves", "", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil service status = %d", rec.Code)
	}
}
