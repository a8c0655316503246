// Package httpapi provides the REST HTTP adapter for the sync server.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/evanschultz/kanban/internal/adapters/server/common"
	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// maxSaveBytes bounds one uploaded save file.
const maxSaveBytes int64 = 8 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	sync common.SyncService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs the REST handler. A nil sync answers 503.
func NewHandler(sync common.SyncService) *Handler {
	return &Handler{sync: sync}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "sync service is not configured",
		})
		return
	}
	path := normalizePath(r.URL.Path)
	switch path {
	case "auth/signup":
		h.post(w, r, h.handleSignUp)
		return
	case "auth/login":
		h.post(w, r, h.handleLogin)
		return
	case "auth/logout":
		h.post(w, r, h.handleLogout)
		return
	case "auth/reset-link":
		h.post(w, r, h.handleResetLink)
		return
	case "auth/reset":
		h.post(w, r, h.handleResetPassword)
		return
	case "saves":
		switch r.Method {
		case http.MethodGet:
			h.handleListSaves(w, r)
		case http.MethodPost:
			h.handlePushSave(w, r)
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
		return
	}

	id, sub, ok := resolveSavePath(path)
	if !ok {
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
		return
	}
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	switch sub {
	case "":
		h.handleFetchSave(w, r, id)
	case "cards":
		h.handleListCards(w, r, id)
	}
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	next(w, r)
}

// handleSignUp serves POST `/auth/signup`.
func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req common.Credentials
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	session, err := h.sync.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// handleLogin serves POST `/auth/login`.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req common.Credentials
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	session, err := h.sync.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleLogout serves POST `/auth/logout`.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sync.Logout(r.Context(), bearerToken(r)); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleResetLink serves POST `/auth/reset-link`.
func (h *Handler) handleResetLink(w http.ResponseWriter, r *http.Request) {
	var req common.ResetLinkRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if err := h.sync.SendResetLink(r.Context(), req.Email); err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "sent"})
}

// handleResetPassword serves POST `/auth/reset`.
func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req common.ResetPasswordRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if err := h.sync.ResetPassword(r.Context(), req.Email, req.Token, req.Password); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListSaves serves GET `/saves`.
func (h *Handler) handleListSaves(w http.ResponseWriter, r *http.Request) {
	saves, err := h.sync.ListSaves(r.Context(), bearerToken(r))
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"saves": saves,
	})
}

// handlePushSave serves POST `/saves` with a raw save file body.
func (h *Handler) handlePushSave(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxSaveBytes)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		writeErrorFrom(w, fmt.Errorf("read save body: %w", errors.Join(common.ErrInvalidRequest, err)))
		return
	}
	saved, err := h.sync.PushSave(r.Context(), bearerToken(r), data)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleFetchSave serves GET `/saves/{id}` with the raw save file.
func (h *Handler) handleFetchSave(w http.ResponseWriter, r *http.Request, id string) {
	data, err := h.sync.FetchSave(r.Context(), bearerToken(r), id)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleListCards serves GET `/saves/{id}/cards?tag=...`.
func (h *Handler) handleListCards(w http.ResponseWriter, r *http.Request, id string) {
	var tags []string
	for _, tag := range r.URL.Query()["tag"] {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	boards, err := h.sync.ListCards(r.Context(), bearerToken(r), id, tags)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"boards": common.BoardsFrom(boards),
	})
}

// resolveSavePath parses `saves/{id}` and `saves/{id}/cards`.
func resolveSavePath(path string) (id, sub string, ok bool) {
	rest, found := strings.CutPrefix(path, "saves/")
	if !found {
		return "", "", false
	}
	id, sub, _ = strings.Cut(rest, "/")
	id = strings.TrimSpace(id)
	if id == "" || (sub != "" && sub != "cards") {
		return "", "", false
	}
	return id, sub, true
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps service errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	var limited *app.RateLimitedError
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.As(err, &limited):
		seconds := int(limited.RetryAfter.Seconds() + 0.999)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeJSONError(w, http.StatusTooManyRequests, APIError{
			Code:    "rate_limited",
			Message: err.Error(),
			Context: map[string]any{"retry_after_seconds": seconds},
		})
	case errors.Is(err, app.ErrInvalidCredentials):
		writeJSONError(w, http.StatusUnauthorized, APIError{
			Code:    "invalid_credentials",
			Message: err.Error(),
		})
	case errors.Is(err, app.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, APIError{
			Code:    "unauthorized",
			Message: err.Error(),
			Hint:    "Log in and send the session token as a Bearer token.",
		})
	case errors.Is(err, app.ErrAccountExists):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "account_exists",
			Message: err.Error(),
		})
	case errors.Is(err, app.ErrInvalidResetToken):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_reset_token",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest), errors.Is(err, domain.ErrInputValidation):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
