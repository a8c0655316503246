// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// SyncService is the sync-server behaviour both transports expose.
// *app.SyncService satisfies it.
type SyncService interface {
	SignUp(ctx context.Context, email, password string) (app.Session, error)
	Login(ctx context.Context, email, password string) (app.Session, error)
	Logout(ctx context.Context, token string) error
	SendResetLink(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, password string) error
	PushSave(ctx context.Context, token string, data []byte) (app.CloudSave, error)
	ListSaves(ctx context.Context, token string) ([]app.CloudSave, error)
	FetchSave(ctx context.Context, token, id string) ([]byte, error)
	LoadWorkspace(ctx context.Context, token, id string) (app.Save, error)
	ListCards(ctx context.Context, token, id string, tags []string) ([]domain.Board, error)
}

var _ SyncService = (*app.SyncService)(nil)

// Credentials is the body of sign-up and login calls.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetLinkRequest is the body of a reset-link call.
type ResetLinkRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body of a password reset call.
type ResetPasswordRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

// CardView is the transport shape of one card.
type CardView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags"`
	Comments    []string   `json:"comments,omitempty"`
	Created     time.Time  `json:"created"`
	Modified    time.Time  `json:"modified"`
	Due         *time.Time `json:"due,omitempty"`
	Completed   *time.Time `json:"completed,omitempty"`
}

// BoardView is the transport shape of one board.
type BoardView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Cards       []CardView `json:"cards"`
}

// BoardsFrom converts domain boards for transport.
func BoardsFrom(boards []domain.Board) []BoardView {
	out := make([]BoardView, 0, len(boards))
	for _, b := range boards {
		view := BoardView{
			ID:          b.ID.String(),
			Name:        b.Name,
			Description: b.Description,
			Cards:       make([]CardView, 0, len(b.Cards)),
		}
		for _, c := range b.Cards {
			view.Cards = append(view.Cards, CardView{
				ID:          c.ID.String(),
				Name:        c.Name,
				Description: c.Description,
				Status:      string(c.Status),
				Priority:    string(c.Priority),
				Tags:        append([]string{}, c.Tags...),
				Comments:    append([]string(nil), c.Comments...),
				Created:     c.Created,
				Modified:    c.Modified,
				Due:         c.Due,
				Completed:   c.Completed,
			})
		}
		out = append(out, view)
	}
	return out
}

// SaveView is the transport shape of a decoded save.
type SaveView struct {
	KanbanVersion string      `json:"kanban_version"`
	ExportedAt    time.Time   `json:"exported_at"`
	Boards        []BoardView `json:"boards"`
}

// SaveViewFrom converts a decoded save for transport.
func SaveViewFrom(save app.Save) SaveView {
	return SaveView{
		KanbanVersion: save.Version,
		ExportedAt:    save.ExportedAt,
		Boards:        BoardsFrom(save.Workspace.Boards),
	}
}
