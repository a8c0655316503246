// Package sqlite stores sync-server accounts, sessions and saves.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
)

const driverName = "sqlite"

// Repository implements app.SyncRepository.
type Repository struct {
	db *sql.DB
}

var _ app.SyncRepository = (*Repository)(nil)

// Open opens (and migrates) the database at path.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Each connection to :memory: is a fresh database.
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS reset_tokens (
			email TEXT PRIMARY KEY,
			token_hash TEXT NOT NULL,
			sent_at TEXT NOT NULL,
			expires_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS saves (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			data BLOB NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_saves_user_version ON saves(user_id, version);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateUser inserts u, mapping a duplicate email to ErrAccountExists.
func (r *Repository) CreateUser(ctx context.Context, u app.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users(id, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, ts(u.CreatedAt), ts(u.UpdatedAt))
	if isUniqueErr(err) {
		return app.ErrAccountExists
	}
	return err
}

// GetUserByEmail loads a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (app.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = ?
	`, email)
	return scanUser(row)
}

// GetUser loads a user by id.
func (r *Repository) GetUser(ctx context.Context, id string) (app.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

// UpdateUserPassword replaces the password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id, hash string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
	`, hash, ts(now), id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// CreateSession stores a session record.
func (r *Repository) CreateSession(ctx context.Context, s app.SessionRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions(token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, s.Token, s.UserID, ts(s.CreatedAt), ts(s.ExpiresAt))
	return err
}

// GetSession loads a session by token.
func (r *Repository) GetSession(ctx context.Context, token string) (app.SessionRecord, error) {
	var (
		s          app.SessionRecord
		createdRaw string
		expiresRaw string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, created_at, expires_at
		FROM sessions
		WHERE token = ?
	`, token).Scan(&s.Token, &s.UserID, &createdRaw, &expiresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return app.SessionRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return app.SessionRecord{}, err
	}
	s.CreatedAt = parseTS(createdRaw)
	s.ExpiresAt = parseTS(expiresRaw)
	return s, nil
}

// DeleteSession removes one session.
func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// DeleteUserSessions removes every session of userID.
func (r *Repository) DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// PutResetToken replaces any pending reset for the same email.
func (r *Repository) PutResetToken(ctx context.Context, t app.ResetToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reset_tokens(email, token_hash, sent_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			token_hash = excluded.token_hash,
			sent_at = excluded.sent_at,
			expires_at = excluded.expires_at
	`, t.Email, t.TokenHash, ts(t.SentAt), ts(t.ExpiresAt))
	return err
}

// GetResetToken loads the pending reset token for email.
func (r *Repository) GetResetToken(ctx context.Context, email string) (app.ResetToken, error) {
	var (
		t          app.ResetToken
		sentRaw    string
		expiresRaw string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT email, token_hash, sent_at, expires_at
		FROM reset_tokens
		WHERE email = ?
	`, email).Scan(&t.Email, &t.TokenHash, &sentRaw, &expiresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return app.ResetToken{}, domain.ErrNotFound
	}
	if err != nil {
		return app.ResetToken{}, err
	}
	t.SentAt = parseTS(sentRaw)
	t.ExpiresAt = parseTS(expiresRaw)
	return t, nil
}

// DeleteResetToken removes the reset token for email.
func (r *Repository) DeleteResetToken(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE email = ?`, email)
	return err
}

// CreateSave stores one uploaded save.
func (r *Repository) CreateSave(ctx context.Context, s app.StoredSave) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO saves(id, user_id, name, version, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.UserID, s.Name, s.Version, s.Data, ts(s.CreatedAt))
	if isUniqueErr(err) {
		return fmt.Errorf("%w: save version %d already exists", domain.ErrInputValidation, s.Version)
	}
	return err
}

// ListSaves returns the user's saves oldest first.
func (r *Repository) ListSaves(ctx context.Context, userID string) ([]app.StoredSave, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, version, data, created_at
		FROM saves
		WHERE user_id = ?
		ORDER BY version ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []app.StoredSave{}
	for rows.Next() {
		save, err := scanSave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, save)
	}
	return out, rows.Err()
}

// GetSave only returns saves owned by userID.
func (r *Repository) GetSave(ctx context.Context, userID, id string) (app.StoredSave, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, version, data, created_at
		FROM saves
		WHERE user_id = ? AND id = ?
	`, userID, id)
	save, err := scanSave(row)
	if errors.Is(err, sql.ErrNoRows) {
		return app.StoredSave{}, fmt.Errorf("save %q %w", id, domain.ErrNotFound)
	}
	return save, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (app.User, error) {
	var (
		u          app.User
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return app.User{}, domain.ErrNotFound
		}
		return app.User{}, err
	}
	u.CreatedAt = parseTS(createdRaw)
	u.UpdatedAt = parseTS(updatedRaw)
	return u, nil
}

func scanSave(s scanner) (app.StoredSave, error) {
	var (
		save       app.StoredSave
		createdRaw string
	)
	if err := s.Scan(&save.ID, &save.UserID, &save.Name, &save.Version, &save.Data, &createdRaw); err != nil {
		return app.StoredSave{}, err
	}
	save.CreatedAt = parseTS(createdRaw)
	return save, nil
}

func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func isUniqueErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
