package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/evanschultz/kanban/internal/domain"
)

// MinPasswordLength is enforced on sign-up and reset.
const MinPasswordLength = 8

// User is a sync-server account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionRecord is a persisted login token.
type SessionRecord struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ResetToken is the pending password reset for one email.
type ResetToken struct {
	Email     string
	TokenHash string
	SentAt    time.Time
	ExpiresAt time.Time
}

// StoredSave is one save uploaded by a user.
type StoredSave struct {
	ID        string
	UserID    string
	Name      string
	Version   int
	Data      []byte
	CreatedAt time.Time
}

// SyncRepository persists accounts, sessions, reset tokens and saves.
type SyncRepository interface {
	CreateUser(context.Context, User) error
	GetUserByEmail(context.Context, string) (User, error)
	GetUser(context.Context, string) (User, error)
	UpdateUserPassword(context.Context, string, string, time.Time) error
	CreateSession(context.Context, SessionRecord) error
	GetSession(context.Context, string) (SessionRecord, error)
	DeleteSession(context.Context, string) error
	DeleteUserSessions(context.Context, string) error
	PutResetToken(context.Context, ResetToken) error
	GetResetToken(context.Context, string) (ResetToken, error)
	DeleteResetToken(context.Context, string) error
	CreateSave(context.Context, StoredSave) error
	ListSaves(context.Context, string) ([]StoredSave, error)
	GetSave(context.Context, string, string) (StoredSave, error)
}

// ResetNotifier delivers a reset token to the account owner.
type ResetNotifier func(ctx context.Context, email, token string) error

// SyncConfig tunes the sync service.
type SyncConfig struct {
	SessionTTL    time.Duration
	ResetInterval time.Duration
	ResetTTL      time.Duration
}

// SyncService implements the cloud side of sync on top of a repository.
type SyncService struct {
	repo     SyncRepository
	clock    Clock
	notify   ResetNotifier
	cfg      SyncConfig
	hashCost int
}

// NewSyncService builds the sync service. A nil notify logs reset tokens instead of sending them.
func NewSyncService(repo SyncRepository, notify ResetNotifier, clock Clock, cfg SyncConfig) *SyncService {
	if clock == nil {
		clock = time.Now
	}
	if notify == nil {
		notify = func(_ context.Context, email, token string) error {
			log.Info("password reset token issued", "email", email, "token", token)
			return nil
		}
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	if cfg.ResetInterval <= 0 {
		cfg.ResetInterval = ResetLinkInterval
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	return &SyncService{repo: repo, clock: clock, notify: notify, cfg: cfg, hashCost: bcrypt.DefaultCost}
}

// SignUp creates an account and logs it in.
func (s *SyncService) SignUp(ctx context.Context, email, password string) (Session, error) {
	email, err := validateEmail(email)
	if err != nil {
		return Session{}, err
	}
	if err := validatePassword(password); err != nil {
		return Session{}, err
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return Session{}, ErrAccountExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return Session{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.clock().UTC()
	user := User{ID: uuid.NewString(), Email: email, PasswordHash: string(hash), CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return Session{}, err
	}
	return s.openSession(ctx, user)
}

// Login checks credentials and issues a session.
func (s *SyncService) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.openSession(ctx, user)
}

// Logout ends the session for token.
func (s *SyncService) Logout(ctx context.Context, token string) error {
	if _, err := s.Authenticate(ctx, token); err != nil {
		return err
	}
	return s.repo.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to its user.
func (s *SyncService) Authenticate(ctx context.Context, token string) (User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return User{}, ErrUnauthorized
	}
	session, err := s.repo.GetSession(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return User{}, ErrUnauthorized
	}
	if err != nil {
		return User{}, err
	}
	if !s.clock().Before(session.ExpiresAt) {
		_ = s.repo.DeleteSession(ctx, token)
		return User{}, ErrUnauthorized
	}
	user, err := s.repo.GetUser(ctx, session.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return User{}, ErrUnauthorized
	}
	return user, err
}

// SendResetLink issues a reset token at most once per reset interval per
// email. Unknown emails succeed silently.
func (s *SyncService) SendResetLink(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	now := s.clock().UTC()
	prev, err := s.repo.GetResetToken(ctx, email)
	switch {
	case err == nil:
		until := prev.SentAt.Add(s.cfg.ResetInterval)
		if now.Before(until) {
			return &RateLimitedError{Op: "send reset link", RetryAfter: until.Sub(now), Until: until}
		}
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); errors.Is(err, domain.ErrNotFound) {
		log.Debug("reset link requested for unknown email", "email", email)
		return nil
	} else if err != nil {
		return err
	}
	token := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash reset token: %w", err)
	}
	if err := s.repo.PutResetToken(ctx, ResetToken{
		Email:     email,
		TokenHash: string(hash),
		SentAt:    now,
		ExpiresAt: now.Add(s.cfg.ResetTTL),
	}); err != nil {
		return err
	}
	return s.notify(ctx, email, token)
}

// ResetPassword swaps the password when token matches the pending reset and
// revokes every session of the account.
func (s *SyncService) ResetPassword(ctx context.Context, email, token, password string) error {
	email = normalizeEmail(email)
	if err := validatePassword(password); err != nil {
		return err
	}
	pending, err := s.repo.GetResetToken(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	now := s.clock().UTC()
	if !now.Before(pending.ExpiresAt) || bcrypt.CompareHashAndPassword([]byte(pending.TokenHash), []byte(strings.TrimSpace(token))) != nil {
		return ErrInvalidResetToken
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdateUserPassword(ctx, user.ID, string(hash), now); err != nil {
		return err
	}
	if err := s.repo.DeleteUserSessions(ctx, user.ID); err != nil {
		return err
	}
	return s.repo.DeleteResetToken(ctx, email)
}

// PushSave stores data as the user's next save after checking it decodes.
func (s *SyncService) PushSave(ctx context.Context, token string, data []byte) (CloudSave, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return CloudSave{}, err
	}
	if _, err := DecodeSave(data, domain.DefaultDateTimeFormat); err != nil {
		return CloudSave{}, err
	}
	existing, err := s.repo.ListSaves(ctx, user.ID)
	if err != nil {
		return CloudSave{}, err
	}
	version := 1
	for _, save := range existing {
		version = max(version, save.Version+1)
	}
	now := s.clock().UTC()
	save := StoredSave{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      fmt.Sprintf("kanban_%s_v%d", now.Format(exportDateLayout), version),
		Version:   version,
		Data:      data,
		CreatedAt: now,
	}
	if err := s.repo.CreateSave(ctx, save); err != nil {
		return CloudSave{}, err
	}
	return cloudSaveFrom(save), nil
}

// ListSaves returns the user's saves, oldest first.
func (s *SyncService) ListSaves(ctx context.Context, token string) ([]CloudSave, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	saves, err := s.repo.ListSaves(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	out := make([]CloudSave, 0, len(saves))
	for _, save := range saves {
		out = append(out, cloudSaveFrom(save))
	}
	return out, nil
}

// FetchSave returns the raw bytes of one of the caller's saves.
func (s *SyncService) FetchSave(ctx context.Context, token, id string) ([]byte, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	save, err := s.repo.GetSave(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	return save.Data, nil
}

// LoadWorkspace decodes one save, or the newest when id is empty.
func (s *SyncService) LoadWorkspace(ctx context.Context, token, id string) (Save, error) {
	if id == "" {
		saves, err := s.ListSaves(ctx, token)
		if err != nil {
			return Save{}, err
		}
		if len(saves) == 0 {
			return Save{}, fmt.Errorf("save %w", domain.ErrNotFound)
		}
		id = saves[len(saves)-1].ID
	}
	data, err := s.FetchSave(ctx, token, id)
	if err != nil {
		return Save{}, err
	}
	return DecodeSave(data, domain.DefaultDateTimeFormat)
}

// ListCards returns a save's boards restricted to cards carrying any of tags.
func (s *SyncService) ListCards(ctx context.Context, token, id string, tags []string) ([]domain.Board, error) {
	save, err := s.LoadWorkspace(ctx, token, id)
	if err != nil {
		return nil, err
	}
	return domain.FilterByTags(save.Workspace.Boards, tags), nil
}

func (s *SyncService) openSession(ctx context.Context, user User) (Session, error) {
	now := s.clock().UTC()
	record := SessionRecord{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.repo.CreateSession(ctx, record); err != nil {
		return Session{}, err
	}
	return Session{UserID: user.ID, Email: user.Email, Token: record.Token, ExpiresAt: record.ExpiresAt}, nil
}

func cloudSaveFrom(save StoredSave) CloudSave {
	return CloudSave{
		ID:        save.ID,
		Name:      save.Name,
		Version:   save.Version,
		Size:      len(save.Data),
		CreatedAt: save.CreatedAt,
	}
}

func validateEmail(email string) (string, error) {
	email = normalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email %q", domain.ErrInputValidation, email)
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInputValidation, MinPasswordLength)
	}
	return nil
}
