package app

import (
	"context"
	"sync"
	"time"
)

// SaveInfo describes one local save file.
type SaveInfo struct {
	Name    string
	Date    time.Time
	Version int
	Size    int64
	ModTime time.Time
}

// SaveStore persists save files in the local save directory.
type SaveStore interface {
	List(context.Context) ([]SaveInfo, error)
	Save(context.Context, []byte, time.Time) (SaveInfo, error)
	Read(context.Context, string) ([]byte, error)
	Delete(context.Context, string) error
}

// Session is an authenticated cloud login.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session carries a token that has not expired.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && (s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt))
}

// CloudSave is a save stored by the sync server.
type CloudSave struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Cloud is the remote sync collaborator. Every call may block on the network
// and is only made from the IO worker.
type Cloud interface {
	Login(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password string) (Session, error)
	SendResetLink(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, password string) error
	Sync(ctx context.Context, session Session, data []byte) (CloudSave, error)
	ListSaves(ctx context.Context, session Session) ([]CloudSave, error)
	FetchSave(ctx context.Context, session Session, id string) ([]byte, error)
	Logout(ctx context.Context, session Session) error
}

// ResetLinkInterval is the minimum gap between two reset-link requests.
const ResetLinkInterval = 60 * time.Second

// ResetThrottle rate-limits reset-link requests per email. It lives in memory
// only, so a restart forgets it; the sync server keeps its own record.
type ResetThrottle struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
}

// NewResetThrottle allows one request per key every interval.
func NewResetThrottle(interval time.Duration) *ResetThrottle {
	if interval <= 0 {
		interval = ResetLinkInterval
	}
	return &ResetThrottle{interval: interval, last: map[string]time.Time{}}
}

// Allow records an attempt for key at now or returns a *RateLimitedError.
func (t *ResetThrottle) Allow(key string, now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.last[key]; ok {
		until := prev.Add(t.interval)
		if now.Before(until) {
			return &RateLimitedError{Op: "send reset link", RetryAfter: until.Sub(now), Until: until}
		}
	}
	t.last[key] = now
	return nil
}
