package tui

import (
	"time"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/config"
	"github.com/evanschultz/kanban/internal/theme"
)

type Option func(*Model)

// ConfigSaver persists config edits made from the config menu.
type ConfigSaver func(config.Config) error

// SessionSaver persists the cloud session for auto login. An empty session
// means logged out.
type SessionSaver func(app.Session) error

// WithConfig sets the initial config.
func WithConfig(cfg config.Config) Option {
	return func(m *Model) {
		m.cfg = cfg.Clone()
	}
}

// WithConfigSaver persists config menu edits.
func WithConfigSaver(save ConfigSaver) Option {
	return func(m *Model) {
		m.saveConfig = save
	}
}

// WithThemes sets the user themes found in dir. Built-ins are always available.
func WithThemes(user []theme.Theme, dir string) Option {
	return func(m *Model) {
		m.themes = theme.All(user)
		m.themeDir = dir
	}
}

// WithClock overrides the clock; nil keeps time.Now.
func WithClock(clock func() time.Time) Option {
	return func(m *Model) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithLogBuffer backs the log panel.
func WithLogBuffer(buf *LogBuffer) Option {
	return func(m *Model) {
		m.logs = buf
	}
}

// WithWorker routes IO through the background worker. Init starts draining
// its results.
func WithWorker(w *app.Worker) Option {
	return func(m *Model) {
		m.worker = w
	}
}

// WithHandler runs IO requests as plain commands when no worker is set.
func WithHandler(h app.Handler) Option {
	return func(m *Model) {
		m.handler = h
	}
}

// WithSession restores a saved login when auto login is enabled.
func WithSession(s app.Session) Option {
	return func(m *Model) {
		m.session = s
	}
}

// WithSessionSaver persists login and logout.
func WithSessionSaver(save SessionSaver) Option {
	return func(m *Model) {
		m.saveSession = save
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithStartupErrors surfaces errors hit before the program started, such as
// a malformed config, as toasts.
func WithStartupErrors(errs ...error) Option {
	return func(m *Model) {
		m.startupErrs = append(m.startupErrs, errs...)
	}
}
