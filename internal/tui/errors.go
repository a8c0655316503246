package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/config"
	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/keymap"
	"github.com/evanschultz/kanban/internal/tui/toast"
)

// forbidden builds a precondition failure shown as a warning.
func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", app.ErrForbidden, fmt.Sprintf(format, args...))
}

// toastForError maps an error to the toast kind and title it is shown with.
// Missing entities produce no toast; the selection snaps instead.
func toastForError(err error) (toast.Kind, string, bool) {
	switch {
	case err == nil:
		return 0, "", false
	case errors.Is(err, domain.ErrNotFound):
		return 0, "", false
	case app.IsNotice(err):
		return toast.Info, "Nothing to do", true
	case errors.Is(err, config.ErrConfigMalformed):
		return toast.Error, "Config malformed", true
	case errors.Is(err, keymap.ErrKeybindingConflict):
		return toast.Error, "Keybinding conflict", true
	case errors.Is(err, app.ErrRateLimited):
		return toast.Warning, "Slow down", true
	case errors.Is(err, app.ErrIOFailure):
		return toast.Error, "IO error", true
	case errors.Is(err, app.ErrForbidden):
		return toast.Warning, "Not allowed", true
	case errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrAccountExists),
		errors.Is(err, app.ErrUnauthorized),
		errors.Is(err, app.ErrInvalidResetToken):
		return toast.Warning, "Account", true
	case errors.Is(err, domain.ErrInputValidation), errors.Is(err, keymap.ErrInvalidBinding):
		return toast.Warning, "Invalid input", true
	}
	return toast.Error, "Error", true
}

func (m *Model) toastError(err error) {
	kind, title, ok := toastForError(err)
	if !ok {
		if err != nil {
			log.Debug("dropping error without toast", "err", err)
			m.snapSelection()
		}
		return
	}
	if kind == toast.Error {
		log.Error(title, "err", err)
	} else {
		log.Warn(title, "err", err)
	}
	m.pushToast(kind, title, err.Error())
}
