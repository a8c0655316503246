package tui

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/tui/toast"
	"github.com/evanschultz/kanban/internal/uistate"
)

// waitForIO blocks on the next worker completion.
func waitForIO(w *app.Worker) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-w.Results()
		if !ok {
			return nil
		}
		return ioDoneMsg{result: res}
	}
}

func loadingKey(req app.Request) string {
	return req.Kind.String() + "\x00" + req.Target
}

// submit hands req to the worker, or runs it as a command through the
// handler. A non-empty label shows a loading toast until the result lands.
func (m *Model) submit(req app.Request, label string) tea.Cmd {
	if req.Format == "" {
		req.Format = m.cfg.DateTimeFormat()
	}
	if req.Session.Token == "" {
		req.Session = m.session
	}
	if label != "" {
		key := loadingKey(req)
		if id, ok := m.loading[key]; ok {
			m.toasts.Dismiss(id)
		}
		m.loading[key] = m.pushToast(toast.Loading, label, "")
	}
	switch {
	case m.worker != nil:
		if !m.worker.Submit(req) {
			m.finishLoading(req)
			m.toastError(fmt.Errorf("%w: %w", app.ErrIOFailure, app.ErrWorkerClosed))
		}
		return nil
	case m.handler != nil:
		handler := m.handler
		return func() tea.Msg {
			res := handler(context.Background(), req)
			res.Request = req
			return ioDoneMsg{result: res}
		}
	}
	m.finishLoading(req)
	m.toastError(fmt.Errorf("%w: no io handler configured", app.ErrIOFailure))
	return nil
}

func (m *Model) finishLoading(req app.Request) {
	key := loadingKey(req)
	if id, ok := m.loading[key]; ok {
		m.toasts.Dismiss(id)
		delete(m.loading, key)
	}
}

// applyResult folds a completed request into the model.
func (m *Model) applyResult(res app.Result) tea.Cmd {
	req := res.Request
	m.finishLoading(req)
	if res.Err != nil {
		return m.applyFailure(res)
	}
	switch req.Kind {
	case app.RequestSaveLocal, app.RequestAutoSave:
		m.info("Saved", res.Save.Name)
		if m.quitting {
			return tea.Quit
		}
	case app.RequestListLocalSaves, app.RequestDeleteLocal:
		m.localSaves = res.Saves
		m.saveCursor = clamp(m.saveCursor, 0, len(m.localSaves)-1)
		if req.Kind == app.RequestDeleteLocal {
			m.info("Deleted", req.Target)
		}
		return m.requestPreview()
	case app.RequestLoadPreview:
		if save, ok := m.selectedLocalSave(); ok && save.Name == req.Target {
			m.preview = res.Loaded
		}
	case app.RequestLoadLocal, app.RequestCloudFetchSave:
		if res.Loaded == nil {
			return nil
		}
		if err := m.replaceWorkspace(res.Loaded.Workspace); err != nil {
			m.toastError(err)
			return nil
		}
		m.info("Loaded", req.Target)
	case app.RequestCloudLogin, app.RequestCloudSignUp:
		m.setSession(res.Session)
		m.password.SetValue("")
		m.confirmPassword.SetValue("")
		m.info("Logged in", res.Session.Email)
		m.ui.ResetView(uistate.MainMenuView)
	case app.RequestCloudSendResetLink:
		m.resetAllowedAt = m.now().Add(app.ResetLinkInterval)
		m.info("Reset link sent", "check your email for the reset code")
	case app.RequestCloudResetPassword:
		m.password.SetValue("")
		m.confirmPassword.SetValue("")
		m.resetToken.SetValue("")
		m.info("Password reset", "log in with the new password")
		m.ui.SetView(uistate.Login)
	case app.RequestCloudSync:
		m.info("Synced", fmt.Sprintf("%s v%d", res.CloudSave.Name, res.CloudSave.Version))
	case app.RequestCloudListSaves:
		m.cloudSaves = res.CloudSaves
		m.saveCursor = clamp(m.saveCursor, 0, len(m.cloudSaves)-1)
	case app.RequestCloudLogout:
		m.setSession(app.Session{})
		m.info("Logged out", "")
	}
	return nil
}

func (m *Model) applyFailure(res app.Result) tea.Cmd {
	req := res.Request
	var limited *app.RateLimitedError
	if errors.As(res.Err, &limited) {
		m.resetAllowedAt = limited.Until
	}
	if errors.Is(res.Err, app.ErrUnauthorized) && req.Kind != app.RequestCloudLogin {
		m.setSession(app.Session{})
	}
	m.toastError(res.Err)
	if m.quitting {
		// keep the board open so the user can retry; the next quit skips saving
		m.quitting = false
		m.skipExitSave = true
		log.Warn("save on exit failed", "err", res.Err)
	}
	return nil
}

// replaceWorkspace swaps in a loaded workspace and resets everything that
// pointed into the old one.
func (m *Model) replaceWorkspace(ws domain.Workspace) error {
	if err := m.editor.Replace(ws); err != nil {
		return err
	}
	m.filterTags = nil
	m.tagSelection = map[string]bool{}
	m.cardBeingEdited = nil
	m.boardID, m.cardID = domain.ID{}, domain.ID{}
	m.viewport.Reset()
	m.ui.ResetView(m.cfg.View())
	m.snapSelection()
	return nil
}

func (m *Model) setSession(s app.Session) {
	m.session = s
	if m.saveSession == nil {
		return
	}
	if err := m.saveSession(s); err != nil {
		log.Warn("persist session failed", "err", err)
	}
}

func (m Model) loggedIn() bool {
	return m.session.Valid(m.now())
}

func (m Model) selectedLocalSave() (app.SaveInfo, bool) {
	if m.saveCursor < 0 || m.saveCursor >= len(m.localSaves) {
		return app.SaveInfo{}, false
	}
	return m.localSaves[m.saveCursor], true
}

func (m Model) selectedCloudSave() (app.CloudSave, bool) {
	if m.saveCursor < 0 || m.saveCursor >= len(m.cloudSaves) {
		return app.CloudSave{}, false
	}
	return m.cloudSaves[m.saveCursor], true
}

// requestPreview loads the highlighted local save for the preview pane.
func (m *Model) requestPreview() tea.Cmd {
	m.preview = nil
	if m.ui.View() != uistate.LoadLocalSave {
		return nil
	}
	save, ok := m.selectedLocalSave()
	if !ok {
		return nil
	}
	return m.submit(app.Request{Kind: app.RequestLoadPreview, Target: save.Name}, "")
}

func (m Model) snapshotRequest(kind app.RequestKind) app.Request {
	return app.Request{Kind: kind, Workspace: m.editor.Snapshot()}
}
