package tui

import (
	"slices"

	tea "charm.land/bubbletea/v2"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/tui/palette"
	"github.com/evanschultz/kanban/internal/uistate"
)

// runCommand executes a palette command after checking its preconditions.
// A failed precondition is reported as a warning and changes nothing.
func (m Model) runCommand(c palette.Command) (Model, tea.Cmd) {
	switch c {
	case palette.NewBoard:
		m.requireNoPopup(m.startNewBoard)
	case palette.NewCard:
		m.requireNoPopup(m.startNewCard)
	case palette.ChangeUIMode:
		m.requireNoPopup(func() error {
			m.listCursor = max(0, slices.Index(uistate.BoardViews(), m.ui.View()))
			m.ui.PushPopup(uistate.ChangeUIMode)
			return nil
		})
	case palette.ChangeCurrentCardStatus:
		m.requireNoPopup(func() error {
			card, err := m.requireCard()
			if err != nil {
				return err
			}
			m.listCursor = max(0, slices.Index(domain.AllStatuses(), card.Status))
			m.ui.PushPopup(uistate.CardStatusSelector)
			return nil
		})
	case palette.ChangeCurrentCardPriority:
		m.requireNoPopup(func() error {
			card, err := m.requireCard()
			if err != nil {
				return err
			}
			m.listCursor = max(0, slices.Index(domain.AllPriorities(), card.Priority))
			m.ui.PushPopup(uistate.CardPrioritySelector)
			return nil
		})
	case palette.ChangeDateFormat:
		m.listCursor = max(0, slices.Index(domain.AllDateTimeFormats(), m.cfg.DateTimeFormat()))
		m.ui.PushPopup(uistate.ChangeDateFormat)
	case palette.ChangeTheme:
		m.openThemePicker(false)
	case palette.CreateATheme:
		m.requireNoPopup(m.startCreateTheme)
	case palette.FilterByTag:
		m.requireNoPopup(func() error {
			if !m.ui.View().IsBoardView() {
				return forbidden("filter from a board view")
			}
			return m.openTagFilter()
		})
	case palette.ClearFilter:
		if err := m.clearFilter(); err != nil {
			m.toastError(err)
		}
	case palette.ResetUI:
		m.requireNoPopup(m.resetUI)
	case palette.SaveKanbanState:
		return m, m.saveState()
	case palette.LoadASaveLocal:
		if len(m.ui.Popups()) > 0 {
			m.toastError(forbidden("close the open popup first"))
			return m, nil
		}
		return m, m.openLocalSaves()
	case palette.LoadASaveCloud:
		if len(m.ui.Popups()) > 0 {
			m.toastError(forbidden("close the open popup first"))
			return m, nil
		}
		return m, m.openCloudSaves()
	case palette.SyncLocalData:
		if !m.loggedIn() {
			m.toastError(forbidden("log in to sync"))
			return m, nil
		}
		return m, m.submit(m.snapshotRequest(app.RequestCloudSync), "Syncing")
	case palette.Login, palette.SignUp, palette.ResetPassword:
		m.requireNoPopup(func() error {
			if c != palette.ResetPassword && m.loggedIn() {
				return forbidden("already logged in as %s", m.session.Email)
			}
			m.openAccountView(accountView(c))
			return nil
		})
	case palette.Logout:
		if !m.loggedIn() {
			m.toastError(forbidden("not logged in"))
			return m, nil
		}
		return m, m.submit(app.Request{Kind: app.RequestCloudLogout}, "Logging out")
	case palette.Configure:
		m.requireNoPopup(m.openConfigMenu)
	case palette.OpenHelpMenu:
		m.requireNoPopup(func() error {
			m.ui.SetView(uistate.HelpMenu)
			return nil
		})
	case palette.OpenMainMenu:
		m.requireNoPopup(func() error {
			m.openMainMenu()
			return nil
		})
	case palette.ToggleDebugPanel:
		m.debug = !m.debug
	case palette.Quit:
		return m.quit()
	}
	return m, nil
}

func accountView(c palette.Command) uistate.View {
	switch c {
	case palette.SignUp:
		return uistate.SignUp
	case palette.ResetPassword:
		return uistate.ResetPassword
	}
	return uistate.Login
}

// requireCard returns the selected card of a board view.
func (m Model) requireCard() (domain.Card, error) {
	if !m.ui.View().IsBoardView() {
		return domain.Card{}, forbidden("open a board view first")
	}
	card, ok := m.currentCard()
	if !ok {
		return domain.Card{}, forbidden("no card selected")
	}
	return card, nil
}
