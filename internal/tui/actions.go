package tui

import (
	"slices"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/keymap"
	"github.com/evanschultz/kanban/internal/tui/datepicker"
	"github.com/evanschultz/kanban/internal/tui/palette"
	"github.com/evanschultz/kanban/internal/uistate"
)

// dispatch runs one resolved action against the current mode.
func (m Model) dispatch(a keymap.Action) (Model, tea.Cmd) {
	switch a {
	case keymap.Quit:
		return m.quit()
	case keymap.NextFocus:
		m.ui.NextFocus()
		m.onFocusChange(1)
	case keymap.PrvFocus:
		m.ui.PrvFocus()
		m.onFocusChange(-1)
	case keymap.OpenConfigMenu:
		m.guardPopup(m.openConfigMenu)
	case keymap.Up, keymap.Down, keymap.Left, keymap.Right:
		return m.navigate(a)
	case keymap.MoveCardUp, keymap.MoveCardDown, keymap.MoveCardLeft, keymap.MoveCardRight:
		m.moveCard(a)
	case keymap.TakeUserInput:
		m.takeUserInput()
	case keymap.StopUserInput:
		m.stopUserInput()
	case keymap.GoToPreviousUIModeOrCancel:
		return m.goBack()
	case keymap.Accept:
		return m.accept()
	case keymap.HideUIElement:
		m.hideFocused()
	case keymap.SaveState:
		return m, m.saveState()
	case keymap.NewBoard:
		m.guardPopup(m.startNewBoard)
	case keymap.NewCard:
		m.guardPopup(m.startNewCard)
	case keymap.Delete:
		return m.deleteSelected()
	case keymap.DeleteBoard:
		m.deleteBoard()
	case keymap.ChangeCardStatusToCompleted:
		m.setStatus(domain.StatusComplete)
	case keymap.ChangeCardStatusToActive:
		m.setStatus(domain.StatusActive)
	case keymap.ChangeCardStatusToStale:
		m.setStatus(domain.StatusStale)
	case keymap.ChangeCardPriorityToHigh:
		m.setPriority(domain.PriorityHigh)
	case keymap.ChangeCardPriorityToMedium:
		m.setPriority(domain.PriorityMedium)
	case keymap.ChangeCardPriorityToLow:
		m.setPriority(domain.PriorityLow)
	case keymap.ResetUI:
		m.guardPopup(m.resetUI)
	case keymap.GoToMainMenu:
		m.guardPopup(func() error {
			m.openMainMenu()
			return nil
		})
	case keymap.ToggleCommandPalette:
		m.togglePalette()
	case keymap.Undo:
		m.undo()
	case keymap.Redo:
		m.redo()
	case keymap.ClearAllToasts:
		m.toasts.Clear()
		clear(m.loading)
	}
	return m, nil
}

// guardPopup runs a view change only when no popup would be discarded by it.
func (m *Model) guardPopup(fn func() error) {
	if len(m.ui.Popups()) > 0 {
		return
	}
	if err := fn(); err != nil {
		m.toastError(err)
	}
}

// requireNoPopup is the palette form of guardPopup: it explains itself.
func (m *Model) requireNoPopup(fn func() error) {
	if len(m.ui.Popups()) > 0 {
		m.toastError(forbidden("close the open popup first"))
		return
	}
	if err := fn(); err != nil {
		m.toastError(err)
	}
}

func (m Model) quit() (Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	if m.cfg.SaveOnExit && !m.skipExitSave && len(m.editor.Boards()) > 0 {
		m.quitting = true
		return m, m.submit(m.snapshotRequest(app.RequestSaveLocal), "Saving before exit")
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) onFocusChange(step int) {
	top, ok := m.ui.TopPopup()
	if !ok {
		return
	}
	switch top {
	case uistate.CommandPalette:
		m.palette.Search(m.paletteInput.Value())
	case uistate.DateTimePicker:
		m.skipTimeFocus(step)
	case uistate.EditThemeStyle:
		m.syncColorCursor()
	}
}

// navigate interprets arrows by context: popup lists, forms, menus or the board body.
func (m Model) navigate(a keymap.Action) (Model, tea.Cmd) {
	delta := 1
	if a == keymap.Up || a == keymap.Left {
		delta = -1
	}
	vertical := a == keymap.Up || a == keymap.Down

	if top, ok := m.ui.TopPopup(); ok {
		m.navigatePopup(top, a, delta, vertical)
		return m, nil
	}

	switch v := m.ui.View(); {
	case v.IsBoardView():
		if m.ui.Focus() == uistate.Body {
			m.moveSelection(delta, vertical)
		}
	case v == uistate.MainMenuView:
		if m.ui.Focus() == uistate.MainMenu && vertical {
			m.menuCursor = wrapIndex(m.menuCursor, delta, len(m.mainMenuItems()))
		}
	case v == uistate.ConfigMenu:
		if m.ui.Focus() == uistate.ConfigTable && vertical {
			m.configCursor = wrapIndex(m.configCursor, delta, len(configFields))
		}
	case v == uistate.EditKeybindings:
		if m.ui.Focus() == uistate.EditKeybindingsTable && vertical {
			m.bindCursor = wrapIndex(m.bindCursor, delta, len(keymap.AllActions()))
		}
	case v == uistate.LoadLocalSave:
		if vertical && len(m.localSaves) > 0 {
			m.saveCursor = clamp(m.saveCursor+delta, 0, len(m.localSaves)-1)
			return m, m.requestPreview()
		}
	case v == uistate.LoadCloudSave:
		if vertical && len(m.cloudSaves) > 0 {
			m.saveCursor = clamp(m.saveCursor+delta, 0, len(m.cloudSaves)-1)
		}
	case v == uistate.CreateTheme:
		if m.ui.Focus() == uistate.ThemeEditor && vertical {
			m.roleCursor = wrapIndex(m.roleCursor, delta, len(themeRoles()))
		}
	case v == uistate.NewBoard, v == uistate.NewCard, v == uistate.Login, v == uistate.SignUp, v == uistate.ResetPassword:
		if vertical {
			m.stepFocus(delta)
		}
	case v == uistate.HelpMenu, v == uistate.LogsOnly:
		// static pages
	}
	return m, nil
}

func (m *Model) stepFocus(delta int) {
	if delta < 0 {
		m.ui.PrvFocus()
	} else {
		m.ui.NextFocus()
	}
}

func (m *Model) navigatePopup(top uistate.Popup, a keymap.Action, delta int, vertical bool) {
	switch top {
	case uistate.CommandPalette:
		if vertical {
			m.palette.Move(paletteList(m.ui.Focus()), delta)
		}
	case uistate.ViewCard:
		switch f := m.ui.Focus(); {
		case !vertical && f == uistate.CardStatus:
			m.cycleDraftStatus(delta)
		case !vertical && f == uistate.CardPriority:
			m.cycleDraftPriority(delta)
		case vertical:
			m.stepFocus(delta)
		}
	case uistate.ChangeUIMode, uistate.SelectDefaultView:
		m.listCursor = wrapIndex(m.listCursor, delta, len(uistate.BoardViews()))
	case uistate.CardStatusSelector:
		m.listCursor = wrapIndex(m.listCursor, delta, len(domain.AllStatuses()))
	case uistate.CardPrioritySelector:
		m.listCursor = wrapIndex(m.listCursor, delta, len(domain.AllPriorities()))
	case uistate.ChangeDateFormat:
		m.listCursor = wrapIndex(m.listCursor, delta, len(domain.AllDateTimeFormats()))
	case uistate.ChangeTheme:
		m.listCursor = wrapIndex(m.listCursor, delta, len(m.themes))
		if m.listCursor < len(m.themes) {
			m.theme = m.themes[m.listCursor]
		}
	case uistate.EditGeneralConfig:
		m.stepConfigValue(pickerStep(a))
	case uistate.FilterByTag:
		if m.ui.Focus() == uistate.FilterByTagPopup && vertical {
			m.tagCursor = clamp(m.tagCursor+delta, 0, len(m.visibleTags())-1)
		}
	case uistate.ConfirmDiscardCardChanges, uistate.SaveThemePrompt:
		if !vertical {
			m.stepFocus(delta)
		}
	case uistate.EditThemeStyle:
		if vertical {
			m.navigateStyleEditor(delta)
		} else {
			m.stepFocus(delta)
			m.syncColorCursor()
		}
	case uistate.DateTimePicker:
		m.navigatePicker(a, delta)
	}
}

func (m *Model) navigatePicker(a keymap.Action, delta int) {
	switch m.ui.Focus() {
	case uistate.DTPCalender:
		switch a {
		case keymap.Up:
			m.picker.Up()
		case keymap.Down:
			m.picker.Down()
		case keymap.Left:
			m.picker.Left()
		case keymap.Right:
			m.picker.Right()
		}
	case uistate.DTPMonth:
		m.picker.MoveMonths(pickerStep(a))
	case uistate.DTPYear:
		m.picker.MoveYears(pickerStep(a))
	case uistate.DTPHour:
		m.picker.MoveSeconds(3600 * pickerStep(a))
	case uistate.DTPMinute:
		m.picker.MoveSeconds(60 * pickerStep(a))
	case uistate.DTPSecond:
		m.picker.MoveSeconds(pickerStep(a))
	}
	m.syncPickerArea()
}

// pickerStep maps up and right to +1 for the spinner fields.
func pickerStep(a keymap.Action) int {
	if a == keymap.Up || a == keymap.Right {
		return 1
	}
	return -1
}

// moveSelection walks cards vertically and boards horizontally.
func (m *Model) moveSelection(delta int, vertical bool) {
	boards := m.boards()
	bi, ci := m.selection()
	if bi < 0 {
		m.snapSelection()
		return
	}
	if vertical {
		cards := boards[bi].Cards
		if len(cards) == 0 {
			return
		}
		ci = clamp(ci+delta, 0, len(cards)-1)
		m.cardID = cards[ci].ID
	} else {
		next := clamp(bi+delta, 0, len(boards)-1)
		if next == bi {
			return
		}
		target := boards[next]
		m.boardID = target.ID
		m.cardID = domain.ID{}
		if len(target.Cards) > 0 {
			m.cardID = target.Cards[clamp(max(ci, 0), 0, len(target.Cards)-1)].ID
		}
	}
	m.viewport.Reveal(boards, m.boardID, m.cardID)
}

func (m *Model) moveCard(a keymap.Action) {
	if len(m.ui.Popups()) > 0 || !m.ui.View().IsBoardView() || m.ui.Focus() != uistate.Body {
		return
	}
	if m.filterActive() {
		m.toastError(forbidden("clear the tag filter before moving cards"))
		return
	}
	bi, ci := m.selection()
	if bi < 0 || ci < 0 {
		return
	}
	boards := m.editor.Boards()
	var err error
	switch a {
	case keymap.MoveCardUp:
		if ci == 0 {
			return
		}
		err = m.editor.MoveCardWithinBoard(m.boardID, ci, ci-1)
	case keymap.MoveCardDown:
		if ci >= len(boards[bi].Cards)-1 {
			return
		}
		err = m.editor.MoveCardWithinBoard(m.boardID, ci, ci+1)
	case keymap.MoveCardLeft, keymap.MoveCardRight:
		step := 1
		if a == keymap.MoveCardLeft {
			step = -1
		}
		dst := bi + step
		if dst < 0 || dst >= len(boards) {
			return
		}
		dstID := boards[dst].ID
		err = m.editor.MoveCardBetweenBoards(m.boardID, ci, dstID, min(ci, len(boards[dst].Cards)))
		if err == nil {
			m.boardID = dstID
		}
	}
	if err != nil {
		m.toastError(err)
		return
	}
	m.viewport.Reveal(m.boards(), m.boardID, m.cardID)
}

func (m *Model) takeUserInput() {
	if err := m.ui.SetInputStatus(uistate.UserInput); err != nil {
		log.Debug("take user input ignored", "focus", m.ui.Focus())
	}
}

func (m *Model) stopUserInput() {
	if m.ui.InUserInput() {
		_ = m.ui.SetInputStatus(uistate.Initialized)
	}
}

// goBack cancels the innermost thing: text entry, then the top popup, then
// the current view.
func (m Model) goBack() (Model, tea.Cmd) {
	top, hasPopup := m.ui.TopPopup()
	if m.ui.InUserInput() {
		if hasPopup && top == uistate.CommandPalette {
			m.ui.ClosePopup(uistate.CommandPalette)
			return m, nil
		}
		m.stopUserInput()
		return m, nil
	}
	if hasPopup {
		switch top {
		case uistate.ViewCard:
			if m.cardDirty() {
				m.ui.PushPopup(uistate.ConfirmDiscardCardChanges)
				return m, nil
			}
			m.closeCard()
			return m, nil
		case uistate.DateTimePicker:
			m.closePicker()
			return m, nil
		case uistate.ChangeTheme:
			m.theme = m.themeBefore
		}
		m.ui.PopPopup()
		return m, nil
	}
	if m.ui.GoBack() == uistate.AtRoot && !m.ui.View().IsBoardView() {
		m.ui.ResetView(m.cfg.View())
	}
	if m.ui.View() == uistate.LoadLocalSave {
		return m, m.requestPreview()
	}
	return m, nil
}

// hideFocused drops the focused panel from the board layout.
func (m *Model) hideFocused() {
	if len(m.ui.Popups()) > 0 || !m.ui.View().IsBoardView() {
		return
	}
	next, ok := viewWithout(m.ui.View(), m.ui.Focus())
	if !ok {
		return
	}
	m.ui.SetView(next)
}

func viewWithout(v uistate.View, f uistate.Focus) (uistate.View, bool) {
	if f == uistate.Body {
		return v, false
	}
	want := slices.DeleteFunc(v.FocusSet(), func(x uistate.Focus) bool { return x == f })
	for _, cand := range uistate.BoardViews() {
		if slices.Equal(cand.FocusSet(), want) {
			return cand, cand != v
		}
	}
	return v, false
}

func (m *Model) saveState() tea.Cmd {
	if m.cardBeingEdited != nil {
		m.toastError(forbidden("finish editing the card before saving"))
		return nil
	}
	return m.submit(m.snapshotRequest(app.RequestSaveLocal), "Saving")
}

func (m *Model) startNewBoard() error {
	if m.filterActive() {
		return forbidden("clear the tag filter before adding boards")
	}
	m.boardName.SetValue("")
	m.boardDesc.SetValue("")
	m.ui.SetView(uistate.NewBoard)
	return nil
}

func (m *Model) startNewCard() error {
	if m.filterActive() {
		return forbidden("clear the tag filter before adding cards")
	}
	if m.boardID.IsZero() {
		return forbidden("create a board first")
	}
	m.resetCardInputs(domain.Card{})
	m.ui.SetView(uistate.NewCard)
	return nil
}

func (m Model) deleteSelected() (Model, tea.Cmd) {
	if m.ui.View() == uistate.LoadLocalSave && len(m.ui.Popups()) == 0 {
		save, ok := m.selectedLocalSave()
		if !ok {
			return m, nil
		}
		return m, m.submit(app.Request{Kind: app.RequestDeleteLocal, Target: save.Name}, "Deleting "+save.Name)
	}
	if top, ok := m.ui.TopPopup(); ok && top == uistate.DateTimePicker {
		m.picker.Clear()
		return m, nil
	}
	if !m.onBoardBody() || m.cardID.IsZero() {
		return m, nil
	}
	bi, ci := m.selection()
	if err := m.editor.DeleteCard(m.boardID, m.cardID); err != nil {
		m.toastError(err)
		return m, nil
	}
	m.cardID = domain.ID{}
	if boards := m.boards(); bi >= 0 && bi < len(boards) && len(boards[bi].Cards) > 0 {
		m.cardID = boards[bi].Cards[clamp(ci, 0, len(boards[bi].Cards)-1)].ID
	}
	m.snapSelection()
	return m, nil
}

func (m *Model) deleteBoard() {
	if !m.onBoardBody() || m.boardID.IsZero() {
		return
	}
	bi, _ := m.selection()
	if err := m.editor.DeleteBoard(m.boardID); err != nil {
		m.toastError(err)
		return
	}
	m.boardID, m.cardID = domain.ID{}, domain.ID{}
	if boards := m.boards(); len(boards) > 0 {
		m.boardID = boards[clamp(bi, 0, len(boards)-1)].ID
	}
	m.snapSelection()
}

func (m Model) onBoardBody() bool {
	return len(m.ui.Popups()) == 0 && m.ui.View().IsBoardView() && m.ui.Focus() == uistate.Body
}

// setStatus edits the open card's draft, or the selected card directly.
func (m *Model) setStatus(status domain.Status) {
	if top, ok := m.ui.TopPopup(); ok && top == uistate.ViewCard && m.cardBeingEdited != nil {
		m.cardBeingEdited.Status = status
		return
	}
	if !m.onBoardBody() || m.cardID.IsZero() {
		return
	}
	if err := m.editor.SetCardStatus(m.boardID, m.cardID, status); err != nil {
		m.toastError(err)
	}
	m.snapSelection()
}

func (m *Model) setPriority(priority domain.Priority) {
	if top, ok := m.ui.TopPopup(); ok && top == uistate.ViewCard && m.cardBeingEdited != nil {
		m.cardBeingEdited.Priority = priority
		return
	}
	if !m.onBoardBody() || m.cardID.IsZero() {
		return
	}
	if err := m.editor.SetCardPriority(m.boardID, m.cardID, priority); err != nil {
		m.toastError(err)
	}
	m.snapSelection()
}

func (m *Model) resetUI() error {
	m.ui.ResetView(m.cfg.View())
	m.viewport.Reset()
	m.snapSelection()
	m.info("UI reset", m.cfg.View().Label())
	return nil
}

func (m *Model) openMainMenu() {
	m.menuCursor = 0
	m.ui.SetView(uistate.MainMenuView)
}

func (m *Model) togglePalette() {
	if m.ui.HasPopup(uistate.CommandPalette) {
		m.ui.ClosePopup(uistate.CommandPalette)
		return
	}
	if m.ui.InputStatus() == uistate.KeyBindMode {
		return
	}
	m.palette.Sync(domain.Workspace{Boards: m.editor.Boards()}, m.editor.Revision())
	m.palette.Reset()
	m.paletteInput.SetValue("")
	m.palette.Search("")
	m.ui.PushPopup(uistate.CommandPalette)
	_ = m.ui.SetInputStatus(uistate.UserInput)
}

func paletteList(f uistate.Focus) palette.List {
	switch f {
	case uistate.CommandPaletteCard:
		return palette.CardList
	case uistate.CommandPaletteBoard:
		return palette.BoardList
	}
	return palette.CommandList
}

func (m *Model) undo() {
	if m.cardBeingEdited != nil {
		return
	}
	label, err := m.editor.Undo()
	if err != nil {
		m.toastError(err)
		return
	}
	m.info("Undo", label)
	m.snapSelection()
}

func (m *Model) redo() {
	if m.cardBeingEdited != nil {
		return
	}
	label, err := m.editor.Redo()
	if err != nil {
		m.toastError(err)
		return
	}
	m.info("Redo", label)
	m.snapSelection()
}

// syncPickerArea keeps the picker's hit map in step with where it draws.
func (m *Model) syncPickerArea() {
	anchor, ok := m.picker.Anchor()
	if !ok {
		return
	}
	w, h := m.picker.Size()
	m.picker.SetArea(datepicker.Rect{X: anchor.X, Y: anchor.Y, W: w, H: h})
}
