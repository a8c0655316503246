package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/keymap"
	"github.com/evanschultz/kanban/internal/theme"
	"github.com/evanschultz/kanban/internal/tui/datepicker"
	"github.com/evanschultz/kanban/internal/tui/palette"
	"github.com/evanschultz/kanban/internal/uistate"
)

// accept confirms whatever the focus points at.
func (m Model) accept() (Model, tea.Cmd) {
	if top, ok := m.ui.TopPopup(); ok {
		return m.acceptPopup(top)
	}
	f := m.ui.Focus()
	switch v := m.ui.View(); {
	case v.IsBoardView():
		if f == uistate.Body && !m.cardID.IsZero() {
			m.openCard(m.boardID, m.cardID)
		}
	case v == uistate.MainMenuView:
		if f == uistate.MainMenu {
			items := m.mainMenuItems()
			if m.menuCursor < len(items) {
				return items[m.menuCursor].run(m)
			}
		}
	case v == uistate.ConfigMenu:
		switch f {
		case uistate.ConfigTable:
			m.activateConfigRow()
		case uistate.SubmitButton:
			m.bindCursor = 0
			m.ui.SetView(uistate.EditKeybindings)
			_ = m.ui.SetFocus(uistate.EditKeybindingsTable)
		case uistate.ExtraFocus:
			m.resetConfig()
		}
	case v == uistate.EditKeybindings:
		switch f {
		case uistate.EditKeybindingsTable:
			m.beginRebind()
		case uistate.SubmitButton:
			m.resetKeybindings()
		}
	case v == uistate.NewBoard:
		if f == uistate.SubmitButton {
			m.createBoard()
		} else {
			m.acceptTextField()
		}
	case v == uistate.NewCard:
		switch f {
		case uistate.SubmitButton:
			m.createCard()
		case uistate.CardDueDate:
			m.openPicker()
		default:
			m.acceptTextField()
		}
	case v == uistate.LoadLocalSave:
		if save, ok := m.selectedLocalSave(); ok {
			return m, m.submit(app.Request{Kind: app.RequestLoadLocal, Target: save.Name}, "Loading "+save.Name)
		}
	case v == uistate.LoadCloudSave:
		if save, ok := m.selectedCloudSave(); ok {
			return m, m.submit(app.Request{Kind: app.RequestCloudFetchSave, Target: save.ID}, "Fetching "+save.Name)
		}
	case v == uistate.Login, v == uistate.SignUp, v == uistate.ResetPassword:
		return m.acceptAccount(v, f)
	case v == uistate.CreateTheme:
		switch f {
		case uistate.ThemeEditor:
			m.openStyleEditor()
		case uistate.SubmitButton:
			m.ui.PushPopup(uistate.SaveThemePrompt)
		case uistate.ExtraFocus:
			m.theme = m.themeBefore
			m.ui.ResetView(m.cfg.View())
		}
	}
	return m, nil
}

// acceptTextField starts editing a text field, or finishes and moves on.
func (m *Model) acceptTextField() {
	if m.ui.InUserInput() {
		m.stopUserInput()
		m.ui.NextFocus()
		return
	}
	m.takeUserInput()
}

func (m Model) acceptPopup(top uistate.Popup) (Model, tea.Cmd) {
	f := m.ui.Focus()
	switch top {
	case uistate.CommandPalette:
		return m.activatePalette(paletteList(f))
	case uistate.ViewCard:
		switch f {
		case uistate.SubmitButton:
			m.commitCard()
		case uistate.CardDueDate:
			m.openPicker()
		case uistate.CardStatus:
			m.listCursor = max(0, slices.Index(domain.AllStatuses(), m.cardBeingEdited.Status))
			m.ui.PushPopup(uistate.CardStatusSelector)
		case uistate.CardPriority:
			m.listCursor = max(0, slices.Index(domain.AllPriorities(), m.cardBeingEdited.Priority))
			m.ui.PushPopup(uistate.CardPrioritySelector)
		default:
			m.acceptTextField()
		}
	case uistate.CardStatusSelector:
		status := domain.AllStatuses()[clamp(m.listCursor, 0, len(domain.AllStatuses())-1)]
		m.ui.PopPopup()
		m.setStatus(status)
	case uistate.CardPrioritySelector:
		priority := domain.AllPriorities()[clamp(m.listCursor, 0, len(domain.AllPriorities())-1)]
		m.ui.PopPopup()
		m.setPriority(priority)
	case uistate.ChangeUIMode:
		v := uistate.BoardViews()[clamp(m.listCursor, 0, len(uistate.BoardViews())-1)]
		m.ui.PopPopup()
		m.ui.SetView(v)
	case uistate.SelectDefaultView:
		v := uistate.BoardViews()[clamp(m.listCursor, 0, len(uistate.BoardViews())-1)]
		m.ui.PopPopup()
		next := m.cfg.Clone()
		next.DefaultUIMode = v.String()
		m.commitConfig(next)
	case uistate.ChangeDateFormat:
		formats := domain.AllDateTimeFormats()
		f := formats[clamp(m.listCursor, 0, len(formats)-1)]
		m.ui.PopPopup()
		next := m.cfg.Clone()
		next.DateFormat = string(f)
		m.commitConfig(next)
	case uistate.ChangeTheme:
		if len(m.themes) > 0 {
			m.theme = m.themes[clamp(m.listCursor, 0, len(m.themes)-1)]
		}
		m.ui.PopPopup()
		if m.themeForDefault {
			next := m.cfg.Clone()
			next.DefaultTheme = m.theme.Name
			m.commitConfig(next)
		} else {
			m.info("Theme", m.theme.Name)
		}
	case uistate.EditGeneralConfig:
		m.ui.PopPopup()
		m.commitConfigValue()
	case uistate.EditThemeStyle:
		m.acceptStyleEditor(f)
	case uistate.CustomHexColorPromptFG, uistate.CustomHexColorPromptBG:
		m.acceptHexColor(top == uistate.CustomHexColorPromptFG)
	case uistate.SaveThemePrompt:
		if f == uistate.SubmitButton {
			m.saveDraftTheme()
		} else {
			m.ui.PopPopup()
		}
	case uistate.ConfirmDiscardCardChanges:
		if f == uistate.SubmitButton {
			m.closeCard()
		} else {
			m.ui.PopPopup()
		}
	case uistate.FilterByTag:
		if f == uistate.SubmitButton {
			m.applyTagFilter()
		} else if m.ui.InUserInput() {
			m.stopUserInput()
		} else {
			m.toggleTagAtCursor()
		}
	case uistate.DateTimePicker:
		if f == uistate.DTPToggleTimePicker {
			m.picker.ToggleTime(m.now())
			m.settlePicker()
			break
		}
		m.commitPicker()
	}
	return m, nil
}

// ---- cards and boards ----

func (m *Model) openCard(boardID, cardID domain.ID) {
	card, err := m.editor.Card(boardID, cardID)
	if err != nil {
		m.toastError(err)
		return
	}
	m.boardID, m.cardID = boardID, cardID
	draft := card.Clone()
	m.cardBeingEdited = &draft
	m.resetCardInputs(card)
	m.ui.PushPopup(uistate.ViewCard)
}

func (m *Model) resetCardInputs(c domain.Card) {
	m.cardName.SetValue(c.Name)
	m.cardDesc.SetValue(c.Description)
	m.cardDue.SetValue("")
	if c.Due != nil {
		m.cardDue.SetValue(m.cfg.DateTimeFormat().Format(c.Due))
	}
	m.cardTags.SetValue(strings.Join(c.Tags, ", "))
	m.cardComments.SetValue(strings.Join(c.Comments, ", "))
}

// splitList reads a comma separated field, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDue reads the due field. An unchanged rendering keeps the stored
// value so formats without seconds do not truncate it.
func (m Model) parseDue(raw string, stored *time.Time) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == domain.FieldNotSet {
		return nil, nil
	}
	if stored != nil && raw == m.cfg.DateTimeFormat().Format(stored) {
		return stored, nil
	}
	return domain.ParseDateTime(raw, m.cfg.DateTimeFormat())
}

// draftCard merges the form buffers into the card being edited.
func (m Model) draftCard() (domain.Card, error) {
	if m.cardBeingEdited == nil {
		return domain.Card{}, fmt.Errorf("%w: no card open", app.ErrForbidden)
	}
	c := m.cardBeingEdited.Clone()
	c.Name = strings.TrimSpace(m.cardName.Value())
	c.Description = m.cardDesc.Value()
	due, err := m.parseDue(m.cardDue.Value(), c.Due)
	if err != nil {
		return domain.Card{}, err
	}
	c.Due = due
	c.Tags = domain.NormalizeTags(splitList(m.cardTags.Value()))
	c.Comments = splitList(m.cardComments.Value())
	return c, nil
}

func (m Model) cardDirty() bool {
	if m.cardBeingEdited == nil {
		return false
	}
	draft, err := m.draftCard()
	if err != nil {
		return true
	}
	stored, err := m.editor.Card(m.boardID, m.cardBeingEdited.ID)
	if err != nil {
		return false
	}
	return !draft.SameContent(stored)
}

func (m *Model) commitCard() {
	draft, err := m.draftCard()
	if err != nil {
		m.toastError(err)
		return
	}
	if err := m.editor.UpdateCard(m.boardID, draft); err != nil {
		m.toastError(err)
		return
	}
	m.closeCard()
	m.snapSelection()
}

func (m *Model) closeCard() {
	m.cardBeingEdited = nil
	m.ui.ClosePopup(uistate.ViewCard)
	if m.picker.DateState() != datepicker.Closed {
		m.picker.Reset()
	}
}

// cycleDraftStatus steps the open card's status with left and right.
func (m *Model) cycleDraftStatus(delta int) {
	if m.cardBeingEdited == nil {
		return
	}
	all := domain.AllStatuses()
	idx := max(0, slices.Index(all, m.cardBeingEdited.Status))
	m.cardBeingEdited.Status = all[wrapIndex(idx, delta, len(all))]
}

func (m *Model) cycleDraftPriority(delta int) {
	if m.cardBeingEdited == nil {
		return
	}
	all := domain.AllPriorities()
	idx := max(0, slices.Index(all, m.cardBeingEdited.Priority))
	m.cardBeingEdited.Priority = all[wrapIndex(idx, delta, len(all))]
}

func (m *Model) createBoard() {
	board, err := m.editor.AddBoard(m.boardName.Value(), m.boardDesc.Value())
	if err != nil {
		m.toastError(err)
		return
	}
	m.boardID, m.cardID = board.ID, domain.ID{}
	m.leaveForm()
	m.info("Board created", board.Name)
}

func (m *Model) createCard() {
	due, err := m.parseDue(m.cardDue.Value(), nil)
	if err != nil {
		m.toastError(err)
		return
	}
	card, err := m.editor.AddCard(m.boardID, domain.CardInput{
		Name:        m.cardName.Value(),
		Description: m.cardDesc.Value(),
		Due:         due,
	})
	if err != nil {
		m.toastError(err)
		return
	}
	m.cardID = card.ID
	m.leaveForm()
	m.info("Card created", card.Name)
}

// leaveForm returns from a full-screen form to the board it was opened from.
func (m *Model) leaveForm() {
	if prev, ok := m.ui.PreviousView(); ok && prev.IsBoardView() {
		m.ui.GoBack()
	} else {
		m.ui.ResetView(m.cfg.View())
	}
	_ = m.ui.SetFocus(uistate.Body)
	m.snapSelection()
}

// copyCard puts the open card on the clipboard as markdown.
func (m *Model) copyCard() {
	draft, err := m.draftCard()
	if err != nil {
		m.toastError(err)
		return
	}
	if err := m.copyText(cardMarkdown(draft, m.cfg.DateTimeFormat())); err != nil {
		m.toastError(fmt.Errorf("%w: copy card: %w", app.ErrIOFailure, err))
		return
	}
	m.info("Copied", draft.Name)
}

func cardMarkdown(c domain.Card, format domain.DateTimeFormat) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Name)
	if strings.TrimSpace(c.Description) != "" {
		fmt.Fprintf(&b, "%s\n\n", c.Description)
	}
	fmt.Fprintf(&b, "- Status: %s\n- Priority: %s\n- Due: %s\n", c.Status, c.Priority, format.Format(c.Due))
	if len(c.Tags) > 0 {
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(c.Tags, ", "))
	}
	for _, comment := range c.Comments {
		fmt.Fprintf(&b, "\n> %s\n", comment)
	}
	return b.String()
}

// ---- date picker ----

func (m *Model) openPicker() {
	m.stopUserInput()
	stored := (*time.Time)(nil)
	if m.cardBeingEdited != nil {
		stored = m.cardBeingEdited.Due
	}
	due, err := m.parseDue(m.cardDue.Value(), stored)
	if err != nil {
		log.Debug("due field unparsable, picker starts from today", "err", err)
		due = nil
	}
	m.picker.Reset()
	m.picker.SetViewport(datepicker.Rect{W: m.width, H: m.height})
	m.picker.SetValue(due)
	m.picker.SetAnchor(m.pickerAnchor())
	m.picker.Open(m.now())
	m.ui.PushPopup(uistate.DateTimePicker)
	m.settlePicker()
}

// settlePicker finishes animations at once when they are disabled.
func (m *Model) settlePicker() {
	if m.cfg.DisableAnimations {
		m.picker.Tick(m.now(), true)
	}
	m.syncPickerArea()
}

func (m *Model) commitPicker() {
	format := m.cfg.DateTimeFormat()
	if m.picker.TimeActive() {
		format = format.WithTime()
	}
	m.cardDue.SetValue("")
	if sel := m.picker.Selected(); sel != nil {
		m.cardDue.SetValue(format.Format(sel))
	}
	m.closePicker()
}

// closePicker drops the popup; the widget keeps drawing until its closing
// animation ends.
func (m *Model) closePicker() {
	m.picker.Close(m.now())
	m.ui.ClosePopup(uistate.DateTimePicker)
	m.settlePicker()
}

// skipTimeFocus keeps focus off the time spinners while the column is hidden.
func (m *Model) skipTimeFocus(step int) {
	top, ok := m.ui.TopPopup()
	if !ok || top != uistate.DateTimePicker || m.picker.TimeActive() {
		return
	}
	switch m.ui.Focus() {
	case uistate.DTPHour, uistate.DTPMinute, uistate.DTPSecond:
		if step > 0 {
			_ = m.ui.SetFocus(uistate.DTPCalender)
		} else {
			_ = m.ui.SetFocus(uistate.DTPToggleTimePicker)
		}
	}
}

// ---- tag filter ----

func (m *Model) openTagFilter() error {
	if len(domain.TagHistogram(m.editor.Boards())) == 0 {
		return forbidden("no card has tags yet")
	}
	m.tagSelection = map[string]bool{}
	for _, tag := range m.filterTags {
		m.tagSelection[tag] = true
	}
	m.tagCursor = 0
	m.tagInput.SetValue("")
	m.ui.PushPopup(uistate.FilterByTag)
	return nil
}

// visibleTags is the tag histogram narrowed by the popup's text field.
func (m Model) visibleTags() []domain.TagCount {
	all := domain.TagHistogram(m.editor.Boards())
	q := domain.NormalizeTag(m.tagInput.Value())
	if q == "" {
		return all
	}
	return slices.DeleteFunc(all, func(tc domain.TagCount) bool {
		return !strings.Contains(tc.Tag, q)
	})
}

func (m *Model) toggleTagAtCursor() {
	tags := m.visibleTags()
	if m.tagCursor < 0 || m.tagCursor >= len(tags) {
		return
	}
	tag := tags[m.tagCursor].Tag
	if m.tagSelection[tag] {
		delete(m.tagSelection, tag)
	} else {
		m.tagSelection[tag] = true
	}
}

func (m *Model) applyTagFilter() {
	tags := make([]string, 0, len(m.tagSelection))
	for tag, on := range m.tagSelection {
		if on {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	m.filterTags = tags
	m.ui.ClosePopup(uistate.FilterByTag)
	m.viewport.Reset()
	m.snapSelection()
	if len(tags) == 0 {
		m.info("Filter cleared", "")
		return
	}
	m.info("Filtering", strings.Join(tags, ", "))
}

func (m *Model) clearFilter() error {
	if !m.filterActive() {
		return forbidden("no tag filter is active")
	}
	m.filterTags = nil
	m.tagSelection = map[string]bool{}
	m.viewport.Reset()
	m.snapSelection()
	m.info("Filter cleared", "")
	return nil
}

// ---- main menu ----

type menuItem struct {
	label string
	run   func(Model) (Model, tea.Cmd)
}

func (m Model) mainMenuItems() []menuItem {
	items := []menuItem{
		{"View your Boards", func(m Model) (Model, tea.Cmd) {
			m.ui.ResetView(m.cfg.View())
			m.snapSelection()
			return m, nil
		}},
		{"Configure", func(m Model) (Model, tea.Cmd) {
			if err := m.openConfigMenu(); err != nil {
				m.toastError(err)
			}
			return m, nil
		}},
		{"Help", func(m Model) (Model, tea.Cmd) {
			m.ui.SetView(uistate.HelpMenu)
			return m, nil
		}},
		{"Load a Save (Local)", func(m Model) (Model, tea.Cmd) {
			return m, m.openLocalSaves()
		}},
	}
	if m.loggedIn() {
		items = append(items, menuItem{"Load a Save (Cloud)", func(m Model) (Model, tea.Cmd) {
			return m, m.openCloudSaves()
		}})
	} else {
		items = append(items, menuItem{"Login", func(m Model) (Model, tea.Cmd) {
			m.openAccountView(uistate.Login)
			return m, nil
		}})
	}
	return append(items, menuItem{"Quit", func(m Model) (Model, tea.Cmd) { return m.quit() }})
}

func (m *Model) openLocalSaves() tea.Cmd {
	m.saveCursor = 0
	m.localSaves = nil
	m.preview = nil
	m.ui.SetView(uistate.LoadLocalSave)
	return m.submit(app.Request{Kind: app.RequestListLocalSaves}, "Listing saves")
}

func (m *Model) openCloudSaves() tea.Cmd {
	if !m.loggedIn() {
		m.toastError(forbidden("log in to load cloud saves"))
		return nil
	}
	m.saveCursor = 0
	m.cloudSaves = nil
	m.ui.SetView(uistate.LoadCloudSave)
	return m.submit(app.Request{Kind: app.RequestCloudListSaves}, "Listing cloud saves")
}

// ---- account ----

func (m *Model) openAccountView(v uistate.View) {
	m.password.SetValue("")
	m.confirmPassword.SetValue("")
	m.resetToken.SetValue("")
	if m.session.Email != "" && m.email.Value() == "" {
		m.email.SetValue(m.session.Email)
	}
	m.ui.SetView(v)
}

func (m Model) acceptAccount(v uistate.View, f uistate.Focus) (Model, tea.Cmd) {
	switch f {
	case uistate.ShowPasswordToggle:
		m.showPassword = !m.showPassword
		return m, nil
	case uistate.SendResetPasswordLinkButton:
		return m, m.sendResetLink()
	case uistate.SubmitButton:
	default:
		m.acceptTextField()
		return m, nil
	}

	creds, err := m.credentials(v != uistate.Login)
	if err != nil {
		m.toastError(err)
		return m, nil
	}
	switch v {
	case uistate.Login:
		return m, m.submit(app.Request{Kind: app.RequestCloudLogin, Credentials: creds}, "Logging in")
	case uistate.SignUp:
		return m, m.submit(app.Request{Kind: app.RequestCloudSignUp, Credentials: creds}, "Signing up")
	}
	creds.Token = strings.TrimSpace(m.resetToken.Value())
	if creds.Token == "" {
		m.toastError(fmt.Errorf("%w: enter the code from the reset email", domain.ErrInputValidation))
		return m, nil
	}
	return m, m.submit(app.Request{Kind: app.RequestCloudResetPassword, Credentials: creds}, "Resetting password")
}

// credentials validates the account form. confirm requires both password
// fields to match.
func (m Model) credentials(confirm bool) (app.Credentials, error) {
	email := strings.TrimSpace(m.email.Value())
	if !strings.Contains(email, "@") {
		return app.Credentials{}, fmt.Errorf("%w: enter a valid email", domain.ErrInputValidation)
	}
	password := m.password.Value()
	if password == "" {
		return app.Credentials{}, fmt.Errorf("%w: enter a password", domain.ErrInputValidation)
	}
	if confirm && password != m.confirmPassword.Value() {
		return app.Credentials{}, fmt.Errorf("%w: passwords do not match", domain.ErrInputValidation)
	}
	return app.Credentials{Email: email, Password: password}, nil
}

func (m *Model) sendResetLink() tea.Cmd {
	now := m.now()
	if now.Before(m.resetAllowedAt) {
		m.toastError(&app.RateLimitedError{Op: "send reset link", RetryAfter: m.resetAllowedAt.Sub(now), Until: m.resetAllowedAt})
		return nil
	}
	email := strings.TrimSpace(m.email.Value())
	if !strings.Contains(email, "@") {
		m.toastError(fmt.Errorf("%w: enter a valid email", domain.ErrInputValidation))
		return nil
	}
	return m.submit(app.Request{Kind: app.RequestCloudSendResetLink, Credentials: app.Credentials{Email: email}}, "Sending reset link")
}

// ---- keybindings ----

func (m *Model) beginRebind() {
	actions := keymap.AllActions()
	if m.bindCursor < 0 || m.bindCursor >= len(actions) {
		return
	}
	m.ui.PushPopup(uistate.EditSpecificKeyBinding)
	m.capture.Begin(actions[m.bindCursor])
	_ = m.ui.SetInputStatus(uistate.KeyBindMode)
}

// handleCaptureKey feeds KeyBindMode: accept keys commit, cancel keys abort
// and anything else is captured.
func (m Model) handleCaptureKey(k keymap.Key) (Model, tea.Cmd) {
	switch {
	case slices.Contains(m.bindings.Keys(keymap.Accept), k):
		action := m.capture.Action()
		next, err := m.capture.Commit(m.bindings)
		m.ui.ClosePopup(uistate.EditSpecificKeyBinding)
		if err != nil {
			m.toastError(err)
			return m, nil
		}
		cfg := m.cfg.Clone()
		cfg.Keybindings = next.ToConfig()
		m.commitConfig(cfg)
		m.info("Rebound", action.String())
	case slices.Contains(m.bindings.Keys(keymap.GoToPreviousUIModeOrCancel), k):
		m.capture.Cancel()
		m.ui.ClosePopup(uistate.EditSpecificKeyBinding)
	default:
		m.capture.Add(k)
	}
	return m, nil
}

func (m *Model) resetKeybindings() {
	cfg := m.cfg.Clone()
	cfg.Keybindings = keymap.Defaults().ToConfig()
	m.commitConfig(cfg)
	m.info("Keybindings reset", "")
}

// ---- theme editor ----

func themeRoles() []theme.Role {
	return theme.AllRoles()
}

// colorOptions lists the style editor choices: terminal default, the named
// colors, then a custom hex prompt.
func colorOptions() []string {
	return slices.Concat([]string{""}, theme.ColorNames(), []string{customColor})
}

const customColor = "Custom…"

func (m *Model) openThemePicker(forDefault bool) {
	m.themeBefore = m.theme
	m.themeForDefault = forDefault
	name := m.theme.Name
	if forDefault {
		name = m.cfg.DefaultTheme
	}
	m.listCursor = max(0, slices.IndexFunc(m.themes, func(t theme.Theme) bool { return t.Name == name }))
	m.ui.PushPopup(uistate.ChangeTheme)
}

func (m *Model) startCreateTheme() error {
	m.themeBefore = m.theme
	m.draftTheme = m.theme.Clone()
	m.draftTheme.Name = m.nextThemeName()
	m.roleCursor = 0
	m.ui.SetView(uistate.CreateTheme)
	return nil
}

func (m Model) nextThemeName() string {
	for n := 1; ; n++ {
		name := fmt.Sprintf("Custom Theme %d", n)
		if _, taken := theme.Find(m.themes, name); !taken {
			return name
		}
	}
}

func (m Model) currentRole() theme.Role {
	roles := themeRoles()
	return roles[clamp(m.roleCursor, 0, len(roles)-1)]
}

func (m *Model) openStyleEditor() {
	m.modCursor = 0
	m.ui.PushPopup(uistate.EditThemeStyle)
	m.syncColorCursor()
}

// syncColorCursor points the color list at the focused slot's current color.
func (m *Model) syncColorCursor() {
	style := m.draftTheme.Style(m.currentRole())
	current := style.FG
	if m.ui.Focus() == uistate.StyleEditorBG {
		current = style.BG
	}
	opts := colorOptions()
	idx := slices.IndexFunc(opts, func(o string) bool { return strings.EqualFold(o, current) })
	if idx < 0 {
		idx = len(opts) - 1
	}
	m.colorCursor = idx
}

func (m *Model) navigateStyleEditor(delta int) {
	role := m.currentRole()
	style := m.draftTheme.Style(role)
	switch m.ui.Focus() {
	case uistate.StyleEditorFG, uistate.StyleEditorBG:
		opts := colorOptions()
		m.colorCursor = wrapIndex(m.colorCursor, delta, len(opts))
		choice := opts[m.colorCursor]
		if choice == customColor {
			return
		}
		if m.ui.Focus() == uistate.StyleEditorFG {
			style.FG = choice
		} else {
			style.BG = choice
		}
		m.draftTheme = m.draftTheme.With(role, style)
	case uistate.StyleEditorModifiers:
		m.modCursor = wrapIndex(m.modCursor, delta, len(theme.AllModifiers()))
	}
}

func (m *Model) acceptStyleEditor(f uistate.Focus) {
	role := m.currentRole()
	switch f {
	case uistate.StyleEditorFG, uistate.StyleEditorBG:
		if colorOptions()[m.colorCursor] != customColor {
			return
		}
		m.hexInput.SetValue("")
		if f == uistate.StyleEditorFG {
			m.ui.PushPopup(uistate.CustomHexColorPromptFG)
		} else {
			m.ui.PushPopup(uistate.CustomHexColorPromptBG)
		}
		_ = m.ui.SetInputStatus(uistate.UserInput)
	case uistate.StyleEditorModifiers:
		mod := theme.AllModifiers()[clamp(m.modCursor, 0, len(theme.AllModifiers())-1)]
		m.draftTheme = m.draftTheme.With(role, m.draftTheme.Style(role).Toggle(mod))
	case uistate.SubmitButton:
		m.ui.ClosePopup(uistate.EditThemeStyle)
	}
}

func (m *Model) acceptHexColor(fg bool) {
	raw := "#" + strings.TrimPrefix(strings.TrimSpace(m.hexInput.Value()), "#")
	c, err := theme.ParseColor(raw)
	if err != nil {
		m.toastError(fmt.Errorf("%w: %w", domain.ErrInputValidation, err))
		return
	}
	role := m.currentRole()
	style := m.draftTheme.Style(role)
	if fg {
		style.FG = c.Hex()
	} else {
		style.BG = c.Hex()
	}
	m.draftTheme = m.draftTheme.With(role, style)
	m.ui.PopPopup()
}

func (m *Model) saveDraftTheme() {
	if err := m.draftTheme.Validate(); err != nil {
		m.toastError(fmt.Errorf("%w: %w", domain.ErrInputValidation, err))
		return
	}
	if m.themeDir != "" {
		path, err := theme.Save(m.themeDir, m.draftTheme)
		if err != nil {
			m.toastError(fmt.Errorf("%w: save theme: %w", app.ErrIOFailure, err))
			return
		}
		log.Info("theme saved", "path", path)
	}
	m.themes = append(m.themes, m.draftTheme.Clone())
	m.theme = m.draftTheme.Clone()
	m.ui.ResetView(m.cfg.View())
	m.info("Theme saved", m.theme.Name)
}

// ---- palette activation ----

func (m Model) activatePalette(list palette.List) (Model, tea.Cmd) {
	switch list {
	case palette.CardList:
		match, ok := m.palette.SelectedCard()
		if !ok {
			return m, nil
		}
		m.ui.ClosePopup(uistate.CommandPalette)
		m.jumpTo(match.BoardID, match.CardID)
	case palette.BoardList:
		match, ok := m.palette.SelectedBoard()
		if !ok {
			return m, nil
		}
		m.ui.ClosePopup(uistate.CommandPalette)
		m.jumpTo(match.BoardID, domain.ID{})
	default:
		cmd, ok := m.palette.SelectedCommand()
		if !ok {
			return m, nil
		}
		m.ui.ClosePopup(uistate.CommandPalette)
		return m.runCommand(cmd)
	}
	return m, nil
}

// jumpTo selects a board, or a card on it, leaving the filter when the
// target is hidden by it.
func (m *Model) jumpTo(boardID, cardID domain.ID) {
	if len(m.ui.Popups()) > 0 {
		m.toastError(forbidden("close the open popup first"))
		return
	}
	if m.filterActive() {
		boards := m.boards()
		bi := boardIndex(boards, boardID)
		if bi < 0 || (!cardID.IsZero() && boards[bi].CardIndex(cardID) < 0) {
			m.filterTags = nil
			m.tagSelection = map[string]bool{}
		}
	}
	if !m.ui.View().IsBoardView() {
		m.ui.ResetView(m.cfg.View())
	}
	m.boardID, m.cardID = boardID, cardID
	if cardID.IsZero() {
		if board, ok := m.editor.Board(boardID); ok && len(board.Cards) > 0 {
			m.cardID = board.Cards[0].ID
		}
	}
	m.snapSelection()
}
