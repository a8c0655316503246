package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	tea "charm.land/bubbletea/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/keymap"
	"github.com/evanschultz/kanban/internal/theme"
	"github.com/evanschultz/kanban/internal/tui/datepicker"
	"github.com/evanschultz/kanban/internal/tui/toast"
	"github.com/evanschultz/kanban/internal/uistate"
)

var (
	fallbackBackground = colorful.Color{R: 0.08, G: 0.08, B: 0.1}
	fallbackError      = colorful.Color{R: 0.9, G: 0.3, B: 0.3}
	fallbackWarn       = colorful.Color{R: 0.95, G: 0.75, B: 0.25}
	fallbackInfo       = colorful.Color{R: 0.35, G: 0.7, B: 0.95}
	fallbackLoading    = colorful.Color{R: 0.6, G: 0.6, B: 0.85}
)

const toastWidth = 42

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// View renders the current frame.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	if m.cfg.EnableMouseSupport {
		v.MouseMode = tea.MouseModeCellMotion
	}
	return v
}

func (m Model) background() colorful.Color {
	return m.theme.Background(fallbackBackground)
}

// toastColor is the fully faded-in color for kind.
func (m Model) toastColor(kind toast.Kind) colorful.Color {
	switch kind {
	case toast.Error:
		return m.theme.Foreground(theme.LogError, fallbackError)
	case toast.Warning:
		return m.theme.Foreground(theme.LogWarn, fallbackWarn)
	case toast.Loading:
		return m.theme.Foreground(theme.ProgressBar, fallbackLoading)
	}
	return m.theme.Foreground(theme.LogInfo, fallbackInfo)
}

func (m Model) render() string {
	if m.width <= 0 || m.height <= 0 {
		return "loading..."
	}
	if m.tooSmall() {
		return m.renderSizeError()
	}

	var layers []*lipgloss.Layer
	layers = append(layers, lipgloss.NewLayer(fitLines(m.renderView(), m.height)).X(0).Y(0).Z(0))

	for i, p := range m.ui.Popups() {
		if p == uistate.DateTimePicker {
			continue
		}
		box := m.renderPopup(p)
		o := m.centeredOrigin(lipgloss.Width(box), lipgloss.Height(box))
		if p == uistate.CommandPalette {
			o.Y = min(o.Y, 3)
		}
		layers = append(layers, lipgloss.NewLayer(box).X(o.X).Y(o.Y).Z(10+i))
	}
	if m.picker.DateState() != datepicker.Closed {
		if a, ok := m.picker.Anchor(); ok {
			layers = append(layers, lipgloss.NewLayer(m.renderPicker()).X(a.X).Y(a.Y).Z(50))
		}
	}
	y := 0
	for _, t := range m.toasts.Visible(toast.MaxVisible) {
		box := m.renderToast(t)
		layers = append(layers, lipgloss.NewLayer(box).X(max(0, m.width-lipgloss.Width(box)-1)).Y(y).Z(60))
		y += lipgloss.Height(box)
	}
	if m.debug {
		box := m.renderDebug()
		layers = append(layers, lipgloss.NewLayer(box).X(1).Y(max(0, m.height-lipgloss.Height(box)-1)).Z(70))
	}

	canvas := lipgloss.NewCanvas(m.width, m.height)
	for _, l := range layers {
		canvas.Compose(l)
	}
	return canvas.Render()
}

func (m Model) renderSizeError() string {
	msg := lipgloss.JoinVertical(lipgloss.Center,
		m.theme.Lipgloss(theme.ErrorText).Bold(true).Render("Terminal too small"),
		"",
		fmt.Sprintf("need at least %d×%d, have %d×%d", MinWidth, MinHeight, m.width, m.height),
		m.theme.Lipgloss(theme.InactiveText).Render(fmt.Sprintf("%s quit", m.bindings.Binding(keymap.Quit).Help().Key)),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

func (m Model) renderView() string {
	switch v := m.ui.View(); {
	case v.IsBoardView():
		return m.renderBoardView()
	case v == uistate.MainMenuView:
		return m.renderMainMenu()
	case v == uistate.ConfigMenu:
		return m.renderConfigMenu()
	case v == uistate.EditKeybindings:
		return m.renderKeybindings()
	case v == uistate.HelpMenu:
		return m.renderHelpMenu()
	case v == uistate.LogsOnly:
		return m.panel("Logs", m.renderLogLines(m.height-2), m.width, m.height, true)
	case v == uistate.NewBoard:
		return m.renderNewBoard()
	case v == uistate.NewCard:
		return m.renderNewCard()
	case v == uistate.LoadLocalSave:
		return m.renderLocalSaves()
	case v == uistate.LoadCloudSave:
		return m.renderCloudSaves()
	case v == uistate.Login, v == uistate.SignUp, v == uistate.ResetPassword:
		return m.renderAccount(v)
	case v == uistate.CreateTheme:
		return m.renderCreateTheme()
	}
	return ""
}

// ---- shared pieces ----

func (m Model) focusColor() color.Color {
	return m.theme.Lipgloss(theme.KeyboardFocus).GetForeground()
}

func (m Model) dimColor() color.Color {
	return m.theme.Lipgloss(theme.InactiveText).GetForeground()
}

// panel draws a titled rounded box of exactly w×h cells.
func (m Model) panel(title, content string, w, h int, focused bool) string {
	border := m.dimColor()
	if focused {
		border = m.focusColor()
	}
	inner := max(0, w-2)
	body := fitLines(content, max(0, h-2))
	if title != "" {
		label := m.theme.Lipgloss(theme.General).Bold(true).Render(truncate(title, inner))
		body = fitLines(label+"\n"+content, max(0, h-2))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(inner).
		MaxWidth(w).
		Render(clipLines(body, inner))
}

func (m Model) popupBox(title, content string, width int) string {
	header := m.theme.Lipgloss(theme.General).Bold(true).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.focusColor()).
		Padding(0, 1).
		Width(width).
		Render(header + "\n\n" + content)
}

func (m Model) button(label string, focused bool) string {
	s := m.theme.Lipgloss(theme.General).Padding(0, 1)
	if focused {
		s = m.theme.Lipgloss(theme.KeyboardFocus).Reverse(true).Padding(0, 1)
	}
	return s.Render(label)
}

// field renders "label value" with the label highlighted when focused.
func (m Model) field(label, value string, focused bool) string {
	ls := m.theme.Lipgloss(theme.HelpText)
	if focused {
		ls = m.theme.Lipgloss(theme.KeyboardFocus).Bold(true)
	}
	return ls.Render(fmt.Sprintf("%-12s", label)) + " " + value
}

func (m Model) list(items []string, cursor, rows int) string {
	if len(items) == 0 {
		return m.theme.Lipgloss(theme.InactiveText).Render("(empty)")
	}
	start := 0
	if rows > 0 && cursor >= rows {
		start = cursor - rows + 1
	}
	end := len(items)
	if rows > 0 {
		end = min(end, start+rows)
	}
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		if i == cursor {
			lines = append(lines, m.theme.Lipgloss(theme.ListSelect).Render("› "+items[i]))
			continue
		}
		lines = append(lines, "  "+items[i])
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelpLine(width int) string {
	h := m.help
	h.ShowAll = false
	h.SetWidth(max(0, width))
	return h.View(m.helpKeys())
}

func (m Model) renderLogLines(n int) string {
	if n <= 0 || m.logs == nil {
		return ""
	}
	lines := m.logs.Tail(n)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		role := theme.LogInfo
		switch {
		case strings.Contains(line, "ERRO"):
			role = theme.LogError
		case strings.Contains(line, "WARN"):
			role = theme.LogWarn
		case strings.Contains(line, "DEBU"):
			role = theme.LogDebug
		}
		out = append(out, m.theme.Lipgloss(role).Render(line))
	}
	return strings.Join(out, "\n")
}

// ---- board views ----

func (m Model) renderBoardView() string {
	l := m.boardLayout()
	focus := m.ui.Focus()
	parts := make([]string, 0, 4)
	if l.title.H > 0 {
		parts = append(parts, m.panel("", m.renderTitleLine(), l.title.W, l.title.H, focus == uistate.Title))
	}
	parts = append(parts, m.renderBody(l))
	if l.help.H > 0 {
		parts = append(parts, m.panel("", m.renderHelpLine(l.help.W-2), l.help.W, l.help.H, focus == uistate.Help))
	}
	if l.log.H > 0 {
		parts = append(parts, m.panel("Log", m.renderLogLines(l.log.H-3), l.log.W, l.log.H, focus == uistate.Log))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderTitleLine() string {
	title := m.theme.Lipgloss(theme.General).Bold(true).Render("kanban")
	info := []string{m.ui.View().Label()}
	if m.filterActive() {
		info = append(info, "filter: "+strings.Join(m.filterTags, ", "))
	}
	if m.loggedIn() {
		info = append(info, "cloud: "+m.session.Email)
	}
	if m.editor.CanUndo() {
		info = append(info, "unsaved edits")
	}
	return title + "  " + m.theme.Lipgloss(theme.InactiveText).Render(strings.Join(info, " • "))
}

func (m Model) renderBody(l boardLayout) string {
	focused := m.ui.Focus() == uistate.Body && len(m.ui.Popups()) == 0
	boards := m.boards()
	if len(boards) == 0 {
		msg := "No boards yet. " + m.bindings.Binding(keymap.NewBoard).Help().Key + " creates one."
		if m.filterActive() {
			msg = "No card matches the tag filter."
		}
		return m.panel("", lipgloss.Place(l.body.W-2, l.body.H-2, lipgloss.Center, lipgloss.Center, msg), l.body.W, l.body.H, focused)
	}
	visible := m.visibleBoards(l)
	cols := make([]string, 0, len(visible))
	for i, vb := range visible {
		bi := boardIndex(boards, vb.BoardID)
		if bi < 0 {
			continue
		}
		cols = append(cols, m.renderColumn(l, i, boards[bi], vb, focused))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	return fitLines(body, l.body.H)
}

func (m Model) renderColumn(l boardLayout, i int, board domain.Board, vb domain.VisibleBoard, focused bool) string {
	col := l.columnRect(i)
	selected := board.ID == m.boardID
	header := fmt.Sprintf("%s (%d)", board.Name, len(board.Cards))
	hs := m.theme.Lipgloss(theme.General).Bold(true)
	if selected {
		hs = m.theme.Lipgloss(theme.ListSelect).Bold(true)
	}
	lines := []string{hs.Render(truncate(header, col.W-2))}
	for _, id := range vb.CardIDs {
		card, ok := board.Card(id)
		if !ok {
			continue
		}
		lines = append(lines, m.renderCard(card, col.W-2, l.cardHeight, focused && id == m.cardID))
	}
	if len(board.Cards) > len(vb.CardIDs) {
		lines = append(lines, m.theme.Lipgloss(theme.InactiveText).Render(fmt.Sprintf("%d more…", len(board.Cards)-len(vb.CardIDs))))
	}
	return m.panel("", strings.Join(lines, "\n"), col.W, col.H, focused && selected)
}

func statusRole(s domain.Status) theme.Role {
	switch s {
	case domain.StatusComplete:
		return theme.CardStatusComplete
	case domain.StatusStale:
		return theme.CardStatusStale
	}
	return theme.CardStatusActive
}

func priorityRole(p domain.Priority) theme.Role {
	switch p {
	case domain.PriorityHigh:
		return theme.CardPriorityHigh
	case domain.PriorityMedium:
		return theme.CardPriorityMedium
	}
	return theme.CardPriorityLow
}

func dueRole(s domain.DueState) theme.Role {
	switch s {
	case domain.DueOverdue:
		return theme.CardDueOverdue
	case domain.DueWarning:
		return theme.CardDueWarning
	}
	return theme.CardDueDefault
}

func (m Model) renderCard(c domain.Card, w, h int, selected bool) string {
	border := m.dimColor()
	if selected {
		border = m.focusColor()
	}
	inner := max(1, w-2)
	name := m.theme.Lipgloss(statusRole(c.Status)).Bold(true).Render(truncate(c.Name, inner))
	meta := m.theme.Lipgloss(priorityRole(c.Priority)).Render(string(c.Priority))
	if c.Due != nil {
		due := m.theme.Lipgloss(dueRole(c.DueState(m.now(), m.cfg.WarningDelta, m.cfg.DateTimeFormat()))).Render(m.cfg.DateTimeFormat().Format(c.Due))
		meta += " • " + due
	}
	lines := []string{name, meta}
	if len(c.Tags) > 0 {
		lines = append(lines, m.theme.Lipgloss(theme.HelpText).Render(truncate("#"+strings.Join(c.Tags, " #"), inner)))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(inner).
		Render(fitLines(clipLines(strings.Join(lines, "\n"), inner), max(1, h-2)))
}

// ---- full-screen views ----

func (m Model) renderMainMenu() string {
	items := m.mainMenuItems()
	labels := make([]string, 0, len(items))
	for _, it := range items {
		labels = append(labels, it.label)
	}
	focus := m.ui.Focus()
	listH := m.height - logHeight
	menuW := m.width / 3
	menu := m.panel("Main Menu", m.list(labels, m.menuCursor, listH-3), menuW, listH, focus == uistate.MainMenu)
	hint := mainMenuHint(labels, m.menuCursor)
	side := m.panel("About", hint, m.width-menuW, listH, focus == uistate.MainMenuHelp)
	top := lipgloss.JoinHorizontal(lipgloss.Top, menu, side)
	return lipgloss.JoinVertical(lipgloss.Left, top, m.panel("Log", m.renderLogLines(logHeight-3), m.width, logHeight, focus == uistate.Log))
}

func mainMenuHint(labels []string, cursor int) string {
	if cursor < 0 || cursor >= len(labels) {
		return ""
	}
	switch labels[cursor] {
	case "View your Boards":
		return "Open the kanban boards in your default view."
	case "Configure":
		return "Change settings, keybindings and the default theme."
	case "Help":
		return "List every keybinding."
	case "Load a Save (Local)":
		return "Browse, preview, load or delete local save files."
	case "Load a Save (Cloud)":
		return "Fetch a save stored on the sync server."
	case "Login":
		return "Log in to sync saves with the server."
	}
	return "Leave the application."
}

func (m Model) renderHelpMenu() string {
	h := m.help
	h.ShowAll = true
	h.SetWidth(m.width - 4)
	focus := m.ui.Focus()
	top := m.panel("Help", h.View(m.helpKeys()), m.width, m.height-logHeight, focus == uistate.Help)
	return lipgloss.JoinVertical(lipgloss.Left, top, m.panel("Log", m.renderLogLines(logHeight-3), m.width, logHeight, focus == uistate.Log))
}

func (m Model) renderNewBoard() string {
	f := m.ui.Focus()
	content := strings.Join([]string{
		m.field("Name", m.boardName.View(), f == uistate.NewBoardName),
		m.field("Description", m.boardDesc.View(), f == uistate.NewBoardDescription),
		"",
		m.button("Create Board", f == uistate.SubmitButton),
	}, "\n")
	return m.panel("New Board", content, m.width, m.height, true)
}

func (m Model) renderNewCard() string {
	f := m.ui.Focus()
	board, _ := m.editor.Board(m.boardID)
	lines := []string{
		m.theme.Lipgloss(theme.InactiveText).Render("on " + board.Name),
		m.field("Name", m.cardName.View(), f == uistate.CardName),
		m.field("Description", "", f == uistate.CardDescription),
		fitLines(m.cardDesc.View(), descRows),
	}
	lines = append(lines,
		m.field("Due", m.cardDue.View(), f == uistate.CardDueDate),
		"",
		m.button("Create Card", f == uistate.SubmitButton),
	)
	return m.panel("New Card", strings.Join(lines, "\n"), m.width, m.height, true)
}

func (m Model) renderLocalSaves() string {
	names := make([]string, 0, len(m.localSaves))
	for _, s := range m.localSaves {
		names = append(names, fmt.Sprintf("%-28s %6d B", s.Name, s.Size))
	}
	listW := m.width / 2
	left := m.panel("Load a Save (Local)", m.list(names, m.saveCursor, m.height-4), listW, m.height, true)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, m.panel("Preview", m.renderPreview(), m.width-listW, m.height, false))
}

func (m Model) renderPreview() string {
	if m.preview == nil {
		return m.theme.Lipgloss(theme.InactiveText).Render("no preview")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "kanban %s • exported %s\n\n", m.preview.Version, m.preview.ExportedAt.Local().Format(time.DateTime))
	for _, board := range m.preview.Workspace.Boards {
		fmt.Fprintf(&b, "%s (%d)\n", board.Name, len(board.Cards))
		for _, card := range board.Cards {
			fmt.Fprintf(&b, "  %s %s\n", m.theme.Lipgloss(statusRole(card.Status)).Render("•"), card.Name)
		}
	}
	return b.String()
}

func (m Model) renderCloudSaves() string {
	names := make([]string, 0, len(m.cloudSaves))
	for _, s := range m.cloudSaves {
		names = append(names, fmt.Sprintf("%-28s v%-3d %s", s.Name, s.Version, s.CreatedAt.Local().Format(time.DateTime)))
	}
	return m.panel("Load a Save (Cloud)", m.list(names, m.saveCursor, m.height-4), m.width, m.height, true)
}

func (m Model) renderAccount(v uistate.View) string {
	f := m.ui.Focus()
	lines := []string{m.field("Email", m.email.View(), f == uistate.EmailIDField)}
	if v == uistate.ResetPassword {
		label := "Send Reset Link"
		if wait := m.resetAllowedAt.Sub(m.now()); wait > 0 {
			label = fmt.Sprintf("Send Reset Link (%ds)", int(wait.Seconds())+1)
		}
		lines = append(lines,
			m.button(label, f == uistate.SendResetPasswordLinkButton),
			m.field("Code", m.resetToken.View(), f == uistate.ResetPasswordLinkField),
		)
	}
	lines = append(lines, m.field("Password", m.password.View(), f == uistate.PasswordField))
	if v != uistate.Login {
		lines = append(lines, m.field("Confirm", m.confirmPassword.View(), f == uistate.ConfirmPasswordField))
	}
	check := "[ ]"
	if m.showPassword {
		check = "[x]"
	}
	submit := map[uistate.View]string{uistate.Login: "Login", uistate.SignUp: "Sign Up", uistate.ResetPassword: "Reset Password"}[v]
	lines = append(lines,
		m.field(check, "show password", f == uistate.ShowPasswordToggle),
		"",
		m.button(submit, f == uistate.SubmitButton),
	)
	return m.panel(v.Label(), strings.Join(lines, "\n"), m.width, m.height, true)
}

func (m Model) renderCreateTheme() string {
	f := m.ui.Focus()
	roles := themeRoles()
	rows := make([]string, 0, len(roles))
	for _, r := range roles {
		rows = append(rows, fmt.Sprintf("%-24s %s", r, m.draftTheme.Lipgloss(r).Render(" sample text ")))
	}
	content := strings.Join([]string{
		m.theme.Lipgloss(theme.InactiveText).Render(m.draftTheme.Name),
		m.list(rows, m.roleCursor, m.height-8),
		"",
		m.button("Save Theme", f == uistate.SubmitButton) + "  " + m.button("Cancel", f == uistate.ExtraFocus),
	}, "\n")
	return m.panel("Create Theme", content, m.width, m.height, f == uistate.ThemeEditor)
}

// ---- popups ----

func (m Model) renderPopup(p uistate.Popup) string {
	f := m.ui.Focus()
	switch p {
	case uistate.ViewCard:
		return m.renderCardPopup()
	case uistate.CommandPalette:
		return m.renderPalette()
	case uistate.EditSpecificKeyBinding:
		keys := make([]string, 0)
		for _, k := range m.capture.Keys() {
			keys = append(keys, k.Display())
		}
		body := fmt.Sprintf("Press keys for %s\n\n%s\n\n%s",
			m.capture.Action().Description(),
			strings.Join(keys, ", "),
			m.theme.Lipgloss(theme.InactiveText).Render("accept saves • cancel discards"))
		return m.popupBox("Edit Keybinding", body, 50)
	case uistate.ChangeUIMode, uistate.SelectDefaultView:
		labels := make([]string, 0)
		for _, v := range uistate.BoardViews() {
			labels = append(labels, v.Label())
		}
		return m.popupBox(p.Label(), m.list(labels, m.listCursor, 0), 40)
	case uistate.CardStatusSelector:
		labels := make([]string, 0)
		for _, s := range domain.AllStatuses() {
			labels = append(labels, m.theme.Lipgloss(statusRole(s)).Render(string(s)))
		}
		return m.popupBox(p.Label(), m.list(labels, m.listCursor, 0), 30)
	case uistate.CardPrioritySelector:
		labels := make([]string, 0)
		for _, pr := range domain.AllPriorities() {
			labels = append(labels, m.theme.Lipgloss(priorityRole(pr)).Render(string(pr)))
		}
		return m.popupBox(p.Label(), m.list(labels, m.listCursor, 0), 30)
	case uistate.EditGeneralConfig:
		field := m.currentConfigField()
		return m.popupBox(field.label, fmt.Sprintf("‹ %d ›", m.configValue), 40)
	case uistate.ChangeDateFormat:
		labels := make([]string, 0)
		for _, df := range domain.AllDateTimeFormats() {
			labels = append(labels, df.String())
		}
		return m.popupBox(p.Label(), m.list(labels, m.listCursor, 0), 40)
	case uistate.ChangeTheme:
		labels := make([]string, 0, len(m.themes))
		for _, t := range m.themes {
			labels = append(labels, t.Name)
		}
		return m.popupBox(p.Label(), m.list(labels, m.listCursor, 12), 40)
	case uistate.EditThemeStyle:
		return m.renderStyleEditor()
	case uistate.SaveThemePrompt:
		body := "Save " + m.draftTheme.Name + "?\n\n" + m.button("Save", f == uistate.SubmitButton) + "  " + m.button("Cancel", f == uistate.ExtraFocus)
		return m.popupBox(p.Label(), body, 44)
	case uistate.CustomHexColorPromptFG, uistate.CustomHexColorPromptBG:
		body := m.hexInput.View() + "\n\n" + m.button("OK", f == uistate.SubmitButton)
		return m.popupBox(p.Label(), body, 36)
	case uistate.ConfirmDiscardCardChanges:
		body := "The card has unsaved changes.\n\n" + m.button("Discard", f == uistate.SubmitButton) + "  " + m.button("Keep Editing", f == uistate.ExtraFocus)
		return m.popupBox(p.Label(), body, 44)
	case uistate.FilterByTag:
		return m.renderTagFilter()
	}
	return ""
}

func (m Model) renderCardPopup() string {
	f := m.ui.Focus()
	c := m.cardBeingEdited
	if c == nil {
		return ""
	}
	inner := cardPopupWidth - 4
	desc := m.cardDesc.View()
	if f != uistate.CardDescription || !m.ui.InUserInput() {
		if rendered := m.md.render(m.cardDesc.Value(), inner, glamourStyle(m.background())); rendered != "" {
			desc = rendered
		}
	}
	format := m.cfg.DateTimeFormat()
	lines := []string{
		m.field("Name", m.cardName.View(), f == uistate.CardName),
		m.field("Description", "", f == uistate.CardDescription),
		fitLines(clipLines(desc, inner), descRows),
		"",
		"",
		m.field("Due", m.cardDue.View(), f == uistate.CardDueDate),
		m.field("Priority", m.theme.Lipgloss(priorityRole(c.Priority)).Render("‹ "+string(c.Priority)+" ›"), f == uistate.CardPriority),
		m.field("Status", m.theme.Lipgloss(statusRole(c.Status)).Render("‹ "+string(c.Status)+" ›"), f == uistate.CardStatus),
		m.field("Tags", m.cardTags.View(), f == uistate.CardTags),
		m.field("Comments", m.cardComments.View(), f == uistate.CardComments),
		"",
		m.theme.Lipgloss(theme.InactiveText).Render(fmt.Sprintf("created %s • modified %s • completed %s",
			format.Format(&c.Created), format.Format(&c.Modified), format.Format(c.Completed))),
		m.button("Save", f == uistate.SubmitButton) + "  " + m.theme.Lipgloss(theme.InactiveText).Render("y copies the card"),
	}
	body := fitLines(strings.Join(lines, "\n"), cardPopupHeight-4)
	return m.popupBox("Card", body, cardPopupWidth-2)
}

func (m Model) renderPalette() string {
	f := m.ui.Focus()
	res := m.palette.Results()
	section := func(title string, focus uistate.Focus, items []string, cursor int) string {
		hs := m.theme.Lipgloss(theme.HelpText)
		if f == focus {
			hs = m.theme.Lipgloss(theme.KeyboardFocus).Bold(true)
		}
		if f != focus {
			cursor = -1
		}
		return hs.Render(fmt.Sprintf("%s (%d)", title, len(items))) + "\n" + m.list(items, cursor, 6)
	}
	cmds := make([]string, 0, len(res.Commands))
	for _, c := range res.Commands {
		cmds = append(cmds, c.String())
	}
	cards := make([]string, 0, len(res.Cards))
	for _, c := range res.Cards {
		cards = append(cards, truncate(c.Label(), 70))
	}
	boards := make([]string, 0, len(res.Boards))
	for _, b := range res.Boards {
		boards = append(boards, truncate(b.Label(), 70))
	}
	body := strings.Join([]string{
		m.paletteInput.View(),
		"",
		section("Commands", uistate.CommandPaletteCommand, cmds, m.palette.Cursor(paletteList(uistate.CommandPaletteCommand))),
		section("Cards", uistate.CommandPaletteCard, cards, m.palette.Cursor(paletteList(uistate.CommandPaletteCard))),
		section("Boards", uistate.CommandPaletteBoard, boards, m.palette.Cursor(paletteList(uistate.CommandPaletteBoard))),
	}, "\n")
	return m.popupBox("Command Palette", body, 76)
}

func (m Model) renderTagFilter() string {
	f := m.ui.Focus()
	tags := m.visibleTags()
	rows := make([]string, 0, len(tags))
	for _, tc := range tags {
		check := "[ ]"
		if m.tagSelection[tc.Tag] {
			check = "[x]"
		}
		rows = append(rows, fmt.Sprintf("%s %s (%d)", check, tc.Tag, tc.Count))
	}
	cursor := m.tagCursor
	if f != uistate.FilterByTagPopup {
		cursor = -1
	}
	body := strings.Join([]string{
		m.tagInput.View(),
		"",
		m.list(rows, cursor, 10),
		"",
		m.button("Apply", f == uistate.SubmitButton),
	}, "\n")
	return m.popupBox("Filter by Tag", body, 44)
}

func (m Model) renderStyleEditor() string {
	f := m.ui.Focus()
	role := m.currentRole()
	style := m.draftTheme.Style(role)
	show := func(v string) string {
		if v == "" {
			return "(default)"
		}
		return v
	}
	fg, bg := show(style.FG), show(style.BG)
	switch choice := colorOptions()[clamp(m.colorCursor, 0, len(colorOptions())-1)]; {
	case f == uistate.StyleEditorFG && choice == customColor:
		fg = customColor
	case f == uistate.StyleEditorBG && choice == customColor:
		bg = customColor
	}
	mods := make([]string, 0)
	for i, mod := range theme.AllModifiers() {
		check := "[ ]"
		if style.Has(mod) {
			check = "[x]"
		}
		line := check + " " + string(mod)
		if f == uistate.StyleEditorModifiers && i == m.modCursor {
			line = m.theme.Lipgloss(theme.ListSelect).Render(line)
		}
		mods = append(mods, line)
	}
	body := strings.Join([]string{
		m.draftTheme.Lipgloss(role).Render(" sample text "),
		"",
		m.field("Foreground", "‹ "+fg+" ›", f == uistate.StyleEditorFG),
		m.field("Background", "‹ "+bg+" ›", f == uistate.StyleEditorBG),
		m.field("Modifiers", "", f == uistate.StyleEditorModifiers),
		strings.Join(mods, "\n"),
		"",
		m.button("Done", f == uistate.SubmitButton),
	}, "\n")
	return m.popupBox(string(role), body, 44)
}

// renderPicker draws the picker clipped to its animated size.
func (m Model) renderPicker() string {
	w, h := m.picker.Size()
	focused := m.ui.HasPopup(uistate.DateTimePicker)
	f := m.ui.Focus()
	hl := func(s string, on bool) string {
		if on && focused {
			return m.theme.Lipgloss(theme.KeyboardFocus).Reverse(true).Render(s)
		}
		return s
	}
	header := hl("‹ "+m.picker.MonthLabel()+" ›", f == uistate.DTPMonth) + " " + hl("‹ "+m.picker.YearLabel()+" ›", f == uistate.DTPYear)
	cal := []string{header, strings.Join(m.picker.WeekdayHeader(), " ")}
	day := m.picker.Day()
	for _, row := range m.picker.Grid() {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			s := fmt.Sprintf("%2d", c.Day)
			switch {
			case !c.InMonth:
				s = m.theme.Lipgloss(theme.InactiveText).Render(s)
			case c.Day == day:
				s = hl(s, f == uistate.DTPCalender)
				if f != uistate.DTPCalender || !focused {
					s = m.theme.Lipgloss(theme.ListSelect).Render(fmt.Sprintf("%2d", c.Day))
				}
			}
			cells = append(cells, s)
		}
		cal = append(cal, strings.Join(cells, " "))
	}
	toggle := "time ▸"
	if m.picker.TimeActive() {
		toggle = "time ◂"
	}
	cal = append(cal, hl(toggle, f == uistate.DTPToggleTimePicker))
	content := strings.Join(cal, "\n")

	if m.picker.TimeState() != datepicker.Closed {
		before, after := m.picker.TimeNeighbors()
		rows := []string{hl("hh", f == uistate.DTPHour) + ":" + hl("mm", f == uistate.DTPMinute) + ":" + hl("ss", f == uistate.DTPSecond)}
		for _, r := range m.picker.TimeColumn(before, after) {
			line := fmt.Sprintf("%02d:%02d:%02d", r.Hour, r.Minute, r.Second)
			if r.Current {
				line = m.theme.Lipgloss(theme.ListSelect).Render("─ " + line + " ─")
			} else {
				line = "  " + m.theme.Lipgloss(theme.InactiveText).Render(line)
			}
			rows = append(rows, line)
		}
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, "  ", strings.Join(rows, "\n"))
	}
	inner := max(1, w-2)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.focusColor()).
		Width(inner).
		Render(fitLines(clipLines(content, inner), max(1, h-2)))
}

func (m Model) renderToast(t toast.Toast) string {
	title := t.Title
	if t.Kind == toast.Loading {
		frame := int(m.now().Sub(t.Start)/(100*time.Millisecond)) % len(spinnerFrames)
		title = spinnerFrames[frame] + " " + title
	}
	body := lipgloss.NewStyle().Foreground(t.Color).Bold(true).Render(truncate(title, toastWidth-4))
	if t.Body != "" {
		body += "\n" + lipgloss.NewStyle().Width(toastWidth-4).Render(t.Body)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Color).
		Padding(0, 1).
		Width(toastWidth - 2).
		Render(body)
}

func (m Model) renderDebug() string {
	popups := make([]string, 0)
	for _, p := range m.ui.Popups() {
		popups = append(popups, p.String())
	}
	pending := 0
	if m.worker != nil {
		pending = m.worker.Pending()
	}
	lines := []string{
		fmt.Sprintf("view:     %s", m.ui.View()),
		fmt.Sprintf("popups:   %s", strings.Join(popups, " > ")),
		fmt.Sprintf("focus:    %s", m.ui.Focus()),
		fmt.Sprintf("input:    %s", m.ui.InputStatus()),
		fmt.Sprintf("revision: %d undo=%t redo=%t", m.editor.Revision(), m.editor.CanUndo(), m.editor.CanRedo()),
		fmt.Sprintf("board:    %s", m.boardID),
		fmt.Sprintf("card:     %s", m.cardID),
		fmt.Sprintf("picker:   %s/%s", m.picker.DateState(), m.picker.TimeState()),
		fmt.Sprintf("toasts:   %d io pending: %d", m.toasts.Len(), pending),
		fmt.Sprintf("size:     %d×%d", m.width, m.height),
	}
	return m.popupBox("Debug", strings.Join(lines, "\n"), 60)
}

// ---- text helpers ----

// fitLines pads or cuts content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// clipLines cuts every line to width cells without breaking escapes.
func clipLines(content string, width int) string {
	return lipgloss.NewStyle().MaxWidth(max(0, width)).Render(content)
}

// truncate cuts s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
