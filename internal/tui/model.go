package tui

import (
	"os"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"

	"github.com/evanschultz/kanban/internal/app"
	"github.com/evanschultz/kanban/internal/config"
	"github.com/evanschultz/kanban/internal/domain"
	"github.com/evanschultz/kanban/internal/keymap"
	"github.com/evanschultz/kanban/internal/theme"
	"github.com/evanschultz/kanban/internal/tui/datepicker"
	"github.com/evanschultz/kanban/internal/tui/palette"
	"github.com/evanschultz/kanban/internal/tui/toast"
	"github.com/evanschultz/kanban/internal/uistate"
)

// MinWidth and MinHeight are the smallest terminal the board renders in.
const (
	MinWidth  = 130
	MinHeight = 30
)

// tickMsg drives animations and toast expiry.
type tickMsg time.Time

// ioDoneMsg carries one completed IO request back to the loop.
type ioDoneMsg struct {
	result app.Result
}

// Model is the bubbletea model for the board. Every mutation of the
// workspace goes through editor on the Update goroutine.
type Model struct {
	editor   *app.Editor
	cfg      config.Config
	bindings keymap.Bindings
	capture  keymap.Capture
	ui       uistate.Machine
	clock    func() time.Time

	width        int
	height       int
	quitting     bool
	skipExitSave bool
	debug        bool

	themes      []theme.Theme
	themeDir    string
	theme       theme.Theme
	themeBefore theme.Theme

	viewport   domain.Viewport
	boardID    domain.ID
	cardID     domain.ID
	filterTags []string

	palette      *palette.Index
	paletteInput textinput.Model

	toasts  *toast.Manager
	loading map[string]int
	picker  *datepicker.Picker
	logs    *LogBuffer
	help    help.Model
	md      *markdownRenderer

	editBoardID     domain.ID
	cardBeingEdited *domain.Card
	cardName        textinput.Model
	cardDesc        textarea.Model
	cardDue         textinput.Model
	cardTags        textinput.Model
	cardComments    textinput.Model
	boardName       textinput.Model
	boardDesc       textinput.Model

	email           textinput.Model
	password        textinput.Model
	confirmPassword textinput.Model
	resetToken      textinput.Model
	showPassword    bool
	session         app.Session
	resetAllowedAt  time.Time

	localSaves []app.SaveInfo
	cloudSaves []app.CloudSave
	saveCursor int
	preview    *app.Save

	menuCursor      int
	listCursor      int
	configCursor    int
	configValue     int
	bindCursor      int
	themeForDefault bool

	tagCursor    int
	tagSelection map[string]bool
	tagInput     textinput.Model

	draftTheme  theme.Theme
	roleCursor  int
	colorCursor int
	modCursor   int
	hexInput    textinput.Model

	worker  *app.Worker
	handler app.Handler

	saveConfig  ConfigSaver
	saveSession SessionSaver
	copyText    func(string) error
	startupErrs []error
}

// NewModel builds the model over editor. A nil editor starts an empty workspace.
func NewModel(editor *app.Editor, opts ...Option) Model {
	if editor == nil {
		editor, _ = app.NewEditor(domain.Workspace{}, nil, nil)
	}
	password := newModalInput("password: ", "", "", 128)
	password.EchoMode = textinput.EchoPassword
	confirm := newModalInput("confirm: ", "", "", 128)
	confirm.EchoMode = textinput.EchoPassword
	desc := textarea.New()
	desc.Placeholder = "description (markdown)"
	desc.SetWidth(60)
	desc.SetHeight(6)

	m := Model{
		editor:          editor,
		cfg:             config.Default(os.TempDir(), ""),
		clock:           time.Now,
		themes:          theme.Builtins(),
		palette:         palette.NewIndex(),
		paletteInput:    newModalInput("> ", "type a command, card or board", "", 120),
		toasts:          toast.NewManager(),
		loading:         map[string]int{},
		help:            help.New(),
		md:              &markdownRenderer{},
		cardName:        newModalInput("name: ", "card name", "", 200),
		cardDesc:        desc,
		cardDue:         newModalInput("due: ", domain.FieldNotSet, "", 40),
		cardTags:        newModalInput("tags: ", "comma separated", "", 400),
		cardComments:    newModalInput("comments: ", "comma separated", "", 2000),
		boardName:       newModalInput("name: ", "board name", "", 200),
		boardDesc:       newModalInput("description: ", "optional", "", 400),
		email:           newModalInput("email: ", "you@example.com", "", 254),
		password:        password,
		confirmPassword: confirm,
		resetToken:      newModalInput("code: ", "code from the reset email", "", 128),
		tagSelection:    map[string]bool{},
		tagInput:        newModalInput("filter: ", "type to narrow tags", "", 80),
		hexInput:        newModalInput("#", "rrggbb", "", 7),
		copyText:        clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.applyConfig(m.cfg)
	if !m.cfg.AutoLogin || !m.session.Valid(m.now()) {
		m.session = app.Session{}
	}
	m.selectTheme(m.cfg.DefaultTheme)
	m.ui = uistate.New(m.cfg.View())
	m.snapSelection()
	for _, err := range m.startupErrs {
		m.toastError(err)
	}
	m.startupErrs = nil
	return m
}

func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// applyConfig installs cfg and everything derived from it.
func (m *Model) applyConfig(cfg config.Config) {
	m.cfg = cfg
	m.bindings = cfg.Bindings()
	m.viewport = domain.NewViewport(cfg.NoOfBoardsToShow, cfg.NoOfCardsToShow)
	weekStart := datepicker.ParseWeekStart(string(cfg.DatePickerCalendarFormat))
	if m.picker == nil {
		m.picker = datepicker.New(weekStart, m.clock)
	} else {
		m.picker.SetWeekStart(weekStart)
	}
	m.cardDesc.ShowLineNumbers = cfg.ShowLineNumbers
	if m.boardID != (domain.ID{}) {
		m.viewport.Reveal(m.boards(), m.boardID, m.cardID)
	}
}

func (m *Model) selectTheme(name string) {
	if t, ok := theme.Find(m.themes, name); ok {
		m.theme = t
		return
	}
	if name != "" {
		log.Warn("theme not found, using default", "theme", name)
	}
	m.theme = theme.Default()
}

func (m Model) now() time.Time {
	return m.clock()
}

// Init starts the tick loop and, with a worker, the result listener.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick(m.cfg.Tick())}
	if m.worker != nil {
		cmds = append(cmds, waitForIO(m.worker))
	}
	return tea.Batch(cmds...)
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update routes every message through one switch.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.picker.SetViewport(datepicker.Rect{W: m.width, H: m.height})
		m.syncPickerArea()
		return m, nil

	case tickMsg:
		m.onTick()
		return m, tick(m.cfg.Tick())

	case ioDoneMsg:
		cmd := m.applyResult(msg.result)
		if m.worker != nil {
			cmd = tea.Batch(cmd, waitForIO(m.worker))
		}
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// onTick advances animations. Ticks never mutate the workspace.
func (m *Model) onTick() {
	now := m.now()
	m.toasts.Tick(now, !m.cfg.DisableAnimations, m.background(), m.toastColor)
	if m.picker.DateState() != datepicker.Closed {
		m.picker.Tick(now, m.cfg.DisableAnimations)
		m.syncPickerArea()
	}
}

func (m Model) tooSmall() bool {
	return m.width > 0 && m.height > 0 && (m.width < MinWidth || m.height < MinHeight)
}

// handleKey resolves a key press. In user input only the actions that
// leave or move between fields resolve; everything else edits the buffer.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := keymap.NormalizeKey(msg.String())
	if m.tooSmall() {
		if a, ok := m.bindings.Resolve(k, false); ok && a == keymap.Quit {
			return m.quit()
		}
		return m, nil
	}
	if m.ui.InputStatus() == uistate.KeyBindMode {
		next, cmd := m.handleCaptureKey(k)
		return next, cmd
	}

	userInput := m.ui.InUserInput()
	action, ok := m.bindings.Resolve(k, userInput)
	if userInput && !ok {
		action, ok = m.listNavigation(k)
	}
	if userInput && (!ok || m.keyBelongsToBuffer(action)) {
		m.forwardToInput(msg)
		return m, nil
	}
	if !ok {
		next, cmd := m.handleUnboundKey(k)
		return next, cmd
	}
	next, cmd := m.dispatch(action)
	next.ui.Snap()
	next.syncInputFocus()
	return next, cmd
}

// listNavigation lets up and down move through a popup's result list while
// its query field still has input.
func (m Model) listNavigation(k keymap.Key) (keymap.Action, bool) {
	top, ok := m.ui.TopPopup()
	if !ok || (top != uistate.CommandPalette && top != uistate.FilterByTag) {
		return 0, false
	}
	a, ok := m.bindings.Resolve(k, false)
	if !ok || (a != keymap.Up && a != keymap.Down) {
		return 0, false
	}
	return a, true
}

// keyBelongsToBuffer lets the description editor take newlines.
func (m Model) keyBelongsToBuffer(a keymap.Action) bool {
	return a == keymap.Accept && m.ui.Focus() == uistate.CardDescription
}

func (m Model) handleUnboundKey(k keymap.Key) (Model, tea.Cmd) {
	top, hasPopup := m.ui.TopPopup()
	switch {
	case k == "y" && hasPopup && top == uistate.ViewCard:
		m.copyCard()
	case k == "space" && hasPopup && top == uistate.FilterByTag && m.ui.Focus() == uistate.FilterByTagPopup:
		m.toggleTagAtCursor()
	}
	return m, nil
}

// textInput returns the single-line buffer behind f, or nil.
func (m *Model) textInput(f uistate.Focus) *textinput.Model {
	switch f {
	case uistate.CardName:
		return &m.cardName
	case uistate.CardDueDate:
		return &m.cardDue
	case uistate.CardTags:
		return &m.cardTags
	case uistate.CardComments:
		return &m.cardComments
	case uistate.NewBoardName:
		return &m.boardName
	case uistate.NewBoardDescription:
		return &m.boardDesc
	case uistate.CommandPaletteCommand, uistate.CommandPaletteCard, uistate.CommandPaletteBoard:
		return &m.paletteInput
	case uistate.EmailIDField:
		return &m.email
	case uistate.PasswordField:
		return &m.password
	case uistate.ConfirmPasswordField:
		return &m.confirmPassword
	case uistate.ResetPasswordLinkField:
		return &m.resetToken
	case uistate.TextInput:
		return &m.hexInput
	case uistate.FilterByTagPopup:
		return &m.tagInput
	}
	return nil
}

func (m *Model) allInputs() []*textinput.Model {
	return []*textinput.Model{
		&m.cardName, &m.cardDue, &m.cardTags, &m.cardComments,
		&m.boardName, &m.boardDesc, &m.paletteInput,
		&m.email, &m.password, &m.confirmPassword, &m.resetToken,
		&m.hexInput, &m.tagInput,
	}
}

// syncInputFocus focuses the buffer of the focused field while in user
// input and blurs every other one.
func (m *Model) syncInputFocus() {
	var want *textinput.Model
	active := m.ui.InUserInput()
	if active {
		want = m.textInput(m.ui.Focus())
	}
	for _, in := range m.allInputs() {
		switch {
		case in == want && !in.Focused():
			_ = in.Focus()
		case in != want && in.Focused():
			in.Blur()
		}
	}
	if active && m.ui.Focus() == uistate.CardDescription {
		if !m.cardDesc.Focused() {
			_ = m.cardDesc.Focus()
		}
	} else if m.cardDesc.Focused() {
		m.cardDesc.Blur()
	}
	echo := textinput.EchoPassword
	if m.showPassword {
		echo = textinput.EchoNormal
	}
	m.password.EchoMode = echo
	m.confirmPassword.EchoMode = echo
}

func (m *Model) forwardToInput(msg tea.KeyPressMsg) {
	f := m.ui.Focus()
	if f == uistate.CardDescription {
		m.cardDesc, _ = m.cardDesc.Update(msg)
		return
	}
	in := m.textInput(f)
	if in == nil {
		return
	}
	*in, _ = in.Update(msg)
	switch f {
	case uistate.CommandPaletteCommand, uistate.CommandPaletteCard, uistate.CommandPaletteBoard:
		m.palette.Search(m.paletteInput.Value())
	case uistate.FilterByTagPopup:
		m.tagCursor = 0
	}
}

// boards is the workspace as displayed: the filter projection when a tag
// filter is active, the live boards otherwise.
func (m Model) boards() []domain.Board {
	if len(m.filterTags) == 0 {
		return m.editor.Boards()
	}
	return domain.FilterByTags(m.editor.Boards(), m.filterTags)
}

func (m Model) filterActive() bool {
	return len(m.filterTags) > 0
}

// snapSelection keeps the current board and card pointing at displayed
// entities and scrolls them into view.
func (m *Model) snapSelection() {
	boards := m.boards()
	if len(boards) == 0 {
		m.boardID, m.cardID = domain.ID{}, domain.ID{}
		m.viewport.Reset()
		return
	}
	bi := boardIndex(boards, m.boardID)
	if bi < 0 {
		bi = 0
		m.boardID = boards[0].ID
	}
	board := boards[bi]
	if board.CardIndex(m.cardID) < 0 {
		m.cardID = domain.ID{}
		if len(board.Cards) > 0 {
			m.cardID = board.Cards[0].ID
		}
	}
	m.viewport.Reveal(boards, m.boardID, m.cardID)
}

func boardIndex(boards []domain.Board, id domain.ID) int {
	for i := range boards {
		if boards[i].ID == id {
			return i
		}
	}
	return -1
}

// selection returns the displayed board index and card index, -1 when unset.
func (m Model) selection() (bi, ci int) {
	boards := m.boards()
	bi = boardIndex(boards, m.boardID)
	if bi < 0 {
		return -1, -1
	}
	return bi, boards[bi].CardIndex(m.cardID)
}

func (m Model) currentCard() (domain.Card, bool) {
	if m.cardID.IsZero() {
		return domain.Card{}, false
	}
	card, err := m.editor.Card(m.boardID, m.cardID)
	return card, err == nil
}

func (m *Model) pushToast(kind toast.Kind, title, body string) int {
	duration := toast.DefaultDuration
	if kind == toast.Loading {
		duration = toast.LoadingDuration
	}
	return m.toasts.Push(kind, title, body, duration, m.now(), m.toastColor(kind))
}

func (m *Model) info(title, body string) {
	m.pushToast(toast.Info, title, body)
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func wrapIndex(current, delta, total int) int {
	if total <= 0 {
		return 0
	}
	return ((current+delta)%total + total) % total
}
