package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/lazyload/internal/config"
	"github.com/pders01/lazyload/internal/paging"
	"github.com/pders01/lazyload/internal/search"
	"github.com/pders01/lazyload/internal/storage"
)

const (
	findLimit      = 20
	findDebounce   = 200 * time.Millisecond
	statusLifetime = 4 * time.Second
)

// App is the bubbletea model of the contact browser. The contact list is
// a view over a paging collection; the collection's state reaches the
// model as stateMsg values through a subscription.
type App struct {
	config     *config.Config
	ctx        context.Context
	contacts   *paging.Collection[storage.Contact]
	searcher   search.Searcher
	opener     Opener
	keyHandler *KeyHandler

	states      chan paging.State[storage.Contact]
	failures    <-chan *paging.Failure
	unsubscribe func()
	state       paging.State[storage.Contact]
	threshold   int

	contactList list.Model
	findList    list.Model
	filterInput textinput.Model
	findInput   textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model

	view         View
	previousView View
	current      *storage.Contact
	rendering    bool
	spinning     bool
	showHelp     bool

	findSeq     int
	findPending string
	finding     bool

	status     string
	statusKind StatusKind
	statusSeq  int
	err        error

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// Option customizes an App.
type Option func(*App)

// WithSearcher enables the full-text find view.
func WithSearcher(s search.Searcher) Option {
	return func(a *App) { a.searcher = s }
}

// Opener hands a mailto: or tel: link to another application.
type Opener interface {
	Open(target string) error
}

// WithOpener enables the mail and call keys in the detail view.
func WithOpener(o Opener) Option {
	return func(a *App) { a.opener = o }
}

// WithFailures surfaces absorbed collection failures in the status bar.
func WithFailures(ch <-chan *paging.Failure) Option {
	return func(a *App) { a.failures = ch }
}

// WithContext bounds every load the app issues.
func WithContext(ctx context.Context) Option {
	return func(a *App) { a.ctx = ctx }
}

func NewApp(contacts *paging.Collection[storage.Contact], cfg *config.Config, opts ...Option) *App {
	contactList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	contactList.Title = "› contacts"
	contactList.SetShowStatusBar(false)
	contactList.SetFilteringEnabled(false)
	contactList.SetShowHelp(false)

	findList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	findList.Title = "› matches"
	findList.SetShowStatusBar(false)
	findList.SetFilteringEnabled(false)
	findList.SetShowHelp(false)

	fi := textinput.New()
	fi.Placeholder = "Filter by name or email..."
	fi.Prompt = "/ "

	si := textinput.New()
	si.Placeholder = "Search all contacts..."

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	threshold := cfg.Paging.ScrollThreshold
	if threshold < 0 {
		threshold = paging.DefaultScrollThreshold
	}

	app := &App{
		config:       cfg,
		ctx:          context.Background(),
		contacts:     contacts,
		states:       make(chan paging.State[storage.Contact], 1),
		threshold:    threshold,
		contactList:  contactList,
		findList:     findList,
		filterInput:  fi,
		findInput:    si,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		view:         ViewContacts,
		previousView: ViewContacts,
	}
	for _, opt := range opts {
		opt(app)
	}

	app.keyHandler = NewKeyHandler(app, cfg)
	app.state = contacts.State()
	app.unsubscribe = contacts.Subscribe(app.offer)
	return app
}

// offer hands s to the UI goroutine, replacing an undelivered older state.
func (a *App) offer(s paging.State[storage.Contact]) {
	for {
		select {
		case a.states <- s:
			return
		default:
		}
		select {
		case <-a.states:
		default:
		}
	}
}

// Close detaches the app from the collection.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	maxWidth := a.config.UI.Detail.WordWrapMaxWidth
	minWidth := a.config.UI.Detail.WordWrapMinWidth
	if maxWidth <= 0 {
		maxWidth = 120
	}
	if minWidth <= 0 {
		minWidth = 40
	}

	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > maxWidth {
		wordWrapWidth = maxWidth
	}
	if wordWrapWidth < minWidth {
		wordWrapWidth = minWidth
	}
	if a.width > 0 && a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.waitForState(),
		a.waitForFailure(),
		a.initialize(),
		a.startSpinner(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		if a.view == ViewDetail && a.current != nil && !a.rendering {
			cmds = append(cmds, a.renderDetail(*a.current))
		}

	case tea.KeyMsg:
		model, cmd := a.keyHandler.HandleKey(msg)
		a.layout()
		return model, cmd

	case stateMsg:
		cmds = append(cmds, a.applyState(msg.state))

	case failureMsg:
		cmds = append(cmds, a.reportFailure(msg.failure), a.waitForFailure())

	case detailRenderedMsg:
		if a.view == ViewDetail && a.current != nil && a.current.ID == msg.id {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.rendering = false
		}

	case findDebounceMsg:
		if msg.seq == a.findSeq && a.findPending != "" {
			a.finding = true
			cmds = append(cmds, a.runFind(msg.seq, a.findPending), a.startSpinner())
		}

	case findResultsMsg:
		if msg.seq == a.findSeq {
			a.finding = false
			cmds = append(cmds, a.applyFindResults(msg))
		}

	case spinner.TickMsg:
		if a.busy() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			a.spinning = false
		}

	case clearStatusMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
			a.err = nil
		}

	case linkOpenedMsg:
		cmds = append(cmds, a.setStatus("Opened "+msg.target, StatusSuccess, statusLifetime))

	case errorMsg:
		a.err = msg.err
		a.rendering = false
		cmds = append(cmds, a.setStatus(msg.err.Error(), StatusError, statusLifetime))

	case tea.MouseMsg:
		switch a.view {
		case ViewContacts:
			var cmd tea.Cmd
			a.contactList, cmd = a.contactList.Update(msg)
			cmds = append(cmds, cmd, a.checkProximity())
		case ViewDetail:
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

// applyState installs a published collection state and keeps loading while
// the selection stays within the scroll threshold of the bottom.
func (a *App) applyState(s paging.State[storage.Contact]) tea.Cmd {
	prev := a.state
	a.state = s

	items := make([]list.Item, len(s.Visible))
	for i, c := range s.Visible {
		items[i] = contactItem{contact: c}
	}
	cmds := []tea.Cmd{a.contactList.SetItems(items), a.waitForState()}
	if s.Epoch != prev.Epoch {
		a.contactList.ResetSelected()
	}
	if s.Loading {
		cmds = append(cmds, a.startSpinner())
	}
	if progressed(prev, s) {
		cmds = append(cmds, a.checkProximity())
	}
	return tea.Batch(cmds...)
}

// progressed reports whether next materialized more rows than prev. A failed
// page leaves the count unchanged and is retried by the next navigation.
func progressed(prev, next paging.State[storage.Contact]) bool {
	if next.Epoch != prev.Epoch {
		return next.LoadedCount > 0
	}
	return next.LoadedCount > prev.LoadedCount
}

// distanceFromBottom is the number of rows between the selection and the
// last materialized row.
func (a *App) distanceFromBottom() int {
	return len(a.contactList.Items()) - 1 - a.contactList.Index()
}

// checkProximity asks the collection for the next page when the selection
// is close enough to the bottom.
func (a *App) checkProximity() tea.Cmd {
	if a.state.Epoch == 0 {
		return nil
	}
	dist := a.distanceFromBottom()
	if !paging.ShouldLoad(dist, a.threshold, a.state.Loading, a.state.Exhausted()) {
		return nil
	}
	contacts, ctx := a.contacts, a.ctx
	return func() tea.Msg {
		contacts.OnScrollProximity(ctx, dist)
		return nil
	}
}

func (a *App) reportFailure(f *paging.Failure) tea.Cmd {
	if f.Kind == paging.FetchFailure {
		a.err = f
		return a.setStatus(MsgLoadFailed+": "+f.Err.Error(), StatusError, statusLifetime)
	}
	return a.setStatus(f.Error(), StatusWarn, statusLifetime)
}

func (a *App) applyFindResults(msg findResultsMsg) tea.Cmd {
	if msg.err != nil {
		return a.setStatus(wrapErr("search", msg.err).Error(), StatusError, statusLifetime)
	}
	items := make([]list.Item, len(msg.results))
	for i, r := range msg.results {
		items[i] = resultItem{result: r}
	}
	cmd := a.findList.SetItems(items)
	a.findList.ResetSelected()
	if len(items) == 0 {
		return tea.Batch(cmd, a.setStatus(MsgNoResults, StatusInfo, statusLifetime))
	}
	return tea.Batch(cmd, a.setStatus(MsgResultsCount(len(items)), StatusSuccess, statusLifetime))
}

func (a *App) busy() bool {
	return a.state.Loading || a.rendering || a.finding || a.contacts.FilterPending()
}

func (a *App) startSpinner() tea.Cmd {
	if a.spinning {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

// setStatus shows text in the status bar; a positive ttl clears it again.
func (a *App) setStatus(text string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.status = text
	a.statusKind = kind
	a.statusSeq++
	if ttl <= 0 {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (a *App) filterVisible() bool {
	return a.filterInput.Focused() || a.filterInput.Value() != ""
}

func (a *App) layout() {
	if a.width == 0 || a.height == 0 {
		return
	}
	body := a.height - 2
	listHeight := body
	if a.filterVisible() {
		listHeight -= 3
	}
	a.contactList.SetSize(a.width, max(listHeight, 3))

	findHeight := body - 6
	a.findList.SetSize(a.width, max(findHeight, 5))

	a.viewport.Width = a.width
	a.viewport.Height = body

	inputWidth := a.width - 8
	if inputWidth < 10 {
		inputWidth = a.width - 4
	}
	a.filterInput.Width = inputWidth
	a.findInput.Width = inputWidth
}

func (a *App) View() string {
	var content string
	body := max(a.height-2, 0)

	switch a.view {
	case ViewContacts:
		content = a.contactsView(body)
	case ViewDetail:
		if a.rendering {
			content = renderCentered(a.width, body, renderMuted(MsgRendering))
		} else {
			content = a.viewport.View()
		}
	case ViewFind:
		content = a.findView(body)
	}

	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width-1, 0)))
	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.statusBar())
}

func (a *App) contactsView(body int) string {
	var rows []string
	if a.filterVisible() {
		rows = append(rows, renderInputFrame(a.filterInput.View(), a.filterInput.Focused(), a.filterInput.Width))
	}

	switch {
	case a.state.NoResults && (a.state.Filter != "" || a.state.AppliedFilter != ""):
		rows = append(rows, renderCentered(a.width, max(body-len(rows)*3, 1), renderMuted(MsgNoResults)))
	case a.state.NoResults:
		rows = append(rows, renderCentered(a.width, body, GetWelcomeMessage()))
	case len(a.contactList.Items()) == 0:
		rows = append(rows, renderCentered(a.width, max(body-len(rows)*3, 1), renderMuted(MsgLoading)))
	default:
		rows = append(rows, a.contactList.View())
	}

	return ContentWrapper(a.width, body).Render(lipgloss.JoinVertical(lipgloss.Top, rows...))
}

func (a *App) findView(body int) string {
	helpText := ""
	switch {
	case a.findInput.Focused():
		helpText = "Type to search • Tab/↓: results • Esc: back"
	case len(a.findList.Items()) > 0:
		helpText = "↑↓: navigate • Enter: open • Tab: search box • Esc: back"
	default:
		helpText = "No results found • Tab: search box • Esc: back"
	}

	return ContentWrapper(a.width, body).Render(lipgloss.JoinVertical(
		lipgloss.Top,
		renderHeader("› find", "full-text search over every stored contact", a.width),
		"",
		renderInputFrame(a.findInput.View(), a.findInput.Focused(), a.findInput.Width),
		renderHelp(helpText),
		"",
		a.findList.View(),
	))
}

func (a *App) statusBar() string {
	var left string
	switch {
	case a.busy():
		left = a.spinner.View() + " " + a.busyText()
	case a.status != "":
		left = statusStyle(a.statusKind).Render(a.status)
	case a.view == ViewContacts:
		left = a.progressText()
	}

	parts := []string{}
	if left != "" {
		parts = append(parts, left)
	}
	if a.showHelp || left == "" {
		parts = append(parts, a.keyHandler.GetHelpForCurrentView()...)
	} else {
		parts = append(parts, a.keyHandler.helpHint())
	}

	return StatusBarStyle.Width(a.width).MaxHeight(1).Render(strings.Join(parts, " • "))
}

func (a *App) busyText() string {
	switch {
	case a.rendering:
		return MsgRendering
	case a.finding:
		return MsgSearching
	case a.contacts.FilterPending():
		return MsgFiltering
	case a.state.LoadedCount == 0:
		return MsgLoading
	default:
		return MsgLoadedCount(a.state.LoadedCount, a.state.TotalCount) + " • " + MsgLoading
	}
}

func (a *App) progressText() string {
	s := a.state
	switch {
	case s.NoResults:
		return MsgNoResults
	case s.Filter != "" && len(s.Visible) != len(s.Items):
		return MsgFiltered(len(s.Visible), s.LoadedCount)
	case s.Exhausted() && s.LoadedCount > 0:
		return MsgLoadedCount(s.LoadedCount, s.TotalCount) + " • " + MsgAllLoaded
	default:
		return MsgLoadedCount(s.LoadedCount, s.TotalCount)
	}
}
