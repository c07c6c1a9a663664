// Package tui implements the terminal dashboard: KPI cards, the summary table
// and distribution chart, an infinitely scrolling details grid with a record
// drawer, and the assistant chat panel.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/dataset"
	"github.com/leapstack-labs/ageview/internal/views"
	"github.com/leapstack-labs/ageview/pkg/core"
)

type screen int

const (
	screenSummary screen = iota
	screenDetails
)

// lookahead is how close the cursor may get to either end of the held rows
// before the neighbouring window is requested.
const lookahead = 10

// Options configures the dashboard.
type Options struct {
	Client     core.QueryClient
	Controller *dataset.Controller
	Chat       *chat.Panel
	Logger     *slog.Logger
	// ExportDir is where xlsx exports are written.
	ExportDir string
	// MaxRows bounds how many rows the grid holds at once. Defaults to ten pages.
	MaxRows int
	// Clipboard writes text to the system clipboard.
	Clipboard func(string) error
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx       context.Context
	client    core.QueryClient
	ctrl      *dataset.Controller
	panel     *chat.Panel
	logger    *slog.Logger
	exportDir string
	maxRows   int
	copyText  func(string) error

	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int
	screen   screen
	flash    string
	flashErr bool

	summary        views.Summary
	summaryLoading bool
	summaryErr     error
	summaryCursor  int

	filter       core.Filter
	seq          int
	searchInput  textinput.Model
	searching    bool
	grid         table.Model
	columns      []string
	rows         []core.Record
	offset       int
	total        int
	loaded       int
	initializing bool
	noResults    bool
	loading      bool
	detailsErr   error
	retryRange   *rowsMsg

	drawer       *views.Drawer
	drawerCursor int

	chatOpen   bool
	chatInput  textinput.Model
	chatView   viewport.Model
	transcript core.Conversation
	chatBusy   bool
	md         *glamour.TermRenderer
	mdWidth    int
}

// New creates the dashboard model. ctx bounds every backend call it makes.
func New(ctx context.Context, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = dataset.DefaultCachePages * opts.Controller.PageSize()
	}

	grid := table.New(table.WithFocused(true), table.WithHeight(10))
	gs := table.DefaultStyles()
	gs.Header = tableHeaderStyle
	gs.Selected = tableSelectedStyle
	grid.SetStyles(gs)

	search := textinput.New()
	search.Placeholder = "Search Store Name, Region, ID..."
	search.CharLimit = 200
	search.Prompt = "/ "

	input := textinput.New()
	input.Placeholder = "Ask about your orders..."
	input.CharLimit = 2000
	input.Prompt = "› "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	return Model{
		ctx:            ctx,
		client:         opts.Client,
		ctrl:           opts.Controller,
		panel:          opts.Chat,
		logger:         opts.Logger,
		exportDir:      opts.ExportDir,
		maxRows:        opts.MaxRows,
		copyText:       opts.Clipboard,
		keys:           DefaultKeyMap(),
		help:           help.New(),
		spinner:        sp,
		width:          100,
		height:         30,
		summaryLoading: true,
		searchInput:    search,
		grid:           grid,
		chatInput:      input,
		chatView:       viewport.New(80, 10),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadSummary(), m.openChat())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case summaryMsg:
		m.summaryLoading = false
		m.summaryErr = msg.err
		if msg.err != nil {
			m.logger.Warn("failed to load summary", "error", msg.err)
			m.summary = views.NewSummary(nil)
		} else {
			m.summary = views.NewSummary(msg.rows)
		}
		m.summaryCursor = min(m.summaryCursor, max(m.summary.Len()-1, 0))
		return m, nil

	case detailsInitMsg:
		return m.applyInit(msg)

	case rowsMsg:
		return m.applyRows(msg)

	case chatMsg:
		m.chatBusy = false
		m.transcript = msg.conv
		m.refreshChat()
		return m, nil

	case flashMsg:
		m.flash, m.flashErr = msg.text, msg.err != nil
		if msg.err != nil {
			m.flash = msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.chatOpen:
		return m.handleChatKey(msg)
	case m.searching:
		return m.handleSearchKey(msg)
	case m.drawer != nil:
		return m.handleDrawerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	case key.Matches(msg, m.keys.Chat) && m.panel != nil:
		m.chatOpen = true
		m.refreshChat()
		return m, m.chatInput.Focus()
	}

	if m.screen == screenSummary {
		return m.handleSummaryKey(msg)
	}
	return m.handleDetailsKey(msg)
}

func (m Model) handleSummaryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.summaryCursor = max(m.summaryCursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.summaryCursor = min(m.summaryCursor+1, max(m.summary.Len()-1, 0))
	case key.Matches(msg, m.keys.Refresh):
		m.summaryLoading = true
		return m, m.loadSummary()
	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(summaryExport(m.summary.Rows()), m.exportDir)
	case key.Matches(msg, m.keys.Open):
		status, ok := m.summary.Drilldown(m.summaryCursor)
		if !ok {
			return m, nil
		}
		m.screen = screenDetails
		m.searchInput.SetValue("")
		return m.startInit(core.Filter{Status: status})
	}
	return m, nil
}

func (m Model) handleDetailsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = screenSummary
		m.searchInput.SetValue("")
		m.filter = core.Filter{}
		m.seq++ // late answers for the old filter are ignored
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.Refresh):
		return m.retry()
	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(detailsExport(m.ctrl, m.filter.Status), m.exportDir)
	case key.Matches(msg, m.keys.Open):
		if rec, ok := m.selectedRecord(); ok {
			d := views.NewDrawer(rec)
			m.drawer = &d
			m.drawerCursor = 0
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	next, load := m.maybeLoad()
	return next, tea.Batch(cmd, load)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.searchInput.Blur()
		// The term is sent as typed: no trimming and no case folding.
		return m.startInit(core.Filter{Status: m.filter.Status, Search: m.searchInput.Value()})
	case tea.KeyEsc:
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue(m.filter.Search)
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleDrawerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := m.drawer.Fields()
	switch {
	case key.Matches(msg, m.keys.Back):
		m.drawer = nil
	case key.Matches(msg, m.keys.Up):
		m.drawerCursor = max(m.drawerCursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.drawerCursor = min(m.drawerCursor+1, max(len(fields)-1, 0))
	case key.Matches(msg, m.keys.Copy):
		if m.drawerCursor < len(fields) {
			f := fields[m.drawerCursor]
			return m, copyCmd(m.copyText, f.Key, views.FormatValue(f.Raw))
		}
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.chatOpen = false
		m.chatInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		if m.chatBusy {
			return m, nil
		}
		m.transcript = m.panel.Clear(m.ctx)
		m.refreshChat()
		return m, nil
	case msg.Type == tea.KeyEnter:
		query := m.chatInput.Value()
		if m.chatBusy || strings.TrimSpace(query) == "" {
			return m, nil
		}
		m.chatInput.SetValue("")
		m.chatBusy = true
		m.transcript = append(m.transcript.Clone(), core.Turn{Role: core.RoleUser, Content: query})
		m.refreshChat()
		return m, tea.Batch(m.submitChat(query), m.spinner.Tick)
	case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// startInit binds the grid to filter and discards everything held for the
// previous one.
func (m Model) startInit(filter core.Filter) (tea.Model, tea.Cmd) {
	m.seq++
	m.filter = filter
	m.initializing = true
	m.noResults = false
	m.detailsErr = nil
	m.retryRange = nil
	m.loading = false
	m.rows = nil
	m.offset = 0
	m.total = 0
	m.loaded = 0
	m.drawer = nil
	m.grid.SetRows(nil)
	m.grid.SetCursor(0)
	return m, tea.Batch(m.initDetails(m.seq, filter), m.spinner.Tick)
}

func (m Model) applyInit(msg detailsInitMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq {
		return m, nil
	}
	m.initializing = false
	if msg.err != nil {
		if errors.Is(msg.err, dataset.ErrStale) {
			return m, nil
		}
		m.logger.Warn("failed to initialize details", "filter", m.filter.String(), "error", msg.err)
		m.detailsErr = msg.err
		return m, nil
	}

	// An empty result keeps the previous columns.
	if len(msg.snap.Columns) > 0 {
		m.columns = msg.snap.Columns
	}
	m.total = msg.snap.TotalRowCount
	m.loaded = msg.snap.LoadedRowCount
	m.noResults = msg.snap.NoResults
	m.resize()
	if m.noResults {
		return m, nil
	}
	m.loading = true
	return m, m.loadRows(m.seq, 0, m.ctrl.PageSize(), down)
}

func (m Model) applyRows(msg rowsMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, dataset.ErrStale) {
			return m, nil
		}
		m.logger.Warn("failed to load rows", "start", msg.start, "end", msg.end, "error", msg.err)
		m.detailsErr = msg.err
		retry := msg
		m.retryRange = &retry
		return m, nil
	}
	m.detailsErr = nil
	m.retryRange = nil

	cursor := m.grid.Cursor()
	switch msg.dir {
	case down:
		if msg.start != m.offset+len(m.rows) {
			return m, nil
		}
		m.rows = append(m.rows, msg.res.Rows...)
		if drop := len(m.rows) - m.maxRows; drop > 0 {
			m.rows = append([]core.Record(nil), m.rows[drop:]...)
			m.offset += drop
			cursor = max(cursor-drop, 0)
		}
	case up:
		if msg.end != m.offset {
			return m, nil
		}
		m.rows = append(append([]core.Record(nil), msg.res.Rows...), m.rows...)
		m.offset = msg.start
		cursor += len(msg.res.Rows)
		if len(m.rows) > m.maxRows {
			m.rows = m.rows[:m.maxRows]
		}
	}

	m.total = msg.res.TotalRowCount
	m.loaded = m.ctrl.Snapshot().LoadedRowCount
	m.grid.SetRows(m.tableRows())
	m.grid.SetCursor(min(cursor, max(len(m.rows)-1, 0)))
	return m.maybeLoad()
}

// maybeLoad requests the neighbouring window when the cursor nears the edge
// of the held rows.
func (m Model) maybeLoad() (Model, tea.Cmd) {
	if m.loading || m.initializing || m.noResults || m.detailsErr != nil || len(m.rows) == 0 {
		return m, nil
	}
	size := m.ctrl.PageSize()
	cursor := m.grid.Cursor()

	if end := m.offset + len(m.rows); cursor >= len(m.rows)-lookahead && end < m.total {
		m.loading = true
		return m, m.loadRows(m.seq, end, end+size, down)
	}
	if cursor < lookahead && m.offset > 0 {
		m.loading = true
		return m, m.loadRows(m.seq, max(m.offset-size, 0), m.offset, up)
	}
	return m, nil
}

func (m Model) retry() (tea.Model, tea.Cmd) {
	if m.detailsErr == nil {
		return m, nil
	}
	if r := m.retryRange; r != nil {
		m.detailsErr = nil
		m.retryRange = nil
		m.loading = true
		return m, m.loadRows(m.seq, r.start, r.end, r.dir)
	}
	return m.startInit(m.filter)
}

func (m Model) selectedRecord() (core.Record, bool) {
	i := m.grid.Cursor()
	if i < 0 || i >= len(m.rows) {
		return core.Record{}, false
	}
	return m.rows[i], true
}

// Filter returns the filter the details grid is bound to.
func (m Model) Filter() core.Filter { return m.filter }

// Rows returns the rows the grid currently holds and the absolute index of the first.
func (m Model) Rows() ([]core.Record, int) { return m.rows, m.offset }

