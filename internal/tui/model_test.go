package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/dataset"
	"github.com/leapstack-labs/ageview/internal/testutil"
	"github.com/leapstack-labs/ageview/pkg/core"
)

func sampleSummary() []core.SummaryRow {
	return []core.SummaryRow{
		{StoreStatus: "Pending", OpenQtyPcs: 12000, AllocatedQtyPcs: 4000, PickedQtyPcs: 1000, UnallocatedQtyPcs: 1500},
		{StoreStatus: "In Transit", OpenQtyPcs: 6000, AllocatedQtyPcs: 3000, PickedQtyPcs: 2000, UnallocatedQtyPcs: 200},
		{StoreStatus: "Closed", OpenQtyPcs: 100, AllocatedQtyPcs: 100, PickedQtyPcs: 100},
		{StoreStatus: core.GrandTotalStatus, OpenQtyPcs: 18100, AllocatedQtyPcs: 7100, PickedQtyPcs: 3100, UnallocatedQtyPcs: 1700},
	}
}

// syntheticClient serves total rows for every filter, or the count in totals
// when the filter is listed there.
func syntheticClient(total int, totals map[core.Filter]int) *testutil.FakeClient {
	return &testutil.FakeClient{
		Summary: sampleSummary(),
		DetailFunc: func(_ context.Context, f core.Filter, page, size int) (core.DetailPage, error) {
			n, ok := totals[f]
			if !ok {
				n = total
			}
			return testutil.SyntheticPage(f, n, page, size), nil
		},
	}
}

type fixture struct {
	client  *testutil.FakeClient
	copied  []string
	options Options
}

func newModel(t *testing.T, client *testutil.FakeClient, cachePages int, mutate func(*Options)) (Model, *fixture) {
	t.Helper()
	ctrl, err := dataset.New(client, dataset.Options{PageSize: 100, CachePages: cachePages})
	require.NoError(t, err)

	fx := &fixture{client: client}
	opts := Options{
		Client:     client,
		Controller: ctrl,
		Chat:       chat.NewPanel(client, chat.NewMemoryStore(nil), chat.Options{}),
		Logger:     testutil.NewTestLogger(t),
		ExportDir:  t.TempDir(),
		Clipboard: func(s string) error {
			fx.copied = append(fx.copied, s)
			return nil
		},
	}
	if mutate != nil {
		mutate(&opts)
	}
	fx.options = opts

	m := New(context.Background(), opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	m = drain(t, next.(Model), m.Init())
	return m, fx
}

// drain runs cmd and every command it produces, feeding the messages back
// into the model. Spinner ticks are dropped so the loop terminates.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 10000, "command loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

// press sends one key and runs the resulting commands.
func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	return drain(t, next.(Model), cmd)
}

// focus sends a key whose command only starts cursor blinking.
func focus(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, _ := m.Update(k)
	return next.(Model)
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(runes(string(r)))
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
)

func pressN(t *testing.T, m Model, k tea.KeyMsg, n int) Model {
	t.Helper()
	for range n {
		m = press(t, m, k)
	}
	return m
}

func TestModel_LoadsSummary(t *testing.T) {
	m, _ := newModel(t, syntheticClient(250, nil), 10, nil)

	assert.False(t, m.summaryLoading)
	assert.Equal(t, 4, m.summary.Len())

	view := m.View()
	assert.Contains(t, view, "TOTAL OPEN QTY")
	assert.Contains(t, view, "18,100")
	assert.Contains(t, view, "Store Status Summary")
	assert.Contains(t, view, "Status Distribution")
	assert.Contains(t, view, "66.3%")
}

func TestModel_SummaryFailureShowsEmptyState(t *testing.T) {
	client := syntheticClient(250, nil)
	client.SummaryErr = &core.NetworkError{Op: "fetch summary", Err: errors.New("connection refused")}
	m, _ := newModel(t, client, 10, nil)

	view := m.View()
	assert.Contains(t, view, "No data found")
	assert.Contains(t, view, "Failed to load summary")
	assert.NotContains(t, view, "TOTAL OPEN QTY")

	client.SummaryErr = nil
	m = press(t, m, runes("r"))
	assert.NoError(t, m.summaryErr)
	assert.Contains(t, m.View(), "TOTAL OPEN QTY")
}

func TestModel_DrilldownLoadsFirstWindow(t *testing.T) {
	m, fx := newModel(t, syntheticClient(250, nil), 10, nil)

	m = press(t, m, keyEnter)

	assert.Equal(t, screenDetails, m.screen)
	assert.Equal(t, core.Filter{Status: "Pending"}, m.Filter())
	rows, offset := m.Rows()
	assert.Len(t, rows, 100)
	assert.Zero(t, offset)
	assert.Contains(t, m.View(), "Details for: ")
	assert.Contains(t, m.View(), "Showing up to 100 of 250 rows • Scroll down to load more")

	calls := fx.client.DetailCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 1, calls[0].Page)
}

func TestModel_GrandTotalIsNotDrillable(t *testing.T) {
	m, fx := newModel(t, syntheticClient(250, nil), 10, nil)

	m = pressN(t, m, keyDown, 3)
	m = press(t, m, keyEnter)

	assert.Equal(t, screenSummary, m.screen)
	assert.Empty(t, fx.client.DetailCalls())
}

func TestModel_ScrollingLoadsNextWindow(t *testing.T) {
	m, fx := newModel(t, syntheticClient(250, nil), 10, nil)
	m = press(t, m, keyEnter)

	m = pressN(t, m, keyDown, 95)

	rows, _ := m.Rows()
	assert.Len(t, rows, 200)
	assert.Equal(t, 200, m.loaded)
	assert.Len(t, fx.client.DetailCalls(), 2)

	m = pressN(t, m, keyDown, 100)
	rows, _ = m.Rows()
	assert.Len(t, rows, 250)
	assert.Contains(t, m.View(), "Showing up to 250 of 250 rows")
	assert.NotContains(t, m.View(), "Scroll down to load more")
}

func TestModel_WindowIsBoundedAndRefetchesUpward(t *testing.T) {
	m, fx := newModel(t, syntheticClient(1000, nil), 2, func(o *Options) { o.MaxRows = 200 })
	m = press(t, m, keyEnter)

	m = pressN(t, m, keyDown, 200)
	rows, offset := m.Rows()
	assert.Len(t, rows, 200)
	assert.Equal(t, 100, offset)
	assert.Equal(t, 200, offset+m.grid.Cursor())

	m = pressN(t, m, keyUp, 91)
	rows, offset = m.Rows()
	assert.Zero(t, offset)
	assert.Len(t, rows, 200)
	v, _ := rows[0].Get("SO Number")
	assert.Equal(t, "SO-00000", v)
	assert.Equal(t, 109, m.grid.Cursor())

	page1 := 0
	for _, c := range fx.client.DetailCalls() {
		if c.Page == 1 {
			page1++
		}
	}
	assert.Equal(t, 2, page1, "evicted page 1 is fetched again")
}

func TestModel_SearchRebindsFilter(t *testing.T) {
	search := core.Filter{Status: "Pending", Search: " North"}
	m, fx := newModel(t, syntheticClient(250, map[core.Filter]int{search: 40}), 10, nil)
	m = press(t, m, keyEnter)

	m = focus(t, m, runes("/"))
	require.True(t, m.searching)
	m = typeText(t, m, " North")
	m = press(t, m, keyEnter)

	assert.False(t, m.searching)
	assert.Equal(t, search, m.Filter())
	rows, _ := m.Rows()
	assert.Len(t, rows, 40)
	assert.Contains(t, m.View(), `Showing results for " North" in Pending`)

	calls := fx.client.DetailCalls()
	assert.Equal(t, search, calls[len(calls)-1].Filter)
}

func TestModel_NoResults(t *testing.T) {
	search := core.Filter{Status: "Pending", Search: "zzz"}
	m, _ := newModel(t, syntheticClient(250, map[core.Filter]int{search: 0}), 10, nil)
	m = press(t, m, keyEnter)

	m = focus(t, m, runes("/"))
	m = typeText(t, m, "zzz")
	m = press(t, m, keyEnter)

	assert.True(t, m.noResults)
	view := m.View()
	assert.Contains(t, view, "No results found for your search")
	assert.Contains(t, view, "Try using different keywords or clearing the search")
	assert.NotEmpty(t, m.columns, "columns survive an empty result")
}

func TestModel_IgnoresStaleAnswers(t *testing.T) {
	m, _ := newModel(t, syntheticClient(250, nil), 10, nil)
	m = press(t, m, keyEnter)
	before, _ := m.Rows()

	next, _ := m.Update(detailsInitMsg{seq: m.seq - 1, snap: dataset.Snapshot{TotalRowCount: 7}})
	m = next.(Model)
	next, _ = m.Update(rowsMsg{seq: m.seq - 1, start: 100, end: 200, res: dataset.RangeResult{Rows: []core.Record{core.NewRecord("x", 1)}}})
	m = next.(Model)

	after, _ := m.Rows()
	assert.Equal(t, 250, m.total)
	assert.Len(t, after, len(before))
}

func TestModel_BackDiscardsDetails(t *testing.T) {
	m, _ := newModel(t, syntheticClient(250, nil), 10, nil)
	m = press(t, m, keyEnter)
	seq := m.seq

	m = press(t, m, keyEsc)

	assert.Equal(t, screenSummary, m.screen)
	assert.True(t, m.Filter().IsZero())
	assert.Greater(t, m.seq, seq)
}

func TestModel_RowFailureCanBeRetried(t *testing.T) {
	var failed atomic.Bool
	client := syntheticClient(250, nil)
	client.DetailFunc = func(_ context.Context, f core.Filter, page, size int) (core.DetailPage, error) {
		if page == 2 && !failed.Swap(true) {
			return core.DetailPage{}, &core.ServerError{Op: "fetch details", StatusCode: 500, Detail: "boom"}
		}
		return testutil.SyntheticPage(f, 250, page, size), nil
	}
	m, _ := newModel(t, client, 10, nil)
	m = press(t, m, keyEnter)

	m = pressN(t, m, keyDown, 95)
	require.Error(t, m.detailsErr)
	assert.Contains(t, m.View(), "Failed to load rows")
	rows, _ := m.Rows()
	assert.Len(t, rows, 100, "failure leaves held rows untouched")

	m = press(t, m, runes("r"))
	assert.NoError(t, m.detailsErr)
	rows, _ = m.Rows()
	assert.Len(t, rows, 200)
}

func TestModel_DrawerCopiesValue(t *testing.T) {
	m, fx := newModel(t, syntheticClient(250, nil), 10, nil)
	m = press(t, m, keyEnter)

	m = press(t, m, keyEnter)
	require.NotNil(t, m.drawer)
	view := m.View()
	assert.Contains(t, view, "Order Details")
	assert.Contains(t, view, "SO NUMBER")

	m = press(t, m, runes("y"))
	assert.Equal(t, []string{"SO-00000"}, fx.copied)
	assert.Equal(t, "Copied SO Number", m.flash)

	m = press(t, m, keyEsc)
	assert.Nil(t, m.drawer)
	assert.Equal(t, screenDetails, m.screen)
}

func TestModel_ExportsLoadedRows(t *testing.T) {
	m, fx := newModel(t, syntheticClient(250, nil), 10, nil)
	m = press(t, m, keyEnter)

	m = press(t, m, runes("e"))

	path := filepath.Join(fx.options.ExportDir, "SO_Details_Pending.xlsx")
	_, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "Wrote 100 rows to "+path, m.flash)
	assert.False(t, m.flashErr)
}

func TestModel_ExportsSummary(t *testing.T) {
	m, fx := newModel(t, syntheticClient(250, nil), 10, nil)

	m = press(t, m, runes("e"))

	_, err := os.Stat(filepath.Join(fx.options.ExportDir, "SO_Order_Summary.xlsx"))
	require.NoError(t, err)
	assert.Contains(t, m.flash, "Wrote 4 rows")
}

func TestModel_ChatTurn(t *testing.T) {
	m, fx := newModel(t, syntheticClient(250, nil), 10, nil)
	require.Len(t, m.transcript, 1)
	assert.Equal(t, chat.Greeting, m.transcript[0].Content)

	m = focus(t, m, runes("c"))
	require.True(t, m.chatOpen)
	m = typeText(t, m, "qc")
	m = press(t, m, keyEnter)

	assert.False(t, m.chatBusy)
	require.Len(t, m.transcript, 3)
	assert.Equal(t, core.Turn{Role: core.RoleUser, Content: "qc"}, m.transcript[1])
	assert.Equal(t, "echo: qc", m.transcript[2].Content)
	assert.Len(t, fx.client.ChatCalls(), 1)
	assert.Contains(t, m.View(), "AI Data Assistant")
}

func TestModel_ChatFailureShowsFallback(t *testing.T) {
	client := syntheticClient(250, nil)
	client.ChatFunc = func(context.Context, string, core.Conversation) (string, error) {
		return "", &core.NetworkError{Op: "send chat turn", Err: errors.New("refused")}
	}
	m, _ := newModel(t, client, 10, nil)

	m = focus(t, m, runes("c"))
	m = typeText(t, m, "hi")
	m = press(t, m, keyEnter)

	require.Len(t, m.transcript, 3)
	assert.Equal(t, chat.FallbackMessage, m.transcript[2].Content)
}

func TestModel_ChatIgnoresBlankAndClears(t *testing.T) {
	m, fx := newModel(t, syntheticClient(250, nil), 10, nil)
	m = focus(t, m, runes("c"))

	m = typeText(t, m, "   ")
	m = press(t, m, keyEnter)
	assert.Empty(t, fx.client.ChatCalls())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	require.Len(t, m.transcript, 1)
	assert.Equal(t, chat.ClearedGreeting, m.transcript[0].Content)

	m = press(t, m, keyEsc)
	assert.False(t, m.chatOpen)
}
