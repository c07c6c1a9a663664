package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/leapstack-labs/ageview/internal/views"
	"github.com/leapstack-labs/ageview/pkg/core"
)

const (
	chartLabelWidth = 18
	chartBarWidth   = 24
	minColumnWidth  = 8
	// chrome is the number of lines taken by the header and footer.
	chrome = 7
)

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch {
	case m.chatOpen:
		body = m.chatPanelView()
	case m.drawer != nil:
		body = m.drawerView()
	case m.screen == screenDetails:
		body = m.detailsView()
	default:
		body = m.summaryView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), "", body, m.footerView())
}

func (m Model) headerView() string {
	return titleStyle.Render("SO Order Ageing Dashboard") + "\n" +
		subtitleStyle.Render("Sales Order Analytics & Insights")
}

func (m Model) footerView() string {
	var b strings.Builder
	switch {
	case m.flash == "":
	case m.flashErr:
		b.WriteString(errorStyle.Render(m.flash))
	default:
		b.WriteString(flashStyle.Render(m.flash))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) summaryView() string {
	if m.summaryLoading && m.summary.Len() == 0 {
		return m.spinner.View() + " Loading summary..."
	}

	var sections []string
	if kpis := m.summary.KPIs(); len(kpis) > 0 {
		cards := make([]string, len(kpis))
		for i, k := range kpis {
			cards[i] = kpiStyle.Render(kpiLabelStyle.Render(strings.ToUpper(k.Label)) + "\n" +
				kpiValueStyle.Render(views.FormatQty(k.Value)))
		}
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	grid, chart := m.summaryTableView(), m.chartView()
	if lipgloss.Width(grid)+lipgloss.Width(chart)+2 <= m.width {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", chart))
	} else {
		sections = append(sections, grid, chart)
	}

	if m.summaryErr != nil {
		sections = append(sections, errorStyle.Render("Failed to load summary: "+m.summaryErr.Error())+
			mutedStyle.Render("  press r to retry"))
	}
	if m.summaryLoading {
		sections = append(sections, m.spinner.View()+mutedStyle.Render(" Refreshing..."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) summaryTableView() string {
	title := accentStyle.Render("Store Status Summary") + "\n" +
		mutedStyle.Render("Real-time aggregation across all stores")

	rows := m.summary.Rows()
	if len(rows) == 0 {
		return panelStyle.Render(title + "\n\n" + mutedStyle.Render(views.NoDataText))
	}

	cursor := m.summaryCursor
	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("", "Store Status", "Open Qty", "Allocated", "Picked", "Unallocated")
	for i, r := range rows {
		marker := " "
		if i == cursor {
			marker = "›"
		}
		t.Row(marker, r.StoreStatus,
			views.FormatQty(r.OpenQtyPcs),
			views.FormatQty(r.AllocatedQtyPcs),
			views.FormatQty(r.PickedQtyPcs),
			views.FormatQty(r.UnallocatedQtyPcs),
		)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		style := lipgloss.NewStyle().Padding(0, 1)
		if col >= 2 {
			style = style.Align(lipgloss.Right)
		}
		if row == ltable.HeaderRow {
			return style.Bold(true).Foreground(accent)
		}
		if row < 0 || row >= len(rows) {
			return style
		}
		r := rows[row]
		if r.IsGrandTotal() {
			return style.Bold(true)
		}
		open, unallocated := views.RowSeverity(r)
		switch col {
		case 2:
			style = severityStyle(style, open)
		case 5:
			style = severityStyle(style, unallocated)
		}
		if row == cursor && col <= 1 {
			style = style.Foreground(accent).Bold(true)
		}
		return style
	})

	return panelStyle.Render(title + "\n" + t.Render())
}

func severityStyle(base lipgloss.Style, s views.Severity) lipgloss.Style {
	switch s {
	case views.SeverityHigh:
		return base.Foreground(danger).Bold(true)
	case views.SeverityMedium:
		return base.Foreground(caution)
	default:
		return base
	}
}

func (m Model) chartView() string {
	var b strings.Builder
	b.WriteString(accentStyle.Render("Status Distribution") + "\n")
	b.WriteString(mutedStyle.Render("Top statuses by Open Qty") + "\n\n")

	slices := views.Distribution(m.summary.Rows(), views.DefaultTopN)
	if len(slices) == 0 {
		b.WriteString(mutedStyle.Render(views.NoDataText))
		return panelStyle.Render(b.String())
	}
	for i, s := range slices {
		label := runewidth.FillRight(runewidth.Truncate(s.Status, chartLabelWidth, "…"), chartLabelWidth)
		n := int(s.Share*chartBarWidth + 0.5)
		if n == 0 && s.Value > 0 {
			n = 1
		}
		bar := barStyle.Render(strings.Repeat("█", n)) + strings.Repeat(" ", chartBarWidth-n)
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s %s", label, bar,
			mutedStyle.Render(views.FormatPercent(s.Share)))
	}
	return panelStyle.Render(b.String())
}

func (m Model) detailsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Details for: ") + accentStyle.Render(m.filter.Status) + "\n")
	if m.filter.Search != "" {
		fmt.Fprintf(&b, "Showing results for %q in %s\n", m.filter.Search, m.filter.Status)
	}
	if m.searching {
		b.WriteString(m.searchInput.View() + "\n")
	}

	status := views.StatusLine(m.loaded, m.total, m.initializing)
	if m.loading {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(mutedStyle.Render(status) + "\n")

	if m.detailsErr != nil {
		b.WriteString(errorStyle.Render("Failed to load rows: "+m.detailsErr.Error()) +
			mutedStyle.Render("  press r to retry") + "\n")
	}

	switch {
	case m.initializing:
		b.WriteString("\n" + m.spinner.View() + " Wrangling Data...")
	case m.noResults:
		b.WriteString("\n" + titleStyle.Render(views.NoResultsText) + "\n" +
			mutedStyle.Render(views.NoResultsHintText))
	case len(m.rows) > 0:
		b.WriteString(m.grid.View() + "\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("row %s of %s",
			views.FormatCount(m.offset+m.grid.Cursor()+1), views.FormatCount(m.total))))
	}
	return b.String()
}

func (m Model) drawerView() string {
	d := m.drawer
	fields := d.Fields()

	var b strings.Builder
	b.WriteString(accentStyle.Render("Order Details") + "\n\n")
	for i, f := range d.Headline {
		value := titleStyle.Render(f.Value)
		if f.Blank {
			value = mutedStyle.Render(f.Value)
		}
		fmt.Fprintf(&b, "%s %s\n%s\n", m.drawerMarker(i), kpiLabelStyle.Render(strings.ToUpper(f.Key)), "  "+value)
	}

	if len(d.Attributes) > 0 {
		b.WriteString("\n" + subtitleStyle.Render("Attributes") + "\n")
	}
	keyWidth := 0
	for _, f := range d.Attributes {
		keyWidth = max(keyWidth, runewidth.StringWidth(f.Key))
	}

	// Keep the cursor visible when the record has more attributes than fit.
	visible := max(m.height-chrome-len(d.Headline)*2-6, 5)
	first := 0
	if idx := m.drawerCursor - len(d.Headline); idx >= visible {
		first = idx - visible + 1
	}
	for i := first; i < len(d.Attributes) && i < first+visible; i++ {
		f := d.Attributes[i]
		value := f.Value
		switch {
		case f.Blank:
			value = mutedStyle.Render(value)
		default:
			value = severityStyle(lipgloss.NewStyle(), views.CellSeverity(f.Raw)).Render(value)
		}
		fmt.Fprintf(&b, "%s %s  %s\n", m.drawerMarker(len(d.Headline)+i),
			mutedStyle.Render(runewidth.FillRight(f.Key, keyWidth)), value)
	}
	if len(fields) == 0 {
		b.WriteString(mutedStyle.Render(views.NoDataText))
	}
	return panelStyle.Width(max(m.width-4, 40)).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) drawerMarker(i int) string {
	if i == m.drawerCursor {
		return cursorStyle.Render("›")
	}
	return " "
}

func (m Model) chatPanelView() string {
	var b strings.Builder
	b.WriteString(accentStyle.Render("AI Data Assistant") + "\n")
	b.WriteString(m.chatView.View() + "\n")
	if m.chatBusy {
		b.WriteString(m.spinner.View() + mutedStyle.Render(" Thinking...") + "\n")
	}
	b.WriteString(m.chatInput.View() + "\n")
	b.WriteString(mutedStyle.Render("enter send • ctrl+l clear • pgup/pgdn scroll • esc close"))
	return panelStyle.Width(max(m.width-4, 40)).Render(b.String())
}

// resize fits the grid, the chat viewport and the help line to the window.
func (m *Model) resize() {
	m.help.Width = m.width

	gridHeight := m.height - chrome - 6
	if m.help.ShowAll {
		gridHeight -= 4
	}
	m.grid.SetHeight(max(gridHeight, 5))
	m.grid.SetWidth(max(m.width-2, 20))
	m.grid.SetColumns(m.gridColumns())

	m.chatView.Width = max(m.width-8, 30)
	m.chatView.Height = max(m.height-chrome-8, 5)
	m.chatInput.Width = max(m.width-12, 20)
	m.searchInput.Width = max(m.width-8, 20)
	m.refreshChat()
}

func (m Model) gridColumns() []table.Column {
	if len(m.columns) == 0 {
		return nil
	}
	// Each cell is padded by one space on either side.
	width := max((m.width-2)/len(m.columns)-2, minColumnWidth)
	cols := make([]table.Column, len(m.columns))
	for i, c := range m.columns {
		cols[i] = table.Column{Title: c, Width: width}
	}
	return cols
}

func (m Model) tableRows() []table.Row {
	out := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		row := make(table.Row, len(m.columns))
		for j, c := range m.columns {
			v, _ := r.Get(c)
			row[j] = views.FormatValue(v)
		}
		out[i] = row
	}
	return out
}

// refreshChat re-renders the transcript into the chat viewport.
func (m *Model) refreshChat() {
	width := m.chatView.Width
	if m.md == nil || m.mdWidth != width {
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(max(width-4, 20)),
		)
		if err != nil {
			m.logger.Debug("markdown renderer unavailable", "error", err)
		}
		m.md, m.mdWidth = md, width
	}

	var b strings.Builder
	wrap := lipgloss.NewStyle().Width(max(width-2, 10))
	for i, turn := range m.transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		if turn.Role == core.RoleUser {
			b.WriteString(userStyle.Render("you ›") + "\n")
			b.WriteString(wrap.Render(turn.Content) + "\n")
			continue
		}
		b.WriteString(botStyle.Render("assistant ›") + "\n")
		b.WriteString(m.renderMarkdown(turn.Content, wrap))
	}
	m.chatView.SetContent(b.String())
	m.chatView.GotoBottom()
}

func (m *Model) renderMarkdown(content string, fallback lipgloss.Style) string {
	if m.md != nil {
		if out, err := m.md.Render(content); err == nil {
			return out
		}
	}
	return fallback.Render(content) + "\n"
}
