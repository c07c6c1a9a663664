package tui

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/ageview/internal/dataset"
	"github.com/leapstack-labs/ageview/internal/export"
	"github.com/leapstack-labs/ageview/pkg/core"
)

func (m Model) loadSummary() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		rows, err := client.FetchSummary(ctx)
		return summaryMsg{rows: rows, err: err}
	}
}

func (m Model) initDetails(seq int, filter core.Filter) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		snap, err := ctrl.Init(ctx, filter)
		return detailsInitMsg{seq: seq, snap: snap, err: err}
	}
}

func (m Model) loadRows(seq, start, end int, dir direction) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		res, err := ctrl.Rows(ctx, start, end)
		return rowsMsg{seq: seq, start: start, end: end, dir: dir, res: res, err: err}
	}
}

func (m Model) openChat() tea.Cmd {
	if m.panel == nil {
		return nil
	}
	ctx, panel := m.ctx, m.panel
	return func() tea.Msg {
		return chatMsg{conv: panel.Open(ctx)}
	}
}

// submitChat sends one turn. A failed send already left the fallback reply in
// the transcript, so the message always carries the full transcript.
func (m Model) submitChat(query string) tea.Cmd {
	ctx, panel := m.ctx, m.panel
	return func() tea.Msg {
		_, err := panel.Submit(ctx, query)
		return chatMsg{conv: panel.Transcript(), err: err}
	}
}

// exportSource produces the records and base filename of an export.
type exportSource func() ([]core.Record, string)

func summaryExport(rows []core.SummaryRow) exportSource {
	return func() ([]core.Record, string) {
		return export.SummaryRecords(rows), export.SummaryFilename
	}
}

// detailsExport exports the rows the dataset currently holds in memory.
func detailsExport(ctrl *dataset.Controller, status string) exportSource {
	return func() ([]core.Record, string) {
		return ctrl.LoadedRows(), export.FilenameFor(status)
	}
}

func exportCmd(src exportSource, dir string) tea.Cmd {
	return func() tea.Msg {
		records, name := src()
		path, err := export.ToFile(records, filepath.Join(dir, name))
		if err != nil {
			return flashMsg{err: fmt.Errorf("export failed: %w", err)}
		}
		if path == "" {
			return flashMsg{text: "Nothing to export"}
		}
		return flashMsg{text: fmt.Sprintf("Wrote %d rows to %s", len(records), path)}
	}
}

func copyCmd(write func(string) error, field, value string) tea.Cmd {
	return func() tea.Msg {
		if err := write(value); err != nil {
			return flashMsg{err: fmt.Errorf("copy %s: %w", field, err)}
		}
		return flashMsg{text: "Copied " + field}
	}
}
