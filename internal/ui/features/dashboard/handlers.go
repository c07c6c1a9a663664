package dashboard

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/ageview/internal/dataset"
	"github.com/leapstack-labs/ageview/internal/export"
	"github.com/leapstack-labs/ageview/internal/ui/components"
	"github.com/leapstack-labs/ageview/internal/ui/features/common"
	"github.com/leapstack-labs/ageview/internal/views"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// Handlers provides HTTP handlers for the dashboard feature.
type Handlers struct {
	client core.QueryClient
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{client: deps.Client, logger: logger}
}

// Page renders the page shell. Panels fill themselves over SSE.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	if err := components.Page("SO Order Ageing Dashboard").Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SummarySSE sends the KPI cards, the summary table and the chart. A failed
// fetch degrades to the empty state.
func (h *Handlers) SummarySSE(w http.ResponseWriter, r *http.Request) {
	rows, err := h.client.FetchSummary(r.Context())
	errMsg := ""
	if err != nil {
		h.logger.Warn("failed to load summary", "error", err)
		rows, errMsg = nil, common.ErrorText(err)
	}
	summary := views.NewSummary(rows)

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(components.KPIs(summary.KPIs())); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(components.SummaryTable(summary.Rows(), errMsg)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(components.Chart(views.Distribution(summary.Rows(), views.DefaultTopN))); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// DetailsSSE binds the session's dataset to the status and search in the
// client signals and sends the first window.
func (h *Handlers) DetailsSSE(w http.ResponseWriter, r *http.Request) {
	sess, ok := common.MustSession(w, r)
	if !ok {
		return
	}

	// Read signals before creating the SSE.
	var signals DetailsSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}
	if signals.Status == "" {
		http.Error(w, "status is required", http.StatusBadRequest)
		return
	}

	filter := core.Filter{Status: signals.Status, Search: signals.Search}
	ctrl := sess.Controller
	view := components.DetailsView{Filter: filter}

	snap, err := ctrl.Init(r.Context(), filter)
	switch {
	case errors.Is(err, dataset.ErrStale):
		// A newer filter from another tab of this session won.
		return
	case err != nil:
		h.logger.Warn("failed to initialize details", "filter", filter.String(), "error", err)
		view.Error = "Failed to load details: " + common.ErrorText(err)
	default:
		view.Columns = snap.Columns
		view.Total = snap.TotalRowCount
		view.NoResults = snap.NoResults
		if !snap.NoResults {
			res, err := ctrl.Rows(r.Context(), 0, ctrl.PageSize())
			if errors.Is(err, dataset.ErrStale) {
				return
			}
			if err != nil {
				view.Error = "Failed to load rows: " + common.ErrorText(err)
			}
			view.Rows = res.Rows
			view.Total = max(view.Total, res.TotalRowCount)
		}
		view.Loaded = ctrl.Snapshot().LoadedRowCount
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(viewSignals{View: "details"}); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(components.Details(view)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// RowsSSE appends the window starting at the start query parameter.
func (h *Handlers) RowsSSE(w http.ResponseWriter, r *http.Request) {
	sess, ok := common.MustSession(w, r)
	if !ok {
		return
	}
	start, err := strconv.Atoi(r.URL.Query().Get("start"))
	if err != nil || start < 0 {
		http.Error(w, "start must be a non-negative integer", http.StatusBadRequest)
		return
	}

	ctrl := sess.Controller
	res, err := ctrl.Rows(r.Context(), start, start+ctrl.PageSize())
	if errors.Is(err, dataset.ErrStale) {
		return
	}

	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.logger.Warn("failed to load rows", "start", start, "error", err)
		if errors.Is(err, dataset.ErrNotReady) {
			_ = sse.ConsoleError(err)
			return
		}
		_ = sse.PatchElementTempl(components.RowsError(start, common.ErrorText(err)))
		return
	}

	snap := ctrl.Snapshot()
	if len(res.Rows) > 0 {
		if err := sse.PatchElementTempl(
			components.Rows(snap.Columns, res.Rows, start),
			datastar.WithSelectorID("detail-rows"),
			datastar.WithModeAppend(),
		); err != nil {
			_ = sse.ConsoleError(err)
			return
		}
	}
	next := start + len(res.Rows)
	if err := sse.PatchElementTempl(components.More(next, len(res.Rows) == 0 || next >= res.TotalRowCount)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElementTempl(components.StatusLine(snap.LoadedRowCount, res.TotalRowCount)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// RecordSSE opens the drawer for the row at the index query parameter.
func (h *Handlers) RecordSSE(w http.ResponseWriter, r *http.Request) {
	sess, ok := common.MustSession(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil || index < 0 {
		http.Error(w, "index must be a non-negative integer", http.StatusBadRequest)
		return
	}

	res, err := sess.Controller.Rows(r.Context(), index, index+1)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if len(res.Rows) == 0 {
		return
	}

	if err := sse.PatchElementTempl(components.Drawer(views.NewDrawer(res.Rows[0]))); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	_ = sse.MarshalAndPatchSignals(viewSignals{View: "details", Drawer: true})
}

// ExportSummary downloads the summary table as a workbook.
func (h *Handlers) ExportSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.client.FetchSummary(r.Context())
	if err != nil {
		h.logger.Warn("failed to load summary for export", "error", err)
		http.Error(w, common.ErrorText(err), http.StatusBadGateway)
		return
	}
	if err := common.WriteWorkbook(w, export.SummaryRecords(rows), export.SummaryFilename); err != nil {
		h.logger.Error("summary export failed", "error", err)
	}
}

// ExportDetails downloads the rows the session's dataset currently holds.
func (h *Handlers) ExportDetails(w http.ResponseWriter, r *http.Request) {
	sess, ok := common.MustSession(w, r)
	if !ok {
		return
	}
	snap := sess.Controller.Snapshot()
	if !snap.Ready {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	records := sess.Controller.LoadedRows()
	if err := common.WriteWorkbook(w, records, export.FilenameFor(snap.Filter.Status)); err != nil {
		h.logger.Error("details export failed", "filter", snap.Filter.String(), "error", err)
	}
}
