package dashboard

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/ageview/internal/ui/features"
	"github.com/leapstack-labs/ageview/internal/ui/features/common"
	"github.com/leapstack-labs/ageview/pkg/core"
)

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	return NewHandlers(fixture.Deps), fixture
}

func openDetails(t *testing.T, h *Handlers, f *features.TestFixture, signals string) *httptest.ResponseRecorder {
	t.Helper()
	req := f.Request(t, http.MethodGet, "/details?"+features.SignalsQuery(signals), "", "s1")
	rec := httptest.NewRecorder()
	h.DetailsSSE(rec, req)
	return rec
}

func TestPage(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Page(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"<title>SO Order Ageing Dashboard</title>",
		"Sales Order Analytics &amp; Insights",
		`data-init="@get('/summary')"`,
		`data-init="@get('/chat')"`,
		`id="details"`,
		"/static/app.css",
	} {
		assert.Contains(t, body, want)
	}
}

func TestSummarySSE(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	h.SummarySSE(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	body := rec.Body.String()
	assert.Contains(t, body, `id="kpis"`)
	assert.Contains(t, body, "Total Open Qty")
	assert.Contains(t, body, "18,100")
	assert.Contains(t, body, `class="num sev-high"`, "Pending open qty is banded high")
	assert.Contains(t, body, `$status = &#34;Pending&#34;`)
	assert.Contains(t, body, "66.3%")
	assert.NotContains(t, body, `$status = &#34;Grand Total&#34;`, "Grand Total is not drillable")
}

func TestSummarySSE_BackendDown(t *testing.T) {
	h, f := setupTestHandlers(t)
	f.Client.SummaryErr = &core.NetworkError{Op: "fetch summary", Err: errors.New("connection refused")}

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	h.SummarySSE(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "Failed to load summary")
	assert.Contains(t, body, "No data found")
	assert.NotContains(t, body, "Total Open Qty")
}

func TestDetailsSSE(t *testing.T) {
	h, f := setupTestHandlers(t)

	rec := openDetails(t, h, f, `{"status":"Pending","search":""}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Details for: ")
	assert.Contains(t, body, "Showing up to 100 of 250 rows")
	assert.Contains(t, body, "SO-00099")
	assert.NotContains(t, body, "SO-00100")
	assert.Contains(t, body, "/details/rows?start=100")
	assert.Contains(t, body, `"view":"details"`)

	snap := f.Session(t, "s1").Controller.Snapshot()
	assert.Equal(t, core.Filter{Status: "Pending"}, snap.Filter)
	assert.Equal(t, []string{"id", "SO Number", "Store", "Qty"}, snap.Columns)
}

func TestDetailsSSE_SearchIsSentVerbatim(t *testing.T) {
	h, f := setupTestHandlers(t)
	f.Totals[core.Filter{Status: "Pending", Search: " North "}] = 0

	rec := openDetails(t, h, f, `{"status":"Pending","search":" North "}`)

	body := rec.Body.String()
	assert.Contains(t, body, "No results found for your search")
	assert.Contains(t, body, "Showing results for")
	calls := f.Client.DetailCalls()
	require.NotEmpty(t, calls)
	assert.Equal(t, " North ", calls[len(calls)-1].Filter.Search)
}

func TestDetailsSSE_RequiresStatus(t *testing.T) {
	h, f := setupTestHandlers(t)

	rec := openDetails(t, h, f, `{"status":"","search":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetailsSSE_InitFailureOffersRetry(t *testing.T) {
	h, f := setupTestHandlers(t)
	f.Client.DetailFunc = func(context.Context, core.Filter, int, int) (core.DetailPage, error) {
		return core.DetailPage{}, &core.ServerError{Op: "fetch details", StatusCode: 500, Detail: "database offline"}
	}

	rec := openDetails(t, h, f, `{"status":"Pending","search":""}`)

	body := rec.Body.String()
	assert.Contains(t, body, "database offline")
	assert.Contains(t, body, "Retry")
}

func TestRowsSSE(t *testing.T) {
	h, f := setupTestHandlers(t)
	openDetails(t, h, f, `{"status":"Pending","search":""}`)

	req := f.Request(t, http.MethodGet, "/details/rows?start=200", "", "s1")
	rec := httptest.NewRecorder()
	h.RowsSSE(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "detail-rows")
	assert.Contains(t, body, "append")
	assert.Contains(t, body, "SO-00249")
	assert.NotContains(t, body, "/details/rows?start=", "last window ends the sentinel")
	assert.Contains(t, body, "Showing up to 250 of 250 rows")
}

func TestRowsSSE_BadStart(t *testing.T) {
	h, f := setupTestHandlers(t)

	req := f.Request(t, http.MethodGet, "/details/rows?start=abc", "", "s1")
	rec := httptest.NewRecorder()
	h.RowsSSE(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRowsSSE_FailureOffersRetry(t *testing.T) {
	h, f := setupTestHandlers(t)
	openDetails(t, h, f, `{"status":"Pending","search":""}`)
	f.Client.DetailFunc = func(context.Context, core.Filter, int, int) (core.DetailPage, error) {
		return core.DetailPage{}, &core.NetworkError{Op: "fetch details", Err: errors.New("reset")}
	}

	req := f.Request(t, http.MethodGet, "/details/rows?start=100", "", "s1")
	rec := httptest.NewRecorder()
	h.RowsSSE(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "Failed to load rows")
	assert.Contains(t, body, "/details/rows?start=100")
}

func TestRecordSSE(t *testing.T) {
	h, f := setupTestHandlers(t)
	openDetails(t, h, f, `{"status":"Pending","search":""}`)

	req := f.Request(t, http.MethodGet, "/details/record?index=7", "", "s1")
	rec := httptest.NewRecorder()
	h.RecordSSE(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, "Order Details")
	assert.Contains(t, body, "SO-00007")
	assert.NotContains(t, body, "<dt>id</dt>")
	assert.Contains(t, body, `"drawer":true`)
}

func TestExportDetails(t *testing.T) {
	h, f := setupTestHandlers(t)

	t.Run("nothing loaded", func(t *testing.T) {
		req := f.Request(t, http.MethodGet, "/details/export", "", "s1")
		rec := httptest.NewRecorder()
		h.ExportDetails(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("loaded rows", func(t *testing.T) {
		openDetails(t, h, f, `{"status":"In Transit","search":""}`)

		req := f.Request(t, http.MethodGet, "/details/export", "", "s1")
		rec := httptest.NewRecorder()
		h.ExportDetails(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, common.XLSXContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="SO_Details_In_Transit.xlsx"`)

		wb, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = wb.Close() }()
		rows, err := wb.GetRows("Data")
		require.NoError(t, err)
		assert.Len(t, rows, 101, "header plus the loaded window")
		assert.Equal(t, "SO Number", rows[0][1])
	})
}

func TestExportSummary(t *testing.T) {
	h, _ := setupTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/summary/export", nil)
	rec := httptest.NewRecorder()
	h.ExportSummary(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasSuffix(rec.Header().Get("Content-Disposition"), `"SO_Order_Summary.xlsx"`))
	wb, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	rows, err := wb.GetRows("Data")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	assert.Equal(t, "Store Status", rows[0][0])
}
