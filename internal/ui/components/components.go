// Package components renders the browser dashboard's HTML fragments. The
// markup lives in the .templ files.
package components

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/leapstack-labs/ageview/internal/views"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// initialSignals is the client state the page starts with.
const initialSignals = `{"view":"summary","status":"","search":"","message":"","drawer":false}`

// DetailsView is everything the details panel shows after an Init.
type DetailsView struct {
	Filter    core.Filter
	Columns   []string
	Rows      []core.Record
	Loaded    int
	Total     int
	NoResults bool
	Error     string
}

// done reports whether the first window already holds every row.
func (v DetailsView) done() bool {
	return len(v.Rows) == 0 || len(v.Rows) >= v.Total
}

// markdown renders assistant replies. Raw HTML in replies is not passed through.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func markdownHTML(content string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return templ.EscapeString(content)
	}
	return buf.String()
}

// jsString quotes s as a JavaScript string literal for datastar expressions.
func jsString(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}

func drillAction(status string) string {
	return "$status = " + jsString(status) + "; $search = ''; @get('/details')"
}

func recordAction(index int) string {
	return "@get('/details/record?index=" + strconv.Itoa(index) + "')"
}

func rowsAction(start int) string {
	return "@get('/details/rows?start=" + strconv.Itoa(start) + "')"
}

// barWidth is a share in the 0..100 units of the bar's viewBox.
func barWidth(share float64) string {
	return strconv.FormatFloat(share*100, 'f', 1, 64)
}

func severityClass(s views.Severity) string {
	switch s {
	case views.SeverityHigh:
		return "sev-high"
	case views.SeverityMedium:
		return "sev-medium"
	default:
		return ""
	}
}

func withClass(base, extra string) string {
	if extra == "" {
		return base
	}
	return base + " " + extra
}

func openQtyClass(r core.SummaryRow) string {
	open, _ := views.RowSeverity(r)
	return withClass("num", severityClass(open))
}

func unallocatedQtyClass(r core.SummaryRow) string {
	_, unallocated := views.RowSeverity(r)
	return withClass("num", severityClass(unallocated))
}

// valueClass bands numeric values. Numbers below every band are muted.
func valueClass(v any) string {
	if _, ok := v.(float64); !ok {
		return ""
	}
	if c := severityClass(views.CellSeverity(v)); c != "" {
		return c
	}
	return "sev-low"
}

func cellClass(r core.Record, column string) string {
	v, _ := r.Get(column)
	return withClass("cell", valueClass(v))
}

func cellText(r core.Record, column string) string {
	v, _ := r.Get(column)
	return views.FormatValue(v)
}

func drawerClass(f views.DrawerField) string {
	if f.Blank {
		return "sev-low"
	}
	return valueClass(f.Raw)
}
