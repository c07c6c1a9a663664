// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/ageview/internal/cli/output"
	"github.com/leapstack-labs/ageview/internal/testutil"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// SampleSummary returns a small summary with a Grand Total row last.
func SampleSummary() []core.SummaryRow {
	return []core.SummaryRow{
		{StoreStatus: "Pending", OpenQtyPcs: 12000, AllocatedQtyPcs: 4000, PickedQtyPcs: 1000, UnallocatedQtyPcs: 1500},
		{StoreStatus: "In Transit", OpenQtyPcs: 6000, AllocatedQtyPcs: 3000, PickedQtyPcs: 2000, UnallocatedQtyPcs: 200},
		{StoreStatus: "Closed", OpenQtyPcs: 100, AllocatedQtyPcs: 100, PickedQtyPcs: 100, UnallocatedQtyPcs: 0},
		{StoreStatus: core.GrandTotalStatus, OpenQtyPcs: 18100, AllocatedQtyPcs: 7100, PickedQtyPcs: 3100, UnallocatedQtyPcs: 1700},
	}
}

// Backend is an in-process ageing API for command and handler tests.
// Every status has Rows detail rows; a non-empty search narrows that to SearchRows.
type Backend struct {
	*httptest.Server

	Summary    []core.SummaryRow
	Rows       int
	SearchRows int
	FailChat   bool

	mu    sync.Mutex
	chats []map[string]any
	pages []string
}

// NewBackend starts a backend that is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{Summary: SampleSummary(), Rows: 250, SearchRows: 40}

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "service": "SO Order Ageing API"})
	})
	r.Get("/summary", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, b.Summary)
	})
	r.Get("/details/{status}", b.details)
	r.Post("/chat", b.chat)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) details(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	search := r.URL.Query().Get("search")
	if page < 1 || size < 1 || size > 10000 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid paging"})
		return
	}

	b.mu.Lock()
	b.pages = append(b.pages, status+"|"+search+"|"+strconv.Itoa(page)+"|"+strconv.Itoa(size))
	b.mu.Unlock()

	total := b.Rows
	if search != "" {
		total = b.SearchRows
	}
	writeJSON(w, http.StatusOK, testutil.SyntheticPage(core.Filter{Status: status, Search: search}, total, page, size))
}

func (b *Backend) chat(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	b.chats = append(b.chats, body)
	fail := b.FailChat
	b.mu.Unlock()

	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "model offline"})
		return
	}
	query, _ := body["query"].(string)
	writeJSON(w, http.StatusOK, map[string]string{"response": "**echo:** " + query})
}

// ChatRequests returns the decoded chat request bodies received so far.
func (b *Backend) ChatRequests() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.chats...)
}

// PageRequests returns "status|search|page|size" for each details request.
func (b *Backend) PageRequests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.pages...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SetupTestProject creates a temporary project whose ageview.yaml points at
// baseURL and keeps state under the project directory.
func SetupTestProject(t *testing.T, baseURL string) string {
	t.Helper()

	dir := t.TempDir()
	cfg := "api:\n  base_url: " + baseURL + "\n  timeout: 5s\nstate_path: .ageview/state.db\nlog:\n  file: .ageview/test.log\n"
	if err := os.WriteFile(filepath.Join(dir, "ageview.yaml"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to write ageview.yaml: %v", err)
	}
	return dir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// StripANSI removes ANSI escape codes.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// AssertValidMarkdown checks for balanced code fences and non-empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
