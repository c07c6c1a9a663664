package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/ageview/internal/cli/commands"
	"github.com/leapstack-labs/ageview/internal/cli/testutil"
)

// execute runs the root command against the project in dir and returns stdout.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "ageview.yaml")}, args...))

	err := cmd.Execute()
	if errOut.Len() > 0 {
		t.Logf("stderr: %s", errOut.String())
	}
	return out.String(), err
}

func TestSummary_JSON(t *testing.T) {
	backend := testutil.NewBackend(t)
	dir := testutil.SetupTestProject(t, backend.URL)

	out, err := execute(t, dir, "summary", "-o", "json")
	require.NoError(t, err)

	var result commands.SummaryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Rows, 4)
	require.Len(t, result.KPIs, 4)
	assert.Equal(t, "Total Open Qty", result.KPIs[0].Label)
	assert.Equal(t, int64(18100), result.KPIs[0].Value)
}

func TestSummary_Markdown(t *testing.T) {
	backend := testutil.NewBackend(t)
	dir := testutil.SetupTestProject(t, backend.URL)

	out, err := execute(t, dir, "summary")
	require.NoError(t, err)

	testutil.AssertNoANSI(t, out)
	assert.Contains(t, out, "# Store Status Summary")
	assert.Contains(t, out, "| Pending | 12,000 | 4,000 | 1,000 | 1,500 |")
	assert.Contains(t, out, "Grand Total")
}

func TestSummary_BackendDown(t *testing.T) {
	backend := testutil.NewBackend(t)
	dir := testutil.SetupTestProject(t, backend.URL)
	backend.Close()

	_, err := execute(t, dir, "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load summary")
}

func TestDetails_FirstPage(t *testing.T) {
	backend := testutil.NewBackend(t)
	dir := testutil.SetupTestProject(t, backend.URL)

	out, err := execute(t, dir, "details", "In Transit", "-o", "json")
	require.NoError(t, err)

	var result commands.DetailsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "In Transit", result.Status)
	assert.Equal(t, 250, result.TotalRows)
	assert.Len(t, result.Rows, 100)
	assert.Equal(t, []string{"id", "SO Number", "Store", "Qty"}, result.Columns)
	assert.Equal(t, []string{"In Transit||1|100"}, backend.PageRequests())
}

func TestDetails_AllPagesWithSearch(t *testing.T) {
	backend := testutil.NewBackend(t)
	dir := testutil.SetupTestProject(t, backend.URL)

	out, err := execute(t, dir, "details", "Pending", "--search", "north", "--all", "-o", "json")
	require.NoError(t, err)

	var result commands.DetailsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 40, result.TotalRows)
	assert.Len(t, result.Rows, 40)
	for _, req := range backend.PageRequests() {
		assert.Contains(t, req, "Pending|north|")
	}
}

func TestDetails_NoResults(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SearchRows = 0
	dir := testutil.SetupTestProject(t, backend.URL)

	out, err := execute(t, dir, "details", "Pending", "--search", "nowhere")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found")
}

func TestExportDetails_WritesWorkbook(t *testing.T) {
	backend := testutil.NewBackend(t)
	dir := testutil.SetupTestProject(t, backend.URL)
	outDir := filepath.Join(dir, "exports")

	out, err := execute(t, dir, "export", "details", "In Transit", "--dir", outDir, "-o", "json")
	require.NoError(t, err)

	var result commands.ExportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, filepath.Join(outDir, "SO_Details_In_Transit.xlsx"), result.Path)
	assert.Equal(t, 250, result.Rows)
	assert.Equal(t, []string{"In Transit||1|5000"}, backend.PageRequests())

	f, err := excelize.OpenFile(result.Path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	assert.Len(t, rows, 251)
}

func TestExportDetails_NothingToExport(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SearchRows = 0
	dir := testutil.SetupTestProject(t, backend.URL)
	outDir := filepath.Join(dir, "exports")

	out, err := execute(t, dir, "export", "details", "Pending", "--search", "x", "--dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to export")

	entries, _ := os.ReadDir(outDir)
	assert.Empty(t, entries)
}

func TestChat_KeepsHistoryAcrossRuns(t *testing.T) {
	backend := testutil.NewBackend(t)
	dir := testutil.SetupTestProject(t, backend.URL)

	out, err := execute(t, dir, "chat", "which", "store?", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"content": "**echo:** which store?"`)

	_, err = execute(t, dir, "chat", "and then?")
	require.NoError(t, err)

	reqs := backend.ChatRequests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "which store?", reqs[0]["query"])
	assert.Len(t, reqs[0]["history"], 1, "first turn carries only the greeting")
	assert.Len(t, reqs[1]["history"], 3, "second turn carries the saved transcript")

	out, err = execute(t, dir, "chat", "--clear", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared")
}

func TestChat_BackendFailure(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.FailChat = true
	dir := testutil.SetupTestProject(t, backend.URL)

	out, err := execute(t, dir, "chat", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat turn failed")
	assert.Contains(t, out, "couldn't reach the AI backend")
}

func TestDoctor(t *testing.T) {
	backend := testutil.NewBackend(t)
	dir := testutil.SetupTestProject(t, backend.URL)

	out, err := execute(t, dir, "doctor", "-o", "json")
	require.NoError(t, err)

	var result commands.DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Zero(t, result.Failed)
	names := make([]string, 0, len(result.Checks))
	for _, c := range result.Checks {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Config", "Backend", "Summary endpoint", "State"}, names)
	assert.Contains(t, result.Checks[3].Detail, "0 saved conversations")
}

func TestDoctor_CountsSavedConversations(t *testing.T) {
	backend := testutil.NewBackend(t)
	dir := testutil.SetupTestProject(t, backend.URL)

	_, err := execute(t, dir, "chat", "hello")
	require.NoError(t, err)

	out, err := execute(t, dir, "doctor", "-o", "json")
	require.NoError(t, err)

	var result commands.DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Checks, 4)
	assert.Equal(t, "success", result.Checks[3].Status)
	assert.Contains(t, result.Checks[3].Detail, "3 chat turns, 1 saved conversations")
}

func TestDoctor_BackendDown(t *testing.T) {
	backend := testutil.NewBackend(t)
	dir := testutil.SetupTestProject(t, backend.URL)
	backend.Close()

	_, err := execute(t, dir, "doctor", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 4 checks failed")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ageview.yaml"), []byte("details:\n  page_size: 0\n"), 0o600))

	_, err := execute(t, dir, "summary")
	require.Error(t, err)
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	want := []string{"summary", "details", "chart", "chat", "export", "dashboard", "serve", "doctor", "version", "completion"}
	for _, name := range want {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
}
