// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/testutil"
	"github.com/leapstack-labs/ageview/internal/ui/features/common"
	"github.com/leapstack-labs/ageview/internal/ui/notifier"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// SampleSummary is the summary the fixture's backend returns.
func SampleSummary() []core.SummaryRow {
	return []core.SummaryRow{
		{StoreStatus: "Pending", OpenQtyPcs: 12000, AllocatedQtyPcs: 4000, PickedQtyPcs: 1000, UnallocatedQtyPcs: 1500},
		{StoreStatus: "In Transit", OpenQtyPcs: 6000, AllocatedQtyPcs: 3000, PickedQtyPcs: 2000, UnallocatedQtyPcs: 200},
		{StoreStatus: "Closed", OpenQtyPcs: 100, AllocatedQtyPcs: 100, PickedQtyPcs: 100},
		{StoreStatus: core.GrandTotalStatus, OpenQtyPcs: 18100, AllocatedQtyPcs: 7100, PickedQtyPcs: 3100, UnallocatedQtyPcs: 1700},
	}
}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Client   *testutil.FakeClient
	Notifier *notifier.Notifier
	Sessions *common.Repository
	Stores   map[string]*chat.MemoryStore
	Deps     common.Deps

	// Totals overrides the synthetic dataset size per filter.
	Totals map[core.Filter]int
}

// SetupTestFixture creates a fixture whose backend serves SampleSummary and
// synthetic detail pages of 250 rows per filter unless Totals says otherwise.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	f := &TestFixture{
		Notifier: notifier.New(),
		Stores:   make(map[string]*chat.MemoryStore),
		Totals:   make(map[core.Filter]int),
	}
	f.Client = &testutil.FakeClient{
		Summary: SampleSummary(),
		DetailFunc: func(_ context.Context, filter core.Filter, page, size int) (core.DetailPage, error) {
			total, ok := f.Totals[filter]
			if !ok {
				total = 250
			}
			return testutil.SyntheticPage(filter, total, page, size), nil
		},
	}
	f.Sessions = common.NewRepository(common.RepositoryConfig{
		Client: f.Client,
		Conversations: func(id string) chat.Store {
			store := chat.NewMemoryStore(nil)
			f.Stores[id] = store
			return store
		},
		Notifier:   f.Notifier,
		PageSize:   100,
		CachePages: 10,
		Logger:     logger,
	})
	f.Deps = common.Deps{
		Client:   f.Client,
		Sessions: f.Sessions,
		Notifier: f.Notifier,
		Logger:   logger,
	}
	return f
}

// Session returns the state of session id, creating it if needed.
func (f *TestFixture) Session(t *testing.T, id string) *common.Session {
	t.Helper()
	s, err := f.Sessions.Get(id)
	require.NoError(t, err)
	return s
}

// Request builds a request bound to session id.
func (f *TestFixture) Request(t *testing.T, method, target, body string, id string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Datastar-Request", "true")
	return req.WithContext(common.WithSession(req.Context(), f.Session(t, id)))
}

// SignalsQuery encodes datastar signals for a GET request.
func SignalsQuery(signals string) string {
	return "datastar=" + url.QueryEscape(signals)
}
