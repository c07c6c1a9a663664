// Package dataset presents a server-paged detail query as one scrollable
// sequence of rows.
//
// A Controller is bound to a single filter at a time. Init switches filters
// and loads page 1; Rows serves arbitrary row windows afterwards, fetching
// missing pages one at a time. Results from a superseded filter are
// discarded by comparing the generation captured when the fetch started.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"

	"github.com/leapstack-labs/ageview/pkg/core"
)

// DefaultCachePages is the number of pages kept resident.
const DefaultCachePages = 10

var (
	// ErrNotReady is returned by Rows before Init has completed for the
	// current filter.
	ErrNotReady = errors.New("dataset is not initialized")

	// ErrStale is returned when a fetch finished after the filter changed.
	// Its result has been dropped.
	ErrStale = errors.New("filter changed while fetching")
)

// RangeError reports that a row window could not be loaded. Cached pages and
// counters are unchanged, so the caller may simply retry the same window.
type RangeError struct {
	Start int
	End   int
	Page  int
	Err   error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("load rows %d-%d (page %d): %v", e.Start, e.End, e.Page, e.Err)
}

func (e *RangeError) Unwrap() error { return e.Err }

// Options configures a Controller.
type Options struct {
	PageSize   int
	CachePages int
	Logger     *slog.Logger
}

// RangeResult is the answer to a Rows request.
type RangeResult struct {
	Rows          []core.Record
	TotalRowCount int
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	Filter         core.Filter
	Columns        []string
	LoadedRowCount int
	TotalRowCount  int
	ResidentPages  int
	Ready          bool
	NoResults      bool
}

// Controller owns the window state for one filter at a time.
type Controller struct {
	client   core.QueryClient
	pageSize int
	capacity int
	logger   *slog.Logger

	// slot admits one page fetch at a time; later requests queue on it.
	slot *semaphore.Weighted

	mu         sync.Mutex
	generation uint64
	filter     core.Filter
	ready      bool
	noResults  bool
	columns    []string
	// schemaSet reports that columns came from the current filter.
	schemaSet bool
	loaded    int
	total     int
	pages     *lru.Cache[int, core.Page]

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

// New creates a controller reading pages from client.
func New(client core.QueryClient, opts Options) (*Controller, error) {
	if client == nil {
		return nil, errors.New("dataset: query client is required")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = core.DefaultPageSize
	}
	if opts.CachePages <= 0 {
		opts.CachePages = DefaultCachePages
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	pages, err := lru.New[int, core.Page](opts.CachePages)
	if err != nil {
		return nil, fmt.Errorf("dataset: create page cache: %w", err)
	}

	return &Controller{
		client:   client,
		pageSize: opts.PageSize,
		capacity: opts.CachePages,
		logger:   opts.Logger,
		slot:     semaphore.NewWeighted(1),
		pages:    pages,
	}, nil
}

// PageSize returns the number of rows per page.
func (c *Controller) PageSize() int { return c.pageSize }

// Init binds the controller to filter, dropping every page and counter held
// for the previous one, and loads page 1. Rows fails with ErrNotReady until
// Init returns successfully.
func (c *Controller) Init(ctx context.Context, filter core.Filter) (Snapshot, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.filter = filter
	c.ready = false
	c.noResults = false
	c.schemaSet = false
	c.loaded = 0
	c.total = 0
	c.pages.Purge()
	c.mu.Unlock()

	c.logger.Debug("initializing dataset", "filter", filter.String(), "generation", gen)

	page, _, err := c.fetch(ctx, gen, 1)
	if err != nil {
		if errors.Is(err, ErrStale) {
			return c.Snapshot(), ErrStale
		}
		return c.Snapshot(), fmt.Errorf("initialize %s: %w", filter, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return c.snapshotLocked(), ErrStale
	}

	c.storeLocked(page, 1, 1)
	c.loaded = len(page.Rows)
	c.total = page.TotalRowCount
	c.noResults = len(page.Rows) == 0
	c.ready = true

	return c.snapshotLocked(), nil
}

// Rows returns the rows in [start, end) together with the latest total.
// Pages already resident are served from memory; the rest are fetched in
// order through the single fetch slot. A failure leaves state untouched and
// is reported as a *RangeError.
func (c *Controller) Rows(ctx context.Context, start, end int) (RangeResult, error) {
	if start < 0 || end < start {
		return RangeResult{}, fmt.Errorf("invalid row range %d-%d", start, end)
	}

	c.mu.Lock()
	if !c.ready {
		c.mu.Unlock()
		return RangeResult{}, ErrNotReady
	}
	gen := c.generation
	c.mu.Unlock()

	if end == start {
		return RangeResult{TotalRowCount: c.Snapshot().TotalRowCount}, nil
	}

	first := c.pageOf(start)
	last := c.pageOf(end - 1)

	var rows []core.Record
	for index := first; index <= last; index++ {
		page, err := c.loadPage(ctx, gen, index, first, last)
		if err != nil {
			if errors.Is(err, ErrStale) {
				return RangeResult{}, ErrStale
			}
			return RangeResult{}, &RangeError{Start: start, End: end, Page: index, Err: err}
		}

		pageStart := (index - 1) * c.pageSize
		lo := max(start-pageStart, 0)
		hi := min(end-pageStart, len(page.Rows))
		if lo < hi {
			rows = append(rows, page.Rows[lo:hi]...)
		}
		if len(page.Rows) < c.pageSize || index*c.pageSize >= page.TotalRowCount {
			break
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return RangeResult{}, ErrStale
	}
	return RangeResult{Rows: rows, TotalRowCount: c.total}, nil
}

// loadPage returns page index from the cache or fetches and merges it.
func (c *Controller) loadPage(ctx context.Context, gen uint64, index, first, last int) (core.Page, error) {
	if page, ok, err := c.cached(gen, index); err != nil || ok {
		return page, err
	}

	page, hit, err := c.fetch(ctx, gen, index)
	if err != nil {
		return core.Page{}, err
	}
	if hit {
		return page, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("dropping stale page", "page", index, "generation", gen, "current", c.generation)
		return core.Page{}, ErrStale
	}

	c.storeLocked(page, first, last)
	c.loaded = max(c.loaded, (index-1)*c.pageSize+len(page.Rows))
	c.total = page.TotalRowCount
	return page, nil
}

func (c *Controller) cached(gen uint64, index int) (core.Page, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return core.Page{}, false, ErrStale
	}
	// Peek keeps fetch order as the eviction order.
	page, ok := c.pages.Peek(index)
	return page, ok, nil
}

// fetch performs one backend round-trip through the fetch slot. A fetch that
// was queued behind another one re-checks the cache before going out.
// hit reports that the page was found in the cache after waiting.
func (c *Controller) fetch(ctx context.Context, gen uint64, index int) (page core.Page, hit bool, err error) {
	if err := c.slot.Acquire(ctx, 1); err != nil {
		return core.Page{}, false, err
	}
	defer c.slot.Release(1)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return core.Page{}, false, ErrStale
	}
	filter := c.filter
	if cached, ok := c.pages.Peek(index); ok {
		c.mu.Unlock()
		return cached, true, nil
	}
	c.mu.Unlock()

	n := c.inFlight.Add(1)
	for {
		peak := c.maxInFlight.Load()
		if n <= peak || c.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	defer c.inFlight.Add(-1)

	c.logger.Debug("fetching page", "filter", filter.String(), "page", index, "generation", gen)

	result, err := c.client.FetchDetailPage(ctx, filter.Status, index, c.pageSize, filter.Search)
	if err != nil {
		c.logger.Debug("page fetch failed", "filter", filter.String(), "page", index, "error", err)
		return core.Page{}, false, err
	}

	return core.Page{
		Index:         index,
		Size:          c.pageSize,
		Rows:          result.Rows,
		TotalRowCount: result.TotalRowCount,
	}, false, nil
}

// storeLocked inserts page, first evicting the least recently fetched page
// outside pages [first, last] when the cache is full. c.mu must be held.
func (c *Controller) storeLocked(page core.Page, first, last int) {
	if !c.schemaSet && len(page.Rows) > 0 {
		c.columns = page.Rows[0].Keys()
		c.schemaSet = true
	}

	if !c.pages.Contains(page.Index) && c.pages.Len() >= c.capacity {
		victim, found := 0, false
		for _, key := range c.pages.Keys() {
			if key < first || key > last {
				victim, found = key, true
				break
			}
		}
		if found {
			c.pages.Remove(victim)
		} else {
			c.pages.RemoveOldest()
		}
	}
	c.pages.Add(page.Index, page)
}

func (c *Controller) pageOf(row int) int {
	return row/c.pageSize + 1
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Filter:         c.filter,
		Columns:        slices.Clone(c.columns),
		LoadedRowCount: c.loaded,
		TotalRowCount:  c.total,
		ResidentPages:  c.pages.Len(),
		Ready:          c.ready,
		NoResults:      c.noResults,
	}
}

// ResidentPages returns the cached page indexes in ascending order.
func (c *Controller) ResidentPages() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := c.pages.Keys()
	slices.Sort(keys)
	return keys
}

// LoadedRows returns the resident rows in row order. Pages evicted from the
// cache are not included.
func (c *Controller) LoadedRows() []core.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.pages.Keys()
	slices.Sort(keys)

	var rows []core.Record
	for _, key := range keys {
		if page, ok := c.pages.Peek(key); ok {
			rows = append(rows, page.Rows...)
		}
	}
	return rows
}

// InFlight returns the number of page fetches currently outstanding.
func (c *Controller) InFlight() int { return int(c.inFlight.Load()) }

// MaxInFlight returns the highest number of concurrent fetches observed.
func (c *Controller) MaxInFlight() int { return int(c.maxInFlight.Load()) }
