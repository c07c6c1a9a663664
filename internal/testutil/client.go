package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/leapstack-labs/ageview/pkg/core"
)

// DetailCall records one FetchDetailPage invocation.
type DetailCall struct {
	Filter   core.Filter
	Page     int
	PageSize int
}

// ChatCall records one SendChatTurn invocation.
type ChatCall struct {
	Query   string
	History core.Conversation
}

// FakeClient is an in-memory core.QueryClient. Unset hooks fall back to
// canned data: Summary for the summary endpoint, an empty page for details
// and an echo reply for chat.
type FakeClient struct {
	Summary    []core.SummaryRow
	SummaryErr error

	// DetailFunc serves detail pages. It may block to simulate a slow backend.
	DetailFunc func(ctx context.Context, filter core.Filter, page, pageSize int) (core.DetailPage, error)

	// ChatFunc serves chat turns.
	ChatFunc func(ctx context.Context, query string, history core.Conversation) (string, error)

	mu          sync.Mutex
	detailCalls []DetailCall
	chatCalls   []ChatCall
}

var _ core.QueryClient = (*FakeClient)(nil)

func (f *FakeClient) FetchSummary(_ context.Context) ([]core.SummaryRow, error) {
	if f.SummaryErr != nil {
		return nil, f.SummaryErr
	}
	out := make([]core.SummaryRow, len(f.Summary))
	copy(out, f.Summary)
	return out, nil
}

func (f *FakeClient) FetchDetailPage(ctx context.Context, status string, page, pageSize int, search string) (core.DetailPage, error) {
	filter := core.Filter{Status: status, Search: search}
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, DetailCall{Filter: filter, Page: page, PageSize: pageSize})
	f.mu.Unlock()

	if f.DetailFunc == nil {
		return core.DetailPage{Page: page, PageSize: pageSize, Status: status}, nil
	}
	return f.DetailFunc(ctx, filter, page, pageSize)
}

func (f *FakeClient) SendChatTurn(ctx context.Context, query string, history core.Conversation) (string, error) {
	f.mu.Lock()
	f.chatCalls = append(f.chatCalls, ChatCall{Query: query, History: history.Clone()})
	f.mu.Unlock()

	if f.ChatFunc == nil {
		return "echo: " + query, nil
	}
	return f.ChatFunc(ctx, query, history)
}

// DetailCalls returns a copy of the recorded detail requests.
func (f *FakeClient) DetailCalls() []DetailCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]DetailCall, len(f.detailCalls))
	copy(out, f.detailCalls)
	return out
}

// ChatCalls returns a copy of the recorded chat requests.
func (f *FakeClient) ChatCalls() []ChatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ChatCall, len(f.chatCalls))
	copy(out, f.chatCalls)
	return out
}

// SyntheticPage builds page of a dataset holding total rows. Each row has
// the columns "id", "SO Number", "Store" and "Qty"; "SO Number" encodes the
// 0-based row index so tests can check which rows came back.
func SyntheticPage(filter core.Filter, total, page, pageSize int) core.DetailPage {
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	var rows []core.Record
	for i := start; i < end; i++ {
		rows = append(rows, core.NewRecord(
			"id", float64(i+1),
			"SO Number", fmt.Sprintf("SO-%05d", i),
			"Store", filter.Status,
			"Qty", float64(i%120),
		))
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return core.DetailPage{
		Rows:          rows,
		TotalRowCount: total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
		ReturnedRows:  len(rows),
		Status:        filter.Status,
	}
}
