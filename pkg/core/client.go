package core

import "context"

// QueryClient is the remote query API the dashboard consumes.
// Implementations own transport concerns such as timeouts.
type QueryClient interface {
	// FetchSummary returns the per-status aggregate rows in backend order.
	FetchSummary(ctx context.Context) ([]SummaryRow, error)

	// FetchDetailPage returns one page of detail rows. An empty search means unfiltered.
	FetchDetailPage(ctx context.Context, status string, page, pageSize int, search string) (DetailPage, error)

	// SendChatTurn sends query with the history that precedes it and returns the reply text.
	SendChatTurn(ctx context.Context, query string, history Conversation) (string, error)
}
