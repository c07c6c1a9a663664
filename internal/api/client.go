// Package api implements the remote query client for the ageing backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/ageview/pkg/core"
)

// DefaultTimeout bounds a single backend round-trip. Chat turns can take a while
// because the backend runs a language model.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of a failed response is read for the error detail.
const maxErrorBody = 64 * 1024

// Config holds configuration for the client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the summary, details and chat endpoints.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

var _ core.QueryClient = (*Client)(nil)

// New creates a client for the backend at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "ageview"
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

// FetchSummary returns the per-status aggregate rows.
func (c *Client) FetchSummary(ctx context.Context) ([]core.SummaryRow, error) {
	var rows []core.SummaryRow
	if err := c.do(ctx, "fetch summary", http.MethodGet, c.endpoint(nil, "summary"), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// FetchDetailPage returns one page of detail rows for status.
func (c *Client) FetchDetailPage(ctx context.Context, status string, page, pageSize int, search string) (core.DetailPage, error) {
	if status == "" {
		return core.DetailPage{}, fmt.Errorf("status is required")
	}
	if page < 1 {
		return core.DetailPage{}, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if pageSize < 1 {
		return core.DetailPage{}, fmt.Errorf("page size must be >= 1, got %d", pageSize)
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	query.Set("search", search)

	var result core.DetailPage
	op := fmt.Sprintf("fetch details %q page %d", status, page)
	if err := c.do(ctx, op, http.MethodGet, c.endpoint(query, "details", status), nil, &result); err != nil {
		return core.DetailPage{}, err
	}
	return result, nil
}

// Health is the body of the backend root endpoint.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health calls the backend root endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	target := *c.baseURL
	if target.Path == "" {
		target.Path = "/"
	}
	if err := c.do(ctx, "health check", http.MethodGet, target.String(), nil, &h); err != nil {
		return Health{}, err
	}
	return h, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL.String() }

type chatRequest struct {
	Query   string            `json:"query"`
	History core.Conversation `json:"history"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// SendChatTurn posts one chat turn and returns the assistant's reply.
func (c *Client) SendChatTurn(ctx context.Context, query string, history core.Conversation) (string, error) {
	if history == nil {
		history = core.Conversation{}
	}
	body, err := json.Marshal(chatRequest{Query: query, History: history})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	var result chatResponse
	if err := c.do(ctx, "send chat turn", http.MethodPost, c.endpoint(nil, "chat"), body, &result); err != nil {
		return "", err
	}
	return result.Response, nil
}

// endpoint joins path segments onto the base URL, escaping each segment.
func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := *c.baseURL
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.Join(segments, "/")
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, target string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed", "op", op, "url", target, "error", err)
		return &core.NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("backend request",
		"op", op,
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &core.ServerError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     readErrorDetail(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &core.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// readErrorDetail extracts a FastAPI-style {"detail": ...} message, falling back
// to the raw body text.
func readErrorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(raw, &payload) == nil && len(payload.Detail) > 0 {
		var text string
		if json.Unmarshal(payload.Detail, &text) == nil {
			return text
		}
		return string(payload.Detail)
	}
	return strings.TrimSpace(string(raw))
}
