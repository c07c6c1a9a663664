package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/leapstack-labs/ageview/pkg/core"
)

// Fixed assistant texts.
const (
	Greeting        = "Hello! I'm your AI Data Assistant. I can analyze 340k+ records and create beautiful visualizations with full data details. Try one of the quick prompts below!"
	ClearedGreeting = "History cleared. How can I help you today?"
	FallbackMessage = "⚠️ I couldn't reach the AI backend. Please ensure the server is active on Port 8008."
)

var (
	// ErrBusy is returned by Submit while another turn is outstanding.
	ErrBusy = errors.New("a chat turn is already in progress")

	// ErrEmptyQuery is returned by Submit for blank input.
	ErrEmptyQuery = errors.New("query is empty")
)

// Sender sends one chat turn to the backend.
type Sender interface {
	SendChatTurn(ctx context.Context, query string, history core.Conversation) (string, error)
}

// Options configures a Panel.
type Options struct {
	Logger *slog.Logger
	// OnChange is called with a copy of the transcript after every change.
	OnChange func(core.Conversation)
}

// Panel is a linear request/response conversation. It is safe for
// concurrent use; only one turn may be outstanding at a time.
type Panel struct {
	sender   Sender
	store    Store
	logger   *slog.Logger
	onChange func(core.Conversation)

	mu         sync.Mutex
	transcript core.Conversation
	opened     bool
	busy       bool
}

// NewPanel creates a panel that sends turns through sender and persists the
// transcript to store.
func NewPanel(sender Sender, store Store, opts Options) *Panel {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Panel{
		sender:   sender,
		store:    store,
		logger:   opts.Logger,
		onChange: opts.OnChange,
	}
}

// Open loads the persisted transcript. An empty or unreadable transcript is
// replaced by the greeting. Calling Open again reloads from the store.
func (p *Panel) Open(ctx context.Context) core.Conversation {
	p.mu.Lock()
	conv := p.openLocked(ctx)
	p.mu.Unlock()

	p.notify(conv)
	return conv
}

func (p *Panel) openLocked(ctx context.Context) core.Conversation {
	conv, err := p.store.Load(ctx)
	if err != nil {
		p.logger.Warn("failed to load chat transcript", "error", err)
		conv = nil
	}
	if len(conv) == 0 {
		conv = core.Conversation{{Role: core.RoleAssistant, Content: Greeting}}
		p.persist(func() error { return p.store.Replace(ctx, conv) })
	}
	p.transcript = conv.Clone()
	p.opened = true
	return p.transcript.Clone()
}

// Submit appends query as a user turn, asks the backend, and appends the
// reply. A failed backend call appends FallbackMessage instead, so the
// transcript always grows by two. The returned turn is the one appended for
// the assistant; the error reports the backend failure, if any.
func (p *Panel) Submit(ctx context.Context, query string) (core.Turn, error) {
	if strings.TrimSpace(query) == "" {
		return core.Turn{}, ErrEmptyQuery
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return core.Turn{}, ErrBusy
	}
	if !p.opened {
		p.openLocked(ctx)
	}
	history := p.transcript.Clone()
	userTurn := core.Turn{Role: core.RoleUser, Content: query}
	p.transcript = append(p.transcript, userTurn)
	p.busy = true
	snapshot := p.transcript.Clone()
	p.mu.Unlock()

	p.persist(func() error { return p.store.Append(ctx, userTurn) })
	p.notify(snapshot)

	reply, sendErr := p.sender.SendChatTurn(ctx, query, history)
	turn := core.Turn{Role: core.RoleAssistant, Content: reply}
	if sendErr != nil {
		p.logger.Warn("chat turn failed", "error", sendErr)
		turn.Content = FallbackMessage
	}

	p.mu.Lock()
	p.transcript = append(p.transcript, turn)
	p.busy = false
	snapshot = p.transcript.Clone()
	p.mu.Unlock()

	// The caller's context may already be done; the reply is still saved.
	p.persist(func() error { return p.store.Append(context.WithoutCancel(ctx), turn) })
	p.notify(snapshot)

	return turn, sendErr
}

// Clear replaces the persisted transcript with ClearedGreeting in one write.
func (p *Panel) Clear(ctx context.Context) core.Conversation {
	conv := core.Conversation{{Role: core.RoleAssistant, Content: ClearedGreeting}}

	p.mu.Lock()
	p.persist(func() error { return p.store.Replace(ctx, conv) })
	p.transcript = conv.Clone()
	p.opened = true
	p.mu.Unlock()

	p.notify(conv.Clone())
	return conv.Clone()
}

// Busy reports whether a turn is outstanding.
func (p *Panel) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Transcript returns a copy of the current transcript.
func (p *Panel) Transcript() core.Conversation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transcript.Clone()
}

// persist runs a store write. Storage failures are logged and never reach
// the transcript.
func (p *Panel) persist(write func() error) {
	if err := write(); err != nil {
		p.logger.Warn("failed to persist chat transcript", "error", err)
	}
}

func (p *Panel) notify(conv core.Conversation) {
	if p.onChange != nil {
		p.onChange(conv)
	}
}
