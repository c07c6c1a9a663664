// Package chat keeps the assistant conversation: a durable transcript and a
// single-flight panel that turns user questions into backend chat calls.
package chat

import (
	"context"
	"sync"

	"github.com/leapstack-labs/ageview/pkg/core"
)

// Store persists one conversation transcript.
type Store interface {
	// Load returns the persisted transcript, or an empty one.
	Load(ctx context.Context) (core.Conversation, error)
	// Append adds one turn at the end.
	Append(ctx context.Context, turn core.Turn) error
	// Replace overwrites the whole transcript. A nil conv empties it.
	Replace(ctx context.Context, conv core.Conversation) error
}

// MemoryStore is a Store that lives in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	conv core.Conversation
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store seeded with conv.
func NewMemoryStore(conv core.Conversation) *MemoryStore {
	return &MemoryStore{conv: conv.Clone()}
}

func (m *MemoryStore) Load(_ context.Context) (core.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.Clone(), nil
}

func (m *MemoryStore) Append(_ context.Context, turn core.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conv = append(m.conv, turn)
	return nil
}

func (m *MemoryStore) Replace(_ context.Context, conv core.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conv = conv.Clone()
	return nil
}
