package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/testutil"
	"github.com/leapstack-labs/ageview/pkg/core"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenAndMigrate(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Close())
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Migrating twice is a no-op.
	require.NoError(t, store.Migrate())
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()
	assert.Error(t, store.Migrate())

	conv := store.Conversation("k")
	_, err := conv.Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, conv.Append(context.Background(), core.Turn{Role: core.RoleUser, Content: "x"}))
	assert.Error(t, conv.Replace(context.Background(), nil))
}

func TestConversationStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	conv := store.Conversation("ai_chat_history")

	got, err := conv.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	turns := core.Conversation{
		{Role: core.RoleAssistant, Content: chat.Greeting},
		{Role: core.RoleUser, Content: "how many pending?"},
		{Role: core.RoleAssistant, Content: "There are **42**."},
	}
	for _, turn := range turns {
		require.NoError(t, conv.Append(ctx, turn))
	}

	got, err = conv.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, turns, got)

	replacement := core.Conversation{{Role: core.RoleAssistant, Content: chat.ClearedGreeting}}
	require.NoError(t, conv.Replace(ctx, replacement))
	got, err = conv.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)

	// Appending after a replace continues the sequence.
	require.NoError(t, conv.Append(ctx, core.Turn{Role: core.RoleUser, Content: "again"}))
	got, err = conv.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "again", got[1].Content)

	require.NoError(t, conv.Replace(ctx, nil))
	got, err = conv.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConversationStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	a := store.Conversation("ai_chat_history:a")
	b := store.Conversation("ai_chat_history:b")
	require.NoError(t, a.Append(ctx, core.Turn{Role: core.RoleUser, Content: "from a"}))
	require.NoError(t, b.Append(ctx, core.Turn{Role: core.RoleUser, Content: "from b"}))
	require.NoError(t, a.Replace(ctx, nil))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Conversation{{Role: core.RoleUser, Content: "from b"}}, got)

	keys, err := store.SessionKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ai_chat_history:b"}, keys)
}

func TestConversationStore_RejectsUnknownRole(t *testing.T) {
	store := setupTestStore(t)
	conv := store.Conversation("k")

	err := conv.Append(context.Background(), core.Turn{Role: "system", Content: "x"})
	assert.Error(t, err)

	err = conv.Replace(context.Background(), core.Conversation{
		{Role: core.RoleUser, Content: "ok"},
		{Role: "bogus", Content: "bad"},
	})
	require.Error(t, err)

	got, err := conv.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got, "failed replace is rolled back")
}

func TestConversationStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	store, err := OpenAndMigrate(path)
	require.NoError(t, err)
	require.NoError(t, store.Conversation("k").Append(ctx, core.Turn{Role: core.RoleUser, Content: "hi"}))
	require.NoError(t, store.Close())

	store, err = OpenAndMigrate(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	got, err := store.Conversation("k").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Conversation{{Role: core.RoleUser, Content: "hi"}}, got)
}

func TestConversationStore_BacksChatPanel(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	conv := store.Conversation("ai_chat_history")

	panel := chat.NewPanel(&testutil.FakeClient{}, conv, chat.Options{Logger: testutil.NewTestLogger(t)})
	panel.Open(ctx)
	_, err := panel.Submit(ctx, "hello")
	require.NoError(t, err)

	got, err := conv.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, panel.Transcript(), got)

	panel.Clear(ctx)
	got, err = conv.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Conversation{{Role: core.RoleAssistant, Content: chat.ClearedGreeting}}, got)
}
