package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistemolab/epistemo/revision"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "agents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testAgent(t *testing.T, name string) *revision.Agent {
	t.Helper()
	a, err := revision.NewWithState(name,
		[]string{"it rains", "the street is wet"},
		[]string{"it rains"},
		[]string{"it rains"},
		map[string]int{"it rains": 2},
	)
	require.NoError(t, err)
	return a
}

func TestSaveAndLoadAgent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testAgent(t, "alice")
	require.NoError(t, store.SaveAgent(ctx, a))

	loaded, err := store.LoadAgent(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Name())
	assert.Equal(t, a.Propositions(), loaded.Propositions())
	assert.Equal(t, a.Beliefs(), loaded.Beliefs())
	assert.Equal(t, a.Core(), loaded.Core())
	assert.Equal(t, 2, loaded.Rank("it rains"))
}

func TestSaveAgentUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testAgent(t, "alice")
	require.NoError(t, store.SaveAgent(ctx, a))

	require.NoError(t, a.Expand("the street is wet"))
	require.NoError(t, store.SaveAgent(ctx, a))

	loaded, err := store.LoadAgent(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"it rains", "the street is wet"}, loaded.Beliefs())
}

func TestLoadAgentNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LoadAgent(context.Background(), "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLoadAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAgent(ctx, testAgent(t, "bob")))
	require.NoError(t, store.SaveAgent(ctx, testAgent(t, "alice")))

	agents, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "alice", agents[0].Name())
	assert.Equal(t, "bob", agents[1].Name())
}

func TestDeleteAgent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAgent(ctx, testAgent(t, "alice")))
	require.NoError(t, store.DeleteAgent(ctx, "alice"))

	_, err := store.LoadAgent(ctx, "alice")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAuditLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertAuditLog(ctx, "alice", "expand", "it rains", "success", ""))
	require.NoError(t, store.InsertAuditLog(ctx, "alice", "contract", "it rains", "success", ""))
	require.NoError(t, store.InsertAuditLog(ctx, "bob", "create", "", "success", ""))

	entries, err := store.GetAuditLogByAgent(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "alice", e.AgentName)
		assert.Equal(t, "success", e.Result)
		assert.NotEmpty(t, e.ID)
	}
}
