package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/chatledger/internal/database"
	"github.com/MrJamesThe3rd/chatledger/internal/table"
	"github.com/MrJamesThe3rd/chatledger/internal/table/postgres"
)

// newStore connects to CHATLEDGER_TEST_DATABASE_URL and skips without it.
func newStore(t *testing.T) *postgres.Store {
	t.Helper()

	url := os.Getenv("CHATLEDGER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CHATLEDGER_TEST_DATABASE_URL not set")
	}

	db, err := database.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := postgres.New(db)
	require.NoError(t, store.Migrate(context.Background()))

	return store
}

func TestStore_AppendAndRead(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	tableID := uuid.NewString()

	require.NoError(t, store.EnsureHeader(ctx, tableID, "Telegram", []string{"MsgId", "Status"}))
	require.NoError(t, store.EnsureHeader(ctx, tableID, "Telegram", []string{"ignored"}))

	require.NoError(t, store.AppendRows(ctx, tableID, "Telegram", "A:B", [][]string{{"1", "SUCCESS"}}))
	require.NoError(t, store.AppendRows(ctx, tableID, "Telegram", "A:B", [][]string{{"2", "FAILURE"}, {"3", "ASKED_FOR_HELP"}}))

	rows, err := store.ReadRows(ctx, tableID, "Telegram", "A:B")
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].Get("MsgId"))
	assert.Equal(t, "ASKED_FOR_HELP", rows[2].Get("Status"))
}

func TestStore_MissingRegion(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	tableID := uuid.NewString()

	_, err := store.ReadRows(ctx, tableID, "Nope", "A:B")
	assert.ErrorIs(t, err, table.ErrRegionNotFound)

	err = store.AppendRows(ctx, tableID, "Nope", "A:B", [][]string{{"x"}})
	assert.ErrorIs(t, err, table.ErrRegionNotFound)
}
