package sqlstore_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vocab-drill/internal/store"
	"github.com/phrazzld/vocab-drill/internal/testutils"
)

func TestSessionFieldStore(t *testing.T) {
	ctx := context.Background()
	fields := testutils.NewSQLiteStores(t).Fields

	_, ok, err := fields.Get(ctx, "completedCount_A1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fields.Set(ctx, "completedCount_A1", "1"))
	require.NoError(t, fields.Set(ctx, "completedCount_A1", "2"))

	value, ok, err := fields.Get(ctx, "completedCount_A1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", value)

	require.NoError(t, fields.Delete(ctx, "completedCount_A1"))
	require.NoError(t, fields.Delete(ctx, "completedCount_A1"))

	_, ok, err = fields.Get(ctx, "completedCount_A1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionFieldStore_WithTxCommitsTogether(t *testing.T) {
	ctx := context.Background()
	stores := testutils.NewSQLiteStores(t)
	testutils.MustInsertWords(t, stores.Words, testutils.Word(t, "der", "Hund", "dog", "A1"))

	err := store.RunInTransaction(ctx, stores.DB, func(ctx context.Context, tx *sql.Tx) error {
		if err := stores.Words.WithTx(tx).SetError(ctx, "Hund", true); err != nil {
			return err
		}
		return stores.Fields.WithTx(tx).Set(ctx, "completedCount_A1", "5")
	})
	require.NoError(t, err)

	value, ok, err := stores.Fields.Get(ctx, "completedCount_A1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "5", value)

	hund, err := stores.Words.GetByText(ctx, "Hund")
	require.NoError(t, err)
	assert.True(t, hund.HasError)
}
