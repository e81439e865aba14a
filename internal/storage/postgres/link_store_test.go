package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

func TestLinkStore_InsertBulkAndGetByKind(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLinkStore(pool)

	records := []domain.LinkRecord{
		{InternalID: 10001, ExternalID: "ACME", ValidFrom: domain.Day(2000, 1, 1), ValidTo: domain.Day(2004, 5, 31), Score: 1},
		{InternalID: 10001, ExternalID: "ACMN", ValidFrom: domain.Day(2004, 6, 1), Score: 1},
		{InternalID: 20002, ExternalID: "BOLT", ValidFrom: domain.Day(2002, 3, 1), Score: 2},
	}
	require.NoError(t, store.InsertBulk(ctx, storage.LinkKindTicker, records))

	// A second kind keeps its own keyspace.
	require.NoError(t, store.InsertBulk(ctx, storage.LinkKindGVKey, []domain.LinkRecord{
		{InternalID: 10001, ExternalID: "001690", ValidFrom: domain.Day(2000, 1, 1)},
	}))

	got, err := store.GetByKind(ctx, storage.LinkKindTicker)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "ACME", got[0].ExternalID)
	assert.Equal(t, "ACMN", got[1].ExternalID)
	assert.Equal(t, int64(20002), got[2].InternalID)

	// Open-ended interval round-trips as zero time.
	assert.True(t, got[1].ValidTo.IsZero())
	assert.Equal(t, domain.Day(2004, 5, 31), domain.DateOf(got[0].ValidTo))
}

func TestLinkStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewLinkStore(pool)

	rec := []domain.LinkRecord{
		{InternalID: 10001, ExternalID: "ACME", ValidFrom: domain.Day(2000, 1, 1), Score: 1},
	}
	require.NoError(t, store.InsertBulk(ctx, storage.LinkKindTicker, rec))

	err := store.InsertBulk(ctx, storage.LinkKindTicker, rec)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The same record under another kind is not a duplicate.
	assert.NoError(t, store.InsertBulk(ctx, storage.LinkKindAnalytics, rec))
}
