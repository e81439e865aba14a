package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-panel-lab/internal/domain"
	"equity-panel-lab/internal/storage"
)

func surpriseFixture(internalID int64, fpe, ann time.Time) domain.SurpriseRecord {
	return domain.SurpriseRecord{
		InternalID:       internalID,
		Ticker:           "ACME",
		FiscalPeriodEnd:  fpe,
		ReportDate:       ann,
		AnnouncementDate: ann,
		Actual:           1.30,
		Consensus:        1.10,
		Surprise:         0.01,
		NumEstimates:     3,
		DispersionStd:    0.04,
		DispersionRange:  0.35,
		Basis:            domain.BasisDiluted,
	}
}

func TestSurpriseStore_InsertAndGetByInternalID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSurpriseStore(pool)

	q1 := surpriseFixture(10001, domain.Day(2011, 3, 31), domain.Day(2011, 4, 20))
	q2 := surpriseFixture(10001, domain.Day(2011, 6, 30), domain.Day(2011, 7, 21))
	other := surpriseFixture(20002, domain.Day(2011, 3, 31), domain.Day(2011, 4, 25))

	require.NoError(t, store.InsertBulk(ctx, []domain.SurpriseRecord{q2, q1, other}))

	got, err := store.GetByInternalID(ctx, 10001)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by announcement date.
	assert.Equal(t, domain.Day(2011, 4, 20), domain.DateOf(got[0].AnnouncementDate))
	assert.Equal(t, domain.Day(2011, 7, 21), domain.DateOf(got[1].AnnouncementDate))
	assert.InDelta(t, 0.01, got[0].Surprise, 1e-12)
	assert.Equal(t, 3, got[0].NumEstimates)
	assert.Equal(t, domain.BasisDiluted, got[0].Basis)
}

func TestSurpriseStore_DuplicatePeriodRejected(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSurpriseStore(pool)

	rec := surpriseFixture(10001, domain.Day(2011, 3, 31), domain.Day(2011, 4, 20))
	require.NoError(t, store.Insert(ctx, rec))

	// Same (internal_id, fiscal period) with a different announcement date.
	dup := rec
	dup.AnnouncementDate = domain.Day(2011, 4, 21)
	assert.ErrorIs(t, store.Insert(ctx, dup), storage.ErrDuplicateKey)
}

func TestSurpriseStore_GetByDateRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSurpriseStore(pool)

	require.NoError(t, store.InsertBulk(ctx, []domain.SurpriseRecord{
		surpriseFixture(10001, domain.Day(2011, 3, 31), domain.Day(2011, 4, 20)),
		surpriseFixture(10001, domain.Day(2011, 6, 30), domain.Day(2011, 7, 21)),
		surpriseFixture(20002, domain.Day(2011, 3, 31), domain.Day(2011, 4, 25)),
	}))

	got, err := store.GetByDateRange(ctx, domain.Day(2011, 4, 1), domain.Day(2011, 4, 30))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(10001), got[0].InternalID)
	assert.Equal(t, int64(20002), got[1].InternalID)
}
