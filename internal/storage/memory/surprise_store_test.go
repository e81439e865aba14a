package memory

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
		Basis:            domain.BasisDiluted,
	}
}

func TestSurpriseStore_InsertAndGetByInternalID(t *testing.T) {
	store := NewSurpriseStore()
	ctx := context.Background()

	q1 := time.Date(2011, 3, 31, 0, 0, 0, 0, time.UTC)
	q2 := time.Date(2011, 6, 30, 0, 0, 0, 0, time.UTC)
	annQ1 := time.Date(2011, 4, 18, 0, 0, 0, 0, time.UTC)
	annQ2 := time.Date(2011, 7, 19, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, surpriseFixture(10001, q2, annQ2)))
	require.NoError(t, store.Insert(ctx, surpriseFixture(10001, q1, annQ1)))
	require.NoError(t, store.Insert(ctx, surpriseFixture(20002, q1, annQ1)))

	got, err := store.GetByInternalID(ctx, 10001)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by announcement date.
	assert.Equal(t, annQ1, got[0].AnnouncementDate)
	assert.Equal(t, annQ2, got[1].AnnouncementDate)
}

func TestSurpriseStore_DuplicatePeriodRejected(t *testing.T) {
	store := NewSurpriseStore()
	ctx := context.Background()

	fpe := time.Date(2011, 3, 31, 0, 0, 0, 0, time.UTC)
	ann := time.Date(2011, 4, 18, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, surpriseFixture(10001, fpe, ann)))

	// Same (internal_id, period) with a different announcement date is
	// still the same key.
	err := store.Insert(ctx, surpriseFixture(10001, fpe, ann.AddDate(0, 0, 1)))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	err = store.InsertBulk(ctx, []domain.SurpriseRecord{
		surpriseFixture(10001, fpe.AddDate(0, 3, 0), ann),
		surpriseFixture(10001, fpe, ann),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Failed batch inserted nothing.
	got, err := store.GetByInternalID(ctx, 10001)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSurpriseStore_GetByDateRange(t *testing.T) {
	store := NewSurpriseStore()
	ctx := context.Background()

	fpe := time.Date(2011, 3, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertBulk(ctx, []domain.SurpriseRecord{
		surpriseFixture(10001, fpe, time.Date(2011, 4, 18, 0, 0, 0, 0, time.UTC)),
		surpriseFixture(20002, fpe, time.Date(2011, 4, 21, 0, 0, 0, 0, time.UTC)),
		surpriseFixture(30003, fpe, time.Date(2011, 5, 2, 0, 0, 0, 0, time.UTC)),
	}))

	got, err := store.GetByDateRange(ctx,
		time.Date(2011, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2011, 4, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(10001), got[0].InternalID)
	assert.Equal(t, int64(20002), got[1].InternalID)
}
