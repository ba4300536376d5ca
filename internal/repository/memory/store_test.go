package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwise1/upzunction/internal/model"
)

func TestRollbackRestoresTransactionWrites(t *testing.T) {
	ctx := context.Background()
	store := New()
	listing := &model.Listing{ID: uuid.New(), Title: "Bicycle", IsActive: true}
	require.NoError(t, store.CreateListing(ctx, listing))

	err := store.RunInTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.DeactivateListing(ctx, listing.ID))
		return errors.New("abort")
	})
	require.Error(t, err)

	got, err := store.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestRollbackKeepsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := New()
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	err := store.RunInTx(ctx, func(txCtx context.Context) error {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.IncrementVisit(ctx, day))
		}()
		time.Sleep(50 * time.Millisecond)
		return errors.New("abort")
	})
	require.Error(t, err)
	wg.Wait()

	n, err := store.GetVisitCount(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
