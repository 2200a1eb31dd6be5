package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/testutil"
)

func TestFanoutRetryRepository_Lifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFanoutRetryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, "t1", "a", base, "boom"))
	// 同一 tweet 重复入队被忽略
	require.NoError(t, repo.Enqueue(ctx, "t1", "a", base, "boom again"))

	batch, err := repo.Claim(ctx, base, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, model.FanoutRetryProcessing, batch[0].Status)
	assert.True(t, batch[0].FanoutAt.Equal(base))

	// 已认领的不会被再次认领
	again, err := repo.Claim(ctx, base, time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, repo.MarkRetry(ctx, batch[0].ID, "still down", 2))
	rec, err := repo.GetByTweet(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.FanoutRetryPending, rec.Status)
	assert.Equal(t, 1, rec.Attempts)
	assert.Equal(t, "still down", rec.LastError)

	batch, err = repo.Claim(ctx, base, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.NoError(t, repo.MarkRetry(ctx, batch[0].ID, "down", 2))

	rec, err = repo.GetByTweet(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.FanoutRetryFailed, rec.Status)
	assert.Equal(t, 2, rec.Attempts)
}

func TestFanoutRetryRepository_MarkDone(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFanoutRetryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, "t1", "a", base, "boom"))
	batch, err := repo.Claim(ctx, base, time.Minute, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	require.NoError(t, repo.MarkDone(ctx, batch[0].ID, 42, base))
	rec, err := repo.GetByTweet(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.FanoutRetryDone, rec.Status)
	assert.EqualValues(t, 42, rec.FanoutCount)
	require.NotNil(t, rec.ProcessedAt)

	_, err = repo.GetByTweet(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFanoutRetryRepository_ReclaimsExpiredLease(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFanoutRetryRepository(db)
	ctx := context.Background()
	lease := time.Minute

	require.NoError(t, repo.Enqueue(ctx, "t1", "a", base, "boom"))
	first, err := repo.Claim(ctx, base, lease, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.NotNil(t, first[0].ClaimedAt)

	// 认领方没有回写结果；租期内不可再认领
	none, err := repo.Claim(ctx, base.Add(30*time.Second), lease, 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	again, err := repo.Claim(ctx, base.Add(2*time.Minute), lease, 10)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, first[0].ID, again[0].ID)

	rec, err := repo.GetByTweet(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, rec.ClaimedAt)
	assert.True(t, rec.ClaimedAt.Equal(base.Add(2*time.Minute)))
}

func TestFanoutRetryRepository_CancelByTweet(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFanoutRetryRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Enqueue(ctx, "t1", "a", base, "boom"))
	batch, err := repo.Claim(ctx, base, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	n, err := repo.CancelByTweet(ctx, "t1", base)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// 已取消的记录不会被 MarkDone 改回 done
	require.NoError(t, repo.MarkDone(ctx, batch[0].ID, 3, base))
	rec, err := repo.GetByTweet(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.FanoutRetryCancelled, rec.Status)

	n, err = repo.CancelByTweet(ctx, "t1", base)
	require.NoError(t, err)
	assert.Zero(t, n)

	later, err := repo.Claim(ctx, base.Add(time.Hour), time.Minute, 10)
	require.NoError(t, err)
	assert.Empty(t, later)
}
