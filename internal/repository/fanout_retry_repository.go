package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-twitter/internal/model"
)

type FanoutRetryRepository interface {
	// Enqueue 同一条 tweet 只保留一条待补偿记录
	Enqueue(ctx context.Context, tweetID, authorID string, fanoutAt time.Time, cause string) error
	// Claim 认领一批 pending 记录，以及认领时间早于 now-lease 的 processing 记录
	Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*model.FanoutRetry, error)
	MarkDone(ctx context.Context, id string, fanoutCount int64, at time.Time) error
	// MarkRetry 失败次数达到 maxAttempts 后置为 failed，否则放回 pending
	MarkRetry(ctx context.Context, id string, cause string, maxAttempts int) error
	// CancelByTweet 把该 tweet 未完成的补偿记录置为 cancelled，返回影响行数
	CancelByTweet(ctx context.Context, tweetID string, at time.Time) (int64, error)
	GetByTweet(ctx context.Context, tweetID string) (*model.FanoutRetry, error)
}

type fanoutRetryRepository struct{ db *gorm.DB }

func NewFanoutRetryRepository(db *gorm.DB) FanoutRetryRepository {
	return &fanoutRetryRepository{db: db}
}

func (r *fanoutRetryRepository) Enqueue(ctx context.Context, tweetID, authorID string, fanoutAt time.Time, cause string) error {
	rec := &model.FanoutRetry{
		ID:        uuid.New().String(),
		TweetID:   tweetID,
		AuthorID:  authorID,
		FanoutAt:  fanoutAt,
		Status:    model.FanoutRetryPending,
		LastError: cause,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rec).Error
}

func (r *fanoutRetryRepository) Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*model.FanoutRetry, error) {
	expired := now.Add(-lease)
	claimable := "(status = ? OR (status = ? AND claimed_at < ?))"
	args := []any{model.FanoutRetryPending, model.FanoutRetryProcessing, expired}

	var batch []*model.FanoutRetry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// postgres 下 SKIP LOCKED 让多实例各取各的；sqlite 会忽略锁子句
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(claimable, args...).
			Order("created_at").
			Limit(limit).
			Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.FanoutRetry{}).
			Where("id IN ?", ids).
			Where(claimable, args...).
			Updates(map[string]any{
				"status":     model.FanoutRetryProcessing,
				"claimed_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	for _, b := range batch {
		b.Status = model.FanoutRetryProcessing
		claimedAt := now
		b.ClaimedAt = &claimedAt
	}
	return batch, nil
}

// MarkDone / MarkRetry 只改 processing 记录，已取消的保持 cancelled
func (r *fanoutRetryRepository) MarkDone(ctx context.Context, id string, fanoutCount int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.FanoutRetry{}).
		Where("id = ? AND status = ?", id, model.FanoutRetryProcessing).
		Updates(map[string]any{
			"status":       model.FanoutRetryDone,
			"processed_at": at,
			"fanout_count": fanoutCount,
			"attempts":     gorm.Expr("attempts + 1"),
		}).Error
}

func (r *fanoutRetryRepository) MarkRetry(ctx context.Context, id string, cause string, maxAttempts int) error {
	return r.db.WithContext(ctx).Model(&model.FanoutRetry{}).
		Where("id = ? AND status = ?", id, model.FanoutRetryProcessing).
		Updates(map[string]any{
			"status": gorm.Expr("CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END",
				maxAttempts, model.FanoutRetryFailed, model.FanoutRetryPending),
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": cause,
		}).Error
}

func (r *fanoutRetryRepository) CancelByTweet(ctx context.Context, tweetID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.FanoutRetry{}).
		Where("tweet_id = ? AND status IN ?", tweetID, []string{model.FanoutRetryPending, model.FanoutRetryProcessing}).
		Updates(map[string]any{
			"status":       model.FanoutRetryCancelled,
			"processed_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *fanoutRetryRepository) GetByTweet(ctx context.Context, tweetID string) (*model.FanoutRetry, error) {
	var rec model.FanoutRetry
	err := r.db.WithContext(ctx).Where("tweet_id = ?", tweetID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
