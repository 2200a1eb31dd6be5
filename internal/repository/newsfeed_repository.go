package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/pkg/pagination"
)

type NewsFeedRepository interface {
	// BulkInsert 一次提交全部时间线项，重复 (user, tweet) 静默跳过；返回实际写入行数
	BulkInsert(ctx context.Context, entries []*model.NewsFeed) (int64, error)
	ListByRecipient(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) ([]*model.NewsFeed, error)
	Exists(ctx context.Context, userID, tweetID string) (bool, error)
	CountByTweet(ctx context.Context, tweetID string) (int64, error)
	DetachTweet(ctx context.Context, tweetID string) error
	DetachUser(ctx context.Context, userID string) error
}

type newsFeedRepository struct {
	db        *gorm.DB
	batchSize int
}

func NewNewsFeedRepository(db *gorm.DB, batchSize int) NewsFeedRepository {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &newsFeedRepository{db: db, batchSize: batchSize}
}

func (r *newsFeedRepository) BulkInsert(ctx context.Context, entries []*model.NewsFeed) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	// CreateInBatches 在默认事务内分批，多批也整体提交
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(entries, r.batchSize)
	return res.RowsAffected, res.Error
}

func (r *newsFeedRepository) ListByRecipient(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) ([]*model.NewsFeed, error) {
	// 原 tweet 已删除的项（tweet_id 置空）不再展示
	q := r.db.WithContext(ctx).Where("user_id = ? AND tweet_id IS NOT NULL", userID)
	q = applyCursor(q, cursor)
	var res []*model.NewsFeed
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&res).Error
	return res, err
}

func (r *newsFeedRepository) Exists(ctx context.Context, userID, tweetID string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.NewsFeed{}).
		Where("user_id = ? AND tweet_id = ?", userID, tweetID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *newsFeedRepository) CountByTweet(ctx context.Context, tweetID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.NewsFeed{}).
		Where("tweet_id = ?", tweetID).
		Count(&cnt).Error
	return cnt, err
}

func (r *newsFeedRepository) DetachTweet(ctx context.Context, tweetID string) error {
	return r.db.WithContext(ctx).Model(&model.NewsFeed{}).
		Where("tweet_id = ?", tweetID).
		Update("tweet_id", nil).Error
}

func (r *newsFeedRepository) DetachUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&model.NewsFeed{}).
		Where("user_id = ?", userID).
		Update("user_id", nil).Error
}
