package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/pkg/pagination"
)

type TweetRepository interface {
	Create(ctx context.Context, t *model.Tweet) error
	GetByID(ctx context.Context, id string) (*model.Tweet, error)
	Exists(ctx context.Context, id string) (bool, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Tweet, error)
	ListByUser(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) ([]*model.Tweet, error)
	Delete(ctx context.Context, id string) (int64, error)
	DetachUser(ctx context.Context, userID string) error
}

type tweetRepository struct{ db *gorm.DB }

func NewTweetRepository(db *gorm.DB) TweetRepository { return &tweetRepository{db: db} }

func (r *tweetRepository) Create(ctx context.Context, t *model.Tweet) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tweetRepository) GetByID(ctx context.Context, id string) (*model.Tweet, error) {
	var t model.Tweet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *tweetRepository) Exists(ctx context.Context, id string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Tweet{}).Where("id = ?", id).Count(&cnt).Error
	return cnt > 0, err
}

func (r *tweetRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Tweet, error) {
	if len(ids) == 0 {
		return []*model.Tweet{}, nil
	}
	var res []*model.Tweet
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

// ListByUser 走 (user_id, created_at) 联合索引
func (r *tweetRepository) ListByUser(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) ([]*model.Tweet, error) {
	q := applyCursor(r.db.WithContext(ctx).Where("user_id = ?", userID), cursor)
	var res []*model.Tweet
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&res).Error
	return res, err
}

func (r *tweetRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Tweet{})
	return res.RowsAffected, res.Error
}

func (r *tweetRepository) DetachUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&model.Tweet{}).
		Where("user_id = ?", userID).
		Update("user_id", nil).Error
}
