package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/gin-twitter/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByTweet(ctx context.Context, tweetID string, limit int) ([]*model.Comment, error)
	Update(ctx context.Context, id, content string, at time.Time) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	DetachTweet(ctx context.Context, tweetID string) error
	DetachUser(ctx context.Context, userID string) error
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByTweet 按时间正序
func (r *commentRepository) ListByTweet(ctx context.Context, tweetID string, limit int) ([]*model.Comment, error) {
	var res []*model.Comment
	err := r.db.WithContext(ctx).
		Where("tweet_id = ?", tweetID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *commentRepository) Update(ctx context.Context, id, content string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{"content": content, "updated_at": at})
	return res.RowsAffected, res.Error
}

func (r *commentRepository) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{})
	return res.RowsAffected, res.Error
}

func (r *commentRepository) DetachTweet(ctx context.Context, tweetID string) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("tweet_id = ?", tweetID).
		Update("tweet_id", nil).Error
}

func (r *commentRepository) DetachUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("user_id = ?", userID).
		Update("user_id", nil).Error
}
