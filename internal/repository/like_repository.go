package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-twitter/internal/model"
)

type LikeRepository interface {
	Create(ctx context.Context, userID string, target model.LikeTarget) (*model.Like, error)
	Delete(ctx context.Context, userID string, target model.LikeTarget) (int64, error)
	CountByTarget(ctx context.Context, target model.LikeTarget) (int64, error)
	HasLiked(ctx context.Context, userID string, target model.LikeTarget) (bool, error)
	DetachUser(ctx context.Context, userID string) error
}

type likeRepository struct{ db *gorm.DB }

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Create(ctx context.Context, userID string, target model.LikeTarget) (*model.Like, error) {
	l := &model.Like{
		ID:         uuid.New().String(),
		UserID:     model.StrPtr(userID),
		TargetKind: target.Kind,
		TargetID:   target.ID,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(l)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDuplicateLike
	}
	return l, nil
}

func (r *likeRepository) Delete(ctx context.Context, userID string, target model.LikeTarget) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, target.Kind, target.ID).
		Delete(&model.Like{})
	return res.RowsAffected, res.Error
}

func (r *likeRepository) CountByTarget(ctx context.Context, target model.LikeTarget) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("target_kind = ? AND target_id = ?", target.Kind, target.ID).
		Count(&cnt).Error
	return cnt, err
}

func (r *likeRepository) HasLiked(ctx context.Context, userID string, target model.LikeTarget) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, target.Kind, target.ID).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *likeRepository) DetachUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ?", userID).
		Update("user_id", nil).Error
}
