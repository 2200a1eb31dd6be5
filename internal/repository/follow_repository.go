package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/pkg/pagination"
)

type FollowRepository interface {
	Create(ctx context.Context, fromUserID, toUserID string, at time.Time) (*model.Follow, error)
	Delete(ctx context.Context, fromUserID, toUserID string) (int64, error)
	Exists(ctx context.Context, fromUserID, toUserID string) (bool, error)
	// FollowerIDs 一次查询取出关注 userID 的人；notAfter 非空时只取该时刻之前建立的关系
	FollowerIDs(ctx context.Context, userID string, notAfter *time.Time) ([]string, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	ListFollowers(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) ([]*model.Follow, error)
	ListFollowings(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) ([]*model.Follow, error)
	Count(ctx context.Context) (int64, error)
	// DetachUser 用户删除时把关系里的引用置空，不级联删除
	DetachUser(ctx context.Context, userID string) error
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, fromUserID, toUserID string, at time.Time) (*model.Follow, error) {
	if fromUserID == toUserID {
		return nil, ErrSelfFollow
	}
	f := &model.Follow{
		ID:         uuid.New().String(),
		FromUserID: model.StrPtr(fromUserID),
		ToUserID:   model.StrPtr(toUserID),
		CreatedAt:  at,
	}
	// 并发重复关注由唯一索引裁决，不做进程内加锁
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDuplicateEdge
	}
	return f, nil
}

func (r *followRepository) Delete(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Delete(&model.Follow{})
	return res.RowsAffected, res.Error
}

func (r *followRepository) Exists(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID string, notAfter *time.Time) ([]string, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("to_user_id = ? AND from_user_id IS NOT NULL", userID)
	if notAfter != nil {
		q = q.Where("created_at <= ?", *notAfter)
	}
	var ids []string
	err := q.Order("created_at DESC").Pluck("from_user_id", &ids).Error
	return ids, err
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("from_user_id = ? AND to_user_id IS NOT NULL", userID).
		Pluck("to_user_id", &ids).Error
	return ids, err
}

func (r *followRepository) ListFollowers(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) ([]*model.Follow, error) {
	q := r.db.WithContext(ctx).Where("to_user_id = ? AND from_user_id IS NOT NULL", userID)
	return r.page(q, cursor, limit)
}

func (r *followRepository) ListFollowings(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) ([]*model.Follow, error) {
	q := r.db.WithContext(ctx).Where("from_user_id = ? AND to_user_id IS NOT NULL", userID)
	return r.page(q, cursor, limit)
}

// page 按 (created_at, id) 倒序取 limit 条
func (r *followRepository) page(q *gorm.DB, cursor *pagination.Cursor, limit int) ([]*model.Follow, error) {
	q = applyCursor(q, cursor)
	var res []*model.Follow
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&res).Error
	return res, err
}

func (r *followRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) DetachUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("from_user_id = ?", userID).
		Update("from_user_id", nil).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("to_user_id = ?", userID).
		Update("to_user_id", nil).Error
}

// applyCursor 追加 keyset 条件
func applyCursor(q *gorm.DB, cursor *pagination.Cursor) *gorm.DB {
	if cursor == nil {
		return q
	}
	return q.Where("((created_at < ?) OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
}
