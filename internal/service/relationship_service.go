package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/gin-twitter/internal/metrics"
	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/repository"
	"github.com/d60-Lab/gin-twitter/pkg/logger"
	"github.com/d60-Lab/gin-twitter/pkg/pagination"
)

// FollowResult Duplicate=true 表示关系早已存在，按成功处理
type FollowResult struct {
	Duplicate bool       `json:"duplicate"`
	CreatedAt *time.Time `json:"created_at,omitempty"` // 重复关注时为空
}

type UnfollowResult struct {
	DeletedCount int64 `json:"deleted"`
}

// RelationItem 关注/粉丝列表项
type RelationItem struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	FollowedAt time.Time `json:"created_at"`
}

type RelationPage struct {
	Items      []RelationItem `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// RelationshipService 关系链服务
type RelationshipService interface {
	Follow(ctx context.Context, actingUserID, targetUserID string) (*FollowResult, error)
	Unfollow(ctx context.Context, actingUserID, targetUserID string) (*UnfollowResult, error)
	IsFollowing(ctx context.Context, fromUserID, toUserID string) (bool, error)
	ListFollowers(ctx context.Context, userID, cursor string, limit int) (*RelationPage, error)
	ListFollowings(ctx context.Context, userID, cursor string, limit int) (*RelationPage, error)
}

type relationshipService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	lookup     FollowerLookup
	pageSize   int
	maxPage    int
	now        func() time.Time
}

func NewRelationshipService(followRepo repository.FollowRepository, userRepo repository.UserRepository, lookup FollowerLookup, pageSize, maxPage int) RelationshipService {
	if pageSize <= 0 {
		pageSize = 20
	}
	if maxPage < pageSize {
		maxPage = pageSize
	}
	return &relationshipService{followRepo: followRepo, userRepo: userRepo, lookup: lookup, pageSize: pageSize, maxPage: maxPage, now: utcNow}
}

func (s *relationshipService) Follow(ctx context.Context, actingUserID, targetUserID string) (*FollowResult, error) {
	if actingUserID == targetUserID {
		metrics.RelationOps.WithLabelValues("follow", "self").Inc()
		return nil, ErrSelfFollow
	}
	exists, err := s.userRepo.Exists(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		metrics.RelationOps.WithLabelValues("follow", "unknown_target").Inc()
		return nil, ErrUnknownTarget
	}

	f, err := s.followRepo.Create(ctx, actingUserID, targetUserID, s.now())
	if errors.Is(err, repository.ErrDuplicateEdge) {
		// 重复关注静默成功（前端连点、网络重试很常见）
		metrics.RelationOps.WithLabelValues("follow", "duplicate").Inc()
		return &FollowResult{Duplicate: true}, nil
	}
	if err != nil {
		return nil, err
	}
	s.lookup.Invalidate(ctx, targetUserID)
	metrics.RelationOps.WithLabelValues("follow", "created").Inc()
	logger.Debug("follow", zap.String("from", actingUserID), zap.String("to", targetUserID))
	return &FollowResult{CreatedAt: &f.CreatedAt}, nil
}

func (s *relationshipService) Unfollow(ctx context.Context, actingUserID, targetUserID string) (*UnfollowResult, error) {
	if actingUserID == targetUserID {
		return nil, ErrSelfFollow
	}
	n, err := s.followRepo.Delete(ctx, actingUserID, targetUserID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		s.lookup.Invalidate(ctx, targetUserID)
		metrics.RelationOps.WithLabelValues("unfollow", "deleted").Inc()
	} else {
		metrics.RelationOps.WithLabelValues("unfollow", "noop").Inc()
	}
	return &UnfollowResult{DeletedCount: n}, nil
}

func (s *relationshipService) IsFollowing(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	return s.followRepo.Exists(ctx, fromUserID, toUserID)
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID, cursor string, limit int) (*RelationPage, error) {
	return s.list(ctx, cursor, limit, s.followRepo.ListFollowers, userID, func(f *model.Follow) *string { return f.FromUserID })
}

func (s *relationshipService) ListFollowings(ctx context.Context, userID, cursor string, limit int) (*RelationPage, error) {
	return s.list(ctx, cursor, limit, s.followRepo.ListFollowings, userID, func(f *model.Follow) *string { return f.ToUserID })
}

type listFn func(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) ([]*model.Follow, error)

// list 一页关系 + 一条 IN 查询补全用户，已注销用户不出现在结果里
func (s *relationshipService) list(ctx context.Context, cursor string, limit int, fetch listFn, userID string, other func(*model.Follow) *string) (*RelationPage, error) {
	cur, err := pagination.Decode(cursor)
	if err != nil {
		return nil, err
	}
	limit = pagination.ClampLimit(limit, s.pageSize, s.maxPage)

	// 多取一条判断是否还有下一页
	rows, err := fetch(ctx, userID, cur, limit+1)
	if err != nil {
		return nil, err
	}
	page := &RelationPage{Items: []RelationItem{}}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.Encode(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if id := other(r); id != nil {
			ids = append(ids, *id)
		}
	}
	users, err := s.lookup.ResolveUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	for _, r := range rows {
		id := other(r)
		if id == nil {
			continue
		}
		name, ok := names[*id]
		if !ok {
			continue
		}
		page.Items = append(page.Items, RelationItem{UserID: *id, Username: name, FollowedAt: r.CreatedAt})
	}
	return page, nil
}
