package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/gin-twitter/internal/cache"
	"github.com/d60-Lab/gin-twitter/internal/metrics"
	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/repository"
	"github.com/d60-Lab/gin-twitter/pkg/logger"
)

// FollowerLookup 查询粉丝：先取 id（缓存或一条查询），再一条 IN 查询批量取用户
// 不论粉丝多少，往返次数固定，不做逐行查询也不 join
type FollowerLookup interface {
	GetFollowers(ctx context.Context, userID string) ([]*model.User, error)
	// GetFollowersAsOf 只考虑 asOf 之前建立的关注关系，绕过缓存
	GetFollowersAsOf(ctx context.Context, userID string, asOf time.Time) ([]*model.User, error)
	// ResolveUsers 按给定 id 顺序返回仍存在的用户
	ResolveUsers(ctx context.Context, ids []string) ([]*model.User, error)
	Invalidate(ctx context.Context, userIDs ...string)
}

type followerLookup struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	cache      cache.FollowerCache
}

func NewFollowerLookup(followRepo repository.FollowRepository, userRepo repository.UserRepository, c cache.FollowerCache) FollowerLookup {
	if c == nil {
		c = cache.Nop{}
	}
	return &followerLookup{followRepo: followRepo, userRepo: userRepo, cache: c}
}

func (l *followerLookup) GetFollowers(ctx context.Context, userID string) ([]*model.User, error) {
	ids, err := l.followerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return l.ResolveUsers(ctx, ids)
}

func (l *followerLookup) GetFollowersAsOf(ctx context.Context, userID string, asOf time.Time) ([]*model.User, error) {
	ids, err := l.followRepo.FollowerIDs(ctx, userID, &asOf)
	if err != nil {
		return nil, err
	}
	return l.ResolveUsers(ctx, ids)
}

func (l *followerLookup) followerIDs(ctx context.Context, userID string) ([]string, error) {
	ids, ok, err := l.cache.Get(ctx, userID)
	if err != nil {
		metrics.FollowerCacheLookups.WithLabelValues("error").Inc()
		logger.Warn("follower cache get failed, fallback to db", zap.String("user", userID), zap.Error(err))
	} else if ok {
		metrics.FollowerCacheLookups.WithLabelValues("hit").Inc()
		return ids, nil
	} else {
		metrics.FollowerCacheLookups.WithLabelValues("miss").Inc()
	}

	ids, err = l.followRepo.FollowerIDs(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Set(ctx, userID, ids); err != nil {
		logger.Warn("follower cache set failed", zap.String("user", userID), zap.Error(err))
	}
	return ids, nil
}

func (l *followerLookup) ResolveUsers(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	users, err := l.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	res := make([]*model.User, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

func (l *followerLookup) Invalidate(ctx context.Context, userIDs ...string) {
	if err := l.cache.Invalidate(ctx, userIDs...); err != nil {
		logger.Warn("follower cache invalidate failed", zap.Strings("users", userIDs), zap.Error(err))
	}
}
