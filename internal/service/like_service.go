package service

import (
	"context"
	"errors"

	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/repository"
)

type LikeResult struct {
	Duplicate bool  `json:"duplicate"`
	Count     int64 `json:"count"`
}

type UnlikeResult struct {
	DeletedCount int64 `json:"deleted"`
	Count        int64 `json:"count"`
}

// LikeService 点赞与取消点赞都幂等，语义同关注/取关
type LikeService interface {
	Like(ctx context.Context, actingUserID string, target model.LikeTarget) (*LikeResult, error)
	Unlike(ctx context.Context, actingUserID string, target model.LikeTarget) (*UnlikeResult, error)
	Count(ctx context.Context, target model.LikeTarget) (int64, error)
}

type likeService struct {
	likeRepo    repository.LikeRepository
	tweetRepo   repository.TweetRepository
	commentRepo repository.CommentRepository
}

func NewLikeService(likeRepo repository.LikeRepository, tweetRepo repository.TweetRepository, commentRepo repository.CommentRepository) LikeService {
	return &likeService{likeRepo: likeRepo, tweetRepo: tweetRepo, commentRepo: commentRepo}
}

func (s *likeService) Like(ctx context.Context, actingUserID string, target model.LikeTarget) (*LikeResult, error) {
	if err := s.checkTarget(ctx, target); err != nil {
		return nil, err
	}
	res := &LikeResult{}
	_, err := s.likeRepo.Create(ctx, actingUserID, target)
	switch {
	case errors.Is(err, repository.ErrDuplicateLike):
		res.Duplicate = true
	case err != nil:
		return nil, err
	}
	if res.Count, err = s.likeRepo.CountByTarget(ctx, target); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *likeService) Unlike(ctx context.Context, actingUserID string, target model.LikeTarget) (*UnlikeResult, error) {
	n, err := s.likeRepo.Delete(ctx, actingUserID, target)
	if err != nil {
		return nil, err
	}
	cnt, err := s.likeRepo.CountByTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	return &UnlikeResult{DeletedCount: n, Count: cnt}, nil
}

func (s *likeService) Count(ctx context.Context, target model.LikeTarget) (int64, error) {
	return s.likeRepo.CountByTarget(ctx, target)
}

func (s *likeService) checkTarget(ctx context.Context, target model.LikeTarget) error {
	var err error
	switch target.Kind {
	case model.TargetTweet:
		_, err = s.tweetRepo.GetByID(ctx, target.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTweetNotFound
		}
	case model.TargetComment:
		_, err = s.commentRepo.GetByID(ctx, target.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
	default:
		return ErrUnknownLikeTarget
	}
	return err
}
