package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/repository"
)

type CommentService interface {
	Create(ctx context.Context, actingUserID, tweetID, content string) (*model.Comment, error)
	ListByTweet(ctx context.Context, tweetID string, limit int) ([]*model.Comment, error)
	// Update 只有评论者本人能改，内容规则同发推
	Update(ctx context.Context, actingUserID, commentID, content string) (*model.Comment, error)
	Delete(ctx context.Context, actingUserID, commentID string) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	tweetRepo   repository.TweetRepository
	pageSize    int
	maxPage     int
	now         func() time.Time
}

func NewCommentService(commentRepo repository.CommentRepository, tweetRepo repository.TweetRepository, pageSize, maxPage int) CommentService {
	if pageSize <= 0 {
		pageSize = 20
	}
	if maxPage < pageSize {
		maxPage = pageSize
	}
	return &commentService{commentRepo: commentRepo, tweetRepo: tweetRepo, pageSize: pageSize, maxPage: maxPage, now: utcNow}
}

func (s *commentService) Create(ctx context.Context, actingUserID, tweetID, content string) (*model.Comment, error) {
	content, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.tweetRepo.GetByID(ctx, tweetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}
	now := s.now()
	c := &model.Comment{
		ID:        uuid.New().String(),
		UserID:    model.StrPtr(actingUserID),
		TweetID:   model.StrPtr(tweetID),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) ListByTweet(ctx context.Context, tweetID string, limit int) ([]*model.Comment, error) {
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > s.maxPage {
		limit = s.maxPage
	}
	return s.commentRepo.ListByTweet(ctx, tweetID, limit)
}

func (s *commentService) Update(ctx context.Context, actingUserID, commentID, content string) (*model.Comment, error) {
	content, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}
	c, err := s.owned(ctx, actingUserID, commentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	n, err := s.commentRepo.Update(ctx, commentID, content, now)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrCommentNotFound
	}
	c.Content = content
	c.UpdatedAt = now
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, actingUserID, commentID string) error {
	if _, err := s.owned(ctx, actingUserID, commentID); err != nil {
		return err
	}
	_, err := s.commentRepo.Delete(ctx, commentID)
	return err
}

// owned 取出评论并确认属于 actingUserID
func (s *commentService) owned(ctx context.Context, actingUserID, commentID string) (*model.Comment, error) {
	c, err := s.commentRepo.GetByID(ctx, commentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.UserID == nil || *c.UserID != actingUserID {
		return nil, ErrForbidden
	}
	return c, nil
}
