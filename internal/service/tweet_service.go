package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/repository"
	"github.com/d60-Lab/gin-twitter/pkg/logger"
	"github.com/d60-Lab/gin-twitter/pkg/pagination"
)

type TweetPage struct {
	Items      []*model.Tweet `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// TweetService 发推走写扩散：tweet 先落库，再同步扇出到时间线
type TweetService interface {
	// Create 扇出失败时返回已提交的 tweet 和 *PartialFanOutError
	Create(ctx context.Context, authorID, content string) (*model.Tweet, *FanOutResult, error)
	Get(ctx context.Context, id string) (*model.Tweet, error)
	GetMany(ctx context.Context, ids []string) (map[string]*model.Tweet, error)
	ListByUser(ctx context.Context, userID, cursor string, limit int) (*TweetPage, error)
	Delete(ctx context.Context, actingUserID, tweetID string) error
}

type tweetService struct {
	db        *gorm.DB
	tweetRepo repository.TweetRepository
	fanout    FanoutService
	pageSize  int
	maxPage   int
	now       func() time.Time
}

func NewTweetService(db *gorm.DB, tweetRepo repository.TweetRepository, fanout FanoutService, pageSize, maxPage int) TweetService {
	if pageSize <= 0 {
		pageSize = 20
	}
	if maxPage < pageSize {
		maxPage = pageSize
	}
	return &tweetService{db: db, tweetRepo: tweetRepo, fanout: fanout, pageSize: pageSize, maxPage: maxPage, now: utcNow}
}

// ValidateContent 去掉首尾空白后 1..140 个字符
func ValidateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	n := utf8.RuneCountInString(content)
	if n == 0 || n > model.MaxContentLength {
		return "", ErrInvalidContent
	}
	return content, nil
}

func (s *tweetService) Create(ctx context.Context, authorID, content string) (*model.Tweet, *FanOutResult, error) {
	content, err := ValidateContent(content)
	if err != nil {
		return nil, nil, err
	}
	t := &model.Tweet{
		ID:        uuid.New().String(),
		UserID:    model.StrPtr(authorID),
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.tweetRepo.Create(ctx, t); err != nil {
		return nil, nil, fmt.Errorf("create tweet: %w", err)
	}

	res, err := s.fanout.FanOut(ctx, t.ID, authorID)
	if err != nil {
		// tweet 不回滚，补偿由 FanoutWorker 完成
		return t, res, err
	}
	logger.Debug("tweet published", zap.String("tweet", t.ID), zap.Int("recipients", res.Recipients))
	return t, res, nil
}

func (s *tweetService) Get(ctx context.Context, id string) (*model.Tweet, error) {
	t, err := s.tweetRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTweetNotFound
	}
	return t, err
}

func (s *tweetService) GetMany(ctx context.Context, ids []string) (map[string]*model.Tweet, error) {
	tweets, err := s.tweetRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*model.Tweet, len(tweets))
	for _, t := range tweets {
		out[t.ID] = t
	}
	return out, nil
}

func (s *tweetService) ListByUser(ctx context.Context, userID, cursor string, limit int) (*TweetPage, error) {
	cur, err := pagination.Decode(cursor)
	if err != nil {
		return nil, err
	}
	limit = pagination.ClampLimit(limit, s.pageSize, s.maxPage)
	rows, err := s.tweetRepo.ListByUser(ctx, userID, cur, limit+1)
	if err != nil {
		return nil, err
	}
	page := &TweetPage{Items: rows}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.Encode(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.Items = rows[:limit]
	}
	return page, nil
}

// Delete 只有作者能删；时间线项和评论置空引用，不级联删除，未完成的补偿一并取消
func (s *tweetService) Delete(ctx context.Context, actingUserID, tweetID string) error {
	t, err := s.Get(ctx, tweetID)
	if err != nil {
		return err
	}
	if t.AuthorID() != actingUserID {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewNewsFeedRepository(tx, 0).DetachTweet(ctx, tweetID); err != nil {
			return err
		}
		if err := repository.NewCommentRepository(tx).DetachTweet(ctx, tweetID); err != nil {
			return err
		}
		if _, err := repository.NewFanoutRetryRepository(tx).CancelByTweet(ctx, tweetID, s.now()); err != nil {
			return err
		}
		_, err := repository.NewTweetRepository(tx).Delete(ctx, tweetID)
		return err
	})
}
