package service

import (
	"context"
	"time"

	"github.com/d60-Lab/gin-twitter/internal/repository"
	"github.com/d60-Lab/gin-twitter/pkg/pagination"
)

// FeedItem 时间线项，内容由展示层补全
type FeedItem struct {
	TweetID   string    `json:"tweet_id"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedPage struct {
	Items      []FeedItem `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewsFeedService 读时间线：只查本人的时间线项，按 created_at 倒序
type NewsFeedService interface {
	ListFeed(ctx context.Context, actingUserID, cursor string, limit int) (*FeedPage, error)
}

type newsFeedService struct {
	feedRepo repository.NewsFeedRepository
	pageSize int
	maxPage  int
}

func NewNewsFeedService(feedRepo repository.NewsFeedRepository, pageSize, maxPage int) NewsFeedService {
	if pageSize <= 0 {
		pageSize = 20
	}
	if maxPage < pageSize {
		maxPage = pageSize
	}
	return &newsFeedService{feedRepo: feedRepo, pageSize: pageSize, maxPage: maxPage}
}

func (s *newsFeedService) ListFeed(ctx context.Context, actingUserID, cursor string, limit int) (*FeedPage, error) {
	cur, err := pagination.Decode(cursor)
	if err != nil {
		return nil, err
	}
	limit = pagination.ClampLimit(limit, s.pageSize, s.maxPage)

	rows, err := s.feedRepo.ListByRecipient(ctx, actingUserID, cur, limit+1)
	if err != nil {
		return nil, err
	}
	page := &FeedPage{Items: make([]FeedItem, 0, len(rows))}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.Encode(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	for _, r := range rows {
		if r.TweetID == nil {
			continue
		}
		page.Items = append(page.Items, FeedItem{TweetID: *r.TweetID, CreatedAt: r.CreatedAt})
	}
	return page, nil
}
