package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-twitter/internal/api/middleware"
	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/pkg/response"
)

type feedItem struct {
	TweetID   string       `json:"tweet_id"`
	CreatedAt time.Time    `json:"created_at"`
	Tweet     *model.Tweet `json:"tweet"`
}

type feedResponse struct {
	Items      []feedItem `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ListFeed 当前用户的时间线，按时间倒序；推文内容一次 IN 查询补全
// @Summary 我的时间线
// @Tags 时间线
// @Security BearerAuth
// @Param cursor query string false "上一页返回的 next_cursor"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response{data=feedResponse}
// @Failure 400 {object} response.Response
// @Router /api/v1/feed [get]
func (h *Handler) ListFeed(c *gin.Context) {
	ctx := c.Request.Context()
	page, err := h.feedService.ListFeed(ctx, middleware.CurrentUserID(c), c.Query("cursor"), queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	ids := make([]string, 0, len(page.Items))
	for _, it := range page.Items {
		ids = append(ids, it.TweetID)
	}
	tweets, err := h.tweetService.GetMany(ctx, ids)
	if err != nil {
		fail(c, err)
		return
	}

	out := feedResponse{Items: make([]feedItem, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, it := range page.Items {
		tw, ok := tweets[it.TweetID]
		if !ok {
			continue
		}
		out.Items = append(out.Items, feedItem{TweetID: it.TweetID, CreatedAt: it.CreatedAt, Tweet: tw})
	}
	response.Success(c, out)
}
