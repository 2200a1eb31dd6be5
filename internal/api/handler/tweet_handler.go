package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-twitter/internal/api/middleware"
	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/service"
	"github.com/d60-Lab/gin-twitter/pkg/response"
)

type createTweetRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

type fanoutStatus struct {
	Complete   bool `json:"complete"`
	Recipients int  `json:"recipients"`
}

type createTweetResponse struct {
	Tweet  *model.Tweet `json:"tweet"`
	Fanout fanoutStatus `json:"fanout"`
}

// CreateTweet 发推并同步写入作者和粉丝的时间线
// 扇出未完成时仍返回 201，fanout.complete=false，后台补偿
// @Summary 发推
// @Tags 推文
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createTweetRequest true "推文内容，1-140 字"
// @Success 201 {object} response.Response{data=createTweetResponse}
// @Failure 400 {object} response.Response
// @Router /api/v1/tweets [post]
func (h *Handler) CreateTweet(c *gin.Context) {
	var req createTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tw, res, err := h.tweetService.Create(c.Request.Context(), middleware.CurrentUserID(c), req.Content)
	if err != nil && !service.IsPartialFanOut(err) {
		fail(c, err)
		return
	}
	out := createTweetResponse{Tweet: tw, Fanout: fanoutStatus{Complete: err == nil}}
	if res != nil {
		out.Fanout.Recipients = res.Recipients
	}
	response.Created(c, out)
}

// ListTweets 某用户发的推，必须带 user_id
// @Summary 用户推文列表
// @Tags 推文
// @Param user_id query string true "作者ID"
// @Param cursor query string false "上一页返回的 next_cursor"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response{data=service.TweetPage}
// @Failure 400 {object} response.Response
// @Router /api/v1/tweets [get]
func (h *Handler) ListTweets(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		response.BadRequest(c, "user_id is required")
		return
	}
	page, err := h.tweetService.ListByUser(c.Request.Context(), userID, c.Query("cursor"), queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

type tweetDetail struct {
	*model.Tweet
	LikesCount int64            `json:"likes_count"`
	Comments   []*model.Comment `json:"comments"`
}

// GetTweet 带点赞数和评论
// @Summary 推文详情
// @Tags 推文
// @Param id path string true "推文ID"
// @Param limit query int false "评论数量"
// @Success 200 {object} response.Response{data=tweetDetail}
// @Failure 404 {object} response.Response
// @Router /api/v1/tweets/{id} [get]
func (h *Handler) GetTweet(c *gin.Context) {
	ctx := c.Request.Context()
	tw, err := h.tweetService.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	likes, err := h.likeService.Count(ctx, model.LikeTarget{Kind: model.TargetTweet, ID: tw.ID})
	if err != nil {
		fail(c, err)
		return
	}
	comments, err := h.commentService.ListByTweet(ctx, tw.ID, queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tweetDetail{Tweet: tw, LikesCount: likes, Comments: comments})
}

// DeleteTweet 仅作者可删
// @Summary 删除推文
// @Tags 推文
// @Security BearerAuth
// @Param id path string true "推文ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/tweets/{id} [delete]
func (h *Handler) DeleteTweet(c *gin.Context) {
	if err := h.tweetService.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
