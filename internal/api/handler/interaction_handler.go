package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-twitter/internal/api/middleware"
	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/pkg/response"
)

type commentRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

type likeRequest struct {
	TargetKind string `json:"target_kind" binding:"required,oneof=tweet comment"`
	TargetID   string `json:"target_id" binding:"required,notblank"`
}

// CreateComment
// @Summary 评论推文
// @Tags 互动
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "推文ID"
// @Param request body commentRequest true "评论内容，1-140 字"
// @Success 201 {object} response.Response{data=model.Comment}
// @Failure 404 {object} response.Response
// @Router /api/v1/tweets/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cm, err := h.commentService.Create(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, cm)
}

// ListComments 按时间正序
// @Summary 推文评论
// @Tags 互动
// @Param id path string true "推文ID"
// @Param limit query int false "数量"
// @Success 200 {object} response.Response{data=[]model.Comment}
// @Router /api/v1/tweets/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	list, err := h.commentService.ListByTweet(c.Request.Context(), c.Param("id"), queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// UpdateComment 仅评论者本人可改
// @Summary 修改评论
// @Tags 互动
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "评论ID"
// @Param request body commentRequest true "评论内容，1-140 字"
// @Success 200 {object} response.Response{data=model.Comment}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments/{id} [put]
func (h *Handler) UpdateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	cm, err := h.commentService.Update(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cm)
}

// DeleteComment
// @Summary 删除评论
// @Tags 互动
// @Security BearerAuth
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.commentService.Delete(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// Like 点赞推文或评论，重复点赞返回 duplicate=true
// @Summary 点赞
// @Tags 互动
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body likeRequest true "点赞对象"
// @Success 200 {object} response.Response{data=service.LikeResult}
// @Router /api/v1/likes [post]
func (h *Handler) Like(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	kind, err := model.ParseTargetKind(req.TargetKind)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.likeService.Like(c.Request.Context(), middleware.CurrentUserID(c), model.LikeTarget{Kind: kind, ID: req.TargetID})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// Unlike 取消点赞，未点过赞时 deleted=0
// @Summary 取消点赞
// @Tags 互动
// @Security BearerAuth
// @Param kind path string true "tweet 或 comment"
// @Param id path string true "对象ID"
// @Success 200 {object} response.Response{data=service.UnlikeResult}
// @Router /api/v1/likes/{kind}/{id} [delete]
func (h *Handler) Unlike(c *gin.Context) {
	kind, err := model.ParseTargetKind(c.Param("kind"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.likeService.Unlike(c.Request.Context(), middleware.CurrentUserID(c), model.LikeTarget{Kind: kind, ID: c.Param("id")})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}
