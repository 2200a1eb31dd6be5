package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-twitter/internal/api/middleware"
	"github.com/d60-Lab/gin-twitter/pkg/response"
)

type followRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required,notblank"`
}

// Follow 关注用户，重复关注返回 duplicate=true
// @Summary 关注用户
// @Tags 关系链
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body followRequest true "被关注的用户"
// @Success 200 {object} response.Response{data=service.FollowResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/relations/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.relService.Follow(c.Request.Context(), middleware.CurrentUserID(c), req.TargetUserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// Unfollow 取消关注，没有关注关系时 deleted=0
// @Summary 取消关注
// @Description 关系不存在或目标用户不存在时同样返回 200，deleted=0，不返回 404
// @Tags 关系链
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body followRequest true "取消关注的用户"
// @Success 200 {object} response.Response{data=service.UnfollowResult}
// @Failure 400 {object} response.Response "自己取消关注自己或参数缺失"
// @Router /api/v1/relations/unfollow [post]
func (h *Handler) Unfollow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.relService.Unfollow(c.Request.Context(), middleware.CurrentUserID(c), req.TargetUserID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// ListFollowings 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Param cursor query string false "上一页返回的 next_cursor"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response{data=service.RelationPage}
// @Router /api/v1/relations/{user_id}/followings [get]
func (h *Handler) ListFollowings(c *gin.Context) {
	page, err := h.relService.ListFollowings(c.Request.Context(), c.Param("user_id"), c.Query("cursor"), queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Param cursor query string false "上一页返回的 next_cursor"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response{data=service.RelationPage}
// @Router /api/v1/relations/{user_id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	page, err := h.relService.ListFollowers(c.Request.Context(), c.Param("user_id"), c.Query("cursor"), queryLimit(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, page)
}
