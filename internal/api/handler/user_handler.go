package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-twitter/internal/api/middleware"
	"github.com/d60-Lab/gin-twitter/internal/service"
	"github.com/d60-Lab/gin-twitter/pkg/response"
)

type signupRequest struct {
	Username string `json:"username" binding:"required,notblank,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup 注册
// @Summary 注册
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body signupRequest true "注册信息"
// @Success 201 {object} response.Response{data=model.User}
// @Failure 409 {object} response.Response
// @Router /api/v1/users/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.Signup(c.Request.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, u)
}

// Login 登录，返回 JWT
// @Summary 登录
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response{data=service.LoginResult}
// @Failure 401 {object} response.Response
// @Router /api/v1/users/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// GetUser
// @Summary 用户信息
// @Tags 用户
// @Param id path string true "用户ID"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, u)
}

// Deactivate 注销当前账号
// @Summary 注销账号
// @Tags 用户
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/v1/users/me [delete]
func (h *Handler) Deactivate(c *gin.Context) {
	if err := h.userService.Deactivate(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
