package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/gin-twitter/internal/service"
	"github.com/d60-Lab/gin-twitter/pkg/pagination"
	"github.com/d60-Lab/gin-twitter/pkg/response"
)

// Handler 聚合所有 HTTP 接口依赖的服务
type Handler struct {
	relService     service.RelationshipService
	feedService    service.NewsFeedService
	tweetService   service.TweetService
	userService    service.UserService
	commentService service.CommentService
	likeService    service.LikeService
}

type Services struct {
	Relationship service.RelationshipService
	Feed         service.NewsFeedService
	Tweet        service.TweetService
	User         service.UserService
	Comment      service.CommentService
	Like         service.LikeService
}

func New(s Services) *Handler {
	return &Handler{
		relService:     s.Relationship,
		feedService:    s.Feed,
		tweetService:   s.Tweet,
		userService:    s.User,
		commentService: s.Comment,
		likeService:    s.Like,
	}
}

// RegisterValidations 注册自定义校验规则 notblank
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// fail 把服务层错误映射为 HTTP 状态码
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrInvalidContent),
		errors.Is(err, service.ErrUnknownLikeTarget),
		errors.Is(err, pagination.ErrInvalidCursor):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUnknownTarget),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTweetNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrUserExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

func queryLimit(c *gin.Context) int {
	n, _ := strconv.Atoi(c.Query("limit"))
	return n
}
