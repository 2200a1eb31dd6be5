package service

import (
	"errors"
	"fmt"

	"github.com/d60-Lab/gin-twitter/internal/repository"
)

var (
	ErrSelfFollow         = repository.ErrSelfFollow
	ErrUnknownTarget      = errors.New("target user does not exist")
	ErrUserNotFound       = errors.New("user not found")
	ErrTweetNotFound      = errors.New("tweet not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrForbidden          = errors.New("operation not allowed")
	ErrInvalidContent     = errors.New("content must be 1-140 characters")
	ErrUserExists         = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownLikeTarget  = errors.New("unknown like target")
)

// PartialFanOutError tweet 已提交，但时间线投递没有完成
type PartialFanOutError struct {
	TweetID string
	Stage   string // lookup | insert
	Err     error
}

func (e *PartialFanOutError) Error() string {
	return fmt.Sprintf("fan-out of tweet %s incomplete at %s: %v", e.TweetID, e.Stage, e.Err)
}

func (e *PartialFanOutError) Unwrap() error { return e.Err }

// IsPartialFanOut 区分“降级成功”和硬失败
func IsPartialFanOut(err error) bool {
	var pe *PartialFanOutError
	return errors.As(err, &pe)
}
