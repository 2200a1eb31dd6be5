package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/repository"
	"github.com/d60-Lab/gin-twitter/pkg/auth"
	"github.com/d60-Lab/gin-twitter/pkg/logger"
)

type SignupInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Get(ctx context.Context, id string) (*model.User, error)
	// Deactivate 删除账号；关注边、时间线、推文、评论、点赞上的引用置空
	Deactivate(ctx context.Context, userID string) error
}

type userService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	lookup     FollowerLookup
	tokens     *auth.Manager
	bcryptCost int
	now        func() time.Time
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, followRepo repository.FollowRepository, lookup FollowerLookup, tokens *auth.Manager) UserService {
	return &userService{
		db:         db,
		userRepo:   userRepo,
		followRepo: followRepo,
		lookup:     lookup,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		now:        utcNow,
	}
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		// 并发注册撞唯一索引
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	logger.Info("user signed up", zap.String("user", u.ID), zap.String("username", u.Username))
	return u, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *userService) Deactivate(ctx context.Context, userID string) error {
	// 先记下关注的人，删除后要失效他们的粉丝缓存
	following, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		detach := []func(context.Context, string) error{
			repository.NewFollowRepository(tx).DetachUser,
			repository.NewNewsFeedRepository(tx, 0).DetachUser,
			repository.NewTweetRepository(tx).DetachUser,
			repository.NewCommentRepository(tx).DetachUser,
			repository.NewLikeRepository(tx).DetachUser,
		}
		for _, fn := range detach {
			if err := fn(ctx, userID); err != nil {
				return err
			}
		}
		n, err := repository.NewUserRepository(tx).Delete(ctx, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.lookup.Invalidate(ctx, append(following, userID)...)
	logger.Info("user deactivated", zap.String("user", userID), zap.Int("following", len(following)))
	return nil
}
