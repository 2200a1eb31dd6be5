package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-twitter/internal/cache"
	"github.com/d60-Lab/gin-twitter/internal/model"
	"github.com/d60-Lab/gin-twitter/internal/repository"
	"github.com/d60-Lab/gin-twitter/internal/testutil"
	"github.com/d60-Lab/gin-twitter/pkg/auth"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// env 一套接在同一个 sqlite 上的服务，共用一个递增时钟
type env struct {
	db      *gorm.DB
	clock   *testutil.Clock
	users   repository.UserRepository
	follows repository.FollowRepository
	feeds   *flakyFeedRepo
	retries repository.FanoutRetryRepository
	tweets  repository.TweetRepository

	lookup   FollowerLookup
	fanout   *fanoutService
	rel      *relationshipService
	feed     NewsFeedService
	tweet    *tweetService
	account  *userService
	comments *commentService
	likes    LikeService
}

func newEnv(t *testing.T, c cache.FollowerCache) *env {
	t.Helper()
	db := testutil.NewDB(t)
	e := &env{
		db:      db,
		clock:   testutil.NewClock(t0, time.Second),
		users:   repository.NewUserRepository(db),
		follows: repository.NewFollowRepository(db),
		feeds:   &flakyFeedRepo{NewsFeedRepository: repository.NewNewsFeedRepository(db, 3)},
		retries: repository.NewFanoutRetryRepository(db),
		tweets:  repository.NewTweetRepository(db),
	}
	comments := repository.NewCommentRepository(db)

	e.lookup = NewFollowerLookup(e.follows, e.users, c)
	e.fanout = NewFanoutService(e.lookup, e.feeds, e.retries, e.tweets).(*fanoutService)
	e.fanout.now = e.clock.Now
	e.rel = NewRelationshipService(e.follows, e.users, e.lookup, 2, 10).(*relationshipService)
	e.rel.now = e.clock.Now
	e.feed = NewNewsFeedService(e.feeds, 20, 100)
	e.tweet = NewTweetService(db, e.tweets, e.fanout, 20, 100).(*tweetService)
	e.tweet.now = e.clock.Now
	e.account = NewUserService(db, e.users, e.follows, e.lookup, auth.NewManager("test-secret", time.Hour)).(*userService)
	e.account.bcryptCost = 4 // bcrypt.MinCost
	e.account.now = e.clock.Now
	e.comments = NewCommentService(comments, e.tweets, 20, 100).(*commentService)
	e.comments.now = e.clock.Now
	e.likes = NewLikeService(repository.NewLikeRepository(db), e.tweets, comments)
	return e
}

// user 直接落库一个用户，返回 id
func (e *env) user(t *testing.T, name string) string {
	t.Helper()
	now := e.clock.Now()
	u := &model.User{
		ID:           uuid.NewString(),
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u.ID
}

func (e *env) follow(t *testing.T, from, to string) {
	t.Helper()
	res, err := e.rel.Follow(context.Background(), from, to)
	require.NoError(t, err)
	require.False(t, res.Duplicate)
}

func (e *env) post(t *testing.T, author, content string) *model.Tweet {
	t.Helper()
	tw, _, err := e.tweet.Create(context.Background(), author, content)
	require.NoError(t, err)
	return tw
}

func (e *env) feedIDs(t *testing.T, userID string) []string {
	t.Helper()
	page, err := e.feed.ListFeed(context.Background(), userID, "", 100)
	require.NoError(t, err)
	ids := make([]string, 0, len(page.Items))
	for _, it := range page.Items {
		ids = append(ids, it.TweetID)
	}
	return ids
}

var errStorageDown = errors.New("storage unavailable")

// flakyFeedRepo fail 置位时 BulkInsert 直接失败
type flakyFeedRepo struct {
	repository.NewsFeedRepository
	fail atomic.Bool
}

func (r *flakyFeedRepo) BulkInsert(ctx context.Context, entries []*model.NewsFeed) (int64, error) {
	if r.fail.Load() {
		return 0, errStorageDown
	}
	return r.NewsFeedRepository.BulkInsert(ctx, entries)
}
