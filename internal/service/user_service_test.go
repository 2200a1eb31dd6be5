package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-twitter/internal/model"
)

func TestSignupAndLogin(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	u, err := e.account.Signup(ctx, SignupInput{Username: " alice ", Email: "Alice@Example.com", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "s3cret!", u.PasswordHash)

	_, err = e.account.Signup(ctx, SignupInput{Username: "alice", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUserExists)

	res, err := e.account.Login(ctx, "alice", "s3cret!")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, u.ID, res.User.ID)

	claims, err := e.account.tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = e.account.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.account.Login(ctx, "bob", "s3cret!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUser(t *testing.T) {
	e := newEnv(t, nil)
	id := e.user(t, "carol")
	u, err := e.account.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "carol", u.Username)

	_, err = e.account.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeactivate_DetachesInsteadOfCascading(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a, f := e.user(t, "a"), e.user(t, "f")
	e.follow(t, f, a)
	e.follow(t, a, f)
	tw := e.post(t, a, "last words")
	_, err := e.likes.Like(ctx, f, model.LikeTarget{Kind: model.TargetTweet, ID: tw.ID})
	require.NoError(t, err)

	require.NoError(t, e.account.Deactivate(ctx, f))
	assert.ErrorIs(t, e.account.Deactivate(ctx, f), ErrUserNotFound)

	// tweet 和关注边都还在，只是引用置空
	_, err = e.tweet.Get(ctx, tw.ID)
	require.NoError(t, err)
	cnt, err := e.follows.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cnt)

	followers, err := e.lookup.GetFollowers(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, followers)

	// 新 tweet 只进作者自己的时间线
	tw2 := e.post(t, a, "anyone left?")
	n, err := e.feeds.CountByTweet(ctx, tw2.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	likes, err := e.likes.Count(ctx, model.LikeTarget{Kind: model.TargetTweet, ID: tw.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, likes)
}
