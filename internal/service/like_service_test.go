package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-twitter/internal/model"
)

func TestLike_Idempotent(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a, u := e.user(t, "a"), e.user(t, "u")
	tw := e.post(t, a, "like me")
	target := model.LikeTarget{Kind: model.TargetTweet, ID: tw.ID}

	res, err := e.likes.Like(ctx, u, target)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.EqualValues(t, 1, res.Count)

	res, err = e.likes.Like(ctx, u, target)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.EqualValues(t, 1, res.Count)

	un, err := e.likes.Unlike(ctx, u, target)
	require.NoError(t, err)
	assert.EqualValues(t, 1, un.DeletedCount)
	assert.Zero(t, un.Count)

	un, err = e.likes.Unlike(ctx, u, target)
	require.NoError(t, err)
	assert.Zero(t, un.DeletedCount)
}

func TestLike_TargetKinds(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a, u := e.user(t, "a"), e.user(t, "u")
	tw := e.post(t, a, "thread")
	c, err := e.comments.Create(ctx, u, tw.ID, "reply")
	require.NoError(t, err)

	// 同一个 id 在不同类型下是不同的对象
	_, err = e.likes.Like(ctx, u, model.LikeTarget{Kind: model.TargetComment, ID: c.ID})
	require.NoError(t, err)
	n, err := e.likes.Count(ctx, model.LikeTarget{Kind: model.TargetTweet, ID: c.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = e.likes.Like(ctx, u, model.LikeTarget{Kind: model.TargetTweet, ID: c.ID})
	assert.ErrorIs(t, err, ErrTweetNotFound)
	_, err = e.likes.Like(ctx, u, model.LikeTarget{Kind: model.TargetComment, ID: "missing"})
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = e.likes.Like(ctx, u, model.LikeTarget{Kind: "photo", ID: tw.ID})
	assert.ErrorIs(t, err, ErrUnknownLikeTarget)
}

func TestComments(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a, u := e.user(t, "a"), e.user(t, "u")
	tw := e.post(t, a, "discuss")

	first, err := e.comments.Create(ctx, u, tw.ID, "first")
	require.NoError(t, err)
	_, err = e.comments.Create(ctx, a, tw.ID, "second")
	require.NoError(t, err)
	_, err = e.comments.Create(ctx, u, tw.ID, "")
	assert.ErrorIs(t, err, ErrInvalidContent)
	_, err = e.comments.Create(ctx, u, "missing", "hello")
	assert.ErrorIs(t, err, ErrTweetNotFound)

	list, err := e.comments.ListByTweet(ctx, tw.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "second", list[1].Content)

	assert.ErrorIs(t, e.comments.Delete(ctx, a, first.ID), ErrForbidden)
	require.NoError(t, e.comments.Delete(ctx, u, first.ID))
	assert.ErrorIs(t, e.comments.Delete(ctx, u, first.ID), ErrCommentNotFound)
}

func TestUpdateComment(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a, u := e.user(t, "a"), e.user(t, "u")
	tw := e.post(t, a, "discuss")
	c, err := e.comments.Create(ctx, u, tw.ID, "frist")
	require.NoError(t, err)

	got, err := e.comments.Update(ctx, u, c.ID, "  first  ")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Content)
	assert.True(t, got.UpdatedAt.After(c.UpdatedAt))
	assert.True(t, got.CreatedAt.Equal(c.CreatedAt))

	_, err = e.comments.Update(ctx, a, c.ID, "hijack")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.comments.Update(ctx, u, c.ID, strings.Repeat("x", 141))
	assert.ErrorIs(t, err, ErrInvalidContent)
	_, err = e.comments.Update(ctx, u, "missing", "hello")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	list, err := e.comments.ListByTweet(ctx, tw.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Content)
}
