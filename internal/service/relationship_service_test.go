package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollow_DuplicateIsSuccess(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	u1, u2 := e.user(t, "u1"), e.user(t, "u2")

	first, err := e.rel.Follow(ctx, u1, u2)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)
	require.NotNil(t, first.CreatedAt)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := e.rel.Follow(ctx, u1, u2)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Nil(t, second.CreatedAt)

	cnt, err := e.follows.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cnt)
}

func TestUnfollow_MissingEdgeIsNoop(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	u1, u2 := e.user(t, "u1"), e.user(t, "u2")

	res, err := e.rel.Unfollow(ctx, u1, u2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.DeletedCount)

	e.follow(t, u1, u2)
	res, err = e.rel.Unfollow(ctx, u1, u2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.DeletedCount)

	ok, err := e.rel.IsFollowing(ctx, u1, u2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollow_SelfRejected(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	u := e.user(t, "narcissus")

	_, err := e.rel.Follow(ctx, u, u)
	assert.ErrorIs(t, err, ErrSelfFollow)
	_, err = e.rel.Unfollow(ctx, u, u)
	assert.ErrorIs(t, err, ErrSelfFollow)

	cnt, err := e.follows.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, cnt)
}

func TestFollow_UnknownTarget(t *testing.T) {
	e := newEnv(t, nil)
	u := e.user(t, "u")
	_, err := e.rel.Follow(context.Background(), u, "no-such-user")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestListFollowers_PagesNewestFirst(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	star := e.user(t, "star")
	var want []string
	for i := 0; i < 5; i++ {
		id := e.user(t, fmt.Sprintf("fan%d", i))
		e.follow(t, id, star)
		want = append([]string{id}, want...)
	}

	var got []string
	cursor := ""
	pages := 0
	for {
		// 默认页大小为 2
		page, err := e.rel.ListFollowers(ctx, star, cursor, 0)
		require.NoError(t, err)
		pages++
		for _, it := range page.Items {
			got = append(got, it.UserID)
			assert.NotEmpty(t, it.Username)
			assert.False(t, it.FollowedAt.IsZero())
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 3, pages)
}

func TestListFollowings(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	u, a, b := e.user(t, "u"), e.user(t, "a"), e.user(t, "b")
	e.follow(t, u, a)
	e.follow(t, u, b)

	page, err := e.rel.ListFollowings(ctx, u, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, b, page.Items[0].UserID)
	assert.Equal(t, "a", page.Items[1].Username)
	assert.Empty(t, page.NextCursor)
}

func TestListFollowers_SkipsDeactivatedUsers(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	star, gone, stays := e.user(t, "star"), e.user(t, "gone"), e.user(t, "stays")
	e.follow(t, gone, star)
	e.follow(t, stays, star)

	require.NoError(t, e.account.Deactivate(ctx, gone))

	page, err := e.rel.ListFollowers(ctx, star, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, stays, page.Items[0].UserID)
}
