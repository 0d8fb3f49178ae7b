package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-backend/internal/apperror"
)

// A follows B, A follows B again, B follows A, A follows A.
func TestFollow_Scenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.signup(t, "a@x.com", "A")
	b := env.signup(t, "b@x.com", "B")

	info, err := env.follows.Follow(ctx, b.UserID, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, info.FollowerCount)
	assert.True(t, info.Following)

	_, err = env.follows.Follow(ctx, b.UserID, "a@x.com")
	requireKind(t, err, apperror.KindDuplicate)

	_, err = env.follows.Follow(ctx, a.UserID, "b@x.com")
	require.NoError(t, err, "the reverse pair is distinct")

	_, err = env.follows.Follow(ctx, a.UserID, "a@x.com")
	requireKind(t, err, apperror.KindBadRequest)
	assert.Contains(t, err.Error(), "cannot follow yourself")
}

func TestFollow_MissingTarget(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "a@x.com", "alice")

	_, err := env.follows.Follow(context.Background(), 999999, "a@x.com")
	requireKind(t, err, apperror.KindNotFound)
}

// Each missing piece has its own message, checked in order
// follower → following → relation.
func TestUnfollow_ResolutionOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")
	b := env.signup(t, "b@x.com", "bob")

	tests := []struct {
		name     string
		targetID int64
		email    string
		message  string
	}{
		{"follower missing", 999999, "ghost@x.com", "user not found: email=ghost@x.com"},
		{"following missing", 999999, "a@x.com", "user not found: id=999999"},
		{"relation missing", b.UserID, "a@x.com", "follow relation not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.follows.Unfollow(ctx, tt.targetID, tt.email)
			requireKind(t, err, apperror.KindNotFound)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestUnfollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")
	b := env.signup(t, "b@x.com", "bob")

	_, err := env.follows.Follow(ctx, b.UserID, "a@x.com")
	require.NoError(t, err)

	info, err := env.follows.Unfollow(ctx, b.UserID, "a@x.com")
	require.NoError(t, err)
	assert.Zero(t, info.FollowerCount)
	assert.False(t, info.Following)

	// Following again works after an unfollow.
	_, err = env.follows.Follow(ctx, b.UserID, "a@x.com")
	assert.NoError(t, err)
}

func TestFollowInfoAndLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.signup(t, "a@x.com", "alice")
	env.signup(t, "b@x.com", "bob")
	env.signup(t, "c@x.com", "carol")

	_, err := env.follows.Follow(ctx, a.UserID, "b@x.com")
	require.NoError(t, err)
	_, err = env.follows.Follow(ctx, a.UserID, "c@x.com")
	require.NoError(t, err)

	info, err := env.follows.GetFollowInfo(ctx, a.UserID, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, info.FollowerCount)
	assert.Zero(t, info.FollowingCount)
	assert.True(t, info.Following)

	info, err = env.follows.GetFollowInfo(ctx, a.UserID, "")
	require.NoError(t, err)
	assert.False(t, info.Following)

	followers, err := env.follows.ListFollowers(ctx, a.UserID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "bob", followers[0].Nickname)
	assert.Equal(t, "carol", followers[1].Nickname)

	followings, err := env.follows.ListFollowings(ctx, a.UserID)
	require.NoError(t, err)
	assert.Empty(t, followings)

	_, err = env.follows.ListFollowers(ctx, 999999)
	requireKind(t, err, apperror.KindNotFound)
}

func TestFollow_ConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")
	b := env.signup(t, "b@x.com", "bob")

	ok, dup, other := concurrently(8, func() error {
		_, err := env.follows.Follow(ctx, b.UserID, "a@x.com")
		return err
	})

	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, dup)
	assert.Equal(t, 0, other)

	info, err := env.follows.GetFollowInfo(ctx, b.UserID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, info.FollowerCount)
}
