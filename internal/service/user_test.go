package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-backend/internal/apperror"
)

func strPtr(s string) *string { return &s }

func TestGetUser_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.GetUser(context.Background(), 999999)
	requireKind(t, err, apperror.KindNotFound)
	assert.Contains(t, err.Error(), "user not found")
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "a@x.com", "alice")
	env.signup(t, "b@x.com", "bob")

	t.Run("nickname and password", func(t *testing.T) {
		got, err := env.users.UpdateUser(ctx, "a@x.com", alice.UserID, UpdateUserInput{
			Nickname: strPtr("alicia"),
			Password: strPtr("new-password-1"),
		})
		require.NoError(t, err)
		assert.Equal(t, "alicia", got.Nickname)

		_, err = env.auth.Login(ctx, "a@x.com", "new-password-1")
		assert.NoError(t, err, "login with the new password")
	})

	t.Run("taken nickname", func(t *testing.T) {
		_, err := env.users.UpdateUser(ctx, "a@x.com", alice.UserID, UpdateUserInput{Nickname: strPtr("bob")})
		requireKind(t, err, apperror.KindDuplicate)
	})

	t.Run("someone else's account", func(t *testing.T) {
		_, err := env.users.UpdateUser(ctx, "b@x.com", alice.UserID, UpdateUserInput{Nickname: strPtr("mallory")})
		requireKind(t, err, apperror.KindForbidden)
	})

	t.Run("missing user before ownership", func(t *testing.T) {
		_, err := env.users.UpdateUser(ctx, "b@x.com", 999999, UpdateUserInput{Nickname: strPtr("x")})
		requireKind(t, err, apperror.KindNotFound)
	})
}

func TestDeleteUser_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "a@x.com", "alice")

	err := env.users.DeleteUser(ctx, "a@x.com", alice.UserID, "wrong-password")
	requireKind(t, err, apperror.KindInvalidCredentials)
	assert.Contains(t, err.Error(), "password does not match")

	_, err = env.users.GetUser(ctx, alice.UserID)
	assert.NoError(t, err, "user must survive a failed delete")
}

func TestDeleteUser_OrderOfChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "a@x.com", "alice")
	env.signup(t, "b@x.com", "bob")

	err := env.users.DeleteUser(ctx, "a@x.com", 999999, testPassword)
	requireKind(t, err, apperror.KindNotFound)

	// Bob knows his own password, not Alice's: ownership is checked first.
	err = env.users.DeleteUser(ctx, "b@x.com", alice.UserID, testPassword)
	requireKind(t, err, apperror.KindForbidden)
}

func TestDeleteUser_Cascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "a@x.com", "alice")
	bob := env.signup(t, "b@x.com", "bob")

	// Alice's own post, commented and liked by Bob.
	alicePost := env.post(t, "a@x.com", "alice writes", "go")
	bobOnAlice := env.comment(t, "b@x.com", alicePost.PostID, "nice")
	_, err := env.likes.AddLike(ctx, "b@x.com", alicePost.PostID)
	require.NoError(t, err)

	// Alice's activity on Bob's post, including a reply from Bob to her.
	bobPost := env.post(t, "b@x.com", "bob writes")
	aliceOnBob := env.comment(t, "a@x.com", bobPost.PostID, "hi bob")
	_, err = env.comments.Reply(ctx, "b@x.com", bobPost.PostID, aliceOnBob.CommentID, "hi alice")
	require.NoError(t, err)
	bobTop := env.comment(t, "b@x.com", bobPost.PostID, "my own thread")
	_, err = env.comments.Reply(ctx, "a@x.com", bobPost.PostID, bobTop.CommentID, "alice replies")
	require.NoError(t, err)
	_, err = env.likes.AddLike(ctx, "a@x.com", bobPost.PostID)
	require.NoError(t, err)

	_, err = env.follows.Follow(ctx, bob.UserID, "a@x.com")
	require.NoError(t, err)
	_, err = env.follows.Follow(ctx, alice.UserID, "b@x.com")
	require.NoError(t, err)

	require.NoError(t, env.users.DeleteUser(ctx, "a@x.com", alice.UserID, testPassword))

	r := env.db.Repos()

	_, err = r.Users().GetByID(ctx, alice.UserID)
	requireKind(t, err, apperror.KindNotFound)
	_, err = r.Blogs().GetByUserID(ctx, alice.UserID)
	requireKind(t, err, apperror.KindNotFound)
	_, err = r.Posts().GetByID(ctx, alicePost.PostID)
	requireKind(t, err, apperror.KindNotFound)
	_, err = r.Comments().GetByID(ctx, bobOnAlice.CommentID)
	requireKind(t, err, apperror.KindNotFound)

	// Only Bob's own top-level comment survives on his post.
	left, err := r.Comments().ListByPost(ctx, bobPost.PostID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, bobTop.CommentID, left[0].ID)

	n, err := r.Likes().CountByPost(ctx, bobPost.PostID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.Follows().CountFollowers(ctx, bob.UserID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = r.Follows().CountFollowings(ctx, bob.UserID)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Bob is untouched.
	_, err = env.users.GetUser(ctx, bob.UserID)
	assert.NoError(t, err)
	page, err := env.posts.List(ctx, PostQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalElements)

	// The nickname and email are free again.
	env.signup(t, "a@x.com", "alice")

	// The shared tag outlives the post.
	_, err = r.Tags().GetByName(ctx, "go")
	assert.NoError(t, err)
}
