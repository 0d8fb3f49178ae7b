package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/auth"
)

func TestSignup_CreatesExactlyOneBlog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.signup(t, "a@x.com", "alice")
	assert.NotZero(t, u.UserID)
	assert.NotZero(t, u.BlogID)

	got, err := env.users.GetUser(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.BlogID, got.BlogID)

	blog, err := env.db.Repos().Blogs().GetByUserID(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.BlogID, blog.ID)
}

func TestSignup_Duplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")

	tests := []struct {
		name     string
		email    string
		nickname string
		message  string
	}{
		{"duplicate email", "a@x.com", "other", "email already in use: email=a@x.com"},
		{"duplicate nickname", "b@x.com", "alice", "nickname already in use: nickname=alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Signup(ctx, SignupInput{Email: tt.email, Password: testPassword, Nickname: tt.nickname})
			requireKind(t, err, apperror.KindDuplicate)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}

	// The failed signups left nothing behind.
	ok, err := env.db.Repos().Users().ExistsByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.signup(t, "a@x.com", "alice")

	res, err := env.auth.Login(ctx, "a@x.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, u.UserID, res.User.UserID)

	email, err := env.auth.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")

	tests := []struct {
		name     string
		email    string
		password string
		kind     apperror.Kind
	}{
		{"wrong password", "a@x.com", "not-the-password", apperror.KindInvalidCredentials},
		{"unknown email", "nobody@x.com", testPassword, apperror.KindUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Login(ctx, tt.email, tt.password)
			assert.True(t, errors.Is(err, auth.ErrBadCredentials), "error %v should wrap ErrBadCredentials", err)
			requireKind(t, err, tt.kind)
		})
	}
}

func TestLoadUserByUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")

	u, err := env.auth.LoadUserByUsername(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Nickname)

	_, err = env.auth.LoadUserByUsername(ctx, "ghost@x.com")
	requireKind(t, err, apperror.KindUnauthorized)
	assert.Contains(t, err.Error(), "unknown email: ghost@x.com")
}

func TestGetUserInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.signup(t, "a@x.com", "alice")

	info, err := env.auth.GetUserInfo(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, info.UserID)
	assert.Equal(t, u.BlogID, info.BlogID)
	assert.Equal(t, "alice", info.Nickname)

	_, err = env.auth.GetUserInfo(ctx, "ghost@x.com")
	requireKind(t, err, apperror.KindUnauthorized)
}

// bcrypt's limit is in bytes: 25 Hangul syllables are 25 characters but
// 75 bytes.
func TestPasswordByteLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tooLong := strings.Repeat("가", 25)
	justFits := strings.Repeat("가", 24)

	_, err := env.auth.Signup(ctx, SignupInput{Email: "a@x.com", Password: tooLong, Nickname: "alice"})
	requireKind(t, err, apperror.KindBadRequest)
	assert.Equal(t, "password: must be at most 72 bytes", err.Error())

	u, err := env.auth.Signup(ctx, SignupInput{Email: "a@x.com", Password: justFits, Nickname: "alice"})
	require.NoError(t, err)

	_, err = env.users.UpdateUser(ctx, "a@x.com", u.UserID, UpdateUserInput{Password: &tooLong})
	requireKind(t, err, apperror.KindBadRequest)

	_, err = env.auth.Login(ctx, "a@x.com", justFits)
	require.NoError(t, err, "the 72-byte password still logs in")
}
