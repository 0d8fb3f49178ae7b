package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/auth"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/repository/sqlite"
)

// =========================================================================
// TEST ENVIRONMENT
// =========================================================================
//
// The services run against a real in-memory SQLite database instead of
// hand-written fakes: the interesting behaviour here (cascades, unique
// constraints, rollback) lives in the interaction with the store.

type testEnv struct {
	db       *sqlite.DB
	auth     *AuthService
	users    *UserService
	posts    *PostService
	comments *CommentService
	likes    *LikeService
	follows  *FollowService
}

const testPassword = "password-123"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		db:       db,
		auth:     NewAuthService(db, tokens, passwords, logger),
		users:    NewUserService(db, passwords, logger),
		posts:    NewPostService(db, logger),
		comments: NewCommentService(db, logger),
		likes:    NewLikeService(db, logger),
		follows:  NewFollowService(db, logger),
	}
}

// signup registers a user with testPassword and fails the test on error.
func (e *testEnv) signup(t *testing.T, email, nickname string) model.UserResponse {
	t.Helper()
	u, err := e.auth.Signup(context.Background(), SignupInput{
		Email:    email,
		Password: testPassword,
		Nickname: nickname,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) post(t *testing.T, email, title string, tags ...string) model.PostResponse {
	t.Helper()
	p, err := e.posts.Create(context.Background(), email, PostInput{
		Title:   title,
		Content: "content of " + title,
		Tags:    tags,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) comment(t *testing.T, email string, postID int64, content string) model.CommentResponse {
	t.Helper()
	c, err := e.comments.Create(context.Background(), email, postID, content)
	require.NoError(t, err)
	return c
}

// requireKind asserts that err carries an AppError of the given kind.
func requireKind(t *testing.T, err error, want apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	got, ok := apperror.KindOf(err)
	require.Truef(t, ok, "error %v is not an AppError", err)
	require.Equalf(t, want, got, "error %v", err)
}

// concurrently runs fn from n goroutines at once and counts the outcomes:
// successes, Duplicate failures, and anything else.
func concurrently(n int, fn func() error) (ok, dup, other int) {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := fn()

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, apperror.ErrDuplicate):
				dup++
			default:
				other++
			}
		}()
	}
	close(start)
	wg.Wait()
	return ok, dup, other
}
