package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-backend/internal/apperror"
)

func TestPostCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "a@x.com", "alice")

	p, err := env.posts.Create(ctx, "a@x.com", PostInput{
		Title:   "<b>Hello</b> world",
		Content: "# Heading\n\nbody",
		Tags:    []string{" go ", "sql", "go", ""},
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello world", p.Title)
	assert.Equal(t, alice.BlogID, p.BlogID)
	assert.Equal(t, alice.UserID, p.Author.UserID)
	assert.Equal(t, []string{"go", "sql"}, p.Tags)
	assert.Contains(t, p.ContentHTML, "Heading</h1>")
	assert.Zero(t, p.LikeCount)
	assert.Empty(t, p.Comments)
}

func TestPostCreate_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")

	_, err := env.posts.Create(ctx, "a@x.com", PostInput{Title: "<i></i>", Content: "x"})
	requireKind(t, err, apperror.KindBadRequest)

	_, err = env.posts.Create(ctx, "", PostInput{Title: "t", Content: "x"})
	requireKind(t, err, apperror.KindUnauthorized)

	_, err = env.posts.Create(ctx, "ghost@x.com", PostInput{Title: "t", Content: "x"})
	requireKind(t, err, apperror.KindNotFound)
}

func TestPostUpdate_ReplacesTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")
	p := env.post(t, "a@x.com", "draft", "go", "sql")

	got, err := env.posts.Update(ctx, "a@x.com", p.PostID, PostInput{
		Title:   "final",
		Content: "new",
		Tags:    []string{"rust"},
	})
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, []string{"rust"}, got.Tags)

	page, err := env.posts.List(ctx, PostQuery{Tag: "go"})
	require.NoError(t, err)
	assert.Zero(t, page.TotalElements, "old tag still maps to the post")
}

func TestPostUpdateDelete_OnlyOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")
	env.signup(t, "b@x.com", "bob")
	p := env.post(t, "a@x.com", "alice's")

	_, err := env.posts.Update(ctx, "b@x.com", p.PostID, PostInput{Title: "mine now", Content: "x"})
	requireKind(t, err, apperror.KindForbidden)

	err = env.posts.Delete(ctx, "b@x.com", p.PostID)
	requireKind(t, err, apperror.KindForbidden)

	err = env.posts.Delete(ctx, "a@x.com", 999999)
	requireKind(t, err, apperror.KindNotFound)
}

func TestPostDelete_Cascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")
	env.signup(t, "b@x.com", "bob")
	env.signup(t, "c@x.com", "carol")

	p := env.post(t, "a@x.com", "popular", "go", "sql", "news")
	other := env.post(t, "a@x.com", "quiet", "go")

	// N comments (with a reply), M likes, K tag associations.
	top := env.comment(t, "b@x.com", p.PostID, "first")
	env.comment(t, "c@x.com", p.PostID, "second")
	_, err := env.comments.Reply(ctx, "a@x.com", p.PostID, top.CommentID, "thanks")
	require.NoError(t, err)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := env.likes.AddLike(ctx, email, p.PostID)
		require.NoError(t, err)
	}

	require.NoError(t, env.posts.Delete(ctx, "a@x.com", p.PostID))

	r := env.db.Repos()
	comments, err := r.Comments().CountByPost(ctx, p.PostID)
	require.NoError(t, err)
	likes, err := r.Likes().CountByPost(ctx, p.PostID)
	require.NoError(t, err)
	maps, err := r.TagMaps().ListByPost(ctx, p.PostID)
	require.NoError(t, err)

	assert.Zero(t, comments, "comments left")
	assert.Zero(t, likes, "likes left")
	assert.Empty(t, maps, "tag maps left")

	_, err = env.posts.Get(ctx, p.PostID)
	requireKind(t, err, apperror.KindNotFound)

	// Tags are shared: still there, still mapped to the other post.
	for _, name := range []string{"go", "sql", "news"} {
		_, err := r.Tags().GetByName(ctx, name)
		assert.NoErrorf(t, err, "tag %q", name)
	}
	page, err := env.posts.List(ctx, PostQuery{Tag: "go"})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, other.PostID, page.Content[0].PostID)
}

func TestPostGet_Detail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")
	env.signup(t, "b@x.com", "bob")
	p := env.post(t, "a@x.com", "detail", "go")

	top := env.comment(t, "b@x.com", p.PostID, "question")
	_, err := env.comments.Reply(ctx, "a@x.com", p.PostID, top.CommentID, "answer")
	require.NoError(t, err)
	_, err = env.likes.AddLike(ctx, "b@x.com", p.PostID)
	require.NoError(t, err)

	got, err := env.posts.Get(ctx, p.PostID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Author.Nickname)
	assert.Equal(t, 1, got.LikeCount)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "bob", got.Comments[0].Author.Nickname)
	require.Len(t, got.Comments[0].Replies, 1)
	assert.Equal(t, "answer", got.Comments[0].Replies[0].Content)
}

func TestPostList_Paging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "a@x.com", "alice")
	env.signup(t, "b@x.com", "bob")

	for i := 0; i < 12; i++ {
		env.post(t, "a@x.com", "alice post")
	}
	env.post(t, "b@x.com", "bob post", "misc")

	tests := []struct {
		name      string
		query     PostQuery
		wantLen   int
		wantTotal int
		wantPages int
		wantPage  int
		wantSize  int
	}{
		{"defaults", PostQuery{}, 10, 13, 2, 0, DefaultPageSize},
		{"second page", PostQuery{Page: 1}, 3, 13, 2, 1, DefaultPageSize},
		{"negative page", PostQuery{Page: -3, Size: 5}, 5, 13, 3, 0, 5},
		{"size capped", PostQuery{Size: 1000}, 13, 13, 1, 0, MaxPageSize},
		{"by blog", PostQuery{BlogID: alice.BlogID, Size: 20}, 12, 12, 1, 0, 20},
		{"by tag", PostQuery{Tag: "misc"}, 1, 1, 1, 0, DefaultPageSize},
		{"past the end", PostQuery{Page: 5}, 0, 13, 2, 5, DefaultPageSize},
		{"huge page is clamped, not wrapped", PostQuery{Page: math.MaxInt / 5, Size: 10}, 0, 13, 2, math.MaxInt / 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := env.posts.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Len(t, page.Content, tt.wantLen)
			assert.Equal(t, tt.wantTotal, page.TotalElements)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantSize, page.Size)
		})
	}

	// Newest first: bob's post was written last.
	page, err := env.posts.List(ctx, PostQuery{})
	require.NoError(t, err)
	assert.Equal(t, "bob post", page.Content[0].Title)
	assert.Equal(t, "bob", page.Content[0].Author.Nickname)
}

func TestPostList_CommentCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "a@x.com", "alice")
	env.signup(t, "b@x.com", "bob")
	quiet := env.post(t, "a@x.com", "quiet")
	busy := env.post(t, "a@x.com", "busy")

	top := env.comment(t, "b@x.com", busy.PostID, "first")
	env.comment(t, "a@x.com", busy.PostID, "second")
	_, err := env.comments.Reply(ctx, "a@x.com", busy.PostID, top.CommentID, "a reply")
	require.NoError(t, err)

	page, err := env.posts.List(ctx, PostQuery{})
	require.NoError(t, err)
	require.Len(t, page.Content, 2)

	counts := map[int64]int{}
	for _, s := range page.Content {
		counts[s.PostID] = s.CommentCount
	}
	assert.Equal(t, 3, counts[busy.PostID], "replies are counted")
	assert.Equal(t, 0, counts[quiet.PostID])
}
