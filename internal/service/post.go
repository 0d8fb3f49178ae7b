package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/render"
	"github.com/sakif/blog-backend/internal/repository"
)

type PostService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewPostService(store repository.Store, logger *slog.Logger) *PostService {
	return &PostService{store: store, logger: logger}
}

// PostInput is used for both create and update. On update the tag list
// replaces the old one.
type PostInput struct {
	Title   string
	Content string
	Tags    []string
}

// PostQuery filters and pages a post listing. Zero Tag/BlogID mean "any".
type PostQuery struct {
	Tag    string
	BlogID int64
	Page   int
	Size   int
}

// normalize applies the page defaults: page < 0 becomes 0, size <= 0
// becomes DefaultPageSize, size is capped at MaxPageSize, and page is capped
// so the offset fits in an int.
func (q PostQuery) normalize() PostQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	// Page*Size is the SQL offset and must not overflow.
	if q.Page > math.MaxInt/q.Size {
		q.Page = math.MaxInt / q.Size
	}
	return q
}

func (in PostInput) clean() (PostInput, error) {
	in.Title = render.PlainText(in.Title)
	if in.Title == "" {
		return in, apperror.RequiredField("title")
	}
	in.Tags = model.NormalizeTags(stripAll(in.Tags))
	return in, nil
}

func stripAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = render.PlainText(n)
	}
	return out
}

func (s *PostService) Create(ctx context.Context, email string, in PostInput) (model.PostResponse, error) {
	in, err := in.clean()
	if err != nil {
		return model.PostResponse{}, err
	}

	var resp model.PostResponse
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := caller(ctx, tx, email)
		if err != nil {
			return err
		}
		blog, err := tx.Blogs().GetByUserID(ctx, user.ID)
		if err != nil {
			return err
		}

		post := model.NewPost(blog.ID, in.Title, in.Content)
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		if err := attachTags(ctx, tx, post.ID, in.Tags); err != nil {
			return err
		}

		resp, err = postDetail(ctx, tx, post)
		return err
	})
	if err != nil {
		return model.PostResponse{}, fmt.Errorf("service: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("post_id", resp.PostID),
		slog.Int64("blog_id", resp.BlogID),
		slog.Int("tags", len(resp.Tags)),
	)
	return resp, nil
}

// Get returns the detail view: tags, like count, comments with replies and
// the rendered HTML of the content.
func (s *PostService) Get(ctx context.Context, id int64) (model.PostResponse, error) {
	var resp model.PostResponse
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		post, err := tx.Posts().GetByID(ctx, id)
		if err != nil {
			return err
		}
		resp, err = postDetail(ctx, tx, post)
		return err
	})
	return resp, err
}

// ownPost loads post id and checks that user owns the blog it lives in.
func ownPost(ctx context.Context, tx repository.Tx, user *model.User, id int64) (*model.Post, error) {
	post, err := tx.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	blog, err := tx.Blogs().GetByID(ctx, post.BlogID)
	if err != nil {
		return nil, err
	}
	if blog.UserID != user.ID {
		return nil, apperror.NotPostOwner()
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, email string, id int64, in PostInput) (model.PostResponse, error) {
	in, err := in.clean()
	if err != nil {
		return model.PostResponse{}, err
	}

	var resp model.PostResponse
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := caller(ctx, tx, email)
		if err != nil {
			return err
		}
		post, err := ownPost(ctx, tx, user, id)
		if err != nil {
			return err
		}

		post.Edit(in.Title, in.Content)
		if err := tx.Posts().Update(ctx, post); err != nil {
			return err
		}
		if _, err := tx.TagMaps().DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		if err := attachTags(ctx, tx, post.ID, in.Tags); err != nil {
			return err
		}

		resp, err = postDetail(ctx, tx, post)
		return err
	})
	if err != nil {
		return model.PostResponse{}, fmt.Errorf("service: updating post %d: %w", id, err)
	}

	s.logger.Info("post updated", slog.Int64("post_id", id))
	return resp, nil
}

func (s *PostService) Delete(ctx context.Context, email string, id int64) error {
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := caller(ctx, tx, email)
		if err != nil {
			return err
		}
		if _, err := ownPost(ctx, tx, user, id); err != nil {
			return err
		}
		return deletePost(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("service: deleting post %d: %w", id, err)
	}

	s.logger.Info("post deleted", slog.Int64("post_id", id))
	return nil
}

// List returns one page of post summaries, newest first.
func (s *PostService) List(ctx context.Context, q PostQuery) (model.Page[model.PostSummary], error) {
	q = q.normalize()
	filter := repository.PostFilter{
		TagName: q.Tag,
		BlogID:  q.BlogID,
		ListOptions: repository.ListOptions{
			Limit:  q.Size,
			Offset: q.Page * q.Size,
		},
	}

	var page model.Page[model.PostSummary]
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		total, err := tx.Posts().Count(ctx, filter)
		if err != nil {
			return err
		}
		posts, err := tx.Posts().List(ctx, filter)
		if err != nil {
			return err
		}

		au := newAuthors(tx)
		summaries := make([]model.PostSummary, 0, len(posts))
		for i := range posts {
			p := &posts[i]
			author, err := au.blog(ctx, p.BlogID)
			if err != nil {
				return err
			}
			tags, err := tx.Tags().ListNamesByPost(ctx, p.ID)
			if err != nil {
				return err
			}
			comments, err := tx.Comments().CountByPost(ctx, p.ID)
			if err != nil {
				return err
			}
			summaries = append(summaries, model.PostSummary{
				PostID:       p.ID,
				BlogID:       p.BlogID,
				Title:        p.Title,
				Summary:      p.Summary(),
				Author:       author,
				Tags:         tags,
				CommentCount: comments,
				CreatedAt:    p.CreatedAt,
			})
		}

		page = model.NewPage(summaries, q.Page, q.Size, total)
		return nil
	})
	if err != nil {
		return model.Page[model.PostSummary]{}, fmt.Errorf("service: listing posts: %w", err)
	}
	return page, nil
}

// attachTags maps every name to the post, creating tags that do not exist
// yet. Tags are shared and never deleted here.
func attachTags(ctx context.Context, tx repository.Tx, postID int64, names []string) error {
	for _, name := range names {
		tag, err := tx.Tags().GetByName(ctx, name)
		if errors.Is(err, apperror.ErrNotFound) {
			tag = &model.Tag{Name: name}
			err = tx.Tags().Create(ctx, tag)
		}
		if err != nil {
			return err
		}
		if err := tx.TagMaps().Create(ctx, &model.TagMap{PostID: postID, TagID: tag.ID}); err != nil {
			return err
		}
	}
	return nil
}

// deletePost removes a post and everything that exclusively depends on it.
// Tags survive; only the join rows go.
func deletePost(ctx context.Context, tx repository.Tx, postID int64) error {
	if _, err := tx.TagMaps().DeleteByPost(ctx, postID); err != nil {
		return err
	}
	if _, err := tx.Comments().DeleteByPost(ctx, postID); err != nil {
		return err
	}
	if _, err := tx.Likes().DeleteByPost(ctx, postID); err != nil {
		return err
	}
	return tx.Posts().Delete(ctx, postID)
}

func postDetail(ctx context.Context, tx repository.Tx, post *model.Post) (model.PostResponse, error) {
	au := newAuthors(tx)

	author, err := au.blog(ctx, post.BlogID)
	if err != nil {
		return model.PostResponse{}, err
	}
	tags, err := tx.Tags().ListNamesByPost(ctx, post.ID)
	if err != nil {
		return model.PostResponse{}, err
	}
	likes, err := tx.Likes().CountByPost(ctx, post.ID)
	if err != nil {
		return model.PostResponse{}, err
	}
	comments, err := commentTree(ctx, tx, au, post.ID)
	if err != nil {
		return model.PostResponse{}, err
	}

	return model.PostResponse{
		PostID:      post.ID,
		BlogID:      post.BlogID,
		Title:       post.Title,
		Content:     post.Content,
		ContentHTML: render.Markdown(post.Content),
		Author:      author,
		Tags:        tags,
		LikeCount:   likes,
		Comments:    comments,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}, nil
}
