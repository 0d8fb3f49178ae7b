package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/repository"
)

var _ repository.PostRepository = (*PostRepo)(nil)

type PostRepo struct {
	q querier
}

func (r *PostRepo) Create(ctx context.Context, post *model.Post) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO posts (blog_id, title, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		post.BlogID,
		post.Title,
		post.Content,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post (blogID=%d): %w", post.BlogID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading post id: %w", err)
	}
	post.ID = id
	return nil
}

// GetByID returns apperror.PostNotFound if no post has that id.
func (r *PostRepo) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	err := r.q.QueryRowContext(ctx,
		`SELECT id, blog_id, title, content, created_at, updated_at
		 FROM posts WHERE id = ?`, id,
	).Scan(&p.ID, &p.BlogID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.PostNotFound(id)
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}
	return &p, nil
}

// buildPostFilter turns a PostFilter into a FROM/WHERE fragment and its
// arguments. List and Count share it so a page and its total always agree.
//
// WHY BUILD SQL DYNAMICALLY?
// Each filter is optional. Building the WHERE clause from the parts that are
// set keeps one query path instead of one query per combination. Values are
// still passed as ? placeholders; only fixed fragments are concatenated.
func buildPostFilter(f repository.PostFilter) (string, []any) {
	var (
		from  = `FROM posts p`
		where []string
		args  []any
	)

	if f.TagName != "" {
		from += ` JOIN tag_maps tm ON tm.post_id = p.id JOIN tags t ON t.id = tm.tag_id`
		where = append(where, `t.name = ?`)
		args = append(args, f.TagName)
	}
	if f.BlogID != 0 {
		where = append(where, `p.blog_id = ?`)
		args = append(args, f.BlogID)
	}

	if len(where) > 0 {
		from += ` WHERE ` + strings.Join(where, ` AND `)
	}
	return from, args
}

// List returns posts newest first. A Limit of 0 means no limit.
func (r *PostRepo) List(ctx context.Context, f repository.PostFilter) ([]model.Post, error) {
	from, args := buildPostFilter(f)

	limit := f.Limit
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means unbounded
	}
	args = append(args, limit, f.Offset)

	rows, err := r.q.QueryContext(ctx,
		`SELECT p.id, p.blog_id, p.title, p.content, p.created_at, p.updated_at `+from+
			` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.BlogID, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	return posts, nil
}

// Count ignores Limit and Offset.
func (r *PostRepo) Count(ctx context.Context, f repository.PostFilter) (int, error) {
	from, args := buildPostFilter(f)
	n, err := count(ctx, r.q, `SELECT COUNT(*) `+from, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}
	return n, nil
}

func (r *PostRepo) ListIDsByBlog(ctx context.Context, blogID int64) ([]int64, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id FROM posts WHERE blog_id = ? ORDER BY id`, blogID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing post ids for blog %d: %w", blogID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostRepo) Update(ctx context.Context, post *model.Post) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		post.Title, post.Content, post.UpdatedAt, post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.PostNotFound(post.ID)
	}
	return nil
}

// Delete removes the post row. Tag maps, comments and likes must be deleted
// first.
func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.PostNotFound(id)
	}
	return nil
}
