package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/repository"
)

var _ repository.CommentRepository = (*CommentRepo)(nil)

type CommentRepo struct {
	q querier
}

const commentColumns = `id, post_id, user_id, parent_id, content, created_at, updated_at`

// scanComment reads parent_id through sql.NullInt64 because top-level
// comments store NULL there.
func scanComment(row interface{ Scan(...any) error }) (*model.Comment, error) {
	var (
		c        model.Comment
		parentID sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.PostID, &c.UserID, &parentID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if parentID.Valid {
		id := parentID.Int64
		c.ParentID = &id
	}
	return &c, nil
}

func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	var parentID sql.NullInt64
	if c.ParentID != nil {
		parentID = sql.NullInt64{Int64: *c.ParentID, Valid: true}
	}

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO comments (post_id, user_id, parent_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.PostID,
		c.UserID,
		parentID,
		c.Content,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment (post=%d): %w", c.PostID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading comment id: %w", err)
	}
	c.ID = id
	return nil
}

func (r *CommentRepo) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	c, err := scanComment(r.q.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.CommentNotFound(id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}
	return c, nil
}

// ListByPost returns every comment of the post, replies included, oldest
// first. model.GroupReplies turns the flat list into a tree.
func (r *CommentRepo) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE post_id = ? ORDER BY created_at, id`, postID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %d: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func (r *CommentRepo) CountByPost(ctx context.Context, postID int64) (int, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting comments for post %d: %w", postID, err)
	}
	return n, nil
}

func (r *CommentRepo) Update(ctx context.Context, c *model.Comment) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		c.Content, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %d: %w", c.ID, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.CommentNotFound(c.ID)
	}
	return nil
}

// Delete removes one comment. Its replies must be deleted first
// (DeleteReplies).
func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %d: %w", id, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.CommentNotFound(id)
	}
	return nil
}

func (r *CommentRepo) DeleteReplies(ctx context.Context, parentID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE parent_id = ?`, parentID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting replies of comment %d: %w", parentID, err)
	}
	return rowsAffected(res)
}

// DeleteByPost removes replies before top-level comments so the parent_id
// foreign key is never violated mid-statement.
func (r *CommentRepo) DeleteByPost(ctx context.Context, postID int64) (int64, error) {
	replies, err := r.q.ExecContext(ctx,
		`DELETE FROM comments WHERE post_id = ? AND parent_id IS NOT NULL`, postID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting replies for post %d: %w", postID, err)
	}
	roots, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting comments for post %d: %w", postID, err)
	}

	n1, err := rowsAffected(replies)
	if err != nil {
		return 0, err
	}
	n2, err := rowsAffected(roots)
	if err != nil {
		return 0, err
	}
	return n1 + n2, nil
}

// DeleteByUser removes the user's comments together with every reply to
// them, including replies written by other users.
func (r *CommentRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	replies, err := r.q.ExecContext(ctx,
		`DELETE FROM comments
		 WHERE user_id = ? AND parent_id IS NOT NULL
		    OR parent_id IN (SELECT id FROM comments WHERE user_id = ?)`,
		userID, userID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting replies by or to user %d: %w", userID, err)
	}
	roots, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting comments by user %d: %w", userID, err)
	}

	n1, err := rowsAffected(replies)
	if err != nil {
		return 0, err
	}
	n2, err := rowsAffected(roots)
	if err != nil {
		return 0, err
	}
	return n1 + n2, nil
}
