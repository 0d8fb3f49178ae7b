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

var _ repository.LikeRepository = (*LikeRepo)(nil)

type LikeRepo struct {
	q querier
}

// Create maps the (user_id, post_id) UNIQUE violation to DuplicateLike.
func (r *LikeRepo) Create(ctx context.Context, like *model.Like) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, ?)`,
		like.UserID, like.PostID, like.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateLike().Wrap(err)
		}
		return fmt.Errorf("sqlite: inserting like (user=%d, post=%d): %w", like.UserID, like.PostID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading like id: %w", err)
	}
	like.ID = id
	return nil
}

func (r *LikeRepo) Get(ctx context.Context, userID, postID int64) (*model.Like, error) {
	var l model.Like
	err := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, post_id, created_at FROM likes WHERE user_id = ? AND post_id = ?`,
		userID, postID,
	).Scan(&l.ID, &l.UserID, &l.PostID, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.LikeNotFound()
		}
		return nil, fmt.Errorf("sqlite: getting like (user=%d, post=%d): %w", userID, postID, err)
	}
	return &l, nil
}

func (r *LikeRepo) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	n, err := count(ctx, r.q,
		`SELECT COUNT(*) FROM likes WHERE user_id = ? AND post_id = ?`, userID, postID)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking like (user=%d, post=%d): %w", userID, postID, err)
	}
	return n > 0, nil
}

func (r *LikeRepo) CountByPost(ctx context.Context, postID int64) (int, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting likes for post %d: %w", postID, err)
	}
	return n, nil
}

func (r *LikeRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM likes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting like %d: %w", id, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.LikeNotFound()
	}
	return nil
}

func (r *LikeRepo) DeleteByPost(ctx context.Context, postID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM likes WHERE post_id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting likes for post %d: %w", postID, err)
	}
	return rowsAffected(res)
}

func (r *LikeRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM likes WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting likes by user %d: %w", userID, err)
	}
	return rowsAffected(res)
}
