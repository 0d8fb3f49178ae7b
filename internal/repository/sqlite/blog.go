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

var _ repository.BlogRepository = (*BlogRepo)(nil)

type BlogRepo struct {
	q querier
}

func (r *BlogRepo) Create(ctx context.Context, blog *model.Blog) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO blogs (user_id, created_at) VALUES (?, ?)`,
		blog.UserID, blog.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("blog").Wrap(err)
		}
		return fmt.Errorf("sqlite: inserting blog (userID=%d): %w", blog.UserID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading blog id: %w", err)
	}
	blog.ID = id
	return nil
}

func (r *BlogRepo) GetByID(ctx context.Context, id int64) (*model.Blog, error) {
	var b model.Blog
	err := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, created_at FROM blogs WHERE id = ?`, id,
	).Scan(&b.ID, &b.UserID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.BlogNotFoundByID(id)
		}
		return nil, fmt.Errorf("sqlite: getting blog %d: %w", id, err)
	}
	return &b, nil
}

func (r *BlogRepo) GetByUserID(ctx context.Context, userID int64) (*model.Blog, error) {
	var b model.Blog
	err := r.q.QueryRowContext(ctx,
		`SELECT id, user_id, created_at FROM blogs WHERE user_id = ?`, userID,
	).Scan(&b.ID, &b.UserID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.BlogNotFound(userID)
		}
		return nil, fmt.Errorf("sqlite: getting blog for user %d: %w", userID, err)
	}
	return &b, nil
}

func (r *BlogRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting blog %d: %w", id, err)
	}
	return nil
}
