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

var _ repository.FollowRepository = (*FollowRepo)(nil)

type FollowRepo struct {
	q querier
}

// Create maps the UNIQUE pair to DuplicateFollow and the CHECK
// (follower_id <> following_id) to SelfFollow.
func (r *FollowRepo) Create(ctx context.Context, f *model.Follow) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
		f.FollowerID, f.FollowingID, f.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperror.DuplicateFollow().Wrap(err)
		case isCheckViolation(err):
			return apperror.SelfFollow().Wrap(err)
		}
		return fmt.Errorf("sqlite: inserting follow (%d -> %d): %w", f.FollowerID, f.FollowingID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading follow id: %w", err)
	}
	f.ID = id
	return nil
}

func (r *FollowRepo) Get(ctx context.Context, followerID, followingID int64) (*model.Follow, error) {
	var f model.Follow
	err := r.q.QueryRowContext(ctx,
		`SELECT id, follower_id, following_id, created_at FROM follows
		 WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID,
	).Scan(&f.ID, &f.FollowerID, &f.FollowingID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.FollowNotFound()
		}
		return nil, fmt.Errorf("sqlite: getting follow (%d -> %d): %w", followerID, followingID, err)
	}
	return &f, nil
}

func (r *FollowRepo) Exists(ctx context.Context, followerID, followingID int64) (bool, error) {
	n, err := count(ctx, r.q,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking follow (%d -> %d): %w", followerID, followingID, err)
	}
	return n > 0, nil
}

// CountFollowers counts users following userID.
func (r *FollowRepo) CountFollowers(ctx context.Context, userID int64) (int, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM follows WHERE following_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting followers of %d: %w", userID, err)
	}
	return n, nil
}

// CountFollowings counts users that userID follows.
func (r *FollowRepo) CountFollowings(ctx context.Context, userID int64) (int, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM follows WHERE follower_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting followings of %d: %w", userID, err)
	}
	return n, nil
}

func (r *FollowRepo) ListFollowers(ctx context.Context, userID int64) ([]model.User, error) {
	return r.listUsers(ctx,
		`SELECT u.id, u.email, u.password_hash, u.nickname, u.created_at, u.updated_at
		 FROM follows f JOIN users u ON u.id = f.follower_id
		 WHERE f.following_id = ? ORDER BY f.id`, userID)
}

func (r *FollowRepo) ListFollowings(ctx context.Context, userID int64) ([]model.User, error) {
	return r.listUsers(ctx,
		`SELECT u.id, u.email, u.password_hash, u.nickname, u.created_at, u.updated_at
		 FROM follows f JOIN users u ON u.id = f.following_id
		 WHERE f.follower_id = ? ORDER BY f.id`, userID)
}

func (r *FollowRepo) listUsers(ctx context.Context, query string, userID int64) ([]model.User, error) {
	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing follow users of %d: %w", userID, err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *FollowRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM follows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting follow %d: %w", id, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.FollowNotFound()
	}
	return nil
}

func (r *FollowRepo) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? OR following_id = ?`, userID, userID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting follows of user %d: %w", userID, err)
	}
	return rowsAffected(res)
}
