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

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo stores users. It runs on whatever querier it was built with: the
// pool (DB.Repos) or a transaction (DB.Atomic).
type UserRepo struct {
	q querier
}

const userColumns = `id, email, password_hash, nickname, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nickname, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts user and sets user.ID.
//
// A UNIQUE violation becomes DuplicateEmail or DuplicateNickname depending on
// which column SQLite names in the message ("UNIQUE constraint failed:
// users.nickname"). The service checks both beforehand; this covers the race
// where two signups pass the check at the same time.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, nickname, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Email,
		user.PasswordHash,
		user.Nickname,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return userConflict(user, err)
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user id: %w", err)
	}
	user.ID = id
	return nil
}

func userConflict(user *model.User, err error) error {
	if strings.Contains(err.Error(), "users.nickname") {
		return apperror.DuplicateNickname(user.Nickname).Wrap(err)
	}
	return apperror.DuplicateEmail(user.Email).Wrap(err)
}

// GetByID returns apperror.UserNotFound if no user has that id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.UserNotFound(id)
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// GetByEmail returns apperror.UserNotFoundByEmail if no user has that email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.UserNotFoundByEmail(email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}
	return u, nil
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM users WHERE email = ?`, email)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking email %s: %w", email, err)
	}
	return n > 0, nil
}

func (r *UserRepo) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	n, err := count(ctx, r.q, `SELECT COUNT(*) FROM users WHERE nickname = ?`, nickname)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking nickname %s: %w", nickname, err)
	}
	return n > 0, nil
}

// Update writes nickname, password hash and updated_at.
func (r *UserRepo) Update(ctx context.Context, user *model.User) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET nickname = ?, password_hash = ?, updated_at = ? WHERE id = ?`,
		user.Nickname,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return userConflict(user, err)
		}
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.UserNotFound(user.ID)
	}
	return nil
}

// Delete removes the user row only. Blog, posts, comments, likes and follows
// must already be gone, otherwise the foreign keys reject the delete.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.UserNotFound(id)
	}
	return nil
}
