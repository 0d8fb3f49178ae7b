package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/auth"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/repository"
)

type UserService struct {
	store     repository.Store
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(store repository.Store, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{store: store, passwords: passwords, logger: logger}
}

// UpdateUserInput is a partial update: nil fields are left alone.
type UpdateUserInput struct {
	Nickname *string
	Password *string
}

func (s *UserService) GetUser(ctx context.Context, id int64) (model.UserResponse, error) {
	var resp model.UserResponse
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		blog, err := tx.Blogs().GetByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		resp = model.UserResponseOf(user, blog)
		return nil
	})
	return resp, err
}

// loadOwnAccount loads user id and checks that callerEmail owns it.
// A missing user is reported before a foreign one.
func loadOwnAccount(ctx context.Context, tx repository.Tx, callerEmail string, id int64) (*model.User, error) {
	if callerEmail == "" {
		return nil, apperror.LoginRequired()
	}
	user, err := tx.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Email != callerEmail {
		return nil, apperror.NotAccountOwner()
	}
	return user, nil
}

// UpdateUser changes the nickname and/or password of the caller's own
// account. A new password is re-hashed; a taken nickname is Duplicate.
func (s *UserService) UpdateUser(ctx context.Context, callerEmail string, id int64, in UpdateUserInput) (model.UserResponse, error) {
	var newHash string
	if in.Password != nil {
		h, err := hashPassword(s.passwords, *in.Password)
		if err != nil {
			return model.UserResponse{}, err
		}
		newHash = h
	}

	var resp model.UserResponse
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := loadOwnAccount(ctx, tx, callerEmail, id)
		if err != nil {
			return err
		}

		var nickname string
		if in.Nickname != nil {
			nickname = *in.Nickname
		}
		before := user.Nickname
		if !user.ApplyUpdate(nickname, newHash) {
			blog, err := tx.Blogs().GetByUserID(ctx, user.ID)
			if err != nil {
				return err
			}
			resp = model.UserResponseOf(user, blog)
			return nil
		}

		if user.Nickname != before {
			taken, err := tx.Users().ExistsByNickname(ctx, user.Nickname)
			if err != nil {
				return err
			}
			if taken {
				return apperror.DuplicateNickname(user.Nickname)
			}
		}

		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		blog, err := tx.Blogs().GetByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		resp = model.UserResponseOf(user, blog)
		return nil
	})
	if err != nil {
		return model.UserResponse{}, fmt.Errorf("service: updating user %d: %w", id, err)
	}

	s.logger.Info("user updated", slog.Int64("user_id", id))
	return resp, nil
}

// DeleteUser removes the caller's account after checking the password.
//
// CASCADE ORDER (all in one transaction):
//  1. every post of the user's blog, each with its tag maps, comments, likes
//  2. the user's comments elsewhere, with every reply to them
//  3. the user's likes
//  4. follows in both directions
//  5. the blog, then the user
func (s *UserService) DeleteUser(ctx context.Context, callerEmail string, id int64, password string) error {
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := loadOwnAccount(ctx, tx, callerEmail, id)
		if err != nil {
			return err
		}

		if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
			if errors.Is(err, auth.ErrPasswordMismatch) {
				return apperror.InvalidPassword()
			}
			return err
		}

		blog, err := tx.Blogs().GetByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		postIDs, err := tx.Posts().ListIDsByBlog(ctx, blog.ID)
		if err != nil {
			return err
		}
		for _, postID := range postIDs {
			if err := deletePost(ctx, tx, postID); err != nil {
				return err
			}
		}

		if _, err := tx.Comments().DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if _, err := tx.Likes().DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if _, err := tx.Follows().DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.Blogs().Delete(ctx, blog.ID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, user.ID)
	})
	if err != nil {
		return fmt.Errorf("service: deleting user %d: %w", id, err)
	}

	s.logger.Info("user deleted", slog.Int64("user_id", id))
	return nil
}
