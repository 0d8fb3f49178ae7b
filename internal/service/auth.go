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

// AuthService handles signup, login and identity resolution.
//
//	AuthHandler (HTTP) → AuthService → UserRepository / BlogRepository
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
type AuthService struct {
	store     repository.Store
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	store repository.Store,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

type SignupInput struct {
	Email    string
	Password string
	Nickname string
}

// AuthResult bundles the user and the issued JWT so the handler can set the
// cookie and respond in one step.
type AuthResult struct {
	User  model.UserResponse
	Token string
}

// Signup creates a user and its blog in one transaction: both rows exist
// afterwards or neither does.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (model.UserResponse, error) {
	// bcrypt is slow on purpose; hash before taking the connection.
	hash, err := hashPassword(s.passwords, in.Password)
	if err != nil {
		return model.UserResponse{}, err
	}

	var resp model.UserResponse
	err = s.store.Atomic(ctx, func(tx repository.Tx) error {
		user := model.NewUser(in.Email, hash, in.Nickname)

		taken, err := tx.Users().ExistsByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperror.DuplicateEmail(user.Email)
		}
		taken, err = tx.Users().ExistsByNickname(ctx, user.Nickname)
		if err != nil {
			return err
		}
		if taken {
			return apperror.DuplicateNickname(user.Nickname)
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		blog := model.NewBlog(user.ID)
		if err := tx.Blogs().Create(ctx, blog); err != nil {
			return err
		}

		resp = model.UserResponseOf(user, blog)
		return nil
	})
	if err != nil {
		return model.UserResponse{}, fmt.Errorf("service: signup: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", resp.UserID),
		slog.Int64("blog_id", resp.BlogID),
	)
	return resp, nil
}

// Login verifies email + password and issues a token.
//
// Both failure reasons wrap auth.ErrBadCredentials. The HTTP layer answers
// them with one fixed message so a client cannot tell an unknown email from
// a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp model.UserResponse
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := tx.Users().GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return fmt.Errorf("%w: %w", auth.ErrBadCredentials, apperror.UnknownIdentity(email))
			}
			return err
		}

		if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
			if errors.Is(err, auth.ErrPasswordMismatch) {
				return fmt.Errorf("%w: %w", auth.ErrBadCredentials, apperror.InvalidLogin())
			}
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
		return nil, fmt.Errorf("service: login: %w", err)
	}

	token, err := s.tokens.Generate(resp.Email)
	if err != nil {
		return nil, fmt.Errorf("service: login: %w", err)
	}

	s.logger.Info("user logged in", slog.Int64("user_id", resp.UserID))
	return &AuthResult{User: resp, Token: token}, nil
}

// LoadUserByUsername resolves an identity. An unknown email is an
// Unauthorized failure: the token was valid but its subject is gone.
func (s *AuthService) LoadUserByUsername(ctx context.Context, email string) (*model.User, error) {
	var user *model.User
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		var err error
		user, err = lookupIdentity(ctx, tx, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserInfo is the "who am I" call behind GET /auth/me.
func (s *AuthService) GetUserInfo(ctx context.Context, email string) (model.UserResponse, error) {
	var resp model.UserResponse
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		user, err := lookupIdentity(ctx, tx, email)
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

// ValidateToken returns the email a token was issued for.
func (s *AuthService) ValidateToken(token string) (string, error) {
	return s.tokens.Validate(token)
}

func lookupIdentity(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	user, err := tx.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.UnknownIdentity(email).Wrap(err)
		}
		return nil, err
	}
	return user, nil
}
