// Package service contains the business logic layer of the blog.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// ONE OPERATION, ONE TRANSACTION:
// Every exported method runs its reads and writes inside a single
// store.Atomic call. A typed failure raised halfway (say, a duplicate like
// discovered after the post was loaded) rolls back everything the method
// did, so callers never see a half-applied operation.
//
// EXPLICIT IDENTITY:
// Methods that act on behalf of a caller take the caller's email as a plain
// argument. The HTTP layer reads it from the JWT; the services never look at
// the request context themselves.
//
// EXPLICIT CASCADES:
// The database has no ON DELETE CASCADE. Deleting a post or a user issues
// the dependent deletes here, in order (see deletePost and
// UserService.DeleteUser); the foreign keys turn a forgotten step into an
// error instead of orphaned rows.
package service

import (
	"context"
	"fmt"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/auth"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/repository"
)

// Pagination defaults for post listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// caller resolves the acting user. An empty email means the request was
// anonymous; an unknown email is NotFound.
func caller(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	if email == "" {
		return nil, apperror.LoginRequired()
	}
	return tx.Users().GetByEmail(ctx, email)
}

// authors resolves and caches Author projections by user id while one
// operation builds a response.
type authors struct {
	tx    repository.Tx
	users map[int64]model.Author
	blogs map[int64]model.Author
}

func newAuthors(tx repository.Tx) *authors {
	return &authors{
		tx:    tx,
		users: make(map[int64]model.Author),
		blogs: make(map[int64]model.Author),
	}
}

func (a *authors) user(ctx context.Context, userID int64) (model.Author, error) {
	if au, ok := a.users[userID]; ok {
		return au, nil
	}
	u, err := a.tx.Users().GetByID(ctx, userID)
	if err != nil {
		return model.Author{}, err
	}
	au := model.AuthorOf(u)
	a.users[userID] = au
	return au, nil
}

// blog returns the owner of blogID.
func (a *authors) blog(ctx context.Context, blogID int64) (model.Author, error) {
	if au, ok := a.blogs[blogID]; ok {
		return au, nil
	}
	b, err := a.tx.Blogs().GetByID(ctx, blogID)
	if err != nil {
		return model.Author{}, err
	}
	au, err := a.user(ctx, b.UserID)
	if err != nil {
		return model.Author{}, err
	}
	a.blogs[blogID] = au
	return au, nil
}

// hashPassword rejects passwords over bcrypt's byte limit as a client error.
// Any other hashing failure is unexpected and stays on the 500 path.
func hashPassword(passwords *auth.PasswordService, plaintext string) (string, error) {
	if len(plaintext) > auth.MaxPasswordBytes {
		return "", apperror.InvalidValue("password", fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes))
	}
	hash, err := passwords.Hash(plaintext)
	if err != nil {
		return "", fmt.Errorf("service: hashing password: %w", err)
	}
	return hash, nil
}
