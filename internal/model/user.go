// Package model defines the entities of the blogging platform and the
// read-only projections handed back to callers.
//
// Entities carry their own creation defaults and mutation methods; the
// relationships between them (which rows must be created or destroyed
// together) are enforced by the service layer, one transaction at a time.
package model

import (
	"strings"
	"time"
)

// User is a registered account. Email and Nickname are unique across users.
//
// WHY PasswordHash HAS json:"-":
// The entity is never serialized directly, but the tag makes sure a stray
// writeJSON(w, user) can never leak the hash.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Nickname     string    `json:"nickname"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUser builds a User ready for insertion. The Blog that every user owns
// is created by the caller in the same transaction (see NewBlog).
func NewUser(email, passwordHash, nickname string) *User {
	now := time.Now()
	return &User{
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Nickname:     strings.TrimSpace(nickname),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ApplyUpdate changes the nickname and/or password hash. Empty values leave
// the field untouched. It reports whether anything changed.
func (u *User) ApplyUpdate(nickname, passwordHash string) bool {
	changed := false
	if nickname = strings.TrimSpace(nickname); nickname != "" && nickname != u.Nickname {
		u.Nickname = nickname
		changed = true
	}
	if passwordHash != "" {
		u.PasswordHash = passwordHash
		changed = true
	}
	if changed {
		u.UpdatedAt = time.Now()
	}
	return changed
}

// Blog is the single content container owned by a User (one-to-one).
type Blog struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewBlog builds the Blog for a freshly inserted user.
func NewBlog(userID int64) *Blog {
	return &Blog{UserID: userID, CreatedAt: time.Now()}
}
