package apperror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// Table-driven: each case checks errors.Is against the kind sentinels.
func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "UserNotFound wraps ErrNotFound",
			err:       UserNotFound(999999),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("email", "email is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "DuplicateLike wraps ErrDuplicate",
			err:       DuplicateLike(),
			target:    ErrDuplicate,
			wantMatch: true,
		},
		{
			name:      "SelfFollow wraps ErrBadRequest",
			err:       SelfFollow(),
			target:    ErrBadRequest,
			wantMatch: true,
		},
		{
			name:      "InvalidPassword wraps ErrInvalidCredentials",
			err:       InvalidPassword(),
			target:    ErrInvalidCredentials,
			wantMatch: true,
		},
		{
			name:      "UnknownIdentity wraps ErrUnauthorized",
			err:       UnknownIdentity("nobody@example.com"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "NotPostOwner wraps ErrForbidden",
			err:       NotPostOwner(),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       PostNotFound(1),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "InvalidPassword does NOT match ErrUnauthorized",
			err:       InvalidPassword(),
			target:    ErrUnauthorized,
			wantMatch: false,
		},
		{
			name:      "wrapped with fmt.Errorf still matches",
			err:       fmt.Errorf("service: following: %w", DuplicateFollow()),
			target:    ErrDuplicate,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{"UserNotFound includes id", UserNotFound(999999), "user not found: id=999999"},
		{"UserNotFoundByEmail includes email", UserNotFoundByEmail("a@x.com"), "user not found: email=a@x.com"},
		{"PostNotFound includes id", PostNotFound(7), "post not found: id=7"},
		{"FollowNotFound is fixed", FollowNotFound(), "follow relation not found"},
		{"RequiredField names the field", RequiredField("title"), "title: required"},
		{"InvalidValue carries reason", InvalidValue("size", "must be positive"), "size: must be positive"},
		{"InvalidPassword is fixed", InvalidPassword(), "password does not match"},
		{"DuplicateEmail includes email", DuplicateEmail("a@x.com"), "email already in use: email=a@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", CommentNotFound(3))

	kind, ok := KindOf(wrapped)
	if !ok {
		t.Fatal("KindOf() did not find the AppError")
	}
	if kind != KindNotFound {
		t.Errorf("KindOf() = %v, want %v", kind, KindNotFound)
	}

	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf() should report false for a plain error")
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: likes.user_id, likes.post_id")
	err := DuplicateLike().Wrap(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if !errors.Is(err, ErrDuplicate) {
		t.Error("errors.Is(err, ErrDuplicate) = false, want true")
	}
	// The cause must never leak into the client-facing message.
	if strings.Contains(err.Error(), "UNIQUE") {
		t.Errorf("Error() = %q leaks the cause", err.Error())
	}
}

func TestEveryKindHasSentinelAndName(t *testing.T) {
	for _, k := range Kinds {
		if k.sentinel() == nil {
			t.Errorf("kind %d has no sentinel", int(k))
		}
		if strings.HasPrefix(k.String(), "kind(") {
			t.Errorf("kind %d has no name", int(k))
		}
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "email: must be a valid email")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
}
