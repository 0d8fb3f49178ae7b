// Package apperror defines the typed failures raised by the service layer.
//
// Every failure is an *AppError carrying a Kind. The set of kinds is closed:
// the HTTP layer switches over Kind to pick a status code, so adding a kind
// means adding a case there too. Anything that is not an *AppError is treated
// as unexpected (500).
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an AppError.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindDuplicate
	KindBadRequest
	KindUnauthorized
	KindInvalidCredentials
	KindValidation
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicate          = errors.New("duplicate")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("Validation Error")
)

// Kinds lists every Kind. Tests use it to check the HTTP mapping is total.
var Kinds = []Kind{
	KindNotFound,
	KindForbidden,
	KindDuplicate,
	KindBadRequest,
	KindUnauthorized,
	KindInvalidCredentials,
	KindValidation,
}

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindDuplicate:
		return "duplicate"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindValidation:
		return "validation"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// sentinel returns the package-level error matching k, so errors.Is keeps
// working on wrapped AppErrors.
func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindForbidden:
		return ErrForbidden
	case KindDuplicate:
		return ErrDuplicate
	case KindBadRequest:
		return ErrBadRequest
	case KindUnauthorized:
		return ErrUnauthorized
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	case KindValidation:
		return ErrValidation
	}
	return nil
}

type AppError struct {
	Kind    Kind
	Err     error  // underlying cause, if any
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *AppError) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind Kind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of the first AppError in err's chain.
func KindOf(err error) (Kind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}

// --- not found ---

func UserNotFound(id int64) *AppError {
	return newError(KindNotFound, "user not found: id=%d", id)
}

func UserNotFoundByEmail(email string) *AppError {
	return newError(KindNotFound, "user not found: email=%s", email)
}

func BlogNotFound(userID int64) *AppError {
	return newError(KindNotFound, "blog not found: userId=%d", userID)
}

func BlogNotFoundByID(id int64) *AppError {
	return newError(KindNotFound, "blog not found: id=%d", id)
}

func PostNotFound(id int64) *AppError {
	return newError(KindNotFound, "post not found: id=%d", id)
}

func CommentNotFound(id int64) *AppError {
	return newError(KindNotFound, "comment not found: id=%d", id)
}

func TagNotFound(name string) *AppError {
	return newError(KindNotFound, "tag not found: name=%s", name)
}

func LikeNotFound() *AppError {
	return newError(KindNotFound, "like not found")
}

func FollowNotFound() *AppError {
	return newError(KindNotFound, "follow relation not found")
}

// --- forbidden ---

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return newError(KindForbidden, "%s", message)
}

func NotPostOwner() *AppError {
	return Forbidden("only the author can modify this post")
}

func NotCommentOwner() *AppError {
	return Forbidden("only the author can modify this comment")
}

func NotAccountOwner() *AppError {
	return Forbidden("only the account owner can modify this account")
}

// --- duplicate ---

func Duplicate(resource string) *AppError {
	return newError(KindDuplicate, "%s already exists", resource)
}

func DuplicateEmail(email string) *AppError {
	return newError(KindDuplicate, "email already in use: email=%s", email)
}

func DuplicateNickname(nickname string) *AppError {
	return newError(KindDuplicate, "nickname already in use: nickname=%s", nickname)
}

func DuplicateFollow() *AppError {
	return newError(KindDuplicate, "already following this user")
}

func DuplicateLike() *AppError {
	return newError(KindDuplicate, "post already liked")
}

// --- bad request ---

func BadRequest(message string) *AppError {
	return newError(KindBadRequest, "%s", message)
}

func RequiredField(field string) *AppError {
	e := newError(KindBadRequest, "%s: required", field)
	e.Field = field
	return e
}

func InvalidFormat(field string) *AppError {
	e := newError(KindBadRequest, "%s: invalid format", field)
	e.Field = field
	return e
}

func InvalidValue(field, reason string) *AppError {
	e := newError(KindBadRequest, "%s: %s", field, reason)
	e.Field = field
	return e
}

func SelfFollow() *AppError {
	return newError(KindBadRequest, "cannot follow yourself")
}

func NestedReply() *AppError {
	return newError(KindBadRequest, "cannot reply to a reply")
}

// --- unauthorized ---

func LoginRequired() *AppError {
	return newError(KindUnauthorized, "login required")
}

// UnknownIdentity is raised when an identity (email) does not resolve to a user.
func UnknownIdentity(email string) *AppError {
	return newError(KindUnauthorized, "unknown email: %s", email)
}

// --- invalid credentials ---

func InvalidLogin() *AppError {
	return newError(KindInvalidCredentials, "email or password does not match")
}

func InvalidPassword() *AppError {
	return newError(KindInvalidCredentials, "password does not match")
}

// --- validation ---

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
		Field:   field,
	}
}

// Wrap attaches a cause to an AppError and returns it.
func (e *AppError) Wrap(cause error) *AppError {
	e.Err = cause
	return e
}
