package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blog-backend/internal/apperror"
	"github.com/sakif/blog-backend/internal/auth"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestStatusForCoversEveryKind(t *testing.T) {
	for _, k := range apperror.Kinds {
		status, ok := statusFor(k)
		assert.True(t, ok, "kind %s has no HTTP status", k)
		assert.GreaterOrEqual(t, status, 400, "kind %s", k)
		assert.Less(t, status, 500, "kind %s", k)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"not found", apperror.PostNotFound(7), http.StatusNotFound, "post not found: id=7"},
		{"forbidden", apperror.NotPostOwner(), http.StatusForbidden, "only the author can modify this post"},
		{"duplicate", apperror.DuplicateLike(), http.StatusConflict, "post already liked"},
		{"bad request", apperror.SelfFollow(), http.StatusBadRequest, "cannot follow yourself"},
		{"unauthorized", apperror.LoginRequired(), http.StatusUnauthorized, "login required"},
		{"invalid credentials", apperror.InvalidPassword(), http.StatusUnauthorized, "password does not match"},
		{"validation", apperror.ValidationFailed("email", "email: required"), http.StatusBadRequest, "email: required"},
		{
			"wrapped app error keeps its message",
			fmt.Errorf("service: deleting post 3: %w", apperror.PostNotFound(3)),
			http.StatusNotFound,
			"post not found: id=3",
		},
		{
			"login failure is normalized",
			fmt.Errorf("service: login: %w", fmt.Errorf("%w: %w", auth.ErrBadCredentials, apperror.UnknownIdentity("x@y.z"))),
			http.StatusUnauthorized,
			"authentication failed",
		},
		{
			"unexpected error hides details",
			errors.New("sqlite: database is locked"),
			http.StatusInternalServerError,
			"internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, discard, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			body := decodeError(t, rr)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, http.StatusText(tt.wantStatus), body.Error)
			assert.Equal(t, tt.wantMessage, body.Message)

			_, err := time.Parse(time.RFC3339, body.Timestamp)
			assert.NoError(t, err, "timestamp %q", body.Timestamp)
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantKind  apperror.Kind
		wantField string
		wantMsg   string
	}{
		{"malformed json", `{"email":`, apperror.KindBadRequest, "request body", "request body: invalid format"},
		{"empty body", ``, apperror.KindBadRequest, "request body", "request body: invalid format"},
		{"unknown field", `{"email":"a@x.com","password":"password-1","nickname":"al","admin":true}`, apperror.KindBadRequest, "request body", "request body: invalid format"},
		{"trailing value", `{"email":"a@x.com","password":"password-1","nickname":"al"} {"x":1}`, apperror.KindBadRequest, "request body", "request body: invalid format"},
		{"trailing brace", `{"email":"a@x.com","password":"password-1","nickname":"al"}}`, apperror.KindBadRequest, "request body", "request body: invalid format"},
		{"missing email", `{"password":"password-1","nickname":"al"}`, apperror.KindValidation, "email", "email: required"},
		{"bad email", `{"email":"nope","password":"password-1","nickname":"al"}`, apperror.KindValidation, "email", "email: must be a valid email"},
		{"short password", `{"email":"a@x.com","password":"short","nickname":"al"}`, apperror.KindValidation, "password", "password: must be at least 8 characters"},
		{"long nickname", `{"email":"a@x.com","password":"password-1","nickname":"` + strings.Repeat("n", 21) + `"}`, apperror.KindValidation, "nickname", "nickname: must be at most 20 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst signupRequest

			err := decodeAndValidate(httptest.NewRecorder(), req, &dst)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantKind, appErr.Kind)
			assert.Equal(t, tt.wantField, appErr.Field)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/",
			strings.NewReader(`{"email":"a@x.com","password":"password-1","nickname":"alice"}`))
		var dst signupRequest

		require.NoError(t, decodeAndValidate(httptest.NewRecorder(), req, &dst))
		assert.Equal(t, "alice", dst.Nickname)
	})

	t.Run("optional pointer fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`))
		var dst updateUserRequest
		require.NoError(t, decodeAndValidate(httptest.NewRecorder(), req, &dst))
		assert.Nil(t, dst.Nickname)

		req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"nickname":"x"}`))
		err := decodeAndValidate(httptest.NewRecorder(), req, &dst)
		assert.True(t, errors.Is(err, apperror.ErrValidation))
	})
}
