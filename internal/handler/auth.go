package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/blog-backend/internal/auth"
	"github.com/sakif/blog-backend/internal/model"
	"github.com/sakif/blog-backend/internal/service"
)

// AuthHandler manages signup, login and the session cookie.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignup → create a user (and its blog)
//   - HandleLogin  → verify credentials, issue JWT, set the cookie
//   - HandleLogout → clear the JWT cookie
//   - HandleMe     → return the currently logged-in user's profile
type AuthHandler struct {
	auth         *service.AuthService
	tokenTTL     time.Duration
	cookieSecure bool
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. tokenTTL sets the cookie lifetime
// so the browser drops the cookie when the token inside it expires.
func NewAuthHandler(
	authService *service.AuthService,
	tokenTTL time.Duration,
	cookieSecure bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:         authService,
		tokenTTL:     tokenTTL,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Nickname string `json:"nickname" validate:"required,min=2,max=20"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User  model.UserResponse `json:"user"`
	Token string             `json:"token"`
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/v1/auth/signup
// REQUEST BODY: {"email": "a@x.com", "password": "...", "nickname": "alice"}
// RESPONSE: 201 + UserResponse
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.auth.Signup(r.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin checks credentials and sets the session cookie.
//
// HTTP: POST /api/v1/auth/login
//
// The token is returned in the body as well, for API clients that send it
// back as "Authorization: Bearer <token>" instead of using cookies.
//
// COOKIE FLAGS:
//   - HttpOnly: JavaScript cannot read this cookie (XSS protection)
//   - SameSite=Lax: sent on top-level navigations but not cross-site POSTs
//   - Secure: from COOKIE_SECURE; must be true behind HTTPS
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{User: result.User, Token: result.Token})
}

// HandleLogout clears the JWT cookie, effectively logging the user out.
//
// HTTP: POST /api/v1/auth/logout
//
// WHY POST AND NOT GET?
// Logout is a state-changing operation. Using GET would be vulnerable to
// CSRF and to browsers pre-fetching the URL.
//
// Since we're stateless (JWT), "logout" just means deleting the client-side
// cookie. The token remains technically valid until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// ResolveUser runs after auth.RequireAuth and checks that the token's
// subject still exists. A token that outlives its account (deleted user)
// gets the same 401 "unknown email" on every protected route instead of a
// 404 from whichever service happens to look the caller up.
func (h *AuthHandler) ResolveUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, _ := auth.EmailFromContext(r.Context())
		if _, err := h.auth.LoadUserByUsername(r.Context(), email); err != nil {
			writeError(w, h.logger, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleMe returns the current user's profile.
//
// HTTP: GET /api/v1/auth/me (behind RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())

	user, err := h.auth.GetUserInfo(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
