package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"refexcms/internal/httputil"
	"refexcms/internal/middleware"
	"refexcms/internal/models"
)

// Auth handles bearer token issuance.
type Auth struct {
	users  UserAuthenticator
	tokens TokenIssuer
}

// NewAuth creates a new Auth handler group.
func NewAuth(users UserAuthenticator, tokens TokenIssuer) *Auth {
	return &Auth{users: users, tokens: tokens}
}

// loginResponse is returned by a successful login.
type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Login exchanges email and password for a bearer token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := req.Validate(); err != nil {
		if fields, ok := fieldErrors(err); ok {
			httputil.RespondValidation(w, "invalid login request", fields)
			return
		}
		httputil.RespondDomainError(w, err)
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}
	// Same answer for unknown email and wrong password.
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		slog.Warn("login failed", "email", req.Email)
		httputil.RespondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, exp, err := a.tokens.Issue(user)
	if err != nil {
		httputil.RespondDomainError(w, err)
		return
	}

	slog.Info("user logged in", "email", user.Email, "role", user.Role)
	httputil.RespondJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, User: user})
}

// meResponse describes the caller as seen by the token.
type meResponse struct {
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	Permissions []string    `json:"permissions"`
	ExpiresAt   time.Time   `json:"expiresAt"`
}

// Me returns the identity carried by the bearer token.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	c := middleware.ClaimsFromCtx(r.Context())
	if c == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	resp := meResponse{Email: c.Email(), Role: c.Role, Permissions: c.Permissions}
	if c.ExpiresAt != nil {
		resp.ExpiresAt = c.ExpiresAt.Time
	}
	if resp.Permissions == nil {
		resp.Permissions = []string{}
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}
