// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/thinkshare/thinkshare/account"
	"github.com/thinkshare/thinkshare/apperr"
	"github.com/thinkshare/thinkshare/auth"
	"github.com/thinkshare/thinkshare/cliparse"
	"github.com/thinkshare/thinkshare/metrics"
	"github.com/thinkshare/thinkshare/middleware"
	"github.com/thinkshare/thinkshare/models"
)

type AuthHandler struct {
	accounts *account.Service
	cfg      cliparse.Config
	metrics  *metrics.Metrics
}

func NewAuthHandler(accounts *account.Service, cfg cliparse.Config, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{accounts: accounts, cfg: cfg, metrics: m}
}

// Register handles POST /auth/register (multipart with an avatar file)
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)

	avatarPath, err := parseMultipart(w, r, "avatar", h.cfg.UploadDir)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	user, pair, err := h.accounts.Register(r.Context(), account.RegisterInput{
		FullName:   r.FormValue("fullName"),
		Email:      r.FormValue("email"),
		Password:   r.FormValue("password"),
		Bio:        r.FormValue("bio"),
		Instagram:  r.FormValue("instagram"),
		LinkedIn:   r.FormValue("linkedin"),
		AvatarPath: avatarPath,
	})
	h.metrics.AuthEvent("register", err)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	middleware.Respond(w, http.StatusCreated, models.AuthResponse{User: *user, AccessToken: pair.AccessToken}, "Authentication successful")
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	user, pair, err := h.accounts.Login(r.Context(), req)
	h.metrics.AuthEvent("login", err)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	middleware.Respond(w, http.StatusOK, models.AuthResponse{User: *user, AccessToken: pair.AccessToken}, "Authentication successful")
}

// RefreshToken handles POST /auth/refresh-token. Only the cookie is read.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var presented string
	if c, err := r.Cookie(models.RefreshCookieName); err == nil {
		presented = c.Value
	}

	access, err := h.accounts.Refresh(r.Context(), presented)
	h.metrics.AuthEvent("refresh", err)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Respond(w, http.StatusOK, models.RefreshResponse{AccessToken: access}, "Access token refreshed")
}

// Logout handles POST /auth/logout (bearer)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	err := h.accounts.Logout(r.Context(), user.ID)
	h.metrics.AuthEvent("logout", err)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	h.clearRefreshCookie(w)
	middleware.Respond(w, http.StatusOK, nil, "Logged out successfully")
}

// Me handles GET /auth/me (bearer)
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	middleware.Respond(w, http.StatusOK, user, "Current user fetched")
}

// UpdateProfile handles PUT /auth/profile (bearer)
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.Respond(w, http.StatusOK, updated, "Profile updated")
}

// UpdateAvatar handles POST /auth/update-avatar (bearer, multipart)
func (h *AuthHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	avatarPath, err := parseMultipart(w, r, "avatar", h.cfg.UploadDir)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	updated, err := h.accounts.UpdateAvatar(r.Context(), user.ID, avatarPath)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.Respond(w, http.StatusOK, updated, "Avatar updated successfully")
}

func (h *AuthHandler) refreshCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     models.RefreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Production,
		SameSite: http.SameSiteLaxMode,
	}
	if h.cfg.Production {
		c.SameSite = http.SameSiteStrictMode
	}
	return c
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	ttl := h.cfg.RefreshTokenExpiry
	if ttl <= 0 {
		ttl = auth.DefaultRefreshTTL
	}
	http.SetCookie(w, h.refreshCookie(token, int(ttl.Seconds())))
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, h.refreshCookie("", -1))
}

// currentUser returns the user attached by RequireAuth, writing 401 if absent.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, r, apperr.New(apperr.Unauthenticated, "Unauthorized - No access token provided"))
	}
	return user, ok
}
