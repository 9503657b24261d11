// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thinkshare/thinkshare/models"
	"github.com/thinkshare/thinkshare/testutil"
)

func registerFields(email string) map[string]string {
	return map[string]string{
		"fullName": "Ada Lovelace",
		"email":    email,
		"password": "s3cret-pass",
		"bio":      "analyst",
	}
}

func findCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == models.RefreshCookieName {
			return c
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.MakeMultipartRequest("POST", "/api/v1/auth/register", registerFields("ada@example.com"), "avatar", nil)
	w := httptest.NewRecorder()
	env.auth.Register(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var data models.AuthResponse
	resp := testutil.DecodeData(t, w, &data)
	if !resp.Success || resp.StatusCode != http.StatusCreated {
		t.Errorf("Unexpected envelope: %+v", resp)
	}
	if data.AccessToken == "" {
		t.Error("Expected access token")
	}
	if data.User.Email != "ada@example.com" || data.User.Avatar == "" {
		t.Errorf("Unexpected user: %+v", data.User)
	}

	cookie := findCookie(w)
	if cookie == nil {
		t.Fatal("Expected refresh cookie")
	}
	if !cookie.HttpOnly {
		t.Error("Refresh cookie must be HttpOnly")
	}
	if cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("Expected Lax, non-secure cookie outside production, got secure=%v samesite=%v", cookie.Secure, cookie.SameSite)
	}
	if cookie.MaxAge != int(env.cfg.RefreshTokenExpiry.Seconds()) {
		t.Errorf("Expected MaxAge %d, got %d", int(env.cfg.RefreshTokenExpiry.Seconds()), cookie.MaxAge)
	}

	env.assertUploadsCleaned(t)
}

func TestRegister_ProductionCookie(t *testing.T) {
	env := newTestEnv(t)
	env.auth.cfg.Production = true

	req := testutil.MakeMultipartRequest("POST", "/api/v1/auth/register", registerFields("ada@example.com"), "avatar", nil)
	w := httptest.NewRecorder()
	env.auth.Register(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)
	cookie := findCookie(w)
	if cookie == nil || !cookie.Secure || cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("Expected Secure SameSite=Strict cookie in production, got %+v", cookie)
	}
}

func TestRegister_Errors(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateTestUser(t, env.db, "Existing", "taken@example.com")

	testCases := []struct {
		name           string
		fields         map[string]string
		file           string
		uploadErr      error
		expectedStatus int
	}{
		{"missing avatar", registerFields("new@example.com"), "", nil, http.StatusBadRequest},
		{"missing password", map[string]string{"fullName": "A", "email": "new@example.com"}, "avatar", nil, http.StatusBadRequest},
		{"duplicate email", registerFields("Taken@example.com"), "avatar", nil, http.StatusConflict},
		{"upload failure", registerFields("new@example.com"), "avatar", errors.New("cloud down"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env.uploader.Err = tc.uploadErr
			req := testutil.MakeMultipartRequest("POST", "/api/v1/auth/register", tc.fields, tc.file, nil)
			w := httptest.NewRecorder()
			env.auth.Register(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if findCookie(w) != nil {
				t.Error("No cookie expected on failure")
			}
			env.assertUploadsCleaned(t)
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/v1/auth/register", registerFields("json@example.com"), nil)
		w := httptest.NewRecorder()
		env.auth.Register(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "Alice", "alice@example.com")

	testCases := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"valid", models.LoginRequest{Email: "alice@example.com", Password: testutil.TestPassword}, http.StatusOK},
		{"email is case-insensitive", models.LoginRequest{Email: "ALICE@example.com", Password: testutil.TestPassword}, http.StatusOK},
		{"wrong password", models.LoginRequest{Email: "alice@example.com", Password: "nope"}, http.StatusUnauthorized},
		{"unknown email", models.LoginRequest{Email: "bob@example.com", Password: testutil.TestPassword}, http.StatusUnauthorized},
		{"missing fields", models.LoginRequest{Email: "alice@example.com"}, http.StatusBadRequest},
		{"invalid JSON", "not an object", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/v1/auth/login", tc.body, nil)
			w := httptest.NewRecorder()
			env.auth.Login(w, req)

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus != http.StatusOK {
				return
			}

			var data models.AuthResponse
			testutil.DecodeData(t, w, &data)
			if data.User.ID != user.ID || data.AccessToken == "" {
				t.Errorf("Unexpected login response: %+v", data)
			}
			if findCookie(w) == nil {
				t.Error("Expected refresh cookie")
			}
		})
	}
}

func TestRefreshAndLogout(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "Alice", "alice@example.com")

	// Login to get a refresh cookie
	w := httptest.NewRecorder()
	env.auth.Login(w, testutil.MakeRequest("POST", "/api/v1/auth/login",
		models.LoginRequest{Email: "alice@example.com", Password: testutil.TestPassword}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	cookie := findCookie(w)
	if cookie == nil {
		t.Fatal("Expected refresh cookie")
	}

	refresh := func(c *http.Cookie) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("POST", "/api/v1/auth/refresh-token", nil, nil)
		if c != nil {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		env.auth.RefreshToken(w, req)
		return w
	}

	w = refresh(cookie)
	testutil.AssertStatus(t, w, http.StatusOK)
	var data models.RefreshResponse
	testutil.DecodeData(t, w, &data)
	if data.AccessToken == "" {
		t.Error("Expected new access token")
	}
	if findCookie(w) != nil {
		t.Error("Refresh must not rotate the refresh cookie")
	}

	testutil.AssertStatus(t, refresh(nil), http.StatusUnauthorized)
	testutil.AssertStatus(t, refresh(&http.Cookie{Name: models.RefreshCookieName, Value: "garbage"}), http.StatusUnauthorized)

	// Logout clears the cookie and the stored token
	w = httptest.NewRecorder()
	env.auth.Logout(w, asUser(testutil.MakeRequest("POST", "/api/v1/auth/logout", nil, nil), user))
	testutil.AssertStatus(t, w, http.StatusOK)
	cleared := findCookie(w)
	if cleared == nil || cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Errorf("Expected cookie to be cleared, got %+v", cleared)
	}

	// The old refresh token no longer matches
	testutil.AssertStatus(t, refresh(cookie), http.StatusForbidden)

	// Logout again is fine
	w = httptest.NewRecorder()
	env.auth.Logout(w, asUser(testutil.MakeRequest("POST", "/api/v1/auth/logout", nil, nil), user))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestProfileAndAvatar(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db, "Alice", "alice@example.com")

	w := httptest.NewRecorder()
	env.auth.UpdateProfile(w, asUser(testutil.MakeRequest("PUT", "/api/v1/auth/profile",
		map[string]string{"bio": "writer", "linkedin": "in/alice"}, nil), user))
	testutil.AssertStatus(t, w, http.StatusOK)

	var updated models.User
	testutil.DecodeData(t, w, &updated)
	if updated.Bio != "writer" || updated.LinkedIn != "in/alice" || updated.Instagram != "" {
		t.Errorf("Unexpected profile: %+v", updated)
	}

	w = httptest.NewRecorder()
	env.auth.UpdateAvatar(w, asUser(testutil.MakeMultipartRequest("POST", "/api/v1/auth/update-avatar", nil, "avatar", nil), user))
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.DecodeData(t, w, &updated)
	if updated.Avatar != "https://img.example.com/upload-1.png" {
		t.Errorf("Unexpected avatar: %s", updated.Avatar)
	}
	env.assertUploadsCleaned(t)

	w = httptest.NewRecorder()
	env.auth.UpdateAvatar(w, asUser(testutil.MakeMultipartRequest("POST", "/api/v1/auth/update-avatar", nil, "", nil), user))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = httptest.NewRecorder()
	env.auth.Me(w, asUser(testutil.MakeRequest("GET", "/api/v1/auth/me", nil, nil), user))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestProtectedHandlersWithoutUser(t *testing.T) {
	env := newTestEnv(t)

	handlers := map[string]http.HandlerFunc{
		"logout":  env.auth.Logout,
		"me":      env.auth.Me,
		"profile": env.auth.UpdateProfile,
		"like":    env.articles.ToggleLike,
		"delete":  env.articles.Delete,
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h(w, testutil.MakeRequest("POST", "/", nil, nil))
			testutil.AssertStatus(t, w, http.StatusUnauthorized)
		})
	}
}
