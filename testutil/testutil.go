// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/thinkshare/thinkshare/auth"
	"github.com/thinkshare/thinkshare/cliparse"
	"github.com/thinkshare/thinkshare/db"
	"github.com/thinkshare/thinkshare/models"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

var (
	hashOnce  sync.Once
	hashValue string
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        ":memory:",
		DatabaseType:       "sqlite",
		AccessTokenSecret:  "test-access-secret",
		RefreshTokenSecret: "test-refresh-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 360 * time.Hour,
		CORSOrigin:         "http://localhost:5173",
		UploadDir:          os.TempDir(),
		LogFormat:          "text",
		AIRateLimit:        10,
	}
}

// NewTestIssuer builds a token issuer from GetTestConfig.
func NewTestIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()

	cfg := GetTestConfig()
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshTTL:    cfg.RefreshTokenExpiry,
	})
	if err != nil {
		t.Fatalf("Failed to create token issuer: %v", err)
	}
	return issuer
}

// PasswordHash returns an argon2id hash of TestPassword, computed once.
func PasswordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := auth.NewArgon2idHasher().Hash(TestPassword)
		if err != nil {
			panic(err)
		}
		hashValue = h
	})
	return hashValue
}

// CreateTestUser inserts a user with TestPassword and returns it.
func CreateTestUser(t *testing.T, conn *sql.DB, fullName, email string) *models.User {
	t.Helper()

	now := time.Now().UTC()
	user := &models.User{
		ID:           auth.NewID(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: PasswordHash(t),
		Avatar:       "https://img.example.com/" + email + ".png",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := conn.Exec(`
		INSERT INTO app_user (id, full_name, email, password_hash, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.FullName, user.Email, user.PasswordHash, user.Avatar, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestArticle inserts an article owned by authorID and returns its ID.
func CreateTestArticle(t *testing.T, conn *sql.DB, authorID, title string) string {
	t.Helper()

	id := auth.NewID()
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO article (id, title, content, image, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, title, "<p>"+title+"</p>", "https://img.example.com/"+id+".png", authorID, now, now)
	if err != nil {
		t.Fatalf("Failed to create test article: %v", err)
	}

	return id
}

// AccessTokenFor signs an access token for userID.
func AccessTokenFor(t *testing.T, issuer *auth.TokenIssuer, userID string) string {
	t.Helper()
	token, err := issuer.AccessToken(userID)
	if err != nil {
		t.Fatalf("Failed to sign access token: %v", err)
	}
	return token
}

// BearerHeader returns headers for MakeRequest carrying an access token.
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// FakeUploader records uploads and removes the local file like the real one.
type FakeUploader struct {
	mu    sync.Mutex
	Err   error
	Paths []string
}

func (f *FakeUploader) Upload(_ context.Context, localPath string) (string, error) {
	defer os.Remove(localPath)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Paths = append(f.Paths, localPath)
	if f.Err != nil {
		return "", f.Err
	}
	return fmt.Sprintf("https://img.example.com/upload-%d.png", len(f.Paths)), nil
}

// Calls returns the number of uploads attempted.
func (f *FakeUploader) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Paths)
}

// FakeGenerator answers every prompt with Answer, or fails with Err.
type FakeGenerator struct {
	mu      sync.Mutex
	Answer  string
	Err     error
	Prompts []string
}

func (f *FakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Answer, nil
}

// TempFile writes data to a file under t.TempDir and returns its path.
func TempFile(t *testing.T, name, data string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), name)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := f.WriteString(data); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	f.Close()
	return f.Name()
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeMultipartRequest creates a multipart/form-data request. A non-empty
// fileField attaches a small PNG-named file under that field.
func MakeMultipartRequest(method, path string, fields map[string]string, fileField string, headers map[string]string) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	if fileField != "" {
		part, _ := w.CreateFormFile(fileField, "image.png")
		part.Write([]byte("\x89PNG fake image"))
	}
	w.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// DecodeData decodes the data field of a success envelope into v.
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) models.APIResponse {
	t.Helper()
	var env struct {
		models.APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
	if v != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("Failed to decode data field: %v (%s)", err, env.Data)
		}
	}
	return env.APIResponse
}
