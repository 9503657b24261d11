// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"os"
	"testing"

	"github.com/thinkshare/thinkshare/account"
	"github.com/thinkshare/thinkshare/articles"
	"github.com/thinkshare/thinkshare/auth"
	"github.com/thinkshare/thinkshare/cliparse"
	"github.com/thinkshare/thinkshare/models"
	"github.com/thinkshare/thinkshare/store"
	"github.com/thinkshare/thinkshare/testutil"
)

type testEnv struct {
	db       *sql.DB
	cfg      cliparse.Config
	store    *store.SQLStore
	issuer   *auth.TokenIssuer
	uploader *testutil.FakeUploader
	auth     *AuthHandler
	articles *ArticleHandler
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.UploadDir = t.TempDir()

	st := store.New(db)
	issuer := testutil.NewTestIssuer(t)
	up := &testutil.FakeUploader{}

	return testEnv{
		db:       db,
		cfg:      cfg,
		store:    st,
		issuer:   issuer,
		uploader: up,
		auth:     NewAuthHandler(account.NewService(st, issuer, auth.NewArgon2idHasher(), up), cfg, nil),
		articles: NewArticleHandler(articles.NewService(st, up), cfg),
	}
}

// asUser attaches user to the request as the auth middleware would.
func asUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), user))
}

// assertUploadsCleaned checks that no temp upload is left behind.
func (e testEnv) assertUploadsCleaned(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(e.cfg.UploadDir)
	if err != nil {
		t.Fatalf("Failed to read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected upload dir to be empty, found %d files", len(entries))
	}
}
