// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T) string {
	t.Helper()
	path, err := SaveTemp(t.TempDir(), "cat.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	return path
}

func TestSaveTempKeepsExtension(t *testing.T) {
	path := writeTemp(t)
	assert.Equal(t, ".png", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func newTestCloudinary(t *testing.T, prefix string) *Cloudinary {
	t.Helper()
	c, err := NewCloudinary(CloudinaryConfig{CloudName: "demo", APIKey: "key", APISecret: "secret", UploadPrefix: prefix})
	require.NoError(t, err)
	require.True(t, c.Configured())
	return c
}

func TestCloudinaryUpload(t *testing.T) {
	var gotPath, gotKey, gotSignature, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			gotKey = r.FormValue("api_key")
			gotSignature = r.FormValue("signature")
			if f, _, err := r.FormFile("file"); err == nil {
				data, _ := io.ReadAll(f)
				gotFile = string(data)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"public_id":"abc","url":"http://res/abc.png","secure_url":"https://res/abc.png"}`))
	}))
	defer srv.Close()

	c := newTestCloudinary(t, srv.URL)

	path := writeTemp(t)
	url, err := c.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://res/abc.png", url)
	assert.Contains(t, gotPath, "/demo/")
	assert.True(t, strings.HasSuffix(gotPath, "/upload"), "unexpected upload path %q", gotPath)
	assert.Equal(t, "key", gotKey)
	assert.NotEmpty(t, gotSignature, "uploads must be signed")
	assert.Equal(t, "png-bytes", gotFile)

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "local file should be removed after upload")
}

func TestCloudinaryUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid Signature"}}`))
	}))
	defer srv.Close()

	c := newTestCloudinary(t, srv.URL)

	path := writeTemp(t)
	_, err := c.Upload(context.Background(), path)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "local file should be removed after a failed upload")
}

func TestCloudinaryNotConfigured(t *testing.T) {
	c, err := NewCloudinary(CloudinaryConfig{CloudName: "demo"})
	require.NoError(t, err)
	assert.False(t, c.Configured())

	path := writeTemp(t)
	_, err = c.Upload(context.Background(), path)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestCloudinaryUploadWithoutPath(t *testing.T) {
	c := newTestCloudinary(t, "http://127.0.0.1:1")
	_, err := c.Upload(context.Background(), "")
	require.Error(t, err)
}

type stubUploader struct{ err error }

func (s stubUploader) Upload(context.Context, string) (string, error) {
	return "https://res/x.png", s.err
}

func TestObserved(t *testing.T) {
	var seen []error
	u := Observed(stubUploader{}, func(err error) { seen = append(seen, err) })
	_, _ = u.Upload(context.Background(), "a")

	failing := Observed(stubUploader{err: ErrNotConfigured}, func(err error) { seen = append(seen, err) })
	_, err := failing.Upload(context.Background(), "b")

	assert.ErrorIs(t, err, ErrNotConfigured)
	require.Len(t, seen, 2)
	assert.NoError(t, seen[0])
	assert.ErrorIs(t, seen[1], ErrNotConfigured)
}
