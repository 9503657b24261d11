// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/thinkshare/thinkshare/apperr"
	"github.com/thinkshare/thinkshare/media"
)

// maxUploadBytes bounds multipart request bodies.
const maxUploadBytes = 10 << 20

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// parseMultipart reads a multipart form and saves the optional file in
// field to dir. The returned path is "" when no file was sent.
func parseMultipart(w http.ResponseWriter, r *http.Request, field, dir string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", apperr.Wrap(apperr.InvalidInput, "Invalid multipart form", err)
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Wrap(apperr.InvalidInput, "Invalid file upload", err)
	}
	defer file.Close()

	path, err := media.SaveTemp(dir, header.Filename, file)
	if err != nil {
		return "", err
	}
	return path, nil
}

// cleanupForm removes multipart spill files once the handler is done.
func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}
