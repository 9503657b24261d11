// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package media

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
)

// SaveTemp copies an uploaded file into dir and returns the local path. The
// original extension is kept so the image host can sniff the type.
func SaveTemp(dir, filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}

	f, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", oops.Code("UPLOAD_TEMP_FAILED").With("dir", dir).Wrap(err)
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", oops.Code("UPLOAD_TEMP_FAILED").With("path", f.Name()).Wrap(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", oops.Code("UPLOAD_TEMP_FAILED").With("path", f.Name()).Wrap(err)
	}

	return f.Name(), nil
}
