// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package media

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/samber/oops"
)

// ErrNotConfigured is returned by a Cloudinary uploader without credentials.
var ErrNotConfigured = errors.New("image host not configured")

// Uploader publishes a local file and returns its public URL. The local
// file is removed whether or not the upload succeeds.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// CloudinaryConfig holds image host credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string

	// UploadPrefix overrides https://api.cloudinary.com
	UploadPrefix string
	Timeout      time.Duration
}

// Cloudinary uploads files through the Cloudinary SDK.
type Cloudinary struct {
	cld     *cloudinary.Cloudinary
	timeout time.Duration
}

// NewCloudinary builds an uploader. Missing credentials are not an error;
// the uploader then rejects every upload with ErrNotConfigured.
func NewCloudinary(cfg CloudinaryConfig) (*Cloudinary, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	c := &Cloudinary{timeout: cfg.Timeout}
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return c, nil
	}

	conf, err := config.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, oops.Code("UPLOAD_CONFIG_INVALID").Wrap(err)
	}
	if cfg.UploadPrefix != "" {
		conf.API.UploadPrefix = cfg.UploadPrefix
	}
	if c.cld, err = cloudinary.NewFromConfiguration(*conf); err != nil {
		return nil, oops.Code("UPLOAD_CONFIG_INVALID").Wrap(err)
	}
	return c, nil
}

// Configured reports whether credentials are present.
func (c *Cloudinary) Configured() bool {
	return c.cld != nil
}

// Upload sends localPath with resource type "auto" and returns the secure URL.
func (c *Cloudinary) Upload(ctx context.Context, localPath string) (string, error) {
	if localPath == "" {
		return "", oops.Code("UPLOAD_NO_FILE").Errorf("no file to upload")
	}
	defer Discard(localPath)

	if !c.Configured() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{ResourceType: "auto"})
	if err != nil {
		return "", oops.Code("UPLOAD_REQUEST_FAILED").With("path", localPath).Wrap(err)
	}
	if res.Error.Message != "" {
		return "", oops.Code("UPLOAD_REJECTED").Errorf("image host rejected upload: %s", res.Error.Message)
	}

	url := res.SecureURL
	if url == "" {
		url = res.URL
	}
	if url == "" {
		return "", oops.Code("UPLOAD_NO_URL").Errorf("image host returned no url")
	}

	slog.InfoContext(ctx, "file uploaded", "public_id", res.PublicID, "url", url)
	return url, nil
}

// Discard removes a local upload file; a missing file is not an error.
func Discard(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove local upload", "path", path, "error", err)
	}
}

// ObserveFunc is called with the outcome of every upload.
type ObserveFunc func(err error)

type observed struct {
	next    Uploader
	observe ObserveFunc
}

// Observed wraps u so that fn sees the result of each upload.
func Observed(u Uploader, fn ObserveFunc) Uploader {
	return &observed{next: u, observe: fn}
}

func (o *observed) Upload(ctx context.Context, localPath string) (string, error) {
	url, err := o.next.Upload(ctx, localPath)
	o.observe(err)
	return url, err
}
