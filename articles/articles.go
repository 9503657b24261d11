// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package articles implements article publishing with author-only mutation,
// like toggling and append-only comments.
package articles

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/thinkshare/thinkshare/apperr"
	"github.com/thinkshare/thinkshare/auth"
	"github.com/thinkshare/thinkshare/media"
	"github.com/thinkshare/thinkshare/models"
	"github.com/thinkshare/thinkshare/store"
)

// CreateInput is a new article. ImagePath is a local temp file.
type CreateInput struct {
	Title     string
	Content   string
	ImagePath string
}

// UpdateInput holds the fields to change. Empty strings leave the stored
// value in place; an empty ImagePath keeps the current image.
type UpdateInput struct {
	Title     string
	Content   string
	ImagePath string
}

// Service is the article service.
type Service struct {
	articles store.ArticleStore
	uploader media.Uploader
	now      func() time.Time
}

func NewService(articles store.ArticleStore, uploader media.Uploader) *Service {
	return &Service{articles: articles, uploader: uploader, now: time.Now}
}

// Create publishes a new article owned by author.
func (s *Service) Create(ctx context.Context, author *models.User, in CreateInput) (*models.Article, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" || in.ImagePath == "" {
		media.Discard(in.ImagePath)
		return nil, apperr.New(apperr.InvalidInput, "Title, content, and image are required")
	}

	image, err := s.upload(ctx, in.ImagePath)
	if err != nil {
		return nil, err
	}

	article := &models.Article{
		ID:      auth.NewID(),
		Title:   title,
		Content: in.Content,
		Image:   image,
		Author:  models.UserSummary{ID: author.ID, FullName: author.FullName, Avatar: author.Avatar},
	}
	if err := s.articles.CreateArticle(ctx, article); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "article created", "article_id", article.ID, "author_id", author.ID)
	return article, nil
}

// Get returns an article with author and commenters resolved.
func (s *Service) Get(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.GetArticle(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return article, nil
}

// ListAll returns every article, newest first.
func (s *Service) ListAll(ctx context.Context) ([]models.Article, error) {
	return s.articles.ListArticles(ctx, "")
}

// ListByAuthor returns the articles written by authorID, newest first.
func (s *Service) ListByAuthor(ctx context.Context, authorID string) ([]models.Article, error) {
	if authorID == "" {
		return nil, apperr.New(apperr.InvalidInput, "User id is required")
	}
	return s.articles.ListArticles(ctx, authorID)
}

const updateForbidden = "Unauthorized to update this article"

// AuthorizeUpdate reports NotFound or Forbidden before any update input is
// read, so a non-author is refused whatever the body contains.
func (s *Service) AuthorizeUpdate(ctx context.Context, id string, requester *models.User) error {
	_, err := s.owned(ctx, id, requester, updateForbidden)
	return err
}

// Update merges non-empty fields into the article. Only the author may update.
func (s *Service) Update(ctx context.Context, id string, requester *models.User, in UpdateInput) (*models.Article, error) {
	article, err := s.owned(ctx, id, requester, updateForbidden)
	if err != nil {
		media.Discard(in.ImagePath)
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		article.Title = title
	}
	if strings.TrimSpace(in.Content) != "" {
		article.Content = in.Content
	}
	if in.ImagePath != "" {
		image, err := s.upload(ctx, in.ImagePath)
		if err != nil {
			return nil, err
		}
		article.Image = image
	}

	if err := s.articles.UpdateArticle(ctx, article); err != nil {
		return nil, notFound(err)
	}

	slog.InfoContext(ctx, "article updated", "article_id", id)
	return article, nil
}

// Delete removes the article. Only the author may delete.
func (s *Service) Delete(ctx context.Context, id string, requester *models.User) error {
	if _, err := s.owned(ctx, id, requester, "Unauthorized to delete this article"); err != nil {
		return err
	}
	if err := s.articles.DeleteArticle(ctx, id); err != nil {
		return notFound(err)
	}

	slog.InfoContext(ctx, "article deleted", "article_id", id)
	return nil
}

// ToggleLike adds the requester to the like-set, or removes them if already
// present, and returns the resulting set.
func (s *Service) ToggleLike(ctx context.Context, id string, requester *models.User) ([]string, error) {
	likes, err := s.articles.ToggleLike(ctx, id, requester.ID)
	if err != nil {
		return nil, notFound(err)
	}
	return likes, nil
}

// AddComment appends a comment and returns the full comment list.
func (s *Service) AddComment(ctx context.Context, id string, requester *models.User, text string) ([]models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.New(apperr.InvalidInput, "Comment text is required")
	}

	comment := models.Comment{
		ID:        auth.NewID(),
		User:      models.UserSummary{ID: requester.ID, FullName: requester.FullName, Avatar: requester.Avatar},
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	comments, err := s.articles.AddComment(ctx, id, comment)
	if err != nil {
		return nil, notFound(err)
	}
	return comments, nil
}

// owned loads the article and checks that requester is its author.
func (s *Service) owned(ctx context.Context, id string, requester *models.User, forbidden string) (*models.Article, error) {
	article, err := s.articles.GetArticle(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if requester == nil || article.Author.ID != requester.ID {
		return nil, apperr.New(apperr.Forbidden, forbidden)
	}
	return article, nil
}

func (s *Service) upload(ctx context.Context, path string) (string, error) {
	url, err := s.uploader.Upload(ctx, path)
	if errors.Is(err, media.ErrNotConfigured) {
		return "", apperr.Wrap(apperr.Unavailable, "Image uploads are not configured", err)
	}
	if err != nil {
		return "", apperr.Wrap(apperr.UpstreamFailure, "Image upload failed", err)
	}
	return url, nil
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Wrap(apperr.NotFound, "Article not found", err)
	}
	return err
}
