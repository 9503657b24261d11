// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sethvargo/go-retry"

	"github.com/thinkshare/thinkshare/models"
)

func articlePath(id string) string {
	return "/article/" + url.PathEscape(id)
}

// ListArticles fetches every article and replaces the cache with them.
func (c *Client) ListArticles(ctx context.Context) ([]models.Article, error) {
	var list []models.Article
	if err := c.send(ctx, http.MethodGet, "/article/all", nil, false, &list); err != nil {
		return nil, err
	}
	c.articles.SetArticles(list)
	return list, nil
}

func (c *Client) ListByAuthor(ctx context.Context, authorID string) ([]models.Article, error) {
	var list []models.Article
	if err := c.send(ctx, http.MethodGet, "/article/user/"+url.PathEscape(authorID), nil, false, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetArticle fetches one article, retrying once after DefaultRetryDelay
// (or WithRetryDelay) if the first attempt fails.
func (c *Client) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	attempt := 0
	err := retry.Do(ctx, c.retryOnce(), func(ctx context.Context) error {
		attempt++
		err := c.send(ctx, http.MethodGet, articlePath(id), nil, false, &article)
		if err != nil {
			slog.DebugContext(ctx, "article fetch failed", "id", id, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.articles.Update(article)
	return &article, nil
}

// CreateArticle publishes an article; image is required by the server.
func (c *Client) CreateArticle(ctx context.Context, title, content string, image FileField) (*models.Article, error) {
	image.Field = "image"
	req, err := multipartRequest(http.MethodPost, "/article/create", map[string]string{
		"title":   title,
		"content": content,
	}, &image)
	if err != nil {
		return nil, err
	}

	var article models.Article
	if err := c.do(ctx, req, &article); err != nil {
		return nil, err
	}
	c.articles.Add(article)
	return &article, nil
}

// UpdateParams holds the fields to change. Empty strings and a nil Image
// leave the current value.
type UpdateParams struct {
	Title   string
	Content string
	Image   *FileField
}

func (c *Client) UpdateArticle(ctx context.Context, id string, p UpdateParams) (*models.Article, error) {
	var image *FileField
	if p.Image != nil {
		img := *p.Image
		img.Field = "image"
		image = &img
	}
	req, err := multipartRequest(http.MethodPut, articlePath(id), map[string]string{
		"title":   p.Title,
		"content": p.Content,
	}, image)
	if err != nil {
		return nil, err
	}

	var article models.Article
	if err := c.do(ctx, req, &article); err != nil {
		return nil, err
	}
	c.articles.Update(article)
	return &article, nil
}

func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, articlePath(id), nil, true, nil); err != nil {
		return err
	}
	c.articles.Delete(id)
	return nil
}

// ToggleLike flips the signed-in user's like. A cached article is updated
// first and restored if the request fails.
func (c *Client) ToggleLike(ctx context.Context, id string) ([]string, error) {
	user := c.session.User()
	if user == nil {
		return nil, ErrNotSignedIn
	}

	prev, cached := c.articles.toggleLocal(id, user.ID)

	var likes []string
	if err := c.send(ctx, http.MethodPost, articlePath(id)+"/like", nil, true, &likes); err != nil {
		if cached {
			c.articles.SetLikes(id, prev)
		}
		return nil, err
	}

	c.articles.SetLikes(id, likes)
	return likes, nil
}

func (c *Client) AddComment(ctx context.Context, id, text string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.send(ctx, http.MethodPost, articlePath(id)+"/comment", models.AddCommentRequest{Text: text}, true, &comments); err != nil {
		return nil, err
	}
	c.articles.SetComments(id, comments)
	return comments, nil
}

// AskGemini returns generated text for prompt.
func (c *Client) AskGemini(ctx context.Context, prompt string) (string, error) {
	var text string
	if err := c.send(ctx, http.MethodPost, "/gemini/ask", models.PromptRequest{Prompt: prompt}, false, &text); err != nil {
		return "", err
	}
	return text, nil
}

// AskAI returns the OpenAI answer for prompt.
func (c *Client) AskAI(ctx context.Context, prompt string) (string, error) {
	var out models.AnswerResponse
	if err := c.send(ctx, http.MethodPost, "/ai/ask", models.PromptRequest{Prompt: prompt}, false, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}
