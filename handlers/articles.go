// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/thinkshare/thinkshare/articles"
	"github.com/thinkshare/thinkshare/cliparse"
	"github.com/thinkshare/thinkshare/middleware"
	"github.com/thinkshare/thinkshare/models"
)

type ArticleHandler struct {
	articles *articles.Service
	cfg      cliparse.Config
}

func NewArticleHandler(svc *articles.Service, cfg cliparse.Config) *ArticleHandler {
	return &ArticleHandler{articles: svc, cfg: cfg}
}

// Create handles POST /article/create (bearer, multipart with an image file)
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	imagePath, err := parseMultipart(w, r, "image", h.cfg.UploadDir)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	article, err := h.articles.Create(r.Context(), user, articles.CreateInput{
		Title:     r.FormValue("title"),
		Content:   r.FormValue("content"),
		ImagePath: imagePath,
	})
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Respond(w, http.StatusCreated, article, "Article created")
}

// ListAll handles GET /article/all
func (h *ArticleHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.articles.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.Respond(w, http.StatusOK, list, "Articles fetched")
}

// Get handles GET /article/{id}
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.Respond(w, http.StatusOK, article, "Article fetched")
}

// ListByAuthor handles GET /article/user/{id}
func (h *ArticleHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	list, err := h.articles.ListByAuthor(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.Respond(w, http.StatusOK, list, "Articles by user fetched")
}

// Update handles PUT /article/{id} (bearer, author only). Accepts a
// multipart form with an optional image, or a JSON body. Ownership is
// checked before the body is read.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := h.articles.AuthorizeUpdate(r.Context(), id, user); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	var in articles.UpdateInput
	if isMultipart(r) {
		imagePath, err := parseMultipart(w, r, "image", h.cfg.UploadDir)
		if err != nil {
			middleware.WriteError(w, r, err)
			return
		}
		in = articles.UpdateInput{
			Title:     r.FormValue("title"),
			Content:   r.FormValue("content"),
			ImagePath: imagePath,
		}
	} else {
		var req models.UpdateArticleRequest
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.WriteError(w, r, err)
			return
		}
		in = articles.UpdateInput{Title: req.Title, Content: req.Content}
	}

	article, err := h.articles.Update(r.Context(), id, user, in)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.Respond(w, http.StatusOK, article, "Article updated")
}

// Delete handles DELETE /article/{id} (bearer, author only)
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.articles.Delete(r.Context(), r.PathValue("id"), user); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.Respond(w, http.StatusOK, nil, "Article deleted")
}

// ToggleLike handles POST /article/{id}/like (bearer)
func (h *ArticleHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	likes, err := h.articles.ToggleLike(r.Context(), r.PathValue("id"), user)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.Respond(w, http.StatusOK, likes, "Like status updated")
}

// AddComment handles POST /article/{id}/comment (bearer)
func (h *ArticleHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.AddCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	comments, err := h.articles.AddComment(r.Context(), r.PathValue("id"), user, req.Text)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.Respond(w, http.StatusOK, comments, "Comment added")
}
