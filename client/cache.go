// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"slices"
	"sync"

	"github.com/thinkshare/thinkshare/models"
)

// ArticleCache is the local copy of the article list, newest first.
type ArticleCache struct {
	mu       sync.RWMutex
	articles []models.Article
}

func (c *ArticleCache) SetArticles(list []models.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.articles = slices.Clone(list)
}

// Add puts a new article at the front.
func (c *ArticleCache) Add(a models.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.articles = slices.Insert(c.articles, 0, a)
}

// Update replaces the cached article with the same ID. Unknown IDs are
// ignored.
func (c *ArticleCache) Update(a models.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(a.ID); i >= 0 {
		c.articles[i] = a
	}
}

func (c *ArticleCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.articles = slices.DeleteFunc(c.articles, func(a models.Article) bool { return a.ID == id })
}

func (c *ArticleCache) Get(id string) (models.Article, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		return c.articles[i], true
	}
	return models.Article{}, false
}

// All returns a copy of the cached list.
func (c *ArticleCache) All() []models.Article {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.articles)
}

func (c *ArticleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.articles)
}

// SetLikes replaces the like-set of a cached article and returns the
// previous one. ok is false if the article is not cached.
func (c *ArticleCache) SetLikes(id string, likes []string) (prev []string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return nil, false
	}
	prev = c.articles[i].Likes
	c.articles[i].Likes = slices.Clone(likes)
	return prev, true
}

func (c *ArticleCache) SetComments(id string, comments []models.Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		c.articles[i].Comments = slices.Clone(comments)
	}
}

// toggleLocal flips userID in the cached like-set and returns the previous
// set.
func (c *ArticleCache) toggleLocal(id, userID string) (prev []string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return nil, false
	}
	prev = c.articles[i].Likes
	next := slices.Clone(prev)
	if j := slices.Index(next, userID); j >= 0 {
		next = slices.Delete(next, j, j+1)
	} else {
		next = append(next, userID)
	}
	c.articles[i].Likes = next
	return prev, true
}

func (c *ArticleCache) index(id string) int {
	return slices.IndexFunc(c.articles, func(a models.Article) bool { return a.ID == id })
}
