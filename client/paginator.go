// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import "github.com/thinkshare/thinkshare/models"

// DefaultPageSize is the number of articles revealed per step.
const DefaultPageSize = 5

// Paginator reveals a growing prefix of a list, one page at a time.
type Paginator struct {
	pageSize int
	visible  int
}

func NewPaginator(pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{pageSize: pageSize, visible: pageSize}
}

// Window returns the visible prefix of list.
func (p *Paginator) Window(list []models.Article) []models.Article {
	return list[:min(p.visible, len(list))]
}

// HasMore reports whether a list of total items has hidden entries.
func (p *Paginator) HasMore(total int) bool {
	return p.visible < total
}

// Next reveals another page if any items are hidden.
func (p *Paginator) Next(total int) bool {
	if !p.HasMore(total) {
		return false
	}
	p.visible += p.pageSize
	return true
}

// Reset goes back to the first page.
func (p *Paginator) Reset() {
	p.visible = p.pageSize
}
