// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

// Package feeds implements the feed aggregation plugin: feed and item
// CRUD over a key value store, cross-feed aggregation and RSS/Atom
// rendering.
package feeds

import (
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	mon = monkit.Package()

	// Error is the default feeds error class.
	Error = errs.Class("feeds")
	// ErrNotFound is returned by operations that require an existing target.
	ErrNotFound = errs.Class("feed not found")
	// ErrValidation is returned for invalid input, before reaching the store.
	ErrValidation = errs.Class("feed validation")
)

// Feed groups items and carries the channel-level metadata used when
// rendering RSS/Atom output.
type Feed struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	Categories  []string  `json:"categories,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Item is a single feed entry. Items belong to exactly one feed and are
// deleted with it.
type Item struct {
	ID          string    `json:"id"`
	FeedID      string    `json:"feedId"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	GUID        string    `json:"guid,omitempty"`
	Description string    `json:"description"`
	Categories  []string  `json:"categories,omitempty"`
	Published   time.Time `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TrendingID implements trending.Record.
func (item *Item) TrendingID() string { return item.ID }

// HasCategory implements trending.Record.
func (item *Item) HasCategory(category string) bool {
	for _, c := range item.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// UpdateFeedFields holds the feed fields an update may touch. Nil fields
// are left unchanged.
type UpdateFeedFields struct {
	Title       *string   `json:"title,omitempty"`
	Link        *string   `json:"link,omitempty"`
	Description *string   `json:"description,omitempty"`
	Categories  *[]string `json:"categories,omitempty"`
}

func (fields UpdateFeedFields) isZero() bool {
	return fields.Title == nil && fields.Link == nil &&
		fields.Description == nil && fields.Categories == nil
}

// UpdateItemFields holds the item fields an update may touch. Nil fields
// are left unchanged.
type UpdateItemFields struct {
	Title       *string    `json:"title,omitempty"`
	Link        *string    `json:"link,omitempty"`
	GUID        *string    `json:"guid,omitempty"`
	Description *string    `json:"description,omitempty"`
	Categories  *[]string  `json:"categories,omitempty"`
	Published   *time.Time `json:"published,omitempty"`
}

func (fields UpdateItemFields) isZero() bool {
	return fields.Title == nil && fields.Link == nil && fields.GUID == nil &&
		fields.Description == nil && fields.Categories == nil && fields.Published == nil
}

// FeedFilters narrow down feed listings.
type FeedFilters struct {
	TitleContains string
	Category      string
}

// ItemFilters narrow down cross-feed item listings.
type ItemFilters struct {
	PublishedAfter *time.Time
	Category       string
}

// Pagination applies offset/limit over a sorted listing. Zero or negative
// limit means no limit. No total count is computed.
type Pagination struct {
	Limit  int
	Offset int
}

// Stats holds the feeds plugin counters.
type Stats struct {
	Feeds      int `json:"feeds"`
	Items      int `json:"items"`
	Categories int `json:"categories"`
}
