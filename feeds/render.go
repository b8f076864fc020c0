// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package feeds

import (
	"context"

	gorilla "github.com/gorilla/feeds"
)

// Format selects the XML flavor produced by RenderFeed.
type Format string

// Supported output formats.
const (
	FormatRSS  Format = "rss"
	FormatAtom Format = "atom"
)

// ParseFormat validates a format identifier.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatRSS, FormatAtom:
		return Format(s), nil
	}
	return "", ErrValidation.New("unsupported format %q", s)
}

// RenderFeed resolves the feed and its full item list and renders it as
// RSS 2.0 or Atom 1.0 XML. Missing optional item fields degrade to empty
// strings rather than aborting the render.
func (service *Service) RenderFeed(ctx context.Context, feedID string, format Format) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	feed, err := service.GetFeed(ctx, feedID)
	if err != nil {
		return "", err
	}
	if feed == nil {
		return "", ErrNotFound.New("%s", feedID)
	}

	items, err := service.loadFeedItems(ctx, feedID)
	if err != nil {
		return "", err
	}
	sortItems(items)

	out := &gorilla.Feed{
		Title:       feed.Title,
		Link:        &gorilla.Link{Href: feed.Link},
		Description: feed.Description,
		Created:     feed.CreatedAt,
		Updated:     feed.UpdatedAt,
	}
	for _, item := range items {
		id := item.GUID
		if id == "" {
			id = item.ID
		}
		out.Items = append(out.Items, &gorilla.Item{
			Id:          id,
			Title:       item.Title,
			Link:        &gorilla.Link{Href: item.Link},
			Description: item.Description,
			Created:     item.Published,
			Updated:     item.UpdatedAt,
		})
	}

	switch format {
	case FormatRSS:
		xml, err := out.ToRss()
		return xml, Error.Wrap(err)
	case FormatAtom:
		xml, err := out.ToAtom()
		return xml, Error.Wrap(err)
	}
	return "", ErrValidation.New("unsupported format %q", format)
}
