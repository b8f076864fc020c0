// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package feeds

import (
	"context"

	"go.uber.org/zap"
)

// ImportFeed fetches a remote RSS/Atom feed, creates a feed record from
// its channel metadata and an item per entry, and returns the created
// feed together with the number of imported items.
//
// Item creation is at-least-once: a failure partway through leaves the
// feed with the items imported so far.
func (service *Service) ImportFeed(ctx context.Context, url string) (_ *Feed, _ int, err error) {
	defer mon.Task()(&ctx)(&err)

	if url == "" {
		return nil, 0, ErrValidation.New("feed url is required")
	}

	remote, err := service.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, 0, Error.New("fetching %s: %v", url, err)
	}

	link := remote.Link
	if link == "" {
		link = url
	}
	feedID, err := service.CreateFeed(ctx, Feed{
		Title:       remote.Title,
		Link:        link,
		Description: remote.Description,
		Categories:  remote.Categories,
	})
	if err != nil {
		return nil, 0, err
	}

	imported := 0
	for _, entry := range remote.Items {
		if entry == nil || entry.Title == "" {
			continue
		}

		item := Item{
			FeedID:      feedID,
			Title:       entry.Title,
			Link:        entry.Link,
			GUID:        entry.GUID,
			Description: entry.Description,
			Categories:  entry.Categories,
		}
		if entry.PublishedParsed != nil {
			item.Published = *entry.PublishedParsed
		}

		if _, err := service.CreateItem(ctx, item); err != nil {
			return nil, imported, err
		}
		imported++
	}

	service.log.Info("feed imported",
		zap.String("url", url),
		zap.String("feed", feedID),
		zap.Int("items", imported))

	feed, err := service.GetFeed(ctx, feedID)
	if err != nil {
		return nil, imported, err
	}
	return feed, imported, nil
}
