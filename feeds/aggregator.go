// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package feeds

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/feedbay/feedbay/storage"
)

// AllItems returns items across every feed matching the filters, ordered
// by publish date descending, with pagination applied over the combined
// sorted list.
//
// This is a full scan over all items on every call.
func (service *Service) AllItems(ctx context.Context, filters ItemFilters, page Pagination) (_ []Item, err error) {
	defer mon.Task()(&ctx)(&err)

	items, err := service.matchItems(ctx, filters)
	if err != nil {
		return nil, err
	}
	sortItems(items)
	return paginateItems(items, page), nil
}

// ByCategory returns items across every feed whose item-level or
// feed-level categories include category, sorted and paginated like
// AllItems.
func (service *Service) ByCategory(ctx context.Context, category string, page Pagination) (_ []Item, err error) {
	defer mon.Task()(&ctx)(&err)

	if category == "" {
		return nil, ErrValidation.New("category is required")
	}
	return service.AllItems(ctx, ItemFilters{Category: category}, page)
}

// AllCategories returns the case-sensitive union of feed-level and
// item-level category labels, sorted ascending.
func (service *Service) AllCategories(ctx context.Context) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)

	labels := map[string]struct{}{}

	feeds, err := service.loadFeeds(ctx)
	if err != nil {
		return nil, err
	}
	for _, feed := range feeds {
		for _, label := range feed.Categories {
			labels[label] = struct{}{}
		}
	}

	items, err := service.loadAllItems(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		for _, label := range item.Categories {
			labels[label] = struct{}{}
		}
	}

	result := make([]string, 0, len(labels))
	for label := range labels {
		result = append(result, label)
	}
	sort.Strings(result)
	return result, nil
}

// matchItems loads every item and applies the filters. Category matches
// on either the item or its parent feed.
func (service *Service) matchItems(ctx context.Context, filters ItemFilters) ([]Item, error) {
	items, err := service.loadAllItems(ctx)
	if err != nil {
		return nil, err
	}

	var feedCategories map[string][]string
	if filters.Category != "" {
		feeds, err := service.loadFeeds(ctx)
		if err != nil {
			return nil, err
		}
		feedCategories = make(map[string][]string, len(feeds))
		for _, feed := range feeds {
			feedCategories[feed.ID] = feed.Categories
		}
	}

	matched := items[:0]
	for _, item := range items {
		if filters.PublishedAfter != nil && !item.Published.After(*filters.PublishedAfter) {
			continue
		}
		if filters.Category != "" &&
			!containsLabel(item.Categories, filters.Category) &&
			!containsLabel(feedCategories[item.FeedID], filters.Category) {
			continue
		}
		matched = append(matched, item)
	}
	return matched, nil
}

func (service *Service) loadAllItems(ctx context.Context) ([]Item, error) {
	keys, err := service.db.List(ctx, storage.JoinKey(itemPrefix, ""), 0)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	values, err := service.db.GetAll(ctx, keys)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	items := make([]Item, 0, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		var item Item
		if err := json.Unmarshal(value, &item); err != nil {
			return nil, Error.Wrap(err)
		}
		items = append(items, item)
	}
	return items, nil
}
