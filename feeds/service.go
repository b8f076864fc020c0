// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package feeds

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/feedbay/feedbay/storage"
	"github.com/feedbay/feedbay/trending"
)

// Key layout:
//
//	feeds/<feedID>              feed record (JSON)
//	items/<itemID>              item record (JSON)
//	feeditems/<feedID>/<itemID> membership marker, value is the item id
const (
	feedPrefix   = "feeds"
	itemPrefix   = "items"
	memberPrefix = "feeditems"
)

// Service implements feed and item CRUD, aggregation and rendering on
// top of a KeyValueStore.
type Service struct {
	log    *zap.Logger
	db     storage.KeyValueStore
	parser *gofeed.Parser

	nowFn func() time.Time
}

// NewService creates a feeds service.
func NewService(log *zap.Logger, db storage.KeyValueStore) *Service {
	return &Service{
		log:    log,
		db:     db,
		parser: gofeed.NewParser(),
		nowFn:  time.Now,
	}
}

// SetNow allows tests to have the service act as if the current time is
// whatever they want.
func (service *Service) SetNow(nowFn func() time.Time) {
	service.nowFn = nowFn
}

func feedKey(id string) storage.Key { return storage.JoinKey(feedPrefix, id) }
func itemKey(id string) storage.Key { return storage.JoinKey(itemPrefix, id) }
func memberKey(feedID, itemID string) storage.Key {
	return storage.JoinKey(memberPrefix, feedID, itemID)
}

// CreateFeed persists a new feed, assigning a generated identifier when
// absent, and returns the identifier.
func (service *Service) CreateFeed(ctx context.Context, feed Feed) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	if feed.Title == "" {
		return "", ErrValidation.New("feed title is required")
	}
	if feed.ID == "" {
		feed.ID = uuid.NewString()
	}
	now := service.nowFn().UTC()
	feed.CreatedAt = now
	feed.UpdatedAt = now

	if err := service.putFeed(ctx, feed); err != nil {
		return "", err
	}
	service.log.Debug("feed created", zap.String("id", feed.ID), zap.String("title", feed.Title))
	return feed.ID, nil
}

// GetFeed returns the feed or nil when it does not exist.
func (service *Service) GetFeed(ctx context.Context, id string) (_ *Feed, err error) {
	defer mon.Task()(&ctx)(&err)

	value, err := service.db.Get(ctx, feedKey(id))
	if storage.ErrKeyNotFound.Has(err) {
		return nil, nil
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}

	var feed Feed
	if err := json.Unmarshal(value, &feed); err != nil {
		return nil, Error.Wrap(err)
	}
	return &feed, nil
}

// UpdateFeed applies only the provided fields. Updating with no fields is
// a no-op returning success.
func (service *Service) UpdateFeed(ctx context.Context, id string, fields UpdateFeedFields) (err error) {
	defer mon.Task()(&ctx)(&err)

	if fields.isZero() {
		return nil
	}

	feed, err := service.GetFeed(ctx, id)
	if err != nil {
		return err
	}
	if feed == nil {
		return ErrNotFound.New("%s", id)
	}

	if fields.Title != nil {
		feed.Title = *fields.Title
	}
	if fields.Link != nil {
		feed.Link = *fields.Link
	}
	if fields.Description != nil {
		feed.Description = *fields.Description
	}
	if fields.Categories != nil {
		feed.Categories = *fields.Categories
	}
	feed.UpdatedAt = service.nowFn().UTC()

	return service.putFeed(ctx, *feed)
}

// DeleteFeed removes the feed and all of its items. Deleting a missing
// feed is not an error.
func (service *Service) DeleteFeed(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)

	memberKeys, err := service.db.List(ctx, storage.JoinKey(memberPrefix, id, ""), 0)
	if err != nil {
		return Error.Wrap(err)
	}
	for _, key := range memberKeys {
		itemID := lastSegment(key)
		if err := service.db.Delete(ctx, itemKey(itemID)); err != nil {
			return Error.Wrap(err)
		}
		if err := service.db.Delete(ctx, key); err != nil {
			return Error.Wrap(err)
		}
	}
	return Error.Wrap(service.db.Delete(ctx, feedKey(id)))
}

// ListFeeds returns feeds matching the filters ordered by creation time
// descending.
func (service *Service) ListFeeds(ctx context.Context, filters FeedFilters, page Pagination) (_ []Feed, err error) {
	defer mon.Task()(&ctx)(&err)

	feeds, err := service.loadFeeds(ctx)
	if err != nil {
		return nil, err
	}

	matched := feeds[:0]
	for _, feed := range feeds {
		if filters.TitleContains != "" && !strings.Contains(feed.Title, filters.TitleContains) {
			continue
		}
		if filters.Category != "" && !containsLabel(feed.Categories, filters.Category) {
			continue
		}
		matched = append(matched, feed)
	}

	sort.Slice(matched, func(i, k int) bool {
		if !matched[i].CreatedAt.Equal(matched[k].CreatedAt) {
			return matched[i].CreatedAt.After(matched[k].CreatedAt)
		}
		return matched[i].ID < matched[k].ID
	})
	return paginateFeeds(matched, page), nil
}

// CreateItem persists a new item under its feed and returns the item
// identifier. The item record and the membership marker are separate
// writes; a crash in between leaves an item unreachable from its feed.
func (service *Service) CreateItem(ctx context.Context, item Item) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	if item.FeedID == "" {
		return "", ErrValidation.New("item feed id is required")
	}
	if item.Title == "" {
		return "", ErrValidation.New("item title is required")
	}

	feed, err := service.GetFeed(ctx, item.FeedID)
	if err != nil {
		return "", err
	}
	if feed == nil {
		return "", ErrNotFound.New("%s", item.FeedID)
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := service.nowFn().UTC()
	if item.Published.IsZero() {
		item.Published = now
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := service.putItem(ctx, item); err != nil {
		return "", err
	}
	if err := service.db.Put(ctx, memberKey(item.FeedID, item.ID), storage.Value(item.ID)); err != nil {
		return "", Error.Wrap(err)
	}
	return item.ID, nil
}

// GetItem returns the item or nil when it does not exist.
func (service *Service) GetItem(ctx context.Context, id string) (_ *Item, err error) {
	defer mon.Task()(&ctx)(&err)

	value, err := service.db.Get(ctx, itemKey(id))
	if storage.ErrKeyNotFound.Has(err) {
		return nil, nil
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}

	var item Item
	if err := json.Unmarshal(value, &item); err != nil {
		return nil, Error.Wrap(err)
	}
	return &item, nil
}

// UpdateItem applies only the provided fields. Updating with no fields is
// a no-op returning success.
func (service *Service) UpdateItem(ctx context.Context, id string, fields UpdateItemFields) (err error) {
	defer mon.Task()(&ctx)(&err)

	if fields.isZero() {
		return nil
	}

	item, err := service.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound.New("item %s", id)
	}

	if fields.Title != nil {
		item.Title = *fields.Title
	}
	if fields.Link != nil {
		item.Link = *fields.Link
	}
	if fields.GUID != nil {
		item.GUID = *fields.GUID
	}
	if fields.Description != nil {
		item.Description = *fields.Description
	}
	if fields.Categories != nil {
		item.Categories = *fields.Categories
	}
	if fields.Published != nil {
		item.Published = *fields.Published
	}
	item.UpdatedAt = service.nowFn().UTC()

	return service.putItem(ctx, *item)
}

// DeleteItem removes the item and its feed membership. Deleting a missing
// item is not an error.
func (service *Service) DeleteItem(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)

	item, err := service.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}

	if err := service.db.Delete(ctx, memberKey(item.FeedID, id)); err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(service.db.Delete(ctx, itemKey(id)))
}

// ListItems returns the feed's items ordered by publish date descending.
func (service *Service) ListItems(ctx context.Context, feedID string, page Pagination) (_ []Item, err error) {
	defer mon.Task()(&ctx)(&err)

	feed, err := service.GetFeed(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if feed == nil {
		return nil, ErrNotFound.New("%s", feedID)
	}

	items, err := service.loadFeedItems(ctx, feedID)
	if err != nil {
		return nil, err
	}
	sortItems(items)
	return paginateItems(items, page), nil
}

// Resolve implements trending.Source.
func (service *Service) Resolve(ctx context.Context, id string) (trending.Record, error) {
	item, err := service.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return item, nil
}

// Stats returns counts of feeds, items and distinct categories.
func (service *Service) Stats(ctx context.Context) (_ Stats, err error) {
	defer mon.Task()(&ctx)(&err)

	feedKeys, err := service.db.List(ctx, storage.JoinKey(feedPrefix, ""), 0)
	if err != nil {
		return Stats{}, Error.Wrap(err)
	}
	itemKeys, err := service.db.List(ctx, storage.JoinKey(itemPrefix, ""), 0)
	if err != nil {
		return Stats{}, Error.Wrap(err)
	}
	categories, err := service.AllCategories(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Feeds:      len(feedKeys),
		Items:      len(itemKeys),
		Categories: len(categories),
	}, nil
}

func (service *Service) putFeed(ctx context.Context, feed Feed) error {
	value, err := json.Marshal(feed)
	if err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(service.db.Put(ctx, feedKey(feed.ID), value))
}

func (service *Service) putItem(ctx context.Context, item Item) error {
	value, err := json.Marshal(item)
	if err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(service.db.Put(ctx, itemKey(item.ID), value))
}

func (service *Service) loadFeeds(ctx context.Context) ([]Feed, error) {
	keys, err := service.db.List(ctx, storage.JoinKey(feedPrefix, ""), 0)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	values, err := service.db.GetAll(ctx, keys)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	feeds := make([]Feed, 0, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		var feed Feed
		if err := json.Unmarshal(value, &feed); err != nil {
			return nil, Error.Wrap(err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, nil
}

func (service *Service) loadFeedItems(ctx context.Context, feedID string) ([]Item, error) {
	memberKeys, err := service.db.List(ctx, storage.JoinKey(memberPrefix, feedID, ""), 0)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	itemKeys := make(storage.Keys, 0, len(memberKeys))
	for _, key := range memberKeys {
		itemKeys = append(itemKeys, itemKey(lastSegment(key)))
	}
	values, err := service.db.GetAll(ctx, itemKeys)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	items := make([]Item, 0, len(values))
	for _, value := range values {
		if value == nil {
			// membership marker without a record, skip
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

func lastSegment(key storage.Key) string {
	s := key.String()
	if i := strings.LastIndexByte(s, storage.Delimiter); i >= 0 {
		return s[i+1:]
	}
	return s
}

func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func sortItems(items []Item) {
	sort.Slice(items, func(i, k int) bool {
		if !items[i].Published.Equal(items[k].Published) {
			return items[i].Published.After(items[k].Published)
		}
		return items[i].ID < items[k].ID
	})
}

func paginateItems(items []Item, page Pagination) []Item {
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if page.Limit > 0 && len(items) > page.Limit {
		items = items[:page.Limit]
	}
	return items
}

func paginateFeeds(feeds []Feed, page Pagination) []Feed {
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(feeds) {
		return nil
	}
	feeds = feeds[offset:]
	if page.Limit > 0 && len(feeds) > page.Limit {
		feeds = feeds[:page.Limit]
	}
	return feeds
}
