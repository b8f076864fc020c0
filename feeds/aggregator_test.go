// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package feeds_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/feedbay/feedbay/feeds"
	"github.com/feedbay/feedbay/internal/testcontext"
)

func TestAllItemsSortedAcrossFeeds(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	service := newService(t)

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	feedA, err := service.CreateFeed(ctx, feeds.Feed{Title: "A"})
	require.NoError(t, err)
	feedB, err := service.CreateFeed(ctx, feeds.Feed{Title: "B"})
	require.NoError(t, err)

	// interleave publish dates across the two feeds
	_, err = service.CreateItem(ctx, feeds.Item{FeedID: feedA, Title: "a1", Published: base})
	require.NoError(t, err)
	_, err = service.CreateItem(ctx, feeds.Item{FeedID: feedB, Title: "b1", Published: base.Add(2 * time.Hour)})
	require.NoError(t, err)
	_, err = service.CreateItem(ctx, feeds.Item{FeedID: feedA, Title: "a2", Published: base.Add(time.Hour)})
	require.NoError(t, err)

	items, err := service.AllItems(ctx, feeds.ItemFilters{}, feeds.Pagination{})
	require.NoError(t, err)
	require.Equal(t, []string{"b1", "a2", "a1"}, itemTitles(items))

	cutoff := base.Add(30 * time.Minute)
	items, err = service.AllItems(ctx, feeds.ItemFilters{PublishedAfter: &cutoff}, feeds.Pagination{})
	require.NoError(t, err)
	require.Equal(t, []string{"b1", "a2"}, itemTitles(items))
}

func TestAllItemsPaginationConcatenation(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	service := newService(t)

	feedID, err := service.CreateFeed(ctx, feeds.Feed{Title: "feed"})
	require.NoError(t, err)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		_, err := service.CreateItem(ctx, feeds.Item{
			FeedID:    feedID,
			Title:     "item",
			Published: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	full, err := service.AllItems(ctx, feeds.ItemFilters{}, feeds.Pagination{})
	require.NoError(t, err)
	require.Len(t, full, 10)

	const limit = 3
	var paged []feeds.Item
	for offset := 0; ; offset += limit {
		chunk, err := service.AllItems(ctx, feeds.ItemFilters{}, feeds.Pagination{Limit: limit, Offset: offset})
		require.NoError(t, err)
		if len(chunk) == 0 {
			break
		}
		paged = append(paged, chunk...)
	}
	require.Equal(t, full, paged)
}

func TestAllItemsNegativePagination(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	service := newService(t)

	feedID, err := service.CreateFeed(ctx, feeds.Feed{Title: "feed"})
	require.NoError(t, err)
	_, err = service.CreateItem(ctx, feeds.Item{FeedID: feedID, Title: "item"})
	require.NoError(t, err)

	// negative offsets behave like the start of the listing
	items, err := service.AllItems(ctx, feeds.ItemFilters{}, feeds.Pagination{Offset: -1})
	require.NoError(t, err)
	require.Len(t, items, 1)

	listed, err := service.ListFeeds(ctx, feeds.FeedFilters{}, feeds.Pagination{Offset: -1, Limit: -1})
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestAllCategoriesUnion(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	service := newService(t)

	feedID, err := service.CreateFeed(ctx, feeds.Feed{Title: "feed", Categories: []string{"news", "Go"}})
	require.NoError(t, err)
	_, err = service.CreateItem(ctx, feeds.Item{FeedID: feedID, Title: "item", Categories: []string{"go", "news"}})
	require.NoError(t, err)

	categories, err := service.AllCategories(ctx)
	require.NoError(t, err)
	// case sensitive, deduplicated, ascending
	require.Equal(t, []string{"Go", "go", "news"}, categories)
}

func TestByCategory(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	service := newService(t)

	tagged, err := service.CreateFeed(ctx, feeds.Feed{Title: "tagged", Categories: []string{"go"}})
	require.NoError(t, err)
	plain, err := service.CreateFeed(ctx, feeds.Feed{Title: "plain"})
	require.NoError(t, err)

	// matches via the parent feed's categories
	_, err = service.CreateItem(ctx, feeds.Item{FeedID: tagged, Title: "inherited"})
	require.NoError(t, err)
	// matches via its own categories
	_, err = service.CreateItem(ctx, feeds.Item{FeedID: plain, Title: "own", Categories: []string{"go"}})
	require.NoError(t, err)
	// no match
	_, err = service.CreateItem(ctx, feeds.Item{FeedID: plain, Title: "other", Categories: []string{"rust"}})
	require.NoError(t, err)

	items, err := service.ByCategory(ctx, "go", feeds.Pagination{})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"inherited", "own"}, itemTitles(items))

	_, err = service.ByCategory(ctx, "", feeds.Pagination{})
	require.True(t, feeds.ErrValidation.Has(err))
}

func itemTitles(items []feeds.Item) []string {
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	return titles
}
