// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package feeds_test

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/feedbay/feedbay/feeds"
	"github.com/feedbay/feedbay/internal/testcontext"
)

func TestRenderFeed(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	service := newService(t)

	feedID, err := service.CreateFeed(ctx, feeds.Feed{
		Title:       "Release Feed",
		Link:        "https://example.test/releases",
		Description: "all releases",
	})
	require.NoError(t, err)

	base := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	_, err = service.CreateItem(ctx, feeds.Item{
		FeedID: feedID, Title: "v2 released", Link: "https://example.test/v2", Published: base,
	})
	require.NoError(t, err)
	_, err = service.CreateItem(ctx, feeds.Item{
		FeedID: feedID, Title: "v1 released", Link: "https://example.test/v1", Published: base.Add(-time.Hour),
	})
	require.NoError(t, err)

	rss, err := service.RenderFeed(ctx, feedID, feeds.FormatRSS)
	require.NoError(t, err)
	require.Contains(t, rss, "<rss")
	require.Contains(t, rss, "Release Feed")
	require.Contains(t, rss, "v1 released")
	require.Contains(t, rss, "v2 released")
	requireWellFormedXML(t, rss)

	atom, err := service.RenderFeed(ctx, feedID, feeds.FormatAtom)
	require.NoError(t, err)
	require.Contains(t, atom, "<feed")
	require.Contains(t, atom, "Release Feed")
	requireWellFormedXML(t, atom)
}

func TestRenderFeedMissingFieldsDegrade(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	service := newService(t)

	feedID, err := service.CreateFeed(ctx, feeds.Feed{Title: "sparse"})
	require.NoError(t, err)
	_, err = service.CreateItem(ctx, feeds.Item{FeedID: feedID, Title: "no link, no description"})
	require.NoError(t, err)

	rss, err := service.RenderFeed(ctx, feedID, feeds.FormatRSS)
	require.NoError(t, err)
	require.Contains(t, rss, "no link, no description")
	requireWellFormedXML(t, rss)
}

func TestRenderFeedErrors(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	service := newService(t)

	_, err := service.RenderFeed(ctx, "missing", feeds.FormatRSS)
	require.True(t, feeds.ErrNotFound.Has(err))

	feedID, err := service.CreateFeed(ctx, feeds.Feed{Title: "feed"})
	require.NoError(t, err)

	_, err = service.RenderFeed(ctx, feedID, feeds.Format("pdf"))
	require.True(t, feeds.ErrValidation.Has(err))

	_, err = feeds.ParseFormat("pdf")
	require.True(t, feeds.ErrValidation.Has(err))
}

func requireWellFormedXML(t *testing.T, data string) {
	t.Helper()
	decoder := xml.NewDecoder(strings.NewReader(data))
	for {
		_, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err)
	}
}
