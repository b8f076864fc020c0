// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/feedbay/feedbay/feeds"
	"github.com/feedbay/feedbay/internal/testcontext"
	"github.com/feedbay/feedbay/market"
	"github.com/feedbay/feedbay/server"
	"github.com/feedbay/feedbay/storage/teststore"
	"github.com/feedbay/feedbay/trending"
)

const testToken = "very-secret-token"

type testServer struct {
	baseURL string
	feeds   *feeds.Service
	market  *market.DB
}

// startServer runs the API on an ephemeral port. Cleanup ordering
// matters: the run context is cancelled before the goroutine group is
// waited on.
func startServer(t *testing.T) (*testServer, *testcontext.Context) {
	ctx := testcontext.New(t)
	t.Cleanup(ctx.Cleanup)

	log := zaptest.NewLogger(t)

	store := teststore.New()
	feedsService := feeds.NewService(log.Named("feeds"), store)
	feedsTrending := trending.NewTracker(log.Named("trending:feeds"), store, feedsService, "feeds")

	marketDB, err := market.Open(log.Named("market"), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Check(marketDB.Close) })
	marketTrending := trending.NewTracker(log.Named("trending:market"), store, marketDB, "market")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := server.NewServer(log.Named("server"), listener,
		feedsService, feedsTrending, marketDB, marketTrending,
		server.Config{Address: listener.Addr().String(), AuthToken: testToken})

	runCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	ctx.Go(func() error { return srv.Run(runCtx) })

	return &testServer{
		baseURL: "http://" + listener.Addr().String(),
		feeds:   feedsService,
		market:  marketDB,
	}, ctx
}

func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.baseURL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	response, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return response
}

func decodeBody(t *testing.T, response *http.Response, target interface{}) {
	defer func() { require.NoError(t, response.Body.Close()) }()
	require.NoError(t, json.NewDecoder(response.Body).Decode(target))
}

func TestAuthorization(t *testing.T) {
	ts, _ := startServer(t)

	t.Run("NoAccess", func(t *testing.T) {
		response := ts.request(t, http.MethodGet, "/api/feeds", "", nil)
		require.Equal(t, http.StatusForbidden, response.StatusCode)
		require.NoError(t, response.Body.Close())
	})

	t.Run("WrongAccess", func(t *testing.T) {
		response := ts.request(t, http.MethodGet, "/api/feeds", "wrong-key", nil)
		require.Equal(t, http.StatusForbidden, response.StatusCode)
		require.NoError(t, response.Body.Close())
	})

	t.Run("WithAccess", func(t *testing.T) {
		response := ts.request(t, http.MethodGet, "/api/feeds", testToken, nil)
		require.Equal(t, http.StatusOK, response.StatusCode)
		require.NoError(t, response.Body.Close())
	})
}

func TestFeedsAPI(t *testing.T) {
	ts, _ := startServer(t)

	response := ts.request(t, http.MethodPost, "/api/feeds", testToken, feeds.Feed{
		Title: "Go Blog",
		Link:  "https://go.dev/blog",
	})
	require.Equal(t, http.StatusCreated, response.StatusCode)
	var feed feeds.Feed
	decodeBody(t, response, &feed)
	require.NotEmpty(t, feed.ID)
	require.Equal(t, "Go Blog", feed.Title)

	response = ts.request(t, http.MethodPost, "/api/feeds/"+feed.ID+"/items", testToken, feeds.Item{
		Title: "Generics",
		Link:  "https://go.dev/blog/generics",
	})
	require.Equal(t, http.StatusCreated, response.StatusCode)
	var item feeds.Item
	decodeBody(t, response, &item)
	require.Equal(t, feed.ID, item.FeedID)

	response = ts.request(t, http.MethodGet, "/api/items/"+item.ID, testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.NoError(t, response.Body.Close())

	title := "Generics in Go"
	response = ts.request(t, http.MethodPut, "/api/items/"+item.ID, testToken,
		feeds.UpdateItemFields{Title: &title})
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.NoError(t, response.Body.Close())

	response = ts.request(t, http.MethodGet, "/api/items", testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	var items []feeds.Item
	decodeBody(t, response, &items)
	require.Len(t, items, 1)
	require.Equal(t, "Generics in Go", items[0].Title)

	// negative pagination parameters are treated as the start of the listing
	response = ts.request(t, http.MethodGet, "/api/items?offset=-1&limit=-1", testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	items = nil
	decodeBody(t, response, &items)
	require.Len(t, items, 1)

	response = ts.request(t, http.MethodGet, "/api/feeds/stats", testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	var stats feeds.Stats
	decodeBody(t, response, &stats)
	require.Equal(t, 1, stats.Feeds)
	require.Equal(t, 1, stats.Items)

	response = ts.request(t, http.MethodGet, "/api/feeds/missing", testToken, nil)
	require.Equal(t, http.StatusNotFound, response.StatusCode)
	require.NoError(t, response.Body.Close())

	response = ts.request(t, http.MethodDelete, "/api/feeds/"+feed.ID, testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.NoError(t, response.Body.Close())

	response = ts.request(t, http.MethodGet, "/api/items/"+item.ID, testToken, nil)
	require.Equal(t, http.StatusNotFound, response.StatusCode)
	require.NoError(t, response.Body.Close())
}

func TestFeedDocumentIsPublic(t *testing.T) {
	ts, ctx := startServer(t)

	feedID, err := ts.feeds.CreateFeed(ctx, feeds.Feed{
		Title: "Go Blog",
		Link:  "https://go.dev/blog",
	})
	require.NoError(t, err)
	_, err = ts.feeds.CreateItem(ctx, feeds.Item{
		FeedID: feedID,
		Title:  "Generics",
		Link:   "https://go.dev/blog/generics",
	})
	require.NoError(t, err)

	for _, suffix := range []string{".rss", ".atom"} {
		// no authorization header
		response := ts.request(t, http.MethodGet, "/feeds/"+feedID+suffix, "", nil)
		require.Equal(t, http.StatusOK, response.StatusCode)
		require.Contains(t, response.Header.Get("Content-Type"), "application/xml")

		body, err := io.ReadAll(response.Body)
		require.NoError(t, err)
		require.NoError(t, response.Body.Close())
		require.Contains(t, string(body), "Generics")
	}

	response := ts.request(t, http.MethodGet, "/feeds/missing.rss", "", nil)
	require.Equal(t, http.StatusNotFound, response.StatusCode)
	require.NoError(t, response.Body.Close())
}

func TestTrendingItemsAPI(t *testing.T) {
	ts, ctx := startServer(t)

	feedID, err := ts.feeds.CreateFeed(ctx, feeds.Feed{Title: "news", Link: "https://example.test"})
	require.NoError(t, err)
	itemID, err := ts.feeds.CreateItem(ctx, feeds.Item{FeedID: feedID, Title: "hello", Link: "https://example.test/hello"})
	require.NoError(t, err)

	response := ts.request(t, http.MethodPost, "/api/items/"+itemID+"/view", testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.NoError(t, response.Body.Close())

	response = ts.request(t, http.MethodGet, "/api/items/trending?window=24h", testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	var trendingItems []feeds.Item
	decodeBody(t, response, &trendingItems)
	require.Len(t, trendingItems, 1)
	require.Equal(t, itemID, trendingItems[0].ID)

	response = ts.request(t, http.MethodGet, "/api/items/trending?window=5m", testToken, nil)
	require.Equal(t, http.StatusBadRequest, response.StatusCode)
	require.NoError(t, response.Body.Close())
}

func TestMarketAPI(t *testing.T) {
	ts, _ := startServer(t)

	response := ts.request(t, http.MethodPost, "/api/market/sellers", testToken, market.Seller{Name: "acme"})
	require.Equal(t, http.StatusCreated, response.StatusCode)
	var seller market.Seller
	decodeBody(t, response, &seller)

	response = ts.request(t, http.MethodPost, "/api/market/categories", testToken, market.Category{Name: "books"})
	require.Equal(t, http.StatusCreated, response.StatusCode)
	var category market.Category
	decodeBody(t, response, &category)

	response = ts.request(t, http.MethodPost, "/api/market/products", testToken, market.Product{
		SellerID:   seller.ID,
		Title:      "The Go Programming Language",
		PriceCents: 3999,
		Categories: []string{"books"},
	})
	require.Equal(t, http.StatusCreated, response.StatusCode)
	var product market.Product
	decodeBody(t, response, &product)
	require.Equal(t, []string{"books"}, product.Categories)

	response = ts.request(t, http.MethodPost, "/api/market/collections", testToken, market.Collection{
		SellerID: seller.ID,
		Title:    "summer reading",
	})
	require.Equal(t, http.StatusCreated, response.StatusCode)
	var collection market.Collection
	decodeBody(t, response, &collection)

	response = ts.request(t, http.MethodPut,
		"/api/market/collections/"+collection.ID+"/products/"+product.ID, testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.NoError(t, response.Body.Close())

	response = ts.request(t, http.MethodGet,
		"/api/market/collections/"+collection.ID+"?members=true", testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	var withMembers market.Collection
	decodeBody(t, response, &withMembers)
	require.Len(t, withMembers.Members, 1)
	require.Equal(t, product.ID, withMembers.Members[0].ProductID)

	// a view counts for the all scope and the collection scope
	response = ts.request(t, http.MethodPost, "/api/market/products/"+product.ID+"/view", testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.NoError(t, response.Body.Close())

	response = ts.request(t, http.MethodGet,
		"/api/market/products/trending?window=1h&collection="+collection.ID, testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	var trendingProducts []market.Product
	decodeBody(t, response, &trendingProducts)
	require.Len(t, trendingProducts, 1)
	require.Equal(t, product.ID, trendingProducts[0].ID)

	response = ts.request(t, http.MethodGet, "/api/market/stats", testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	var stats market.Stats
	decodeBody(t, response, &stats)
	require.Equal(t, market.Stats{Products: 1, Collections: 1, Sellers: 1, Categories: 1}, stats)

	response = ts.request(t, http.MethodDelete, "/api/market/products/"+product.ID, testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.NoError(t, response.Body.Close())

	// the recorded view now resolves to nothing
	response = ts.request(t, http.MethodGet, "/api/market/products/trending?window=1h", testToken, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	trendingProducts = nil
	decodeBody(t, response, &trendingProducts)
	require.Empty(t, trendingProducts)
}
