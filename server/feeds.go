// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/feedbay/feedbay/feeds"
	"github.com/feedbay/feedbay/trending"
)

func (server *Server) createFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var feed feeds.Feed
	if err := json.Unmarshal(body, &feed); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}

	id, err := server.feeds.CreateFeed(ctx, feed)
	if err != nil {
		sendError(w, "failed to create feed", err)
		return
	}

	created, err := server.feeds.GetFeed(ctx, id)
	if err != nil {
		sendError(w, "failed to load created feed", err)
		return
	}
	sendJSON(w, http.StatusCreated, created)
}

func (server *Server) getFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	feed, err := server.feeds.GetFeed(ctx, id)
	if err != nil {
		sendError(w, "failed to get feed", err)
		return
	}
	if feed == nil {
		sendJSONError(w, "feed does not exist", "", http.StatusNotFound)
		return
	}
	sendJSON(w, http.StatusOK, feed)
}

func (server *Server) updateFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var fields feeds.UpdateFeedFields
	if err := json.Unmarshal(body, &fields); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}

	if err := server.feeds.UpdateFeed(ctx, id, fields); err != nil {
		sendError(w, "failed to update feed", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) deleteFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if err := server.feeds.DeleteFeed(ctx, id); err != nil {
		sendError(w, "failed to delete feed", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) listFeeds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filters := feeds.FeedFilters{
		TitleContains: query.Get("title"),
		Category:      query.Get("category"),
	}

	list, err := server.feeds.ListFeeds(ctx, filters, feedsPagination(r))
	if err != nil {
		sendError(w, "failed to list feeds", err)
		return
	}
	sendJSON(w, http.StatusOK, list)
}

func (server *Server) importFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var input struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &input); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}
	if input.URL == "" {
		sendJSONError(w, "url is required", "", http.StatusBadRequest)
		return
	}

	feed, imported, err := server.feeds.ImportFeed(ctx, input.URL)
	if err != nil {
		sendError(w, "failed to import feed", err)
		return
	}
	sendJSON(w, http.StatusCreated, struct {
		Feed     *feeds.Feed `json:"feed"`
		Imported int         `json:"imported"`
	}{feed, imported})
}

func (server *Server) feedStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := server.feeds.Stats(ctx)
	if err != nil {
		sendError(w, "failed to compute stats", err)
		return
	}
	sendJSON(w, http.StatusOK, stats)
}

func (server *Server) createItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	feedID := mux.Vars(r)["id"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var item feeds.Item
	if err := json.Unmarshal(body, &item); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}
	item.FeedID = feedID

	id, err := server.feeds.CreateItem(ctx, item)
	if err != nil {
		sendError(w, "failed to create item", err)
		return
	}

	created, err := server.feeds.GetItem(ctx, id)
	if err != nil {
		sendError(w, "failed to load created item", err)
		return
	}
	sendJSON(w, http.StatusCreated, created)
}

func (server *Server) listFeedItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	feedID := mux.Vars(r)["id"]

	items, err := server.feeds.ListItems(ctx, feedID, feedsPagination(r))
	if err != nil {
		sendError(w, "failed to list items", err)
		return
	}
	sendJSON(w, http.StatusOK, items)
}

func (server *Server) getItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	item, err := server.feeds.GetItem(ctx, id)
	if err != nil {
		sendError(w, "failed to get item", err)
		return
	}
	if item == nil {
		sendJSONError(w, "item does not exist", "", http.StatusNotFound)
		return
	}
	sendJSON(w, http.StatusOK, item)
}

func (server *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var fields feeds.UpdateItemFields
	if err := json.Unmarshal(body, &fields); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}

	if err := server.feeds.UpdateItem(ctx, id, fields); err != nil {
		sendError(w, "failed to update item", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if err := server.feeds.DeleteItem(ctx, id); err != nil {
		sendError(w, "failed to delete item", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) listAllItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filters := feeds.ItemFilters{Category: query.Get("category")}
	if after := query.Get("publishedAfter"); after != "" {
		t, err := time.Parse(time.RFC3339, after)
		if err != nil {
			sendJSONError(w, "invalid publishedAfter", err.Error(), http.StatusBadRequest)
			return
		}
		filters.PublishedAfter = &t
	}

	items, err := server.feeds.AllItems(ctx, filters, feedsPagination(r))
	if err != nil {
		sendError(w, "failed to list items", err)
		return
	}
	sendJSON(w, http.StatusOK, items)
}

func (server *Server) listFeedCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := server.feeds.AllCategories(ctx)
	if err != nil {
		sendError(w, "failed to list categories", err)
		return
	}
	sendJSON(w, http.StatusOK, categories)
}

func (server *Server) recordItemView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	item, err := server.feeds.GetItem(ctx, id)
	if err != nil {
		sendError(w, "failed to get item", err)
		return
	}
	if item == nil {
		sendJSONError(w, "item does not exist", "", http.StatusNotFound)
		return
	}

	if err := server.feedsTrending.RecordView(ctx, item.ID, item.FeedID); err != nil {
		sendError(w, "failed to record view", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) trendingItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	window, err := trending.ParseWindow(query.Get("window"))
	if err != nil {
		sendJSONError(w, "invalid window", err.Error(), http.StatusBadRequest)
		return
	}

	records, err := server.feedsTrending.TopK(ctx,
		window, queryInt(query.Get("limit"), 10),
		query.Get("feed"), query.Get("category"))
	if err != nil {
		sendError(w, "failed to query trending items", err)
		return
	}
	sendJSON(w, http.StatusOK, records)
}

func (server *Server) serveFeedDocument(format feeds.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := mux.Vars(r)["id"]

		document, err := server.feeds.RenderFeed(ctx, id, format)
		if err != nil {
			sendError(w, "failed to render feed", err)
			return
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, document)
	}
}

func feedsPagination(r *http.Request) feeds.Pagination {
	query := r.URL.Query()
	return feeds.Pagination{
		Limit:  queryInt(query.Get("limit"), 0),
		Offset: queryInt(query.Get("offset"), 0),
	}
}

func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
