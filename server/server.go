// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

// Package server implements the HTTP API for the feed and marketplace
// plugins.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/feedbay/feedbay/feeds"
	"github.com/feedbay/feedbay/market"
	"github.com/feedbay/feedbay/trending"
)

// AuthorizationNotEnabled is returned when no authorization token is
// configured; every protected request is refused in that case.
const AuthorizationNotEnabled = "Authorization not enabled."

// Config defines configuration for the API server.
type Config struct {
	Address string `help:"api http listening address" default:":8080"`

	AuthToken string `internal:"true"`
}

// Server provides the HTTP endpoints.
type Server struct {
	log *zap.Logger

	listener net.Listener
	server   http.Server

	feeds          *feeds.Service
	feedsTrending  *trending.Tracker
	market         *market.DB
	marketTrending *trending.Tracker

	nowFn func() time.Time

	config Config
}

// NewServer returns a new API Server.
func NewServer(
	log *zap.Logger,
	listener net.Listener,
	feedsService *feeds.Service,
	feedsTrending *trending.Tracker,
	marketDB *market.DB,
	marketTrending *trending.Tracker,
	config Config,
) *Server {
	server := &Server{
		log: log,

		listener: listener,

		feeds:          feedsService,
		feedsTrending:  feedsTrending,
		market:         marketDB,
		marketTrending: marketTrending,

		nowFn: time.Now,

		config: config,
	}

	root := mux.NewRouter()

	// rendered feed documents are public
	root.HandleFunc("/feeds/{id}.rss", server.serveFeedDocument(feeds.FormatRSS)).Methods("GET")
	root.HandleFunc("/feeds/{id}.atom", server.serveFeedDocument(feeds.FormatAtom)).Methods("GET")

	api := root.PathPrefix("/api/").Subrouter()
	api.Use(server.withAuth)

	// specific paths before the {id} routes
	api.HandleFunc("/feeds/import", server.importFeed).Methods("POST")
	api.HandleFunc("/feeds/stats", server.feedStats).Methods("GET")
	api.HandleFunc("/feeds", server.createFeed).Methods("POST")
	api.HandleFunc("/feeds", server.listFeeds).Methods("GET")
	api.HandleFunc("/feeds/{id}", server.getFeed).Methods("GET")
	api.HandleFunc("/feeds/{id}", server.updateFeed).Methods("PUT")
	api.HandleFunc("/feeds/{id}", server.deleteFeed).Methods("DELETE")
	api.HandleFunc("/feeds/{id}/items", server.createItem).Methods("POST")
	api.HandleFunc("/feeds/{id}/items", server.listFeedItems).Methods("GET")

	api.HandleFunc("/items/trending", server.trendingItems).Methods("GET")
	api.HandleFunc("/items", server.listAllItems).Methods("GET")
	api.HandleFunc("/items/{id}", server.getItem).Methods("GET")
	api.HandleFunc("/items/{id}", server.updateItem).Methods("PUT")
	api.HandleFunc("/items/{id}", server.deleteItem).Methods("DELETE")
	api.HandleFunc("/items/{id}/view", server.recordItemView).Methods("POST")
	api.HandleFunc("/categories", server.listFeedCategories).Methods("GET")

	marketAPI := api.PathPrefix("/market").Subrouter()
	marketAPI.HandleFunc("/stats", server.marketStats).Methods("GET")
	marketAPI.HandleFunc("/sellers", server.createSeller).Methods("POST")
	marketAPI.HandleFunc("/sellers", server.listSellers).Methods("GET")
	marketAPI.HandleFunc("/sellers/{id}", server.getSeller).Methods("GET")
	marketAPI.HandleFunc("/sellers/{id}", server.deleteSeller).Methods("DELETE")
	marketAPI.HandleFunc("/categories", server.createCategory).Methods("POST")
	marketAPI.HandleFunc("/categories", server.listCategories).Methods("GET")
	marketAPI.HandleFunc("/categories/{id}", server.getCategory).Methods("GET")
	marketAPI.HandleFunc("/categories/{id}", server.deleteCategory).Methods("DELETE")
	marketAPI.HandleFunc("/products/trending", server.trendingProducts).Methods("GET")
	marketAPI.HandleFunc("/products", server.createProduct).Methods("POST")
	marketAPI.HandleFunc("/products", server.listProducts).Methods("GET")
	marketAPI.HandleFunc("/products/{id}", server.getProduct).Methods("GET")
	marketAPI.HandleFunc("/products/{id}", server.updateProduct).Methods("PUT")
	marketAPI.HandleFunc("/products/{id}", server.deleteProduct).Methods("DELETE")
	marketAPI.HandleFunc("/products/{id}/view", server.recordProductView).Methods("POST")
	marketAPI.HandleFunc("/collections", server.createCollection).Methods("POST")
	marketAPI.HandleFunc("/collections", server.listCollections).Methods("GET")
	marketAPI.HandleFunc("/collections/{id}", server.getCollection).Methods("GET")
	marketAPI.HandleFunc("/collections/{id}", server.updateCollection).Methods("PUT")
	marketAPI.HandleFunc("/collections/{id}", server.deleteCollection).Methods("DELETE")
	marketAPI.HandleFunc("/collections/{id}/products/{product}", server.addCollectionProduct).Methods("PUT")
	marketAPI.HandleFunc("/collections/{id}/products/{product}", server.removeCollectionProduct).Methods("DELETE")

	server.server.Handler = root
	return server
}

// Run starts the API endpoint.
func (server *Server) Run(ctx context.Context) error {
	if server.listener == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	var group errgroup.Group
	group.Go(func() error {
		<-ctx.Done()
		return Error.Wrap(server.server.Shutdown(context.Background()))
	})
	group.Go(func() error {
		defer cancel()
		err := server.server.Serve(server.listener)
		if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return Error.Wrap(err)
	})
	return group.Wait()
}

// Close closes server and underlying listener.
func (server *Server) Close() error {
	return Error.Wrap(server.server.Close())
}

// SetNow allows tests to have the server act as if the current time is
// whatever they want.
func (server *Server) SetNow(nowFn func() time.Time) {
	server.nowFn = nowFn
}

func (server *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if server.config.AuthToken == "" {
			sendJSONError(w, AuthorizationNotEnabled, "", http.StatusForbidden)
			return
		}

		if !validateToken(server.config.AuthToken, r.Header.Get("Authorization")) {
			sendJSONError(w, "Forbidden", "required a valid authorization token", http.StatusForbidden)
			return
		}

		server.log.Info("api action",
			zap.String("action", fmt.Sprintf("%s-%s", r.Method, r.RequestURI)),
			zap.String("queries", r.URL.Query().Encode()),
		)

		r.Header.Set("Cache-Control", "must-revalidate")
		next.ServeHTTP(w, r)
	})
}

func validateToken(configured, sent string) bool {
	equality := subtle.ConstantTimeCompare([]byte(sent), []byte(configured))
	return equality == 1
}

// sendError maps service error classes to HTTP statuses.
func sendError(w http.ResponseWriter, errMsg string, err error) {
	switch {
	case feeds.ErrValidation.Has(err), market.ErrValidation.Has(err):
		sendJSONError(w, errMsg, err.Error(), http.StatusBadRequest)
	case feeds.ErrNotFound.Has(err), market.ErrNotFound.Has(err):
		sendJSONError(w, errMsg, err.Error(), http.StatusNotFound)
	default:
		sendJSONError(w, errMsg, err.Error(), http.StatusInternalServerError)
	}
}
