// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

// Package feedbay wires the storage backends, the feed and marketplace
// plugins, their trending trackers and the HTTP API into one peer.
package feedbay

import (
	"context"
	"net"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/feedbay/feedbay/feeds"
	"github.com/feedbay/feedbay/market"
	"github.com/feedbay/feedbay/server"
	"github.com/feedbay/feedbay/storage"
	"github.com/feedbay/feedbay/storage/boltdb"
	"github.com/feedbay/feedbay/storage/redis"
	"github.com/feedbay/feedbay/storage/storelogger"
	"github.com/feedbay/feedbay/trending"
)

// Error is the default feedbay peer error class.
var Error = errs.Class("feedbay")

// Peer is the representation of a running feedbay process.
type Peer struct {
	Log    *zap.Logger
	Config Config

	Storage struct {
		KV     storage.KeyValueStore
		Scores storage.ScoreSet
	}

	Feeds struct {
		Service  *feeds.Service
		Trending *trending.Tracker
	}

	Market struct {
		DB       *market.DB
		Trending *trending.Tracker
	}

	API struct {
		Listener net.Listener
		Server   *server.Server
	}
}

// New creates a new peer with all subsystems wired but not running.
func New(ctx context.Context, log *zap.Logger, config Config) (_ *Peer, err error) {
	peer := &Peer{
		Log:    log,
		Config: config,
	}

	{ // setup storage
		switch config.Storage.Backend {
		case "", "redis":
			client, err := redis.NewClient(ctx, config.Storage.Redis.Address,
				config.Storage.Redis.Password, config.Storage.Redis.DB)
			if err != nil {
				return nil, Error.Wrap(err)
			}
			peer.Storage.KV = storelogger.New(log.Named("kv:redis"), client)
			peer.Storage.Scores = client
		case "bolt":
			client, err := boltdb.New(config.Storage.Bolt.Path)
			if err != nil {
				return nil, Error.Wrap(err)
			}
			peer.Storage.KV = storelogger.New(log.Named("kv:bolt"), client)
			// bolt has no sorted sets, trending degrades to a no-op
			peer.Storage.Scores = nil
			log.Named("trending").Warn("score sets unavailable on bolt backend, trending disabled")
		default:
			return nil, Error.New("unknown storage backend %q", config.Storage.Backend)
		}
	}

	{ // setup feeds plugin
		peer.Feeds.Service = feeds.NewService(log.Named("feeds"), peer.Storage.KV)
		peer.Feeds.Trending = trending.NewTracker(log.Named("trending:feeds"),
			peer.Storage.Scores, peer.Feeds.Service, "feeds")
	}

	{ // setup marketplace plugin
		peer.Market.DB, err = market.Open(log.Named("market"), config.Database.Path)
		if err != nil {
			return nil, errs.Combine(Error.Wrap(err), peer.Close())
		}
		peer.Market.Trending = trending.NewTracker(log.Named("trending:market"),
			peer.Storage.Scores, peer.Market.DB, "market")
	}

	{ // setup api server
		peer.API.Listener, err = net.Listen("tcp", config.Server.Address)
		if err != nil {
			return nil, errs.Combine(Error.Wrap(err), peer.Close())
		}
		peer.API.Server = server.NewServer(log.Named("server"), peer.API.Listener,
			peer.Feeds.Service, peer.Feeds.Trending,
			peer.Market.DB, peer.Market.Trending,
			config.Server)
	}

	return peer, nil
}

// Run runs the peer until the context is cancelled.
func (peer *Peer) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return peer.API.Server.Run(ctx)
	})
	return group.Wait()
}

// Close closes all the resources.
func (peer *Peer) Close() error {
	var errlist errs.Group

	if peer.API.Server != nil {
		errlist.Add(peer.API.Server.Close())
	} else if peer.API.Listener != nil {
		errlist.Add(peer.API.Listener.Close())
	}
	if peer.Market.DB != nil {
		errlist.Add(peer.Market.DB.Close())
	}
	if peer.Storage.KV != nil {
		errlist.Add(peer.Storage.KV.Close())
	}

	return Error.Wrap(errlist.Err())
}
