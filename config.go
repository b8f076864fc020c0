// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package feedbay

import (
	"github.com/feedbay/feedbay/server"
)

// RedisConfig is the configuration for the redis key value backend.
type RedisConfig struct {
	Address  string `help:"redis server address" default:"localhost:6379"`
	Password string `help:"redis server password" default:""`
	DB       int    `help:"redis database number" default:"0"`
}

// BoltConfig is the configuration for the embedded bolt key value
// backend.
type BoltConfig struct {
	Path string `help:"path of the bolt database file" default:"feedbay.db"`
}

// StorageConfig selects and configures the key value backend used by
// the feeds plugin and the trending tracker.
type StorageConfig struct {
	Backend string `help:"key value backend: redis or bolt" default:"redis"`
	Redis   RedisConfig
	Bolt    BoltConfig
}

// DatabaseConfig configures the relational backend used by the
// marketplace plugin.
type DatabaseConfig struct {
	Path string `help:"path of the marketplace sqlite database file" default:"market.db"`
}

// Config is the global configuration for a feedbay peer.
type Config struct {
	Server   server.Config
	Storage  StorageConfig
	Database DatabaseConfig
}
