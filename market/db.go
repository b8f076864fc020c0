// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package market

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

// DB provides access to the marketplace relational store.
type DB struct {
	log *zap.Logger
	db  *sql.DB

	nowFn func() time.Time
}

// Open opens the sqlite database at path and ensures the schema exists.
// Use ":memory:" for an in-memory database in tests.
func Open(log *zap.Logger, path string) (*DB, error) {
	handle, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on")
	if err != nil {
		return nil, Error.Wrap(err)
	}
	// sqlite allows a single writer; serializing through one connection
	// avoids SQLITE_BUSY under concurrent requests.
	handle.SetMaxOpenConns(1)

	db := &DB{log: log, db: handle, nowFn: time.Now}
	if err := db.createSchema(context.Background()); err != nil {
		return nil, Error.Wrap(errs.Combine(err, handle.Close()))
	}
	return db, nil
}

// SetNow allows tests to have the store act as if the current time is
// whatever they want.
func (db *DB) SetNow(nowFn func() time.Time) { db.nowFn = nowFn }

// Close closes the underlying database handle.
func (db *DB) Close() error {
	return Error.Wrap(db.db.Close())
}

func (db *DB) createSchema(ctx context.Context) error {
	_, err := db.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sellers (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS categories (
			id        TEXT PRIMARY KEY,
			name      TEXT NOT NULL UNIQUE,
			parent_id TEXT REFERENCES categories(id) ON DELETE SET NULL
		);
		CREATE TABLE IF NOT EXISTS products (
			id          TEXT PRIMARY KEY,
			seller_id   TEXT NOT NULL REFERENCES sellers(id) ON DELETE CASCADE,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price_cents INTEGER NOT NULL DEFAULT 0,
			created_at  TIMESTAMP NOT NULL,
			updated_at  TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS product_images (
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			position   INTEGER NOT NULL,
			url        TEXT NOT NULL,
			PRIMARY KEY (product_id, position)
		);
		CREATE TABLE IF NOT EXISTS product_categories (
			product_id  TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			PRIMARY KEY (product_id, category_id)
		);
		CREATE TABLE IF NOT EXISTS collections (
			id          TEXT PRIMARY KEY,
			seller_id   TEXT NOT NULL REFERENCES sellers(id) ON DELETE CASCADE,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMP NOT NULL,
			updated_at  TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS collection_products (
			collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
			product_id    TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			position      INTEGER NOT NULL,
			PRIMARY KEY (collection_id, product_id)
		);
		CREATE INDEX IF NOT EXISTS products_seller_created ON products(seller_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS collection_products_position ON collection_products(collection_id, position);
	`)
	return err
}

// Stats returns counts of products, collections, sellers and categories.
func (db *DB) Stats(ctx context.Context) (_ Stats, err error) {
	defer mon.Task()(&ctx)(&err)

	var stats Stats
	for _, count := range []struct {
		table string
		out   *int
	}{
		{"products", &stats.Products},
		{"collections", &stats.Collections},
		{"sellers", &stats.Sellers},
		{"categories", &stats.Categories},
	} {
		err := db.db.QueryRowContext(ctx, `SELECT count(*) FROM `+count.table).Scan(count.out)
		if err != nil {
			return Stats{}, Error.Wrap(err)
		}
	}
	return stats, nil
}

// limitOrAll translates our "no limit" convention into sqlite's LIMIT -1.
func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

// offsetOrZero clamps negative offsets to the start of the listing.
func offsetOrZero(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
