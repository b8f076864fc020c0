// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

// Package boltdb implements a KeyValueStore backed by an embedded bolt file.
package boltdb

import (
	"bytes"
	"context"
	"time"

	"github.com/boltdb/bolt"
	"github.com/zeebo/errs"

	"github.com/feedbay/feedbay/storage"
)

// Error is the default boltdb error class.
var Error = errs.Class("boltdb")

const (
	// fileMode sets permissions so only the owner can read and write.
	fileMode       = 0600
	defaultTimeout = 1 * time.Second
)

var recordsBucket = []byte("records")

// Client is the storage interface for the bolt database.
type Client struct {
	db   *bolt.DB
	Path string
}

// New instantiates a new boltdb client at the given path.
func New(path string) (*Client, error) {
	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: defaultTimeout})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recordsBucket)
		return err
	})
	if err != nil {
		return nil, Error.Wrap(errs.Combine(err, db.Close()))
	}

	return &Client{db: db, Path: path}, nil
}

// Put adds a value to the provided key.
func (client *Client) Put(ctx context.Context, key storage.Key, value storage.Value) error {
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}
	return Error.Wrap(client.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recordsBucket).Put(key, value)
	}))
}

// Get returns the value for a key, or storage.ErrKeyNotFound.
func (client *Client) Get(ctx context.Context, key storage.Key) (storage.Value, error) {
	var value storage.Value
	err := client.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(recordsBucket).Get(key)
		if data == nil {
			return storage.ErrKeyNotFound.New("%q", key)
		}
		value = storage.CloneValue(data)
		return nil
	})
	if storage.ErrKeyNotFound.Has(err) {
		return nil, err
	}
	return value, Error.Wrap(err)
}

// GetAll returns values for the provided keys; missing keys yield nil.
func (client *Client) GetAll(ctx context.Context, keys storage.Keys) (storage.Values, error) {
	values := make(storage.Values, 0, len(keys))
	err := client.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(recordsBucket)
		for _, key := range keys {
			data := bucket.Get(key)
			if data == nil {
				values = append(values, nil)
				continue
			}
			values = append(values, storage.CloneValue(data))
		}
		return nil
	})
	return values, Error.Wrap(err)
}

// Delete removes the key and its value.
func (client *Client) Delete(ctx context.Context, key storage.Key) error {
	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}
	return Error.Wrap(client.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recordsBucket).Delete(key)
	}))
}

// List returns keys with the given prefix in ascending order.
func (client *Client) List(ctx context.Context, prefix storage.Key, limit storage.Limit) (storage.Keys, error) {
	var keys storage.Keys
	err := client.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(recordsBucket).Cursor()
		for key, _ := cursor.Seek(prefix); key != nil && bytes.HasPrefix(key, prefix); key, _ = cursor.Next() {
			keys = append(keys, storage.CloneKey(key))
			if limit > 0 && len(keys) >= int(limit) {
				break
			}
		}
		return nil
	})
	return keys, Error.Wrap(err)
}

// Close closes the bolt database.
func (client *Client) Close() error {
	return Error.Wrap(client.db.Close())
}
