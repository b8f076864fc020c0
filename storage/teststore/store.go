// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

// Package teststore implements an in-memory key value store and score set.
package teststore

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/feedbay/feedbay/storage"
)

// Client implements an in-memory key value store and score set.
type Client struct {
	mu sync.Mutex

	items  []item
	scores map[string]map[string]float64

	CallCount struct {
		Get         int
		GetAll      int
		Put         int
		Delete      int
		List        int
		ScoreUpsert int
		ScoreRange  int
		Close       int
	}
}

type item struct {
	key   storage.Key
	value storage.Value
}

// New creates a new in-memory store.
func New() *Client {
	return &Client{scores: map[string]map[string]float64{}}
}

// indexOf finds the index of key or where it could be inserted.
func (store *Client) indexOf(key storage.Key) (int, bool) {
	i := sort.Search(len(store.items), func(k int) bool {
		return bytes.Compare(store.items[k].key, key) >= 0
	})
	if i >= len(store.items) {
		return i, false
	}
	return i, bytes.Equal(store.items[i].key, key)
}

// Put adds a value to the store.
func (store *Client) Put(ctx context.Context, key storage.Key, value storage.Value) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Put++

	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}

	keyIndex, found := store.indexOf(key)
	if found {
		store.items[keyIndex].value = storage.CloneValue(value)
		return nil
	}

	store.items = append(store.items, item{})
	copy(store.items[keyIndex+1:], store.items[keyIndex:])
	store.items[keyIndex] = item{
		key:   storage.CloneKey(key),
		value: storage.CloneValue(value),
	}
	return nil
}

// Get returns the value for a key.
func (store *Client) Get(ctx context.Context, key storage.Key) (storage.Value, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Get++

	keyIndex, found := store.indexOf(key)
	if !found {
		return nil, storage.ErrKeyNotFound.New("%q", key)
	}
	return storage.CloneValue(store.items[keyIndex].value), nil
}

// GetAll returns values for the provided keys; missing keys yield nil.
func (store *Client) GetAll(ctx context.Context, keys storage.Keys) (storage.Values, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.GetAll++

	values := make(storage.Values, 0, len(keys))
	for _, key := range keys {
		keyIndex, found := store.indexOf(key)
		if !found {
			values = append(values, nil)
			continue
		}
		values = append(values, storage.CloneValue(store.items[keyIndex].value))
	}
	return values, nil
}

// Delete removes the key and its value.
func (store *Client) Delete(ctx context.Context, key storage.Key) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Delete++

	if key.IsZero() {
		return storage.ErrEmptyKey.New("")
	}

	keyIndex, found := store.indexOf(key)
	if !found {
		return nil
	}
	copy(store.items[keyIndex:], store.items[keyIndex+1:])
	store.items = store.items[:len(store.items)-1]
	return nil
}

// List returns keys with the given prefix in ascending order.
func (store *Client) List(ctx context.Context, prefix storage.Key, limit storage.Limit) (storage.Keys, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.List++

	var keys storage.Keys
	start, _ := store.indexOf(prefix)
	for i := start; i < len(store.items); i++ {
		if !bytes.HasPrefix(store.items[i].key, prefix) {
			break
		}
		keys = append(keys, storage.CloneKey(store.items[i].key))
		if limit > 0 && len(keys) >= int(limit) {
			break
		}
	}
	return keys, nil
}

// ScoreUpsert sets member's score in the named set.
func (store *Client) ScoreUpsert(ctx context.Context, set storage.Key, member string, score float64) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.ScoreUpsert++

	members, ok := store.scores[set.String()]
	if !ok {
		members = map[string]float64{}
		store.scores[set.String()] = members
	}
	members[member] = score
	return nil
}

// ScoreRange returns entries within [min, max] ordered by score descending.
func (store *Client) ScoreRange(ctx context.Context, set storage.Key, min, max float64, limit int) ([]storage.ScoreEntry, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.ScoreRange++

	var entries []storage.ScoreEntry
	for member, score := range store.scores[set.String()] {
		if score < min || score > max {
			continue
		}
		entries = append(entries, storage.ScoreEntry{Member: member, Score: score})
	}
	sort.Slice(entries, func(i, k int) bool {
		if entries[i].Score != entries[k].Score {
			return entries[i].Score > entries[k].Score
		}
		return entries[i].Member < entries[k].Member
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Close closes the store.
func (store *Client) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Close++
	return nil
}
