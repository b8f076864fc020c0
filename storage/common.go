// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

// Package storage defines the key/value and score-set interfaces
// implemented by the redis, boltdb and teststore backends.
package storage

import (
	"context"

	"github.com/zeebo/errs"
)

// Delimiter separates nested paths in keys.
const Delimiter = '/'

var (
	// ErrKeyNotFound is returned by Get when the key is missing.
	ErrKeyNotFound = errs.Class("key not found")
	// ErrEmptyKey is returned when an empty key is passed to Put or Delete.
	ErrEmptyKey = errs.Class("empty key")
)

// Key is the type for the keys in a KeyValueStore.
type Key []byte

// Value is the type for the values in a KeyValueStore.
type Value []byte

// Keys is a slice of Key.
type Keys []Key

// Values is a slice of Value.
type Values []Value

// Limit indicates how many keys to return when calling List. Zero or
// negative means no limit.
type Limit int

// KeyValueStore describes key/value stores like redis and boltdb.
// Implementations must be safe for concurrent use.
type KeyValueStore interface {
	// Put adds a value to the provided key, replacing any existing value.
	Put(ctx context.Context, key Key, value Value) error
	// Get returns the value for a key, or ErrKeyNotFound.
	Get(ctx context.Context, key Key) (Value, error)
	// GetAll returns values for the provided keys in order; missing keys
	// yield a nil entry rather than an error.
	GetAll(ctx context.Context, keys Keys) (Values, error)
	// Delete removes the key and its value. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key Key) error
	// List returns keys with the given prefix in ascending order, up to
	// limit items.
	List(ctx context.Context, prefix Key, limit Limit) (Keys, error)
	// Close releases the underlying client.
	Close() error
}

// ScoreEntry is a member of a score set together with its score.
type ScoreEntry struct {
	Member string
	Score  float64
}

// ScoreSet describes a sorted-set capable store, used for time-windowed
// popularity ranking. Scores are unix timestamps; an upsert overwrites the
// previous score for the member.
type ScoreSet interface {
	// ScoreUpsert sets member's score in the named set.
	ScoreUpsert(ctx context.Context, set Key, member string, score float64) error
	// ScoreRange returns entries with min <= score <= max ordered by score
	// descending, up to limit items. Zero or negative limit means no limit.
	ScoreRange(ctx context.Context, set Key, min, max float64, limit int) ([]ScoreEntry, error)
	// Close releases the underlying client.
	Close() error
}

// IsZero returns true if the value is empty.
func (v Value) IsZero() bool { return len(v) == 0 }

// IsZero returns true if the key is empty.
func (k Key) IsZero() bool { return len(k) == 0 }

// String implements the Stringer interface.
func (k Key) String() string { return string(k) }

// Strings converts keys to a slice of strings.
func (k Keys) Strings() []string {
	result := make([]string, len(k))
	for i, key := range k {
		result[i] = string(key)
	}
	return result
}
