// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

// Package testsuite contains conformance tests shared by the key value
// store implementations.
package testsuite

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feedbay/feedbay/internal/testcontext"
	"github.com/feedbay/feedbay/storage"
)

// RunTests runs the KeyValueStore conformance suite against store.
func RunTests(t *testing.T, store storage.KeyValueStore) {
	t.Run("CRUD", func(t *testing.T) { testCRUD(t, store) })
	t.Run("GetAll", func(t *testing.T) { testGetAll(t, store) })
	t.Run("List", func(t *testing.T) { testList(t, store) })
	t.Run("EmptyKey", func(t *testing.T) { testEmptyKey(t, store) })
}

func testCRUD(t *testing.T, store storage.KeyValueStore) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	key := storage.Key("crud/alpha")
	value := storage.Value(`{"hello":"world"}`)

	require.NoError(t, store.Put(ctx, key, value))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, value, got)

	updated := storage.Value(`{"hello":"again"}`)
	require.NoError(t, store.Put(ctx, key, updated))

	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, updated, got)

	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Get(ctx, key)
	require.True(t, storage.ErrKeyNotFound.Has(err))

	// deleting a missing key is not an error
	require.NoError(t, store.Delete(ctx, key))
}

func testGetAll(t *testing.T, store storage.KeyValueStore) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	require.NoError(t, store.Put(ctx, storage.Key("getall/a"), storage.Value("1")))
	require.NoError(t, store.Put(ctx, storage.Key("getall/b"), storage.Value("2")))

	values, err := store.GetAll(ctx, storage.Keys{
		storage.Key("getall/a"),
		storage.Key("getall/missing"),
		storage.Key("getall/b"),
	})
	require.NoError(t, err)
	require.Len(t, values, 3)
	require.Equal(t, storage.Value("1"), values[0])
	require.Nil(t, values[1])
	require.Equal(t, storage.Value("2"), values[2])
}

func testList(t *testing.T, store storage.KeyValueStore) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	for _, key := range []string{"list/a", "list/b", "list/c", "listother/x"} {
		require.NoError(t, store.Put(ctx, storage.Key(key), storage.Value("v")))
	}

	keys, err := store.List(ctx, storage.Key("list/"), 0)
	require.NoError(t, err)
	require.Equal(t, []string{"list/a", "list/b", "list/c"}, keys.Strings())

	keys, err = store.List(ctx, storage.Key("list/"), 2)
	require.NoError(t, err)
	require.Equal(t, []string{"list/a", "list/b"}, keys.Strings())

	keys, err = store.List(ctx, storage.Key("list/nothing/"), 0)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func testEmptyKey(t *testing.T, store storage.KeyValueStore) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	err := store.Put(ctx, nil, storage.Value("value"))
	require.True(t, storage.ErrEmptyKey.Has(err))

	err = store.Delete(ctx, nil)
	require.True(t, storage.ErrEmptyKey.Has(err))
}

// RunScoreSetTests runs the ScoreSet conformance suite against scores.
func RunScoreSetTests(t *testing.T, scores storage.ScoreSet) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	set := storage.Key("scores/test")

	require.NoError(t, scores.ScoreUpsert(ctx, set, "a", 100))
	require.NoError(t, scores.ScoreUpsert(ctx, set, "b", 300))
	require.NoError(t, scores.ScoreUpsert(ctx, set, "c", 200))

	entries, err := scores.ScoreRange(ctx, set, 0, 1000, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "b", entries[0].Member)
	require.Equal(t, "c", entries[1].Member)
	require.Equal(t, "a", entries[2].Member)

	// upsert overwrites the previous score
	require.NoError(t, scores.ScoreUpsert(ctx, set, "a", 400))
	entries, err = scores.ScoreRange(ctx, set, 0, 1000, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Member)

	// range excludes scores outside [min, max]
	entries, err = scores.ScoreRange(ctx, set, 250, 1000, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		require.GreaterOrEqual(t, entry.Score, float64(250))
	}
}
