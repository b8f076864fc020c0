// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package trending_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/feedbay/feedbay/internal/testcontext"
	"github.com/feedbay/feedbay/storage/teststore"
	"github.com/feedbay/feedbay/trending"
)

type fakeRecord struct {
	id         string
	categories []string
}

func (r fakeRecord) TrendingID() string { return r.id }

func (r fakeRecord) HasCategory(category string) bool {
	for _, c := range r.categories {
		if c == category {
			return true
		}
	}
	return false
}

type fakeSource map[string]fakeRecord

func (s fakeSource) Resolve(ctx context.Context, id string) (trending.Record, error) {
	record, ok := s[id]
	if !ok {
		return nil, nil
	}
	return record, nil
}

func ids(records []trending.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.TrendingID())
	}
	return out
}

func TestRecordViewAndTopK(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	source := fakeSource{
		"x": {id: "x"},
		"y": {id: "y"},
	}
	tracker := trending.NewTracker(zaptest.NewLogger(t), teststore.New(), source, "feeds")

	now := time.Now()
	tracker.SetNow(func() time.Time { return now })

	require.NoError(t, tracker.RecordView(ctx, "y", ""))

	now = now.Add(time.Minute)
	require.NoError(t, tracker.RecordView(ctx, "x", ""))

	for _, window := range trending.Windows() {
		records, err := tracker.TopK(ctx, window, 10, "", "")
		require.NoError(t, err)
		// most recently viewed first
		require.Equal(t, []string{"x", "y"}, ids(records), "window %s", window)
	}
}

func TestTopKWindowCutoff(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	source := fakeSource{"x": {id: "x"}}
	tracker := trending.NewTracker(zaptest.NewLogger(t), teststore.New(), source, "feeds")

	now := time.Now()
	tracker.SetNow(func() time.Time { return now })
	require.NoError(t, tracker.RecordView(ctx, "x", ""))

	// two hours later the view has aged out of the 1h window but not 24h
	now = now.Add(2 * time.Hour)

	records, err := tracker.TopK(ctx, trending.Window1h, 10, "", "")
	require.NoError(t, err)
	require.Empty(t, records)

	records, err = tracker.TopK(ctx, trending.Window24h, 10, "", "")
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, ids(records))
}

func TestTopKParentScope(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	source := fakeSource{
		"a": {id: "a"},
		"b": {id: "b"},
	}
	tracker := trending.NewTracker(zaptest.NewLogger(t), teststore.New(), source, "feeds")

	require.NoError(t, tracker.RecordView(ctx, "a", "feed-1"))
	require.NoError(t, tracker.RecordView(ctx, "b", "feed-2"))

	records, err := tracker.TopK(ctx, trending.Window24h, 10, "feed-1", "")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, ids(records))

	records, err = tracker.TopK(ctx, trending.Window24h, 10, "", "")
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestTopKSkipsDeleted(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	source := fakeSource{"kept": {id: "kept"}}
	tracker := trending.NewTracker(zaptest.NewLogger(t), teststore.New(), source, "feeds")

	require.NoError(t, tracker.RecordView(ctx, "deleted", ""))
	require.NoError(t, tracker.RecordView(ctx, "kept", ""))

	records, err := tracker.TopK(ctx, trending.Window24h, 10, "", "")
	require.NoError(t, err)
	require.Equal(t, []string{"kept"}, ids(records))
}

func TestTopKCategoryFilter(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	source := fakeSource{
		"a": {id: "a", categories: []string{"go"}},
		"b": {id: "b", categories: []string{"rust"}},
		"c": {id: "c", categories: []string{"go"}},
	}
	tracker := trending.NewTracker(zaptest.NewLogger(t), teststore.New(), source, "feeds")

	now := time.Now()
	tracker.SetNow(func() time.Time { return now })
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, tracker.RecordView(ctx, id, ""))
		now = now.Add(time.Second)
	}

	records, err := tracker.TopK(ctx, trending.Window24h, 2, "", "go")
	require.NoError(t, err)
	require.Equal(t, []string{"c", "a"}, ids(records))

	// the filter is best effort and may under-return
	records, err = tracker.TopK(ctx, trending.Window24h, 5, "", "rust")
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, ids(records))
}

func TestDisabledTracker(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	tracker := trending.NewTracker(zaptest.NewLogger(t), nil, fakeSource{}, "feeds")
	require.False(t, tracker.Enabled())

	require.NoError(t, tracker.RecordView(ctx, "x", ""))

	records, err := tracker.TopK(ctx, trending.Window1h, 10, "", "")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestParseWindow(t *testing.T) {
	for _, window := range trending.Windows() {
		parsed, err := trending.ParseWindow(window.String())
		require.NoError(t, err)
		require.Equal(t, window, parsed)
	}

	_, err := trending.ParseWindow("5m")
	require.Error(t, err)
}
