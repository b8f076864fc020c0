// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

// Package trending records view events and answers top-K queries over
// fixed time windows.
//
// Ranking is by recency of the last view, not by view frequency: every
// view overwrites the member's score with the current timestamp, and
// queries order by score descending.
package trending

import (
	"context"
	"math"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/feedbay/feedbay/storage"
)

var (
	mon = monkit.Package()

	// Error is the default trending error class.
	Error = errs.Class("trending")
)

// scopeAll is the score-set scope covering views across all parents.
const scopeAll = "all"

// Record is a resolvable entity returned from top-K queries.
type Record interface {
	// TrendingID returns the identifier recorded into score sets.
	TrendingID() string
	// HasCategory reports whether the record carries the category label.
	HasCategory(category string) bool
}

// Source resolves recorded identifiers back to full records. A missing
// record resolves to (nil, nil) and is skipped, not an error.
type Source interface {
	Resolve(ctx context.Context, id string) (Record, error)
}

// Tracker records view events into per-window score sets and answers
// ranked top-K queries.
//
// A tracker constructed with a nil score set degrades gracefully:
// RecordView is a no-op and TopK returns an empty result.
type Tracker struct {
	log    *zap.Logger
	scores storage.ScoreSet
	source Source
	scope  string

	nowFn func() time.Time
}

// NewTracker creates a tracker writing under the given key scope
// (for example "feeds" or "market"). scores may be nil.
func NewTracker(log *zap.Logger, scores storage.ScoreSet, source Source, scope string) *Tracker {
	return &Tracker{
		log:    log,
		scores: scores,
		source: source,
		scope:  scope,
		nowFn:  time.Now,
	}
}

// SetNow allows tests to have the tracker act as if the current time is
// whatever they want.
func (tracker *Tracker) SetNow(nowFn func() time.Time) {
	tracker.nowFn = nowFn
}

// Enabled reports whether a score set backend is configured.
func (tracker *Tracker) Enabled() bool { return tracker.scores != nil }

// RecordView upserts id -> now into every window's score set, and into
// the parent-scoped sets as well when parentID is given.
func (tracker *Tracker) RecordView(ctx context.Context, id string, parentID string) (err error) {
	defer mon.Task()(&ctx)(&err)

	if tracker.scores == nil {
		return nil
	}

	now := float64(tracker.nowFn().Unix())
	for _, window := range Windows() {
		if err := tracker.scores.ScoreUpsert(ctx, tracker.setKey(scopeAll, window), id, now); err != nil {
			return Error.Wrap(err)
		}
		if parentID != "" {
			if err := tracker.scores.ScoreUpsert(ctx, tracker.setKey(parentID, window), id, now); err != nil {
				return Error.Wrap(err)
			}
		}
	}
	return nil
}

// TopK returns up to limit records viewed within the window, most
// recently viewed first, optionally scoped to a parent and filtered by
// category.
//
// The category filter is applied after resolving candidates and is best
// effort: it pulls up to twice the requested limit of candidates and may
// return fewer than limit matches.
func (tracker *Tracker) TopK(ctx context.Context, window Window, limit int, parentID, category string) (_ []Record, err error) {
	defer mon.Task()(&ctx)(&err)

	if tracker.scores == nil || limit <= 0 {
		return nil, nil
	}

	scope := scopeAll
	if parentID != "" {
		scope = parentID
	}

	fetchLimit := limit
	if category != "" {
		fetchLimit = 2 * limit
	}

	now := tracker.nowFn().Unix()
	cutoff := float64(now) - window.Duration().Seconds()

	entries, err := tracker.scores.ScoreRange(ctx, tracker.setKey(scope, window), cutoff, math.Inf(1), fetchLimit)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	records := make([]Record, 0, limit)
	for _, entry := range entries {
		if len(records) >= limit {
			break
		}
		record, err := tracker.source.Resolve(ctx, entry.Member)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		if record == nil {
			// the record was deleted after the view was recorded
			continue
		}
		if category != "" && !record.HasCategory(category) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (tracker *Tracker) setKey(scope string, window Window) storage.Key {
	return storage.JoinKey("trend", tracker.scope, scope, window.String())
}
