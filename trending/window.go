// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package trending

import (
	"time"
)

// Window is a fixed lookback duration used to scope trending queries.
type Window string

// Supported windows. The enumeration is fixed; every view is recorded
// into all of them.
const (
	Window1h  Window = "1h"
	Window24h Window = "24h"
	Window7d  Window = "7d"
	Window30d Window = "30d"
)

var windowDurations = map[Window]time.Duration{
	Window1h:  time.Hour,
	Window24h: 24 * time.Hour,
	Window7d:  7 * 24 * time.Hour,
	Window30d: 30 * 24 * time.Hour,
}

// Windows returns all supported windows.
func Windows() []Window {
	return []Window{Window1h, Window24h, Window7d, Window30d}
}

// ParseWindow validates a window identifier.
func ParseWindow(s string) (Window, error) {
	window := Window(s)
	if _, ok := windowDurations[window]; !ok {
		return "", Error.New("unsupported window %q", s)
	}
	return window, nil
}

// Duration returns the window's lookback duration.
func (w Window) Duration() time.Duration { return windowDurations[w] }

// String implements the Stringer interface.
func (w Window) String() string { return string(w) }
