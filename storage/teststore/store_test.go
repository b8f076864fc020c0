// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package teststore

import (
	"testing"

	"github.com/feedbay/feedbay/storage/testsuite"
)

func TestSuite(t *testing.T) {
	testsuite.RunTests(t, New())
}

func TestScoreSetSuite(t *testing.T) {
	testsuite.RunScoreSetTests(t, New())
}
