// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package boltdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feedbay/feedbay/internal/testcontext"
	"github.com/feedbay/feedbay/storage/testsuite"
)

func TestSuite(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	client, err := New(ctx.File("bolt", "feedbay.db"))
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	testsuite.RunTests(t, client)
}
