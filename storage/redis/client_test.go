// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package redis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feedbay/feedbay/internal/testcontext"
	"github.com/feedbay/feedbay/storage/redis/redisserver"
	"github.com/feedbay/feedbay/storage/testsuite"
)

func TestSuite(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	addr, cleanup, err := redisserver.Start()
	require.NoError(t, err)
	defer cleanup()

	client, err := NewClient(ctx, addr, "", 0)
	require.NoError(t, err)
	defer ctx.Check(client.Close)

	testsuite.RunTests(t, client)
	testsuite.RunScoreSetTests(t, client)
}
