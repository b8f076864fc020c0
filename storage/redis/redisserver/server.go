// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

// Package redisserver starts an in-process redis server for tests.
package redisserver

import (
	"github.com/alicebob/miniredis/v2"
)

// Start starts an in-process miniredis server and returns its address
// together with a cleanup function.
func Start() (addr string, cleanup func(), err error) {
	server, err := miniredis.Run()
	if err != nil {
		return "", nil, err
	}
	return server.Addr(), server.Close, nil
}
