// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package storage

// CloneKey creates a copy of key.
func CloneKey(key Key) Key { return append(key[:0:0], key...) }

// CloneValue creates a copy of value.
func CloneValue(value Value) Value { return append(value[:0:0], value...) }

// JoinKey builds a key from path segments separated by Delimiter.
func JoinKey(segments ...string) Key {
	n := 0
	for _, s := range segments {
		n += len(s) + 1
	}
	key := make(Key, 0, n)
	for i, s := range segments {
		if i > 0 {
			key = append(key, Delimiter)
		}
		key = append(key, s...)
	}
	return key
}
