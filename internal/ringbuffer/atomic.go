// atomic.go: cache-line padded atomic counters for the ring buffer
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringbuffer

import "sync/atomic"

// PaddedInt64 is an int64 padded to its own cache line on both sides, so
// that hot producer/consumer cursors sitting next to each other in memory
// do not thrash a shared cache line (false sharing).
type PaddedInt64 struct {
	_   [64]byte
	val int64
	_   [64]byte
}

func (a *PaddedInt64) Load() int64 { return atomic.LoadInt64(&a.val) }

func (a *PaddedInt64) Store(val int64) { atomic.StoreInt64(&a.val, val) }

func (a *PaddedInt64) Add(delta int64) int64 { return atomic.AddInt64(&a.val, delta) }

func (a *PaddedInt64) CompareAndSwap(old, new int64) bool {
	return atomic.CompareAndSwapInt64(&a.val, old, new)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
