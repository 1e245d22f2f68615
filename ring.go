// ring.go: public surface over the internal ring buffer and idle strategies
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"time"

	"github.com/emberlog/ember/internal/ringbuffer"
)

// RingBuffer is a bounded, lock-free, multi-producer multi-consumer queue
// of *Event. AsyncDispatcher owns one; it is also usable standalone for
// callers building their own dispatch loop.
type RingBuffer = ringbuffer.Ring[*Event]

// NewRingBuffer constructs a RingBuffer with the given power-of-two
// capacity, returning ringbuffer.ErrInvalidCapacity otherwise.
func NewRingBuffer(capacity int64) (*RingBuffer, error) {
	return ringbuffer.New[*Event](capacity)
}

// RingStats is a point-in-time snapshot of RingBuffer counters.
type RingStats = ringbuffer.Stats

// IdleStrategy controls CPU usage of a dispatcher worker when the ring is
// empty. See NewSpinningIdleStrategy, NewSleepingIdleStrategy,
// NewYieldingIdleStrategy, NewChannelIdleStrategy, NewProgressiveIdleStrategy.
type IdleStrategy = ringbuffer.IdleStrategy

func NewSpinningIdleStrategy() IdleStrategy { return ringbuffer.NewSpinningIdleStrategy() }

func NewSleepingIdleStrategy(sleep time.Duration, maxSpins int) IdleStrategy {
	return ringbuffer.NewSleepingIdleStrategy(sleep, maxSpins)
}

func NewYieldingIdleStrategy(maxSpins int) IdleStrategy {
	return ringbuffer.NewYieldingIdleStrategy(maxSpins)
}

func NewChannelIdleStrategy(timeout time.Duration) IdleStrategy {
	return ringbuffer.NewChannelIdleStrategy(timeout)
}

func NewProgressiveIdleStrategy() IdleStrategy { return ringbuffer.NewProgressiveIdleStrategy() }

// BalancedIdleStrategy is a shared progressive-backoff instance, good for
// most workloads without manual tuning. The AsyncDispatcher does not use
// it by default; each dispatcher creates its own progressive strategy.
var BalancedIdleStrategy = NewProgressiveIdleStrategy()
