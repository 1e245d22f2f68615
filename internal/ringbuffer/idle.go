// idle.go: configurable idle strategies for ring buffer consumer loops
//
// These implement different trade-offs between latency and CPU usage for a
// consumer that finds the ring temporarily empty.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringbuffer

import (
	"runtime"
	"sync/atomic"
	"time"
)

// IdleStrategy controls how a consumer waits when no work is available.
type IdleStrategy interface {
	// Idle is called when no work is available. Returns true if the caller
	// should continue processing, false if it should check for shutdown.
	Idle() bool

	// Reset is called when work is found, to clear any backoff state.
	Reset()

	String() string
}

// SpinningIdleStrategy never yields; minimum latency, maximum CPU.
type SpinningIdleStrategy struct{}

func NewSpinningIdleStrategy() *SpinningIdleStrategy { return &SpinningIdleStrategy{} }

func (s *SpinningIdleStrategy) Idle() bool   { return true }
func (s *SpinningIdleStrategy) Reset()       {}
func (s *SpinningIdleStrategy) String() string { return "spinning" }

// SleepingIdleStrategy spins for maxSpins iterations, then sleeps sleepDuration.
type SleepingIdleStrategy struct {
	sleepDuration time.Duration
	spins         int
	maxSpins      int
}

func NewSleepingIdleStrategy(sleepDuration time.Duration, maxSpins int) *SleepingIdleStrategy {
	if sleepDuration <= 0 {
		sleepDuration = time.Millisecond
	}
	if maxSpins < 0 {
		maxSpins = 0
	}
	return &SleepingIdleStrategy{sleepDuration: sleepDuration, maxSpins: maxSpins}
}

func (s *SleepingIdleStrategy) Idle() bool {
	if s.spins < s.maxSpins {
		s.spins++
		return true
	}
	time.Sleep(s.sleepDuration)
	return true
}

func (s *SleepingIdleStrategy) Reset()         { s.spins = 0 }
func (s *SleepingIdleStrategy) String() string { return "sleeping" }

// YieldingIdleStrategy yields to the Go scheduler every maxSpins iterations.
type YieldingIdleStrategy struct {
	spins    int
	maxSpins int
}

func NewYieldingIdleStrategy(maxSpins int) *YieldingIdleStrategy {
	if maxSpins <= 0 {
		maxSpins = 1000
	}
	return &YieldingIdleStrategy{maxSpins: maxSpins}
}

func (s *YieldingIdleStrategy) Idle() bool {
	s.spins++
	if s.spins >= s.maxSpins {
		runtime.Gosched()
		s.spins = 0
	}
	return true
}

func (s *YieldingIdleStrategy) Reset()         { s.spins = 0 }
func (s *YieldingIdleStrategy) String() string { return "yielding" }

// ChannelIdleStrategy blocks on a channel, waking on WakeUp or timeout.
type ChannelIdleStrategy struct {
	wakeupChan  chan struct{}
	timeoutChan <-chan time.Time
	timeout     time.Duration
	timer       *time.Timer
}

func NewChannelIdleStrategy(timeout time.Duration) *ChannelIdleStrategy {
	s := &ChannelIdleStrategy{
		wakeupChan: make(chan struct{}, 1),
		timeout:    timeout,
	}
	if timeout > 0 {
		s.timer = time.NewTimer(timeout)
		s.timeoutChan = s.timer.C
	}
	return s
}

func (s *ChannelIdleStrategy) Idle() bool {
	if s.timeout > 0 {
		select {
		case <-s.wakeupChan:
			if !s.timer.Stop() {
				select {
				case <-s.timer.C:
				default:
				}
			}
			s.timer.Reset(s.timeout)
			return true
		case <-s.timeoutChan:
			s.timer.Reset(s.timeout)
			return true
		}
	}
	<-s.wakeupChan
	return true
}

func (s *ChannelIdleStrategy) Reset() {
	select {
	case s.wakeupChan <- struct{}{}:
	default:
	}
}

func (s *ChannelIdleStrategy) String() string { return "channel" }

// WakeUp signals the strategy that work may be available; producers call
// this after a successful publish when a consumer may be parked.
func (s *ChannelIdleStrategy) WakeUp() {
	select {
	case s.wakeupChan <- struct{}{}:
	default:
	}
}

// ProgressiveIdleStrategy hot-spins, then yields occasionally, then backs
// off with exponentially increasing sleeps, resetting whenever work is found.
type ProgressiveIdleStrategy struct {
	spins        int64
	sleepCounter int64

	hotSpinThreshold  int
	warmSpinThreshold int
	sleepDuration     time.Duration
	maxSleepDuration  time.Duration
}

func NewProgressiveIdleStrategy() *ProgressiveIdleStrategy {
	return &ProgressiveIdleStrategy{
		hotSpinThreshold:  1000,
		warmSpinThreshold: 10000,
		sleepDuration:     time.Microsecond,
		maxSleepDuration:  time.Millisecond,
	}
}

func (s *ProgressiveIdleStrategy) Idle() bool {
	spins := atomic.AddInt64(&s.spins, 1)

	switch {
	case spins < int64(s.hotSpinThreshold):
		return true
	case spins < int64(s.warmSpinThreshold):
		if spins&7 == 0 {
			runtime.Gosched()
		}
		return true
	default:
		sleepCounter := atomic.LoadInt64(&s.sleepCounter)
		shift := sleepCounter / 2
		if shift > 10 {
			shift = 10
		}
		d := s.sleepDuration * time.Duration(1<<shift)
		if d > s.maxSleepDuration {
			d = s.maxSleepDuration
		}
		time.Sleep(d)
		atomic.AddInt64(&s.sleepCounter, 1)
		atomic.StoreInt64(&s.spins, 0)
		return true
	}
}

func (s *ProgressiveIdleStrategy) Reset() {
	atomic.StoreInt64(&s.spins, 0)
	atomic.StoreInt64(&s.sleepCounter, 0)
}

func (s *ProgressiveIdleStrategy) String() string { return "progressive" }
