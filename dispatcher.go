// dispatcher.go: AsyncDispatcher - ring-buffered fan-out to wrapped sinks
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"sync/atomic"
	"time"
)

// OverflowStrategy selects what AsyncDispatcher.Publish does when the ring
// buffer is full.
type OverflowStrategy int

const (
	// OverflowBlock retries with a short bounded timeout; if still full,
	// the event is counted as dropped.
	OverflowBlock OverflowStrategy = iota
	// OverflowDropOldest consumes one event (discarding it) to make room.
	OverflowDropOldest
	// OverflowDropNewest discards the incoming event.
	OverflowDropNewest
	// OverflowSynchronousWrite bypasses the queue entirely, fanning the
	// event directly to the wrapped sinks on the caller's goroutine.
	OverflowSynchronousWrite
	// OverflowDiscard silently discards the incoming event.
	OverflowDiscard
)

const (
	blockRetryTimeout   = 1 * time.Millisecond
	defaultBatchSizeDsp = 128
	defaultJoinTimeout  = 5 * time.Second
	defaultFlushTimeout = 5 * time.Second
	idleParkDuration    = time.Microsecond
)

// DispatcherOption configures an AsyncDispatcher at construction time.
type DispatcherOption func(*AsyncDispatcher)

// WithIdleStrategy sets the CPU usage strategy the worker uses when the
// ring buffer is momentarily empty. Defaults to a fresh
// NewProgressiveIdleStrategy() if not set.
func WithIdleStrategy(strategy IdleStrategy) DispatcherOption {
	return func(d *AsyncDispatcher) {
		d.idle = strategy
	}
}

// DispatcherStats is an observable snapshot of an AsyncDispatcher's
// counters.
type DispatcherStats struct {
	Published         int64
	Processed         int64
	Dropped           int64
	OverflowEvents    int64
	Pending           int64
	DropRate          float64
	BufferUtilization float64
	Running           bool
	Shutdown          bool
}

// AsyncDispatcher wraps a RingBuffer and a single worker goroutine that
// drains it and fans events to a fixed set of sinks. Level gating happens
// upstream, in Logger; the dispatcher only applies backpressure policy.
type AsyncDispatcher struct {
	ring     *RingBuffer
	sinks    []Sink
	strategy OverflowStrategy
	batch    int
	idle     IdleStrategy

	published      int64
	processed      int64
	dropped        int64
	overflowEvents int64

	running  int32
	shutdown int32

	workerDone chan struct{}
}

// NewAsyncDispatcher starts a dispatcher backed by a RingBuffer of the
// given capacity, fanning drained events to sinks.
func NewAsyncDispatcher(capacity int64, strategy OverflowStrategy, sinks []Sink, opts ...DispatcherOption) (*AsyncDispatcher, error) {
	ring, err := NewRingBuffer(capacity)
	if err != nil {
		return nil, err
	}
	d := &AsyncDispatcher{
		ring:       ring,
		sinks:      sinks,
		strategy:   strategy,
		batch:      defaultBatchSizeDsp,
		running:    1,
		workerDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.idle == nil {
		d.idle = NewProgressiveIdleStrategy()
	}
	go d.run()
	return d, nil
}

// Publish enqueues event, applying the configured overflow strategy if the
// ring buffer is momentarily full.
func (d *AsyncDispatcher) Publish(event *Event) {
	if atomic.LoadInt32(&d.shutdown) == 1 {
		return
	}

	if d.ring.TryPublish(event) {
		atomic.AddInt64(&d.published, 1)
		return
	}

	atomic.AddInt64(&d.overflowEvents, 1)

	switch d.strategy {
	case OverflowBlock:
		if d.ring.Publish(event, blockRetryTimeout) {
			atomic.AddInt64(&d.published, 1)
			return
		}
		atomic.AddInt64(&d.dropped, 1)

	case OverflowDropOldest:
		if _, evicted := d.ring.Consume(); evicted {
			atomic.AddInt64(&d.dropped, 1)
		}
		if d.ring.TryPublish(event) {
			atomic.AddInt64(&d.published, 1)
			return
		}
		atomic.AddInt64(&d.dropped, 1)

	case OverflowDropNewest:
		atomic.AddInt64(&d.dropped, 1)

	case OverflowSynchronousWrite:
		d.fanOut(event)
		atomic.AddInt64(&d.published, 1)
		atomic.AddInt64(&d.processed, 1)

	case OverflowDiscard:
		atomic.AddInt64(&d.dropped, 1)
	}
}

func (d *AsyncDispatcher) run() {
	defer close(d.workerDone)
	out := make([]*Event, d.batch)

	for {
		n := d.ring.ConsumeBatch(out)
		for i := 0; i < n; i++ {
			d.fanOut(out[i])
			atomic.AddInt64(&d.processed, 1)
		}

		if n > 0 {
			d.idle.Reset()
			continue
		}

		if atomic.LoadInt32(&d.running) == 0 && d.ring.IsEmpty() {
			return
		}
		d.idle.Idle()
	}
}

func (d *AsyncDispatcher) fanOut(event *Event) {
	for _, s := range d.sinks {
		appendToSink(s, event)
	}
}

// appendToSink isolates a single sink's Append panic so one misbehaving
// sink cannot take down the worker or the fan-out of sibling sinks.
func appendToSink(s Sink, event *Event) {
	defer recoverAsDiagnostic("async-dispatcher")
	s.Append(event)
}

// Flush blocks until the ring buffer drains or timeout elapses.
func (d *AsyncDispatcher) Flush(timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = defaultFlushTimeout
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if d.ring.IsEmpty() {
			return true
		}
		time.Sleep(idleParkDuration)
	}
	return d.ring.IsEmpty()
}

// Shutdown marks the dispatcher shut down (later Publish calls return
// without enqueuing), signals the worker to drain and exit, joins it within
// timeout, and closes every wrapped sink.
func (d *AsyncDispatcher) Shutdown(timeout time.Duration) {
	if !atomic.CompareAndSwapInt32(&d.shutdown, 0, 1) {
		return
	}
	if timeout <= 0 {
		timeout = defaultJoinTimeout
	}
	atomic.StoreInt32(&d.running, 0)

	select {
	case <-d.workerDone:
	case <-time.After(timeout):
		reportDiagnostic("async-dispatcher", newComponentError(ErrCodeExecution, "worker join timed out"))
	}

	d.ring.Close()
	for _, s := range d.sinks {
		if err := s.Close(); err != nil {
			reportDiagnostic("async-dispatcher", newComponentError(ErrCodeSinkClosed, err.Error()))
		}
	}
}

// Stats returns a snapshot of the dispatcher's counters.
func (d *AsyncDispatcher) Stats() DispatcherStats {
	published := atomic.LoadInt64(&d.published)
	processed := atomic.LoadInt64(&d.processed)
	dropped := atomic.LoadInt64(&d.dropped)
	overflow := atomic.LoadInt64(&d.overflowEvents)
	pending := published - processed - dropped
	if pending < 0 {
		pending = 0
	}

	var dropRate float64
	if total := published + dropped; total > 0 {
		dropRate = float64(dropped) / float64(total)
	}

	ringStats := d.ring.Stats()
	var utilization float64
	if ringStats.Capacity > 0 {
		utilization = float64(ringStats.CurrentSize) / float64(ringStats.Capacity)
	}

	return DispatcherStats{
		Published:         published,
		Processed:         processed,
		Dropped:           dropped,
		OverflowEvents:    overflow,
		Pending:           pending,
		DropRate:          dropRate,
		BufferUtilization: utilization,
		Running:           atomic.LoadInt32(&d.running) == 1,
		Shutdown:          atomic.LoadInt32(&d.shutdown) == 1,
	}
}
