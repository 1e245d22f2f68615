// sink_batching.go: BatchingFileSink with size/time-triggered flush
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"os"
	"sync"
	"time"
)

const (
	defaultFlushIntervalMs = 50
	defaultBatchTimeMs     = 100
	defaultBatchSize       = 256
	closeDrainRetries      = 3
)

// BatchingFileSinkOptions configures a new BatchingFileSink.
type BatchingFileSinkOptions struct {
	Path          string
	BatchSize     int           // flush immediately once this many events are buffered
	FlushInterval time.Duration // scheduler tick; default 50ms
	BatchAge      time.Duration // max age of the oldest buffered event; default 100ms
}

// BatchingFileSink buffers events in memory and writes them to a file in
// batches, trading a small durability window for substantially fewer
// syscalls under sustained load.
type BatchingFileSink struct {
	sinkBase

	fileMu sync.Mutex
	file   *os.File

	mu        sync.Mutex
	buf       []*Event
	batchSize int
	oldestAt  time.Time

	flushInterval time.Duration
	batchAge      time.Duration

	done chan struct{}
	wg   sync.WaitGroup
}

// NewBatchingFileSink opens (or creates) opts.Path for appending and starts
// its background flush scheduler.
func NewBatchingFileSink(name string, opts BatchingFileSinkOptions, level Level, layout Layout) (*BatchingFileSink, error) {
	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, newComponentError(ErrCodeFileOpen, "open "+opts.Path+": "+err.Error())
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushInterval := opts.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushIntervalMs * time.Millisecond
	}
	batchAge := opts.BatchAge
	if batchAge <= 0 {
		batchAge = defaultBatchTimeMs * time.Millisecond
	}

	b := &BatchingFileSink{
		sinkBase:      newSinkBase(name, level, layout),
		file:          f,
		buf:           make([]*Event, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		batchAge:      batchAge,
		done:          make(chan struct{}),
	}
	b.wg.Add(1)
	go b.scheduler()
	return b, nil
}

// Append buffers event. If the buffer has reached batchSize, it triggers an
// immediate flush.
func (b *BatchingFileSink) Append(event *Event) {
	if b.IsClosed() || !b.IsLevelEnabled(event.Level) {
		return
	}

	b.mu.Lock()
	if len(b.buf) == 0 {
		b.oldestAt = time.Now()
	}
	b.buf = append(b.buf, event)
	shouldFlush := len(b.buf) >= b.batchSize
	b.mu.Unlock()

	if shouldFlush {
		b.flush()
	}
}

func (b *BatchingFileSink) scheduler() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			b.drainOnClose()
			return
		case <-ticker.C:
			b.mu.Lock()
			age := time.Since(b.oldestAt)
			stale := len(b.buf) > 0 && age >= b.batchAge
			b.mu.Unlock()
			if stale {
				b.flush()
			}
		}
	}
}

// flush drains the buffer atomically, formats every event into one byte
// buffer, and writes it once under the file lock.
func (b *BatchingFileSink) flush() {
	b.mu.Lock()
	if len(b.buf) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.buf
	b.buf = make([]*Event, 0, b.batchSize)
	b.mu.Unlock()

	b.writeBatch(batch)
}

func (b *BatchingFileSink) writeBatch(batch []*Event) bool {
	layout := b.Layout()
	if layout == nil {
		return false
	}

	var combined []byte
	for _, e := range batch {
		combined = append(combined, layout.Format(e)...)
	}

	b.fileMu.Lock()
	defer b.fileMu.Unlock()
	if b.file == nil {
		return false
	}
	if _, err := b.file.Write(combined); err != nil {
		reportDiagnostic(b.Name(), newComponentError(ErrCodeFileWrite, err.Error()))
		return false
	}
	return true
}

// drainOnClose flushes whatever remains buffered, retrying a bounded
// number of times if the write itself fails.
func (b *BatchingFileSink) drainOnClose() {
	b.mu.Lock()
	batch := b.buf
	b.buf = nil
	b.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	for attempt := 0; attempt < closeDrainRetries; attempt++ {
		if b.writeBatch(batch) {
			return
		}
	}
}

// Close stops the scheduler, drains the remaining buffer, and closes the
// underlying file.
func (b *BatchingFileSink) Close() error {
	b.markClosed()
	close(b.done)
	b.wg.Wait()

	b.fileMu.Lock()
	defer b.fileMu.Unlock()
	if b.file == nil {
		return nil
	}
	_ = b.file.Sync()
	err := b.file.Close()
	b.file = nil
	return err
}
