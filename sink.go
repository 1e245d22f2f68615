// sink.go: sink abstraction and writer synchronization primitives for ember
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"io"
	"os"
	"sync/atomic"
)

// WriteSyncer combines io.Writer with the ability to flush written data to
// persistent storage. Every file-backed sink writes through one.
type WriteSyncer interface {
	io.Writer
	Sync() error
}

// nopSyncer wraps a plain io.Writer with a no-op Sync, for destinations
// that need no explicit flush (in-memory buffers, pipes).
type nopSyncer struct{ io.Writer }

func (n nopSyncer) Sync() error { return nil }

// fileSyncer wraps *os.File, routing Sync to the fsync syscall.
type fileSyncer struct{ *os.File }

func (f fileSyncer) Sync() error { return f.File.Sync() }

// WrapWriter converts any io.Writer into a WriteSyncer, using an explicit
// fsync for *os.File, passing through an already-conforming WriteSyncer,
// and falling back to a no-op Sync otherwise.
func WrapWriter(w io.Writer) WriteSyncer {
	switch t := w.(type) {
	case *os.File:
		return fileSyncer{t}
	case WriteSyncer:
		return t
	default:
		return nopSyncer{w}
	}
}

// multiWS fans writes out to several WriteSyncers, preserving the first
// error encountered while still attempting every destination.
type multiWS struct{ ws []WriteSyncer }

// MultiWriteSyncer duplicates every write across writers.
func MultiWriteSyncer(writers ...WriteSyncer) WriteSyncer {
	cp := make([]WriteSyncer, 0, len(writers))
	for _, w := range writers {
		if w != nil {
			cp = append(cp, w)
		}
	}
	return &multiWS{ws: cp}
}

func (m *multiWS) Write(p []byte) (int, error) {
	var firstErr error
	for _, w := range m.ws {
		if _, err := w.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return 0, firstErr
	}
	return len(p), nil
}

func (m *multiWS) Sync() error {
	var firstErr error
	for _, w := range m.ws {
		if err := w.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Sink is the abstract destination contract every concrete sink
// (ConsoleSink, RollingFileSink, BatchingFileSink, MappedFileSink)
// implements. Append must be safe under concurrent invocation; a closed
// sink silently drops events.
type Sink interface {
	// Append formats and writes one event if its level passes the sink's
	// own threshold. Never returns an error to the caller; failures are
	// reported through the package ErrorHandler.
	Append(event *Event)

	SetLayout(layout Layout)
	Layout() Layout

	SetLevel(level Level)
	Level() Level
	IsLevelEnabled(level Level) bool

	Close() error
	IsClosed() bool

	Name() string
}

// sinkBase centralizes the level gating and closed-flag bookkeeping shared
// by every concrete sink, mirroring how each teacher sink embeds its own
// small mutex/atomic core instead of duplicating it per type.
type sinkBase struct {
	name   string
	level  AtomicLevel
	closed int32
	layout atomic.Pointer[Layout]
}

func newSinkBase(name string, level Level, layout Layout) sinkBase {
	b := sinkBase{name: name, level: AtomicLevel{}}
	b.level.SetLevel(level)
	b.layout.Store(&layout)
	return b
}

func (b *sinkBase) Name() string                      { return b.name }
func (b *sinkBase) SetLevel(level Level)              { b.level.SetLevel(level) }
func (b *sinkBase) Level() Level                       { return b.level.Level() }
func (b *sinkBase) IsLevelEnabled(level Level) bool    { return b.level.Enabled(level) }
func (b *sinkBase) IsClosed() bool                     { return atomic.LoadInt32(&b.closed) != 0 }
func (b *sinkBase) markClosed() bool                   { return atomic.CompareAndSwapInt32(&b.closed, 0, 1) }
func (b *sinkBase) SetLayout(layout Layout)            { b.layout.Store(&layout) }
func (b *sinkBase) Layout() Layout                     { return *b.layout.Load() }
