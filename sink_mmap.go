// sink_mmap.go: MappedFileSink backed by a memory-mapped region
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

const (
	defaultMmapCapacity  = 8 << 20 // 8 MiB
	defaultMmapSyncEvery = 2 * time.Second
)

// MappedFileSink writes formatted records directly into a memory-mapped
// region of its backing file, avoiding a write(2) syscall per record. The
// region grows (unmap, truncate, remap) when it would overflow, and is
// synced to disk periodically as well as on Close.
type MappedFileSink struct {
	sinkBase

	mu           sync.Mutex
	file         *os.File
	data         []byte
	capacity     int64
	offset       int64
	growthFactor int64
	syncEvery    time.Duration
	lastSync     time.Time
}

// MappedFileSinkOptions configures a new MappedFileSink.
type MappedFileSinkOptions struct {
	Path            string
	InitialCapacity int64         // bytes; default 8 MiB
	SyncEvery       time.Duration // forced Msync interval; default 2s
}

// NewMappedFileSink opens (or creates) opts.Path, truncates it to the
// initial capacity, and maps it into memory.
func NewMappedFileSink(name string, opts MappedFileSinkOptions, level Level, layout Layout) (*MappedFileSink, error) {
	capacity := opts.InitialCapacity
	if capacity <= 0 {
		capacity = defaultMmapCapacity
	}
	syncEvery := opts.SyncEvery
	if syncEvery <= 0 {
		syncEvery = defaultMmapSyncEvery
	}

	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, newComponentError(ErrCodeFileOpen, "open "+opts.Path+": "+err.Error())
	}

	info, err := f.Stat()
	offset := int64(0)
	if err == nil {
		offset = info.Size()
		if offset > capacity {
			capacity = offset
		}
	}

	if err := f.Truncate(capacity); err != nil {
		f.Close()
		return nil, newComponentError(ErrCodeMmapFailed, "truncate: "+err.Error())
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(capacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, newComponentError(ErrCodeMmapFailed, "mmap: "+err.Error())
	}

	return &MappedFileSink{
		sinkBase:     newSinkBase(name, level, layout),
		file:         f,
		data:         data,
		capacity:     capacity,
		offset:       offset,
		growthFactor: 2,
		syncEvery:    syncEvery,
		lastSync:     time.Now(),
	}, nil
}

// Append writes event's formatted bytes into the mapped region, growing it
// first if necessary.
func (m *MappedFileSink) Append(event *Event) {
	if m.IsClosed() || !m.IsLevelEnabled(event.Level) {
		return
	}
	layout := m.Layout()
	if layout == nil {
		return
	}
	line := layout.Format(event)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.offset+int64(len(line)) > m.capacity {
		if err := m.growLocked(int64(len(line))); err != nil {
			reportDiagnostic(m.Name(), newComponentError(ErrCodeMmapFailed, err.Error()))
			return
		}
	}

	n := copy(m.data[m.offset:], line)
	m.offset += int64(n)

	if time.Since(m.lastSync) >= m.syncEvery {
		m.syncLocked()
	}
}

// growLocked unmaps the current region, truncates the file to a larger
// size, and remaps it. Caller must hold m.mu.
func (m *MappedFileSink) growLocked(minExtra int64) error {
	newCapacity := m.capacity * m.growthFactor
	if newCapacity < m.capacity+minExtra {
		newCapacity = m.capacity + minExtra
	}

	if err := unix.Munmap(m.data); err != nil {
		return err
	}
	if err := m.file.Truncate(newCapacity); err != nil {
		return err
	}
	data, err := unix.Mmap(int(m.file.Fd()), 0, int(newCapacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return err
	}
	m.data = data
	m.capacity = newCapacity
	return nil
}

// syncLocked flushes dirty pages to disk. Caller must hold m.mu.
func (m *MappedFileSink) syncLocked() {
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		reportDiagnostic(m.Name(), newComponentError(ErrCodeMmapFailed, "msync: "+err.Error()))
	}
	m.lastSync = time.Now()
}

// Close syncs the mapped region, unmaps it, truncates the file down to the
// logical end of data (dropping unused preallocated capacity), and closes
// the file.
func (m *MappedFileSink) Close() error {
	m.markClosed()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil
	}

	m.syncLocked()
	if err := unix.Munmap(m.data); err != nil {
		reportDiagnostic(m.Name(), newComponentError(ErrCodeMmapFailed, "munmap: "+err.Error()))
	}
	m.data = nil

	if err := m.file.Truncate(m.offset); err != nil {
		reportDiagnostic(m.Name(), newComponentError(ErrCodeMmapFailed, "final truncate: "+err.Error()))
	}
	return m.file.Close()
}
