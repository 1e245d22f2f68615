// sink_rolling.go: RollingFileSink with size-triggered rotation and retention
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const backupTimestampFormat = "2006-01-02-15-04-05"

// rollingState names the position in the Open -> Writing -> RotateRequested
// -> Rotating -> Open state machine a RollingFileSink occupies. It exists
// purely for observability; the transitions themselves are driven inline
// by Append under the file lock.
type rollingState int32

const (
	stateOpen rollingState = iota
	stateWriting
	stateRotateRequested
	stateRotating
)

// RollingFileSink writes formatted records to a single active file,
// rotating it to a timestamped backup once it reaches maxSizeBytes and
// enforcing a maximum backup count.
type RollingFileSink struct {
	sinkBase

	mu          sync.Mutex
	basePath    string
	file        *os.File
	currentSize int64
	maxSize     int64
	maxBackups  int
	state       rollingState
	compressor  *CompressionRunner
}

// RollingFileSinkOptions configures a new RollingFileSink.
type RollingFileSinkOptions struct {
	Path       string
	MaxSize    int64 // bytes; 0 disables rotation
	MaxBackups int
	Compressor *CompressionRunner // optional; nil disables compression hand-off
}

// NewRollingFileSink opens (or creates) opts.Path for appending and returns
// a ready RollingFileSink.
func NewRollingFileSink(name string, opts RollingFileSinkOptions, level Level, layout Layout) (*RollingFileSink, error) {
	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, newComponentError(ErrCodeFileOpen, "open "+opts.Path+": "+err.Error())
	}
	info, err := f.Stat()
	size := int64(0)
	if err == nil {
		size = info.Size()
	}

	maxBackups := opts.MaxBackups
	if maxBackups < 0 {
		maxBackups = 0
	}

	return &RollingFileSink{
		sinkBase:    newSinkBase(name, level, layout),
		basePath:    opts.Path,
		file:        f,
		currentSize: size,
		maxSize:     opts.MaxSize,
		maxBackups:  maxBackups,
		state:       stateOpen,
		compressor:  opts.Compressor,
	}, nil
}

// Append writes event's formatted bytes to the active file, rotating when
// the size threshold is crossed. Write failures are diagnostic-only; they
// never propagate to the caller.
func (s *RollingFileSink) Append(event *Event) {
	if s.IsClosed() || !s.IsLevelEnabled(event.Level) {
		return
	}
	layout := s.Layout()
	if layout == nil {
		return
	}
	line := layout.Format(event)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = stateWriting
	n, err := s.file.Write(line)
	s.currentSize += int64(n)
	if err != nil {
		reportDiagnostic(s.Name(), newComponentError(ErrCodeFileWrite, err.Error()))
		return
	}

	if s.maxSize > 0 && s.currentSize >= s.maxSize {
		s.state = stateRotateRequested
		s.rotateLocked()
	}
}

// rotateLocked performs the Rotating transition. Caller must hold s.mu.
func (s *RollingFileSink) rotateLocked() {
	s.state = stateRotating

	if err := s.file.Close(); err != nil {
		reportDiagnostic(s.Name(), newComponentError(ErrCodeFileRotation, "close before rotate: "+err.Error()))
		s.state = stateOpen
		return
	}

	backupPath := nextBackupPath(s.basePath)
	if err := os.Rename(s.basePath, backupPath); err != nil {
		// rotation rename failed: reopen the same file so the next append retries
		reportDiagnostic(s.Name(), newComponentError(ErrCodeFileRotation, "rename: "+err.Error()))
		f, openErr := os.OpenFile(s.basePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if openErr == nil {
			s.file = f
		}
		s.state = stateOpen
		return
	}

	f, err := os.OpenFile(s.basePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		reportDiagnostic(s.Name(), newComponentError(ErrCodeFileOpen, "reopen after rotate: "+err.Error()))
		s.state = stateOpen
		return
	}
	s.file = f
	s.currentSize = 0

	if s.compressor != nil {
		s.compressor.Enqueue(backupPath)
	}

	s.enforceRetentionLocked()
	s.state = stateOpen
}

// nextBackupPath produces <base>.<yyyy-MM-dd-HH-mm-ss>, appending a ".N"
// tie-break when a backup for the same second already exists.
func nextBackupPath(basePath string) string {
	stamp := time.Now().Format(backupTimestampFormat)
	candidate := basePath + "." + stamp
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate
	}
	for n := 0; ; n++ {
		c := candidate + "." + strconv.Itoa(n)
		if _, err := os.Stat(c); os.IsNotExist(err) {
			return c
		}
	}
}

// enforceRetentionLocked removes the oldest backups beyond maxBackups.
// Caller must hold s.mu.
func (s *RollingFileSink) enforceRetentionLocked() {
	if s.maxBackups <= 0 {
		return
	}
	backups := listBackups(s.basePath)
	if len(backups) <= s.maxBackups {
		return
	}
	excess := len(backups) - s.maxBackups
	for _, b := range backups[:excess] {
		if err := os.Remove(b); err != nil {
			reportDiagnostic(s.Name(), newComponentError(ErrCodeFileRotation, "retention remove "+b+": "+err.Error()))
		}
	}
}

// listBackups returns backup paths for basePath, oldest first. A backup's
// name starts with "<base>.<timestamp>"; any suffix after the timestamp (a
// ".N" tie-break or a compression extension) is accepted. The list is
// sorted by name, which orders it by encoded timestamp.
func listBackups(basePath string) []string {
	dir := filepath.Dir(basePath)
	baseName := filepath.Base(basePath)
	prefix := baseName + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var backups []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		rest := e.Name()[len(prefix):]
		if len(rest) < len(backupTimestampFormat) {
			continue
		}
		if _, err := time.Parse(backupTimestampFormat, rest[:len(backupTimestampFormat)]); err != nil {
			continue
		}
		backups = append(backups, filepath.Join(dir, e.Name()))
	}

	sort.Strings(backups)
	return backups
}

// Close flushes and closes the underlying file.
func (s *RollingFileSink) Close() error {
	s.markClosed()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	_ = s.file.Sync()
	err := s.file.Close()
	s.file = nil
	return err
}
