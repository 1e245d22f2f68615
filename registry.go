// registry.go: LoggerRegistry - process-wide name-to-Logger lookup
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"sync"
)

// RootLoggerName is the name of the registry's always-present root logger.
const RootLoggerName = "ROOT"

// LoggerRegistry is a flat, name-keyed cache of Loggers: no hierarchical
// name inheritance. Lookup-by-name returns the same instance for the
// process lifetime, or until Shutdown.
type LoggerRegistry struct {
	mu          sync.RWMutex
	loggers     map[string]*Logger
	dispatchers []*AsyncDispatcher
	shutdown    bool
}

// NewLoggerRegistry constructs a registry whose root logger writes
// synchronously to sinks (commonly a ConsoleSink) at rootLevel.
func NewLoggerRegistry(rootLevel Level, rootSinks ...Sink) *LoggerRegistry {
	r := &LoggerRegistry{loggers: make(map[string]*Logger)}
	root := NewLogger(RootLoggerName, rootLevel, rootSinks...)
	r.loggers[RootLoggerName] = root
	return r
}

// Root returns the registry's root logger.
func (r *LoggerRegistry) Root() *Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loggers[RootLoggerName]
}

// GetLogger returns the Logger named name, creating a new synchronous one
// at the root's level if it doesn't exist yet.
func (r *LoggerRegistry) GetLogger(name string) *Logger {
	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loggers[name]; ok {
		return l
	}
	l = NewLogger(name, r.loggers[RootLoggerName].Level())
	r.loggers[name] = l
	return l
}

// RegisterAsyncLogger installs an async Logger under name, wired to
// dispatcher. The registry takes ownership of dispatcher's lifecycle:
// Shutdown will drain and close it.
func (r *LoggerRegistry) RegisterAsyncLogger(name string, level Level, dispatcher *AsyncDispatcher) *Logger {
	l := NewAsyncLogger(name, level, dispatcher)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggers[name] = l
	r.dispatchers = append(r.dispatchers, dispatcher)
	return l
}

// Names returns a snapshot of every registered logger name.
func (r *LoggerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		names = append(names, name)
	}
	return names
}

// Shutdown is idempotent: it closes every logger, drains and closes every
// registered AsyncDispatcher (with its own internal join timeout), and
// closes every synchronous logger's sinks exactly once.
func (r *LoggerRegistry) Shutdown() {
	r.mu.Lock()
	if r.shutdown {
		r.mu.Unlock()
		return
	}
	r.shutdown = true
	loggers := make([]*Logger, 0, len(r.loggers))
	for _, l := range r.loggers {
		loggers = append(loggers, l)
	}
	dispatchers := append([]*AsyncDispatcher(nil), r.dispatchers...)
	r.mu.Unlock()

	closedSinks := make(map[string]bool)

	for _, l := range loggers {
		l.Close()
		if l.dispatcher != nil {
			continue // dispatchers are drained below, once each
		}
		for _, s := range l.Sinks() {
			if closedSinks[s.Name()] {
				continue
			}
			closedSinks[s.Name()] = true
			if err := s.Close(); err != nil {
				reportDiagnostic("logger-registry", newComponentError(ErrCodeSinkClosed, err.Error()))
			}
		}
	}

	for _, d := range dispatchers {
		d.Shutdown(defaultJoinTimeout)
	}
}

// IsShutdown reports whether Shutdown has already run.
func (r *LoggerRegistry) IsShutdown() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.shutdown
}
