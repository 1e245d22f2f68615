// options.go: functional options for constructing a Logger
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

// Option configures a Logger at construction time via the functional
// options pattern: each Option mutates the logger in place before it is
// returned to the caller.
type Option func(*Logger)

// WithLocationCapture enables or disables caller-location capture for
// every call this Logger makes.
func WithLocationCapture(enabled bool) Option {
	return func(l *Logger) { l.SetLocationCapture(enabled) }
}

// WithCallerSkip overrides the number of stack frames skipped when
// capturing the call site. Useful when the Logger is wrapped by helper
// functions and the reported location should point past them.
func WithCallerSkip(skip int) Option {
	return func(l *Logger) {
		if skip < 0 {
			skip = 0
		}
		l.callerSkip = skip
	}
}

// WithCallerFunc overrides the function used to capture caller location,
// primarily for tests that want a deterministic Location.
func WithCallerFunc(fn CallerFunc) Option {
	return func(l *Logger) { l.callerFunc = fn }
}

// WithContextProvider installs a ContextProvider consulted on every call
// to populate Event.Context.
func WithContextProvider(p ContextProvider) Option {
	return func(l *Logger) { l.contextProvider = p }
}

// Configure applies opts to l in order and returns l, so it composes with
// NewLogger/NewAsyncLogger at the call site:
//
//	logger := ember.Configure(ember.NewLogger("app", ember.LevelInfo, console), ember.WithCallerSkip(1))
func Configure(l *Logger, opts ...Option) *Logger {
	for _, opt := range opts {
		opt(l)
	}
	return l
}
