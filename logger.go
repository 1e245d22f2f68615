// logger.go: Logger - the public logging call-site API
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"sync"
	"sync/atomic"
)

// callerFrameSkip is how many stack frames separate runtime.Caller's
// reference point from the application call site: the call passes through
// Logger.log -> Logger.call -> Logger.<Level> before reaching the caller.
// This is the default; each Logger stores its own working copy in
// callerSkip, which WithCallerSkip can override for wrapper functions that
// add extra frames.
const callerFrameSkip = 3

// Logger is the public logging API: level-gated calls that construct an
// Event and either fan it directly to wrapped sinks or hand it to an
// AsyncDispatcher, depending on how the Logger was constructed.
type Logger struct {
	name string

	level           AtomicLevel
	locationCapture int32 // atomic bool

	sinksMu sync.Mutex
	sinks   atomic.Pointer[[]Sink] // copy-on-write

	dispatcher *AsyncDispatcher

	contextProvider ContextProvider
	callerFunc      CallerFunc
	callerSkip      int

	closed int32
}

// NewLogger returns a synchronous Logger that fans events directly to
// sinks on the calling goroutine.
func NewLogger(name string, level Level, sinks ...Sink) *Logger {
	l := &Logger{name: name, callerFunc: defaultCaller, callerSkip: callerFrameSkip}
	l.level.SetLevel(level)
	cp := append([]Sink(nil), sinks...)
	l.sinks.Store(&cp)
	return l
}

// NewAsyncLogger returns a Logger that publishes events to dispatcher
// instead of fanning out synchronously. dispatcher's own sink set is fixed
// at its own construction time.
func NewAsyncLogger(name string, level Level, dispatcher *AsyncDispatcher) *Logger {
	l := &Logger{name: name, dispatcher: dispatcher, callerFunc: defaultCaller, callerSkip: callerFrameSkip}
	l.level.SetLevel(level)
	empty := []Sink{}
	l.sinks.Store(&empty)
	return l
}

// Name returns the logger's registry name.
func (l *Logger) Name() string { return l.name }

// SetLevel changes the logger's threshold.
func (l *Logger) SetLevel(level Level) { l.level.SetLevel(level) }

// Level returns the logger's current threshold.
func (l *Logger) Level() Level { return l.level.Level() }

// SetLocationCapture enables or disables caller-location capture.
func (l *Logger) SetLocationCapture(enabled bool) {
	v := int32(0)
	if enabled {
		v = 1
	}
	atomic.StoreInt32(&l.locationCapture, v)
}

// LocationCapture reports whether caller-location capture is enabled.
func (l *Logger) LocationCapture() bool {
	return atomic.LoadInt32(&l.locationCapture) != 0
}

// SetContextProvider installs the provider consulted for Event.Context on
// every call. Pass nil to stop attaching context.
func (l *Logger) SetContextProvider(p ContextProvider) { l.contextProvider = p }

// AddSink appends sink to the synchronous fan-out list. It is a no-op
// (with a diagnostic) on an async Logger, whose sink set belongs to its
// AsyncDispatcher.
func (l *Logger) AddSink(s Sink) {
	if l.dispatcher != nil {
		reportDiagnostic(l.name, newComponentError(ErrCodeInvalidConfig, "cannot add sinks to an async logger after construction"))
		return
	}
	l.sinksMu.Lock()
	defer l.sinksMu.Unlock()
	cur := *l.sinks.Load()
	next := append(append([]Sink(nil), cur...), s)
	l.sinks.Store(&next)
}

// RemoveSink removes every sink whose Name matches name.
func (l *Logger) RemoveSink(name string) {
	if l.dispatcher != nil {
		return
	}
	l.sinksMu.Lock()
	defer l.sinksMu.Unlock()
	cur := *l.sinks.Load()
	next := make([]Sink, 0, len(cur))
	for _, s := range cur {
		if s.Name() != name {
			next = append(next, s)
		}
	}
	l.sinks.Store(&next)
}

// Sinks returns a snapshot of the currently wrapped sinks.
func (l *Logger) Sinks() []Sink {
	return append([]Sink(nil), *l.sinks.Load()...)
}

// ClearSinks removes every synchronous sink.
func (l *Logger) ClearSinks() {
	if l.dispatcher != nil {
		return
	}
	l.sinksMu.Lock()
	defer l.sinksMu.Unlock()
	empty := []Sink{}
	l.sinks.Store(&empty)
}

// IsTraceEnabled reports whether Trace-level calls would produce an event.
func (l *Logger) IsTraceEnabled() bool { return l.level.Enabled(LevelTrace) }

// IsDebugEnabled reports whether Debug-level calls would produce an event.
func (l *Logger) IsDebugEnabled() bool { return l.level.Enabled(LevelDebug) }

// IsInfoEnabled reports whether Info-level calls would produce an event.
func (l *Logger) IsInfoEnabled() bool { return l.level.Enabled(LevelInfo) }

// IsWarnEnabled reports whether Warn-level calls would produce an event.
func (l *Logger) IsWarnEnabled() bool { return l.level.Enabled(LevelWarn) }

// IsErrorEnabled reports whether Error-level calls would produce an event.
func (l *Logger) IsErrorEnabled() bool { return l.level.Enabled(LevelError) }

// IsFatalEnabled reports whether Fatal-level calls would produce an event.
func (l *Logger) IsFatalEnabled() bool { return l.level.Enabled(LevelFatal) }

// Trace logs at LevelTrace. message may be a literal string or a "{}"
// pattern; args fill the pattern's markers left to right, except a
// trailing error/*Throwable argument, which attaches to the event instead
// of being interpolated.
func (l *Logger) Trace(message string, args ...any) { l.call(LevelTrace, message, args) }

// Debug logs at LevelDebug. See Trace for the message/args contract.
func (l *Logger) Debug(message string, args ...any) { l.call(LevelDebug, message, args) }

// Info logs at LevelInfo. See Trace for the message/args contract.
func (l *Logger) Info(message string, args ...any) { l.call(LevelInfo, message, args) }

// Warn logs at LevelWarn. See Trace for the message/args contract.
func (l *Logger) Warn(message string, args ...any) { l.call(LevelWarn, message, args) }

// Error logs at LevelError. See Trace for the message/args contract.
func (l *Logger) Error(message string, args ...any) { l.call(LevelError, message, args) }

// Fatal logs at LevelFatal. See Trace for the message/args contract. It
// does not terminate the process; callers that want that behavior wrap it.
func (l *Logger) Fatal(message string, args ...any) { l.call(LevelFatal, message, args) }

// Critical is an alias for Fatal, since LevelCritical == LevelFatal.
func (l *Logger) Critical(message string, args ...any) { l.call(LevelFatal, message, args) }

// call is the short-circuiting entry point shared by every level method:
// it gates on the threshold before touching args at all, so neither
// interpolation nor an argument's String()/Error() runs when the level is
// disabled.
func (l *Logger) call(level Level, message string, args []any) {
	if atomic.LoadInt32(&l.closed) != 0 || !l.level.Enabled(level) {
		return
	}

	interpArgs, throwable := ExtractThrowable(args)
	rendered := message
	if len(interpArgs) > 0 {
		rendered = FormatMessage(message, interpArgs...)
	}

	l.log(level, rendered, throwable)
}

// log is the core path: construct the Event and deliver it, catching and
// reporting per-sink failures so one bad sink cannot break the others.
func (l *Logger) log(level Level, message string, throwable *Throwable) {
	event := newEvent(level, l.name, message)
	event.Throwable = throwable

	if l.LocationCapture() && l.callerFunc != nil {
		if loc, ok := l.callerFunc(l.callerSkip); ok {
			event.Location = &loc
		} else {
			loc := unknownLocation
			event.Location = &loc
		}
	}

	if l.contextProvider != nil {
		event.Context = l.contextProvider.Provide()
	}

	if l.dispatcher != nil {
		l.dispatcher.Publish(event)
		return
	}

	for _, s := range *l.sinks.Load() {
		appendToSink(s, event)
	}
}

// Close marks the logger closed; subsequent calls are no-ops. It does not
// close wrapped sinks or the dispatcher - LoggerRegistry owns that.
func (l *Logger) Close() {
	atomic.StoreInt32(&l.closed, 1)
}
