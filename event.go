// event.go: the immutable record produced at a logging call site
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import "github.com/agilira/go-timecache"

// maxThrowableDepth bounds cause-chain traversal so a pathological or
// cyclic-looking input cannot blow up rendering.
const maxThrowableDepth = 10

// Throwable is the recursive, finite representation of an error/exception
// attached to an Event. Cause chains are capped at maxThrowableDepth.
type Throwable struct {
	Class       string
	Message     string
	StackFrames []string
	Cause       *Throwable
}

// NewThrowable builds a Throwable from a Go error, walking errors.Unwrap
// chains (capped at maxThrowableDepth) and attaching a captured stack trace
// for the outermost error only, per the pattern-layout contract that only
// the primary throwable carries a full stack trace.
func NewThrowable(err error) *Throwable {
	if err == nil {
		return nil
	}
	return newThrowableDepth(err, 0, true)
}

func newThrowableDepth(err error, depth int, withStack bool) *Throwable {
	if err == nil || depth >= maxThrowableDepth {
		return nil
	}
	t := &Throwable{
		Class:   classNameOf(err),
		Message: err.Error(),
	}
	if withStack {
		t.StackFrames = captureFrames(3)
	}
	if u, ok := err.(interface{ Unwrap() error }); ok {
		t.Cause = newThrowableDepth(u.Unwrap(), depth+1, false)
	}
	return t
}

func classNameOf(err error) string {
	return typeNameOf(err)
}

// Context is the pass-through diagnostic context attached to an Event: a
// flat key/value map plus an ordered stack (MDC/NDC). The core never
// inspects or mutates these values; they exist purely for layouts to render.
type Context struct {
	Values map[string]string
	Stack  []string
}

// ContextProvider supplies the ambient Context for the current call, e.g.
// reading it back out of a context.Context the application already carries.
type ContextProvider interface {
	Provide() *Context
}

// Event is an immutable record of one log call. Once constructed it is
// never modified; it may be referenced concurrently by multiple sinks and
// by a RingBuffer slot.
type Event struct {
	Timestamp  int64 // wall-clock milliseconds at creation
	Level      Level
	LoggerName string
	Message    string
	ThreadName string
	Location   *Location
	Throwable  *Throwable
	Context    *Context
}

// newEvent constructs an Event using the cached wall clock, matching the
// teacher's use of go-timecache for hot-path timestamp reads.
func newEvent(level Level, loggerName, message string) *Event {
	return &Event{
		Timestamp:  timecache.CachedTime().UnixMilli(),
		Level:      level,
		LoggerName: loggerName,
		Message:    message,
		ThreadName: currentThreadName(),
	}
}
