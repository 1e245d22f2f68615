// errors.go: error handling integration for the ember logging library
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/agilira/go-errors"
)

// Error codes for the ember logging library, namespaced EMBER_ the way the
// upstream fragment this package is derived from namespaces its own.
const (
	ErrCodeInvalidConfig errors.ErrorCode = "EMBER_INVALID_CONFIG"
	ErrCodeInvalidLevel  errors.ErrorCode = "EMBER_INVALID_LEVEL"
	ErrCodeInvalidSize   errors.ErrorCode = "EMBER_INVALID_SIZE"

	ErrCodeRingInvalidCapacity errors.ErrorCode = "EMBER_RING_INVALID_CAPACITY"
	ErrCodeRingClosed          errors.ErrorCode = "EMBER_RING_CLOSED"

	ErrCodeFileOpen         errors.ErrorCode = "EMBER_FILE_OPEN"
	ErrCodeFileWrite        errors.ErrorCode = "EMBER_FILE_WRITE"
	ErrCodeFileRotation     errors.ErrorCode = "EMBER_FILE_ROTATION"
	ErrCodePermissionDenied errors.ErrorCode = "EMBER_PERMISSION_DENIED"

	ErrCodeMmapFailed errors.ErrorCode = "EMBER_MMAP_FAILED"

	ErrCodeCompressionFailed errors.ErrorCode = "EMBER_COMPRESSION_FAILED"

	ErrCodeSinkClosed errors.ErrorCode = "EMBER_SINK_CLOSED"

	ErrCodeExecution errors.ErrorCode = "EMBER_EXECUTION"
)

// ErrorHandler handles diagnostics emitted by internal components. Logging
// calls themselves never return an error; failures on the hot path are
// reported through this handler instead.
type ErrorHandler func(err *errors.Error)

// defaultErrorHandler prints a single diagnostic line to stderr, prefixed
// with the emitting component's name via err.Context["component"].
var defaultErrorHandler ErrorHandler = func(err *errors.Error) {
	component := "ember"
	if c, ok := err.Context["component"].(string); ok && c != "" {
		component = c
	}
	fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", component, err.Code, err.Message)
	if err.Cause != nil {
		fmt.Fprintf(os.Stderr, "[%s] caused by: %v\n", component, err.Cause)
	}
}

var currentErrorHandler = defaultErrorHandler

// SetErrorHandler replaces the diagnostic handler. Passing nil restores the
// default stderr handler.
func SetErrorHandler(handler ErrorHandler) {
	if handler == nil {
		currentErrorHandler = defaultErrorHandler
		return
	}
	currentErrorHandler = handler
}

// GetErrorHandler returns the currently installed diagnostic handler.
func GetErrorHandler() ErrorHandler {
	return currentErrorHandler
}

// reportDiagnostic routes a component failure to the current ErrorHandler.
// component identifies the emitting sink/dispatcher/runner by name.
func reportDiagnostic(component string, err *errors.Error) {
	if err == nil {
		return
	}
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context["component"] = component
	currentErrorHandler(err)
}

// newComponentError builds a structured error carrying caller location and
// a timestamp, the way every constructor-facing error in this package does.
func newComponentError(code errors.ErrorCode, message string) *errors.Error {
	err := errors.New(code, message).
		WithSeverity("error").
		WithContext("timestamp", time.Now().UTC())

	if pc, file, line, ok := runtime.Caller(2); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			_ = err.WithContext("caller_func", fn.Name())
		}
		_ = err.WithContext("caller_file", file)
		_ = err.WithContext("caller_line", line)
	}
	return err
}

// IsRetryableError reports whether err is a retryable ember error.
func IsRetryableError(err error) bool {
	if e, ok := err.(*errors.Error); ok {
		return e.IsRetryable()
	}
	return false
}

// GetErrorCode extracts the error code carried by an ember error, or the
// empty code for any other error type.
func GetErrorCode(err error) errors.ErrorCode {
	if e, ok := err.(*errors.Error); ok {
		return e.ErrorCode()
	}
	return ""
}

// recoverAsDiagnostic recovers a panic within a background worker and turns
// it into a reported diagnostic instead of crashing the process, matching
// the async-worker-crash handling required of every background loop.
func recoverAsDiagnostic(component string) {
	if r := recover(); r != nil {
		err := newComponentError(ErrCodeExecution, fmt.Sprintf("panic recovered: %v", r))
		_ = err.WithContext("panic_value", r)
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		_ = err.WithContext("panic_stack", string(buf[:n]))
		reportDiagnostic(component, err)
	}
}
