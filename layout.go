// layout.go: the Event-to-bytes formatting contract
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

// Layout converts an Event to its on-wire byte representation. A layout
// that renders the throwable itself (stack trace included) advertises it
// via RendersThrowable so a sink doesn't double-append one.
type Layout interface {
	Format(event *Event) []byte
	RendersThrowable() bool
}
