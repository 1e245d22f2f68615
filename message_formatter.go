// message_formatter.go: {}-placeholder interpolation and throwable extraction
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/emberlog/ember/internal/bufferpool"
)

// FormatMessage interpolates pattern, consuming one argument per
// non-escaped "{}" marker left to right. A backslash-escaped "\{}" renders
// as the literal two characters "{}" without consuming an argument. Extra
// markers beyond the argument count are left literal; extra arguments
// beyond the marker count are ignored.
func FormatMessage(pattern string, args ...any) string {
	if pattern == "" {
		return pattern
	}
	if !strings.Contains(pattern, "{}") && !strings.Contains(pattern, `\{}`) {
		return pattern
	}

	buf := bufferpool.Get()
	defer bufferpool.Put(buf)

	argIdx := 0
	i := 0
	for i < len(pattern) {
		if pattern[i] == '\\' && i+2 < len(pattern) && pattern[i+1] == '{' && pattern[i+2] == '}' {
			buf.WriteString("{}")
			i += 3
			continue
		}
		if pattern[i] == '{' && i+1 < len(pattern) && pattern[i+1] == '}' {
			if argIdx < len(args) {
				writeArgValue(buf, args[argIdx])
				argIdx++
			} else {
				buf.WriteString("{}")
			}
			i += 2
			continue
		}
		buf.WriteByte(pattern[i])
		i++
	}
	return buf.String()
}

// writeArgValue renders one interpolation argument per the spec's value
// rules: nil -> "null", slices and arrays -> "[e0, e1, ...]" using element
// render rules recursively (unless the value is a fmt.Stringer),
// everything else via fmt's default verb.
func writeArgValue(buf interface{ WriteString(string) (int, error) }, v any) {
	if v == nil {
		buf.WriteString("null")
		return
	}
	switch t := v.(type) {
	case string:
		buf.WriteString(t)
	case []string:
		writeArraySlice(buf, len(t), func(i int) any { return t[i] })
	case []int:
		writeArraySlice(buf, len(t), func(i int) any { return t[i] })
	case []any:
		writeArraySlice(buf, len(t), func(i int) any { return t[i] })
	default:
		if _, ok := v.(fmt.Stringer); !ok {
			if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
				writeArraySlice(buf, rv.Len(), func(i int) any { return rv.Index(i).Interface() })
				return
			}
		}
		buf.WriteString(fmt.Sprint(v))
	}
}

func writeArraySlice(buf interface{ WriteString(string) (int, error) }, n int, at func(int) any) {
	buf.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteString(", ")
		}
		writeArgValue(buf, at(i))
	}
	buf.WriteString("]")
}

// isThrowableShaped reports whether v is the kind of value the spec treats
// as a throwable: a Go error, or an already-built *Throwable.
func isThrowableShaped(v any) bool {
	if v == nil {
		return false
	}
	switch v.(type) {
	case error, *Throwable:
		return true
	default:
		return false
	}
}

// ExtractThrowable separates a trailing throwable-shaped argument from args,
// returning the interpolation arguments (without the throwable) and the
// extracted Throwable, or nil if the last argument was not throwable-shaped.
func ExtractThrowable(args []any) ([]any, *Throwable) {
	if len(args) == 0 {
		return args, nil
	}
	last := args[len(args)-1]
	if !isThrowableShaped(last) {
		return args, nil
	}
	switch t := last.(type) {
	case *Throwable:
		return args[:len(args)-1], t
	case error:
		return args[:len(args)-1], NewThrowable(t)
	}
	return args, nil
}
