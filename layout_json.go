// layout_json.go: NDJSON Layout implementation
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"bytes"
	"strconv"
	"time"

	"github.com/agilira/go-timecache"
	"github.com/emberlog/ember/internal/bufferpool"
)

// JSONLayout renders one Event per line as a JSON object, in insertion
// order: timestamp, level, logger, message, thread?, location?, exception?,
// then any static fields. Compact by default; Pretty indents with two
// spaces for human inspection.
type JSONLayout struct {
	// Pretty enables indented, multi-line JSON output instead of the
	// default single-line NDJSON record.
	Pretty bool

	// StaticFields are appended, in the given order, to every record
	// (e.g. {"service": "checkout", "env": "prod"}).
	StaticFields []JSONField

	// TimeFormat is the layout passed to time.Time.Format for the
	// "timestamp" field. Defaults to time.RFC3339Nano (ISO-8601 with
	// nanosecond precision) when empty.
	TimeFormat string
}

// JSONField is one static key/value pair appended to every rendered record.
type JSONField struct {
	Key   string
	Value string
}

// NewJSONLayout returns a compact NDJSON layout with no static fields.
func NewJSONLayout() *JSONLayout {
	return &JSONLayout{}
}

// Format renders event as a single JSON object followed by a newline.
func (j *JSONLayout) Format(event *Event) []byte {
	buf := bufferpool.Get()
	defer bufferpool.Put(buf)

	nl := ""
	indent := ""
	sep := ","
	colon := ":"
	if j.Pretty {
		nl = "\n"
		indent = "  "
		sep = ",\n" + indent
		colon = ": "
	}

	buf.WriteByte('{')
	if j.Pretty {
		buf.WriteString(nl + indent)
	}

	buf.WriteString(`"timestamp"`)
	buf.WriteString(colon)
	writeJSONTimestamp(buf, event.Timestamp, j.TimeFormat)

	buf.WriteString(sep)
	buf.WriteString(`"level"`)
	buf.WriteString(colon)
	quoteJSONString(event.Level.String(), buf)

	buf.WriteString(sep)
	buf.WriteString(`"logger"`)
	buf.WriteString(colon)
	quoteJSONString(event.LoggerName, buf)

	buf.WriteString(sep)
	buf.WriteString(`"message"`)
	buf.WriteString(colon)
	quoteJSONString(event.Message, buf)

	if event.ThreadName != "" {
		buf.WriteString(sep)
		buf.WriteString(`"thread"`)
		buf.WriteString(colon)
		quoteJSONString(event.ThreadName, buf)
	}

	if event.Location != nil {
		buf.WriteString(sep)
		buf.WriteString(`"location"`)
		buf.WriteString(colon)
		writeJSONLocation(buf, event.Location, j.Pretty, indent)
	}

	if event.Throwable != nil {
		buf.WriteString(sep)
		buf.WriteString(`"exception"`)
		buf.WriteString(colon)
		writeJSONThrowable(buf, event.Throwable, j.Pretty, indent)
	}

	for _, f := range j.StaticFields {
		buf.WriteString(sep)
		quoteJSONString(f.Key, buf)
		buf.WriteString(colon)
		quoteJSONString(f.Value, buf)
	}

	if j.Pretty {
		buf.WriteString(nl)
	}
	buf.WriteByte('}')
	buf.WriteByte('\n')

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

// RendersThrowable reports that JSONLayout embeds the exception object
// itself, so a sink must not append a separate stack trace.
func (j *JSONLayout) RendersThrowable() bool { return true }

// writeJSONTimestamp renders millis as a quoted string in format (defaulting
// to time.RFC3339Nano when empty). The timecache fast path is only taken for
// the default format, since the cached string is pre-rendered as
// RFC3339Nano and would otherwise disagree with a caller-chosen format.
func writeJSONTimestamp(buf *bytes.Buffer, millis int64, format string) {
	buf.WriteByte('"')
	if format == "" || format == time.RFC3339Nano {
		t := time.UnixMilli(millis).UTC()
		if cached := timecache.CachedTime(); t.Sub(cached).Abs() < 500*time.Microsecond {
			buf.WriteString(timecache.CachedTimeString())
		} else {
			buf.WriteString(t.Format(time.RFC3339Nano))
		}
	} else {
		buf.WriteString(time.UnixMilli(millis).UTC().Format(format))
	}
	buf.WriteByte('"')
}

func writeJSONLocation(buf *bytes.Buffer, loc *Location, pretty bool, indent string) {
	sep, colon := ",", ":"
	inner := indent
	if pretty {
		sep = ",\n" + indent + indent
		colon = ": "
		inner = indent + indent
	}
	buf.WriteByte('{')
	if pretty {
		buf.WriteString("\n" + inner)
	}
	buf.WriteString(`"class"`)
	buf.WriteString(colon)
	quoteJSONString(loc.Class, buf)
	buf.WriteString(sep)
	buf.WriteString(`"method"`)
	buf.WriteString(colon)
	quoteJSONString(loc.Method, buf)
	buf.WriteString(sep)
	buf.WriteString(`"file"`)
	buf.WriteString(colon)
	quoteJSONString(loc.File, buf)
	buf.WriteString(sep)
	buf.WriteString(`"line"`)
	buf.WriteString(colon)
	buf.WriteString(strconv.Itoa(loc.Line))
	if pretty {
		buf.WriteString("\n" + indent)
	}
	buf.WriteByte('}')
}

// writeJSONThrowable renders the exception object per the documented
// schema: class, message, stackTrace[], and a single level of cause
// (class/message only - the cause's own cause is not rendered, keeping
// the JSON record bounded regardless of how deep the underlying chain is).
func writeJSONThrowable(buf *bytes.Buffer, t *Throwable, pretty bool, indent string) {
	sep, colon := ",", ":"
	inner := indent
	if pretty {
		sep = ",\n" + indent + indent
		colon = ": "
		inner = indent + indent
	}
	buf.WriteByte('{')
	if pretty {
		buf.WriteString("\n" + inner)
	}
	buf.WriteString(`"class"`)
	buf.WriteString(colon)
	quoteJSONString(t.Class, buf)
	buf.WriteString(sep)
	buf.WriteString(`"message"`)
	buf.WriteString(colon)
	quoteJSONString(t.Message, buf)

	if len(t.StackFrames) > 0 {
		buf.WriteString(sep)
		buf.WriteString(`"stackTrace"`)
		buf.WriteString(colon)
		buf.WriteByte('[')
		for i, frame := range t.StackFrames {
			if i > 0 {
				buf.WriteByte(',')
			}
			quoteJSONString(frame, buf)
		}
		buf.WriteByte(']')
	}

	if t.Cause != nil {
		buf.WriteString(sep)
		buf.WriteString(`"cause"`)
		buf.WriteString(colon)
		buf.WriteByte('{')
		buf.WriteString(`"class"`)
		buf.WriteString(colon)
		quoteJSONString(t.Cause.Class, buf)
		buf.WriteByte(',')
		buf.WriteString(`"message"`)
		buf.WriteString(colon)
		quoteJSONString(t.Cause.Message, buf)
		buf.WriteByte('}')
	}

	if pretty {
		buf.WriteString("\n" + indent)
	}
	buf.WriteByte('}')
}

// quoteJSONString writes s as a double-quoted JSON string, escaping the
// characters JSON requires and leaving everything else - including
// non-ASCII bytes - untouched.
func quoteJSONString(s string, buf *bytes.Buffer) {
	buf.WriteByte('"')

	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c == '"' || c == '\\' {
			if i > start {
				buf.WriteString(s[start:i])
			}
			switch c {
			case '"':
				buf.WriteString(`\"`)
			case '\\':
				buf.WriteString(`\\`)
			case '\n':
				buf.WriteString(`\n`)
			case '\r':
				buf.WriteString(`\r`)
			case '\t':
				buf.WriteString(`\t`)
			case '\b':
				buf.WriteString(`\b`)
			case '\f':
				buf.WriteString(`\f`)
			default:
				buf.WriteString(`\u00`)
				const hex = "0123456789abcdef"
				buf.WriteByte(hex[c>>4])
				buf.WriteByte(hex[c&0xF])
			}
			start = i + 1
		}
	}

	if start < len(s) {
		buf.WriteString(s[start:])
	}

	buf.WriteByte('"')
}
