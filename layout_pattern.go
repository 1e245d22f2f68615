// layout_pattern.go: %token pattern-based Layout implementation
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ember

import (
	"strconv"
	"strings"
	"time"

	"github.com/agilira/go-timecache"
	"github.com/emberlog/ember/internal/bufferpool"
)

const defaultDatePattern = "yyyy-MM-dd HH:mm:ss"

// patternTokenKind identifies one recognized %token.
type patternTokenKind int

const (
	tokLiteral patternTokenKind = iota
	tokLevel
	tokThread
	tokLogger
	tokMessage
	tokClass
	tokMethod
	tokLine
	tokFile
	tokNewline
	tokDate
)

type patternToken struct {
	kind       patternTokenKind
	literal    string
	goDateForm string // only for tokDate
}

// PatternLayout renders an Event using a sequence of %tokens, matching the
// documented grammar: %level, %thread, %logger, %message, %class, %method,
// %line, %file, %n, %date, %date{<format>}. Unknown tokens pass through
// verbatim. Missing location fields (capture disabled) render as
// Unknown/unknown/0/Unknown.
type PatternLayout struct {
	tokens []patternToken
}

// NewPatternLayout parses pattern once at construction time into a token
// sequence, so Format never re-parses the pattern on the hot path.
func NewPatternLayout(pattern string) *PatternLayout {
	return &PatternLayout{tokens: parsePattern(pattern)}
}

func parsePattern(pattern string) []patternToken {
	var tokens []patternToken
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			tokens = append(tokens, patternToken{kind: tokLiteral, literal: literal.String()})
			literal.Reset()
		}
	}

	i := 0
	for i < len(pattern) {
		if pattern[i] != '%' {
			literal.WriteByte(pattern[i])
			i++
			continue
		}

		// try to match a known token name starting at i+1
		rest := pattern[i+1:]
		switch {
		case strings.HasPrefix(rest, "level"):
			flush()
			tokens = append(tokens, patternToken{kind: tokLevel})
			i += len("%level")
		case strings.HasPrefix(rest, "thread"):
			flush()
			tokens = append(tokens, patternToken{kind: tokThread})
			i += len("%thread")
		case strings.HasPrefix(rest, "logger"):
			flush()
			tokens = append(tokens, patternToken{kind: tokLogger})
			i += len("%logger")
		case strings.HasPrefix(rest, "message"):
			flush()
			tokens = append(tokens, patternToken{kind: tokMessage})
			i += len("%message")
		case strings.HasPrefix(rest, "class"):
			flush()
			tokens = append(tokens, patternToken{kind: tokClass})
			i += len("%class")
		case strings.HasPrefix(rest, "method"):
			flush()
			tokens = append(tokens, patternToken{kind: tokMethod})
			i += len("%method")
		case strings.HasPrefix(rest, "line"):
			flush()
			tokens = append(tokens, patternToken{kind: tokLine})
			i += len("%line")
		case strings.HasPrefix(rest, "file"):
			flush()
			tokens = append(tokens, patternToken{kind: tokFile})
			i += len("%file")
		case strings.HasPrefix(rest, "n"):
			flush()
			tokens = append(tokens, patternToken{kind: tokNewline})
			i += len("%n")
		case strings.HasPrefix(rest, "date"):
			flush()
			form := defaultDatePattern
			consumed := len("%date")
			if strings.HasPrefix(rest[4:], "{") {
				end := strings.IndexByte(rest[4:], '}')
				if end >= 0 {
					form = rest[5 : 4+end]
					consumed = 4 + end + 1 + 1 // "%date" + "{" + form + "}"
				}
			}
			tokens = append(tokens, patternToken{kind: tokDate, goDateForm: toGoTimeLayout(form)})
			i += consumed
		default:
			// unknown token: emit '%' verbatim and continue scanning from next rune
			literal.WriteByte('%')
			i++
		}
	}
	flush()
	return tokens
}

// toGoTimeLayout converts the documented Java-style date pattern vocabulary
// (yyyy, MM, dd, HH, mm, ss) into Go's reference-time layout. Unrecognized
// patterns fall back to the default.
func toGoTimeLayout(javaPattern string) string {
	replacer := strings.NewReplacer(
		"yyyy", "2006",
		"MM", "01",
		"dd", "02",
		"HH", "15",
		"mm", "04",
		"ss", "05",
	)
	out := replacer.Replace(javaPattern)
	if out == javaPattern && javaPattern != defaultDatePattern {
		// no recognized tokens were replaced; treat as invalid and fall back
		return toGoTimeLayout(defaultDatePattern)
	}
	return out
}

// Format renders event according to the parsed token sequence.
func (p *PatternLayout) Format(event *Event) []byte {
	buf := bufferpool.Get()
	defer bufferpool.Put(buf)

	for _, t := range p.tokens {
		switch t.kind {
		case tokLiteral:
			buf.WriteString(t.literal)
		case tokLevel:
			buf.WriteString(event.Level.String())
		case tokThread:
			buf.WriteString(event.ThreadName)
		case tokLogger:
			buf.WriteString(event.LoggerName)
		case tokMessage:
			buf.WriteString(event.Message)
		case tokClass:
			if event.Location != nil {
				buf.WriteString(event.Location.Class)
			} else {
				buf.WriteString(unknownLocation.Class)
			}
		case tokMethod:
			if event.Location != nil {
				buf.WriteString(event.Location.Method)
			} else {
				buf.WriteString(unknownLocation.Method)
			}
		case tokLine:
			if event.Location != nil {
				buf.WriteString(strconv.Itoa(event.Location.Line))
			} else {
				buf.WriteString(strconv.Itoa(unknownLocation.Line))
			}
		case tokFile:
			if event.Location != nil {
				buf.WriteString(event.Location.File)
			} else {
				buf.WriteString(unknownLocation.File)
			}
		case tokNewline:
			buf.WriteByte('\n')
		case tokDate:
			writeFormattedTime(buf, event.Timestamp, t.goDateForm)
		}
	}

	if event.Throwable != nil {
		buf.WriteByte('\n')
		writeThrowable(buf, event.Throwable)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

// RendersThrowable reports that PatternLayout appends the throwable's
// stack trace itself, so sinks must not double-render it.
func (p *PatternLayout) RendersThrowable() bool { return true }

func writeFormattedTime(buf interface {
	WriteString(string) (int, error)
}, millis int64, goLayout string) {
	t := time.UnixMilli(millis).UTC()
	if cached := timecache.CachedTime(); t.Sub(cached).Abs() < 500*time.Microsecond {
		buf.WriteString(cached.Format(goLayout))
		return
	}
	buf.WriteString(t.Format(goLayout))
}

// writeThrowable renders the primary throwable with its full stack trace;
// per design, only one cause level is rendered for JSON but pattern layout
// renders the complete chain for the primary throwable.
func writeThrowable(buf interface {
	WriteString(string) (int, error)
	WriteByte(byte) error
}, t *Throwable) {
	buf.WriteString(t.Class)
	buf.WriteString(": ")
	buf.WriteString(t.Message)
	for _, frame := range t.StackFrames {
		buf.WriteByte('\n')
		buf.WriteString("\tat ")
		buf.WriteString(frame)
	}
	if t.Cause != nil {
		buf.WriteByte('\n')
		buf.WriteString("Caused by: ")
		writeThrowable(buf, t.Cause)
	}
}
