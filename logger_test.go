package ember

import (
	"errors"
	"testing"
	"time"
)

func TestLoggerLevelGating(t *testing.T) {
	sink := newRecordingSink("rec", LevelAll)
	l := NewLogger("app", LevelWarn, sink)
	l.Info("should not appear")
	l.Warn("should appear")

	if sink.count() != 1 {
		t.Fatalf("expected 1 event past WARN threshold, got %d", sink.count())
	}
	if sink.events[0].Message != "should appear" {
		t.Fatalf("got %q", sink.events[0].Message)
	}
}

func TestLoggerFormatsMessageWithArgs(t *testing.T) {
	sink := newRecordingSink("rec", LevelAll)
	l := NewLogger("app", LevelInfo, sink)
	l.Info("user {} did {}", "alice", "login")

	if sink.count() != 1 {
		t.Fatalf("expected 1 event, got %d", sink.count())
	}
	if sink.events[0].Message != "user alice did login" {
		t.Fatalf("got %q", sink.events[0].Message)
	}
}

func TestLoggerExtractsTrailingThrowable(t *testing.T) {
	sink := newRecordingSink("rec", LevelAll)
	l := NewLogger("app", LevelInfo, sink)
	l.Error("failed to connect to {}", "db", errors.New("connection refused"))

	if sink.count() != 1 {
		t.Fatalf("expected 1 event, got %d", sink.count())
	}
	ev := sink.events[0]
	if ev.Message != "failed to connect to db" {
		t.Fatalf("got message %q", ev.Message)
	}
	if ev.Throwable == nil || ev.Throwable.Message != "connection refused" {
		t.Fatalf("expected extracted throwable, got %+v", ev.Throwable)
	}
}

func TestLoggerIsLevelEnabled(t *testing.T) {
	l := NewLogger("app", LevelInfo)
	if l.IsTraceEnabled() || l.IsDebugEnabled() {
		t.Fatal("expected TRACE/DEBUG disabled at INFO threshold")
	}
	if !l.IsInfoEnabled() || !l.IsWarnEnabled() || !l.IsErrorEnabled() || !l.IsFatalEnabled() {
		t.Fatal("expected INFO and above enabled at INFO threshold")
	}
}

func TestLoggerAddRemoveClearSinks(t *testing.T) {
	l := NewLogger("app", LevelInfo)
	a := newRecordingSink("a", LevelAll)
	b := newRecordingSink("b", LevelAll)
	l.AddSink(a)
	l.AddSink(b)
	if len(l.Sinks()) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(l.Sinks()))
	}

	l.RemoveSink("a")
	sinks := l.Sinks()
	if len(sinks) != 1 || sinks[0].Name() != "b" {
		t.Fatalf("expected only sink b remaining, got %v", sinks)
	}

	l.ClearSinks()
	if len(l.Sinks()) != 0 {
		t.Fatal("expected no sinks after ClearSinks")
	}
}

func TestLoggerClosedIsNoop(t *testing.T) {
	sink := newRecordingSink("rec", LevelAll)
	l := NewLogger("app", LevelInfo, sink)
	l.Close()
	l.Info("should not be delivered")
	if sink.count() != 0 {
		t.Fatalf("expected no events delivered after Close, got %d", sink.count())
	}
}

func TestAsyncLoggerPublishesToDispatcher(t *testing.T) {
	sink := newRecordingSink("rec", LevelAll)
	d, err := NewAsyncDispatcher(16, OverflowBlock, []Sink{sink})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Shutdown(time.Second)

	l := NewAsyncLogger("app-async", LevelInfo, d)
	l.Info("hello async")

	if !d.Flush(time.Second) {
		t.Fatal("expected dispatcher to drain")
	}
	if sink.count() != 1 {
		t.Fatalf("expected 1 event fanned out via dispatcher, got %d", sink.count())
	}
}

func TestAsyncLoggerAddSinkIsNoop(t *testing.T) {
	sink := newRecordingSink("rec", LevelAll)
	d, err := NewAsyncDispatcher(16, OverflowBlock, []Sink{sink})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Shutdown(time.Second)

	l := NewAsyncLogger("app-async", LevelInfo, d)
	l.AddSink(newRecordingSink("extra", LevelAll))
	if len(l.Sinks()) != 0 {
		t.Fatalf("expected AddSink to be a no-op on an async logger, got %d sinks", len(l.Sinks()))
	}
}

func TestLoggerConfigureOptions(t *testing.T) {
	l := Configure(NewLogger("app", LevelInfo), WithLocationCapture(true), WithCallerSkip(2))
	if !l.LocationCapture() {
		t.Fatal("expected location capture enabled via WithLocationCapture")
	}
	if l.callerSkip != 2 {
		t.Fatalf("expected callerSkip=2, got %d", l.callerSkip)
	}
}
