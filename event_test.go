package ember

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewThrowableNil(t *testing.T) {
	if NewThrowable(nil) != nil {
		t.Fatal("expected nil Throwable for nil error")
	}
}

func TestNewThrowableCapturesClassAndMessage(t *testing.T) {
	th := NewThrowable(errors.New("boom"))
	if th.Message != "boom" {
		t.Fatalf("got message %q", th.Message)
	}
	if th.Class == "" {
		t.Fatal("expected a non-empty class name")
	}
	if len(th.StackFrames) == 0 {
		t.Fatal("expected the outermost throwable to carry a stack trace")
	}
}

func TestNewThrowableWalksCauseChain(t *testing.T) {
	root := errors.New("root cause")
	wrapped := fmt.Errorf("middle: %w", root)
	outer := fmt.Errorf("outer: %w", wrapped)

	th := NewThrowable(outer)
	if th.Cause == nil {
		t.Fatal("expected a cause")
	}
	if th.Cause.Message != wrapped.Error() {
		t.Fatalf("got %q, want %q", th.Cause.Message, wrapped.Error())
	}
	if th.Cause.Cause == nil || th.Cause.Cause.Message != "root cause" {
		t.Fatalf("expected the full chain to walk to root cause, got %+v", th.Cause.Cause)
	}
	if len(th.Cause.StackFrames) != 0 {
		t.Fatal("expected only the outermost throwable to carry a stack trace")
	}
}

func TestNewEventUsesCachedClock(t *testing.T) {
	ev := newEvent(LevelInfo, "app", "hi")
	if ev.Timestamp <= 0 {
		t.Fatal("expected a positive timestamp")
	}
	if ev.LoggerName != "app" || ev.Message != "hi" || ev.Level != LevelInfo {
		t.Fatalf("unexpected event fields: %+v", ev)
	}
	if ev.ThreadName == "" {
		t.Fatal("expected a non-empty thread name")
	}
}
