package ember

import (
	"errors"
	"testing"
)

func TestFormatMessageBasic(t *testing.T) {
	got := FormatMessage("user {} logged in from {}", "alice", "10.0.0.1")
	want := "user alice logged in from 10.0.0.1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatMessageNoMarkers(t *testing.T) {
	got := FormatMessage("static message", "unused")
	if got != "static message" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatMessageEscapedMarker(t *testing.T) {
	got := FormatMessage(`literal \{} stays, real {} fills`, "x")
	want := "literal {} stays, real x fills"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatMessageExtraMarkersLeftLiteral(t *testing.T) {
	got := FormatMessage("{} {} {}", "only-one")
	want := "only-one {} {}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatMessageExtraArgsIgnored(t *testing.T) {
	got := FormatMessage("{}", "first", "second")
	if got != "first" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatMessageNilArg(t *testing.T) {
	got := FormatMessage("value={}", nil)
	if got != "value=null" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatMessageSliceArg(t *testing.T) {
	got := FormatMessage("ids={}", []int{1, 2, 3})
	if got != "ids=[1, 2, 3]" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractThrowableFromError(t *testing.T) {
	base := errors.New("boom")
	args, th := ExtractThrowable([]any{"a", "b", base})
	if len(args) != 2 {
		t.Fatalf("expected 2 remaining args, got %d", len(args))
	}
	if th == nil || th.Message != "boom" {
		t.Fatalf("expected extracted throwable wrapping boom, got %+v", th)
	}
}

func TestExtractThrowableFromThrowable(t *testing.T) {
	th := NewThrowable(errors.New("kaboom"))
	args, extracted := ExtractThrowable([]any{"x", th})
	if len(args) != 1 {
		t.Fatalf("expected 1 remaining arg, got %d", len(args))
	}
	if extracted != th {
		t.Fatal("expected same *Throwable instance returned")
	}
}

func TestExtractThrowableNoneTrailing(t *testing.T) {
	args, th := ExtractThrowable([]any{"a", "b"})
	if th != nil {
		t.Fatal("expected nil throwable when no trailing error")
	}
	if len(args) != 2 {
		t.Fatalf("expected args untouched, got %d", len(args))
	}
}

func TestExtractThrowableEmptyArgs(t *testing.T) {
	args, th := ExtractThrowable(nil)
	if th != nil || args != nil {
		t.Fatal("expected nil/nil for empty args")
	}
}
