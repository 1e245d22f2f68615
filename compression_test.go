package ember

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/agilira/go-errors"
)

func TestCompressionSpecTimeoutDefault(t *testing.T) {
	s := CompressionSpec{}
	if s.timeout() != defaultCompressionTimeout {
		t.Fatalf("expected default timeout, got %v", s.timeout())
	}
	s2 := CompressionSpec{Timeout: 5 * time.Second}
	if s2.timeout() != 5*time.Second {
		t.Fatalf("expected explicit timeout honored, got %v", s2.timeout())
	}
}

func TestCompressionSpecBuildArgsPlaceholder(t *testing.T) {
	s := CompressionSpec{Args: []string{"-k", "{}"}}
	got := s.buildArgs("/tmp/app.log.123")
	want := []string{"-k", "/tmp/app.log.123"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompressionSpecBuildArgsNoPlaceholderAppendsPath(t *testing.T) {
	s := CompressionSpec{Args: []string{"-k"}}
	got := s.buildArgs("/tmp/app.log.123")
	if len(got) != 2 || got[1] != "/tmp/app.log.123" {
		t.Fatalf("expected path appended when no placeholder present, got %v", got)
	}
}

func TestCompressionSpecBuildArgsNoArgsDefaultsToPathOnly(t *testing.T) {
	s := CompressionSpec{}
	got := s.buildArgs("/tmp/app.log.123")
	if len(got) != 1 || got[0] != "/tmp/app.log.123" {
		t.Fatalf("got %v", got)
	}
}

func TestCompressionRunnerSuccessfulProgramReportsNoDiagnostic(t *testing.T) {
	var mu sync.Mutex
	diagnostics := 0
	SetErrorHandler(func(err *errors.Error) {
		mu.Lock()
		diagnostics++
		mu.Unlock()
	})
	defer SetErrorHandler(nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "backup.log")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := NewCompressionRunner(CompressionSpec{Program: "true"}, 8)
	runner.Enqueue(path)
	runner.Shutdown(2 * time.Second)

	mu.Lock()
	defer mu.Unlock()
	if diagnostics != 0 {
		t.Fatalf("expected no diagnostics for a program that exits 0, got %d", diagnostics)
	}
}

func TestCompressionRunnerMissingProgramReportsDiagnostic(t *testing.T) {
	var mu sync.Mutex
	var gotCode errors.ErrorCode
	SetErrorHandler(func(err *errors.Error) {
		mu.Lock()
		gotCode = err.ErrorCode()
		mu.Unlock()
	})
	defer SetErrorHandler(nil)

	runner := NewCompressionRunner(CompressionSpec{Program: "this-program-does-not-exist-xyz"}, 8)
	runner.Enqueue("/tmp/whatever.log")
	runner.Shutdown(2 * time.Second)

	mu.Lock()
	defer mu.Unlock()
	if gotCode != ErrCodeCompressionFailed {
		t.Fatalf("expected ErrCodeCompressionFailed diagnostic, got %v", gotCode)
	}
}

func TestCompressionRunnerEnqueueDropsWhenQueueFull(t *testing.T) {
	var mu sync.Mutex
	drops := 0
	SetErrorHandler(func(err *errors.Error) {
		mu.Lock()
		drops++
		mu.Unlock()
	})
	defer SetErrorHandler(nil)

	runner := &CompressionRunner{
		spec:  CompressionSpec{Program: "true"},
		queue: make(chan string), // unbuffered: fills on first enqueue without a reader
		done:  make(chan struct{}),
	}
	runner.Enqueue("a")
	runner.Enqueue("b")

	mu.Lock()
	defer mu.Unlock()
	if drops == 0 {
		t.Fatal("expected at least one drop diagnostic when the queue has no reader")
	}
}
