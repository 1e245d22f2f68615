package ember

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMappedFileSinkAppendAndClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	sink, err := NewMappedFileSink("mmap", MappedFileSinkOptions{Path: path, InitialCapacity: 4096}, LevelInfo, NewPatternLayout("%message%n"))
	if err != nil {
		t.Fatal(err)
	}

	sink.Append(sampleEvent())
	sink.Append(sampleEvent())

	if err := sink.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "hello world\nhello world\n"
	if string(data) != want {
		t.Fatalf("got %q, want %q", data, want)
	}
}

func TestMappedFileSinkGrowsPastInitialCapacity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	sink, err := NewMappedFileSink("mmap", MappedFileSinkOptions{Path: path, InitialCapacity: 16}, LevelInfo, NewPatternLayout("%message%n"))
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	for i := 0; i < 20; i++ {
		sink.Append(sampleEvent())
	}

	if sink.capacity <= 16 {
		t.Fatalf("expected capacity to have grown past the initial 16 bytes, got %d", sink.capacity)
	}
}

func TestMappedFileSinkLevelGating(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	sink, err := NewMappedFileSink("mmap", MappedFileSinkOptions{Path: path, InitialCapacity: 4096}, LevelError, NewPatternLayout("%message%n"))
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	ev := sampleEvent()
	ev.Level = LevelDebug
	sink.Append(ev)

	if sink.offset != 0 {
		t.Fatalf("expected offset to stay 0 for below-threshold event, got %d", sink.offset)
	}
}

func TestMappedFileSinkCloseTruncatesToLogicalSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	sink, err := NewMappedFileSink("mmap", MappedFileSinkOptions{Path: path, InitialCapacity: 4096}, LevelInfo, NewPatternLayout("%message%n"))
	if err != nil {
		t.Fatal(err)
	}
	sink.Append(sampleEvent())
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != int64(len("hello world\n")) {
		t.Fatalf("expected file truncated to logical size %d, got %d", len("hello world\n"), info.Size())
	}
}
