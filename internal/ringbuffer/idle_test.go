package ringbuffer

import (
	"testing"
	"time"
)

func TestSpinningIdleStrategy(t *testing.T) {
	s := NewSpinningIdleStrategy()
	if !s.Idle() {
		t.Fatal("expected Idle() true")
	}
	s.Reset()
	if s.String() != "spinning" {
		t.Fatalf("got %s", s.String())
	}
}

func TestSleepingIdleStrategySpinsBeforeSleep(t *testing.T) {
	s := NewSleepingIdleStrategy(5*time.Millisecond, 2)
	start := time.Now()
	s.Idle()
	s.Idle()
	if time.Since(start) > 2*time.Millisecond {
		t.Fatal("expected the first maxSpins calls to not sleep")
	}
	start = time.Now()
	s.Idle()
	if time.Since(start) < 3*time.Millisecond {
		t.Fatal("expected a sleep once spins exceed maxSpins")
	}
	s.Reset()
	if s.String() != "sleeping" {
		t.Fatalf("got %s", s.String())
	}
}

func TestYieldingIdleStrategy(t *testing.T) {
	s := NewYieldingIdleStrategy(4)
	for i := 0; i < 10; i++ {
		if !s.Idle() {
			t.Fatal("expected Idle() true")
		}
	}
	if s.String() != "yielding" {
		t.Fatalf("got %s", s.String())
	}
}

func TestChannelIdleStrategyWakeUp(t *testing.T) {
	s := NewChannelIdleStrategy(50 * time.Millisecond)
	s.WakeUp()
	done := make(chan bool, 1)
	go func() { done <- s.Idle() }()
	select {
	case ok := <-done:
		if !ok {
			t.Fatal("expected Idle() true after WakeUp")
		}
	case <-time.After(time.Second):
		t.Fatal("Idle() did not return after WakeUp")
	}
	if s.String() != "channel" {
		t.Fatalf("got %s", s.String())
	}
}

func TestChannelIdleStrategyTimeout(t *testing.T) {
	s := NewChannelIdleStrategy(10 * time.Millisecond)
	start := time.Now()
	if !s.Idle() {
		t.Fatal("expected Idle() true on timeout")
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Fatal("expected Idle() to wait roughly the timeout duration")
	}
}

func TestProgressiveIdleStrategy(t *testing.T) {
	s := NewProgressiveIdleStrategy()
	for i := 0; i < 10; i++ {
		if !s.Idle() {
			t.Fatal("expected Idle() true")
		}
	}
	s.Reset()
	if s.String() != "progressive" {
		t.Fatalf("got %s", s.String())
	}
}

func TestPaddedInt64(t *testing.T) {
	var v PaddedInt64
	v.Store(10)
	if v.Load() != 10 {
		t.Fatal("expected 10")
	}
	if v.Add(5) != 15 {
		t.Fatal("expected 15 after Add(5)")
	}
	if !v.CompareAndSwap(15, 20) {
		t.Fatal("expected CAS to succeed")
	}
	if v.Load() != 20 {
		t.Fatal("expected 20 after CAS")
	}
	if v.CompareAndSwap(15, 30) {
		t.Fatal("expected CAS to fail on stale old value")
	}
}
