package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestSetIsolatesKeys(t *testing.T) {
	s := NewSet(2, time.Second)

	// Trip the breaker for one agent only.
	for i := 0; i < 2; i++ {
		_ = s.For("regulatory").Execute(func() error { return errAgentDown })
	}

	err := s.For("regulatory").Execute(func() error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected regulatory breaker open, got %v", err)
	}

	// Sibling agent is unaffected.
	if err := s.For("food").Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected food breaker closed, got %v", err)
	}
}

func TestSetReturnsSameBreaker(t *testing.T) {
	s := NewSet(3, time.Second)
	if s.For("food") != s.For("food") {
		t.Fatal("expected the same breaker instance per key")
	}
}
