package resilience

import (
	"errors"
	"testing"
	"time"
)

var errAgentDown = errors.New("agent unavailable")

func tripBreaker(b *Breaker, failures int) {
	for range failures {
		_ = b.Execute(func() error { return errAgentDown })
	}
}

func TestClosedBreakerRunsCalls(t *testing.T) {
	b := NewBreaker(3, time.Second)

	called := false
	if err := b.Execute(func() error { called = true; return nil }); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !called {
		t.Fatal("fn was not called")
	}
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := NewBreaker(3, time.Second)
	tripBreaker(b, 3)

	err := b.Execute(func() error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreakerTrialAfterCooldown(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.now = func() time.Time { return now }

	tripBreaker(b, 2)

	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen before cooldown, got %v", err)
	}

	now = now.Add(2 * time.Second)

	called := false
	if err := b.Execute(func() error { called = true; return nil }); err != nil {
		t.Fatalf("trial call failed: %v", err)
	}
	if !called {
		t.Fatal("trial call was not run")
	}

	// The successful trial closed the circuit: a single failure must not
	// reopen it.
	_ = b.Execute(func() error { return errAgentDown })
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("circuit should be closed after trial success, got %v", err)
	}
}

func TestBreakerReopensOnTrialFailure(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.now = func() time.Time { return now }

	tripBreaker(b, 2)
	now = now.Add(2 * time.Second)

	// Failing trial call.
	_ = b.Execute(func() error { return errAgentDown })

	err := b.Execute(func() error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen after failed trial, got %v", err)
	}
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	b := NewBreaker(3, time.Second)

	tripBreaker(b, 2)
	_ = b.Execute(func() error { return nil })
	tripBreaker(b, 2)

	// 2 + 2 failures with a success in between never reaches the threshold.
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected closed circuit, got %v", err)
	}
}
