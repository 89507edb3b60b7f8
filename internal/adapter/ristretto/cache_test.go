package ristretto

import (
	"context"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestSetGetDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "agent_status", []byte(`{"food":true}`), time.Minute); err != nil {
		t.Fatal(err)
	}
	c.Wait()

	val, found, err := c.Get(ctx, "agent_status")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(val) != `{"food":true}` {
		t.Fatalf("expected cached value, found=%v val=%s", found, val)
	}

	if err := c.Delete(ctx, "agent_status"); err != nil {
		t.Fatal(err)
	}
	c.Wait()

	if _, found, _ := c.Get(ctx, "agent_status"); found {
		t.Fatal("expected miss after delete")
	}
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t)

	_, found, err := c.Get(context.Background(), "never-set")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected miss")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	c.Wait()

	if _, found, _ := c.Get(ctx, "short"); !found {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(100 * time.Millisecond)
	if _, found, _ := c.Get(ctx, "short"); found {
		t.Fatal("expected miss after TTL expiry")
	}
}
