package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/CityMesh/internal/adapter/memory"
	"github.com/Strob0t/CityMesh/internal/domain/a2a"
	"github.com/Strob0t/CityMesh/internal/domain/decision"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func TestStatusSnapshot(t *testing.T) {
	comm := &fakeComm{status: map[a2a.AgentType]bool{
		a2a.AgentFood:       true,
		a2a.AgentRegulatory: false,
	}}
	history := memory.NewDecisionLog(10)
	_ = history.Append(context.Background(), &decision.FinalDecision{DecisionID: "d-1"})

	svc := NewStatusService(comm, history, nil, 0)
	status, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if status.Status != "ok" {
		t.Errorf("unexpected status %q", status.Status)
	}
	if !status.AgentStatus[a2a.AgentFood] || status.AgentStatus[a2a.AgentRegulatory] {
		t.Errorf("unexpected agent status %v", status.AgentStatus)
	}
	if status.DecisionsProcessed != 1 {
		t.Errorf("expected decision count 1, got %d", status.DecisionsProcessed)
	}
}

func TestStatusCachesSweep(t *testing.T) {
	comm := &fakeComm{status: map[a2a.AgentType]bool{a2a.AgentFood: true}}
	history := memory.NewDecisionLog(10)
	svc := NewStatusService(comm, history, newMapCache(), time.Minute)

	ctx := context.Background()
	if _, err := svc.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}

	if comm.sweeps != 1 {
		t.Errorf("expected a single health sweep with a warm cache, got %d", comm.sweeps)
	}
}
