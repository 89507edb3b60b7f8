package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Strob0t/CityMesh/internal/domain/a2a"
	"github.com/Strob0t/CityMesh/internal/port/agentcomm"
	"github.com/Strob0t/CityMesh/internal/port/cache"
	"github.com/Strob0t/CityMesh/internal/port/decisionlog"
)

const agentStatusKey = "agent_status"

// SystemStatus is the aggregated health view returned by the status surface.
type SystemStatus struct {
	Status             string                 `json:"status"`
	AgentStatus        map[a2a.AgentType]bool `json:"agent_status"`
	DecisionsProcessed int                    `json:"decisions_processed"`
}

// StatusService reports collaborator health and the running decision count.
// Health sweeps hit every agent concurrently, so the result is cached for a
// short TTL to keep the status surface cheap under polling.
type StatusService struct {
	comm    agentcomm.Handler
	history decisionlog.Log
	cache   cache.Cache
	ttl     time.Duration
}

// NewStatusService creates a status service. The cache is optional; without
// one every call performs a fresh sweep.
func NewStatusService(comm agentcomm.Handler, history decisionlog.Log, c cache.Cache, ttl time.Duration) *StatusService {
	return &StatusService{comm: comm, history: history, cache: c, ttl: ttl}
}

// Snapshot returns the current system status. The agent sweep never fails:
// an unreachable agent is simply reported unhealthy.
func (s *StatusService) Snapshot(ctx context.Context) (SystemStatus, error) {
	status := SystemStatus{
		Status:      "ok",
		AgentStatus: s.agentStatus(ctx),
	}

	count, err := s.history.Count(ctx)
	if err != nil {
		return SystemStatus{}, err
	}
	status.DecisionsProcessed = count

	return status, nil
}

func (s *StatusService) agentStatus(ctx context.Context) map[a2a.AgentType]bool {
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, agentStatusKey); err == nil && ok {
			var cached map[a2a.AgentType]bool
			if json.Unmarshal(data, &cached) == nil {
				return cached
			}
		}
	}

	sweep := s.comm.AgentStatus(ctx)

	if s.cache != nil {
		if data, err := json.Marshal(sweep); err == nil {
			if err := s.cache.Set(ctx, agentStatusKey, data, s.ttl); err != nil {
				slog.Warn("cache agent status", "error", err)
			}
		}
	}

	return sweep
}
