// Package agentcomm defines the port for agent-to-agent communication:
// point-to-point sends, direct queries, concurrent fan-out, and health checks.
package agentcomm

import (
	"context"
	"errors"

	"github.com/Strob0t/CityMesh/internal/domain/a2a"
)

// ErrNoEndpoint is the configuration fault returned when no base URL is
// registered for a target agent. It is never retried.
var ErrNoEndpoint = errors.New("no endpoint registered for agent")

// Handler is the port interface for outbound agent communication.
// Implementations never propagate transport failures: every call resolves
// to a Result (or a plain boolean for health probes).
type Handler interface {
	// Send delivers a message to its receiver's generic /a2a/receive
	// channel with bounded retries and exponential backoff.
	Send(ctx context.Context, msg a2a.Message) Result

	// Query performs a single-shot call to a specific endpoint path on the
	// given agent. No retries.
	Query(ctx context.Context, agent a2a.AgentType, path string, payload any) Result

	// Broadcast sends an independent copy of msg to every target except the
	// sender, concurrently. The result map has exactly one entry per target
	// excluding the sender, regardless of per-target failures.
	Broadcast(ctx context.Context, msg a2a.Message, targets []a2a.AgentType) map[a2a.AgentType]Result

	// HealthCheck probes the agent's /health endpoint with a short timeout.
	HealthCheck(ctx context.Context, agent a2a.AgentType) bool

	// AgentStatus runs HealthCheck concurrently for every registered agent.
	AgentStatus(ctx context.Context) map[a2a.AgentType]bool
}
