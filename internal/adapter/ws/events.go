package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Strob0t/CityMesh/internal/domain/decision"
)

// Event type constants for WebSocket messages.
const (
	EventDecisionCreated = "decision.created"
	EventAgentStatus     = "agent.status"
)

// DecisionCreated broadcasts a freshly recorded decision to every client.
// It satisfies the decision engine's notifier hook.
func (h *Hub) DecisionCreated(d *decision.FinalDecision) {
	h.BroadcastEvent(context.Background(), EventDecisionCreated, d)
}

// BroadcastEvent marshals a typed event payload and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
