// Package a2a defines the agent-to-agent message model: agent identities,
// message envelopes, and the static capability registry.
package a2a

import (
	"fmt"
	"time"

	"github.com/Strob0t/CityMesh/internal/domain"
)

// AgentType identifies a specialist agent. It keys both the endpoint
// configuration and the capability registry.
type AgentType string

const (
	AgentFood       AgentType = "food"
	AgentRegulatory AgentType = "regulatory"
	AgentTransport  AgentType = "transport"
	AgentFestival   AgentType = "festival"
	AgentDecision   AgentType = "decision"
)

// AllAgentTypes returns every known agent type in declaration order.
func AllAgentTypes() []AgentType {
	return []AgentType{AgentFood, AgentRegulatory, AgentTransport, AgentFestival, AgentDecision}
}

// Valid reports whether t is a member of the closed agent-type set.
func (t AgentType) Valid() bool {
	switch t {
	case AgentFood, AgentRegulatory, AgentTransport, AgentFestival, AgentDecision:
		return true
	}
	return false
}

// Priority is advisory message priority. It does not affect scheduling.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// MessageType classifies an A2A message.
type MessageType string

const (
	MessageRequest      MessageType = "request"
	MessageResponse     MessageType = "response"
	MessageNotification MessageType = "notification"
	MessageQuery        MessageType = "query"
	MessageStatus       MessageType = "status"
)

// Location is a geographic point with an optional free-text address.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Message is the standard envelope for inter-agent communication.
// Once sent, a message is immutable: retries resend the identical
// serialized bytes.
type Message struct {
	MessageID     string         `json:"message_id"`
	SenderAgent   AgentType      `json:"sender_agent"`
	ReceiverAgent AgentType      `json:"receiver_agent"`
	MessageType   MessageType    `json:"message_type"`
	Priority      Priority       `json:"priority"`
	Timestamp     time.Time      `json:"timestamp"`
	Payload       map[string]any `json:"payload"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}

// Validate checks the invariants required before a message may be transmitted.
func (m *Message) Validate() error {
	if m.MessageID == "" {
		return fmt.Errorf("%w: message_id is required", domain.ErrValidation)
	}
	if !m.SenderAgent.Valid() {
		return fmt.Errorf("%w: sender_agent is not a known agent type", domain.ErrValidation)
	}
	if !m.ReceiverAgent.Valid() {
		return fmt.Errorf("%w: receiver_agent is not a known agent type", domain.ErrValidation)
	}
	if m.SenderAgent == m.ReceiverAgent {
		return fmt.Errorf("%w: sender and receiver must differ", domain.ErrValidation)
	}
	return nil
}

// WithReceiver returns a copy of the message addressed to the given agent.
// The original message is left untouched.
func (m Message) WithReceiver(agent AgentType) Message {
	m.ReceiverAgent = agent
	return m
}

// Ack is the acknowledgement returned by an agent's /a2a/receive endpoint.
type Ack struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}
