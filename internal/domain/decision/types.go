// Package decision defines the decision-engine data model: user context,
// decision requests, typed capability reports, and the final decision record.
package decision

import (
	"time"

	"github.com/Strob0t/CityMesh/internal/domain/a2a"
)

// Query types dispatched by the decision engine.
const (
	QueryDining       = "dining_recommendation"
	QueryRoutePlan    = "route_planning"
	QueryAreaAnalysis = "area_analysis"
)

// UserContext captures the requesting user's situation and preferences.
type UserContext struct {
	Location     a2a.Location   `json:"location"`
	VehicleType  string         `json:"vehicle_type,omitempty"`
	Preferences  map[string]any `json:"preferences,omitempty"`
	UrgencyLevel a2a.Priority   `json:"urgency_level,omitempty"`
	Destination  *a2a.Location  `json:"destination,omitempty"`
	ActivityType string         `json:"activity_type,omitempty"`
}

// Urgency returns the urgency level, defaulting to medium when unset.
func (u *UserContext) Urgency() a2a.Priority {
	if u.UrgencyLevel == "" {
		return a2a.PriorityMedium
	}
	return u.UrgencyLevel
}

// IntPref returns an integer preference by key, falling back to def when the
// key is absent or not numeric. JSON decoding yields float64 for numbers, so
// both forms are accepted.
func (u *UserContext) IntPref(key string, def int) int {
	v, ok := u.Preferences[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return def
}

// Request asks the decision engine for a coordinated answer.
type Request struct {
	UserContext      UserContext    `json:"user_context"`
	QueryType        string         `json:"query_type"`
	AdditionalParams map[string]any `json:"additional_params,omitempty"`
}

// FinalDecision is the aggregated, scored answer returned to the caller.
// Instances are append-only: once recorded to history they are never
// mutated or removed.
type FinalDecision struct {
	DecisionID              string            `json:"decision_id"`
	UserQuery               string            `json:"user_query"`
	Location                a2a.Location      `json:"location"`
	PrimaryRecommendation   string            `json:"primary_recommendation"`
	ConfidenceScore         float64           `json:"confidence_score"`
	AgentContributions      map[string]Report `json:"agent_contributions"`
	CombinedRecommendations []string          `json:"combined_recommendations"`
	Warnings                []string          `json:"warnings"`
	AdditionalInfo          map[string]any    `json:"additional_info"`
	Timestamp               time.Time         `json:"timestamp"`
}

// Summary is the bounded history-listing shape: identity and headline
// numbers only, never the full contributions.
type Summary struct {
	DecisionID string       `json:"decision_id"`
	QueryType  string       `json:"query_type"`
	Location   a2a.Location `json:"location"`
	Confidence float64      `json:"confidence"`
	Timestamp  time.Time    `json:"timestamp"`
}

// Summarize reduces a decision to its history-listing form.
func (d *FinalDecision) Summarize() Summary {
	return Summary{
		DecisionID: d.DecisionID,
		QueryType:  d.UserQuery,
		Location:   d.Location,
		Confidence: d.ConfidenceScore,
		Timestamp:  d.Timestamp,
	}
}
