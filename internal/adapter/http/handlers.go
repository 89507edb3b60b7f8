package http

import (
	"context"
	"net/http"

	"github.com/Strob0t/CityMesh/internal/domain/a2a"
	"github.com/Strob0t/CityMesh/internal/domain/decision"
	"github.com/Strob0t/CityMesh/internal/port/decisionlog"
	"github.com/Strob0t/CityMesh/internal/service"
)

const (
	agentName        = "citymesh-decision-agent"
	agentDescription = "Coordinates specialist city agents and aggregates their answers into one scored decision"

	// maxDecisionListing bounds /api/v1/decisions regardless of the
	// requested limit.
	maxDecisionListing = 100
)

// Decider is the decision entry point behind the HTTP surface.
type Decider interface {
	Decide(ctx context.Context, req *decision.Request) *decision.FinalDecision
}

// StatusReader reports aggregated collaborator health.
type StatusReader interface {
	Snapshot(ctx context.Context) (service.SystemStatus, error)
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	decider Decider
	status  StatusReader
	history decisionlog.Log
	version string
	ws      http.Handler
}

// NewHandlers creates the handler set for the decision API.
func NewHandlers(decider Decider, status StatusReader, history decisionlog.Log, version string) *Handlers {
	return &Handlers{decider: decider, status: status, history: history, version: version}
}

// SetWebSocket installs the handler behind GET /ws. Without one the route
// answers 404.
func (h *Handlers) SetWebSocket(handler http.Handler) {
	h.ws = handler
}

// ---------------------------------------------------------------------------
// System surface
// ---------------------------------------------------------------------------

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, err := h.status.Snapshot(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// agentCard is the discovery document served at /.well-known/agent.json.
type agentCard struct {
	Name        string                           `json:"name"`
	Description string                           `json:"description"`
	Version     string                           `json:"version"`
	Agents      map[a2a.AgentType]a2a.Capability `json:"agents"`
	QueryTypes  []string                         `json:"query_types"`
}

func (h *Handlers) handleAgentCard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, agentCard{
		Name:        agentName,
		Description: agentDescription,
		Version:     h.version,
		Agents:      a2a.Registry(),
		QueryTypes: []string{
			decision.QueryDining,
			decision.QueryRoutePlan,
			decision.QueryAreaAnalysis,
		},
	})
}

func (h *Handlers) handleReceive(w http.ResponseWriter, r *http.Request) {
	msg, err := readJSON[a2a.Message](w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := msg.Validate(); err != nil {
		writeDomainError(w, err, "invalid message")
		return
	}
	writeJSON(w, http.StatusOK, a2a.Ack{Status: "received", MessageID: msg.MessageID})
}

func (h *Handlers) handleWS(w http.ResponseWriter, r *http.Request) {
	if h.ws == nil {
		writeError(w, http.StatusNotFound, "websocket stream not enabled")
		return
	}
	h.ws.ServeHTTP(w, r)
}

// ---------------------------------------------------------------------------
// Decision surface
// ---------------------------------------------------------------------------

func (h *Handlers) handleDecide(w http.ResponseWriter, r *http.Request) {
	req, err := readJSON[decision.Request](w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// The engine degrades to a fallback decision on every internal error,
	// so this always answers 200 with a decision document.
	writeJSON(w, http.StatusOK, h.decider.Decide(r.Context(), req))
}

func (h *Handlers) handleDecisions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	if limit <= 0 || limit > maxDecisionListing {
		limit = 10
	}
	summaries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if summaries == nil {
		summaries = []decision.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handlers) handleAgentStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.status.Snapshot(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status.AgentStatus)
}

// quickAnalysis is the trimmed decision shape for the quick-analysis endpoint.
type quickAnalysis struct {
	DecisionID      string   `json:"decision_id"`
	Confidence      float64  `json:"confidence_score"`
	Recommendations []string `json:"recommendations"`
	Warnings        []string `json:"warnings"`
}

func (h *Handlers) handleQuickAnalysis(w http.ResponseWriter, r *http.Request) {
	user, err := userFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user.Preferences = map[string]any{
		"radius": queryInt(r, "radius", 1000),
		"limit":  10,
	}

	d := h.decider.Decide(r.Context(), &decision.Request{
		UserContext: *user,
		QueryType:   decision.QueryAreaAnalysis,
	})
	writeJSON(w, http.StatusOK, quickAnalysis{
		DecisionID:      d.DecisionID,
		Confidence:      d.ConfidenceScore,
		Recommendations: d.CombinedRecommendations,
		Warnings:        d.Warnings,
	})
}

func (h *Handlers) handleDining(w http.ResponseWriter, r *http.Request) {
	user, err := userFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user.Preferences = map[string]any{
		"radius": queryInt(r, "radius", 2000),
		"limit":  queryInt(r, "limit", 10),
	}

	d := h.decider.Decide(r.Context(), &decision.Request{
		UserContext: *user,
		QueryType:   decision.QueryDining,
	})
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) handleRouteSafety(w http.ResponseWriter, r *http.Request) {
	user, err := userFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dlat, err := queryFloat(r, "destination_latitude")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dlon, err := queryFloat(r, "destination_longitude")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user.Destination = &a2a.Location{Latitude: dlat, Longitude: dlon}

	d := h.decider.Decide(r.Context(), &decision.Request{
		UserContext: *user,
		QueryType:   decision.QueryRoutePlan,
	})
	writeJSON(w, http.StatusOK, d)
}

// userFromQuery builds a user context from the shared lat/lng/vehicle query
// parameters of the GET convenience endpoints.
func userFromQuery(r *http.Request) (*decision.UserContext, error) {
	lat, err := queryFloat(r, "latitude")
	if err != nil {
		return nil, err
	}
	lon, err := queryFloat(r, "longitude")
	if err != nil {
		return nil, err
	}
	return &decision.UserContext{
		Location:    a2a.Location{Latitude: lat, Longitude: lon},
		VehicleType: r.URL.Query().Get("vehicle_type"),
	}, nil
}
