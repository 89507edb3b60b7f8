package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	cmotel "github.com/Strob0t/CityMesh/internal/adapter/otel"
	"github.com/Strob0t/CityMesh/internal/domain/decision"
	"github.com/Strob0t/CityMesh/internal/port/decisionlog"
	"github.com/Strob0t/CityMesh/internal/port/messagequeue"
)

// Aggregation weights per capability name. Unknown capability names (such
// as origin_regulatory) fall back to the default weight.
var confidenceWeights = map[string]float64{
	"food":       0.3,
	"regulatory": 0.4,
	"transport":  0.2,
	"festival":   0.1,
}

const (
	defaultWeight     = 0.25
	defaultConfidence = 0.7
	neutralConfidence = 0.5
	fallbackScore     = 0.1

	lowHygieneThreshold = 5
)

// SubjectDecisionCreated is the queue subject every completed decision is
// published on.
const SubjectDecisionCreated = "decisions.created"

// Notifier receives every completed decision, e.g. a websocket hub pushing
// live updates to subscribers.
type Notifier interface {
	DecisionCreated(d *decision.FinalDecision)
}

// Metrics records decision throughput and latency. Implemented by the
// telemetry adapter; nil-safe via the engine's optional wiring.
type Metrics interface {
	RecordDecision(ctx context.Context, queryType string, confidence float64, elapsed time.Duration)
}

// Engine aggregates orchestrator results into final decisions. Decide never
// propagates a failure: every path, including a panicking recipe, resolves
// to a well-formed decision that is appended to history.
type Engine struct {
	orch    *Orchestrator
	history decisionlog.Log
	queue   messagequeue.Queue
	notify  Notifier
	metrics Metrics
}

func NewEngine(orch *Orchestrator, history decisionlog.Log) *Engine {
	return &Engine{
		orch:    orch,
		history: history,
		queue:   messagequeue.Nop{},
	}
}

// SetQueue attaches an event publisher for completed decisions.
func (e *Engine) SetQueue(q messagequeue.Queue) {
	e.queue = q
}

// SetNotifier attaches a live-update sink for completed decisions.
func (e *Engine) SetNotifier(n Notifier) {
	e.notify = n
}

// SetMetrics attaches decision telemetry.
func (e *Engine) SetMetrics(m Metrics) {
	e.metrics = m
}

// Decide dispatches the request to its recipe, aggregates the result map
// into a scored decision, and records it. An unrecognized query type runs
// the area-analysis recipe under a generic label.
func (e *Engine) Decide(ctx context.Context, req *decision.Request) *decision.FinalDecision {
	start := time.Now()
	id := uuid.NewString()

	ctx, span := cmotel.StartDecisionSpan(ctx, id, req.QueryType)
	defer span.End()

	d := e.run(ctx, id, req)
	e.record(ctx, d, time.Since(start))
	return d
}

// run executes the recipe and aggregation under a recovery boundary: any
// failure or panic degrades to the fallback decision instead of propagating.
func (e *Engine) run(ctx context.Context, id string, req *decision.Request) (d *decision.FinalDecision) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("decision aggregation panicked", "decision_id", id, "query_type", req.QueryType, "panic", r)
			d = e.fallback(id, req, fmt.Errorf("decision processing panicked: %v", r))
		}
	}()

	var (
		reports map[string]decision.Report
		primary string
		err     error
	)
	switch req.QueryType {
	case decision.QueryDining:
		reports, err = e.orch.DiningRecommendation(ctx, &req.UserContext)
		primary = "Restaurant recommendations with safety analysis"
	case decision.QueryRoutePlan:
		reports, err = e.orch.RoutePlanning(ctx, &req.UserContext)
		primary = "Route planning with regulatory and event considerations"
	case decision.QueryAreaAnalysis:
		reports, err = e.orch.AreaAnalysis(ctx, &req.UserContext)
		primary = "Comprehensive area analysis"
	default:
		reports, err = e.orch.AreaAnalysis(ctx, &req.UserContext)
		primary = fmt.Sprintf("Analysis for %s", req.QueryType)
	}
	if err != nil {
		return e.fallback(id, req, err)
	}

	consulted := make([]string, 0, len(reports))
	for name := range reports {
		consulted = append(consulted, name)
	}
	sort.Strings(consulted)

	return &decision.FinalDecision{
		DecisionID:              id,
		UserQuery:               req.QueryType,
		Location:                req.UserContext.Location,
		PrimaryRecommendation:   primary,
		ConfidenceScore:         ComputeConfidence(reports),
		AgentContributions:      reports,
		CombinedRecommendations: GenerateRecommendations(reports),
		Warnings:                ExtractWarnings(reports),
		AdditionalInfo: map[string]any{
			"processing_agents": consulted,
			"user_vehicle":      req.UserContext.VehicleType,
			"request_priority":  string(req.UserContext.Urgency()),
		},
		Timestamp: time.Now().UTC(),
	}
}

// fallback synthesizes the degraded decision returned when a recipe or the
// aggregation itself fails entirely. It carries a fixed low confidence and
// the raw error text for diagnostics, and is recorded like any other.
func (e *Engine) fallback(id string, req *decision.Request, err error) *decision.FinalDecision {
	slog.Error("decision failed, returning degraded result",
		"decision_id", id,
		"query_type", req.QueryType,
		"error", err,
	)
	return &decision.FinalDecision{
		DecisionID:            id,
		UserQuery:             req.QueryType,
		Location:              req.UserContext.Location,
		PrimaryRecommendation: "Error occurred during analysis",
		ConfidenceScore:       fallbackScore,
		AgentContributions:    map[string]decision.Report{},
		CombinedRecommendations: []string{
			fmt.Sprintf("❌ Error: %s", err),
			"🔄 Please try again or contact support",
		},
		Warnings:       []string{"System error occurred during processing"},
		AdditionalInfo: map[string]any{"error": err.Error()},
		Timestamp:      time.Now().UTC(),
	}
}

// record appends the decision to history and fans it out to the optional
// sinks. Sink failures are logged, never surfaced to the caller.
func (e *Engine) record(ctx context.Context, d *decision.FinalDecision, elapsed time.Duration) {
	if err := e.history.Append(ctx, d); err != nil {
		slog.Error("append decision to history", "decision_id", d.DecisionID, "error", err)
	}

	if data, err := json.Marshal(d.Summarize()); err == nil {
		if err := e.queue.Publish(ctx, SubjectDecisionCreated, data); err != nil {
			slog.Warn("publish decision event", "decision_id", d.DecisionID, "error", err)
		}
	}

	if e.notify != nil {
		e.notify.DecisionCreated(d)
	}
	if e.metrics != nil {
		e.metrics.RecordDecision(ctx, d.UserQuery, d.ConfidenceScore, elapsed)
	}

	slog.Info("decision recorded",
		"decision_id", d.DecisionID,
		"query_type", d.UserQuery,
		"confidence", d.ConfidenceScore,
		"elapsed", elapsed,
	)
}

// History exposes the engine's append-only decision log for reporting.
func (e *Engine) History() decisionlog.Log {
	return e.history
}

// ComputeConfidence combines per-capability confidences into a weighted
// average over the capabilities that produced usable data. Food confidence
// grows with the number of recommendations, regulatory confidence with the
// number of applicable zones, both bounded above; every other usable report
// contributes the domain default. No usable data at all yields a neutral
// score.
func ComputeConfidence(reports map[string]decision.Report) float64 {
	var total, weightSum float64
	for name, rep := range reports {
		if rep.Failed() {
			continue
		}

		conf := defaultConfidence
		switch {
		case name == "food" && rep.Food != nil && rep.Food.TopRecommendations != nil:
			conf = math.Min(0.9, 0.5+float64(len(rep.Food.TopRecommendations))*0.05)
		case name == "regulatory" && rep.Regulatory != nil && rep.Regulatory.RiskScore != nil:
			conf = math.Min(0.95, 0.6+float64(len(rep.Regulatory.ApplicableZones))*0.1)
		}

		weight, ok := confidenceWeights[name]
		if !ok {
			weight = defaultWeight
		}
		total += conf * weight
		weightSum += weight
	}

	if weightSum == 0 {
		return neutralConfidence
	}
	return total / weightSum
}

// GenerateRecommendations turns the result map into the user-facing
// recommendation lines: up to three food entries, a risk advisory when the
// regulatory classification warrants one, and up to two regulatory warnings
// verbatim. An empty list is replaced by a fixed three-line default.
func GenerateRecommendations(reports map[string]decision.Report) []string {
	var recs []string

	if rep, ok := reports["food"]; ok && !rep.Failed() && rep.Food != nil {
		top := rep.Food.TopRecommendations
		if len(top) > 3 {
			top = top[:3]
		}
		for _, r := range top {
			name := r.Name
			if name == "" {
				name = "Restaurant"
			}
			line := "🍴 " + name
			if r.Rating != nil {
				line += fmt.Sprintf(" (⭐ %g)", *r.Rating)
			}
			if r.Label != "" {
				line += " - " + r.Label
			}
			recs = append(recs, line)
		}
	}

	if rep, ok := reports["regulatory"]; ok && !rep.Failed() && rep.Regulatory != nil {
		switch strings.ToLower(rep.Regulatory.RiskLevel) {
		case "high":
			recs = append(recs, "⚠️ HIGH RISK AREA - Extra caution advised for traffic enforcement")
		case "moderate":
			recs = append(recs, "⚡ Moderate enforcement area - Follow traffic rules strictly")
		}

		warnings := rep.Regulatory.Warnings
		if len(warnings) > 2 {
			warnings = warnings[:2]
		}
		for _, w := range warnings {
			recs = append(recs, "🚨 "+w)
		}
	}

	if len(recs) == 0 {
		recs = []string{
			"📍 Location analysis completed",
			"✅ No major concerns detected in the area",
			"🚗 Standard traffic rules apply",
		}
	}
	return recs
}

// ExtractWarnings collects the warning lines: regulatory warnings first (up
// to three, severity-prefixed), then one summary line when any recommended
// restaurant falls below the hygiene threshold. A restaurant with no hygiene
// score counts as healthy.
func ExtractWarnings(reports map[string]decision.Report) []string {
	var warnings []string

	if rep, ok := reports["regulatory"]; ok && !rep.Failed() && rep.Regulatory != nil {
		regWarnings := rep.Regulatory.Warnings
		if len(regWarnings) > 3 {
			regWarnings = regWarnings[:3]
		}
		for _, w := range regWarnings {
			warnings = append(warnings, "🚨 "+w)
		}
	}

	if rep, ok := reports["food"]; ok && !rep.Failed() && rep.Food != nil {
		lowHygiene := 0
		for _, r := range rep.Food.TopRecommendations {
			if r.LowHygiene(lowHygieneThreshold) {
				lowHygiene++
			}
		}
		if lowHygiene > 0 {
			warnings = append(warnings, fmt.Sprintf("🏥 %d restaurants have low hygiene scores", lowHygiene))
		}
	}

	return warnings
}
