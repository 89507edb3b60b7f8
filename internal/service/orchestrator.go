// Package service implements the coordination layer: per-query-type
// orchestration recipes and the decision engine that aggregates collaborator
// responses into a single scored answer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	cmotel "github.com/Strob0t/CityMesh/internal/adapter/otel"
	"github.com/Strob0t/CityMesh/internal/domain/a2a"
	"github.com/Strob0t/CityMesh/internal/domain/decision"
	"github.com/Strob0t/CityMesh/internal/port/agentcomm"
)

// ErrDestinationRequired is returned by the route-planning recipe before any
// network call when the user context has no destination.
var ErrDestinationRequired = errors.New("destination required for route planning")

// errNoResponse marks a capability whose agent never answered within the
// communication handler's budget.
var errNoResponse = errors.New("agent returned no usable response")

// Orchestrator runs one coordination recipe per supported query type. Each
// recipe resolves to a map from capability name to that capability's report;
// a failing capability is recorded under its key and never aborts siblings.
// Recipes do not retry — retry and backoff live in the communication handler.
type Orchestrator struct {
	comm agentcomm.Handler
}

func NewOrchestrator(comm agentcomm.Handler) *Orchestrator {
	return &Orchestrator{comm: comm}
}

// capabilityCall names one outbound query a recipe wants issued.
type capabilityCall struct {
	name    string
	kind    decision.Kind
	agent   a2a.AgentType
	path    string
	payload map[string]any
}

// DiningRecommendation queries the food capability with the user's location
// and search preferences, plus the regulatory capability when a vehicle type
// is present. A festival lookup is a planned extension and not issued here.
func (o *Orchestrator) DiningRecommendation(ctx context.Context, user *decision.UserContext) (map[string]decision.Report, error) {
	ctx, span := cmotel.StartRecipeSpan(ctx, decision.QueryDining)
	defer span.End()

	calls := []capabilityCall{{
		name:  "food",
		kind:  decision.KindFood,
		agent: a2a.AgentFood,
		path:  "/recommendations",
		payload: map[string]any{
			"latitude":  user.Location.Latitude,
			"longitude": user.Location.Longitude,
			"radius":    user.IntPref("radius", 2000),
			"limit":     user.IntPref("limit", 10),
		},
	}}

	if user.VehicleType != "" {
		calls = append(calls, regulatoryCall("regulatory", user.Location, user.VehicleType))
	}

	return o.gather(ctx, calls), nil
}

// RoutePlanning requires a destination; without one it fails before any
// network call. With a vehicle type present, the regulatory capability is
// queried separately for origin and destination. A transport-capability call
// is a planned extension and not issued here.
func (o *Orchestrator) RoutePlanning(ctx context.Context, user *decision.UserContext) (map[string]decision.Report, error) {
	if user.Destination == nil {
		return nil, ErrDestinationRequired
	}

	ctx, span := cmotel.StartRecipeSpan(ctx, decision.QueryRoutePlan)
	defer span.End()

	var calls []capabilityCall
	if user.VehicleType != "" {
		calls = append(calls,
			regulatoryCall("origin_regulatory", user.Location, user.VehicleType),
			regulatoryCall("destination_regulatory", *user.Destination, user.VehicleType),
		)
	}

	return o.gather(ctx, calls), nil
}

// AreaAnalysis always queries the food capability with a tighter radius and
// result count than dining mode, plus the regulatory capability when a
// vehicle type is present.
func (o *Orchestrator) AreaAnalysis(ctx context.Context, user *decision.UserContext) (map[string]decision.Report, error) {
	ctx, span := cmotel.StartRecipeSpan(ctx, decision.QueryAreaAnalysis)
	defer span.End()

	calls := []capabilityCall{{
		name:  "food",
		kind:  decision.KindFood,
		agent: a2a.AgentFood,
		path:  "/recommendations",
		payload: map[string]any{
			"latitude":  user.Location.Latitude,
			"longitude": user.Location.Longitude,
			"radius":    1000,
			"limit":     5,
		},
	}}

	if user.VehicleType != "" {
		calls = append(calls, regulatoryCall("regulatory", user.Location, user.VehicleType))
	}

	return o.gather(ctx, calls), nil
}

func regulatoryCall(name string, loc a2a.Location, vehicleType string) capabilityCall {
	return capabilityCall{
		name:  name,
		kind:  decision.KindRegulatory,
		agent: a2a.AgentRegulatory,
		path:  "/regulatory-analysis",
		payload: map[string]any{
			"latitude":     loc.Latitude,
			"longitude":    loc.Longitude,
			"vehicle_type": vehicleType,
		},
	}
}

// gather issues every call concurrently and collects one report per
// capability name. Failures and panics are recorded inline under the
// capability's key; there is no cross-call cancellation.
func (o *Orchestrator) gather(ctx context.Context, calls []capabilityCall) map[string]decision.Report {
	results := make(map[string]decision.Report, len(calls))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, call := range calls {
		wg.Add(1)
		go func(call capabilityCall) {
			defer wg.Done()
			rep := o.invoke(ctx, call)
			mu.Lock()
			results[call.name] = rep
			mu.Unlock()
		}(call)
	}
	wg.Wait()

	return results
}

// invoke performs one capability query and converts every outcome, including
// a panic, into a report.
func (o *Orchestrator) invoke(ctx context.Context, call capabilityCall) (rep decision.Report) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("capability query panicked", "capability", call.name, "agent", call.agent, "panic", r)
			rep = decision.ErrorReport(call.name, call.kind, fmt.Errorf("query %s panicked: %v", call.name, r))
		}
	}()

	ctx, span := cmotel.StartAgentCallSpan(ctx, string(call.agent), call.path)
	defer span.End()

	res := o.comm.Query(ctx, call.agent, call.path, call.payload)
	switch {
	case res.Ok():
		return decision.DecodeReport(call.name, call.kind, res.Data())
	case res.Absent():
		slog.Warn("capability produced no data", "capability", call.name, "agent", call.agent)
		return decision.ErrorReport(call.name, call.kind, errNoResponse)
	default:
		return decision.ErrorReport(call.name, call.kind, res.Err())
	}
}
