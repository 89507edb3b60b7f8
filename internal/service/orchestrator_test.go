package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/Strob0t/CityMesh/internal/domain/a2a"
	"github.com/Strob0t/CityMesh/internal/domain/decision"
	"github.com/Strob0t/CityMesh/internal/port/agentcomm"
)

// fakeComm scripts query responses per agent+path and records every call.
type fakeComm struct {
	mu      sync.Mutex
	calls   []fakeCall
	respond func(agent a2a.AgentType, path string, payload any) agentcomm.Result
	status  map[a2a.AgentType]bool
	sweeps  int
}

type fakeCall struct {
	agent   a2a.AgentType
	path    string
	payload map[string]any
}

func (f *fakeComm) Query(_ context.Context, agent a2a.AgentType, path string, payload any) agentcomm.Result {
	f.mu.Lock()
	p, _ := payload.(map[string]any)
	f.calls = append(f.calls, fakeCall{agent: agent, path: path, payload: p})
	f.mu.Unlock()
	if f.respond == nil {
		return agentcomm.NoData()
	}
	return f.respond(agent, path, payload)
}

func (f *fakeComm) Send(context.Context, a2a.Message) agentcomm.Result {
	return agentcomm.NoData()
}

func (f *fakeComm) Broadcast(context.Context, a2a.Message, []a2a.AgentType) map[a2a.AgentType]agentcomm.Result {
	return nil
}

func (f *fakeComm) HealthCheck(_ context.Context, agent a2a.AgentType) bool {
	return f.status[agent]
}

func (f *fakeComm) AgentStatus(context.Context) map[a2a.AgentType]bool {
	f.mu.Lock()
	f.sweeps++
	f.mu.Unlock()
	return f.status
}

func (f *fakeComm) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func jsonResult(t *testing.T, v any) agentcomm.Result {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return agentcomm.Success(data)
}

func foodResponse(t *testing.T, n int) agentcomm.Result {
	t.Helper()
	restaurants := make([]map[string]any, n)
	for i := range restaurants {
		restaurants[i] = map[string]any{"name": "Place", "rating": 4.2}
	}
	return jsonResult(t, map[string]any{"top_recommendations": restaurants})
}

func userAt(lat, lon float64) decision.UserContext {
	return decision.UserContext{Location: a2a.Location{Latitude: lat, Longitude: lon}}
}

func TestDiningRecipeWithVehicle(t *testing.T) {
	comm := &fakeComm{respond: func(agent a2a.AgentType, _ string, _ any) agentcomm.Result {
		if agent == a2a.AgentFood {
			return foodResponse(t, 2)
		}
		return jsonResult(t, map[string]any{"risk_level": "low"})
	}}
	o := NewOrchestrator(comm)

	user := userAt(12.9716, 77.5946)
	user.VehicleType = "car"
	reports, err := o.DiningRecommendation(context.Background(), &user)
	if err != nil {
		t.Fatal(err)
	}

	if len(reports) != 2 {
		t.Fatalf("expected food and regulatory keys, got %v", reports)
	}
	if reports["food"].Failed() || reports["regulatory"].Failed() {
		t.Fatalf("expected both capabilities to succeed: %+v", reports)
	}

	for _, call := range comm.calls {
		switch call.agent {
		case a2a.AgentFood:
			if call.path != "/recommendations" {
				t.Errorf("food path = %s", call.path)
			}
			if call.payload["radius"] != 2000 || call.payload["limit"] != 10 {
				t.Errorf("expected default radius/limit, got %v", call.payload)
			}
		case a2a.AgentRegulatory:
			if call.path != "/regulatory-analysis" {
				t.Errorf("regulatory path = %s", call.path)
			}
			if call.payload["vehicle_type"] != "car" {
				t.Errorf("expected vehicle type forwarded, got %v", call.payload)
			}
		}
	}
}

func TestDiningRecipeHonorsPreferences(t *testing.T) {
	comm := &fakeComm{respond: func(a2a.AgentType, string, any) agentcomm.Result {
		return foodResponse(t, 1)
	}}
	o := NewOrchestrator(comm)

	user := userAt(12.97, 77.59)
	user.Preferences = map[string]any{"radius": float64(500), "limit": float64(3)}
	if _, err := o.DiningRecommendation(context.Background(), &user); err != nil {
		t.Fatal(err)
	}

	if comm.calls[0].payload["radius"] != 500 || comm.calls[0].payload["limit"] != 3 {
		t.Errorf("expected preference overrides, got %v", comm.calls[0].payload)
	}
}

func TestAreaAnalysisWithoutVehicleQueriesFoodOnly(t *testing.T) {
	comm := &fakeComm{respond: func(a2a.AgentType, string, any) agentcomm.Result {
		return foodResponse(t, 3)
	}}
	o := NewOrchestrator(comm)

	user := userAt(12.97, 77.59)
	reports, err := o.AreaAnalysis(context.Background(), &user)
	if err != nil {
		t.Fatal(err)
	}

	if len(reports) != 1 {
		t.Fatalf("expected exactly one capability, got %v", reports)
	}
	if _, ok := reports["food"]; !ok {
		t.Fatal("expected food key")
	}
	if comm.calls[0].payload["radius"] != 1000 || comm.calls[0].payload["limit"] != 5 {
		t.Errorf("area analysis uses the tight search window, got %v", comm.calls[0].payload)
	}
}

func TestRoutePlanningRequiresDestination(t *testing.T) {
	comm := &fakeComm{}
	o := NewOrchestrator(comm)

	user := userAt(12.97, 77.59)
	user.VehicleType = "car"
	_, err := o.RoutePlanning(context.Background(), &user)
	if err != ErrDestinationRequired {
		t.Fatalf("expected ErrDestinationRequired, got %v", err)
	}
	if comm.callCount() != 0 {
		t.Fatalf("expected zero network calls, got %d", comm.callCount())
	}
}

func TestRoutePlanningQueriesBothEnds(t *testing.T) {
	riskScore := 0.4
	comm := &fakeComm{respond: func(a2a.AgentType, string, any) agentcomm.Result {
		return jsonResult(t, map[string]any{"risk_score": riskScore, "risk_level": "low"})
	}}
	o := NewOrchestrator(comm)

	user := userAt(12.97, 77.59)
	user.VehicleType = "bike"
	user.Destination = &a2a.Location{Latitude: 13.08, Longitude: 80.27}

	reports, err := o.RoutePlanning(context.Background(), &user)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected origin and destination entries, got %v", reports)
	}
	if reports["origin_regulatory"].Failed() || reports["destination_regulatory"].Failed() {
		t.Fatalf("expected both regulatory calls to succeed: %+v", reports)
	}

	lats := map[float64]bool{}
	for _, call := range comm.calls {
		lats[call.payload["latitude"].(float64)] = true
	}
	if !lats[12.97] || !lats[13.08] {
		t.Errorf("expected one query per end of the route, got %v", comm.calls)
	}
}

func TestRecipeIsolatesCapabilityFailure(t *testing.T) {
	comm := &fakeComm{respond: func(agent a2a.AgentType, _ string, _ any) agentcomm.Result {
		if agent == a2a.AgentFood {
			return foodResponse(t, 2)
		}
		return agentcomm.NoData()
	}}
	o := NewOrchestrator(comm)

	user := userAt(12.97, 77.59)
	user.VehicleType = "car"
	reports, err := o.AreaAnalysis(context.Background(), &user)
	if err != nil {
		t.Fatal(err)
	}

	if reports["food"].Failed() {
		t.Error("food result corrupted by sibling failure")
	}
	if !reports["regulatory"].Failed() {
		t.Error("expected regulatory failure recorded inline")
	}
}

func TestRecipeRecordsPanicInline(t *testing.T) {
	comm := &fakeComm{respond: func(agent a2a.AgentType, _ string, _ any) agentcomm.Result {
		if agent == a2a.AgentRegulatory {
			panic("regulatory exploded")
		}
		return foodResponse(t, 1)
	}}
	o := NewOrchestrator(comm)

	user := userAt(12.97, 77.59)
	user.VehicleType = "car"
	reports, err := o.DiningRecommendation(context.Background(), &user)
	if err != nil {
		t.Fatal(err)
	}

	if !reports["regulatory"].Failed() {
		t.Error("expected panic recorded as capability error")
	}
	if reports["food"].Failed() {
		t.Error("expected food untouched by sibling panic")
	}
}

func TestRecipeRecordsMalformedResponse(t *testing.T) {
	comm := &fakeComm{respond: func(a2a.AgentType, string, any) agentcomm.Result {
		return agentcomm.Success([]byte(`{"top_recommendations": "not a list"}`))
	}}
	o := NewOrchestrator(comm)

	user := userAt(12.97, 77.59)
	reports, err := o.AreaAnalysis(context.Background(), &user)
	if err != nil {
		t.Fatal(err)
	}
	if !reports["food"].Failed() {
		t.Error("expected schema violation recorded as capability error")
	}
}
