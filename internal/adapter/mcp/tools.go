package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/CityMesh/internal/domain/a2a"
	"github.com/Strob0t/CityMesh/internal/domain/decision"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.decideTool(),
		s.agentStatusTool(),
		s.recentDecisionsTool(),
	)
}

func (s *Server) decideTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("decide",
		mcplib.WithDescription("Run a coordinated multi-agent decision for a location"),
		mcplib.WithString("query_type",
			mcplib.Required(),
			mcplib.Description("One of dining_recommendation, route_planning, area_analysis"),
		),
		mcplib.WithNumber("latitude",
			mcplib.Required(),
			mcplib.Description("Latitude of the user's location"),
		),
		mcplib.WithNumber("longitude",
			mcplib.Required(),
			mcplib.Description("Longitude of the user's location"),
		),
		mcplib.WithString("vehicle_type",
			mcplib.Description("Vehicle type, enables regulatory analysis"),
		),
		mcplib.WithNumber("destination_latitude",
			mcplib.Description("Destination latitude, required for route planning"),
		),
		mcplib.WithNumber("destination_longitude",
			mcplib.Description("Destination longitude, required for route planning"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleDecide,
	}
}

func (s *Server) agentStatusTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_agent_status",
		mcplib.WithDescription("Get the health of every registered collaborator agent plus the decision count"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleAgentStatus,
	}
}

func (s *Server) recentDecisionsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("recent_decisions",
		mcplib.WithDescription("List recent decisions, most recent first"),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of decisions to return (default 10)"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleRecentDecisions,
	}
}

func (s *Server) handleDecide(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Decider == nil {
		return mcplib.NewToolResultError("decision engine not configured"), nil
	}

	args := req.GetArguments()
	queryType, ok := args["query_type"].(string)
	if !ok || queryType == "" {
		return mcplib.NewToolResultError("query_type is required"), nil
	}
	lat, ok := args["latitude"].(float64)
	if !ok {
		return mcplib.NewToolResultError("latitude is required"), nil
	}
	lon, ok := args["longitude"].(float64)
	if !ok {
		return mcplib.NewToolResultError("longitude is required"), nil
	}

	user := decision.UserContext{
		Location: a2a.Location{Latitude: lat, Longitude: lon},
	}
	if vt, ok := args["vehicle_type"].(string); ok {
		user.VehicleType = vt
	}
	dlat, okLat := args["destination_latitude"].(float64)
	dlon, okLon := args["destination_longitude"].(float64)
	if okLat && okLon {
		user.Destination = &a2a.Location{Latitude: dlat, Longitude: dlon}
	}

	d := s.deps.Decider.Decide(ctx, &decision.Request{UserContext: user, QueryType: queryType})
	data, err := json.Marshal(d)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal decision", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleAgentStatus(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Status == nil {
		return mcplib.NewToolResultError("status service not configured"), nil
	}
	status, err := s.deps.Status.Snapshot(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to read status", err), nil
	}
	data, err := json.Marshal(status)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal status", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleRecentDecisions(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.History == nil {
		return mcplib.NewToolResultError("decision history not configured"), nil
	}

	limit := 10
	if n, ok := req.GetArguments()["limit"].(float64); ok && n > 0 {
		limit = int(n)
	}

	summaries, err := s.deps.History.Recent(ctx, limit)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list decisions", err), nil
	}
	data, err := json.Marshal(summaries)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal decisions", err), nil
	}
	return toolResultJSON(string(data)), nil
}

// toolResultJSON wraps a JSON document as a text tool result.
func toolResultJSON(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}
