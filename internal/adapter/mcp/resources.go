package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"citymesh://decisions/recent",
			"Recent Decisions",
			mcplib.WithResourceDescription("Most recent decisions, newest first"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleDecisionsResource,
	)

	s.mcpServer.AddResource(
		mcplib.NewResource(
			"citymesh://agents/status",
			"Agent Status",
			mcplib.WithResourceDescription("Health of every registered collaborator agent"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleStatusResource,
	)
}

func (s *Server) handleDecisionsResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.History == nil {
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     `{"error":"decision history not configured"}`,
			},
		}, nil
	}
	summaries, err := s.deps.History.Recent(ctx, 10)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(summaries)
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleStatusResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Status == nil {
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     `{"error":"status service not configured"}`,
			},
		}, nil
	}
	status, err := s.deps.Status.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(status)
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
