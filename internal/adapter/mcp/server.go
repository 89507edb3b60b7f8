// Package mcp exposes the decision engine over the Model Context Protocol
// so AI assistants can request decisions and inspect agent health directly.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/CityMesh/internal/domain/decision"
	"github.com/Strob0t/CityMesh/internal/port/decisionlog"
	"github.com/Strob0t/CityMesh/internal/service"
)

// Decider is the decision entry point exposed as an MCP tool.
type Decider interface {
	Decide(ctx context.Context, req *decision.Request) *decision.FinalDecision
}

// StatusReader reports aggregated collaborator health.
type StatusReader interface {
	Snapshot(ctx context.Context) (service.SystemStatus, error)
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Addr    string
	Name    string
	Version string
}

// ServerDeps carries the capabilities the tools are backed by. Nil fields
// degrade the corresponding tool to an explanatory error result.
type ServerDeps struct {
	Decider Decider
	Status  StatusReader
	History decisionlog.Log
}

// Server wires the decision tools and resources onto an MCP server with a
// streamable HTTP transport.
type Server struct {
	cfg       ServerConfig
	deps      ServerDeps
	mcpServer *mcpserver.MCPServer
	httpSrv   *mcpserver.StreamableHTTPServer
}

// NewServer creates the MCP server and registers all tools and resources.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithResourceCapabilities(true, true),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying MCP server, mainly for tests.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Start serves the MCP surface over streamable HTTP. It returns immediately;
// serving continues in the background until Stop. An empty address disables
// the transport.
func (s *Server) Start() error {
	if s.cfg.Addr == "" {
		return nil
	}

	s.httpSrv = mcpserver.NewStreamableHTTPServer(s.mcpServer)
	go func() {
		if err := s.httpSrv.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mcp server failed", "addr", s.cfg.Addr, "error", err)
		}
	}()

	slog.Info("mcp server listening", "addr", s.cfg.Addr)
	return nil
}

// Stop gracefully shuts down the HTTP transport.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
