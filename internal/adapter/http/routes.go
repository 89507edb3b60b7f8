package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// MountRoutes attaches every route of the public surface to the router.
// The request timeout covers the API routes only; /ws holds its connection
// open for the life of the stream.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.handleHealth)
	r.Get("/.well-known/agent.json", h.handleAgentCard)
	r.Post("/a2a/receive", h.handleReceive)
	r.Get("/ws", h.handleWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(60 * time.Second))
		r.Post("/decide", h.handleDecide)
		r.Get("/decisions", h.handleDecisions)
		r.Get("/agents/status", h.handleAgentStatus)
		r.Get("/quick-analysis", h.handleQuickAnalysis)
		r.Get("/dining-recommendation", h.handleDining)
		r.Get("/route-safety", h.handleRouteSafety)
	})
}
