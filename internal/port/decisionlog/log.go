// Package decisionlog defines the port for the append-only decision history.
package decisionlog

import (
	"context"

	"github.com/Strob0t/CityMesh/internal/domain/decision"
)

// Log is the append-only decision history. Appends from concurrent decide
// calls are serialized by the implementation; reads return a consistent
// snapshot taken at call time.
type Log interface {
	// Append records a decision. Past entries are never mutated or removed,
	// though bounded implementations may evict the oldest entries.
	Append(ctx context.Context, d *decision.FinalDecision) error

	// Recent returns up to limit summaries, most recent first.
	Recent(ctx context.Context, limit int) ([]decision.Summary, error)

	// Count returns the number of decisions recorded so far.
	Count(ctx context.Context) (int, error)
}
