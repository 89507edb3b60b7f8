// Package memory provides the in-process decision history: a bounded ring
// buffer that serves as the default decisionlog.Log implementation.
package memory

import (
	"context"
	"sync"

	"github.com/Strob0t/CityMesh/internal/domain/decision"
)

// DecisionLog is a mutex-guarded ring buffer of decision records. When the
// capacity is reached the oldest entries are evicted; entries are never
// mutated in place. The total count keeps growing past eviction.
type DecisionLog struct {
	mu      sync.Mutex
	entries []*decision.FinalDecision
	start   int
	size    int
	total   int
}

// NewDecisionLog creates a ring buffer holding up to capacity decisions.
// A non-positive capacity falls back to 1000.
func NewDecisionLog(capacity int) *DecisionLog {
	if capacity <= 0 {
		capacity = 1000
	}
	return &DecisionLog{entries: make([]*decision.FinalDecision, capacity)}
}

// Append records d, evicting the oldest entry when full.
func (l *DecisionLog) Append(_ context.Context, d *decision.FinalDecision) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := (l.start + l.size) % len(l.entries)
	l.entries[idx] = d
	if l.size < len(l.entries) {
		l.size++
	} else {
		l.start = (l.start + 1) % len(l.entries)
	}
	l.total++
	return nil
}

// Recent returns up to limit summaries, most recent first. A non-positive
// limit returns everything currently retained.
func (l *DecisionLog) Recent(_ context.Context, limit int) ([]decision.Summary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.size
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]decision.Summary, 0, n)
	for i := 0; i < n; i++ {
		idx := (l.start + l.size - 1 - i) % len(l.entries)
		out = append(out, l.entries[idx].Summarize())
	}
	return out, nil
}

// Count returns the number of decisions ever appended, including evicted ones.
func (l *DecisionLog) Count(_ context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total, nil
}
