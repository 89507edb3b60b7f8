package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/CityMesh/internal/domain/decision"
)

func record(id string) *decision.FinalDecision {
	return &decision.FinalDecision{
		DecisionID:      id,
		UserQuery:       "area_analysis",
		ConfidenceScore: 0.7,
		Timestamp:       time.Now().UTC(),
	}
}

func TestDecisionLogMostRecentFirst(t *testing.T) {
	log := NewDecisionLog(10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := log.Append(ctx, record(fmt.Sprintf("d-%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := log.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(recent))
	}
	if recent[0].DecisionID != "d-2" || recent[1].DecisionID != "d-1" {
		t.Errorf("expected most recent first, got %s, %s", recent[0].DecisionID, recent[1].DecisionID)
	}
}

func TestDecisionLogEvictsOldest(t *testing.T) {
	log := NewDecisionLog(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = log.Append(ctx, record(fmt.Sprintf("d-%d", i)))
	}

	recent, err := log.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected ring capped at 3, got %d", len(recent))
	}
	if recent[0].DecisionID != "d-4" || recent[2].DecisionID != "d-2" {
		t.Errorf("expected d-4..d-2 retained, got %v", recent)
	}

	count, err := log.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("count tracks all appends, expected 5, got %d", count)
	}
}

func TestDecisionLogConcurrentAppends(t *testing.T) {
	log := NewDecisionLog(100)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = log.Append(ctx, record(fmt.Sprintf("d-%d", i)))
		}(i)
	}
	wg.Wait()

	count, _ := log.Count(ctx)
	if count != 50 {
		t.Fatalf("expected 50 appends recorded, got %d", count)
	}
	recent, _ := log.Recent(ctx, 0)
	if len(recent) != 50 {
		t.Fatalf("expected 50 retained, got %d", len(recent))
	}
}
