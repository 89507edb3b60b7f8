package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/CityMesh/internal/domain/a2a"
	"github.com/Strob0t/CityMesh/internal/domain/decision"
)

// Archive implements decisionlog.Log on PostgreSQL. Unlike the in-memory
// ring it never evicts; retention is the operator's concern.
type Archive struct {
	pool *pgxpool.Pool
}

// NewArchive creates an Archive backed by the given connection pool.
func NewArchive(pool *pgxpool.Pool) *Archive {
	return &Archive{pool: pool}
}

// Append stores the decision. The full record is kept as JSONB alongside
// the summary columns used for listing.
func (a *Archive) Append(ctx context.Context, d *decision.FinalDecision) error {
	record, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision %s: %w", d.DecisionID, err)
	}

	_, err = a.pool.Exec(ctx,
		`INSERT INTO decisions (decision_id, query_type, latitude, longitude, confidence, record, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.DecisionID, d.UserQuery, d.Location.Latitude, d.Location.Longitude,
		d.ConfidenceScore, record, d.Timestamp)
	if err != nil {
		return fmt.Errorf("insert decision %s: %w", d.DecisionID, err)
	}
	return nil
}

// Recent returns up to limit summaries, most recent first. A non-positive
// limit defaults to 10.
func (a *Archive) Recent(ctx context.Context, limit int) ([]decision.Summary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := a.pool.Query(ctx,
		`SELECT decision_id, query_type, latitude, longitude, confidence, created_at
		 FROM decisions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var summaries []decision.Summary
	for rows.Next() {
		var s decision.Summary
		var loc a2a.Location
		if err := rows.Scan(&s.DecisionID, &s.QueryType, &loc.Latitude, &loc.Longitude, &s.Confidence, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		s.Location = loc
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Count returns the number of archived decisions.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var count int
	if err := a.pool.QueryRow(ctx, `SELECT COUNT(*) FROM decisions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count decisions: %w", err)
	}
	return count, nil
}
