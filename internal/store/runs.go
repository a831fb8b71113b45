package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobradar/internal/model"
)

// SaveRun appends a finalized run record to the audit trail. Runs are never
// updated after this write.
func (s *Store) SaveRun(ctx context.Context, rec *model.RunRecord) error {
	stats, err := json.Marshal(rec.Stats)
	if err != nil {
		return fmt.Errorf("marshaling run stats: %w", err)
	}
	errs, err := json.Marshal(rec.Errors)
	if err != nil {
		return fmt.Errorf("marshaling run errors: %w", err)
	}

	_, err = s.writeDB.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, stats, errors)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID.String(),
		rec.StartedAt.UTC().Format(time.RFC3339),
		rec.FinishedAt.UTC().Format(time.RFC3339),
		string(stats), string(errs))
	if err != nil {
		return fmt.Errorf("saving run %s: %w", rec.ID, err)
	}
	return nil
}

// RunCount reports how many cycles have been recorded. Operator inspection
// and tests only.
func (s *Store) RunCount(ctx context.Context) (int, error) {
	var n int
	if err := s.readDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}
