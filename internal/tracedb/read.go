package tracedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/trace"
)

// ErrNotFound is returned when a run or action does not exist.
var ErrNotFound = errors.New("not found")

// Runs lists indexed runs ordered by run id.
// Returns an empty slice (not nil) when nothing is indexed.
func (d *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT run_id, scenario, origin, digest
		FROM runs
		ORDER BY run_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var origin int64
		if err := rows.Scan(&r.RunID, &r.Scenario, &origin, &r.Digest); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Origin = uint64(origin)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Records returns a run's records in log order.
func (d *DB) Records(ctx context.Context, runID string) ([]trace.Record, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, prev, depth, kind, fields
		FROM actions
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return scanRecords(rows)
}

// Ancestry walks prev links from the action with id fromID back to the
// start of the run and returns the chain oldest first, ending at fromID.
func (d *DB) Ancestry(ctx context.Context, runID string, fromID uint64) ([]trace.Record, error) {
	rows, err := d.db.QueryContext(ctx, `
		WITH RECURSIVE chain(id, prev, depth, kind, fields, step) AS (
			SELECT id, prev, depth, kind, fields, 0
			FROM actions
			WHERE run_id = ? AND id = ?
			UNION ALL
			SELECT a.id, a.prev, a.depth, a.kind, a.fields, c.step + 1
			FROM actions a
			JOIN chain c ON a.id = c.prev
			WHERE a.run_id = ?
		)
		SELECT id, prev, depth, kind, fields
		FROM chain
		ORDER BY step DESC
	`, runID, int64(fromID), runID)
	if err != nil {
		return nil, fmt.Errorf("query ancestry: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("action %d in run %s: %w", fromID, runID, ErrNotFound)
	}
	return records, nil
}

// Head returns the id of the newest action: the one no other action names
// as prev.
func (d *DB) Head(ctx context.Context, runID string) (uint64, error) {
	var id int64
	err := d.db.QueryRowContext(ctx, `
		SELECT a.id
		FROM actions a
		WHERE a.run_id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM actions b
			WHERE b.run_id = a.run_id AND b.prev = a.id
		  )
		ORDER BY a.id DESC
		LIMIT 1
	`, runID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("head of run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("query head: %w", err)
	}
	return uint64(id), nil
}

// KindCounts returns the number of actions per kind.
func (d *DB) KindCounts(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM actions
		WHERE run_id = ?
		GROUP BY kind
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query kind counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		counts[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kind counts: %w", err)
	}
	return counts, nil
}

// DepthProfile returns how many actions ran at each recursion depth.
func (d *DB) DepthProfile(ctx context.Context, runID string) (map[uint32]int, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT depth, COUNT(*)
		FROM actions
		WHERE run_id = ?
		GROUP BY depth
		ORDER BY depth
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query depth profile: %w", err)
	}
	defer rows.Close()

	profile := make(map[uint32]int)
	for rows.Next() {
		var depth uint32
		var n int
		if err := rows.Scan(&depth, &n); err != nil {
			return nil, fmt.Errorf("scan depth: %w", err)
		}
		profile[depth] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate depth profile: %w", err)
	}
	return profile, nil
}

func scanRecords(rows *sql.Rows) ([]trace.Record, error) {
	defer rows.Close()

	records := []trace.Record{}
	for rows.Next() {
		var r trace.Record
		var id, prev int64
		var fieldsJSON string
		if err := rows.Scan(&id, &prev, &r.Depth, &r.Kind, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.ID, r.Prev = uint64(id), uint64(prev)

		var fields canon.Object
		if err := fields.UnmarshalJSON([]byte(fieldsJSON)); err != nil {
			return nil, fmt.Errorf("record %d fields: %w", r.ID, err)
		}
		r.Fields = fields
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
