package tracedb

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/redux/internal/canon"
	"github.com/roach88/redux/internal/trace"
)

// Run describes one indexed execution.
type Run struct {
	RunID    string
	Scenario string
	// Origin is the Store's initial id: the prev of the first record.
	Origin uint64
	Digest string
}

// ErrIDRange is returned for ids SQLite cannot store as INTEGER: anything
// above math.MaxInt64, which is past the year 2262.
var ErrIDRange = errors.New("id exceeds SQLite INTEGER range")

// WriteRun indexes a run and its records, in log order, in one transaction.
// Writing the same run id twice fails, as does any id above math.MaxInt64.
func (d *DB) WriteRun(ctx context.Context, run Run, records []trace.Record) error {
	if run.Origin > math.MaxInt64 {
		return fmt.Errorf("write run %s: origin %d: %w", run.RunID, run.Origin, ErrIDRange)
	}
	for i, r := range records {
		if r.ID > math.MaxInt64 || r.Prev > math.MaxInt64 {
			return fmt.Errorf("write record %d: id %d prev %d: %w", i, r.ID, r.Prev, ErrIDRange)
		}
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, scenario, origin, digest)
		VALUES (?, ?, ?, ?)
	`, run.RunID, run.Scenario, int64(run.Origin), run.Digest)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO actions (run_id, seq, id, prev, depth, kind, fields)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run %s: %w", run.RunID, err)
	}
	defer stmt.Close()

	for i, r := range records {
		fields := r.Fields
		if fields == nil {
			fields = canon.Object{}
		}
		fieldsJSON, err := canon.Marshal(fields)
		if err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx,
			run.RunID, i, int64(r.ID), int64(r.Prev), r.Depth, r.Kind, string(fieldsJSON),
		); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: %w", run.RunID, err)
	}
	return nil
}
