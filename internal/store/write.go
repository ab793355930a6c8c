package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/streamcalc/internal/engine"
)

// Evaluation status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Evaluation is one journaled evaluation.
type Evaluation struct {
	Seq        int64              `json:"seq"`
	ID         string             `json:"id"`
	Input      string             `json:"input"`
	Output     string             `json:"output,omitempty"`
	Kind       string             `json:"kind,omitempty"`
	Profile    string             `json:"profile"`
	Status     string             `json:"status"`
	ErrorCode  string             `json:"error_code,omitempty"`
	Error      string             `json:"error,omitempty"`
	Iterations int                `json:"iterations"`
	Variables  map[string]float64 `json:"variables,omitempty"`
	Steps      []engine.Step      `json:"steps,omitempty"`
}

// WriteEvaluation inserts an evaluation and its trace steps in one
// transaction. Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the
// same evaluation id twice keeps the first record.
func (s *Store) WriteEvaluation(ctx context.Context, ev Evaluation) error {
	if ev.Status != StatusOK && ev.Status != StatusError {
		return fmt.Errorf("write evaluation %s: invalid status %q", ev.ID, ev.Status)
	}
	varsJSON, err := marshalVariables(ev.Variables)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write evaluation: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO evaluations
		(id, input, output, kind, profile, status, error_code, error, iterations, variables)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		ev.ID,
		ev.Input,
		ev.Output,
		ev.Kind,
		ev.Profile,
		ev.Status,
		ev.ErrorCode,
		ev.Error,
		ev.Iterations,
		varsJSON,
	)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	if n == 0 {
		return nil
	}

	if err := writeSteps(ctx, tx, ev.ID, ev.Steps); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write evaluation: commit: %w", err)
	}
	return nil
}

func writeSteps(ctx context.Context, tx *sql.Tx, evaluationID string, steps []engine.Step) error {
	if len(steps) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trace_steps
		(evaluation_id, seq, engine_id, rule, before_text, after_text, at, rejected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write steps: prepare: %w", err)
	}
	defer stmt.Close()

	for _, st := range steps {
		rejected, err := marshalRejected(st.Rejected)
		if err != nil {
			return fmt.Errorf("write steps: %w", err)
		}
		var at string
		if !st.At.IsZero() {
			at = st.At.UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx, evaluationID, st.Seq, st.Engine, st.Rule, st.Before, st.After, at, rejected); err != nil {
			return fmt.Errorf("write step %d: %w", st.Seq, err)
		}
	}
	return nil
}
