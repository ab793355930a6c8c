package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/streamcalc/internal/engine"
)

// ErrNotFound is returned when an evaluation id is not in the journal.
var ErrNotFound = errors.New("evaluation not found")

const evaluationColumns = `seq, id, input, output, kind, profile, status, error_code, error, iterations, variables`

// ListEvaluations returns the most recent evaluations, newest first.
// A limit <= 0 returns every evaluation. Steps are not loaded.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ListEvaluations(ctx context.Context, limit int) ([]Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evaluations := []Evaluation{}
	for rows.Next() {
		ev, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		evaluations = append(evaluations, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evaluations, nil
}

// ReadEvaluation returns one evaluation with its trace steps.
// Returns an error wrapping ErrNotFound if id is unknown.
func (s *Store) ReadEvaluation(ctx context.Context, id string) (Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE id = ?`, id)
	ev, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Evaluation{}, fmt.Errorf("read evaluation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Evaluation{}, fmt.Errorf("read evaluation %s: %w", id, err)
	}

	steps, err := s.ReadSteps(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	ev.Steps = steps
	return ev, nil
}

// ReadSteps returns the trace steps of an evaluation in clock order.
func (s *Store) ReadSteps(ctx context.Context, evaluationID string) ([]engine.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, engine_id, rule, before_text, after_text, at, rejected
		FROM trace_steps
		WHERE evaluation_id = ?
		ORDER BY seq ASC
	`, evaluationID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []engine.Step
	for rows.Next() {
		var (
			st       engine.Step
			at       string
			rejected string
		)
		if err := rows.Scan(&st.Seq, &st.Engine, &st.Rule, &st.Before, &st.After, &at, &rejected); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if at != "" {
			t, err := time.Parse(time.RFC3339Nano, at)
			if err != nil {
				return nil, fmt.Errorf("scan step %d: parse at: %w", st.Seq, err)
			}
			st.At = t
		}
		if st.Rejected, err = unmarshalRejected(rejected); err != nil {
			return nil, fmt.Errorf("scan step %d: %w", st.Seq, err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scanner) (Evaluation, error) {
	var (
		ev   Evaluation
		vars string
	)
	err := row.Scan(&ev.Seq, &ev.ID, &ev.Input, &ev.Output, &ev.Kind, &ev.Profile,
		&ev.Status, &ev.ErrorCode, &ev.Error, &ev.Iterations, &vars)
	if err != nil {
		return Evaluation{}, err
	}
	if ev.Variables, err = unmarshalVariables(vars); err != nil {
		return Evaluation{}, err
	}
	if len(ev.Variables) == 0 {
		ev.Variables = nil
	}
	return ev, nil
}
