// Package calc is the entry point for evaluating expressions.
//
// An Evaluator owns a rule catalog and a profile. Each call to Evaluate
// parses the input, builds a fresh top-level engine over the profile's
// rules, drives it to a single normal-form result and, when a journal is
// configured, records the evaluation with its trace.
//
// Example:
//
//	ev, err := calc.New(calc.WithProfile(rules.ProfileAlgebra))
//	if err != nil {
//	    return err
//	}
//	res, err := ev.Evaluate(ctx, "2x+3x")
//	// res.Output == "5x"
package calc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/ir"
	"github.com/roach88/streamcalc/internal/parse"
	"github.com/roach88/streamcalc/internal/rules"
	"github.com/roach88/streamcalc/internal/store"
)

// Journal records finished evaluations. Implemented by *store.Store.
type Journal interface {
	WriteEvaluation(ctx context.Context, ev store.Evaluation) error
}

// Evaluator evaluates expressions under one profile.
//
// An Evaluator is safe for sequential reuse; every Evaluate call builds its
// own engine and rule instances.
type Evaluator struct {
	profile       rules.Profile
	maxIterations int
	maxStall      int
	level         engine.TraceLevel
	variables     map[string]float64
	order         []engine.OrderConstraint
	clock         func() engine.Sequencer
	ids           engine.IDGenerator
	precedenceCap int
	journal       Journal

	catalog *rules.Catalog
}

// Result is the outcome of one evaluation.
type Result struct {
	ID         string        `json:"id"`
	Input      string        `json:"input"`
	Output     string        `json:"output"`
	Kind       Kind          `json:"kind"`
	Profile    rules.Profile `json:"profile"`
	Iterations int           `json:"iterations"`
	Steps      []engine.Step `json:"steps,omitempty"`

	// Node is the result value.
	Node ir.Node `json:"-"`
}

// IsError reports whether the evaluation produced an error value.
func (r *Result) IsError() bool {
	return r.Kind == KindError
}

// New creates an Evaluator. The profile's rule list is checked against the
// built-in ordering constraints and any added with WithOrder.
func New(opts ...Option) (*Evaluator, error) {
	ev := &Evaluator{
		profile:       rules.DefaultProfile,
		maxIterations: engine.DefaultMaxIterations,
		maxStall:      engine.DefaultMaxStall,
		level:         engine.TraceOff,
		precedenceCap: rules.DefaultPrecedenceCap,
	}
	for _, opt := range opts {
		opt(ev)
	}
	ev.catalog = rules.NewCatalog(rules.WithPrecedenceCap(ev.precedenceCap))
	if err := ev.catalog.Validate(ev.profile, ev.order...); err != nil {
		return nil, fmt.Errorf("profile %s: %w", ev.profile, err)
	}
	return ev, nil
}

// Profile returns the evaluator's profile.
func (ev *Evaluator) Profile() rules.Profile {
	return ev.profile
}

// Evaluate parses input and reduces it to a single value.
//
// Unparseable input is not an error: it is evaluated as raw text and comes
// back as an "Unrecognized expression" error value. A returned error means a
// fatal abort (non-convergence, undefined arithmetic or a protocol
// violation); no partial result is returned in that case.
func (ev *Evaluator) Evaluate(ctx context.Context, input string) (*Result, error) {
	node, err := parse.ParseOrRaw(input)
	if err != nil {
		slog.Debug("input did not parse, evaluating as raw text", "input", input, "error", err)
	}

	rs, err := ev.catalog.Build(ev.profile)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(rs, ev.engineOptions()...)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	out, runErr := eng.Evaluate(ctx, node)
	if runErr != nil {
		slog.Warn("evaluation aborted",
			"engine", eng.ID(),
			"input", input,
			"iterations", eng.Iterations(),
			"error", runErr,
		)
		ev.record(ctx, store.Evaluation{
			ID:         eng.ID(),
			Input:      input,
			Profile:    string(ev.profile),
			Status:     store.StatusError,
			ErrorCode:  string(engine.ErrorCode(runErr)),
			Error:      runErr.Error(),
			Iterations: eng.Iterations(),
			Variables:  ev.variables,
			Steps:      eng.History(),
		})
		return nil, fmt.Errorf("evaluate %q: %w", input, runErr)
	}

	res := &Result{
		ID:         eng.ID(),
		Input:      input,
		Output:     out.String(),
		Kind:       KindOf(out),
		Profile:    ev.profile,
		Iterations: eng.Iterations(),
		Steps:      eng.History(),
		Node:       out,
	}
	slog.Debug("evaluation finished",
		"engine", res.ID,
		"output", res.Output,
		"kind", res.Kind,
		"iterations", res.Iterations,
	)
	ev.record(ctx, store.Evaluation{
		ID:         res.ID,
		Input:      input,
		Output:     res.Output,
		Kind:       string(res.Kind),
		Profile:    string(ev.profile),
		Status:     store.StatusOK,
		Iterations: res.Iterations,
		Variables:  ev.variables,
		Steps:      res.Steps,
	})
	return res, nil
}

// record writes ev to the journal. Journal failures are logged and never
// change the evaluation outcome.
func (ev *Evaluator) record(ctx context.Context, rec store.Evaluation) {
	if ev.journal == nil {
		return
	}
	if err := ev.journal.WriteEvaluation(ctx, rec); err != nil {
		slog.Error("failed to journal evaluation", "id", rec.ID, "error", err)
	}
}

func (ev *Evaluator) engineOptions() []engine.Option {
	opts := []engine.Option{
		engine.WithMaxIterations(ev.maxIterations),
		engine.WithMaxStall(ev.maxStall),
		engine.WithTraceLevel(ev.level),
		engine.WithOrder(append(rules.Order(), ev.order...)...),
	}
	if len(ev.variables) > 0 {
		opts = append(opts, engine.WithVariables(ev.variables))
	}
	if ev.clock != nil {
		opts = append(opts, engine.WithClock(ev.clock()))
	}
	if ev.ids != nil {
		opts = append(opts, engine.WithIDGenerator(ev.ids))
	}
	return opts
}
