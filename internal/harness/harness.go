package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strconv"

	"github.com/roach88/streamcalc/internal/calc"
	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/rules"
	"github.com/roach88/streamcalc/internal/store"
	"github.com/roach88/streamcalc/internal/testutil"
)

// Harness runs the cases of one scenario.
type Harness struct {
	store   *store.Store
	ids     *testutil.SequenceGenerator
	profile rules.Profile
	level   engine.TraceLevel
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory journal. Execution flow:
//  1. Open the journal and deterministic helpers
//  2. Evaluate every case and compare it with its expectation
//  3. Evaluate assertions over the case traces and the journal
//
// A returned error means the scenario could not run; failed expectations are
// reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	profile, err := rules.ParseProfile(scenario.Profile)
	if err != nil {
		return nil, err
	}
	level := engine.TraceMinimal
	if scenario.Trace != "" {
		if level, err = engine.ParseTraceLevel(scenario.Trace); err != nil {
			return nil, err
		}
	}

	h := &Harness{
		store:   st,
		ids:     testutil.NewSequenceGenerator("eval"),
		profile: profile,
		level:   level,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	result := NewResult()
	for i, c := range scenario.Cases {
		cr, err := h.runCase(ctx, scenario.Variables, c)
		if err != nil {
			return nil, fmt.Errorf("case %d (%s): %w", i, c.Name, err)
		}
		for _, msg := range checkCase(c, cr) {
			cr.Pass = false
			result.AddError(fmt.Sprintf("case %q: %s", c.Name, msg))
		}
		result.Cases = append(result.Cases, *cr)
		h.logger.Info("case completed", "case", c.Name, "output", cr.Output, "pass", cr.Pass)
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// runCase evaluates one case. Engine aborts are part of the case outcome;
// only failures to run at all are returned as errors.
func (h *Harness) runCase(ctx context.Context, shared map[string]float64, c Case) (*CaseResult, error) {
	vars := maps.Clone(shared)
	if vars == nil {
		vars = map[string]float64{}
	}
	maps.Copy(vars, c.Variables)

	ev, err := calc.New(
		calc.WithProfile(h.profile),
		calc.WithTraceLevel(h.level),
		calc.WithVariables(vars),
		calc.WithClock(func() engine.Sequencer { return testutil.NewDeterministicClock() }),
		calc.WithIDGenerator(h.ids),
		calc.WithJournal(h.store),
	)
	if err != nil {
		return nil, err
	}

	cr := &CaseResult{Name: c.Name, Input: c.Input, Pass: true}
	res, err := ev.Evaluate(ctx, c.Input)
	switch {
	case err == nil:
		cr.ID = res.ID
		cr.Output = res.Output
		cr.Kind = string(res.Kind)
		cr.Steps = res.Steps
	case engine.IsFatal(err):
		cr.ErrorCode = string(engine.ErrorCode(err))
		cr.Error = err.Error()
	case errors.Is(err, engine.ErrNoResult):
		cr.Error = err.Error()
	default:
		return nil, err
	}
	return cr, nil
}

// checkCase compares a case outcome with its expectation and returns one
// message per mismatch.
func checkCase(c Case, cr *CaseResult) []string {
	var msgs []string
	switch {
	case c.Error != "":
		if cr.ErrorCode != c.Error {
			msgs = append(msgs, fmt.Sprintf("expected error %s, got %s", c.Error, describeOutcome(cr)))
		}
		return msgs
	case cr.Error != "":
		return []string{fmt.Sprintf("unexpected error: %s", cr.Error)}
	case c.Within != nil:
		got, err := strconv.ParseFloat(cr.Output, 64)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("expected a number near %v, got %q", c.Within.Value, cr.Output))
		} else if diff := got - c.Within.Value; diff > c.Within.Delta || -diff > c.Within.Delta {
			msgs = append(msgs, fmt.Sprintf("expected %v ± %v, got %v", c.Within.Value, c.Within.Delta, got))
		}
	default:
		if cr.Output != c.Expect {
			msgs = append(msgs, fmt.Sprintf("expected %q, got %q", c.Expect, cr.Output))
		}
	}
	if c.Kind != "" && cr.Kind != c.Kind {
		msgs = append(msgs, fmt.Sprintf("expected kind %s, got %s", c.Kind, cr.Kind))
	}
	return msgs
}

func describeOutcome(cr *CaseResult) string {
	if cr.ErrorCode != "" {
		return cr.ErrorCode
	}
	if cr.Error != "" {
		return fmt.Sprintf("error %q", cr.Error)
	}
	return fmt.Sprintf("output %q", cr.Output)
}
