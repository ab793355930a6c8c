package calc

import (
	"maps"

	"github.com/roach88/streamcalc/internal/config"
	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/rules"
)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithProfile selects the rule profile.
//
// Default: rules.ProfileFull
func WithProfile(p rules.Profile) Option {
	return func(ev *Evaluator) {
		ev.profile = p
	}
}

// WithMaxIterations sets the per-engine iteration cap.
func WithMaxIterations(n int) Option {
	return func(ev *Evaluator) {
		ev.maxIterations = n
	}
}

// WithMaxStall sets the per-engine stall cap.
func WithMaxStall(n int) Option {
	return func(ev *Evaluator) {
		ev.maxStall = n
	}
}

// WithTraceLevel sets the trace level of every engine.
func WithTraceLevel(l engine.TraceLevel) Option {
	return func(ev *Evaluator) {
		ev.level = l
	}
}

// WithVariables sets the top-level substitution environment. The map is
// copied. Helper engines never see these bindings.
func WithVariables(vars map[string]float64) Option {
	return func(ev *Evaluator) {
		ev.variables = maps.Clone(vars)
	}
}

// WithOrder adds ordering constraints on top of rules.Order.
func WithOrder(constraints ...engine.OrderConstraint) Option {
	return func(ev *Evaluator) {
		ev.order = append(ev.order, constraints...)
	}
}

// WithClock supplies a sequencer per evaluation. newClock is called once per
// Evaluate so every evaluation's steps start from its own sequence.
func WithClock(newClock func() engine.Sequencer) Option {
	return func(ev *Evaluator) {
		ev.clock = newClock
	}
}

// WithIDGenerator sets the engine id generator. The top-level engine id is
// also the evaluation id.
func WithIDGenerator(g engine.IDGenerator) Option {
	return func(ev *Evaluator) {
		ev.ids = g
	}
}

// WithPrecedenceCap bounds the bracketing passes of the precedence rule.
func WithPrecedenceCap(n int) Option {
	return func(ev *Evaluator) {
		ev.precedenceCap = n
	}
}

// WithJournal records every evaluation in j.
func WithJournal(j Journal) Option {
	return func(ev *Evaluator) {
		ev.journal = j
	}
}

// FromConfig converts a validated config into evaluator options.
func FromConfig(cfg config.Config) ([]Option, error) {
	profile, err := rules.ParseProfile(cfg.Profile)
	if err != nil {
		return nil, err
	}
	level, err := engine.ParseTraceLevel(cfg.Trace)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithProfile(profile),
		WithTraceLevel(level),
		WithMaxIterations(cfg.MaxIterations),
		WithMaxStall(cfg.MaxStall),
		WithPrecedenceCap(cfg.PrecedenceCap),
	}
	if len(cfg.Variables) > 0 {
		opts = append(opts, WithVariables(cfg.Variables))
	}
	if len(cfg.Order) > 0 {
		opts = append(opts, WithOrder(cfg.Order...))
	}
	return opts, nil
}
