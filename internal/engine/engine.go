package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/roach88/streamcalc/internal/ir"
)

// DefaultMaxIterations is the default cap on rewrite-loop iterations per engine.
const DefaultMaxIterations = 1000

// DefaultMaxStall is the default number of consecutive unchanged iterations
// tolerated before the run is declared stalled.
const DefaultMaxStall = 10

// ErrNoResult is returned by Evaluate when an engine finishes without a
// single result item.
var ErrNoResult = errors.New("engine finished without a single result")

// Engine is the rewrite-loop driver: ordered rules, an item queue and a
// variable-binding environment.
//
// INVARIANTS:
//   - rules order NEVER changes after construction (first declared, first matched)
//   - rule ids within an engine are unique
//   - rules satisfy every OrderConstraint the engine was built with
//   - an engine is used for exactly one convergence loop
type Engine struct {
	id        string
	rules     []Rule
	index     map[string]int
	catchAll  CatchAll
	queue     *itemQueue
	variables map[string]float64
	parent    *parentLink

	maxIterations int
	maxStall      int
	level         TraceLevel
	clock         Sequencer
	ids           IDGenerator
	order         []OrderConstraint
	log           *traceLog

	iterations int
}

// parentLink records which suspended rule a child engine resumes.
type parentLink struct {
	engine *Engine
	ruleID string
}

// traceLog collects steps from an engine and every engine spawned from it.
type traceLog struct {
	mu    sync.Mutex
	steps []Step
}

func (l *traceLog) add(s Step) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, s)
}

func (l *traceLog) snapshot() []Step {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Step, len(l.steps))
	copy(out, l.steps)
	return out
}

// Option configures an engine.
type Option func(*Engine)

// WithMaxIterations sets the iteration cap.
//
// Default: 1000 (DefaultMaxIterations)
// Use a small value in tests so a non-convergent rule set fails fast.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		e.maxIterations = n
	}
}

// WithMaxStall sets how many consecutive unchanged iterations are tolerated.
//
// Default: 10 (DefaultMaxStall)
func WithMaxStall(n int) Option {
	return func(e *Engine) {
		e.maxStall = n
	}
}

// WithTraceLevel sets the trace level.
func WithTraceLevel(l TraceLevel) Option {
	return func(e *Engine) {
		e.level = l
	}
}

// WithVariables sets the substitution environment. The map is copied.
func WithVariables(vars map[string]float64) Option {
	return func(e *Engine) {
		e.variables = maps.Clone(vars)
	}
}

// WithClock sets the sequencer that stamps trace steps.
func WithClock(c Sequencer) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator sets the engine id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithOrder adds ordering constraints that the rule list must satisfy.
func WithOrder(constraints ...OrderConstraint) Option {
	return func(e *Engine) {
		e.order = append(e.order, constraints...)
	}
}

// New creates an engine over rules in declaration order.
//
// The rules slice is copied to prevent external mutation from breaking the
// declaration order invariant. Returns a RuntimeError if two rules share an
// id or the order violates a constraint given with WithOrder.
func New(rules []Rule, opts ...Option) (*Engine, error) {
	e := &Engine{
		maxIterations: DefaultMaxIterations,
		maxStall:      DefaultMaxStall,
		level:         TraceOff,
		clock:         NewClock(),
		ids:           UUIDv7Generator{},
		log:           &traceLog{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.register(rules); err != nil {
		return nil, err
	}
	e.id = e.ids.Generate()
	e.queue = newItemQueue()
	return e, nil
}

func (e *Engine) register(rules []Rule) error {
	if err := ValidateOrder(e.order); err != nil {
		return err
	}

	e.rules = make([]Rule, len(rules))
	copy(e.rules, rules)
	e.index = make(map[string]int, len(rules))
	ids := make([]string, len(rules))
	for i, r := range e.rules {
		id := r.ID()
		if _, dup := e.index[id]; dup {
			return &RuntimeError{
				Code:    ErrCodeDuplicateRule,
				Message: fmt.Sprintf("rule id %q registered twice", id),
				RuleID:  id,
			}
		}
		e.index[id] = i
		ids[i] = id
		if ca, ok := r.(CatchAll); ok && ca.CatchAll() {
			e.catchAll = ca
		}
	}
	return CheckOrder(ids, e.order)
}

// Spawn creates an independent helper engine that inherits this engine's
// caps, trace level, clock, id generator, ordering constraints and trace log.
//
// Variables are NOT inherited: pass WithVariables explicitly when the helper
// needs bindings.
func (e *Engine) Spawn(rules []Rule, opts ...Option) (*Engine, error) {
	inherited := []Option{
		WithMaxIterations(e.maxIterations),
		WithMaxStall(e.maxStall),
		WithTraceLevel(e.level),
		WithClock(e.clock),
		WithIDGenerator(e.ids),
		WithOrder(e.order...),
		withTraceLog(e.log),
	}
	child, err := New(rules, append(inherited, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("spawn helper engine: %w", err)
	}
	return child, nil
}

// SpawnChild creates a helper engine linked to (this engine, parentRuleID).
// When the child converges, its terminal rule returns the result through
// ReturnToParent, which resumes parentRuleID here.
func (e *Engine) SpawnChild(parentRuleID string, rules []Rule, opts ...Option) (*Engine, error) {
	child, err := e.Spawn(rules, opts...)
	if err != nil {
		return nil, err
	}
	child.parent = &parentLink{engine: e, ruleID: parentRuleID}
	return child, nil
}

func withTraceLog(l *traceLog) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// ID returns the engine id.
func (e *Engine) ID() string {
	return e.id
}

// TraceLevel returns the engine's trace level.
func (e *Engine) TraceLevel() TraceLevel {
	return e.level
}

// HasParent reports whether the engine was created with SpawnChild.
func (e *Engine) HasParent() bool {
	return e.parent != nil
}

// Variable returns the binding for name.
func (e *Engine) Variable(name string) (float64, bool) {
	v, ok := e.variables[name]
	return v, ok
}

// Variables returns a copy of the substitution environment.
func (e *Engine) Variables() map[string]float64 {
	return maps.Clone(e.variables)
}

// Iterations returns the iteration count of the last Run.
func (e *Engine) Iterations() int {
	return e.iterations
}

// History returns the steps recorded by this engine and every engine
// spawned from it, in clock order.
func (e *Engine) History() []Step {
	return e.log.snapshot()
}

// Len returns the number of queued items.
func (e *Engine) Len() int {
	return e.queue.Len()
}

// Emit pushes a new item holding n onto the back of the queue.
func (e *Engine) Emit(n ir.Node) *Item {
	it := NewItem(n, len(e.rules))
	e.queue.Enqueue(it)
	return it
}

// Result returns the payload of the single remaining item.
func (e *Engine) Result() (ir.Node, bool) {
	if e.queue.Len() != 1 {
		return nil, false
	}
	it, _ := e.queue.Peek()
	return it.Node, true
}

// Evaluate seeds the engine with n, runs it and returns the single result.
// This is the synchronous helper-evaluation primitive.
func (e *Engine) Evaluate(ctx context.Context, n ir.Node) (ir.Node, error) {
	e.Emit(n)
	if err := e.Run(ctx); err != nil {
		return nil, err
	}
	result, ok := e.Result()
	if !ok {
		return nil, fmt.Errorf("engine %s: %w (%d items left)", e.id, ErrNoResult, e.queue.Len())
	}
	return result, nil
}

// bindings returns the normal-form substitution predicate, or nil when no
// environment is set.
func (e *Engine) bindings() ir.Bindings {
	if len(e.variables) == 0 {
		return nil
	}
	return func(name string) bool {
		_, ok := e.variables[name]
		return ok
	}
}

// Run drives the rewrite loop until the queue holds a single normal-form
// item (top-level engines), the queue empties, or a fatal error occurs.
//
// Nested engines (created with SpawnChild) do not stop at normal form: the
// item falls through so the terminal rule can return it to the parent.
func (e *Engine) Run(ctx context.Context) error {
	budget := NewIterationBudget(e.maxIterations)
	stall := NewStallDetector(e.maxStall)
	defer func() { e.iterations = budget.Current() }()

	for e.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := budget.Check(e.id); err != nil {
			slog.Error("engine did not converge", "engine", e.id, "iterations", budget.Current()-1, "queue", e.queue.Len())
			return err
		}

		if e.queue.Len() == 1 && e.parent == nil {
			head, _ := e.queue.Peek()
			if ir.IsNormalForm(head.Node, e.bindings()) {
				break
			}
		}

		if err := stall.Observe(e.id, e.queue.Fingerprint()); err != nil {
			slog.Error("engine stalled", "engine", e.id, "stalls", stall.Stalls())
			return err
		}

		item, _ := e.queue.TryDequeue()
		consumed, err := e.step(ctx, item)
		if err != nil {
			return err
		}
		if consumed {
			continue
		}
		if !item.IsRejectedByAll() || ir.IsTerminal(item.Node) {
			e.queue.Enqueue(item)
			continue
		}
		if err := e.fallback(ctx, item); err != nil {
			return err
		}
	}

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.Debug("engine finished", "engine", e.id, "iterations", budget.Current(), "queue", e.queue.Len())
	}
	return nil
}

// step offers item to every rule in declaration order (first match wins).
func (e *Engine) step(ctx context.Context, item *Item) (bool, error) {
	var before string
	if e.level >= TraceDetailed {
		before = item.Node.String()
	}
	mark := e.queue.Len()

	for _, r := range e.rules {
		if !r.Matches(item) {
			item.Reject(r.ID())
			continue
		}
		out, err := r.Apply(ctx, item, e)
		if err != nil {
			return false, fmt.Errorf("rule %s: %w", r.ID(), err)
		}
		if out == Consumed {
			if e.level >= TraceMinimal {
				e.record(ctx, r.ID(), item, before, mark, nil)
			}
			return true, nil
		}
		item.Reject(r.ID())
	}
	return false, nil
}

// fallback hands a non-terminal, fully rejected item to the catch-all rule.
// Without a catch-all the item is dropped.
func (e *Engine) fallback(ctx context.Context, item *Item) error {
	if e.catchAll == nil || !e.catchAll.Matches(item) {
		if slog.Default().Enabled(ctx, slog.LevelDebug) {
			slog.Debug("item dropped", "engine", e.id, "item", item.String(), "rejections", item.RejectionCount())
		}
		return nil
	}

	var before string
	if e.level >= TraceDetailed {
		before = item.Node.String()
	}
	mark := e.queue.Len()
	if _, err := e.catchAll.Apply(ctx, item, e); err != nil {
		return fmt.Errorf("rule %s: %w", e.catchAll.ID(), err)
	}
	if e.level >= TraceMinimal {
		var rejected []string
		if e.level >= TraceDebug {
			rejected = item.Rejections()
		}
		e.record(ctx, e.catchAll.ID(), item, before, mark, rejected)
	}
	return nil
}

// record appends a step for a consumed item and passes the item's trail on
// to everything emitted since mark.
func (e *Engine) record(ctx context.Context, ruleID string, item *Item, before string, mark int, rejected []string) {
	outputs := e.queue.Since(mark)
	step := Step{
		Seq:      e.clock.Next(),
		Engine:   e.id,
		Rule:     ruleID,
		Rejected: rejected,
	}
	if e.level >= TraceDetailed {
		step.Before = before
		after := make([]string, len(outputs))
		for i, o := range outputs {
			after[i] = o.Node.String()
		}
		step.After = strings.Join(after, "; ")
	}
	if e.level >= TraceDebug {
		step.At = time.Now().UTC()
	}
	e.log.add(step)
	for _, o := range outputs {
		o.inherit(item, step)
	}
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.Debug("rule consumed item", "engine", e.id, "rule", ruleID, "seq", step.Seq)
	}
}

// ReturnToParent hands result to the suspended rule of the parent engine.
func (e *Engine) ReturnToParent(ctx context.Context, result *Item) error {
	if e.parent == nil {
		return NewUnknownRuleError(e.id, "", "engine has no parent to return to")
	}
	return e.parent.engine.Resume(ctx, e.parent.ruleID, result)
}

// Resume looks up the live rule instance by id and calls its Resume hook,
// which pushes the reconstructed item into this engine's queue.
func (e *Engine) Resume(ctx context.Context, ruleID string, result *Item) error {
	i, ok := e.index[ruleID]
	if !ok {
		return NewUnknownRuleError(e.id, ruleID, "resume addressed to unregistered rule")
	}
	r, ok := e.rules[i].(Resumer)
	if !ok {
		return NewUnknownRuleError(e.id, ruleID, "rule cannot resume")
	}
	if e.level >= TraceStandard {
		step := Step{Seq: e.clock.Next(), Engine: e.id, Rule: ruleID + "#resume"}
		if e.level >= TraceDetailed {
			step.After = result.Node.String()
		}
		if e.level >= TraceDebug {
			step.At = time.Now().UTC()
		}
		e.log.add(step)
	}
	return r.Resume(ctx, e, result)
}
