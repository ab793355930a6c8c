package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamcalc/internal/ir"
)

func n(v float64) ir.Node { return ir.Num{Value: v} }

func plus(l, r ir.Node) ir.Node { return ir.Binary{Op: ir.OpAdd, Left: l, Right: r} }

func newEngine(t *testing.T, rules []Rule, opts ...Option) *Engine {
	t.Helper()
	e, err := New(rules, opts...)
	require.NoError(t, err)
	return e
}

func TestEngine_ConvergesToNormalForm(t *testing.T) {
	e := newEngine(t, []Rule{addRule{}, resultRule{}, catchAllRule{}})

	got, err := e.Evaluate(context.Background(), plus(n(2), n(3)))

	require.NoError(t, err)
	assert.Equal(t, n(5), got)
	assert.Equal(t, 2, e.Iterations())
}

func TestEngine_FirstDeclaredWins(t *testing.T) {
	e := newEngine(t, []Rule{addRule{id: "first"}, addRule{id: "second"}}, WithTraceLevel(TraceMinimal))

	_, err := e.Evaluate(context.Background(), plus(n(1), n(1)))
	require.NoError(t, err)

	history := e.History()
	require.Len(t, history, 1)
	assert.Equal(t, "first", history[0].Rule)
}

func TestEngine_DecliningRuleMarksRejection(t *testing.T) {
	e := newEngine(t, []Rule{decliningRule{}, addRule{}})

	got, err := e.Evaluate(context.Background(), plus(n(1), n(2)))

	require.NoError(t, err)
	assert.Equal(t, n(3), got)
}

func TestEngine_CatchAllProducesErrorValue(t *testing.T) {
	e := newEngine(t, []Rule{addRule{}, resultRule{}, catchAllRule{}})

	got, err := e.Evaluate(context.Background(), ir.Raw{Text: "2++3"})

	require.NoError(t, err)
	assert.Equal(t, ir.ErrorValue{Message: "Error: Unrecognized expression '2++3'"}, got)
}

func TestEngine_WithoutCatchAllItemIsDropped(t *testing.T) {
	e := newEngine(t, []Rule{addRule{}})

	_, err := e.Evaluate(context.Background(), ir.Raw{Text: "??"})

	require.ErrorIs(t, err, ErrNoResult)
	assert.Equal(t, 0, e.Len())
}

func TestEngine_IterationCapIsFatal(t *testing.T) {
	e := newEngine(t, []Rule{flipRule{}}, WithMaxIterations(20))

	_, err := e.Evaluate(context.Background(), ir.Raw{Text: "a"})

	require.Error(t, err)
	assert.True(t, IsNonConvergent(err))
	var ie *IterationsExceededError
	assert.ErrorAs(t, err, &ie)
	assert.True(t, IsFatal(err))
	assert.Equal(t, ErrCodeNonConvergent, ErrorCode(err))
}

func TestEngine_StallIsFatal(t *testing.T) {
	e := newEngine(t, []Rule{addRule{}}, WithMaxStall(3))
	e.Emit(n(1))
	e.Emit(n(2))

	err := e.Run(context.Background())

	require.Error(t, err)
	assert.True(t, IsNonConvergent(err))
	assert.Equal(t, ErrCodeStalled, ErrorCode(err))
}

func TestEngine_RejectsDuplicateRuleIDs(t *testing.T) {
	_, err := New([]Rule{addRule{}, addRule{}})

	require.Error(t, err)
	assert.Equal(t, ErrCodeDuplicateRule, ErrorCode(err))
}

func TestEngine_RejectsOrderViolation(t *testing.T) {
	_, err := New(
		[]Rule{resultRule{}, addRule{}},
		WithOrder(OrderConstraint{Before: "add", After: "result", Reason: "fold before returning"}),
	)

	require.Error(t, err)
	assert.Equal(t, ErrCodeOrderViolation, ErrorCode(err))
	assert.Contains(t, err.Error(), "fold before returning")
}

func TestEngine_SuspendResume(t *testing.T) {
	e := newEngine(t, []Rule{&splitRule{}, addRule{}, resultRule{}}, WithTraceLevel(TraceStandard))

	// (1+2)+4
	got, err := e.Evaluate(context.Background(), plus(ir.Group{Inner: plus(n(1), n(2))}, n(4)))

	require.NoError(t, err)
	assert.Equal(t, n(7), got)

	var rules []string
	for _, s := range e.History() {
		rules = append(rules, s.Rule)
	}
	assert.Equal(t, []string{"ungroup", "add", "split#resume", "result", "split", "add"}, rules)
}

func TestEngine_ResumeUnknownRule(t *testing.T) {
	e := newEngine(t, []Rule{addRule{}})

	err := e.Resume(context.Background(), "missing", NewItem(n(1), 1))
	assert.Equal(t, ErrCodeUnknownRule, ErrorCode(err))

	err = e.Resume(context.Background(), "add", NewItem(n(1), 1))
	assert.Equal(t, ErrCodeUnknownRule, ErrorCode(err))
}

func TestEngine_ReturnToParentWithoutParent(t *testing.T) {
	e := newEngine(t, []Rule{resultRule{}})

	err := e.ReturnToParent(context.Background(), NewItem(n(1), 1))

	assert.Equal(t, ErrCodeUnknownRule, ErrorCode(err))
}

func TestEngine_SpawnDoesNotInheritVariables(t *testing.T) {
	e := newEngine(t, nil, WithVariables(map[string]float64{"x": 2}), WithMaxIterations(7))

	helper, err := e.Spawn(nil)
	require.NoError(t, err)
	_, ok := helper.Variable("x")
	assert.False(t, ok)
	assert.Equal(t, 7, helper.maxIterations)

	bound, err := e.Spawn(nil, WithVariables(e.Variables()))
	require.NoError(t, err)
	v, ok := bound.Variable("x")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestEngine_WithVariablesCopiesMap(t *testing.T) {
	vars := map[string]float64{"x": 1}
	e := newEngine(t, nil, WithVariables(vars))

	vars["x"] = 99

	v, _ := e.Variable("x")
	assert.Equal(t, 1.0, v)
}

func TestEngine_TraceLevels(t *testing.T) {
	run := func(level TraceLevel) []Step {
		e := newEngine(t, []Rule{addRule{}, resultRule{}, catchAllRule{}}, WithTraceLevel(level))
		_, err := e.Evaluate(context.Background(), plus(n(2), n(3)))
		require.NoError(t, err)
		return e.History()
	}

	assert.Empty(t, run(TraceOff))

	minimal := run(TraceMinimal)
	require.Len(t, minimal, 1)
	assert.Equal(t, "add", minimal[0].Rule)
	assert.Empty(t, minimal[0].Before)

	detailed := run(TraceDetailed)
	require.Len(t, detailed, 1)
	assert.Equal(t, "2+3", detailed[0].Before)
	assert.Equal(t, "5", detailed[0].After)
	assert.True(t, detailed[0].At.IsZero())

	debug := run(TraceDebug)
	require.Len(t, debug, 1)
	assert.False(t, debug[0].At.IsZero())
}

func TestEngine_DebugRecordsRejectingRules(t *testing.T) {
	e := newEngine(t, []Rule{addRule{}, resultRule{}, catchAllRule{}}, WithTraceLevel(TraceDebug))

	_, err := e.Evaluate(context.Background(), ir.Raw{Text: "?"})
	require.NoError(t, err)

	history := e.History()
	require.Len(t, history, 1)
	assert.Equal(t, "unrecognized", history[0].Rule)
	assert.Equal(t, []string{"add", "result", "unrecognized"}, history[0].Rejected)
}

func TestEngine_ItemTrail(t *testing.T) {
	e := newEngine(t, []Rule{ungroupRule{}, addRule{}}, WithTraceLevel(TraceMinimal))
	e.Emit(ir.Group{Inner: plus(n(1), n(1))})

	require.NoError(t, e.Run(context.Background()))

	it, ok := e.queue.Peek()
	require.True(t, ok)
	assert.Equal(t, []string{"ungroup", "add"}, it.TransformedBy)
	assert.Len(t, it.History, 2)
}

func TestEngine_ContextCancelled(t *testing.T) {
	e := newEngine(t, []Rule{flipRule{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Evaluate(ctx, ir.Raw{Text: "a"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_IDsFromGenerator(t *testing.T) {
	e := newEngine(t, nil, WithIDGenerator(NewFixedGenerator("root", "helper")))
	helper, err := e.Spawn(nil)
	require.NoError(t, err)

	assert.Equal(t, "root", e.ID())
	assert.Equal(t, "helper", helper.ID())
}
