package calc

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamcalc/internal/config"
	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/rules"
	"github.com/roach88/streamcalc/internal/store"
	"github.com/roach88/streamcalc/internal/testutil"
)

func newEvaluator(t *testing.T, opts ...Option) *Evaluator {
	t.Helper()
	ev, err := New(opts...)
	require.NoError(t, err)
	return ev
}

func deterministic() []Option {
	return []Option{
		WithClock(func() engine.Sequencer { return testutil.NewDeterministicClock() }),
		WithIDGenerator(testutil.NewSequenceGenerator("eval")),
	}
}

func TestEvaluate_EndToEnd(t *testing.T) {
	ev := newEvaluator(t)

	tests := []struct {
		input string
		want  string
		kind  Kind
	}{
		{"2+3*4", "14", KindNumber},
		{"(x+1)(x+2)", "x^2+3x+2", KindExpression},
		{"2x+3=7", "x=2", KindSolution},
		{"x^2-5x+6=0", "x=2,3", KindSolution},
		{"x^2+1=0", "no real solutions", KindNoSolution},
		{"d/dx(3x^2)", "6x", KindExpression},
		{"∫2x dx", "x^2 + C", KindAntiderivative},
		{"factor(x^2-x-6)", "(x-3)(x+2)", KindFactored},
		{"critical(x^2-4x+3)", "x=2, value=-1", KindCritical},
		{"critical(2x+1)", "no critical points", KindNoCritical},
		{"3 $ 4", "Error: Unrecognized expression '3 $ 4'", KindError},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res, err := ev.Evaluate(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.want, res.Output)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.input, res.Input)
			assert.Equal(t, rules.ProfileFull, res.Profile)
			assert.Positive(t, res.Iterations)
		})
	}
}

func TestEvaluate_LongChain(t *testing.T) {
	ev := newEvaluator(t)

	for _, n := range []int{11, 12, 30} {
		input := strings.Repeat("1+", n) + "1"
		res, err := ev.Evaluate(context.Background(), input)
		require.NoError(t, err, input)
		assert.Equal(t, strconv.Itoa(n+1), res.Output, input)
		assert.Equal(t, KindNumber, res.Kind)
	}
}

func TestEvaluate_DefiniteIntegral(t *testing.T) {
	res, err := newEvaluator(t).Evaluate(context.Background(), "∫[0,2] x^2 dx")
	require.NoError(t, err)

	got, err := strconv.ParseFloat(res.Output, 64)
	require.NoError(t, err)
	assert.InDelta(t, 2.667, got, 0.001)
}

func TestEvaluate_Variables(t *testing.T) {
	ev := newEvaluator(t, WithVariables(map[string]float64{"x": 3}))

	res, err := ev.Evaluate(context.Background(), "x+1")

	require.NoError(t, err)
	assert.Equal(t, "4", res.Output)
}

func TestEvaluate_ProfileLimitsRules(t *testing.T) {
	ev := newEvaluator(t, WithProfile(rules.ProfileArithmetic))

	res, err := ev.Evaluate(context.Background(), "x+1")

	require.NoError(t, err)
	assert.True(t, res.IsError())
}

func TestEvaluate_FatalErrorReturnsNoResult(t *testing.T) {
	res, err := newEvaluator(t).Evaluate(context.Background(), "1/0")

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, engine.IsMathError(err))
	assert.Equal(t, engine.ErrCodeDivisionByZero, engine.ErrorCode(err))
}

func TestEvaluate_IterationCap(t *testing.T) {
	_, err := newEvaluator(t, WithMaxIterations(1)).Evaluate(context.Background(), "2+3*4")

	require.Error(t, err)
	assert.True(t, engine.IsNonConvergent(err))
}

func TestEvaluate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEvaluator(t).Evaluate(ctx, "2+3")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluate_TraceOffRecordsNothing(t *testing.T) {
	res, err := newEvaluator(t).Evaluate(context.Background(), "2+3*4")

	require.NoError(t, err)
	assert.Empty(t, res.Steps)
}

func TestEvaluate_TraceIsDeterministic(t *testing.T) {
	opts := append(deterministic(), WithTraceLevel(engine.TraceMinimal))
	first, err := newEvaluator(t, opts...).Evaluate(context.Background(), "2+3*4")
	require.NoError(t, err)

	opts = append(deterministic(), WithTraceLevel(engine.TraceMinimal))
	second, err := newEvaluator(t, opts...).Evaluate(context.Background(), "2+3*4")
	require.NoError(t, err)

	assert.Equal(t, "eval-1", first.ID)
	assert.Equal(t, first.Steps, second.Steps)

	var ruleIDs []string
	for i, s := range first.Steps {
		assert.Equal(t, int64(i+1), s.Seq)
		ruleIDs = append(ruleIDs, s.Rule)
	}
	assert.Equal(t, []string{
		rules.IDPrecedence, rules.IDParen, rules.IDMultiply, rules.IDResult, rules.IDPartial, rules.IDAdd,
	}, ruleIDs)
}

func TestNew_RejectsViolatedOrder(t *testing.T) {
	_, err := New(WithOrder(engine.OrderConstraint{Before: rules.IDLinear, After: rules.IDQuadratic}))

	require.Error(t, err)
	assert.Equal(t, engine.ErrCodeOrderViolation, engine.ErrorCode(err))
}

func TestNew_UnknownProfile(t *testing.T) {
	_, err := New(WithProfile("geometry"))

	assert.ErrorContains(t, err, "unknown profile")
}

func TestEvaluate_Journal(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer st.Close()

	opts := append(deterministic(), WithJournal(st), WithTraceLevel(engine.TraceMinimal))
	ev := newEvaluator(t, opts...)
	ctx := context.Background()

	res, err := ev.Evaluate(ctx, "2+3*4")
	require.NoError(t, err)
	_, err = ev.Evaluate(ctx, "1/0")
	require.Error(t, err)

	got, err := st.ReadEvaluation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "14", got.Output)
	assert.Equal(t, string(KindNumber), got.Kind)
	assert.Equal(t, store.StatusOK, got.Status)
	assert.Equal(t, res.Steps, got.Steps)

	all, err := st.ListEvaluations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, store.StatusError, all[0].Status)
	assert.Equal(t, string(engine.ErrCodeDivisionByZero), all[0].ErrorCode)
}

type failingJournal struct{}

func (failingJournal) WriteEvaluation(context.Context, store.Evaluation) error {
	return errors.New("disk full")
}

func TestEvaluate_JournalFailureDoesNotFailEvaluation(t *testing.T) {
	res, err := newEvaluator(t, WithJournal(failingJournal{})).Evaluate(context.Background(), "2+3")

	require.NoError(t, err)
	assert.Equal(t, "5", res.Output)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Profile = "algebra"
	cfg.Trace = "minimal"
	cfg.Variables = map[string]float64{"x": 2}

	opts, err := FromConfig(cfg)
	require.NoError(t, err)
	ev := newEvaluator(t, opts...)

	assert.Equal(t, rules.ProfileAlgebra, ev.Profile())
	res, err := ev.Evaluate(context.Background(), "x^2")
	require.NoError(t, err)
	assert.Equal(t, "4", res.Output)
	assert.NotEmpty(t, res.Steps)
}

func TestFromConfig_InvalidTrace(t *testing.T) {
	cfg := config.Default()
	cfg.Trace = "loud"

	_, err := FromConfig(cfg)

	assert.ErrorContains(t, err, "invalid trace level")
}
