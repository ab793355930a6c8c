package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/streamcalc/internal/calc"
	"github.com/roach88/streamcalc/internal/config"
	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/rules"
	"github.com/roach88/streamcalc/internal/store"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Config        string
	Profile       string
	Trace         string
	Vars          map[string]string
	Database      string
	MaxIterations int
	MaxStall      int
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression",
		Long: `Evaluate an expression and print its value.

Settings come from --config (YAML or CUE) when given; flags override the
file. With --trace the rule steps are printed after the value. With --db
the evaluation and its trace are recorded in a SQLite journal.

Exit codes:
  0 - Evaluation produced a value
  1 - Evaluation aborted or produced an error value
  2 - Command error (bad flags, unreadable config, etc.)

Examples:
  streamcalc eval "2+3*4"
  streamcalc eval --profile algebra --var x=3 "x^2+1"
  streamcalc eval --trace detailed "2x+3=7"
  streamcalc eval --db ./calc.db --format json "d/dx(3x^2)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "configuration file (.yaml, .yml or .cue)")
	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "rule profile (arithmetic|algebra|equation|factoring|calculus|full)")
	cmd.Flags().StringVarP(&opts.Trace, "trace", "t", "", "trace level (off|minimal|standard|detailed|debug)")
	cmd.Flags().StringToStringVar(&opts.Vars, "var", nil, "variable binding, e.g. --var x=3 (repeatable)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the evaluation in this SQLite journal")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", 0, "iteration cap per engine")
	cmd.Flags().IntVar(&opts.MaxStall, "max-stall", 0, "stall cap per engine")

	return cmd
}

func runEval(ctx context.Context, opts *EvalOptions, input string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return err
	}
	evalOpts, err := calc.FromConfig(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer st.Close()
		evalOpts = append(evalOpts, calc.WithJournal(st))
	}

	ev, err := calc.New(evalOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid rule configuration", err)
	}

	res, err := ev.Evaluate(ctx, input)
	if err != nil {
		code := string(engine.ErrorCode(err))
		if code == "" {
			return WrapExitError(ExitCommandError, "evaluation failed", err)
		}
		if out.IsJSON() {
			if werr := out.Error(code, err.Error(), map[string]string{"input": input}); werr != nil {
				return werr
			}
		}
		return WrapExitError(ExitFailure, abortMessage(err), err)
	}

	if out.IsJSON() {
		if err := out.Success(res); err != nil {
			return err
		}
	} else {
		if err := out.Success(res.Output); err != nil {
			return err
		}
		printSteps(out.Writer, res.Steps)
	}

	if res.IsError() {
		return NewExitError(ExitFailure, "evaluation produced an error value")
	}
	return nil
}

// resolveConfig loads --config (or the defaults) and applies the flags the
// user set explicitly. The merged config is validated against the schema.
func resolveConfig(opts *EvalOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("profile") {
		p, err := rules.ParseProfile(opts.Profile)
		if err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "invalid --profile", err)
		}
		cfg.Profile = string(p)
	}
	if flags.Changed("trace") {
		level, err := engine.ParseTraceLevel(opts.Trace)
		if err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "invalid --trace", err)
		}
		cfg.Trace = level.String()
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations = opts.MaxIterations
	}
	if flags.Changed("max-stall") {
		cfg.MaxStall = opts.MaxStall
	}
	if len(opts.Vars) > 0 {
		vars, err := parseVars(opts.Vars)
		if err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "invalid --var", err)
		}
		merged := maps.Clone(cfg.Variables)
		if merged == nil {
			merged = make(map[string]float64, len(vars))
		}
		maps.Copy(merged, vars)
		cfg.Variables = merged
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// parseVars converts --var name=value pairs to bindings.
// abortMessage names the class of fatal error that stopped an evaluation.
func abortMessage(err error) string {
	switch {
	case engine.IsMathError(err):
		return "evaluation aborted: undefined arithmetic"
	case engine.IsNonConvergent(err):
		return "evaluation aborted: no convergence"
	}
	return "evaluation aborted"
}

func parseVars(raw map[string]string) (map[string]float64, error) {
	vars := make(map[string]float64, len(raw))
	for name, text := range raw {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%s=%s: value is not a number", name, text)
		}
		vars[name] = v
	}
	return vars, nil
}

// printSteps writes one line per trace step.
func printSteps(w io.Writer, steps []engine.Step) {
	if len(steps) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trace:")
	for _, s := range steps {
		fmt.Fprintf(w, "  [%d] %s %s", s.Seq, s.Engine, s.Rule)
		if s.Before != "" || s.After != "" {
			fmt.Fprintf(w, ": %s -> %s", s.Before, s.After)
		}
		if len(s.Rejected) > 0 {
			fmt.Fprintf(w, " (rejected by %d rules)", len(s.Rejected))
		}
		fmt.Fprintln(w)
	}
}
