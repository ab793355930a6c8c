package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/streamcalc/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Engine   string // optional - filter to one engine
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <evaluation-id>",
		Short: "Show the trace of a journaled evaluation",
		Long: `Show a journaled evaluation and its rule steps in clock order.

Steps of helper engines are included; use --engine to show only the
steps of one engine. An evaluation recorded with trace level off has no
steps.

Examples:
  streamcalc trace --db ./calc.db 0190b5a2-...
  streamcalc trace --db ./calc.db --engine 0190b5a2-... 0190b5a2-...
  streamcalc trace --db ./calc.db --format json 0190b5a2-...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Engine, "engine", "", "only show steps of this engine")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, id string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openJournal(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ev, err := st.ReadEvaluation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("evaluation not found: %s", id))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read evaluation", err)
	}

	if opts.Engine != "" {
		steps := ev.Steps[:0:0]
		for _, s := range ev.Steps {
			if s.Engine == opts.Engine {
				steps = append(steps, s)
			}
		}
		ev.Steps = steps
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if out.IsJSON() {
		return out.Success(ev)
	}

	w := out.Writer
	fmt.Fprintf(w, "Evaluation: %s\n", ev.ID)
	fmt.Fprintf(w, "Input:      %s\n", ev.Input)
	fmt.Fprintf(w, "Profile:    %s\n", ev.Profile)
	if ev.Status == store.StatusError {
		fmt.Fprintf(w, "Error:      %s (%s)\n", ev.ErrorCode, ev.Error)
	} else {
		fmt.Fprintf(w, "Output:     %s\n", ev.Output)
	}
	fmt.Fprintf(w, "Iterations: %d\n", ev.Iterations)
	if len(ev.Steps) == 0 {
		fmt.Fprintln(w, "\nNo trace steps recorded.")
		return nil
	}
	printSteps(w, ev.Steps)
	return nil
}

func fileMustExist(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return NewExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", path))
		}
		return WrapExitError(ExitCommandError, "failed to stat journal", err)
	}
	return nil
}
