package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/streamcalc/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled evaluations",
		Long: `List evaluations recorded with eval --db, newest first.

Examples:
  streamcalc history --db ./calc.db
  streamcalc history --db ./calc.db --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of evaluations (0 for all)")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --limit %d: must be non-negative", opts.Limit))
	}

	st, err := openJournal(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	evs, err := st.ListEvaluations(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list evaluations", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if out.IsJSON() {
		return out.Success(evs)
	}
	if len(evs) == 0 {
		fmt.Fprintln(out.Writer, "No evaluations recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROFILE\tSTATUS\tINPUT\tOUTPUT")
	for _, ev := range evs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ev.ID, ev.Profile, ev.Status, ev.Input, outcome(ev))
	}
	return tw.Flush()
}

// openJournal opens an existing journal. A missing file is a command error
// rather than a silently created empty journal.
func openJournal(path string) (*store.Store, error) {
	if err := fileMustExist(path); err != nil {
		return nil, err
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return st, nil
}

// outcome is the output of an ok evaluation or the error code of a failed one.
func outcome(ev store.Evaluation) string {
	if ev.Status == store.StatusError {
		return ev.ErrorCode
	}
	return ev.Output
}
