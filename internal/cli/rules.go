package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/streamcalc/internal/config"
	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/rules"
)

// RulesOptions holds flags for the rules command.
type RulesOptions struct {
	*RootOptions
	Profile string
	Config  string
}

// RulesResult is the rules command payload.
type RulesResult struct {
	Profile rules.Profile            `json:"profile"`
	Rules   []rules.Entry            `json:"rules"`
	Order   []engine.OrderConstraint `json:"order"`
	Valid   bool                     `json:"valid"`
	Problem string                   `json:"problem,omitempty"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rules of a profile",
		Long: `List the rules of a profile in evaluation order and check the
ordering constraints.

Constraints declared in the order section of --config are checked
together with the built-in ones.

Exit codes:
  0 - Rule order satisfies every constraint
  1 - A constraint is violated or the constraints are cyclic
  2 - Command error (unknown profile, unreadable config)

Examples:
  streamcalc rules
  streamcalc rules --profile calculus
  streamcalc rules --config calc.cue --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "rule profile (default full)")
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "configuration file with extra ordering constraints")

	return cmd
}

func runRules(opts *RulesOptions, cmd *cobra.Command) error {
	profile, err := rules.ParseProfile(opts.Profile)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --profile", err)
	}

	var extra []engine.OrderConstraint
	if opts.Config != "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		extra = cfg.Order
	}

	catalog := rules.NewCatalog()
	entries, err := catalog.Entries(profile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list rules", err)
	}

	result := RulesResult{
		Profile: profile,
		Rules:   entries,
		Order:   append(rules.Order(), extra...),
		Valid:   true,
	}
	verr := catalog.Validate(profile, extra...)
	if verr != nil {
		result.Valid = false
		result.Problem = verr.Error()
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if out.IsJSON() {
		if err := out.Success(result); err != nil {
			return err
		}
	} else if err := printRules(cmd, result); err != nil {
		return err
	}

	if verr != nil {
		return WrapExitError(ExitFailure, "rule order check failed", verr)
	}
	return nil
}

func printRules(cmd *cobra.Command, result RulesResult) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Profile: %s (%d rules)\n\n", result.Profile, len(result.Rules))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tID\tFAMILY\tSUMMARY")
	for _, e := range result.Rules {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Priority, e.ID, e.Family, e.Summary)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if result.Valid {
		fmt.Fprintf(w, "✓ %d ordering constraints satisfied\n", len(result.Order))
	} else {
		fmt.Fprintf(w, "✗ %s\n", result.Problem)
	}
	return nil
}
