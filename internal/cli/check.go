package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gear-foundation/versync/internal/versync/synchronizer"
	"github.com/spf13/cobra"
)

var (
	// Check command flags
	failOutdated bool
)

// newCheckCmd creates the check command
func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags]",
		Short: "Compare current field values with the latest releases",
		Long: `Resolve the latest upstream releases and report, for every configured
field, whether the target files are up to date. No file is written.

Examples:
  # Show the state of every field
  versync check

  # Fail in CI when anything is outdated
  versync check --fail-outdated`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
	cmd.Flags().BoolVarP(&failOutdated, "fail-outdated", "", false, "Exit with a non-zero code when a field is outdated")
	return cmd
}

// runCheck handles the check command
func runCheck(cmd *cobra.Command, args []string) error {
	s, err := newSynchronizer()
	if err != nil {
		return err
	}

	report, err := s.Check(cmd.Context())
	if err != nil {
		return err
	}

	if structuredOutput() {
		printStructured(cmd.OutOrStdout(), report)
	} else {
		printCheckReport(cmd.OutOrStdout(), report)
	}

	if n := report.Outdated(); failOutdated && n > 0 {
		return ErrOutdated.Msg(fmt.Sprintf("%d field(s) outdated", n))
	}
	return nil
}

// printCheckReport prints one row per field
func printCheckReport(w io.Writer, report *synchronizer.CheckReport) {
	printUpstreams(w, report.Upstreams)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tFIELD\tCURRENT\tLATEST\tSTATUS")
	for _, e := range report.Entries {
		current := strings.Join(unique(e.Current), ", ")
		if current == "" {
			current = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Path, e.Rule, current, e.Latest, statusLabel(e.Status))
	}
	tw.Flush()
}

func statusLabel(s synchronizer.Status) string {
	switch s {
	case synchronizer.StatusCurrent:
		return okLabel.Sprint(s)
	case synchronizer.StatusOutdated:
		return warnLabel.Sprint(s)
	default:
		return errorLabel.Sprint(s)
	}
}
