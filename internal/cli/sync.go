package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gear-foundation/versync/internal/versync/config"
	"github.com/gear-foundation/versync/internal/versync/patcher"
	"github.com/gear-foundation/versync/internal/versync/synchronizer"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Sync command flags
	dryRun      bool
	alwaysWrite bool
)

// newSyncCmd creates the sync command
func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [flags]",
		Short: "Write the latest upstream versions into the target files",
		Long: `Resolve the latest release of every upstream referenced by a rule and
write it into the configured target files. Files are only written when their
content changes, unless --always-write is given. If any upstream cannot be
resolved no file is touched.

Examples:
  # Sync using versync.yaml or the built-in defaults
  versync sync

  # Preview the changes
  versync sync --dry-run -j`,
		Args: cobra.NoArgs,
		RunE: runSync,
	}
	addSyncFlags(cmd)
	return cmd
}

func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Compute changes without writing any file")
	cmd.Flags().BoolVarP(&alwaysWrite, "always-write", "", false, "Write target files even when nothing changed")
}

// runSync handles the sync command and the bare root command
func runSync(cmd *cobra.Command, args []string) error {
	s, err := newSynchronizer()
	if err != nil {
		return err
	}

	opts := synchronizer.RunOptions{DryRun: dryRun}
	if alwaysWrite {
		opts.Mode = patcher.WriteAlways
	}

	report, err := s.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if structuredOutput() {
		printStructured(cmd.OutOrStdout(), report)
	} else {
		printSyncReport(cmd.OutOrStdout(), report)
	}
	return nil
}

func newSynchronizer() (*synchronizer.Synchronizer, error) {
	dir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, ErrInvalidFlag.MsgErr(fmt.Sprintf("workdir %q", workDir), err)
	}
	cfg, err := config.LoadConfig(configFile, dir)
	if err != nil {
		return nil, err
	}
	return synchronizer.NewFromConfig(cfg, dir), nil
}

func printUpstreams(w io.Writer, upstreams []synchronizer.UpstreamResult) {
	title := cases.Title(language.English)
	for _, u := range upstreams {
		fmt.Fprintf(w, "%s (%s): %s\n", title.String(u.Name), u.Repo, u.Tag)
	}
}

// printSyncReport prints the sync outcome in a human-readable format
func printSyncReport(w io.Writer, report *synchronizer.Report) {
	printUpstreams(w, report.Upstreams)
	fmt.Fprintln(w)

	for _, f := range report.Files {
		switch {
		case f.Written && f.Changed:
			okLabel.Fprint(w, "updated   ")
		case f.Written:
			okLabel.Fprint(w, "rewritten ")
		case f.Changed:
			warnLabel.Fprint(w, "would update ")
		default:
			fmt.Fprint(w, "unchanged ")
		}
		fmt.Fprintln(w, f.Path)

		for _, field := range f.Fields {
			if field.Changed == 0 {
				continue
			}
			fmt.Fprintf(w, "  %s: %s -> %s\n", field.Rule, strings.Join(unique(field.Previous), ", "), field.Value)
		}
	}

	if report.DryRun {
		fmt.Fprintf(w, "\n%d file(s) would change (dry run)\n", report.ChangedFiles())
		return
	}
	fmt.Fprintf(w, "\n%d file(s) changed\n", report.ChangedFiles())
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
