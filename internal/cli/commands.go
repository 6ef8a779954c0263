package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/gear-foundation/versync/internal/common/apperrors"
	"github.com/gear-foundation/versync/internal/common/logtrace"
	"github.com/gear-foundation/versync/internal/version"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var (
	// Global flags
	jsonOutput   bool
	outputFormat string
	configFile   string
	logLevel     string
	logFormat    string
	workDir      string
)

var okLabel = color.New(color.FgGreen)
var warnLabel = color.New(color.FgYellow)
var errorLabel = color.New(color.FgRed)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "versync [command] [flags]",
	Short: "versync - keep Gear and Sails dependency versions up to date",
	Long: `versync looks up the newest release tags of the Gear and Sails repositories
on GitHub and writes them into the workspace manifest and CI workflows.
Run without a command it performs a sync using versync.yaml from the working
directory, or the built-in defaults when there is none.

Examples:
  # Update Cargo.toml and .github/workflows/*.yml
  versync

  # Show what would change without writing
  versync sync --dry-run

  # Compare current versions with the latest releases
  versync check --fail-outdated`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: preRunHandlePersistents,
	RunE:              runSync,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVarP(&logFormat, "log-format", "", "console", "Log format: console or json")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", ".", "Base directory for relative target paths")

	addSyncFlags(rootCmd)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newCheckCmd())
}

// Execute runs the root command and exits with the code of the failure, if any.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string) int {
	rootCmd.SilenceErrors = true // Prevent Cobra from printing the error
	rootCmd.SilenceUsage = true  // Prevent Cobra from printing usage on error
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	code := apperrors.ExitCode(err)
	if structuredOutput() {
		printStructured(rootCmd.OutOrStdout(), map[string]any{
			"error":     apperrors.Describe(err),
			"exit_code": code,
		})
	} else {
		errorLabel.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", apperrors.Describe(err))
	}
	return code
}

// preRunHandlePersistents validates global flags and initializes logging
func preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	if jsonOutput {
		outputFormat = "json"
	}
	switch outputFormat {
	case "text", "json", "yaml":
	default:
		return ErrInvalidFlag.Msg(fmt.Sprintf("unknown output format %q", outputFormat))
	}
	switch logtrace.Format(logFormat) {
	case logtrace.FormatConsole, logtrace.FormatJSON:
	default:
		return ErrInvalidFlag.Msg(fmt.Sprintf("unknown log format %q", logFormat))
	}

	logtrace.InitLogger(logtrace.Options{
		Level:  logLevel,
		Format: logtrace.Format(logFormat),
		Out:    cmd.ErrOrStderr(),
	})
	return nil
}

// newVersionCmd creates and returns a new version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of versync",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if structuredOutput() {
				printStructured(cmd.OutOrStdout(), map[string]string{
					"version":    version.Version,
					"commit":     version.CommitHash,
					"build_date": version.BuildDate,
				})
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "versync %s\n", version.Summary())
		},
	}
}

func structuredOutput() bool {
	return jsonOutput || outputFormat == "json" || outputFormat == "yaml"
}

// printStructured writes data as JSON or YAML depending on the output flags
func printStructured(w io.Writer, data any) {
	var (
		out []byte
		err error
	)
	if outputFormat == "yaml" && !jsonOutput {
		out, err = yaml.Marshal(data)
	} else {
		out, err = json.MarshalIndent(data, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	w.Write(out)
}
