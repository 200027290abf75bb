package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fitexport/internal/cli"
	"fitexport/internal/config"
	"fitexport/internal/flow"
	"fitexport/pkg/logging"
)

// Exit codes for the CLI.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (invalid arguments, interrupted run).
	// An interrupt maps here whichever step it cancelled.
	ExitCodeError = 1
	// ExitCodeConfig indicates the credentials file is missing or invalid.
	ExitCodeConfig = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
	// ExitCodeFetchFailed indicates the time-series request failed.
	ExitCodeFetchFailed = 4
	// ExitCodeWriteFailed indicates the output file could not be written.
	ExitCodeWriteFailed = 5
)

const versionTemplate = `{{printf "fitexport version %s\n" .Version}}`

// coordinatorOptions are appended to every coordinator the command builds.
var coordinatorOptions []flow.Option

// rootCmd represents the fitexport command.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	var args cli.ExportArgs

	cmd := &cobra.Command{
		Use:   "fitexport <base_date> <detail_level> <output_file>",
		Short: "Export Fitbit intraday heart rate data to a JSON file",
		Long: `fitexport authorizes against the Fitbit Web API in your browser, downloads
one day of intraday heart rate data and writes it to a JSON file.

base_date is a date in yyyy-MM-dd format or "today". detail_level is 1sec or
1min. --start_time and --end_time (HH:mm) restrict the export to a window and
must be given together.

Credentials are read from .fitbit in the working directory, or from the file
named by $FITEXPORT_CONFIG.`,
		Example: `  fitexport 2023-01-01 1min heart.json
  fitexport today 1sec heart.json --start_time 08:00 --end_time 09:30`,
		Args: cobra.ExactArgs(3),
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		// Errors are printed by Execute so they share one format.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			args.BaseDate = positional[0]
			args.DetailLevel = positional[1]
			args.OutputFile = positional[2]
			return runExport(cmd, &args)
		},
	}

	cmd.SetVersionTemplate(versionTemplate)
	cmd.Flags().StringVar(&args.StartTime, "start_time", "", "start of the time window (HH:mm)")
	cmd.Flags().StringVar(&args.EndTime, "end_time", "", "end of the time window (HH:mm)")

	return cmd
}

func runExport(cmd *cobra.Command, args *cli.ExportArgs) error {
	if err := args.Validate(); err != nil {
		return err
	}

	logging.InitForCLI(logging.LevelInfo, cmd.ErrOrStderr())

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfgPath := config.ResolvePath(cwd)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return &cli.ConfigError{Path: cfgPath, Reason: err}
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logging.InitForCLI(level, cmd.ErrOrStderr())

	opts := append([]flow.Option{flow.WithOutput(cmd.OutOrStdout())}, coordinatorOptions...)
	coordinator, err := flow.NewCoordinator(cfg, opts...)
	if err != nil {
		return &cli.ConfigError{Path: cfgPath, Reason: err}
	}

	summary, err := coordinator.Run(cmd.Context(), args.Params(), args.OutputFile)
	if err != nil {
		return err
	}

	cli.NewConsole(cmd.OutOrStdout()).RenderSummary(summary.Rows())
	return nil
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(getExitCode(err))
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, cli.FormatError(err))
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	if errors.Is(err, context.Canceled) {
		return ExitCodeError
	}

	var configErr *cli.ConfigError
	if errors.As(err, &configErr) {
		return ExitCodeConfig
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	var fetchErr *cli.FetchError
	if errors.As(err, &fetchErr) {
		return ExitCodeFetchFailed
	}

	var writeErr *cli.WriteError
	if errors.As(err, &writeErr) {
		return ExitCodeWriteFailed
	}

	// Default to general error
	return ExitCodeError
}
