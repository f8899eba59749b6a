package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitcore/packages/core/config"
	"github.com/abdul-hamid-achik/hitcore/packages/core/env"
	"github.com/abdul-hamid-achik/hitcore/packages/output"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag  string
	envFileFlag string
	outputFlag  string
	verboseFlag bool
	noColorFlag bool
)

// session is the state every command shares once flags are parsed.
type session struct {
	cfg       *config.Config
	resolver  *env.Resolver
	formatter output.Formatter
	logger    *slog.Logger
}

var current *session

var rootCmd = &cobra.Command{
	Use:   "hitcore",
	Short: "Build, send and inspect HTTP requests",
	Long: `hitcore builds HTTP requests with strict validation, sends them,
and navigates the JSON that comes back.

Requests are checked before anything touches the network: the method,
the URL, the protocol version, the headers and the body framing.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupSession,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command tree and maps the outcome to an exit code.
func run(args []string, stdout, stderr io.Writer) int {
	current = nil
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		if current != nil && current.formatter != nil {
			current.formatter.FormatError(err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}
	return ExitCodeFor(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("HITCORE_CONFIG", ""), "Path to config file (env: HITCORE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", getEnvString("HITCORE_ENV_FILE", ""), "Path to .env file for variable interpolation (env: HITCORE_ENV_FILE)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", getEnvString("HITCORE_OUTPUT", "console"), "Output format: console, json (env: HITCORE_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("HITCORE_VERBOSE", false), "Verbose output and debug logging (env: HITCORE_VERBOSE)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("HITCORE_NO_COLOR", false), "Disable colored output (env: HITCORE_NO_COLOR)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(urlCmd)
	rootCmd.AddCommand(jsonCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func setupSession(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return &configError{err: err}
	}
	if cmd.Flags().Changed("verbose") || verboseFlag {
		cfg.Verbose = config.BoolPtr(verboseFlag)
	}
	if cmd.Flags().Changed("no-color") || noColorFlag {
		cfg.NoColor = config.BoolPtr(noColorFlag)
	}

	formatter, err := output.New(outputFlag, cmd.OutOrStdout(), cfg.GetVerbose(), cfg.GetNoColor())
	if err != nil {
		return &usageError{err: err}
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.GetVerbose())

	resolver := env.NewResolver()
	resolver.SetWarnFunc(func(format string, args ...any) {
		logger.Warn(fmt.Sprintf(format, args...))
	})
	resolver.SetStringVariables(cfg.Variables)

	envFile := envFileFlag
	if envFile == "" {
		envFile = cfg.EnvFile
	}
	if envFile != "" {
		vars, err := env.LoadAndExportDotEnv(envFile)
		if err != nil {
			return &configError{err: err}
		}
		resolver.SetStringVariables(vars)
		logger.Debug("loaded env file", "path", envFile, "variables", len(vars))
	}

	current = &session{
		cfg:       cfg,
		resolver:  resolver,
		formatter: formatter,
		logger:    logger,
	}
	return nil
}

// newLogger writes debug records only in verbose mode.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
