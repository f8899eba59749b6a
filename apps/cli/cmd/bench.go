package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitcore/packages/bench"
	"github.com/abdul-hamid-achik/hitcore/packages/http"
)

var benchCmd = &cobra.Command{
	Use:   "bench [METHOD] <url>",
	Short: "Send one request repeatedly and report latency",
	Long: `Build and validate a request once, then send it repeatedly from several
workers and report latency percentiles, status codes and failures grouped
by error kind.

The run stops after --requests requests or after --duration, whichever
comes first. With --requests 0 it runs for the whole duration.
Thresholds turn the run into a check: any threshold that is not met makes
the command exit 1.

Thresholds: p50, p95, p99 and max take durations with < or <=, errors
takes a rate or percentage with < or <=, rps takes a number with > or >=.

Examples:
  hitcore bench https://api.example.com/health
  hitcore bench {{baseUrl}}/users -n 500 -c 20 --threshold "p95<200ms,errors<1%"
  hitcore bench POST {{baseUrl}}/search -d @query.json --json -n 0 --duration 30s --rate 50`,
	Args: cobra.MaximumNArgs(2),
	RunE: benchCommand,
}

var (
	benchRequestsFlag    int
	benchConcurrencyFlag int
	benchDurationFlag    time.Duration
	benchRateFlag        float64
	benchThresholdFlag   string
)

func init() {
	f := benchCmd.Flags()
	defaults := bench.DefaultConfig()

	addBuildFlags(f)
	addNetworkFlags(f)

	f.IntVarP(&benchRequestsFlag, "requests", "n", defaults.Requests, "Total requests to send; 0 runs for --duration")
	f.IntVarP(&benchConcurrencyFlag, "concurrency", "c", defaults.Concurrency, "Number of concurrent workers")
	f.DurationVar(&benchDurationFlag, "duration", defaults.Duration, "Maximum run time (e.g., 30s)")
	f.Float64Var(&benchRateFlag, "rate", 0, "Cap on requests per second across all workers")
	f.StringVar(&benchThresholdFlag, "threshold", getEnvString("HITCORE_BENCH_THRESHOLD", ""), "Pass/fail thresholds, e.g. \"p95<200ms,errors<1%\" (env: HITCORE_BENCH_THRESHOLD)")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	thresholds, err := bench.ParseThresholds(benchThresholdFlag)
	if err != nil {
		return &usageError{err: err}
	}
	cfg := &bench.Config{
		Requests:    benchRequestsFlag,
		Duration:    benchDurationFlag,
		Concurrency: benchConcurrencyFlag,
		Rate:        benchRateFlag,
		Thresholds:  thresholds,
	}
	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}

	req, err := buildRequest(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := http.NewClient(clientOptions()...)
	current.logger.Debug("starting bench", "url", req.URL().String(), "requests", cfg.Requests, "concurrency", cfg.Concurrency)

	summary, err := bench.Run(ctx, client, req, cfg, bench.WithLogger(current.logger))
	if summary == nil {
		return err
	}
	if err != nil {
		current.logger.Warn("bench interrupted", "error", err)
	}

	results := summary.Evaluate(cfg.Thresholds)
	reporter := bench.NewReporter(bench.WithWriter(cmd.OutOrStdout()), bench.WithNoColor(current.cfg.GetNoColor()))
	if outputFlag == "json" {
		if err := reporter.JSON(summary, results); err != nil {
			return err
		}
	} else {
		reporter.Summary(summary, results)
	}

	if !bench.Passed(results) {
		return &reportedError{code: ExitFailure, err: fmt.Errorf("thresholds not met")}
	}
	return nil
}
