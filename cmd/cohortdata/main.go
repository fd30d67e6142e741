package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/cohortdata/internal/output"
	"github.com/ajitpratap0/cohortdata/pkg/config"
	"github.com/ajitpratap0/cohortdata/pkg/errors"
	"github.com/ajitpratap0/cohortdata/pkg/logger"
	"github.com/ajitpratap0/cohortdata/pkg/observability"
	"github.com/ajitpratap0/cohortdata/pkg/roster"
	"github.com/ajitpratap0/cohortdata/pkg/source"
)

var version = "0.1.0"

// skipSetup marks commands that need neither config nor a roster.
const skipSetup = "skip-setup"

const shutdownTimeout = 5 * time.Second

// errSelfTestFailed is returned after the failure report has been printed.
var errSelfTestFailed = fmt.Errorf("self-test failed")

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app holds state shared by the subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string

	cfg     *config.Config
	service *roster.Service
	log     *zap.Logger
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if ferr := a.finish(); ferr != nil && err == nil {
		err = ferr
	}

	if err != nil {
		if err != errSelfTestFailed {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cohortdata",
		Short: "Query school cohort roster files",
		Long: `cohortdata answers questions about a pipe-delimited roster file
(first_name|last_name|house|adviser|cohort): houses, cohorts, house rosters,
duplicate last names and housemates.

The file may be local or remote (s3://, gs://) and optionally compressed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[skipSetup]; ok {
				return nil
			}
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "Path to a YAML or JSON config file")
	pf.StringP("file", "f", "cohort_data.txt", "Roster file path or URI (file://, s3://, gs://)")
	pf.StringP("format", "o", config.FormatText, "Output format (text, json, jsonl, csv)")
	pf.Bool("pretty", false, "Indent JSON output")
	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")
	pf.String("compression", "auto", "Input compression (auto, none, gzip, zstd, lz4, snappy, s2)")
	pf.String("metrics-file", "", "Write Prometheus metrics to this file on exit")
	pf.Bool("trace", false, "Export OpenTelemetry spans to stderr")

	root.AddCommand(
		a.listCommand(roster.QueryHouses, "houses", "List every house name"),
		a.studentsCommand(),
		a.listCommand(roster.QueryRosters, "rosters", "List names grouped into house, ghost and instructor rosters"),
		a.listCommand(roster.QueryData, "data", "Print every record as name, house, adviser, cohort"),
		a.nameCommand(roster.QueryCohortOf, "cohort-of NAME", "Print the cohort of a person, or None"),
		a.listCommand(roster.QueryDupes, "dupes", "List last names shared by more than one person"),
		a.nameCommand(roster.QueryHousemates, "housemates NAME", "List people in the same house and cohort as NAME"),
		a.selfTestCommand(),
		a.sourcesCommand(),
		versionCommand(),
	)
	return root
}

// setup loads configuration, initializes observability and builds the
// roster service.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := config.Load(a.configFile,
		config.FlagBinding{Key: "source.path", Flag: flags.Lookup("file")},
		config.FlagBinding{Key: "source.compression", Flag: flags.Lookup("compression")},
		config.FlagBinding{Key: "output.format", Flag: flags.Lookup("format")},
		config.FlagBinding{Key: "output.pretty", Flag: flags.Lookup("pretty")},
		config.FlagBinding{Key: "observability.log_level", Flag: flags.Lookup("log-level")},
		config.FlagBinding{Key: "observability.metrics_file", Flag: flags.Lookup("metrics-file")},
		config.FlagBinding{Key: "observability.enable_tracing", Flag: flags.Lookup("trace")},
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to load configuration")
	}
	a.cfg = cfg

	obsCfg := observability.DefaultConfig()
	obsCfg.Logging = cfg.Observability.Logger()
	obsCfg.Tracing.Enabled = cfg.Observability.EnableTracing
	obsCfg.Tracing.SamplingRate = cfg.Observability.TracingSampleRate
	obsCfg.Tracing.ServiceVersion = version
	obsCfg.Tracing.Writer = a.stderr
	if err := observability.Initialize(obsCfg); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to initialize observability")
	}

	a.log = logger.With(zap.String("component", "cohortdata-cli"))
	a.service = roster.NewService(cfg.Source.Path,
		roster.WithLogger(logger.Get()),
		roster.WithLoadOptions(
			roster.WithCompression(cfg.Source.CompressionAlgorithm()),
			roster.WithSourceConfig(cfg.Source.Backend()),
		),
	)

	a.log.Debug("configured",
		zap.String("source", cfg.Source.Path),
		zap.String("compression", cfg.Source.Compression),
		zap.String("format", cfg.Output.Format))
	return nil
}

// finish dumps metrics and flushes telemetry. It is a no-op when setup never
// ran.
func (a *app) finish() error {
	if a.cfg == nil {
		return nil
	}

	var metricsErr error
	if a.service != nil {
		metricsErr = a.writeMetrics()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := observability.Shutdown(ctx); err != nil {
		fmt.Fprintln(a.stderr, "Warning:", err)
	}
	return metricsErr
}

func (a *app) writeMetrics() error {
	obs := a.cfg.Observability
	switch {
	case obs.MetricsFile != "":
		f, err := os.Create(obs.MetricsFile)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to create metrics file").
				WithDetail("path", obs.MetricsFile)
		}
		defer f.Close()
		if err := a.service.Metrics().WriteText(f); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write metrics").
				WithDetail("path", obs.MetricsFile)
		}
		return nil
	case obs.EnableMetrics:
		return a.service.Metrics().WriteText(a.stderr)
	default:
		return nil
	}
}

// query loads the roster, runs req and renders the result to stdout.
func (a *app) query(ctx context.Context, req roster.Request) error {
	res, err := a.service.Run(ctx, req)
	if err != nil {
		return err
	}
	return output.Render(a.stdout, res, output.Options{
		Format: a.cfg.Output.Format,
		Pretty: a.cfg.Output.Pretty,
	})
}

func (a *app) listCommand(q roster.Query, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.query(cmd.Context(), roster.Request{Query: q})
		},
	}
}

func (a *app) nameCommand(q roster.Query, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.query(cmd.Context(), roster.Request{Query: q, Name: args[0]})
		},
	}
}

func (a *app) studentsCommand() *cobra.Command {
	var cohort string
	cmd := &cobra.Command{
		Use:   "students",
		Short: "List students in a cohort, or in all cohorts",
		Example: `  cohortdata students --cohort "Fall 2015"
  cohortdata students`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.query(cmd.Context(), roster.Request{Query: roster.QueryStudents, Cohort: &cohort})
		},
	}
	cmd.Flags().StringVar(&cohort, "cohort", roster.AllCohorts, `Cohort name, or "All" for every student`)
	return cmd
}

func (a *app) selfTestCommand() *cobra.Command {
	var examplesFile string
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run the documented examples against the roster file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			examples := roster.DefaultExamples()
			if examplesFile != "" {
				f, err := os.Open(examplesFile) //nolint:gosec // G304: path is supplied by the operator
				if err != nil {
					return errors.Wrap(err, errors.ErrorTypeFile, "failed to open examples file").
						WithDetail("path", examplesFile)
				}
				defer f.Close()
				if examples, err = roster.ParseExamples(f); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			ds, err := a.service.Load(ctx)
			if err != nil {
				return err
			}

			report := roster.SelfTest(ctx, roster.ServiceRunner(a.service, ds), examples)
			a.log.Info("self-test finished",
				zap.Int("attempted", report.Attempted),
				zap.Int("failed", report.Failed))

			if report.Passed() && report.Attempted == len(examples) {
				fmt.Fprintln(a.stdout, "ALL TESTS PASSED")
				return nil
			}
			if report.First != nil {
				fmt.Fprintf(a.stdout, "Failed example:\n%s\n", report.First)
			}
			fmt.Fprintf(a.stdout, "***Test Failed*** %d of %d examples failed.\n", report.Failed, report.Attempted)
			return errSelfTestFailed
		},
	}
	cmd.Flags().StringVar(&examplesFile, "examples", "", "YAML file replacing the built-in examples")
	return cmd
}

func (a *app) sourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "sources",
		Short:       "List supported source URI schemes",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCHEME\tDESCRIPTION\tEXAMPLE")
			for _, info := range source.Infos() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Scheme, info.Description, info.Example)
			}
			return tw.Flush()
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cohortdata v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
