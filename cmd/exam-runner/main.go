package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"exam-runner/internal/api"
	"exam-runner/internal/config"
	"exam-runner/internal/console"
	"exam-runner/internal/monitor"
	"exam-runner/internal/report"
	"exam-runner/internal/runner"
	examruntime "exam-runner/internal/runtime"
	"exam-runner/internal/submission"
	"exam-runner/internal/suite"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	logLevel   string
)

// errRunFailed ends the process with status 1 after the runner already told
// the student what went wrong.
var errRunFailed = errors.New("run failed")

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			log.Error().Err(err).Msg("exam-runner failed")
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "exam-runner [question]",
		Short:         "Run a question's hidden tests and submit the result for grading",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runTest(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}

	defaultConfig := os.Getenv("EXAM_RUNNER_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "exam-runner.yaml"
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "Config file (EXAM_RUNNER_CONFIG)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "test <question>",
		Short: "Run the tests for one question and submit the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "exam-runner %s\n", buildVersion())
		},
	})

	return root
}

func setupLogging(level string) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}

// loadConfig reads the config file, or falls back to defaults when it does not
// exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}

	log.Debug().Str("path", path).Msg("no config file found, using defaults")
	cfg := config.DefaultConfig()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runTest(ctx context.Context, stdout io.Writer, arg string) error {
	q, err := submission.ParseQuestion(arg)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Tracing.Enabled {
		shutdown, err := monitor.SetupTracing(cfg.Tracing.File)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn().Err(err).Str("path", cfg.Tracing.File).Msg("could not flush traces")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	ctx = api.WithRequestID(ctx, runID)

	rt, err := examruntime.NewRegistry().Get(cfg.Engine.Name)
	if err != nil {
		return err
	}

	out := console.New(stdout)
	executor, err := suite.NewExecutor(cfg, out)
	if err != nil {
		return err
	}

	layout := submission.Layout{
		TestsDir:   cfg.Exam.TestsDir,
		AnswersDir: cfg.Exam.AnswersDir,
		Ext:        rt.FileExtension(),
	}
	metrics := monitor.NewMetrics()

	r := runner.New(runner.Deps{
		LoadSession: func() (config.Session, error) {
			return config.LoadSession(cfg.SessionPath())
		},
		Executor:   executor,
		Aggregator: submission.NewAggregator(os.DirFS(cfg.Exam.Root), layout),
		Submitter:  api.NewClient(cfg),
		Presenter:  report.NewPresenter(out),
		Layout:     layout,
		Engine:     rt.Name(),
		Out:        out,
		Metrics:    metrics,
		Tracer:     monitor.NewTracer(cfg.Tracing.Enabled),
	})

	log.Debug().
		Str("run_id", runID).
		Int("question", int(q)).
		Str("backend", cfg.Engine.Backend).
		Msg("starting run")

	state, runErr := r.Run(ctx, runID, q)

	if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.Warn().Err(err).Str("path", cfg.Metrics.Textfile).Msg("could not write metrics")
	}

	if runErr != nil {
		return runErr
	}
	if state != runner.StateDone {
		return errRunFailed
	}
	return nil
}

func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return version
}
