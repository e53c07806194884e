package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tahsin716/syncbench/config"
	"github.com/tahsin716/syncbench/internal/cli"
	"github.com/tahsin716/syncbench/metrics"
	"github.com/tahsin716/syncbench/report"
	"github.com/tahsin716/syncbench/scenario"
)

// app carries the I/O streams and the persistent flag values.
type app struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive bool

	configPath  string
	logLevel    string
	showMetrics bool
	pinThreads  bool
	queue       string
	termination string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "syncbench",
		Short:         "Micro-benchmarks of concurrency synchronization disciplines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML file overriding the embedded defaults")
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	pf.BoolVar(&a.showMetrics, "metrics", false, "print Prometheus metrics after the scenario")
	pf.BoolVar(&a.pinThreads, "pin-threads", false, "lock worker goroutines to OS threads")
	pf.StringVar(&a.queue, "queue", "", "job queue: locked, lockfree or channel")
	pf.StringVar(&a.termination, "termination", "", "worker shutdown: pill or close")

	root.AddCommand(a.listCmd())
	for _, s := range scenario.All() {
		root.AddCommand(a.scenarioCmd(s))
	}
	return root
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the scenarios and their sizing arguments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			tbl := report.NewTable("", "Scenario", "Size", "Default", "Description")
			for _, s := range scenario.All() {
				size, def := "-", "-"
				if s.TakesSize() {
					size, def = s.SizeLabel, fmt.Sprint(s.DefaultSize(cfg))
				}
				tbl.AddRow(s.Name, size, def, s.Short)
			}
			tbl.Render(a.stdout)
			return nil
		},
	}
}

func (a *app) scenarioCmd(s scenario.Scenario) *cobra.Command {
	cmd := &cobra.Command{
		Use:   s.Name,
		Short: s.Short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScenario(cmd, s, args)
		},
	}
	if s.TakesSize() {
		cmd.Use = fmt.Sprintf("%s [%s]", s.Name, s.SizeLabel)
		cmd.Args = cobra.MaximumNArgs(1)
	}
	return cmd
}

// loadConfig reads the config file and applies the flag overrides.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.queue != "" {
		cfg.Pipeline.Queue = a.queue
	}
	if a.termination != "" {
		cfg.Pipeline.Termination = a.termination
	}
	if cmd.Flags().Changed("pin-threads") {
		cfg.Pipeline.PinThreads = a.pinThreads
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})), nil
}

func (a *app) runScenario(cmd *cobra.Command, s scenario.Scenario, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := a.logger()
	if err != nil {
		return err
	}

	// The size is settled before anything reaches stdout.
	size := 0
	if s.TakesSize() {
		size, err = cli.ReadSize(args, a.stdin, a.stderr, cli.Prompt{
			Label:       s.SizeLabel,
			Default:     s.DefaultSize(cfg),
			Interactive: a.interactive,
		})
		if err != nil {
			return err
		}
		if err := s.CheckSize(cfg, size); err != nil {
			return &cli.InputError{Label: s.SizeLabel, Input: strconv.Itoa(size), Err: err}
		}
	}

	env, err := scenario.NewEnv(cfg, a.stdout, logger)
	if err != nil {
		return err
	}
	if a.showMetrics {
		env.Metrics = metrics.New()
	}

	logger.Info("scenario starting", "scenario", s.Name, "size", size,
		"queue", env.Queue, "termination", env.Termination, "runs", cfg.Harness.Runs)
	runErr := s.Run(env, size)

	if env.Metrics != nil {
		fmt.Fprintln(a.stdout)
		if err := env.Metrics.WriteText(a.stdout); err != nil {
			logger.Error("writing metrics", "error", err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", s.Name, runErr)
	}
	return nil
}
