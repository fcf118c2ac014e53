package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"digital.vasic.pavlov/pkg/assertion"
	"digital.vasic.pavlov/pkg/env"
	"digital.vasic.pavlov/pkg/httpclient"
	"digital.vasic.pavlov/pkg/logging"
	"digital.vasic.pavlov/pkg/metrics"
	"digital.vasic.pavlov/pkg/monitor"
	"digital.vasic.pavlov/pkg/plan"
	"digital.vasic.pavlov/pkg/report"
)

// runOptions holds the run flags that are not configuration keys.
type runOptions struct {
	out    string
	watch  bool
	pretty bool
}

func newRunCmd(a *app) *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run PATH...",
		Short: "Run check plans",
		Long: `Runs every plan found under the given files and directories
against the values document and writes a summary report.

Exits 1 when any check fails and 2 on any other error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args, o)
		},
	}
	bindRunFlags(cmd.Flags(), &o)
	return cmd
}

// bindRunFlags declares the run flags. Those setting a
// configuration key are resolved through viper; the annotation
// maps a flag to its key where the names differ.
func bindRunFlags(fs *pflag.FlagSet, o *runOptions) {
	d := env.DefaultConfig()
	fs.String(env.KeyValues, "", "YAML or JSON document, file or http(s) URL, the plans are checked against")
	fs.StringP("format", "f", d.ReportFormat, "report format: json, yaml or markdown")
	fs.String(env.KeyReportDir, "", "also save the report into this directory")
	fs.String("history", "", "append a JSON line per run to this file")
	fs.String("monitor", "", "serve the live dashboard on this address")
	fs.IntP(env.KeyConcurrency, "c", d.Concurrency, "plans to run at once")
	_ = fs.SetAnnotation("format", env.KeyAnnotation, []string{env.KeyReportFormat})
	_ = fs.SetAnnotation("history", env.KeyAnnotation, []string{env.KeyHistoryFile})
	_ = fs.SetAnnotation("monitor", env.KeyAnnotation, []string{env.KeyMonitorAddr})

	fs.StringVarP(&o.out, "out", "o", "", "write the report to this file instead of stdout")
	fs.BoolVarP(&o.watch, "watch", "w", false, "re-run when plans or values change")
	fs.BoolVar(&o.pretty, "pretty", false, "indent JSON reports")
}

// executor runs one pass over the plans and publishes the
// outcome to metrics, the event collector and the report sinks.
type executor struct {
	paths     []string
	cfg       env.Config
	opts      runOptions
	writer    *report.Writer
	engine    *assertion.Engine
	fetcher   *httpclient.Client
	metrics   metrics.CheckMetrics
	collector *monitor.EventCollector
	logger    logging.Logger
	out       io.Writer
}

func (a *app) run(ctx context.Context, paths []string, o runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	format, err := report.ParseFormat(a.cfg.ReportFormat)
	if err != nil {
		return err
	}

	m := metrics.NewPrometheusMetrics()
	collector := monitor.NewEventCollector()
	x := &executor{
		paths:  paths,
		cfg:    a.cfg,
		opts:   o,
		writer: report.NewWriter(format, o.pretty),
		engine: assertion.NewEngine(
			assertion.WithLogger(a.logger),
			assertion.WithObserver(metrics.Observer(m)),
			assertion.WithObserver(collector),
		),
		fetcher:   httpclient.NewClient(httpclient.WithBearerToken(a.cfg.ValuesToken)),
		metrics:   m,
		collector: collector,
		logger:    a.logger,
		out:       a.out,
	}

	if a.cfg.MonitorAddr != "" {
		srv := monitor.NewServer(
			a.cfg.MonitorAddr,
			collector,
			monitor.NewDashboard(uuid.NewString()),
			monitor.WithMetricsHandler(m.Handler()),
			monitor.WithLogger(a.logger),
		)
		wait := a.serveMonitor(ctx, srv)
		defer wait()
	}

	if !o.watch {
		summary, err := x.execute(ctx)
		if err != nil {
			return err
		}
		if !summary.Passed() {
			return errChecksFailed
		}
		return nil
	}
	return x.watch(ctx)
}

// serveMonitor starts srv in the background. The returned func
// stops it and waits for it to exit.
func (a *app) serveMonitor(ctx context.Context, srv *monitor.Server) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Start(ctx); err != nil {
			a.logger.Error("monitor stopped", logging.ErrorField(err))
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (x *executor) watch(ctx context.Context) error {
	if _, err := x.execute(ctx); err != nil {
		x.logger.Error("run failed", logging.ErrorField(err))
	}

	watched := append([]string{}, x.paths...)
	if x.cfg.Values != "" && !httpclient.IsURL(x.cfg.Values) {
		watched = append(watched, x.cfg.Values)
	}
	w, err := plan.NewWatcher(watched, plan.DefaultDebounce, x.logger)
	if err != nil {
		return err
	}

	x.logger.Info("watching for changes",
		logging.IntField("paths", len(watched)))
	return w.Run(ctx, func(ctx context.Context) {
		if _, err := x.execute(ctx); err != nil && ctx.Err() == nil {
			x.logger.Error("run failed", logging.ErrorField(err))
		}
	})
}

// execute loads plans and values fresh, runs them and writes the
// summary. The error is non-nil for load, write or cancellation
// failures; failed checks are reported through the summary.
func (x *executor) execute(ctx context.Context) (*report.Summary, error) {
	start := time.Now()
	x.collector.Reset()

	plans, err := plan.LoadPaths(x.paths...)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("no plans found in %v", x.paths)
	}
	values, err := x.loadValues(ctx)
	if err != nil {
		return nil, err
	}

	x.logger.Info("running plans",
		logging.IntField("plans", len(plans)),
		logging.IntField("concurrency", x.cfg.Concurrency))

	for _, p := range plans {
		x.collector.EmitPlanStarted(p.Name, len(p.Steps))
	}
	x.metrics.SetActivePlans(len(plans))
	reports, runErr := plan.RunAll(ctx, x.engine, plans, values, x.cfg.Concurrency)
	x.metrics.SetActivePlans(0)
	x.metrics.IncrementRunTotal()

	for _, r := range reports {
		if r == nil {
			continue
		}
		x.collector.EmitPlanFinished(r.Plan, len(r.Results), len(r.Failures()), r.Duration)
		x.metrics.RecordPlan(r.Plan, r.Passed(), r.Duration)
	}
	if runErr != nil {
		return nil, fmt.Errorf("run interrupted: %w", runErr)
	}

	summary := report.Build(uuid.NewString(), reports)
	if err := x.publish(summary); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	x.collector.EmitRunFinished(summary.Passed(), elapsed)
	x.logSummary(summary, elapsed)
	return summary, nil
}

// loadValues reads the values document from a file or, for URLs,
// over HTTP.
func (x *executor) loadValues(ctx context.Context) (any, error) {
	if httpclient.IsURL(x.cfg.Values) {
		x.logger.Debug("fetching values",
			logging.StringField("url", env.RedactURL(x.cfg.Values)))
		return x.fetcher.FetchValues(ctx, x.cfg.Values)
	}
	return plan.LoadValues(x.cfg.Values)
}

// publish writes summary to the output, the report directory and
// the history log, as configured.
func (x *executor) publish(summary *report.Summary) error {
	if err := x.writeOutput(summary); err != nil {
		return err
	}

	var saved string
	if x.cfg.ReportDir != "" {
		path, err := report.Save(summary, x.cfg.ReportDir, x.writer)
		if err != nil {
			return err
		}
		saved = path
		x.logger.Debug("report saved", logging.StringField("path", path))
	}

	if x.cfg.HistoryFile != "" {
		if err := report.AppendToHistory(x.cfg.HistoryFile, summary, saved); err != nil {
			return err
		}
	}
	return nil
}

func (x *executor) writeOutput(summary *report.Summary) error {
	if x.opts.out == "" {
		return x.writer.Write(x.out, summary)
	}

	f, err := os.Create(x.opts.out)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := x.writer.Write(f, summary); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (x *executor) logSummary(s *report.Summary, elapsed time.Duration) {
	fields := []logging.Field{
		logging.StringField("run_id", s.ID),
		logging.IntField("plans", s.TotalPlans),
		logging.IntField("checks", s.TotalChecks),
		logging.IntField("failed", s.FailedChecks),
		logging.DurationField("elapsed", elapsed),
	}
	if s.Passed() {
		x.logger.Info("all checks passed", fields...)
		return
	}
	x.logger.Warn("checks failed", fields...)
	for _, p := range s.Reports {
		for _, r := range p.Failures() {
			x.logger.Warn(r.Message,
				logging.StringField("plan", p.Plan),
				logging.IntField("step", r.Step),
				logging.CheckField(r.Check))
		}
	}
}
