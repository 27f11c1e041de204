package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vlingest/internal/config"
	"vlingest/internal/datasource/file"
	"vlingest/internal/etl"
	"vlingest/internal/metrics"
	"vlingest/internal/metrics/datadog"
	"vlingest/internal/metrics/prompush"
)

type runOpts struct {
	dataDir         string
	output          string
	studies         []string
	studiesFile     string
	continueOnError bool

	metricsBackend string
	pushgatewayURL string
	statsdAddr     string
}

func newRunCmd(g *globalOpts) *cobra.Command {
	o := &runOpts{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline: load every study, combine, and store",
		Example: `  vlingest run --data-dir data
  vlingest run --config configs/pipelines/sample.yaml --study kissler2023 --study ke2022
  vlingest run --studies-file studies.txt --output out/combined.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, base, err := g.loadPipeline()
			if err != nil {
				return err
			}
			if err := o.apply(&p); err != nil {
				return err
			}
			if err := reportIssues(cmd, "pipeline", config.ValidatePipeline(p)); err != nil {
				return err
			}

			flush := setupMetrics(g.logger, o, p.Job)
			defer flush()

			start := time.Now()
			r := &etl.Runner{Spec: p, BaseDir: base, Logger: g.logger}
			sum, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, f := range sum.Failed() {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", f.ID, f.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d studies, %d rows written to %s in %s\n",
				sum.RunID, len(sum.Studies)-len(sum.Failed()), sum.Loaded,
				p.Storage.DB.DSN, time.Since(start).Truncate(time.Millisecond))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.dataDir, "data-dir", "", "base directory for study inputs (overrides data_dir)")
	f.StringVar(&o.output, "output", "", "output CSV path; forces storage.kind=csv")
	f.StringSliceVar(&o.studies, "study", nil, "study to run (repeatable); replaces the configured list")
	f.StringVar(&o.studiesFile, "studies-file", "", "file listing studies to run, one per line")
	f.BoolVar(&o.continueOnError, "continue-on-error", false, "skip failed studies instead of aborting")
	f.StringVar(&o.metricsBackend, "metrics-backend", "none", "metrics backend: none, pushgateway, datadog (env METRICS_BACKEND)")
	f.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	f.StringVar(&o.statsdAddr, "statsd-addr", "", "DogStatsD address (env DD_DOGSTATSD_ADDR)")
	return cmd
}

// apply overlays command-line overrides on the loaded pipeline.
func (o *runOpts) apply(p *config.Pipeline) error {
	if o.dataDir != "" {
		p.DataDir = o.dataDir
	}
	if o.output != "" {
		p.Storage = config.Storage{Kind: "csv", DB: config.DBConfig{DSN: o.output}}
	}
	if o.continueOnError {
		p.Runtime.ContinueOnError = true
	}

	names := append([]string(nil), o.studies...)
	if o.studiesFile != "" {
		listed, err := file.ReadList(o.studiesFile)
		if err != nil {
			return fmt.Errorf("read studies file: %w", err)
		}
		names = append(names, listed...)
	}
	if len(names) > 0 {
		p.Studies = p.Studies[:0]
		for _, n := range names {
			p.Studies = append(p.Studies, config.StudyRef{Name: n})
		}
	}
	return nil
}

// setupMetrics installs the selected backend and returns a flush func to
// defer. Backend failures are logged and leave metrics disabled.
func setupMetrics(log *zap.Logger, o *runOpts, job string) func() {
	name := o.metricsBackend
	if name == "" || name == "none" {
		if env := os.Getenv("METRICS_BACKEND"); env != "" {
			name = env
		}
	}

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "", "none":
		log.Debug("metrics: disabled")
		return func() {}
	case "pushgateway":
		url := firstNonEmpty(o.pushgatewayURL, os.Getenv("PUSHGATEWAY_URL"), "http://localhost:9091")
		b, err = prompush.NewBackend(job, url)
		log.Info("metrics: pushgateway", zap.String("url", url), zap.String("job", job))
	case "datadog":
		addr := firstNonEmpty(o.statsdAddr, os.Getenv("DD_DOGSTATSD_ADDR"), "127.0.0.1:8125")
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "vlingest.",
			GlobalTags: []string{"job:" + job},
		})
		log.Info("metrics: datadog", zap.String("addr", addr))
	default:
		log.Warn("metrics: unknown backend; metrics disabled", zap.String("backend", name))
		return func() {}
	}
	if err != nil {
		log.Warn("metrics: init failed; using nop", zap.String("backend", name), zap.Error(err))
		return func() {}
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush error", zap.Error(err))
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
