package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archlint/internal/analyzer"
	"github.com/dusk-indust/archlint/internal/config"
	"github.com/dusk-indust/archlint/internal/observability"
	"github.com/dusk-indust/archlint/internal/report"
)

type analyzeFlags struct {
	configPath   string
	json         bool
	top          int
	noCoupling   bool
	parallel     bool
	failUnder    int
	otlpEndpoint string
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a repository and print its architecture report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), a, rootArg(args), f)
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "config file (default: archlint.yml in the analyzed path)")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the result as JSON")
	cmd.Flags().IntVar(&f.top, "top", 0, "number of top risks to report (default 5)")
	cmd.Flags().BoolVar(&f.noCoupling, "no-coupling", false, "skip coupling risk analysis")
	cmd.Flags().BoolVar(&f.parallel, "parallel", false, "run rules concurrently")
	cmd.Flags().IntVar(&f.failUnder, "fail-under", 0, "exit non-zero when the score is below this value")
	cmd.Flags().StringVar(&f.otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint to export traces to (e.g. localhost:4317)")
	return cmd
}

// loadConfig reads the config named by --config, or the one in root, and
// applies flag overrides.
func loadConfig(root string, f analyzeFlags) (*config.ProjectConfig, error) {
	var (
		cfg *config.ProjectConfig
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, err
	}

	if f.top > 0 {
		cfg.TopN = f.top
	}
	if f.noCoupling {
		off := false
		cfg.Coupling = &off
	}
	if f.parallel {
		cfg.ParallelRules = true
	}
	return cfg, nil
}

func runAnalyze(ctx context.Context, a *app, root string, f analyzeFlags) error {
	cfg, err := loadConfig(root, f)
	if err != nil {
		return err
	}

	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    "archlint",
		ServiceVersion: version,
		OTLPEndpoint:   f.otlpEndpoint,
		SampleRate:     1.0,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	an := analyzer.New(
		analyzer.WithLogger(a.logger()),
		analyzer.WithTracer(tp.Tracer()),
	)
	defer an.Close()

	res, err := an.Analyze(ctx, root, cfg)
	if err != nil {
		return err
	}

	if f.json {
		err = report.WriteJSON(a.stdout, res)
	} else {
		err = report.WriteText(a.stdout, res)
	}
	if err != nil {
		return err
	}

	if f.failUnder > 0 && res.Score < f.failUnder {
		return fmt.Errorf("%w: %d < %d", errBelowThreshold, res.Score, f.failUnder)
	}
	return nil
}
