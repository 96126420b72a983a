package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"gocit/adapters/excel"
	"gocit/domain/core"
	"gocit/domain/dataset"
	"gocit/internal"
	"gocit/internal/citest"
	"gocit/internal/config"
	"gocit/internal/metrics"
	"gocit/internal/testkit"
)

// dataFlags select where the (T, N) series comes from
type dataFlags struct {
	path        string
	sheet       string
	maskMissing bool
	synthetic   int
	seed        int64
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "data", "", "CSV or XLSX file with one column per variable")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	cmd.Flags().BoolVar(&f.maskMissing, "mask-missing", false, "Mask empty or non-numeric cells instead of storing NaN")
	cmd.Flags().IntVar(&f.synthetic, "synthetic", 0, "Generate T samples of a lagged three variable chain instead of reading a file")
	cmd.Flags().Int64Var(&f.seed, "data-seed", 42, "Seed of the synthetic chain")
}

func (f *dataFlags) load(logger *internal.Logger) (*dataset.DataFrame, error) {
	if f.synthetic > 0 {
		return testkit.NewTestKit(f.seed).Chain(f.synthetic), nil
	}
	if f.path == "" {
		return nil, fmt.Errorf("either --data or --synthetic is required")
	}
	df, headers, err := excel.NewDataReader(f.path, logger).ReadFrame(excel.ReadOptions{Sheet: f.sheet, MaskMissing: f.maskMissing})
	if err != nil {
		return nil, err
	}
	logger.Info("loaded variables %v", headers)
	return df, nil
}

// runnerFlags select the measure and configuration
type runnerFlags struct {
	configPath  string
	measure     string
	knn         int
	showMetrics bool
}

func (f *runnerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML test configuration (default: CIT_* environment)")
	cmd.Flags().StringVar(&f.measure, "measure", "par_corr", "Dependence measure: par_corr|cmi_symb|cmi_knn")
	cmd.Flags().IntVar(&f.knn, "knn", 0, "Neighbors for cmi_knn")
	cmd.Flags().BoolVar(&f.showMetrics, "metrics", false, "Print collected metrics on exit")
}

func (f *runnerFlags) build(data *dataFlags) (*citest.Runner, *prometheus.Registry, error) {
	var cfg *config.TestConfig
	var err error
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	measure, err := citest.NewMeasure(f.measure, citest.MeasureDeps{KNN: f.knn, Seed: cfg.Seed, Logger: logger})
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	runner, err := citest.NewRunner(*cfg, measure,
		citest.WithLogger(logger),
		citest.WithMetrics(metrics.NewMetrics(reg, "cli")))
	if err != nil {
		return nil, nil, err
	}

	df, err := data.load(logger)
	if err != nil {
		return nil, nil, err
	}
	if err := runner.SetData(df); err != nil {
		return nil, nil, err
	}
	return runner, reg, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "gocit-cli",
		Short: "Conditional independence tests on lagged multivariate time series",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newSelectCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var data dataFlags
	var rf runnerFlags
	var x, y, z string
	var tauMax int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Test X independent of Y given Z",
		Long: `Test whether the lagged nodes X and Y are independent given Z.

Nodes are comma separated var:lag pairs with lag <= 0.

Example: gocit-cli run --synthetic 500 --x 0:-1 --y 1:0 --z 1:-1 --tau-max 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			xs, err := core.ParseNodeSet(x)
			if err != nil {
				return err
			}
			ys, err := core.ParseNodeSet(y)
			if err != nil {
				return err
			}
			zs, err := core.ParseNodeSet(z)
			if err != nil {
				return err
			}

			runner, reg, err := rf.build(&data)
			if err != nil {
				return err
			}
			return runTest(cmd.Context(), runner, xs, ys, zs, tauMax, rf.showMetrics, reg)
		},
	}

	data.register(cmd)
	rf.register(cmd)
	cmd.Flags().StringVar(&x, "x", "", "X nodes")
	cmd.Flags().StringVar(&y, "y", "", "Y nodes, one with lag 0")
	cmd.Flags().StringVar(&z, "z", "", "Conditioning nodes")
	cmd.Flags().IntVar(&tauMax, "tau-max", 0, "Maximum lag that fixes the sample range")
	return cmd
}

func runTest(ctx context.Context, runner *citest.Runner, x, y, z core.NodeSet, tauMax int, showMetrics bool, reg *prometheus.Registry) error {
	if _, _, err := runner.RunTest(ctx, x, y, z, tauMax); err != nil {
		return err
	}
	if _, _, err := runner.GetConfidence(ctx, x, y, z, tauMax); err != nil {
		return err
	}

	rec := runner.LastResult()
	fmt.Printf("X = %s, Y = %s, Z = %s (T = %d)\n", rec.X, rec.Y, rec.Z, rec.Samples)
	fmt.Printf("        %s\n", rec)
	if rec.Null != nil {
		fmt.Printf("        %s null: mean = %.3f, std = %.3f, p95 = %.3f, p99 = %.3f (%d samples)\n",
			rec.Null.Kind, rec.Null.Mean, rec.Null.Std, rec.Null.P95, rec.Null.P99, rec.Null.Samples)
	}
	if showMetrics {
		return printMetrics(reg)
	}
	return nil
}

func newSelectCmd() *cobra.Command {
	var data dataFlags
	var rf runnerFlags
	var j, tauMax int
	var parents string

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Score a parent set of one variable",
		Long: `Compute the model selection criterion of variable j given its parents.
Lower scores are better.

Example: gocit-cli select --synthetic 500 --j 1 --parents 0:-1,1:-1 --tau-max 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := core.ParseNodeSet(parents)
			if err != nil {
				return err
			}
			runner, reg, err := rf.build(&data)
			if err != nil {
				return err
			}
			score, err := runner.GetModelSelectionCriterion(cmd.Context(), j, ps, tauMax)
			if err != nil {
				return err
			}
			fmt.Printf("variable %d | parents = %s | score = %.3f\n", j, ps, score)
			if rf.showMetrics {
				return printMetrics(reg)
			}
			return nil
		},
	}

	data.register(cmd)
	rf.register(cmd)
	cmd.Flags().IntVar(&j, "j", 0, "Target variable")
	cmd.Flags().StringVar(&parents, "parents", "", "Parent nodes")
	cmd.Flags().IntVar(&tauMax, "tau-max", 0, "Maximum lag that fixes the sample range")
	return cmd
}

func printMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	sort.Slice(families, func(a, b int) bool { return families[a].GetName() < families[b].GetName() })
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Printf("%s%s %g\n", mf.GetName(), labels(m.GetLabel()), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Printf("%s%s count=%d sum=%.4fs\n", mf.GetName(), labels(m.GetLabel()), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}
