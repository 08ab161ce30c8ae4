package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/config"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/experiment"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/logger"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/report"
)

type options struct {
	configFile string
	envFile    string

	source         string
	sheet          string
	seed           int64
	testFraction   float64
	maxIterations  int
	solver         string
	cvFolds        int
	refitPerFold   bool
	cvScope        string
	baselineImpute string
	fitOnTrain     bool
	logLevel       string
	plot           string

	prepareOutput string
	previewRows   int
	preparePath   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "survival",
		Short: "Evaluate baseline and cleaned survival classifiers on the passenger table",
		Long: `survival loads the passenger table, fits a logistic regression on the
numeric columns only (baseline) and on the fully cleaned table, and prints
accuracy, precision, recall, F1 and cross-validation scores.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	fs := root.PersistentFlags()
	fs.StringVarP(&opts.configFile, "config", "c", "", "YAML config file")
	fs.StringVar(&opts.envFile, "env-file", ".env", "env file with SURVIVAL_* overrides, ignored when absent")
	fs.StringVarP(&opts.source, "source", "s", config.DefaultSource, "CSV or XLSX table, URL or local path")
	fs.StringVar(&opts.sheet, "sheet", "", "XLSX sheet name (first sheet when empty)")
	fs.Int64Var(&opts.seed, "seed", 42, "seed of the train/test split")
	fs.Float64Var(&opts.testFraction, "test-fraction", 0.2, "fraction of rows held out for testing")
	fs.IntVar(&opts.maxIterations, "max-iterations", 1000, "optimizer iteration cap")
	fs.StringVar(&opts.solver, "solver", "lbfgs", "optimizer: lbfgs or gd")
	fs.IntVar(&opts.cvFolds, "cv-folds", 5, "cross-validation folds")
	fs.BoolVar(&opts.refitPerFold, "refit-per-fold", true, "refit a fresh model on every fold")
	fs.StringVar(&opts.cvScope, "cv-scope", config.ScopeTest, "rows to cross-validate: test or all")
	fs.StringVar(&opts.baselineImpute, "baseline-impute", "per_split", "baseline gap filling: per_split or train")
	fs.BoolVar(&opts.fitOnTrain, "fit-on-train", false, "fit the cleaning steps on the training rows only")
	fs.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&opts.plot, "plot", "", "save a chart of per-fold scores to this file")

	root.AddCommand(
		&cobra.Command{
			Use:   "baseline",
			Short: "Run only the baseline path",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, opts, experiment.BaselinePath)
			},
		},
		&cobra.Command{
			Use:   "cleaned",
			Short: "Run only the cleaned path with cross-validation",
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, opts, experiment.CleanedPath)
			},
		},
		newPrepareCmd(opts),
		&cobra.Command{
			Use:   "config",
			Short: "Print the effective configuration as YAML",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cmd, opts)
				if err != nil {
					return err
				}
				raw, err := cfg.YAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(raw)
				return err
			},
		},
	)
	return root
}

func newPrepareCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Preview or export the table as a pipeline leaves it",
		Long: `prepare runs the baseline or cleaned preprocessing steps over the whole
table and either previews the first rows or, with --output, writes the
processed table as CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log, err := logger.Setup(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			runner, err := experiment.NewRunner(cfg, cmd.OutOrStdout(), log)
			if err != nil {
				return err
			}
			d, err := runner.Prepare(cmd.Context(), experiment.Path(opts.preparePath))
			if err != nil {
				return err
			}
			if opts.prepareOutput == "" {
				return report.Preview(cmd.OutOrStdout(), d, opts.previewRows)
			}
			f, err := os.Create(opts.prepareOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := report.WriteCSV(f, d); err != nil {
				return err
			}
			log.Info().Str("file", opts.prepareOutput).Int("rows", d.Len()).Msg("processed table saved")
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&opts.preparePath, "path", string(experiment.CleanedPath), "pipeline to apply: baseline or cleaned")
	cmd.Flags().StringVarP(&opts.prepareOutput, "output", "o", "", "write the processed table to this CSV file instead of previewing")
	cmd.Flags().IntVar(&opts.previewRows, "preview", 5, "rows to preview")
	return cmd
}

func run(cmd *cobra.Command, opts *options, paths ...experiment.Path) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	log, err := logger.Setup(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	runner, err := experiment.NewRunner(cfg, cmd.OutOrStdout(), log)
	if err != nil {
		return err
	}
	return runner.Run(cmd.Context(), paths...)
}

// loadConfig layers defaults, the env file, the config file and finally the
// flags the user actually set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	fs := cmd.Flags()
	if fs.Changed("source") {
		cfg.Source = opts.source
	}
	if fs.Changed("sheet") {
		cfg.Sheet = opts.sheet
	}
	if fs.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if fs.Changed("test-fraction") {
		cfg.TestFraction = opts.testFraction
	}
	if fs.Changed("max-iterations") {
		cfg.MaxIterations = opts.maxIterations
	}
	if fs.Changed("solver") {
		cfg.Solver = opts.solver
	}
	if fs.Changed("cv-folds") {
		cfg.CVFolds = opts.cvFolds
	}
	if fs.Changed("refit-per-fold") {
		cfg.RefitPerFold = opts.refitPerFold
	}
	if fs.Changed("cv-scope") {
		cfg.CVScope = opts.cvScope
	}
	if fs.Changed("baseline-impute") {
		cfg.BaselineImpute = opts.baselineImpute
	}
	if fs.Changed("fit-on-train") {
		cfg.FitOnTrain = opts.fitOnTrain
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if fs.Changed("plot") {
		cfg.Plot = opts.plot
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func execute() int {
	if err := newRootCmd().Execute(); err != nil {
		logger.Errorf("survival: %v", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute())
}
