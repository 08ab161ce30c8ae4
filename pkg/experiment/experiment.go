package experiment

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/config"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/dataprep"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/loader"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/model"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/pipeline"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/report"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/stats"
)

// Path names one of the two evaluated pipelines.
type Path string

const (
	BaselinePath Path = "baseline"
	CleanedPath  Path = "cleaned"
)

// BaselineResult is the outcome of the baseline path.
type BaselineResult struct {
	Accuracy  float64
	Features  []string
	Converged bool
}

// CleanedResult is the outcome of the cleaned path.
type CleanedResult struct {
	Scores    model.Scores
	CV        model.CVReport
	Features  []string
	Converged bool
}

// Runner loads the passenger table and evaluates the configured paths,
// writing metric lines to out and progress to the logger.
type Runner struct {
	cfg    *config.Config
	loader *data.Loader
	out    io.Writer
	log    zerolog.Logger
}

// NewRunner validates cfg and prepares a Runner. Loader options are passed on
// to data.NewLoader after the runner's logger.
func NewRunner(cfg *config.Config, out io.Writer, log zerolog.Logger, opts ...data.LoaderOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	opts = append([]data.LoaderOption{data.WithLogger(log)}, opts...)
	return &Runner{cfg: cfg, loader: data.NewLoader(opts...), out: out, log: log}, nil
}

// Run loads the table once and evaluates the given paths in order; both when
// none are given.
func (r *Runner) Run(ctx context.Context, paths ...Path) error {
	if len(paths) == 0 {
		paths = []Path{BaselinePath, CleanedPath}
	}
	d, err := r.Load(ctx)
	if err != nil {
		return err
	}
	for _, p := range paths {
		switch p {
		case BaselinePath:
			_, err = r.Baseline(d)
		case CleanedPath:
			_, err = r.Cleaned(d)
		default:
			err = fmt.Errorf("experiment: unknown path %q", p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Load reads the configured source within the fetch timeout.
func (r *Runner) Load(ctx context.Context) (data.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout())
	defer cancel()
	d, err := r.loader.Load(ctx, data.Source{
		Location: r.cfg.Source,
		Sheet:    r.cfg.Sheet,
		Types:    pipeline.ColumnTypes(),
	})
	if err != nil {
		return data.Dataset{}, err
	}
	if err := d.Require("load", r.cfg.Target); err != nil {
		return data.Dataset{}, err
	}
	if r.log.GetLevel() <= zerolog.DebugLevel {
		s := pipeline.Describe(d)
		for i, name := range s.FeatureNames {
			r.log.Debug().Str("column", name).Str("type", s.Types[i]).Int("missing", s.Missing[i]).Msg("schema")
		}
	}
	return d, nil
}

// Baseline drops every column that would need cleaning, splits, fills the
// remaining gaps under the configured policy and reports accuracy.
func (r *Runner) Baseline(d data.Dataset) (BaselineResult, error) {
	pruned, err := pipeline.Baseline().WithLogger(r.log).FitTransform(d)
	if err != nil {
		return BaselineResult{}, fmt.Errorf("baseline: %w", err)
	}
	X, y, err := pruned.Split(r.cfg.Target)
	if err != nil {
		return BaselineResult{}, fmt.Errorf("baseline: %w", err)
	}
	Xtr, ytr, Xte, yte, err := r.split(X, y)
	if err != nil {
		return BaselineResult{}, fmt.Errorf("baseline: %w", err)
	}
	filled, err := dataprep.ImputeSplits(Xtr, Xte, dataprep.Mean, dataprep.SplitPolicy(r.cfg.BaselineImpute))
	if err != nil {
		return BaselineResult{}, fmt.Errorf("baseline: %w", err)
	}
	Xtr, Xte = filled.Train, filled.Test
	r.log.Debug().Str("policy", r.cfg.BaselineImpute).
		Interface("train_fill", filled.TrainFill.Values()).
		Interface("test_fill", filled.TestFill.Values()).
		Msg("baseline gaps filled")

	m := r.newModel()
	if err := m.Fit(Xtr, ytr); err != nil {
		return BaselineResult{}, fmt.Errorf("baseline: %w", err)
	}
	pred, err := m.Predict(Xte)
	if err != nil {
		return BaselineResult{}, fmt.Errorf("baseline: %w", err)
	}
	scores, err := model.Evaluate(yte, pred)
	if err != nil {
		return BaselineResult{}, fmt.Errorf("baseline: %w", err)
	}
	r.log.Info().Strs("features", X.Names).Int("iterations", m.Iterations()).
		Float64("accuracy", scores.Accuracy).Msg("baseline evaluated")
	if err := report.Baseline(r.out, scores.Accuracy); err != nil {
		return BaselineResult{}, err
	}
	return BaselineResult{Accuracy: scores.Accuracy, Features: X.Names, Converged: m.Converged()}, nil
}

// Cleaned runs the full cleaning pipeline, reports the hold-out metrics and
// cross-validates.
func (r *Runner) Cleaned(d data.Dataset) (CleanedResult, error) {
	trainIdx, testIdx, err := loader.TrainTestSplit(d.Len(), r.cfg.TestFraction, r.cfg.Seed)
	if err != nil {
		return CleanedResult{}, fmt.Errorf("cleaned: %w", err)
	}
	p := pipeline.Cleaned(stats.DegeneratePolicy(r.cfg.Degenerate), r.log)

	// Fitted steps are row-wise: transforming the whole table equals
	// transforming each partition.
	var all data.Dataset
	if r.cfg.FitOnTrain {
		var train data.Dataset
		if train, err = d.Rows(trainIdx); err != nil {
			return CleanedResult{}, fmt.Errorf("cleaned: %w", err)
		}
		if err := p.Fit(train); err != nil {
			return CleanedResult{}, fmt.Errorf("cleaned: %w", err)
		}
		all, err = p.Transform(d)
	} else {
		all, err = p.FitTransform(d)
	}
	if err != nil {
		return CleanedResult{}, fmt.Errorf("cleaned: %w", err)
	}

	X, y, err := all.Split(r.cfg.Target)
	if err != nil {
		return CleanedResult{}, fmt.Errorf("cleaned: %w", err)
	}
	Xtr, err := X.Rows(trainIdx)
	if err != nil {
		return CleanedResult{}, fmt.Errorf("cleaned: %w", err)
	}
	Xte, err := X.Rows(testIdx)
	if err != nil {
		return CleanedResult{}, fmt.Errorf("cleaned: %w", err)
	}
	ytr, yte := data.SelectLabels(y, trainIdx), data.SelectLabels(y, testIdx)

	m := r.newModel()
	if err := m.Fit(Xtr, ytr); err != nil {
		return CleanedResult{}, fmt.Errorf("cleaned: %w", err)
	}
	pred, err := m.Predict(Xte)
	if err != nil {
		return CleanedResult{}, fmt.Errorf("cleaned: %w", err)
	}
	scores, err := model.Evaluate(yte, pred)
	if err != nil {
		return CleanedResult{}, fmt.Errorf("cleaned: %w", err)
	}
	r.log.Info().Strs("features", X.Names).Int("iterations", m.Iterations()).
		Float64("accuracy", scores.Accuracy).Msg("cleaned model evaluated")
	if err := report.Final(r.out, scores); err != nil {
		return CleanedResult{}, err
	}

	cvX, cvY := Xte, yte
	if r.cfg.CVScope == config.ScopeAll {
		cvX, cvY = X, y
	}
	cv, err := model.CrossValidate(m, cvX, cvY, model.CVOptions{
		Folds:        r.cfg.CVFolds,
		RefitPerFold: r.cfg.RefitPerFold,
		Stratified:   r.cfg.CVStratified,
		Shuffle:      r.cfg.CVShuffle,
		Seed:         r.cfg.Seed,
		Log:          r.log,
	})
	if err != nil {
		return CleanedResult{}, fmt.Errorf("cleaned: %w", err)
	}
	if err := report.CrossValidation(r.out, cv); err != nil {
		return CleanedResult{}, err
	}
	if r.cfg.Plot != "" {
		if err := report.PlotFoldScores(cv, r.cfg.Plot); err != nil {
			return CleanedResult{}, err
		}
		r.log.Info().Str("file", r.cfg.Plot).Msg("fold scores plotted")
	}
	return CleanedResult{Scores: scores, CV: cv, Features: X.Names, Converged: m.Converged()}, nil
}

// Prepare loads the table and returns it as the given path's pipeline leaves
// it, fitted on every row. The baseline path fills no gaps here since its
// imputation happens after the split.
func (r *Runner) Prepare(ctx context.Context, path Path) (data.Dataset, error) {
	d, err := r.Load(ctx)
	if err != nil {
		return data.Dataset{}, err
	}
	var p *pipeline.Pipeline
	switch path {
	case BaselinePath:
		p = pipeline.Baseline().WithLogger(r.log)
	case CleanedPath:
		p = pipeline.Cleaned(stats.DegeneratePolicy(r.cfg.Degenerate), r.log)
	default:
		return data.Dataset{}, fmt.Errorf("experiment: unknown path %q", path)
	}
	out, err := p.FitTransform(d)
	if err != nil {
		return data.Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func (r *Runner) split(X data.FeatureMatrix, y []int) (Xtr data.FeatureMatrix, ytr []int, Xte data.FeatureMatrix, yte []int, err error) {
	trainIdx, testIdx, err := loader.TrainTestSplit(len(y), r.cfg.TestFraction, r.cfg.Seed)
	if err != nil {
		return
	}
	if Xtr, err = X.Rows(trainIdx); err != nil {
		return
	}
	if Xte, err = X.Rows(testIdx); err != nil {
		return
	}
	return Xtr, data.SelectLabels(y, trainIdx), Xte, data.SelectLabels(y, testIdx), nil
}

func (r *Runner) newModel() *model.LogisticRegression {
	return model.NewLogisticRegression(
		model.WithMaxIterations(r.cfg.MaxIterations),
		model.WithC(r.cfg.C),
		model.WithTolerance(r.cfg.Tolerance),
		model.WithSolver(model.Solver(r.cfg.Solver)),
		model.WithLearningRate(r.cfg.LearningRate),
		model.WithLogger(r.log),
	)
}
