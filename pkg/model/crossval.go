package model

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/loader"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/stats"
)

// CVOptions controls CrossValidate.
type CVOptions struct {
	Folds        int
	RefitPerFold bool // fit a fresh clone on the other folds; otherwise score the fitted model as is
	Stratified   bool
	Shuffle      bool
	Seed         int64
	Log          zerolog.Logger // per-fold progress; the zero value logs nothing
}

// DefaultCVOptions: 5 stratified folds, refit per fold, no shuffling.
func DefaultCVOptions() CVOptions {
	return CVOptions{Folds: 5, RefitPerFold: true, Stratified: true, Log: zerolog.Nop()}
}

// FoldResult is the outcome of one held-out fold.
type FoldResult struct {
	Fold      int
	TrainSize int
	TestSize  int
	Scores    Scores
}

// Summary is the mean and population standard deviation of one metric
// across folds.
type Summary struct {
	Name string
	Mean float64
	Std  float64
}

// CVReport collects per-fold scores.
type CVReport struct {
	Folds []FoldResult
}

// Metric names in reporting order.
var MetricNames = []string{"test_accuracy", "test_precision", "test_recall", "test_f1"}

// Metric returns the per-fold values of a metric named in MetricNames.
func (r CVReport) Metric(name string) ([]float64, error) {
	out := make([]float64, len(r.Folds))
	for i, f := range r.Folds {
		switch name {
		case "test_accuracy":
			out[i] = f.Scores.Accuracy
		case "test_precision":
			out[i] = f.Scores.Precision
		case "test_recall":
			out[i] = f.Scores.Recall
		case "test_f1":
			out[i] = f.Scores.F1
		default:
			return nil, fmt.Errorf("crossval: unknown metric %q", name)
		}
	}
	return out, nil
}

// Summaries returns mean and std for every metric, in MetricNames order.
func (r CVReport) Summaries() []Summary {
	out := make([]Summary, 0, len(MetricNames))
	for _, name := range MetricNames {
		vals, _ := r.Metric(name)
		mean, std := stats.MeanStd(vals)
		out = append(out, Summary{Name: name, Mean: mean, Std: std})
	}
	return out
}

// CrossValidate splits (X, y) into folds and scores m on each held-out fold.
// With RefitPerFold, m must implement Cloner and is never modified itself.
func CrossValidate(m Classifier, X data.FeatureMatrix, y []int, opts CVOptions) (CVReport, error) {
	n, _ := X.Dims()
	if len(y) != n {
		return CVReport{}, fmt.Errorf("crossval: %d labels for %d rows", len(y), n)
	}
	var cloner Cloner
	if opts.RefitPerFold {
		c, ok := m.(Cloner)
		if !ok {
			return CVReport{}, errors.New("crossval: refitting per fold needs a model with Clone")
		}
		cloner = c
	}
	folds, err := makeFolds(y, opts)
	if err != nil {
		return CVReport{}, fmt.Errorf("crossval: %w", err)
	}

	report := CVReport{Folds: make([]FoldResult, 0, len(folds))}
	for f, testIdx := range folds {
		est := m
		trainIdx := loader.Complement(n, testIdx)
		if cloner != nil {
			est = cloner.Clone()
			Xtr, err := X.Rows(trainIdx)
			if err != nil {
				return CVReport{}, err
			}
			if err := est.Fit(Xtr, data.SelectLabels(y, trainIdx)); err != nil {
				return CVReport{}, fmt.Errorf("crossval: fold %d: %w", f, err)
			}
		}
		Xte, err := X.Rows(testIdx)
		if err != nil {
			return CVReport{}, err
		}
		pred, err := est.Predict(Xte)
		if err != nil {
			return CVReport{}, fmt.Errorf("crossval: fold %d: %w", f, err)
		}
		scores, err := Evaluate(data.SelectLabels(y, testIdx), pred)
		if err != nil {
			return CVReport{}, fmt.Errorf("crossval: fold %d: %w", f, err)
		}
		opts.Log.Debug().Int("fold", f).Int("train", len(trainIdx)).Int("test", len(testIdx)).
			Float64("accuracy", scores.Accuracy).Msg("cross-validation fold scored")
		report.Folds = append(report.Folds, FoldResult{Fold: f, TrainSize: len(trainIdx), TestSize: len(testIdx), Scores: scores})
	}
	return report, nil
}

func makeFolds(y []int, opts CVOptions) ([][]int, error) {
	n := len(y)
	if !opts.Stratified {
		if opts.Shuffle {
			return loader.KFoldSplit(n, opts.Folds, opts.Seed)
		}
		return loader.KFold(n, opts.Folds)
	}
	if !opts.Shuffle {
		return loader.StratifiedKFold(y, opts.Folds)
	}
	perm := rand.New(rand.NewSource(opts.Seed)).Perm(n)
	shuffled := make([]int, n)
	for i, p := range perm {
		shuffled[i] = y[p]
	}
	folds, err := loader.StratifiedKFold(shuffled, opts.Folds)
	if err != nil {
		return nil, err
	}
	for _, f := range folds {
		for i, pos := range f {
			f[i] = perm[pos]
		}
		sort.Ints(f)
	}
	return folds, nil
}
