package dataprep

import (
	"errors"
	"fmt"
	"math"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/stats"
)

// Strategy is the statistic used to fill missing values.
type Strategy string

const (
	Mean   Strategy = "mean"
	Median Strategy = "median"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case Mean, Median:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("impute: unknown strategy %q (want mean or median)", s)
}

func (s Strategy) compute(observed []float64) float64 {
	if s == Median {
		return stats.Median(observed)
	}
	return stats.Mean(observed)
}

// ---------- Dataset imputation ----------

// Imputer fills the missing cells of one numeric column with a statistic
// computed over the non-missing cells of the data it was fitted on.
type Imputer struct {
	Column   string
	Strategy Strategy

	value float64
	fit   bool
}

func NewImputer(column string, strategy Strategy) *Imputer {
	return &Imputer{Column: column, Strategy: strategy}
}

func (im *Imputer) Name() string { return "impute " + im.Column }

// Fit computes the fill value.
func (im *Imputer) Fit(d data.Dataset) error {
	vals, err := d.Floats("impute", im.Column)
	if err != nil {
		return err
	}
	observed := stats.Observed(vals)
	if len(observed) == 0 {
		return &data.DomainError{Op: "impute", Column: im.Column, Row: -1, Reason: "has no observed values"}
	}
	im.value = im.Strategy.compute(observed)
	im.fit = true
	return nil
}

// Value returns the fitted fill value.
func (im *Imputer) Value() (float64, bool) { return im.value, im.fit }

// Transform replaces missing cells with the fitted value.
func (im *Imputer) Transform(d data.Dataset) (data.Dataset, error) {
	if !im.fit {
		return data.Dataset{}, errors.New("impute: imputer is not fitted")
	}
	vals, err := d.Floats("impute", im.Column)
	if err != nil {
		return data.Dataset{}, err
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			v = im.value
		}
		out[i] = v
	}
	return d.WithFloats(im.Column, out)
}

func (im *Imputer) FitTransform(d data.Dataset) (data.Dataset, error) {
	if err := im.Fit(d); err != nil {
		return data.Dataset{}, err
	}
	return im.Transform(d)
}

// ---------- Feature matrix imputation ----------

// MatrixImputer fills NaN cells of every column of a FeatureMatrix with the
// per-column statistic of the matrix it was fitted on.
type MatrixImputer struct {
	Strategy Strategy

	names  []string
	values []float64
}

func NewMatrixImputer(strategy Strategy) *MatrixImputer {
	return &MatrixImputer{Strategy: strategy}
}

// Fit computes one fill value per column. A column with no observed values
// cannot be filled and is rejected.
func (mi *MatrixImputer) Fit(m data.FeatureMatrix) error {
	_, c := m.Dims()
	values := make([]float64, c)
	for j := 0; j < c; j++ {
		observed := stats.Observed(m.Col(j))
		if len(observed) == 0 {
			return &data.DomainError{Op: "impute", Column: m.Names[j], Row: -1, Reason: "has no observed values"}
		}
		values[j] = mi.Strategy.compute(observed)
	}
	mi.names = append([]string(nil), m.Names...)
	mi.values = values
	return nil
}

// Values returns the fitted fill value for each column, keyed by name.
func (mi *MatrixImputer) Values() map[string]float64 {
	out := make(map[string]float64, len(mi.names))
	for j, n := range mi.names {
		out[n] = mi.values[j]
	}
	return out
}

// Transform returns a copy of m with NaN cells filled.
func (mi *MatrixImputer) Transform(m data.FeatureMatrix) (data.FeatureMatrix, error) {
	if mi.values == nil {
		return data.FeatureMatrix{}, errors.New("impute: imputer is not fitted")
	}
	if !m.SameColumns(data.FeatureMatrix{Names: mi.names}) {
		return data.FeatureMatrix{}, &data.SchemaError{Op: "impute", Column: fmt.Sprint(m.Names), Reason: "columns differ from the fitted matrix"}
	}
	out := m.Clone()
	out.X.Apply(func(_, j int, v float64) float64 {
		if math.IsNaN(v) {
			return mi.values[j]
		}
		return v
	}, out.X)
	return out, nil
}

func (mi *MatrixImputer) FitTransform(m data.FeatureMatrix) (data.FeatureMatrix, error) {
	if err := mi.Fit(m); err != nil {
		return data.FeatureMatrix{}, err
	}
	return mi.Transform(m)
}

// SplitPolicy selects how train and test partitions are imputed.
type SplitPolicy string

const (
	// PerSplit fits on the training rows to fill them, and separately on the
	// test rows to fill those.
	PerSplit SplitPolicy = "per_split"
	// TrainOnly fits on the training rows and fills both partitions.
	TrainOnly SplitPolicy = "train"
)

// SplitImputation holds both filled partitions and the imputer fitted for
// each. Under TrainOnly both imputers are the same.
type SplitImputation struct {
	Train, Test         data.FeatureMatrix
	TrainFill, TestFill *MatrixImputer
}

// ImputeSplits fills both partitions under the given policy.
func ImputeSplits(train, test data.FeatureMatrix, strategy Strategy, policy SplitPolicy) (SplitImputation, error) {
	trainImp := NewMatrixImputer(strategy)
	trainOut, err := trainImp.FitTransform(train)
	if err != nil {
		return SplitImputation{}, fmt.Errorf("train split: %w", err)
	}

	testImp := trainImp
	switch policy {
	case PerSplit:
		testImp = NewMatrixImputer(strategy)
		if err := testImp.Fit(test); err != nil {
			return SplitImputation{}, fmt.Errorf("test split: %w", err)
		}
	case TrainOnly:
	default:
		return SplitImputation{}, fmt.Errorf("impute: unknown split policy %q", policy)
	}
	testOut, err := testImp.Transform(test)
	if err != nil {
		return SplitImputation{}, fmt.Errorf("test split: %w", err)
	}
	return SplitImputation{Train: trainOut, Test: testOut, TrainFill: trainImp, TestFill: testImp}, nil
}
