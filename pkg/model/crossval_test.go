package model

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
)

// constant predicts the same label for every row and cannot be cloned.
type constant struct{ label int }

func (c constant) Fit(data.FeatureMatrix, []int) error { return nil }

func (c constant) Predict(X data.FeatureMatrix) ([]int, error) {
	n, _ := X.Dims()
	out := make([]int, n)
	for i := range out {
		out[i] = c.label
	}
	return out, nil
}

func TestCrossValidateRefits(t *testing.T) {
	X, y := noisyLinear(103, 11)
	m := quiet()
	report, err := CrossValidate(m, X, y, DefaultCVOptions())
	require.NoError(t, err)
	require.Len(t, report.Folds, 5)

	total := 0
	for _, f := range report.Folds {
		total += f.TestSize
		assert.Equal(t, 103, f.TrainSize+f.TestSize)
		assert.Greater(t, f.Scores.Accuracy, 0.6)
	}
	assert.Equal(t, 103, total)

	_, err = m.Predict(X)
	assert.ErrorIs(t, err, ErrNotFitted, "the cross-validated model stays unfitted")

	sums := report.Summaries()
	require.Len(t, sums, 4)
	for i, s := range sums {
		assert.Equal(t, MetricNames[i], s.Name)
		assert.GreaterOrEqual(t, s.Std, 0.0)
		assert.True(t, s.Mean >= 0 && s.Mean <= 1)
	}
	acc, err := report.Metric("test_accuracy")
	require.NoError(t, err)
	mean := 0.0
	for _, v := range acc {
		mean += v / float64(len(acc))
	}
	assert.InDelta(t, mean, sums[0].Mean, 1e-12)

	_, err = report.Metric("test_auc")
	assert.Error(t, err)
}

func TestCrossValidateDeterministic(t *testing.T) {
	X, y := noisyLinear(60, 13)
	opts := DefaultCVOptions()
	opts.Shuffle = true
	opts.Seed = 42
	a, err := CrossValidate(quiet(), X, y, opts)
	require.NoError(t, err)
	b, err := CrossValidate(quiet(), X, y, opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	opts.Stratified = false
	c, err := CrossValidate(quiet(), X, y, opts)
	require.NoError(t, err)
	assert.Len(t, c.Folds, 5)
}

func TestCrossValidateWithoutRefit(t *testing.T) {
	X, y := noisyLinear(40, 17)
	opts := DefaultCVOptions()

	_, err := CrossValidate(constant{label: 1}, X, y, opts)
	assert.Error(t, err)

	opts.RefitPerFold = false
	report, err := CrossValidate(constant{label: 0}, X, y, opts)
	require.NoError(t, err)
	for _, f := range report.Folds {
		assert.Zero(t, f.Scores.Precision)
		assert.Zero(t, f.Scores.Recall)
		assert.Zero(t, f.Scores.F1)
	}
}

func TestCrossValidateRejects(t *testing.T) {
	X, y := noisyLinear(4, 19)
	opts := DefaultCVOptions()
	_, err := CrossValidate(quiet(), X, y, opts)
	assert.Error(t, err)

	_, err = CrossValidate(quiet(), X, y[:2], opts)
	assert.Error(t, err)
}

func TestCrossValidateLogsThroughOptions(t *testing.T) {
	X, y := noisyLinear(60, 13)
	var buf bytes.Buffer
	opts := DefaultCVOptions()
	opts.Log = zerolog.New(&buf).Level(zerolog.DebugLevel)
	_, err := CrossValidate(quiet(), X, y, opts)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(buf.String(), "cross-validation fold scored"))

	// a zero-value logger stays silent
	opts.Log = zerolog.Logger{}
	_, err = CrossValidate(quiet(), X, y, opts)
	require.NoError(t, err)
}
