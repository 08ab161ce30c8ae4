package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/model"
)

func sampleReport() model.CVReport {
	return model.CVReport{Folds: []model.FoldResult{
		{Fold: 0, Scores: model.Scores{Accuracy: 0.8, Precision: 0.75, Recall: 0.5, F1: 0.6}},
		{Fold: 1, Scores: model.Scores{Accuracy: 0.9, Precision: 0.25, Recall: 1, F1: 0.4}},
	}}
}

func TestMetricLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Baseline(&buf, 0.7039106145251397))
	require.NoError(t, Final(&buf, model.Scores{Accuracy: 0.8, Precision: 0.75, Recall: 0.5, F1: 0.6}))
	assert.Equal(t, "Baseline Accuracy: 0.7039106145251397\n"+
		"Final Accuracy: 0.8\n"+
		"Precision: 0.75\n"+
		"Recall: 0.5\n"+
		"F1 Score: 0.6\n", buf.String())
}

func TestCrossValidationLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CrossValidation(&buf, sampleReport()))
	assert.Equal(t, "test_accuracy: 0.85 (+/- 0.05)\n"+
		"test_precision: 0.50 (+/- 0.25)\n"+
		"test_recall: 0.75 (+/- 0.25)\n"+
		"test_f1: 0.50 (+/- 0.10)\n", buf.String())
}

func TestPlotFoldScores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folds.png")
	require.NoError(t, PlotFoldScores(sampleReport(), path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, PlotFoldScores(model.CVReport{}, path))
}

func TestPreviewAndCSV(t *testing.T) {
	d, err := data.FromRecords([][]string{
		{"Sex", "Age"},
		{"male", "22"},
		{"female", ""},
		{"female", "35.5"},
	}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Preview(&buf, d, 2))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Sex            Age", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "male           22.000000", strings.TrimRight(lines[1], " "))
	assert.Equal(t, "female         NaN", strings.TrimRight(lines[2], " "))

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, d))
	assert.True(t, strings.HasPrefix(buf.String(), "Sex,Age\nmale,22"))
}

// flakyWriter fails only its nth write.
type flakyWriter struct {
	n, calls int
}

func (w *flakyWriter) Write(p []byte) (int, error) {
	w.calls++
	if w.calls == w.n {
		return 0, errors.New("disk full")
	}
	return len(p), nil
}

func TestPreviewReportsHeaderNewlineError(t *testing.T) {
	d, err := data.FromRecords([][]string{{"Sex", "Age"}, {"male", "22"}}, nil)
	require.NoError(t, err)
	assert.EqualError(t, Preview(&flakyWriter{n: 3}, d, 1), "disk full")
}
