package report

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/go-gota/gota/series"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/model"
)

// value prints the shortest decimal that round-trips.
func value(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Baseline writes the baseline accuracy line.
func Baseline(w io.Writer, accuracy float64) error {
	_, err := fmt.Fprintf(w, "Baseline Accuracy: %s\n", value(accuracy))
	return err
}

// Final writes the four hold-out metrics of the cleaned model.
func Final(w io.Writer, s model.Scores) error {
	_, err := fmt.Fprintf(w, "Final Accuracy: %s\nPrecision: %s\nRecall: %s\nF1 Score: %s\n",
		value(s.Accuracy), value(s.Precision), value(s.Recall), value(s.F1))
	return err
}

// CrossValidation writes one "<metric>: <mean> (+/- <std>)" line per metric.
func CrossValidation(w io.Writer, r model.CVReport) error {
	for _, s := range r.Summaries() {
		if _, err := fmt.Fprintf(w, "%s: %.2f (+/- %.2f)\n", s.Name, s.Mean, s.Std); err != nil {
			return err
		}
	}
	return nil
}

// Preview prints the header and the first n rows of d as fixed-width columns.
// Numbers get six decimals; missing cells print as NaN.
func Preview(w io.Writer, d data.Dataset, n int) error {
	if n > d.Len() {
		n = d.Len()
	}
	names := d.Names()
	df := d.DataFrame()
	for _, h := range names {
		if _, err := fmt.Fprintf(w, "%-15s", h); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		for _, h := range names {
			el := df.Col(h).Elem(i)
			var err error
			if el.Type() == series.String || el.IsNA() {
				_, err = fmt.Fprintf(w, "%-15s", el.String())
			} else {
				_, err = fmt.Fprintf(w, "%-15.6f", el.Float())
			}
			if err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes d with its header row.
func WriteCSV(w io.Writer, d data.Dataset) error {
	if err := d.DataFrame().WriteCSV(w); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

var palette = []color.RGBA{
	{R: 50, G: 50, B: 255, A: 255},
	{R: 255, G: 140, A: 255},
	{G: 160, B: 60, A: 255},
	{R: 200, G: 30, B: 30, A: 255},
}

// PlotFoldScores saves a grouped bar chart of every metric per fold as PNG
// (or any format gonum/plot infers from the file extension).
func PlotFoldScores(r model.CVReport, filename string) error {
	if len(r.Folds) == 0 {
		return fmt.Errorf("report: no folds to plot")
	}
	p := plot.New()
	p.Title.Text = "Cross-validation scores per fold"
	p.Y.Label.Text = "Score"
	p.Y.Min, p.Y.Max = 0, 1
	p.Legend.Top = true

	width := vg.Points(10)
	for k, name := range model.MetricNames {
		vals, err := r.Metric(name)
		if err != nil {
			return err
		}
		bars, err := plotter.NewBarChart(plotter.Values(vals), width)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = palette[k%len(palette)]
		bars.Offset = vg.Length(2*k-len(model.MetricNames)+1) * width / 2
		p.Add(bars)
		p.Legend.Add(name, bars)
	}

	labels := make([]string, len(r.Folds))
	for i, f := range r.Folds {
		labels[i] = fmt.Sprintf("fold %d", f.Fold+1)
	}
	p.NominalX(labels...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
