package data

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// missingTokens are the raw cell values read as a missing value.
var missingTokens = []string{"", "NA", "NaN", "<nil>"}

// IsMissingToken reports whether a raw cell value denotes a missing value.
func IsMissingToken(v string) bool {
	v = strings.TrimSpace(v)
	for _, t := range missingTokens {
		if v == t {
			return true
		}
	}
	return false
}

// Dataset is an ordered collection of records sharing a named-column schema.
// Methods never modify the receiver; each one returns a new Dataset.
type Dataset struct {
	df dataframe.DataFrame
}

// FromRecords builds a Dataset from a header row followed by data rows.
// Column types are detected from the values unless listed in types.
func FromRecords(records [][]string, types map[string]series.Type) (Dataset, error) {
	if len(records) < 2 {
		return Dataset{}, errors.New("dataset: need a header row and at least one data row")
	}
	width := len(records[0])
	norm := make([][]string, len(records))
	norm[0] = append([]string(nil), records[0]...)
	for i, row := range records[1:] {
		if len(row) != width {
			return Dataset{}, fmt.Errorf("dataset: row %d has %d fields, want %d", i+1, len(row), width)
		}
		out := make([]string, width)
		for j, v := range row {
			if IsMissingToken(v) {
				v = "NaN"
			}
			out[j] = v
		}
		norm[i+1] = out
	}

	opts := []dataframe.LoadOption{dataframe.HasHeader(true), dataframe.DetectTypes(true)}
	if len(types) > 0 {
		opts = append(opts, dataframe.WithTypes(types))
	}
	return FromDataFrame(dataframe.LoadRecords(norm, opts...))
}

// FromDataFrame wraps an existing dataframe.
func FromDataFrame(df dataframe.DataFrame) (Dataset, error) {
	if df.Err != nil {
		return Dataset{}, fmt.Errorf("dataset: %w", df.Err)
	}
	return Dataset{df: df}, nil
}

// DataFrame exposes the underlying dataframe.
func (d Dataset) DataFrame() dataframe.DataFrame { return d.df }

// Len returns the number of rows.
func (d Dataset) Len() int { return d.df.Nrow() }

// Names returns the column names in order.
func (d Dataset) Names() []string { return d.df.Names() }

// Has reports whether the named column exists.
func (d Dataset) Has(name string) bool {
	for _, n := range d.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Require returns a SchemaError for the first name that is not a column.
func (d Dataset) Require(op string, names ...string) error {
	for _, n := range names {
		if !d.Has(n) {
			return &SchemaError{Op: op, Column: n}
		}
	}
	return nil
}

// Column returns the named column.
func (d Dataset) Column(op, name string) (series.Series, error) {
	if err := d.Require(op, name); err != nil {
		return series.Series{}, err
	}
	s := d.df.Col(name)
	if s.Err != nil {
		return series.Series{}, fmt.Errorf("%s: %w", op, s.Err)
	}
	return s, nil
}

// Missing returns a per-row mask of missing cells in the named column.
func (d Dataset) Missing(op, name string) ([]bool, error) {
	s, err := d.Column(op, name)
	if err != nil {
		return nil, err
	}
	if s.Type() == series.String {
		return s.IsNaN(), nil
	}
	vals := s.Float()
	out := make([]bool, len(vals))
	for i, v := range vals {
		out[i] = math.IsNaN(v)
	}
	return out, nil
}

// MissingCount returns the number of missing cells in the named column.
func (d Dataset) MissingCount(name string) (int, error) {
	mask, err := d.Missing("missing", name)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n, nil
}

// Floats returns the named column as float64 values with NaN for missing cells.
// A text column is accepted only when every present value parses as a number.
func (d Dataset) Floats(op, name string) ([]float64, error) {
	s, err := d.Column(op, name)
	if err != nil {
		return nil, err
	}
	if s.Type() == series.String {
		mask := s.IsNaN()
		for i, v := range s.Records() {
			if mask[i] {
				continue
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				return nil, &SchemaError{Op: op, Column: name, Reason: fmt.Sprintf("not numeric (row %d: %q)", i, v)}
			}
		}
	}
	return s.Float(), nil
}

// Strings returns the named column as text together with its missing mask.
func (d Dataset) Strings(op, name string) ([]string, []bool, error) {
	s, err := d.Column(op, name)
	if err != nil {
		return nil, nil, err
	}
	mask, err := d.Missing(op, name)
	if err != nil {
		return nil, nil, err
	}
	vals := s.Records()
	for i := range vals {
		if mask[i] {
			vals[i] = ""
		}
	}
	return vals, mask, nil
}

// WithFloats returns a copy with the named column set to vals, added at the end if new.
func (d Dataset) WithFloats(name string, vals []float64) (Dataset, error) {
	return d.with(series.New(vals, series.Float, name))
}

// WithInts returns a copy with the named column set to vals, added at the end if new.
func (d Dataset) WithInts(name string, vals []int) (Dataset, error) {
	return d.with(series.New(vals, series.Int, name))
}

func (d Dataset) with(s series.Series) (Dataset, error) {
	if s.Len() != d.Len() {
		return Dataset{}, fmt.Errorf("dataset: column %q has %d rows, want %d", s.Name, s.Len(), d.Len())
	}
	return FromDataFrame(d.df.Mutate(s))
}

// Drop returns a copy without the named columns. Every name must exist.
func (d Dataset) Drop(op string, names ...string) (Dataset, error) {
	if len(names) == 0 {
		return d, nil
	}
	if err := d.Require(op, names...); err != nil {
		return Dataset{}, err
	}
	return FromDataFrame(d.df.Drop(names))
}

// Rows returns a copy holding only the given rows, in the given order.
func (d Dataset) Rows(idx []int) (Dataset, error) {
	if len(idx) == 0 {
		return Dataset{}, errors.New("dataset: empty row selection")
	}
	for _, i := range idx {
		if i < 0 || i >= d.Len() {
			return Dataset{}, fmt.Errorf("dataset: row %d out of range [0,%d)", i, d.Len())
		}
	}
	return FromDataFrame(d.df.Subset(idx))
}

// Labels returns the named column as 0/1 class labels.
func (d Dataset) Labels(name string) ([]int, error) {
	vals, err := d.Floats("labels", name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(vals))
	for i, v := range vals {
		switch v {
		case 0:
			out[i] = 0
		case 1:
			out[i] = 1
		default:
			return nil, &DomainError{Op: "labels", Column: name, Row: i, Value: strconv.FormatFloat(v, 'g', -1, 64), Reason: "is not a 0/1 label"}
		}
	}
	return out, nil
}

// Split separates the target column from the features.
// Every remaining column must be numeric; missing cells are kept as NaN.
func (d Dataset) Split(target string) (FeatureMatrix, []int, error) {
	y, err := d.Labels(target)
	if err != nil {
		return FeatureMatrix{}, nil, err
	}
	var names []string
	for _, n := range d.Names() {
		if n != target {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return FeatureMatrix{}, nil, fmt.Errorf("dataset: no feature columns besides %q", target)
	}
	cols := make([][]float64, len(names))
	for j, n := range names {
		if cols[j], err = d.Floats("features", n); err != nil {
			return FeatureMatrix{}, nil, err
		}
	}
	return FromColumns(names, cols), y, nil
}
