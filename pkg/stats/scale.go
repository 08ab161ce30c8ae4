package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
)

// DegeneratePolicy decides what happens to a zero-variance column.
type DegeneratePolicy string

const (
	DegenerateReject DegeneratePolicy = "reject" // fail with a DegenerateColumnError
	DegenerateZero   DegeneratePolicy = "zero"   // centre the column, leaving all zeros
)

// StandardScaler standardizes named Dataset columns to zero mean and unit variance.
type StandardScaler struct {
	Columns []string
	Policy  DegeneratePolicy

	Mean map[string]float64
	Std  map[string]float64
	fit  bool
	log  zerolog.Logger
}

type ScalerOption func(*StandardScaler)

func WithPolicy(p DegeneratePolicy) ScalerOption { return func(s *StandardScaler) { s.Policy = p } }
func WithScalerLogger(l zerolog.Logger) ScalerOption { return func(s *StandardScaler) { s.log = l } }

func NewStandardScaler(columns []string, opts ...ScalerOption) *StandardScaler {
	s := &StandardScaler{
		Columns: append([]string(nil), columns...),
		Policy:  DegenerateReject,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *StandardScaler) Name() string { return "scale" }

// Fit computes the mean and population standard deviation of every column.
func (s *StandardScaler) Fit(d data.Dataset) error {
	if err := d.Require("scale", s.Columns...); err != nil {
		return err
	}
	means := make(map[string]float64, len(s.Columns))
	stds := make(map[string]float64, len(s.Columns))
	for _, c := range s.Columns {
		vals, err := d.Floats("scale", c)
		if err != nil {
			return err
		}
		for i, v := range vals {
			if math.IsNaN(v) {
				return &data.DomainError{Op: "scale", Column: c, Row: i, Value: "NaN", Reason: "is missing; impute before scaling"}
			}
		}
		m, sd := MeanStd(vals)
		if sd == 0 {
			if s.Policy != DegenerateZero {
				return &data.DegenerateColumnError{Column: c}
			}
			s.log.Warn().Str("column", c).Msg("zero standard deviation, column will be centred only")
		}
		means[c], stds[c] = m, sd
	}
	s.Mean, s.Std, s.fit = means, stds, true
	return nil
}

// Transform applies (x - mean) / std to every fitted column.
func (s *StandardScaler) Transform(d data.Dataset) (data.Dataset, error) {
	if !s.fit {
		return data.Dataset{}, errors.New("scale: scaler is not fitted")
	}
	out := d
	for _, c := range s.Columns {
		vals, err := out.Floats("scale", c)
		if err != nil {
			return data.Dataset{}, err
		}
		m, sd := s.Mean[c], s.Std[c]
		scaled := make([]float64, len(vals))
		for i, v := range vals {
			if sd == 0 {
				scaled[i] = 0
				continue
			}
			scaled[i] = (v - m) / sd
		}
		if out, err = out.WithFloats(c, scaled); err != nil {
			return data.Dataset{}, fmt.Errorf("scale: %w", err)
		}
	}
	return out, nil
}

func (s *StandardScaler) FitTransform(d data.Dataset) (data.Dataset, error) {
	if err := s.Fit(d); err != nil {
		return data.Dataset{}, err
	}
	return s.Transform(d)
}
