package dataprep

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
)

// PresenceFlag replaces a column with 1 where the cell is missing and 0 otherwise.
type PresenceFlag struct {
	Column string
}

func NewPresenceFlag(column string) *PresenceFlag { return &PresenceFlag{Column: column} }

func (p *PresenceFlag) Name() string { return "flag " + p.Column }

func (p *PresenceFlag) Fit(data.Dataset) error { return nil }

func (p *PresenceFlag) Transform(d data.Dataset) (data.Dataset, error) {
	mask, err := d.Missing("flag", p.Column)
	if err != nil {
		return data.Dataset{}, err
	}
	flags := make([]int, len(mask))
	for i, missing := range mask {
		if missing {
			flags[i] = 1
		}
	}
	return d.WithInts(p.Column, flags)
}

// LabelMap encodes a categorical column through a fixed value mapping.
// Missing cells stay missing; any other unmapped value is a DomainError.
type LabelMap struct {
	Column  string
	Mapping map[string]float64
}

func NewLabelMap(column string, mapping map[string]float64) *LabelMap {
	return &LabelMap{Column: column, Mapping: mapping}
}

func (l *LabelMap) Name() string { return "map " + l.Column }

func (l *LabelMap) Fit(data.Dataset) error {
	if len(l.Mapping) == 0 {
		return errors.New("map: empty mapping")
	}
	return nil
}

func (l *LabelMap) Transform(d data.Dataset) (data.Dataset, error) {
	vals, mask, err := d.Strings("map", l.Column)
	if err != nil {
		return data.Dataset{}, err
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		if mask[i] {
			out[i] = nan
			continue
		}
		code, ok := l.Mapping[strings.TrimSpace(v)]
		if !ok {
			return data.Dataset{}, &data.DomainError{Op: "map", Column: l.Column, Row: i, Value: v, Reason: "is not one of " + l.known()}
		}
		out[i] = code
	}
	return d.WithFloats(l.Column, out)
}

func (l *LabelMap) known() string {
	keys := make([]string, 0, len(l.Mapping))
	for k := range l.Mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprint(keys)
}

// OneHot expands a categorical column into k-1 indicator columns named
// "<column>_<category>". Categories are sorted and the first one is the
// reference level with an all-zero encoding. Missing cells encode as all zeros.
type OneHot struct {
	Column string

	categories []string
}

func NewOneHot(column string) *OneHot { return &OneHot{Column: column} }

func (o *OneHot) Name() string { return "one-hot " + o.Column }

// Fit records the distinct non-missing categories.
func (o *OneHot) Fit(d data.Dataset) error {
	vals, mask, err := d.Strings("one-hot", o.Column)
	if err != nil {
		return err
	}
	seen := map[string]struct{}{}
	for i, v := range vals {
		if !mask[i] {
			seen[strings.TrimSpace(v)] = struct{}{}
		}
	}
	if len(seen) < 2 {
		return &data.DomainError{Op: "one-hot", Column: o.Column, Row: -1, Reason: fmt.Sprintf("needs at least 2 categories, found %d", len(seen))}
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	o.categories = cats
	return nil
}

// Categories returns the fitted categories, reference level first.
func (o *OneHot) Categories() []string { return append([]string(nil), o.categories...) }

// Columns returns the names of the indicator columns Transform adds.
func (o *OneHot) Columns() []string {
	if len(o.categories) == 0 {
		return nil
	}
	out := make([]string, 0, len(o.categories)-1)
	for _, c := range o.categories[1:] {
		out = append(out, o.Column+"_"+c)
	}
	return out
}

// Transform drops the source column and appends the indicator columns.
// A category not seen by Fit is a DomainError.
func (o *OneHot) Transform(d data.Dataset) (data.Dataset, error) {
	if len(o.categories) == 0 {
		return data.Dataset{}, errors.New("one-hot: encoder is not fitted")
	}
	vals, mask, err := d.Strings("one-hot", o.Column)
	if err != nil {
		return data.Dataset{}, err
	}
	index := make(map[string]int, len(o.categories))
	for i, c := range o.categories {
		index[c] = i
	}
	dummies := make([][]int, len(o.categories)-1)
	for k := range dummies {
		dummies[k] = make([]int, len(vals))
	}
	for i, v := range vals {
		if mask[i] {
			continue
		}
		k, ok := index[strings.TrimSpace(v)]
		if !ok {
			return data.Dataset{}, &data.DomainError{Op: "one-hot", Column: o.Column, Row: i, Value: v, Reason: "is an unseen category"}
		}
		if k > 0 {
			dummies[k-1][i] = 1
		}
	}

	out, err := d.Drop("one-hot", o.Column)
	if err != nil {
		return data.Dataset{}, err
	}
	for k, name := range o.Columns() {
		if out.Has(name) {
			return data.Dataset{}, &data.SchemaError{Op: "one-hot", Column: name, Reason: "already exists"}
		}
		if out, err = out.WithInts(name, dummies[k]); err != nil {
			return data.Dataset{}, err
		}
	}
	return out, nil
}
