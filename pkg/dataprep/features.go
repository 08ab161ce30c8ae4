package dataprep

import (
	"math"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
)

var nan = math.NaN()

// Column names produced by the derivation steps.
const (
	FamilySizeColumn = "FamilySize"
	IsAloneColumn    = "IsAlone"
)

// FamilySize adds SiblingsCol + ParentsCol + 1 (the passenger themself).
type FamilySize struct {
	SiblingsCol string
	ParentsCol  string
}

func NewFamilySize(siblings, parents string) *FamilySize {
	return &FamilySize{SiblingsCol: siblings, ParentsCol: parents}
}

func (f *FamilySize) Name() string { return "derive " + FamilySizeColumn }

func (f *FamilySize) Fit(data.Dataset) error { return nil }

func (f *FamilySize) Transform(d data.Dataset) (data.Dataset, error) {
	sib, err := complete(d, f.SiblingsCol)
	if err != nil {
		return data.Dataset{}, err
	}
	par, err := complete(d, f.ParentsCol)
	if err != nil {
		return data.Dataset{}, err
	}
	size := make([]float64, len(sib))
	for i := range sib {
		size[i] = sib[i] + par[i] + 1
	}
	return d.WithFloats(FamilySizeColumn, size)
}

// IsAlone adds 1 where FamilySize == 1 and 0 otherwise.
type IsAlone struct{}

func (IsAlone) Name() string { return "derive " + IsAloneColumn }

func (IsAlone) Fit(data.Dataset) error { return nil }

func (IsAlone) Transform(d data.Dataset) (data.Dataset, error) {
	size, err := complete(d, FamilySizeColumn)
	if err != nil {
		return data.Dataset{}, err
	}
	alone := make([]int, len(size))
	for i, s := range size {
		if s == 1 {
			alone[i] = 1
		}
	}
	return d.WithInts(IsAloneColumn, alone)
}

// complete returns a numeric column that must not contain missing cells.
func complete(d data.Dataset, name string) ([]float64, error) {
	vals, err := d.Floats("derive", name)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			return nil, &data.DomainError{Op: "derive", Column: name, Row: i, Value: "NaN", Reason: "is missing"}
		}
	}
	return vals, nil
}
